// Zaparoo Playtime
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Playtime.
//
// Zaparoo Playtime is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Playtime is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Playtime.  If not, see <http://www.gnu.org/licenses/>.

package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

const (
	NotificationGamesAdded    = "games.added"
	NotificationGamesRemoved  = "games.removed"
	NotificationGamesUpdated  = "games.updated"
	NotificationGamesStarted  = "games.started"
	NotificationGamesStopped  = "games.stopped"
	NotificationGamesReloaded = "games.reloaded"
	NotificationViewsList     = "views.list"
	NotificationViewsDetail   = "views.detail"
)

const (
	MethodGames        = "games"
	MethodGamesList    = "games.list"
	MethodGamesYears   = "games.years"
	MethodGamesDetail  = "games.detail"
	MethodGamesSelect  = "games.select"
	MethodGamesAdd     = "games.add"
	MethodGamesRemove  = "games.remove"
	MethodGamesUpdate  = "games.update"
	MethodGamesLaunch  = "games.launch"
	MethodGamesHistory = "games.history"
	MethodVersion      = "version"
)

type Notification struct {
	Method string
	Params json.RawMessage
}

type RequestObject struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uuid.UUID      `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type ErrorObject struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type ResponseObject struct {
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
	JSONRPC string       `json:"jsonrpc"`
	ID      uuid.UUID    `json:"id"`
}

// ResponseErrorObject exists for sending errors, so we can omit result from
// the response, but so nil responses are still returned when using the main
// ResponseObject.
type ResponseErrorObject struct {
	Error   *ErrorObject `json:"error"`
	JSONRPC string       `json:"jsonrpc"`
	ID      uuid.UUID    `json:"id"`
}
