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

type AddGameParams struct {
	Path string `json:"path" validate:"required,max=4096,gamepath"`
}

type GameIDParams struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// SelectGameParams selects a game for the session's detail view. A nil ID
// clears the selection.
type SelectGameParams struct {
	ID *int64 `json:"id" validate:"omitempty,gt=0"`
}

type UpdateGameParams struct {
	CustomName      *string   `json:"customName" validate:"omitempty,max=256"`
	CoverURL        *string   `json:"coverUrl" validate:"omitempty,coverurl"`
	Description     *string   `json:"description" validate:"omitempty,max=8192"`
	ReleaseDate     *string   `json:"releaseDate" validate:"omitempty,max=64"`
	Screenshots     *[]string `json:"screenshots" validate:"omitempty,dive,url"`
	Genres          *[]string `json:"genres" validate:"omitempty,dive,required,max=64"`
	ControllerRemap *bool     `json:"controllerRemap"`
	ID              int64     `json:"id" validate:"gt=0"`
}

// ListGamesParams sets the session's list query. More extends the visible
// window of the current query instead of replacing it.
type ListGamesParams struct {
	Text  *string `json:"text" validate:"omitempty,max=256"`
	Year  *int    `json:"year" validate:"omitempty,gte=1970,lte=9999"`
	Limit *int    `json:"limit" validate:"omitempty,gt=0,lte=1000"`
	More  bool    `json:"more"`
}

type HistoryParams struct {
	LastID *int64 `json:"lastId" validate:"omitempty,gt=0"`
	Limit  *int   `json:"limit" validate:"omitempty,gt=0,lte=500"`
	ID     int64  `json:"id" validate:"gt=0"`
}

type GameNotificationParams struct {
	LastPlayedDate *string `json:"lastPlayedDate,omitempty"`
	Name           string  `json:"name"`
	DisplayName    string  `json:"displayName"`
	Path           string  `json:"path"`
	ID             int64   `json:"id"`
	Time           int64   `json:"time"`
	Running        bool    `json:"running"`
}
