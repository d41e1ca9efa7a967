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

package requests

import (
	"context"
	"encoding/json"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/config"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/database"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/service/library"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/views"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type RequestEnv struct {
	Context context.Context
	Clock   clockwork.Clock
	Config  *config.Instance
	Library *library.Library
	// History is nil when the history database could not be opened.
	History database.HistoryDBI
	// Session holds the views of the calling websocket client. It is nil
	// for plain HTTP requests.
	Session *views.Projections
	Params  json.RawMessage
	ID      uuid.UUID
	IsLocal bool
}
