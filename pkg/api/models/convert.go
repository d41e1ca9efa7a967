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
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/views"
)

// NewGameResponse formats an entry for clients. Relative fields are
// computed against now.
func NewGameResponse(e *catalog.Entry, now time.Time) GameResponse {
	resp := GameResponse{
		AddedDate:       e.AddedDate,
		CustomName:      e.CustomName,
		CoverURL:        e.CoverURL,
		LastPlayedDate:  e.LastPlayedDate,
		Description:     e.Description,
		ReleaseDate:     e.ReleaseDate,
		Name:            e.Name,
		DisplayName:     e.DisplayName(),
		Path:            e.Path,
		PlayTime:        helpers.PlayTime(e.Time),
		LastPlayed:      helpers.LastPlayed(e.LastPlayedDate, now),
		Screenshots:     e.Screenshots,
		Genres:          e.Genres,
		ID:              e.ID,
		Time:            e.Time,
		Running:         e.Running,
		ControllerRemap: e.ControllerRemap,
	}
	if resp.Screenshots == nil {
		resp.Screenshots = []string{}
	}
	if resp.Genres == nil {
		resp.Genres = []string{}
	}
	return resp
}

func NewGamesResponse(entries []catalog.Entry, now time.Time) []GameResponse {
	games := make([]GameResponse, len(entries))
	for i := range entries {
		games[i] = NewGameResponse(&entries[i], now)
	}
	return games
}

func NewGameNotificationParams(e *catalog.Entry) GameNotificationParams {
	p := GameNotificationParams{
		Name:        e.Name,
		DisplayName: e.DisplayName(),
		Path:        e.Path,
		ID:          e.ID,
		Time:        e.Time,
		Running:     e.Running,
	}
	if e.LastPlayedDate != nil {
		s := e.LastPlayedDate.Format(time.RFC3339)
		p.LastPlayedDate = &s
	}
	return p
}

func NewListResponse(r *views.Result, now time.Time) ListResponse {
	return ListResponse{
		Text:        r.Query.Text,
		Year:        r.Query.Year,
		Games:       NewGamesResponse(r.Entries, now),
		Suggestions: r.Suggestions,
		Total:       r.Total,
		HasMore:     r.HasMore,
	}
}

// NewDetailResponse formats a selection. A nil detail means nothing is
// selected.
func NewDetailResponse(d *views.Detail, now time.Time) DetailResponse {
	if d == nil {
		return DetailResponse{}
	}
	game := NewGameResponse(&d.Entry, now)
	return DetailResponse{
		Game:       &game,
		FileExists: d.FileExists,
	}
}
