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

	"github.com/ZaparooProject/zaparoo-playtime/pkg/database"
)

type GameResponse struct {
	AddedDate       time.Time  `json:"addedDate"`
	CustomName      *string    `json:"customName,omitempty"`
	CoverURL        *string    `json:"coverUrl,omitempty"`
	LastPlayedDate  *time.Time `json:"lastPlayedDate,omitempty"`
	Description     *string    `json:"description,omitempty"`
	ReleaseDate     *string    `json:"releaseDate,omitempty"`
	Name            string     `json:"name"`
	DisplayName     string     `json:"displayName"`
	Path            string     `json:"path"`
	PlayTime        string     `json:"playTime"`
	LastPlayed      string     `json:"lastPlayed"`
	Screenshots     []string   `json:"screenshots"`
	Genres          []string   `json:"genres"`
	ID              int64      `json:"id"`
	Time            int64      `json:"time"`
	Running         bool       `json:"running"`
	ControllerRemap bool       `json:"controllerRemap"`
}

type GamesResponse struct {
	Games []GameResponse `json:"games"`
}

type ListResponse struct {
	Text        string         `json:"text"`
	Games       []GameResponse `json:"games"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Year        int            `json:"year,omitempty"`
	Total       int            `json:"total"`
	HasMore     bool           `json:"hasMore"`
}

type YearsResponse struct {
	Years []int `json:"years"`
}

// DetailResponse is nil Game when nothing is selected.
type DetailResponse struct {
	Game       *GameResponse `json:"game"`
	FileExists bool          `json:"fileExists"`
}

type HistoryResponse struct {
	Sessions []database.Session `json:"sessions"`
	Stats    database.GameStats `json:"stats"`
}

type VersionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}
