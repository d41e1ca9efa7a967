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

package database

import (
	"time"
)

// Session is one continuous interval of a game running, from the tick it
// was first seen to the tick it was seen gone.
type Session struct {
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	GameName      string     `json:"gameName"`
	GamePath      string     `json:"gamePath"`
	DBID          int64      `json:"id"`
	GameID        int64      `json:"gameId"`
	PlayTime      int64      `json:"playTime"`
	ClockReliable bool       `json:"clockReliable"`
}

// HistoryDBI is the play session history database.
type HistoryDBI interface {
	AddSession(s *Session) (int64, error)
	UpdateSessionTime(dbid, playTime int64) error
	CloseSession(dbid int64, endTime time.Time, playTime int64) error
	GetSessions(gameID int64, lastID int64, limit int) ([]Session, error)
	GameStats(gameID int64) (GameStats, error)
	DeleteGameSessions(gameID int64) (int64, error)
	CloseHangingSessions() error
	CleanupSessions(retentionDays int) (int64, error)
	Close() error
}

// GameStats summarises every recorded session of a game.
type GameStats struct {
	FirstPlayed *time.Time `json:"firstPlayed,omitempty"`
	LastPlayed  *time.Time `json:"lastPlayed,omitempty"`
	Sessions    int64      `json:"sessions"`
	PlayTime    int64      `json:"playTime"`
	Longest     int64      `json:"longest"`
}
