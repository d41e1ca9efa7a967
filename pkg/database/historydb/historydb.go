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

// Package historydb records play sessions in a SQLite database.
package historydb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/database"
	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNullSQL = errors.New("HistoryDB is not connected")

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"

type HistoryDB struct {
	sql   *sql.DB
	ctx   context.Context
	clock clockwork.Clock
	path  string
}

var _ database.HistoryDBI = (*HistoryDB)(nil)

// Open opens the history database at path, creating and migrating it as
// needed.
func Open(ctx context.Context, path string) (*HistoryDB, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}

	sqlInstance, err := sql.Open("sqlite3", path+sqliteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &HistoryDB{
		sql:   sqlInstance,
		ctx:   ctx,
		clock: clockwork.NewRealClock(),
		path:  path,
	}
	if err := db.MigrateUp(); err != nil {
		_ = sqlInstance.Close()
		return nil, err
	}
	return db, nil
}

// NewWithSQL wraps an existing connection. Used in tests to inject an
// in-memory or mocked database. Migrations are not run.
func NewWithSQL(ctx context.Context, sqlDB *sql.DB, clock clockwork.Clock) *HistoryDB {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HistoryDB{sql: sqlDB, ctx: ctx, clock: clock}
}

func (db *HistoryDB) GetDBPath() string {
	return db.path
}

func (db *HistoryDB) MigrateUp() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlMigrateUp(db.ctx, db.sql)
}

func (db *HistoryDB) Close() error {
	if db.sql == nil {
		return nil
	}
	err := db.sql.Close()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// AddSession opens a new session and returns its DBID.
func (db *HistoryDB) AddSession(s *database.Session) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlAddSession(db.ctx, db.sql, s, db.clock.Now())
}

// UpdateSessionTime updates the play time of a session still in progress.
func (db *HistoryDB) UpdateSessionTime(dbid, playTime int64) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlUpdateSessionTime(db.ctx, db.sql, dbid, playTime, db.clock.Now())
}

// CloseSession finalizes a session with its end time and final play time.
func (db *HistoryDB) CloseSession(dbid int64, endTime time.Time, playTime int64) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlCloseSession(db.ctx, db.sql, dbid, endTime, playTime, db.clock.Now())
}

// GetSessions returns sessions newest first, older than lastID. A gameID of
// 0 returns sessions for every game.
func (db *HistoryDB) GetSessions(gameID, lastID int64, limit int) ([]database.Session, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetSessions(db.ctx, db.sql, gameID, lastID, limit)
}

func (db *HistoryDB) GameStats(gameID int64) (database.GameStats, error) {
	if db.sql == nil {
		return database.GameStats{}, ErrNullSQL
	}
	return sqlGameStats(db.ctx, db.sql, gameID)
}

func (db *HistoryDB) DeleteGameSessions(gameID int64) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlDeleteGameSessions(db.ctx, db.sql, gameID)
}

// CloseHangingSessions closes sessions left open by an unclean shutdown,
// setting EndTime = StartTime + PlayTime.
func (db *HistoryDB) CloseHangingSessions() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlCloseHangingSessions(db.ctx, db.sql, db.clock.Now())
}

// CleanupSessions removes sessions that started more than retentionDays
// ago. A retention of 0 or less keeps everything.
func (db *HistoryDB) CleanupSessions(retentionDays int) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := db.clock.Now().AddDate(0, 0, -retentionDays)
	return sqlCleanupSessions(db.ctx, db.sql, cutoff)
}
