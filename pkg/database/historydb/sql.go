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

package historydb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/database"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	defaultSessionLimit = 25
	maxSessionLimit     = 100
)

func sqlMigrateUp(ctx context.Context, db *sql.DB) error {
	if err := database.MigrateUp(ctx, db, migrationFiles, "migrations"); err != nil {
		return fmt.Errorf("failed to run history database migrations: %w", err)
	}
	return nil
}

func closeStmt(stmt *sql.Stmt) {
	if err := stmt.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close sql statement")
	}
}

func sqlVacuum(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `vacuum;`)
	if err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

func sqlAddSession(ctx context.Context, db *sql.DB, s *database.Session, now time.Time) (int64, error) {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO Sessions(
			GameID, GameName, GamePath, StartTime, PlayTime,
			ClockReliable, CreatedAt, UpdatedAt
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare session insert statement: %w", err)
	}
	defer closeStmt(stmt)

	result, err := stmt.ExecContext(ctx,
		s.GameID,
		s.GameName,
		s.GamePath,
		s.StartTime.Unix(),
		s.PlayTime,
		helpers.IsClockReliable(s.StartTime),
		now.Unix(),
		now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute session insert: %w", err)
	}

	dbid, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return dbid, nil
}

func sqlUpdateSessionTime(ctx context.Context, db *sql.DB, dbid, playTime int64, now time.Time) error {
	stmt, err := db.PrepareContext(ctx, `
		UPDATE Sessions
		SET PlayTime = ?, UpdatedAt = ?
		WHERE DBID = ?;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare session time update statement: %w", err)
	}
	defer closeStmt(stmt)

	_, err = stmt.ExecContext(ctx, playTime, now.Unix(), dbid)
	if err != nil {
		return fmt.Errorf("failed to execute session time update: %w", err)
	}

	return nil
}

func sqlCloseSession(
	ctx context.Context,
	db *sql.DB,
	dbid int64,
	endTime time.Time,
	playTime int64,
	now time.Time,
) error {
	stmt, err := db.PrepareContext(ctx, `
		UPDATE Sessions
		SET EndTime = ?, PlayTime = ?, UpdatedAt = ?
		WHERE DBID = ?;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare session close statement: %w", err)
	}
	defer closeStmt(stmt)

	_, err = stmt.ExecContext(ctx, endTime.Unix(), playTime, now.Unix(), dbid)
	if err != nil {
		return fmt.Errorf("failed to execute session close: %w", err)
	}

	return nil
}

func sqlGetSessions(
	ctx context.Context,
	db *sql.DB,
	gameID, lastID int64,
	limit int,
) ([]database.Session, error) {
	if limit <= 0 {
		limit = defaultSessionLimit
	}
	if limit > maxSessionLimit {
		limit = maxSessionLimit
	}
	if lastID <= 0 {
		lastID = math.MaxInt64
	}

	list := make([]database.Session, 0, limit)

	q, err := db.PrepareContext(ctx, `
		SELECT
			DBID, GameID, GameName, GamePath, StartTime, EndTime,
			PlayTime, ClockReliable
		FROM Sessions
		WHERE DBID < ? AND (? = 0 OR GameID = ?)
		ORDER BY DBID DESC
		LIMIT ?;
	`)
	if err != nil {
		return list, fmt.Errorf("failed to prepare sessions query statement: %w", err)
	}
	defer closeStmt(q)

	rows, err := q.QueryContext(ctx, lastID, gameID, gameID, limit)
	if err != nil {
		return list, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close rows")
		}
	}()

	for rows.Next() {
		var s database.Session
		var startUnix int64
		var endUnix sql.NullInt64

		err = rows.Scan(
			&s.DBID,
			&s.GameID,
			&s.GameName,
			&s.GamePath,
			&startUnix,
			&endUnix,
			&s.PlayTime,
			&s.ClockReliable,
		)
		if err != nil {
			return list, fmt.Errorf("failed to scan session row: %w", err)
		}

		s.StartTime = time.Unix(startUnix, 0)
		if endUnix.Valid {
			end := time.Unix(endUnix.Int64, 0)
			s.EndTime = &end
		}

		list = append(list, s)
	}

	if err = rows.Err(); err != nil {
		return list, fmt.Errorf("error iterating session rows: %w", err)
	}

	return list, nil
}

func sqlGameStats(ctx context.Context, db *sql.DB, gameID int64) (database.GameStats, error) {
	var stats database.GameStats
	var first, last sql.NullInt64

	row := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*), COALESCE(SUM(PlayTime), 0), COALESCE(MAX(PlayTime), 0),
			MIN(StartTime), MAX(COALESCE(EndTime, StartTime + PlayTime))
		FROM Sessions
		WHERE GameID = ?;
	`, gameID)
	err := row.Scan(&stats.Sessions, &stats.PlayTime, &stats.Longest, &first, &last)
	if err != nil {
		return stats, fmt.Errorf("failed to query game stats: %w", err)
	}

	if first.Valid {
		t := time.Unix(first.Int64, 0)
		stats.FirstPlayed = &t
	}
	if last.Valid {
		t := time.Unix(last.Int64, 0)
		stats.LastPlayed = &t
	}

	return stats, nil
}

func sqlDeleteGameSessions(ctx context.Context, db *sql.DB, gameID int64) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM Sessions WHERE GameID = ?;`, gameID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete game sessions: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func sqlCloseHangingSessions(ctx context.Context, db *sql.DB, now time.Time) error {
	stmt, err := db.PrepareContext(ctx, `
		UPDATE Sessions
		SET EndTime = StartTime + PlayTime,
		    UpdatedAt = ?
		WHERE EndTime IS NULL;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare close hanging sessions statement: %w", err)
	}
	defer closeStmt(stmt)

	result, err := stmt.ExecContext(ctx, now.Unix())
	if err != nil {
		return fmt.Errorf("failed to close hanging sessions: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		log.Info().Msgf("closed %d hanging play sessions", rows)
	}

	return nil
}

func sqlCleanupSessions(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	stmt, err := db.PrepareContext(ctx, `DELETE FROM Sessions WHERE StartTime < ?;`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare session cleanup statement: %w", err)
	}
	defer closeStmt(stmt)

	result, err := stmt.ExecContext(ctx, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to execute session cleanup: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected > 0 {
		if err := sqlVacuum(ctx, db); err != nil {
			return rowsAffected, fmt.Errorf("cleanup succeeded but vacuum failed: %w", err)
		}
	}

	return rowsAffected, nil
}
