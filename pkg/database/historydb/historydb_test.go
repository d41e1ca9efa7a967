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
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/database"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 2, 10, 20, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) (*HistoryDB, *clockwork.FakeClock) {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	clock := clockwork.NewFakeClockAt(testNow)
	db.clock = clock
	return db, clock
}

func addSession(t *testing.T, db *HistoryDB, gameID int64, start time.Time) int64 {
	t.Helper()
	dbid, err := db.AddSession(&database.Session{
		GameID:    gameID,
		GameName:  "game.exe",
		GamePath:  `C:\Games\game.exe`,
		StartTime: start,
	})
	require.NoError(t, err)
	return dbid
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	db, clock := newTestDB(t)
	start := testNow

	dbid := addSession(t, db, 7, start)
	assert.Positive(t, dbid)

	clock.Advance(time.Minute)
	require.NoError(t, db.UpdateSessionTime(dbid, 60))

	sessions, err := db.GetSessions(7, 0, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(60), sessions[0].PlayTime)
	assert.Nil(t, sessions[0].EndTime)
	assert.True(t, sessions[0].ClockReliable)
	assert.Equal(t, start.Unix(), sessions[0].StartTime.Unix())

	end := start.Add(90 * time.Second)
	require.NoError(t, db.CloseSession(dbid, end, 90))

	sessions, err = db.GetSessions(7, 0, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].EndTime)
	assert.Equal(t, end.Unix(), sessions[0].EndTime.Unix())
	assert.Equal(t, int64(90), sessions[0].PlayTime)
}

func TestGetSessions_FilterAndPaging(t *testing.T) {
	t.Parallel()

	db, _ := newTestDB(t)
	var ids []int64
	for i := range 5 {
		ids = append(ids, addSession(t, db, int64(1+i%2), testNow.Add(time.Duration(i)*time.Hour)))
	}

	all, err := db.GetSessions(0, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, ids[4], all[0].DBID, "newest first")

	game1, err := db.GetSessions(1, 0, 10)
	require.NoError(t, err)
	assert.Len(t, game1, 3)

	page, err := db.GetSessions(0, ids[2], 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[1], page[0].DBID)
	assert.Equal(t, ids[0], page[1].DBID)

	limited, err := db.GetSessions(0, 0, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestCloseHangingSessions(t *testing.T) {
	t.Parallel()

	db, _ := newTestDB(t)
	dbid := addSession(t, db, 3, testNow)
	require.NoError(t, db.UpdateSessionTime(dbid, 300))

	require.NoError(t, db.CloseHangingSessions())

	sessions, err := db.GetSessions(3, 0, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].EndTime)
	assert.Equal(t, testNow.Add(300*time.Second).Unix(), sessions[0].EndTime.Unix())
}

func TestGameStats(t *testing.T) {
	t.Parallel()

	db, _ := newTestDB(t)

	empty, err := db.GameStats(9)
	require.NoError(t, err)
	assert.Zero(t, empty.Sessions)
	assert.Nil(t, empty.FirstPlayed)

	a := addSession(t, db, 9, testNow)
	require.NoError(t, db.CloseSession(a, testNow.Add(100*time.Second), 100))
	b := addSession(t, db, 9, testNow.Add(time.Hour))
	require.NoError(t, db.CloseSession(b, testNow.Add(time.Hour+250*time.Second), 250))
	addSession(t, db, 10, testNow)

	stats, err := db.GameStats(9)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Sessions)
	assert.Equal(t, int64(350), stats.PlayTime)
	assert.Equal(t, int64(250), stats.Longest)
	require.NotNil(t, stats.FirstPlayed)
	assert.Equal(t, testNow.Unix(), stats.FirstPlayed.Unix())
	require.NotNil(t, stats.LastPlayed)
	assert.Equal(t, testNow.Add(time.Hour+250*time.Second).Unix(), stats.LastPlayed.Unix())
}

func TestDeleteGameSessions(t *testing.T) {
	t.Parallel()

	db, _ := newTestDB(t)
	addSession(t, db, 1, testNow)
	addSession(t, db, 1, testNow)
	addSession(t, db, 2, testNow)

	n, err := db.DeleteGameSessions(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := db.GetSessions(0, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCleanupSessions(t *testing.T) {
	t.Parallel()

	db, _ := newTestDB(t)
	addSession(t, db, 1, testNow.AddDate(0, 0, -40))
	addSession(t, db, 1, testNow.AddDate(0, 0, -5))

	n, err := db.CleanupSessions(0)
	require.NoError(t, err)
	assert.Zero(t, n, "zero retention keeps everything")

	n, err = db.CleanupSessions(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := db.GetSessions(0, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUnreliableClockIsFlagged(t *testing.T) {
	t.Parallel()

	db, _ := newTestDB(t)
	addSession(t, db, 1, time.Unix(60, 0))

	sessions, err := db.GetSessions(1, 0, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.False(t, sessions[0].ClockReliable)
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	addSession(t, db, 1, testNow)
	require.NoError(t, db.Close())

	db, err = Open(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	assert.Equal(t, path, db.GetDBPath())

	all, err := db.GetSessions(0, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNullSQL(t *testing.T) {
	t.Parallel()

	db := &HistoryDB{}
	_, err := db.AddSession(&database.Session{})
	require.ErrorIs(t, err, ErrNullSQL)
	require.ErrorIs(t, db.CloseHangingSessions(), ErrNullSQL)
	_, err = db.GetSessions(0, 0, 0)
	require.ErrorIs(t, err, ErrNullSQL)
	assert.NoError(t, db.Close())
}
