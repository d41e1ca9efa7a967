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

// Package helpers holds shared test helpers: database mocks, in-memory
// databases, filesystem fixtures and websocket test servers.
//
// Example:
//
//	func TestRecorder(t *testing.T) {
//		db := helpers.NewMockHistoryDBI()
//		db.On("AddSession", helpers.SessionMatcher(1)).Return(int64(5), nil)
//
//		// code under test
//
//		db.AssertExpectations(t)
//	}
package helpers

import (
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/database"
	"github.com/stretchr/testify/mock"
)

// MockHistoryDBI is a testify mock of database.HistoryDBI.
type MockHistoryDBI struct {
	mock.Mock
}

var _ database.HistoryDBI = (*MockHistoryDBI)(nil)

func NewMockHistoryDBI() *MockHistoryDBI {
	return &MockHistoryDBI{}
}

func (m *MockHistoryDBI) AddSession(s *database.Session) (int64, error) {
	args := m.Called(s)
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock HistoryDBI add session failed: %w", err)
	}
	return args.Get(0).(int64), nil //nolint:forcetypeassert // mock
}

func (m *MockHistoryDBI) UpdateSessionTime(dbid, playTime int64) error {
	args := m.Called(dbid, playTime)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock HistoryDBI update session failed: %w", err)
	}
	return nil
}

func (m *MockHistoryDBI) CloseSession(dbid int64, endTime time.Time, playTime int64) error {
	args := m.Called(dbid, endTime, playTime)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock HistoryDBI close session failed: %w", err)
	}
	return nil
}

func (m *MockHistoryDBI) GetSessions(gameID, lastID int64, limit int) ([]database.Session, error) {
	args := m.Called(gameID, lastID, limit)
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock HistoryDBI get sessions failed: %w", err)
	}
	if sessions, ok := args.Get(0).([]database.Session); ok {
		return sessions, nil
	}
	return nil, nil
}

func (m *MockHistoryDBI) GameStats(gameID int64) (database.GameStats, error) {
	args := m.Called(gameID)
	if err := args.Error(1); err != nil {
		return database.GameStats{}, fmt.Errorf("mock HistoryDBI game stats failed: %w", err)
	}
	return args.Get(0).(database.GameStats), nil //nolint:forcetypeassert // mock
}

func (m *MockHistoryDBI) DeleteGameSessions(gameID int64) (int64, error) {
	args := m.Called(gameID)
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock HistoryDBI delete sessions failed: %w", err)
	}
	return args.Get(0).(int64), nil //nolint:forcetypeassert // mock
}

func (m *MockHistoryDBI) CloseHangingSessions() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock HistoryDBI close hanging failed: %w", err)
	}
	return nil
}

func (m *MockHistoryDBI) CleanupSessions(retentionDays int) (int64, error) {
	args := m.Called(retentionDays)
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock HistoryDBI cleanup failed: %w", err)
	}
	return args.Get(0).(int64), nil //nolint:forcetypeassert // mock
}

func (m *MockHistoryDBI) Close() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock HistoryDBI close failed: %w", err)
	}
	return nil
}

// SessionMatcher matches a newly opened session for gameID.
func SessionMatcher(gameID int64) any {
	return mock.MatchedBy(func(s *database.Session) bool {
		return s != nil &&
			s.GameID == gameID &&
			s.EndTime == nil &&
			s.PlayTime == 0 &&
			!s.StartTime.IsZero()
	})
}
