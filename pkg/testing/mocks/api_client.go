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

package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/stretchr/testify/mock"
)

// MockAPIClient is a mock implementation of client.APIClient for testing.
type MockAPIClient struct {
	mock.Mock
}

func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) Call(ctx context.Context, method, params string) (string, error) {
	args := m.Called(ctx, method, params)
	return args.String(0), args.Error(1)
}

func (m *MockAPIClient) WaitNotification(
	ctx context.Context,
	timeout time.Duration,
	method string,
) (string, error) {
	args := m.Called(ctx, timeout, method)
	return args.String(0), args.Error(1)
}

// SetupCall configures the mock to answer method with result encoded as
// JSON, for any params.
func (m *MockAPIClient) SetupCall(method string, result any) {
	data, _ := json.Marshal(result)
	m.On("Call", mock.Anything, method, mock.Anything).Return(string(data), nil)
}

// SetupCallWithParams is SetupCall for one exact params payload.
func (m *MockAPIClient) SetupCallWithParams(method string, params, result any) {
	p, _ := json.Marshal(params)
	data, _ := json.Marshal(result)
	m.On("Call", mock.Anything, method, string(p)).Return(string(data), nil)
}

func (m *MockAPIClient) SetupCallError(method string, err error) {
	m.On("Call", mock.Anything, method, mock.Anything).Return("", err)
}

// SetupGamesList answers games.list with games as a single full page.
func (m *MockAPIClient) SetupGamesList(games []models.GameResponse) {
	m.SetupCall(models.MethodGamesList, models.ListResponse{
		Games: games,
		Total: len(games),
	})
}
