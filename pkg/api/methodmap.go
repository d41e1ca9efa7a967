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

package api

import (
	"fmt"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/methods"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers/syncutil"
)

type MethodFunc func(requests.RequestEnv) (any, error)

// MethodMap is the set of JSON-RPC methods the server dispatches to.
type MethodMap struct {
	methods map[string]MethodFunc
	mu      syncutil.RWMutex
}

func NewMethodMap() *MethodMap {
	return &MethodMap{methods: make(map[string]MethodFunc)}
}

// NewDefaultMethodMap returns a map holding every built in method.
func NewDefaultMethodMap() *MethodMap {
	m := NewMethodMap()
	defaults := map[string]MethodFunc{
		// games
		models.MethodGames:        methods.HandleGames,
		models.MethodGamesList:    methods.HandleGamesList,
		models.MethodGamesYears:   methods.HandleGamesYears,
		models.MethodGamesDetail:  methods.HandleGamesDetail,
		models.MethodGamesSelect:  methods.HandleGamesSelect,
		models.MethodGamesAdd:     methods.HandleGamesAdd,
		models.MethodGamesRemove:  methods.HandleGamesRemove,
		models.MethodGamesUpdate:  methods.HandleGamesUpdate,
		models.MethodGamesLaunch:  methods.HandleGamesLaunch,
		models.MethodGamesHistory: methods.HandleGamesHistory,
		// utils
		models.MethodVersion: methods.HandleVersion,
	}
	for name, fn := range defaults {
		m.methods[name] = fn
	}
	return m
}

// AddMethod registers a method. Names are unique.
func (m *MethodMap) AddMethod(name string, fn MethodFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.methods[name]; exists {
		return fmt.Errorf("method already exists: %s", name)
	}
	m.methods[name] = fn
	return nil
}

func (m *MethodMap) GetMethod(name string) (MethodFunc, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.methods[name]
	return fn, ok
}

// ListMethods returns the registered method names.
func (m *MethodMap) ListMethods() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.methods))
	for name := range m.methods {
		names = append(names, name)
	}
	return names
}
