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

package config

import (
	"fmt"
	"path/filepath"
)

const (
	StoreJSON = "json"
	StoreBolt = "bolt"

	ProbeSystem = "system"
	ProbeProc   = "proc"

	DefaultPageSize         = 15
	DefaultHistoryRetention = 365
)

// Tracking configures the catalog store, process probing and launching.
type Tracking struct {
	WatchStore       *bool  `toml:"watch_store,omitempty"`
	HistoryRetention *int   `toml:"history_retention,omitempty"`
	Store            string `toml:"store,omitempty"`
	StorePath        string `toml:"store_path,omitempty"`
	Probe            string `toml:"probe,omitempty"`
	CompanionPath    string `toml:"companion_path,omitempty"`
	PageSize         int    `toml:"page_size,omitempty"`
}

// StoreBackend returns the configured store backend, falling back to the
// JSON file store for unknown values.
func (c *Instance) StoreBackend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.vals.Tracking.Store {
	case StoreBolt:
		return StoreBolt
	default:
		return StoreJSON
	}
}

func (c *Instance) SetStoreBackend(backend string) error {
	if backend != StoreJSON && backend != StoreBolt {
		return fmt.Errorf("unknown store backend: %s", backend)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Tracking.Store = backend
	return nil
}

// StorePath returns the catalog store location. Relative paths resolve
// against dataDir, and an empty value picks the default file name for the
// configured backend.
func (c *Instance) StorePath(dataDir string) string {
	backend := c.StoreBackend()

	c.mu.RLock()
	defer c.mu.RUnlock()

	path := c.vals.Tracking.StorePath
	if path == "" {
		if backend == StoreBolt {
			return filepath.Join(dataDir, BoltStoreFile)
		}
		return filepath.Join(dataDir, StoreFile)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dataDir, path)
}

func (c *Instance) SetStorePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Tracking.StorePath = path
}

// WatchStore returns true if external edits to the JSON store should be
// reloaded. Defaults to true.
func (c *Instance) WatchStore() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Tracking.WatchStore == nil {
		return true
	}
	return *c.vals.Tracking.WatchStore
}

func (c *Instance) SetWatchStore(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Tracking.WatchStore = &enabled
}

// ProbeKind returns which process probe to use.
func (c *Instance) ProbeKind() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Tracking.Probe == ProbeProc {
		return ProbeProc
	}
	return ProbeSystem
}

// CompanionPath returns the executable started next to games that have the
// controller remap flag set. Empty disables companion launches.
func (c *Instance) CompanionPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Tracking.CompanionPath
}

func (c *Instance) SetCompanionPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Tracking.CompanionPath = path
}

// HistoryRetention returns the number of days of play sessions to keep.
// 0 disables cleanup.
func (c *Instance) HistoryRetention() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Tracking.HistoryRetention == nil {
		return DefaultHistoryRetention
	}
	return *c.vals.Tracking.HistoryRetention
}

func (c *Instance) SetHistoryRetention(days int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Tracking.HistoryRetention = &days
}

// PageSize returns how many list entries each window extension reveals.
func (c *Instance) PageSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Tracking.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.vals.Tracking.PageSize
}
