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

package helpers

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/spf13/afero"
)

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// CreateExecutable writes a small executable file, creating parent dirs.
func (h *FSHelper) CreateExecutable(path string) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for executable %s: %w", path, err)
	}
	if err := afero.WriteFile(h.Fs, path, []byte{0x7f, 'E', 'L', 'F'}, 0o755); err != nil {
		return fmt.Errorf("failed to write executable %s: %w", path, err)
	}
	return nil
}

// CreateStoreFile writes entries in the JSON store layout.
func (h *FSHelper) CreateStoreFile(path string, entries []catalog.Entry) error {
	if entries == nil {
		entries = []catalog.Entry{}
	}
	data, err := json.MarshalIndent(map[string]any{"processes": entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	return h.WriteFile(path, data)
}

// FileExists checks if a file exists
func (h *FSHelper) FileExists(path string) bool {
	exists, err := afero.Exists(h.Fs, path)
	if err != nil {
		return false
	}
	return exists
}

// ReadFile reads a file and returns its content
func (h *FSHelper) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes content to a file, creating parent dirs.
func (h *FSHelper) WriteFile(path string, content []byte) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", path, err)
	}
	if err := afero.WriteFile(h.Fs, path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// GameLibrary returns executable paths for a small set of test games.
func GameLibrary(base string) []string {
	return []string{
		filepath.Join(base, "Hades", "Hades"),
		filepath.Join(base, "Celeste", "Celeste"),
		filepath.Join(base, "Hollow Knight", "hollow_knight"),
		filepath.Join(base, "Stardew Valley", "StardewValley"),
	}
}

// SetupGameLibrary creates an in-memory filesystem holding GameLibrary
// executables under /games.
func SetupGameLibrary() (*FSHelper, []string, error) {
	helper := NewMemoryFS()
	paths := GameLibrary("/games")
	for _, p := range paths {
		if err := helper.CreateExecutable(p); err != nil {
			return nil, nil, err
		}
	}
	return helper, paths, nil
}
