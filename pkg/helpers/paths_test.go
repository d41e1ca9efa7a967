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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirsEnsure(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dirs := Dirs{
		ConfigDir: filepath.Join(root, "config"),
		DataDir:   filepath.Join(root, "data"),
		TempDir:   filepath.Join(root, "tmp"),
	}

	require.NoError(t, dirs.Ensure())
	assert.DirExists(t, dirs.ConfigDir)
	assert.DirExists(t, dirs.DataDir)
	assert.DirExists(t, dirs.TempDir)
}

func TestDefaultDirs(t *testing.T) {
	t.Parallel()

	dirs := DefaultDirs()
	assert.NotEmpty(t, dirs.ConfigDir)
	assert.NotEmpty(t, dirs.DataDir)
	assert.NotEmpty(t, dirs.TempDir)
}

func TestLogPath(t *testing.T) {
	t.Parallel()

	dirs := Dirs{TempDir: "/tmp/playtime"}
	assert.Equal(t, filepath.Join("/tmp/playtime", "playtime.log"), LogPath(dirs))
}
