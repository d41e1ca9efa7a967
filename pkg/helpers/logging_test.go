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
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:paralleltest // modifies the global logger
func TestInitLogging(t *testing.T) {
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })

	dirs := Dirs{TempDir: filepath.Join(t.TempDir(), "tmp")}
	var extra bytes.Buffer

	require.NoError(t, InitLogging(dirs, []io.Writer{&extra}))
	log.Info().Str("name", "game.exe").Msg("test entry")

	assert.Contains(t, extra.String(), "test entry")
	assert.Contains(t, extra.String(), `"name":"game.exe"`)
	assert.FileExists(t, LogPath(dirs))
}
