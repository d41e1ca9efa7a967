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

//go:build !windows

package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_StartMissingBinary(t *testing.T) {
	t.Parallel()

	exec := &RealExecutor{}
	err := exec.Start(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestRealExecutor_StartWithDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")

	exec := &RealExecutor{}
	err := exec.StartWithOptions(
		context.Background(),
		StartOptions{Dir: dir},
		"/bin/sh", "-c", "touch ran",
	)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, statErr := os.Stat(marker)
		return statErr == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRealExecutor_RunPropagatesExitStatus(t *testing.T) {
	t.Parallel()

	exec := &RealExecutor{}
	require.NoError(t, exec.Run(context.Background(), "/bin/sh", "-c", "exit 0"))
	assert.Error(t, exec.Run(context.Background(), "/bin/sh", "-c", "exit 3"))
}
