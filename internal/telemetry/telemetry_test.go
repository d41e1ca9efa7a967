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

package telemetry

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrubPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no username in path",
			input:    "/opt/games/Hades/Hades",
			expected: "/opt/games/Hades/Hades",
		},
		{
			name:     "linux home path",
			input:    "/home/alice/Games/Celeste/Celeste",
			expected: "/home/<user>/Games/Celeste/Celeste",
		},
		{
			name:     "linux home path uppercase",
			input:    "/Home/Alice/Games/Celeste/Celeste",
			expected: "/home/<user>/Games/Celeste/Celeste",
		},
		{
			name:     "macos users path",
			input:    "/Users/alice/Applications/Hades.app",
			expected: "/Users/<user>/Applications/Hades.app",
		},
		{
			name:     "windows path",
			input:    "C:\\Users\\alice\\Games\\Hades\\Hades.exe",
			expected: "C:\\Users\\<user>\\Games\\Hades\\Hades.exe",
		},
		{
			name:     "windows path different drive",
			input:    "D:\\Users\\admin\\Games\\Hades.exe",
			expected: "C:\\Users\\<user>\\Games\\Hades.exe",
		},
		{
			name:     "error message with path",
			input:    "failed to launch /home/bob/Games/Hades/Hades: permission denied",
			expected: "failed to launch /home/<user>/Games/Hades/Hades: permission denied",
		},
		{
			name:     "multiple paths in message",
			input:    "moving /home/alice/a to /home/bob/b",
			expected: "moving /home/<user>/a to /home/<user>/b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, scrubPath(tt.input))
		})
	}
}

func TestScrubEvent(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{
		ServerName: "alices-pc",
		Message:    "failed to save /home/alice/.local/share/zaparoo-playtime/store.json",
		Extra: map[string]any{
			"path":  "/home/alice/Games/Hades/Hades",
			"count": 3,
		},
		Exception: []sentry.Exception{{
			Value: "open /Users/alice/store.json: permission denied",
			Stacktrace: &sentry.Stacktrace{Frames: []sentry.Frame{{
				AbsPath:  "/home/alice/src/playtime/pkg/store/store.go",
				Filename: "pkg/store/store.go",
			}}},
		}},
	}

	out := scrubEvent(event)
	require.NotNil(t, out)

	assert.Empty(t, out.ServerName)
	assert.Equal(t, "failed to save /home/<user>/.local/share/zaparoo-playtime/store.json", out.Message)
	assert.Equal(t, "/home/<user>/Games/Hades/Hades", out.Extra["path"])
	assert.Equal(t, 3, out.Extra["count"])
	assert.Equal(t, "open /Users/<user>/store.json: permission denied", out.Exception[0].Value)
	assert.Equal(t, "/home/<user>/src/playtime/pkg/store/store.go", out.Exception[0].Stacktrace.Frames[0].AbsPath)
	assert.Equal(t, "pkg/store/store.go", out.Exception[0].Stacktrace.Frames[0].Filename)
}

func TestClientOptions(t *testing.T) {
	t.Parallel()

	opts := clientOptions(Options{DSN: "https://key@example.invalid/1", AppVersion: "1.2.0"})
	assert.Equal(t, "zaparoo-playtime@1.2.0", opts.Release)
	assert.False(t, opts.SendDefaultPII)
	require.NotNil(t, opts.BeforeSend)

	out := opts.BeforeSend(&sentry.Event{Message: "launch /home/alice/Games/Hades"}, nil)
	assert.Equal(t, "launch /home/<user>/Games/Hades", out.Message)
}

//nolint:paralleltest // reads package state
func TestInit_DisabledWithoutDSN(t *testing.T) {
	require.NoError(t, Init(Options{Enabled: true}))
	assert.False(t, Enabled())

	require.NoError(t, Init(Options{DSN: "https://key@example.invalid/1"}))
	assert.False(t, Enabled())

	// no-ops while disabled
	Flush()
	Close()
}
