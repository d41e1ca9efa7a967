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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, contents string) *Instance {
	t.Helper()
	dir := t.TempDir()
	if contents != "" {
		err := os.WriteFile(filepath.Join(dir, CfgFile), []byte(contents), 0o600)
		require.NoError(t, err)
	}
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	return cfg
}

func TestNewConfig_WritesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, CfgFile))
	assert.Equal(t, filepath.Join(dir, CfgFile), cfg.Path())
	assert.NotEmpty(t, cfg.DeviceID())
	assert.False(t, cfg.DebugLogging())
	assert.Equal(t, StoreJSON, cfg.StoreBackend())
	assert.Equal(t, ProbeSystem, cfg.ProbeKind())
	assert.Equal(t, DefaultAPIPort, cfg.APIPort())
	assert.Equal(t, DefaultPageSize, cfg.PageSize())
	assert.Equal(t, DefaultHistoryRetention, cfg.HistoryRetention())
	assert.True(t, cfg.WatchStore())
}

func TestLoad_FileValuesOverrideDefaults(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, `
config_schema = 1
debug_logging = true

[tracking]
store = "bolt"
store_path = "games.db"
probe = "proc"
watch_store = false
companion_path = "C:\\Tools\\DS4Windows.exe"
history_retention = 30
page_size = 40

[service]
api_port = 9000
allowed_origins = ["http://localhost:3000"]

[[service.publishers.mqtt]]
broker = "tcp://localhost:1883"
topic = "playtime"

[[service.publishers.mqtt]]
enabled = false
broker = "tcp://other:1883"
topic = "ignored"
`)

	assert.True(t, cfg.DebugLogging())
	assert.Equal(t, StoreBolt, cfg.StoreBackend())
	assert.Equal(t, filepath.Join("/data", "games.db"), cfg.StorePath("/data"))
	assert.Equal(t, ProbeProc, cfg.ProbeKind())
	assert.False(t, cfg.WatchStore())
	assert.Equal(t, `C:\Tools\DS4Windows.exe`, cfg.CompanionPath())
	assert.Equal(t, 30, cfg.HistoryRetention())
	assert.Equal(t, 40, cfg.PageSize())
	assert.Equal(t, 9000, cfg.APIPort())
	assert.Equal(t, "127.0.0.1:9000", cfg.APIListen())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins())

	pubs := cfg.MQTTPublishers()
	require.Len(t, pubs, 1)
	assert.Equal(t, "playtime", pubs[0].Topic)
}

func TestLoad_SchemaMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, CfgFile), []byte("config_schema = 99\n"), 0o600)
	require.NoError(t, err)

	_, err = NewConfig(dir, BaseDefaults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version mismatch")
}

func TestLoad_InvalidTOML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, CfgFile), []byte("[tracking\n"), 0o600)
	require.NoError(t, err)

	_, err = NewConfig(dir, BaseDefaults)
	require.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, "")
	require.NoError(t, cfg.SetStoreBackend(StoreBolt))
	cfg.SetCompanionPath("/opt/remap")
	cfg.SetHistoryRetention(0)
	cfg.SetWatchStore(false)
	cfg.SetAPIPort(7600)
	require.NoError(t, cfg.Save())

	reloaded, err := NewConfig(filepath.Dir(cfg.Path()), BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, StoreBolt, reloaded.StoreBackend())
	assert.Equal(t, "/opt/remap", reloaded.CompanionPath())
	assert.Equal(t, 0, reloaded.HistoryRetention())
	assert.False(t, reloaded.WatchStore())
	assert.Equal(t, 7600, reloaded.APIPort())
	assert.Equal(t, cfg.DeviceID(), reloaded.DeviceID())
}

func TestSetStoreBackend_Unknown(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, "")
	require.Error(t, cfg.SetStoreBackend("sqlite"))
	assert.Equal(t, StoreJSON, cfg.StoreBackend())
}

func TestStorePath(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, "")
	assert.Equal(t, filepath.Join("/data", StoreFile), cfg.StorePath("/data"))

	require.NoError(t, cfg.SetStoreBackend(StoreBolt))
	assert.Equal(t, filepath.Join("/data", BoltStoreFile), cfg.StorePath("/data"))

	abs := filepath.Join(t.TempDir(), "custom.db")
	cfg.SetStorePath(abs)
	assert.Equal(t, abs, cfg.StorePath("/data"))
}

func TestErrorReporting_RequiresDSN(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, "config_schema = 1\nerror_reporting = true\n")
	assert.False(t, cfg.ErrorReporting())

	cfg = newTestConfig(t,
		"config_schema = 1\nerror_reporting = true\nsentry_dsn = \"https://key@example.invalid/1\"\n")
	assert.True(t, cfg.ErrorReporting())
	assert.Equal(t, "https://key@example.invalid/1", cfg.SentryDSN())
}
