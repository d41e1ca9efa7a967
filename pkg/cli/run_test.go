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

package cli

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/client"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/probe"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/service"
	testhelpers "github.com/ZaparooProject/zaparoo-playtime/pkg/testing/helpers"
	"github.com/olahol/melody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	var lc net.ListenConfig
	l, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func testDirs(t *testing.T) helpers.Dirs {
	t.Helper()
	base := t.TempDir()
	return helpers.Dirs{
		ConfigDir: filepath.Join(base, "config"),
		DataDir:   filepath.Join(base, "data"),
		TempDir:   filepath.Join(base, "tmp"),
	}
}

func TestRunDaemon_StopsOnCancel(t *testing.T) {
	t.Parallel()

	cfg := testhelpers.NewTestConfigWithPort(t, freePort(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- RunDaemon(ctx, cfg, testDirs(t), service.WithProbe(probe.Static()))
	}()

	require.True(t, client.WaitForAPI(cfg, 5*time.Second, 50*time.Millisecond))
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.False(t, client.IsServiceRunning(cfg))
}

func TestRunDaemon_AlreadyRunning(t *testing.T) {
	t.Parallel()

	ws := testhelpers.NewWebSocketTestServer(t, func(s *melody.Session, msg []byte) {
		var req testhelpers.JSONRPCRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			return
		}
		resp, _ := json.Marshal(models.ResponseObject{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  models.VersionResponse{Version: "test"},
		})
		_ = s.Write(resp)
	})
	defer ws.Close()

	cfg := testhelpers.NewTestConfigWithPort(t, ws.Port(t))
	dirs := testDirs(t)

	require.NoError(t, RunDaemon(context.Background(), cfg, dirs))
	assert.NoDirExists(t, dirs.DataDir)
}

func TestRunDaemon_ServiceFailure(t *testing.T) {
	t.Parallel()

	var lc net.ListenConfig
	l, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() {
		_ = l.Close()
	}()

	cfg := testhelpers.NewTestConfigWithPort(t, l.Addr().(*net.TCPAddr).Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- RunDaemon(context.Background(), cfg, testDirs(t), service.WithProbe(probe.Static()))
	}()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error stopping service")
	case <-time.After(10 * time.Second):
		t.Fatal("daemon kept running without an API listener")
	}
}
