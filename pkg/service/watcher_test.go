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

package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/store"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const externalStore = `{"processes":[{"id":1,"name":"Hades","path":"/games/Hades/Hades","time":60,"addedDate":"2026-01-02T15:04:05Z"}]}`

func newWatchedStore(t *testing.T) (*store.FileStore, chan struct{}, context.Context) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "store.json")
	fs := store.NewFileStore(afero.NewOsFs(), path)
	require.NoError(t, fs.Save(context.Background(), []catalog.Entry{}))

	reloaded := make(chan struct{}, 10)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	watcher, err := startStoreWatcher(ctx, clockwork.NewRealClock(), fs, func(context.Context) error {
		reloaded <- struct{}{}
		return nil
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = watcher.Close()
	})

	return fs, reloaded, ctx
}

func TestStoreWatcher_ReloadsExternalEdit(t *testing.T) {
	t.Parallel()

	fs, reloaded, _ := newWatchedStore(t)
	require.NoError(t, os.WriteFile(fs.Path(), []byte(externalStore), 0o600))

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("store was not reloaded after an external edit")
	}
}

func TestStoreWatcher_IgnoresOwnWrites(t *testing.T) {
	t.Parallel()

	fs, reloaded, ctx := newWatchedStore(t)

	cat := catalog.New()
	_, err := cat.Add("/games/Hades/Hades")
	require.NoError(t, err)
	require.NoError(t, fs.Save(ctx, cat.Snapshot()))

	select {
	case <-reloaded:
		t.Fatal("store reloaded after its own save")
	case <-time.After(4 * storeWatchDebounce):
	}
}

func TestStoreWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	fs, reloaded, _ := newWatchedStore(t)
	other := filepath.Join(filepath.Dir(fs.Path()), "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("hello"), 0o600))

	select {
	case <-reloaded:
		t.Fatal("store reloaded for an unrelated file")
	case <-time.After(4 * storeWatchDebounce):
	}
}

func TestStoreWatcher_CollapsesBursts(t *testing.T) {
	t.Parallel()

	fs, reloaded, _ := newWatchedStore(t)
	for range 5 {
		require.NoError(t, os.WriteFile(fs.Path(), []byte(externalStore), 0o600))
	}

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("store was not reloaded")
	}

	time.Sleep(4 * storeWatchDebounce)
	assert.Empty(t, reloaded)
}

func TestStoreWatcher_MissingDirectory(t *testing.T) {
	t.Parallel()

	fs := store.NewFileStore(afero.NewOsFs(), filepath.Join(t.TempDir(), "missing", "store.json"))
	_, err := startStoreWatcher(context.Background(), clockwork.NewRealClock(), fs, func(context.Context) error {
		return nil
	})
	require.Error(t, err)
}
