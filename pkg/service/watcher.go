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
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const storeWatchDebounce = 250 * time.Millisecond

// watchedStore is a store backed by a single file that can tell its own
// writes apart from someone else's.
type watchedStore interface {
	Path() string
	ModifiedExternally() bool
}

// startStoreWatcher reloads the catalog when the store file is edited by
// another program. The file's directory is watched so atomic replaces are
// seen too. Bursts of events are collapsed into one check.
func startStoreWatcher(
	ctx context.Context,
	clock clockwork.Clock,
	st watchedStore,
	reload func(context.Context) error,
) (*fsnotify.Watcher, error) {
	log.Info().Str("path", st.Path()).Msg("starting store watcher")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create store watcher: %w", err)
	}

	name := filepath.Base(st.Path())

	go func() {
		var timer clockwork.Timer
		var fire <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if timer == nil {
					timer = clock.NewTimer(storeWatchDebounce)
				} else {
					timer.Reset(storeWatchDebounce)
				}
				fire = timer.Chan()
			case <-fire:
				fire = nil
				if !st.ModifiedExternally() {
					continue
				}
				log.Info().Str("path", st.Path()).Msg("store changed on disk, reloading")
				if err := reload(ctx); err != nil {
					log.Error().Err(err).Msg("failed to reload store")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("error in store watcher")
			}
		}
	}()

	if err := watcher.Add(filepath.Dir(st.Path())); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing store watcher")
		}
		return nil, fmt.Errorf("failed to watch store directory: %w", err)
	}

	return watcher, nil
}
