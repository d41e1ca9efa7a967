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

// Package library is the user facing side of the tracker: every
// add, remove, edit and launch goes through here so the store write is
// finished before the action is acknowledged.
package library

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/notifications"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/launcher"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/service/metrics"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/store"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/views"
	"github.com/rs/zerolog/log"
)

type Library struct {
	cat      *catalog.Catalog
	store    store.Store
	launcher *launcher.Launcher
	metrics  *metrics.Metrics
	ns       chan<- models.Notification
	// saveMu makes taking the snapshot and writing it one step, so a save
	// with an older snapshot can never land after a newer one.
	saveMu syncutil.Mutex
}

type Option func(*Library)

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Library) {
		l.metrics = m
	}
}

// WithNotifications sets where change notifications are sent. Without it
// nothing is announced.
func WithNotifications(ns chan<- models.Notification) Option {
	return func(l *Library) {
		l.ns = ns
	}
}

func New(cat *catalog.Catalog, st store.Store, ln *launcher.Launcher, opts ...Option) *Library {
	l := &Library{
		cat:      cat,
		store:    st,
		launcher: ln,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Library) Catalog() *catalog.Catalog {
	return l.cat
}

func (l *Library) notify(fn func(ns chan<- models.Notification)) {
	if l.ns != nil {
		fn(l.ns)
	}
}

func (l *Library) load(ctx context.Context) ([]catalog.Change, error) {
	entries, err := l.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	changes := l.cat.Replace(entries)
	l.metrics.ObserveCatalog(l.cat.Snapshot())
	log.Info().Int("count", len(entries)).Msg("loaded catalog")
	return changes, nil
}

// Load replaces the catalog with the store's contents.
func (l *Library) Load(ctx context.Context) error {
	_, err := l.load(ctx)
	return err
}

// Reload is Load for a store changed by something else. Games the edit
// dropped are announced as removed before the reload itself.
func (l *Library) Reload(ctx context.Context) error {
	changes, err := l.load(ctx)
	if err != nil {
		return err
	}
	l.notify(func(ns chan<- models.Notification) {
		notifications.FromChanges(ns, changes)
	})
	return nil
}

// Persist writes the whole catalog to the store.
func (l *Library) Persist(ctx context.Context) error {
	l.saveMu.Lock()
	defer l.saveMu.Unlock()

	snapshot := l.cat.Snapshot()
	err := l.store.Save(ctx, snapshot)
	l.metrics.ObserveSave(err)
	l.metrics.ObserveCatalog(snapshot)
	if err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

// OnTick reports changes made by the poll loop after they were saved.
func (l *Library) OnTick(changes []catalog.Change) {
	l.metrics.ObserveChanges(changes)
	if l.ns != nil {
		notifications.FromChanges(l.ns, changes)
	}
}

// Add tracks a new executable. A failed save is returned but the entry
// stays in the catalog.
func (l *Library) Add(ctx context.Context, path string) (catalog.Entry, error) {
	e, err := l.cat.Add(path)
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("failed to add game: %w", err)
	}
	saveErr := l.Persist(ctx)
	l.notify(func(ns chan<- models.Notification) { notifications.GamesAdded(ns, &e) })
	return e, saveErr
}

func (l *Library) Remove(ctx context.Context, id int64) (catalog.Entry, error) {
	e, err := l.cat.Remove(id)
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("failed to remove game: %w", err)
	}
	saveErr := l.Persist(ctx)
	l.notify(func(ns chan<- models.Notification) { notifications.GamesRemoved(ns, &e) })
	return e, saveErr
}

// Edit applies a patch. An empty patch changes nothing and skips the save.
func (l *Library) Edit(ctx context.Context, id int64, patch catalog.Patch) (catalog.Entry, error) {
	e, err := l.cat.Edit(id, patch)
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("failed to edit game: %w", err)
	}
	if patch.IsEmpty() {
		return e, nil
	}
	saveErr := l.Persist(ctx)
	l.notify(func(ns chan<- models.Notification) { notifications.GamesUpdated(ns, &e) })
	return e, saveErr
}

// Launch starts a tracked game. It returns once the process is started.
func (l *Library) Launch(id int64) (catalog.Entry, error) {
	e, err := l.cat.Get(id)
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("failed to launch game: %w", err)
	}
	err = l.launcher.Launch(&e)
	l.metrics.ObserveLaunch(err)
	if err != nil {
		return e, fmt.Errorf("failed to launch game: %w", err)
	}
	return e, nil
}

// Detail returns an entry with a fresh check of its executable.
func (l *Library) Detail(id int64) (views.Detail, error) {
	e, err := l.cat.Get(id)
	if err != nil {
		return views.Detail{}, err
	}
	return views.Detail{
		Entry:      e,
		FileExists: l.cat.VerifyExecutable(e.Path),
	}, nil
}
