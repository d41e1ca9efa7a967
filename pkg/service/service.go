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

// Package service wires the catalog, poll loop, store and API together and
// runs them as the background tracker.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/config"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/database"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/database/historydb"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/launcher"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/probe"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/reconciler"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/service/broker"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/service/library"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/service/metrics"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/service/publishers"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/store"
	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const (
	notificationBuffer = 100
	subscriberBuffer   = 100
)

type options struct {
	clock    clockwork.Clock
	probe    probe.Probe
	executor command.Executor
	fs       afero.Fs
}

type Option func(*options)

func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithProbe replaces the probe picked from the config.
func WithProbe(pr probe.Probe) Option {
	return func(o *options) {
		o.probe = pr
	}
}

func WithExecutor(exec command.Executor) Option {
	return func(o *options) {
		o.executor = exec
	}
}

func newProbe(cfg *config.Instance) probe.Probe {
	if cfg.ProbeKind() == config.ProbeProc {
		log.Info().Msg("using /proc process probe")
		return probe.NewProcProbe()
	}
	return probe.NewSystemProbe()
}

// openStore opens the configured catalog store. The file store is also
// returned when the JSON backend is used, so it can be watched.
func openStore(
	ctx context.Context,
	cfg *config.Instance,
	dirs helpers.Dirs,
	afs afero.Fs,
) (store.Store, *store.FileStore, error) {
	path := cfg.StorePath(dirs.DataDir)

	if cfg.StoreBackend() == config.StoreBolt {
		bs, err := store.OpenBoltStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		jsonPath := filepath.Join(dirs.DataDir, config.StoreFile)
		if err := store.MaybeMigrate(ctx, afs, jsonPath, bs); err != nil {
			log.Warn().Err(err).Str("from", jsonPath).Msg("failed to migrate json store")
		}
		log.Info().Str("path", path).Msg("opened bolt store")
		return bs, nil, nil
	}

	fs := store.NewFileStore(afs, path)
	log.Info().Str("path", path).Msg("using json store")
	return fs, fs, nil
}

// openHistory opens the play session database. History is optional, so
// failures are logged and nil is returned.
func openHistory(ctx context.Context, cfg *config.Instance, dirs helpers.Dirs) *historydb.HistoryDB {
	path := filepath.Join(dirs.DataDir, config.HistoryDbFile)
	db, err := historydb.Open(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to open history database, continuing without history")
		return nil
	}
	cleanupHistoryOnStartup(cfg, db)
	return db
}

// startPublishers connects every enabled MQTT publisher and forwards
// notifications to them until ctx is done.
func startPublishers(
	ctx context.Context,
	cfg *config.Instance,
	notifChan <-chan models.Notification,
) ([]*publishers.MQTTPublisher, context.CancelFunc) {
	active := make([]*publishers.MQTTPublisher, 0)

	for _, mqttCfg := range cfg.MQTTPublishers() {
		if mqttCfg.Enabled != nil && !*mqttCfg.Enabled {
			continue
		}

		log.Info().Msgf("starting MQTT publisher: %s (topic: %s)", mqttCfg.Broker, mqttCfg.Topic)

		publisher := publishers.NewMQTTPublisher(mqttCfg.Broker, mqttCfg.Topic, mqttCfg.Filter)
		if err := publisher.Start(); err != nil {
			log.Error().Err(err).Msgf("failed to start MQTT publisher for %s", mqttCfg.Broker)
			continue
		}
		active = append(active, publisher)
	}

	if len(active) > 0 {
		log.Info().Msgf("started %d MQTT publisher(s)", len(active))
	}

	// notifChan is drained even with no publishers so the broker never
	// drops for this subscriber.
	fanCtx, cancel := context.WithCancel(ctx)
	go func() {
		for {
			select {
			case <-fanCtx.Done():
				log.Debug().Msg("mqtt publisher fan-out: stopping")
				return
			case notif, ok := <-notifChan:
				if !ok {
					log.Debug().Msg("mqtt publisher fan-out: notification channel closed")
					return
				}
				for _, pub := range active {
					if err := pub.Publish(notif); err != nil {
						log.Warn().Err(err).Msgf("failed to publish %s notification", notif.Method)
					}
				}
			}
		}
	}()

	return active, cancel
}

// Start runs the tracker in the background. The returned stop function
// shuts everything down, saving the catalog one last time, and done is
// closed once shutdown has finished for any reason.
func Start(
	cfg *config.Instance,
	dirs helpers.Dirs,
	opts ...Option,
) (stop func() error, done <-chan struct{}, err error) {
	o := options{
		clock:    clockwork.NewRealClock(),
		executor: &command.RealExecutor{},
		fs:       afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.probe == nil {
		o.probe = newProbe(cfg)
	}

	log.Info().Msgf("version: %s", config.AppVersion)

	if err := dirs.Ensure(); err != nil {
		return nil, nil, fmt.Errorf("failed to create app directories: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	ns := make(chan models.Notification, notificationBuffer)
	notifBroker := broker.NewBroker(ctx, ns)
	notifBroker.Start()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg, reg)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	st, fileStore, err := openStore(ctx, cfg, dirs, o.fs)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	cat := catalog.New(catalog.WithClock(o.clock), catalog.WithFs(o.fs))
	ln := launcher.New(o.executor, launcher.WithFs(o.fs), launcher.WithCompanion(cfg.CompanionPath))
	lib := library.New(cat, st, ln, library.WithMetrics(m), library.WithNotifications(ns))

	if err := lib.Load(ctx); err != nil {
		log.Error().Err(err).Msg("failed to load catalog, starting with an empty catalog")
	}

	log.Info().Msg("opening history database")
	historyDB := openHistory(ctx, cfg, dirs)

	g, gctx := errgroup.WithContext(ctx)

	serverOpts := []api.Option{api.WithMetrics(m), api.WithClock(o.clock)}
	var history database.HistoryDBI
	if historyDB != nil {
		history = historyDB
		serverOpts = append(serverOpts, api.WithHistory(history))
	}

	log.Info().Msg("starting API service")
	server := api.NewServer(cfg, lib, serverOpts...)
	apiNotifications, _ := notifBroker.Subscribe(subscriberBuffer)
	g.Go(func() error {
		return server.Serve(gctx, apiNotifications)
	})

	log.Info().Msg("starting publishers")
	publisherNotifications, _ := notifBroker.Subscribe(subscriberBuffer)
	activePublishers, cancelPublisherFanOut := startPublishers(gctx, cfg, publisherNotifications)

	historyDone := make(chan struct{})
	if history != nil {
		log.Info().Msg("starting play history recorder")
		recorder := newHistoryRecorder(history, o.clock, m)
		historyNotifications, _ := notifBroker.SubscribeMethods(subscriberBuffer, historyMethods...)
		go func() {
			defer close(historyDone)
			recorder.listen(historyNotifications)
		}()
		g.Go(func() error {
			recorder.updatePlayTime(gctx)
			return nil
		})
	} else {
		close(historyDone)
	}

	var watcher *fsnotify.Watcher
	if fileStore != nil && cfg.WatchStore() {
		watcher, err = startStoreWatcher(gctx, o.clock, fileStore, lib.Reload)
		if err != nil {
			log.Error().Err(err).Msg("failed to start store watcher")
		}
	}

	rec := reconciler.New(cat, o.probe, lib,
		reconciler.WithClock(o.clock),
		reconciler.WithHooks(reconciler.Hooks{
			OnChanges: lib.OnTick,
			OnTick:    m.ObserveTick,
		}),
	)
	if err := rec.Start(gctx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to start reconciler: %w", err)
	}

	log.Info().Int("games", cat.Len()).Msg("service started")

	doneCh := make(chan struct{})
	var shutdownErr error
	go func() {
		<-gctx.Done()
		log.Info().Msg("service context cancelled, running cleanup")

		var errs []error
		if err := rec.Stop(); err != nil {
			errs = append(errs, err)
		}

		cancel()
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("service component failed")
			errs = append(errs, err)
		}

		if watcher != nil {
			if err := watcher.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing store watcher")
			}
		}

		cancelPublisherFanOut()
		for _, publisher := range activePublishers {
			publisher.Stop()
		}

		notifBroker.Stop()
		<-historyDone

		if historyDB != nil {
			if err := historyDB.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing history database")
			}
		}
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing store")
		}

		shutdownErr = errors.Join(errs...)
		log.Info().Msg("service cleanup completed")
		close(doneCh)
	}()

	stop = func() error {
		cancel()
		<-doneCh
		return shutdownErr
	}
	return stop, doneCh, nil
}
