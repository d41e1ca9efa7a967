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

// Package metrics exposes tracker activity as Prometheus collectors.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/probe"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/reconciler"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "playtime"

// Tick results.
const (
	ResultOK            = "ok"
	ResultProbeFailed   = "probe_failed"
	ResultDropped       = "dropped"
	ResultPersistFailed = "persist_failed"
	ResultError         = "error"
)

// Metrics holds the collectors for one service instance. All methods are
// safe to call on a nil *Metrics.
type Metrics struct {
	gatherer      prometheus.Gatherer
	ticks         *prometheus.CounterVec
	tickDuration  prometheus.Histogram
	saves         *prometheus.CounterVec
	launches      *prometheus.CounterVec
	playSeconds   prometheus.Counter
	trackedGames  prometheus.Gauge
	runningGames  prometheus.Gauge
	sessionEvents *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Collectors
// already registered with reg are reused.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Metrics, error) {
	m := &Metrics{
		gatherer: gatherer,
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "ticks_total",
			Help:      "Number of poll ticks by result.",
		}, []string{"result"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "tick_duration_seconds",
			Help:      "Time spent probing and applying one tick.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "saves_total",
			Help:      "Number of catalog saves by result.",
		}, []string{"result"}),
		launches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launcher",
			Name:      "launches_total",
			Help:      "Number of game launches by result.",
		}, []string{"result"}),
		playSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "play_seconds_total",
			Help:      "Seconds of play time accrued since the service started.",
		}),
		trackedGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "tracked_games",
			Help:      "Number of games in the catalog.",
		}),
		runningGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "running_games",
			Help:      "Number of tracked games currently running.",
		}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "session_events_total",
			Help:      "Play session rows opened and closed.",
		}, []string{"event"}),
	}

	for _, c := range []prometheus.Collector{
		m.ticks, m.tickDuration, m.saves, m.launches,
		m.playSeconds, m.trackedGames, m.runningGames, m.sessionEvents,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the gathered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// TickResult maps a tick error to its result label.
func TickResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, reconciler.ErrTickDropped):
		return ResultDropped
	case errors.Is(err, probe.ErrProbeFailure):
		return ResultProbeFailed
	case errors.Is(err, store.ErrIOFailure):
		return ResultPersistFailed
	default:
		return ResultError
	}
}

// ObserveTick records one finished tick.
func (m *Metrics) ObserveTick(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues(TickResult(err)).Inc()
	m.tickDuration.Observe(elapsed.Seconds())
}

// ObserveChanges counts accrued seconds from a tick's changes.
func (m *Metrics) ObserveChanges(changes []catalog.Change) {
	if m == nil {
		return
	}
	for i := range changes {
		switch changes[i].Kind {
		case catalog.ChangeStarted, catalog.ChangeTicked:
			m.playSeconds.Inc()
		case catalog.ChangeAdded, catalog.ChangeRemoved, catalog.ChangeUpdated,
			catalog.ChangeStopped, catalog.ChangeReplaced:
		}
	}
}

// ObserveCatalog updates the catalog gauges from a snapshot.
func (m *Metrics) ObserveCatalog(snapshot []catalog.Entry) {
	if m == nil {
		return
	}
	running := 0
	for i := range snapshot {
		if snapshot[i].Running {
			running++
		}
	}
	m.trackedGames.Set(float64(len(snapshot)))
	m.runningGames.Set(float64(running))
}

func (m *Metrics) ObserveSave(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.saves.WithLabelValues(ResultError).Inc()
		return
	}
	m.saves.WithLabelValues(ResultOK).Inc()
}

func (m *Metrics) ObserveLaunch(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.launches.WithLabelValues(ResultError).Inc()
		return
	}
	m.launches.WithLabelValues(ResultOK).Inc()
}

// ObserveSession counts history session events, "opened" or "closed".
func (m *Metrics) ObserveSession(event string) {
	if m == nil {
		return
	}
	m.sessionEvents.WithLabelValues(event).Inc()
}
