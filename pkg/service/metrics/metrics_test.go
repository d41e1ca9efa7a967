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

package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/probe"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/reconciler"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := New(reg, reg)
	require.NoError(t, err)
	return m
}

func value(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	var pb dto.Metric
	require.NoError(t, (<-ch).Write(&pb))
	switch {
	case pb.GetCounter() != nil:
		return pb.GetCounter().GetValue()
	case pb.GetGauge() != nil:
		return pb.GetGauge().GetValue()
	default:
		t.Fatal("unsupported metric type")
		return 0
	}
}

func TestNew_RegisterTwice(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := New(reg, reg)
	require.NoError(t, err)
	_, err = New(reg, reg)
	require.NoError(t, err)
}

func TestTickResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, ResultOK},
		{fmt.Errorf("%w: slow", reconciler.ErrTickDropped), ResultDropped},
		{fmt.Errorf("%w: boom", probe.ErrProbeFailure), ResultProbeFailed},
		{fmt.Errorf("failed to persist tick: %w", fmt.Errorf("%w: write", store.ErrIOFailure)), ResultPersistFailed},
		{errors.New("other"), ResultError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TickResult(tt.err))
	}
}

func TestObserveTick(t *testing.T) {
	t.Parallel()

	m := newTestMetrics(t)
	m.ObserveTick(10*time.Millisecond, nil)
	m.ObserveTick(time.Second, reconciler.ErrTickDropped)
	m.ObserveTick(time.Millisecond, nil)

	assert.InDelta(t, 2, value(t, m.ticks.WithLabelValues(ResultOK)), 0)
	assert.InDelta(t, 1, value(t, m.ticks.WithLabelValues(ResultDropped)), 0)
}

func TestObserveChangesAndCatalog(t *testing.T) {
	t.Parallel()

	m := newTestMetrics(t)
	m.ObserveChanges([]catalog.Change{
		{Kind: catalog.ChangeStarted},
		{Kind: catalog.ChangeTicked},
		{Kind: catalog.ChangeStopped},
	})
	assert.InDelta(t, 2, value(t, m.playSeconds), 0)

	m.ObserveCatalog([]catalog.Entry{
		{ID: 1, Running: true},
		{ID: 2},
		{ID: 3},
	})
	assert.InDelta(t, 3, value(t, m.trackedGames), 0)
	assert.InDelta(t, 1, value(t, m.runningGames), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTick(time.Second, nil)
		m.ObserveChanges([]catalog.Change{{Kind: catalog.ChangeTicked}})
		m.ObserveCatalog(nil)
		m.ObserveSave(errors.New("x"))
		m.ObserveLaunch(nil)
		m.ObserveSession("opened")
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	t.Parallel()

	m := newTestMetrics(t)
	m.ObserveSave(nil)
	m.ObserveLaunch(errors.New("missing"))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL) //nolint:noctx // test server
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `playtime_store_saves_total{result="ok"} 1`)
	assert.Contains(t, string(body), `playtime_launcher_launches_total{result="error"} 1`)
}
