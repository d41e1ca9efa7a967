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

// Package reconciler runs the poll loop that keeps the catalog's running
// state and play time in step with the processes on the host.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/probe"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// TickInterval is the fixed poll period. Each successful tick in which a
// game is seen running adds one second to its play time.
const TickInterval = time.Second

const finalPersistTimeout = 5 * time.Second

var (
	// ErrTickDropped is returned when the probe didn't answer within the
	// tick period, or a previous probe is still outstanding.
	ErrTickDropped    = errors.New("tick dropped")
	ErrAlreadyRunning = errors.New("reconciler already running")
)

// Persister writes the current catalog to durable storage.
type Persister interface {
	Persist(ctx context.Context) error
}

type PersistFunc func(ctx context.Context) error

func (f PersistFunc) Persist(ctx context.Context) error {
	return f(ctx)
}

// Hooks are optional callbacks run from the tick goroutine.
type Hooks struct {
	// OnChanges receives every non-empty change list from a tick.
	OnChanges func(changes []catalog.Change)
	// OnTick is called after every tick with how long it took and its
	// result.
	OnTick func(elapsed time.Duration, err error)
}

type Reconciler struct {
	clock     clockwork.Clock
	catalog   *catalog.Catalog
	probe     probe.Probe
	persister Persister
	cancel    context.CancelFunc
	done      chan struct{}
	hooks     Hooks
	interval  time.Duration
	inFlight  atomic.Bool
	tickMu    syncutil.Mutex
	mu        syncutil.Mutex
}

type Option func(*Reconciler)

func WithClock(clock clockwork.Clock) Option {
	return func(r *Reconciler) {
		r.clock = clock
	}
}

func WithHooks(hooks Hooks) Option {
	return func(r *Reconciler) {
		r.hooks = hooks
	}
}

// WithInterval changes the poll period. Play time is still counted as one
// second per tick, so this is only useful in tests.
func WithInterval(d time.Duration) Option {
	return func(r *Reconciler) {
		r.interval = d
	}
}

func New(cat *catalog.Catalog, pr probe.Probe, persister Persister, opts ...Option) *Reconciler {
	r := &Reconciler{
		clock:     clockwork.NewRealClock(),
		catalog:   cat,
		probe:     pr,
		persister: persister,
		interval:  TickInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type snapshotResult struct {
	err   error
	procs []probe.Process
}

// snapshot runs the probe bounded by the tick interval. A probe that
// overruns is abandoned and further probes are refused until it returns.
func (r *Reconciler) snapshot(ctx context.Context) ([]probe.Process, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: previous probe still running", ErrTickDropped)
	}

	probeCtx, cancel := clockwork.WithTimeout(ctx, r.clock, r.interval)
	defer cancel()

	resCh := make(chan snapshotResult, 1)
	go func() {
		procs, err := r.probe.Snapshot(probeCtx)
		r.inFlight.Store(false)
		resCh <- snapshotResult{procs: procs, err: err}
	}()

	select {
	case res := <-resCh:
		if res.err != nil {
			if !errors.Is(res.err, probe.ErrProbeFailure) {
				return nil, fmt.Errorf("%w: %w", probe.ErrProbeFailure, res.err)
			}
			return nil, res.err
		}
		return res.procs, nil
	case <-probeCtx.Done():
		return nil, fmt.Errorf("%w: probe exceeded %s: %w", ErrTickDropped, r.interval, probeCtx.Err())
	}
}

// Tick runs one reconciliation pass: probe, apply the running set to the
// catalog, and persist once if anything changed. Probe failures and
// dropped ticks leave the catalog untouched. Ticks never run concurrently.
func (r *Reconciler) Tick(ctx context.Context) ([]catalog.Change, error) {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	started := r.clock.Now()
	changes, err := r.tick(ctx)
	if r.hooks.OnTick != nil {
		r.hooks.OnTick(r.clock.Since(started), err)
	}
	return changes, err
}

func (r *Reconciler) tick(ctx context.Context) ([]catalog.Change, error) {
	procs, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	changes := r.catalog.ApplyRunningSet(probe.Names(procs))
	if len(changes) == 0 {
		return nil, nil
	}

	// in-memory state stays authoritative even if the save fails
	persistErr := r.persister.Persist(ctx)

	if r.hooks.OnChanges != nil {
		r.hooks.OnChanges(changes)
	}

	if persistErr != nil {
		return changes, fmt.Errorf("failed to persist tick: %w", persistErr)
	}
	return changes, nil
}

// Start begins ticking in the background until ctx is cancelled or Stop is
// called. A reconciler whose loop has ended, either way, can be started
// again.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loopActiveLocked() {
		return ErrAlreadyRunning
	}
	if r.cancel != nil {
		// loop already exited with its parent context
		r.cancel()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	ticker := r.clock.NewTicker(r.interval)
	go r.loop(loopCtx, ticker, done)

	log.Info().Dur("interval", r.interval).Msg("reconciler started")
	return nil
}

func (r *Reconciler) loop(ctx context.Context, ticker clockwork.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			_, err := r.Tick(ctx)
			switch {
			case err == nil:
			case errors.Is(err, ErrTickDropped):
				log.Warn().Err(err).Msg("dropped tick")
			case errors.Is(err, probe.ErrProbeFailure):
				log.Warn().Err(err).Msg("process probe failed, skipping tick")
			default:
				log.Error().Err(err).Msg("tick failed")
			}
		}
	}
}

// Running returns true if the background loop is active.
func (r *Reconciler) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loopActiveLocked()
}

func (r *Reconciler) loopActiveLocked() bool {
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// Stop ends the background loop, waits for it to exit and makes a best
// effort final save of the catalog. The save also happens when the loop
// already ended because its parent context was cancelled.
func (r *Reconciler) Stop() error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	<-done

	ctx, cancelPersist := context.WithTimeout(context.Background(), finalPersistTimeout)
	defer cancelPersist()

	// wait out any tick still finishing from a direct Tick call
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	if err := r.persister.Persist(ctx); err != nil {
		log.Error().Err(err).Msg("final save failed")
		return fmt.Errorf("final save failed: %w", err)
	}

	log.Info().Msg("reconciler stopped")
	return nil
}
