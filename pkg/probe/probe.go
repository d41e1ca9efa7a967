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

// Package probe enumerates running processes on the host.
package probe

import (
	"context"
	"errors"
)

// ErrProbeFailure is returned when the process list could not be read at
// all. It's transient: the next snapshot may well succeed.
var ErrProbeFailure = errors.New("process enumeration failed")

// commLen is the longest process name the Linux kernel keeps in comm.
const commLen = 15

// Process is a single process seen by a probe.
type Process struct {
	Name    string
	PID     int
	Running bool
}

// Probe reads the current set of running processes. Implementations hold no
// state between calls.
type Probe interface {
	Snapshot(ctx context.Context) ([]Process, error)
}

// Func adapts a function to the Probe interface.
type Func func(ctx context.Context) ([]Process, error)

func (f Func) Snapshot(ctx context.Context) ([]Process, error) {
	return f(ctx)
}

// Names returns the set of names of processes that are running.
func Names(procs []Process) map[string]struct{} {
	names := make(map[string]struct{}, len(procs))
	for _, p := range procs {
		if !p.Running || p.Name == "" {
			continue
		}
		names[p.Name] = struct{}{}
	}
	return names
}

// Static returns a probe that always reports the given names as running.
func Static(names ...string) Probe {
	return Func(func(_ context.Context) ([]Process, error) {
		procs := make([]Process, 0, len(names))
		for i, n := range names {
			procs = append(procs, Process{Name: n, PID: i + 1, Running: true})
		}
		return procs, nil
	})
}
