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

package probe

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// SystemProbe lists processes through gopsutil, which works on every
// platform we build for.
type SystemProbe struct{}

func NewSystemProbe() *SystemProbe {
	return &SystemProbe{}
}

func (*SystemProbe) Snapshot(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProbeFailure, err)
	}

	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrProbeFailure, ctx.Err())
		}

		// processes can exit between listing and reading their name
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}

		if len(name) == commLen {
			if args, err := p.CmdlineSliceWithContext(ctx); err == nil && len(args) > 0 {
				name = completeName(name, args[0])
			}
		}

		running := true
		if status, err := p.StatusWithContext(ctx); err == nil {
			running = !slices.Contains(status, process.Zombie)
		}

		out = append(out, Process{
			Name:    name,
			PID:     int(p.Pid),
			Running: running,
		})
	}

	log.Trace().Int("count", len(out)).Msg("system probe snapshot")
	return out, nil
}

// completeName returns the base name of argv0 if the truncated comm name is
// a prefix of it, otherwise comm unchanged.
func completeName(comm, argv0 string) string {
	base := filepath.Base(filepath.FromSlash(argv0))
	if len(base) > len(comm) && base[:len(comm)] == comm {
		return base
	}
	return comm
}
