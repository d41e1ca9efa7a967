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
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

const DefaultProcPath = "/proc"

// ProcProbe scans a Linux procfs directly. It's cheaper than SystemProbe as
// it only reads comm, cmdline and stat for each pid.
type ProcProbe struct {
	fs       afero.Fs
	procPath string
}

type ProcOption func(*ProcProbe)

// WithProcPath sets a custom /proc path.
func WithProcPath(path string) ProcOption {
	return func(p *ProcProbe) {
		p.procPath = path
	}
}

func WithProcFs(fs afero.Fs) ProcOption {
	return func(p *ProcProbe) {
		p.fs = fs
	}
}

func NewProcProbe(opts ...ProcOption) *ProcProbe {
	p := &ProcProbe{
		fs:       afero.NewOsFs(),
		procPath: DefaultProcPath,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ProcProbe) Snapshot(ctx context.Context) ([]Process, error) {
	entries, err := afero.ReadDir(p.fs, p.procPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read proc directory: %w", ErrProbeFailure, err)
	}

	procs := make([]Process, 0, len(entries))
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrProbeFailure, ctx.Err())
		}
		if !entry.IsDir() {
			continue
		}

		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		proc, ok := p.readProcess(pid)
		if !ok {
			continue
		}
		procs = append(procs, proc)
	}

	return procs, nil
}

func (p *ProcProbe) readProcess(pid int) (Process, bool) {
	dir := filepath.Join(p.procPath, strconv.Itoa(pid))

	commData, err := afero.ReadFile(p.fs, filepath.Join(dir, "comm"))
	if err != nil {
		return Process{}, false
	}
	name := strings.TrimSpace(string(commData))
	if name == "" {
		return Process{}, false
	}

	if len(name) == commLen {
		cmdline, err := afero.ReadFile(p.fs, filepath.Join(dir, "cmdline"))
		if err == nil {
			argv0, _, _ := bytes.Cut(cmdline, []byte{0})
			name = completeName(name, string(argv0))
		}
	}

	running := true
	if stat, err := afero.ReadFile(p.fs, filepath.Join(dir, "stat")); err == nil {
		running = statState(stat) != 'Z'
	}

	return Process{Name: name, PID: pid, Running: running}, true
}

// statState returns the state field of /proc/<pid>/stat. The comm field can
// contain spaces and parens, so the state is found after the last ')'.
func statState(stat []byte) byte {
	i := bytes.LastIndexByte(stat, ')')
	if i < 0 || i+2 >= len(stat) {
		return 0
	}
	return stat[i+2]
}
