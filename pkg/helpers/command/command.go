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

// Package command wraps os/exec behind an interface so launches can be
// replaced in tests.
package command

import (
	"context"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// StartOptions configures how a detached process is started.
type StartOptions struct {
	// Dir is the working directory of the new process. Empty keeps the
	// daemon's working directory.
	Dir string
	// HideWindow suppresses the console window on Windows and is ignored
	// elsewhere.
	HideWindow bool
}

// Executor starts external programs.
type Executor interface {
	// Run executes a command and waits for it to exit.
	Run(ctx context.Context, name string, args ...string) error

	// Start starts a command and returns as soon as the process exists. The
	// child is reaped in the background.
	Start(ctx context.Context, name string, args ...string) error

	// StartWithOptions is Start with platform specific options applied.
	StartWithOptions(ctx context.Context, opts StartOptions, name string, args ...string) error
}

// RealExecutor runs commands on the host.
type RealExecutor struct{}

// Run executes a system command using exec.CommandContext.
//
//nolint:wrapcheck // exec errors already carry the command name
func (*RealExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Start starts a command without waiting for it to complete.
func (e *RealExecutor) Start(ctx context.Context, name string, args ...string) error {
	return e.StartWithOptions(ctx, StartOptions{}, name, args...)
}

// startAndReap starts cmd and waits on it in a goroutine so finished
// children never linger as zombies.
//
//nolint:wrapcheck // exec errors already carry the command name
func startAndReap(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug().Err(err).Str("path", cmd.Path).Msg("launched process exited with error")
		}
	}()
	return nil
}
