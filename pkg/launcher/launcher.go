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

// Package launcher starts tracked games.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrLaunchFailure = errors.New("launch failed")

// Launcher starts game executables without waiting for them. Play time is
// picked up by the poll loop like any other run of the game.
type Launcher struct {
	exec      command.Executor
	fs        afero.Fs
	companion func() string
}

type Option func(*Launcher)

func WithFs(fs afero.Fs) Option {
	return func(l *Launcher) {
		l.fs = fs
	}
}

// WithCompanion sets a lookup for the program started alongside games that
// have controller remapping enabled. An empty path disables it.
func WithCompanion(path func() string) Option {
	return func(l *Launcher) {
		l.companion = path
	}
}

func New(exec command.Executor, opts ...Option) *Launcher {
	l := &Launcher{
		exec:      exec,
		fs:        afero.NewOsFs(),
		companion: func() string { return "" },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch starts the entry's executable from its own directory. The
// executable is checked again first since it may have been deleted since
// it was added.
func (l *Launcher) Launch(e *catalog.Entry) error {
	if !catalog.VerifyExecutable(l.fs, e.Path) {
		return fmt.Errorf("%w: executable not found: %s", ErrLaunchFailure, e.Path)
	}

	if e.ControllerRemap {
		l.launchCompanion(e)
	}

	// launched games must outlive the request that started them
	err := l.exec.StartWithOptions(
		context.Background(),
		command.StartOptions{Dir: filepath.Dir(e.Path)},
		e.Path,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLaunchFailure, err)
	}

	log.Info().Int64("id", e.ID).Str("path", e.Path).Msg("launched game")
	return nil
}

func (l *Launcher) launchCompanion(e *catalog.Entry) {
	path := l.companion()
	if path == "" {
		log.Debug().Int64("id", e.ID).Msg("controller remap enabled but no companion configured")
		return
	}
	if !catalog.VerifyExecutable(l.fs, path) {
		log.Warn().Str("path", path).Msg("companion executable not found")
		return
	}

	err := l.exec.StartWithOptions(
		context.Background(),
		command.StartOptions{Dir: filepath.Dir(path), HideWindow: true},
		path,
	)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to start companion")
	}
}
