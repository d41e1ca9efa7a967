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

// Package cli implements the command line front end. Everything except
// -daemon talks to a running tracker over its local API.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ZaparooProject/zaparoo-playtime/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/client"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/config"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNoAction is returned by Run when no command flag was passed.
var ErrNoAction = errors.New("no action given")

type Flags struct {
	fs      *flag.FlagSet
	Add     *string
	Remove  *int64
	Search  *string
	Export  *string
	API     *string
	Year    *int
	Daemon  *bool
	List    *bool
	Version *bool
}

// SetupFlags defines the CLI flags on the default flag set.
func SetupFlags() *Flags {
	return NewFlags(flag.CommandLine)
}

// NewFlags defines the CLI flags on fs.
func NewFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs: fs,
		Daemon: fs.Bool(
			"daemon",
			false,
			"run the tracker in the foreground",
		),
		Add: fs.String(
			"add",
			"",
			"add the executable at this path to the catalog",
		),
		Remove: fs.Int64(
			"remove",
			0,
			"remove the game with this ID from the catalog",
		),
		List: fs.Bool(
			"list",
			false,
			"list games with play time and last played",
		),
		Search: fs.String(
			"search",
			"",
			"list games whose name contains this text",
		),
		Year: fs.Int(
			"year",
			0,
			"list games added in this year",
		),
		Export: fs.String(
			"export",
			"",
			"write the catalog as CSV to this file, or - for stdout",
		),
		API: fs.String(
			"api",
			"",
			"send method and params to API and print response",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

func (f *Flags) isFlagPassed(name string) bool {
	found := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Pre parses args and actions any flags that don't need the environment
// set up. It returns true if the program should exit.
func (f *Flags) Pre(args []string, out io.Writer) (bool, error) {
	if err := f.fs.Parse(args); err != nil {
		return true, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *f.Version {
		_, _ = fmt.Fprintf(out, "Zaparoo Playtime v%s\n", config.AppVersion)
		return true, nil
	}

	return false, nil
}

// IsDaemon reports whether the tracker itself should be run.
func (f *Flags) IsDaemon() bool {
	return *f.Daemon
}

// Run actions the client flags against api, writing results to out.
func (f *Flags) Run(ctx context.Context, api client.APIClient, out io.Writer) error {
	switch {
	case f.isFlagPassed("add"):
		if *f.Add == "" {
			return errors.New("add flag requires a value")
		}
		return addGame(ctx, api, out, *f.Add)
	case f.isFlagPassed("remove"):
		if *f.Remove <= 0 {
			return errors.New("remove flag requires a game ID")
		}
		return removeGame(ctx, api, out, *f.Remove)
	case f.isFlagPassed("export"):
		if *f.Export == "" {
			return errors.New("export flag requires a file path or -")
		}
		return exportGames(ctx, api, out, *f.Export)
	case f.isFlagPassed("api"):
		if *f.API == "" {
			return errors.New("api flag requires a value")
		}
		return callAPI(ctx, api, out, *f.API)
	case *f.List || f.isFlagPassed("search") || f.isFlagPassed("year"):
		return listGames(ctx, api, out, *f.Search, *f.Year)
	default:
		return ErrNoAction
	}
}

// Post actions the client flags against the local API and exits.
func (f *Flags) Post(cfg *config.Instance) {
	err := f.Run(context.Background(), client.NewLocalAPIClient(cfg), os.Stdout)
	switch {
	case errors.Is(err, ErrNoAction):
		f.fs.Usage()
		exit(2)
	case err != nil:
		log.Error().Err(err).Msg("cli command failed")
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
	exit(0)
}

func exit(code int) {
	telemetry.Flush()
	os.Exit(code)
}

// Setup initializes the user config and logging. Returns a user config object.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	dirs helpers.Dirs,
	defaultConfig config.Values,
	writers []io.Writer,
) (*config.Instance, error) {
	if err := dirs.Ensure(); err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}

	if err := helpers.InitLogging(dirs, writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(dirs.ConfigDir, defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// opt-in
	if err := telemetry.Init(telemetry.Options{
		Enabled:    cfg.ErrorReporting(),
		DSN:        cfg.SentryDSN(),
		DeviceID:   cfg.DeviceID(),
		AppVersion: config.AppVersion,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg, nil
}
