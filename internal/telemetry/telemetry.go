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

// Package telemetry reports logged errors to Sentry when the user has
// opted in. Paths are scrubbed of user names before anything is sent.
package telemetry

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers"
	"github.com/getsentry/sentry-go"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const flushTimeout = 2 * time.Second

var (
	mu        sync.Mutex
	writer    *sentryzerolog.Writer
	closeOnce sync.Once
)

type Options struct {
	DSN        string
	DeviceID   string
	AppVersion string
	Enabled    bool
}

func clientOptions(opts Options) sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:              opts.DSN,
		Release:          "zaparoo-playtime@" + opts.AppVersion,
		Environment:      runtime.GOOS,
		AttachStacktrace: true,
		SendDefaultPII:   false,
		MaxBreadcrumbs:   0,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return scrubEvent(event)
		},
	}
}

// Init starts reporting error level log events. It does nothing unless
// reporting is enabled and a DSN is configured.
func Init(opts Options) error {
	if !opts.Enabled || opts.DSN == "" {
		log.Debug().Msg("error reporting disabled")
		return nil
	}

	if err := sentry.Init(clientOptions(opts)); err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: opts.DeviceID})
		scope.SetTag("arch", runtime.GOARCH)
	})

	w, err := sentryzerolog.NewWithHub(sentry.CurrentHub(), sentryzerolog.Options{
		Levels:       []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
		FlushTimeout: flushTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create sentry zerolog writer: %w", err)
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(helpers.LogWriter(), w)).
		With().Timestamp().Caller().Logger()

	mu.Lock()
	writer = w
	mu.Unlock()

	log.Info().Msg("error reporting enabled")
	return nil
}

func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return writer != nil
}

// Flush sends pending events. Call before os.Exit.
func Flush() {
	if Enabled() {
		sentry.Flush(flushTimeout)
	}
}

// Close flushes and detaches the log writer. Safe to call more than once.
func Close() {
	if !Enabled() {
		return
	}
	closeOnce.Do(func() {
		_ = writer.Close()
		sentry.Flush(flushTimeout)
	})
}
