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

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/client"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/config"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/service"
	"github.com/rs/zerolog/log"
)

// RunDaemon runs the tracker until ctx is cancelled or the service shuts
// itself down. It returns straight away if another instance already
// answers on the configured API port.
func RunDaemon(
	ctx context.Context,
	cfg *config.Instance,
	dirs helpers.Dirs,
	opts ...service.Option,
) (returnErr error) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			log.Error().Msgf("panic recovered: %v", r)
			returnErr = fmt.Errorf("panic: %v", r)
		}
	}()

	if client.IsServiceRunning(cfg) {
		log.Info().
			Int("port", cfg.APIPort()).
			Msg("service already running, exiting")
		return nil
	}

	log.Info().Msg("starting service in daemon mode")
	stopSvc, done, err := service.Start(cfg, dirs, opts...)
	if err != nil {
		log.Error().Err(err).Msg("error starting service")
		return fmt.Errorf("error starting service: %w", err)
	}
	log.Info().Msg("started in daemon mode")

	select {
	case <-ctx.Done():
		log.Info().Msg("stop requested")
	case <-done:
		log.Info().Msg("service shut down internally")
	}

	if err := stopSvc(); err != nil {
		log.Error().Err(err).Msg("error stopping service")
		return fmt.Errorf("error stopping service: %w", err)
	}
	return nil
}
