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

package methods

import (
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/validation"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/database"
	"github.com/rs/zerolog/log"
)

const defaultHistoryLimit = 25

var ErrHistoryUnavailable = errors.New("play history is unavailable")

// HandleGamesHistory returns a page of a game's play sessions, newest
// first, with totals over all of its sessions.
func HandleGamesHistory(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received games history request")

	if env.History == nil {
		return nil, ErrHistoryUnavailable
	}

	var params models.HistoryParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	if _, err := env.Library.Catalog().Get(params.ID); err != nil {
		return nil, err
	}

	limit := defaultHistoryLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	var lastID int64
	if params.LastID != nil {
		lastID = *params.LastID
	}

	sessions, err := env.History.GetSessions(params.ID, lastID, limit)
	if err != nil {
		log.Error().Err(err).Int64("id", params.ID).Msg("error getting play sessions")
		return nil, fmt.Errorf("error getting play sessions: %w", err)
	}
	if sessions == nil {
		sessions = []database.Session{}
	}

	stats, err := env.History.GameStats(params.ID)
	if err != nil {
		log.Error().Err(err).Int64("id", params.ID).Msg("error getting play stats")
		return nil, fmt.Errorf("error getting play stats: %w", err)
	}

	return models.HistoryResponse{
		Sessions: sessions,
		Stats:    stats,
	}, nil
}
