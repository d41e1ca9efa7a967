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
	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/views"
	"github.com/rs/zerolog/log"
)

// ErrNoSession is returned by methods that act on the calling client's
// views when there is no websocket session.
var ErrNoSession = errors.New("method requires a websocket session")

func HandleGames(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received games request")
	snapshot := env.Library.Catalog().Snapshot()
	return models.GamesResponse{
		Games: models.NewGamesResponse(snapshot, env.Clock.Now()),
	}, nil
}

// HandleGamesList sets the list query of the calling session, or filters
// the catalog directly for a plain HTTP request. An explicit limit always
// filters directly and leaves the session's list view alone.
func HandleGamesList(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received games list request")

	var params models.ListGamesParams
	if err := validation.UnmarshalOptional(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	var q views.Query
	if params.Text != nil {
		q.Text = *params.Text
	}
	if params.Year != nil {
		q.Year = *params.Year
	}

	var result views.Result
	switch {
	case env.Session != nil && params.More:
		result = env.Session.List.Extend()
	case env.Session != nil && params.Limit == nil:
		result = env.Session.List.SetQuery(q)
	default:
		visible := env.Config.PageSize()
		if params.Limit != nil {
			visible = *params.Limit
		}
		result = views.Filter(env.Library.Catalog().Snapshot(), q, visible)
	}

	return models.NewListResponse(&result, env.Clock.Now()), nil
}

func HandleGamesYears(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received games years request")
	var years []int
	if env.Session != nil {
		years = env.Session.List.Years()
	} else {
		years = views.AvailableYears(env.Library.Catalog().Snapshot())
	}
	if years == nil {
		years = []int{}
	}
	return models.YearsResponse{Years: years}, nil
}

func HandleGamesDetail(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received games detail request")

	var params models.GameIDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	d, err := env.Library.Detail(params.ID)
	if err != nil {
		return nil, err
	}
	return models.NewDetailResponse(&d, env.Clock.Now()), nil
}

// HandleGamesSelect changes the game shown in the calling session's detail
// view. The new detail is returned and also pushed as views.detail.
func HandleGamesSelect(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received games select request")

	if env.Session == nil {
		return nil, ErrNoSession
	}

	var params models.SelectGameParams
	if err := validation.UnmarshalOptional(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	if params.ID == nil {
		env.Session.Detail.Clear()
		return models.NewDetailResponse(nil, env.Clock.Now()), nil
	}

	d, err := env.Session.Detail.Select(*params.ID)
	if err != nil {
		return nil, err
	}
	return models.NewDetailResponse(&d, env.Clock.Now()), nil
}

func HandleGamesAdd(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received games add request")

	var params models.AddGameParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	e, err := env.Library.Add(env.Context, params.Path)
	if err != nil {
		log.Error().Err(err).Str("path", params.Path).Msg("error adding game")
		return nil, err
	}

	return models.NewGameResponse(&e, env.Clock.Now()), nil
}

func HandleGamesRemove(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received games remove request")

	var params models.GameIDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	if _, err := env.Library.Remove(env.Context, params.ID); err != nil {
		log.Error().Err(err).Int64("id", params.ID).Msg("error removing game")
		return nil, err
	}
	return nil, nil
}

func HandleGamesUpdate(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received games update request")

	var params models.UpdateGameParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	patch := catalog.Patch{
		CustomName:      params.CustomName,
		CoverURL:        params.CoverURL,
		ControllerRemap: params.ControllerRemap,
		Description:     params.Description,
		ReleaseDate:     params.ReleaseDate,
		Screenshots:     params.Screenshots,
		Genres:          params.Genres,
	}

	e, err := env.Library.Edit(env.Context, params.ID, patch)
	if err != nil {
		log.Error().Err(err).Int64("id", params.ID).Msg("error updating game")
		return nil, err
	}

	return models.NewGameResponse(&e, env.Clock.Now()), nil
}

func HandleGamesLaunch(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received games launch request")

	var params models.GameIDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	if _, err := env.Library.Launch(params.ID); err != nil {
		log.Error().Err(err).Int64("id", params.ID).Msg("error launching game")
		return nil, err
	}
	return nil, nil
}
