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
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/client"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers"
)

// listLimit is the largest window games.list accepts.
const listLimit = 1000

// now is swapped in tests so relative times are stable.
var now = time.Now

func callJSON(ctx context.Context, api client.APIClient, method string, params, out any) error {
	p := ""
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to encode params: %w", err)
		}
		p = string(data)
	}

	resp, err := api.Call(ctx, method, p)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(resp), out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return nil
}

func addGame(ctx context.Context, api client.APIClient, out io.Writer, path string) error {
	var game models.GameResponse
	err := callJSON(ctx, api, models.MethodGamesAdd, models.AddGameParams{Path: path}, &game)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Added %s (ID %d)\n", game.DisplayName, game.ID)
	return nil
}

func removeGame(ctx context.Context, api client.APIClient, out io.Writer, id int64) error {
	if err := callJSON(ctx, api, models.MethodGamesRemove, models.GameIDParams{ID: id}, nil); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Removed game %d\n", id)
	return nil
}

func listGames(ctx context.Context, api client.APIClient, out io.Writer, text string, year int) error {
	limit := listLimit
	params := models.ListGamesParams{Limit: &limit}
	if text != "" {
		params.Text = &text
	}
	if year != 0 {
		params.Year = &year
	}

	var list models.ListResponse
	if err := callJSON(ctx, api, models.MethodGamesList, params, &list); err != nil {
		return err
	}

	if len(list.Games) == 0 {
		_, _ = fmt.Fprintln(out, "No games found")
		if len(list.Suggestions) > 0 {
			_, _ = fmt.Fprintf(out, "Did you mean: %s?\n", strings.Join(list.Suggestions, ", "))
		}
		return nil
	}

	printGames(out, list.Games, now())
	if list.HasMore {
		_, _ = fmt.Fprintf(out, "... and %d more\n", list.Total-len(list.Games))
	}
	return nil
}

func printGames(out io.Writer, games []models.GameResponse, at time.Time) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tPLAY TIME\tLAST PLAYED\t")
	for i := range games {
		g := &games[i]
		name := g.DisplayName
		if g.Running {
			name += " (running)"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n",
			g.ID, name, helpers.PlayTime(g.Time), helpers.LastPlayed(g.LastPlayedDate, at))
	}
	_ = tw.Flush()
}

// callAPI sends a raw "method:params" pair and prints the result.
func callAPI(ctx context.Context, api client.APIClient, out io.Writer, value string) error {
	method, params, _ := strings.Cut(value, ":")
	resp, err := api.Call(ctx, method, params)
	if err != nil {
		return fmt.Errorf("error calling API: %w", err)
	}
	_, _ = fmt.Fprintln(out, resp)
	return nil
}
