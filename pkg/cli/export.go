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
	"io"
	"os"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/client"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

type exportRow struct {
	Name        string `csv:"name"`
	DisplayName string `csv:"display_name"`
	Path        string `csv:"path"`
	AddedDate   string `csv:"added_date"`
	LastPlayed  string `csv:"last_played"`
	Genres      string `csv:"genres"`
	ID          int64  `csv:"id"`
	Seconds     int64  `csv:"play_seconds"`
}

func newExportRow(g *models.GameResponse) exportRow {
	row := exportRow{
		ID:          g.ID,
		Name:        g.Name,
		DisplayName: g.DisplayName,
		Path:        g.Path,
		AddedDate:   g.AddedDate.Format(time.RFC3339),
		Seconds:     g.Time,
		Genres:      strings.Join(g.Genres, ";"),
	}
	if g.LastPlayedDate != nil {
		row.LastPlayed = g.LastPlayedDate.Format(time.RFC3339)
	}
	return row
}

// WriteCSV writes games as CSV with a header row.
func WriteCSV(w io.Writer, games []models.GameResponse) error {
	rows := make([]exportRow, len(games))
	for i := range games {
		rows[i] = newExportRow(&games[i])
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func exportGames(ctx context.Context, api client.APIClient, out io.Writer, dest string) error {
	var games models.GamesResponse
	if err := callJSON(ctx, api, models.MethodGames, nil, &games); err != nil {
		return err
	}

	if dest == "-" {
		return WriteCSV(out, games.Games)
	}

	f, err := os.Create(dest) //nolint:gosec // user supplied output path
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Str("path", dest).Msg("error closing export file")
		}
	}()

	if err := WriteCSV(f, games.Games); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Exported %d games to %s\n", len(games.Games), dest)
	return nil
}
