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

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// MaybeMigrate copies the catalog from an existing JSON store file into dst
// when dst is empty, so switching store backends keeps play history.
func MaybeMigrate(ctx context.Context, afs afero.Fs, jsonPath string, dst Store) error {
	if _, err := afs.Stat(jsonPath); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	current, err := dst.Load(ctx)
	if err != nil {
		return err
	}
	if len(current) > 0 {
		return nil
	}

	entries, err := NewFileStore(afs, jsonPath).Load(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	if err := dst.Save(ctx, entries); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("from", jsonPath).Msg("migrated json store")
	return nil
}
