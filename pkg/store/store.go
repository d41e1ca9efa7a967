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

// Package store persists the catalog between runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
)

// ProcessesKey is the key holding the serialized catalog.
const ProcessesKey = "processes"

var ErrIOFailure = errors.New("store i/o failure")

// Store loads and saves the whole catalog. Saves always replace everything
// previously stored.
type Store interface {
	Load(ctx context.Context) ([]catalog.Entry, error)
	Save(ctx context.Context, entries []catalog.Entry) error
	Close() error
}

// document is the on-disk layout of a JSON store file.
type document struct {
	Processes []catalog.Entry `json:"processes"`
}

func encodeEntries(entries []catalog.Entry) ([]byte, error) {
	if entries == nil {
		entries = []catalog.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entries: %w", err)
	}
	return data, nil
}

func decodeEntries(data []byte) ([]catalog.Entry, error) {
	var entries []catalog.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entries: %w", err)
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	return entries, nil
}

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIOFailure, op, err)
}
