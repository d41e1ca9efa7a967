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
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const corruptSuffix = ".corrupt"

// FileStore keeps the catalog in a single JSON document. Writes go to a
// temp file first and are renamed into place so a crash never leaves a
// half written store behind.
type FileStore struct {
	fs        afero.Fs
	path      string
	lastWrite [sha256.Size]byte
	written   bool
	mu        syncutil.Mutex
}

func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads the catalog. A missing file is an empty catalog. A file that
// can't be parsed is moved aside and also treated as empty.
func (s *FileStore) Load(_ context.Context) ([]catalog.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("path", s.path).Msg("no store file, starting empty")
		return []catalog.Entry{}, nil
	} else if err != nil {
		return nil, ioError("read store", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []catalog.Entry{}, nil
	}

	var raw map[string]json.RawMessage
	err = json.Unmarshal(data, &raw)
	if err != nil {
		s.quarantine(err)
		return []catalog.Entry{}, nil
	}

	procs, ok := raw[ProcessesKey]
	if !ok || bytes.Equal(bytes.TrimSpace(procs), []byte("null")) {
		return []catalog.Entry{}, nil
	}

	entries, err := decodeEntries(procs)
	if err != nil {
		s.quarantine(err)
		return []catalog.Entry{}, nil
	}

	s.lastWrite = sha256.Sum256(data)
	s.written = true

	log.Info().Int("count", len(entries)).Str("path", s.path).Msg("loaded store")
	return entries, nil
}

// quarantine moves a malformed store file out of the way so the next save
// doesn't destroy it. Caller must hold mu.
func (s *FileStore) quarantine(parseErr error) {
	dst := s.path + corruptSuffix
	log.Error().Err(parseErr).Str("path", s.path).
		Msgf("store file is malformed, moving to %s", dst)
	if err := s.fs.Rename(s.path, dst); err != nil {
		log.Warn().Err(err).Msg("failed to move malformed store file")
	}
	s.written = false
}

func (s *FileStore) Save(_ context.Context, entries []catalog.Entry) error {
	procs, err := encodeEntries(entries)
	if err != nil {
		return ioError("encode store", err)
	}
	data, err := json.MarshalIndent(map[string]json.RawMessage{
		ProcessesKey: procs,
	}, "", "  ")
	if err != nil {
		return ioError("encode store", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.fs.MkdirAll(filepath.Dir(s.path), 0o750)
	if err != nil {
		return ioError("create store directory", err)
	}

	tmp, err := afero.TempFile(s.fs, filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return ioError("create temp file", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := s.fs.Remove(tmpName); rmErr != nil {
			log.Debug().Err(rmErr).Msg("failed to remove temp store file")
		}
		return ioError("write temp file", err)
	}

	if err := s.fs.Rename(tmpName, s.path); err != nil {
		if rmErr := s.fs.Remove(tmpName); rmErr != nil {
			log.Debug().Err(rmErr).Msg("failed to remove temp store file")
		}
		return ioError("replace store file", err)
	}

	s.lastWrite = sha256.Sum256(data)
	s.written = true
	return nil
}

// ModifiedExternally returns true if the file on disk differs from what
// this store last read or wrote.
func (s *FileStore) ModifiedExternally() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return s.written && errors.Is(err, os.ErrNotExist)
	}
	if !s.written {
		return true
	}
	return sha256.Sum256(data) != s.lastWrite
}

func (*FileStore) Close() error {
	return nil
}
