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
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

const BucketStore = "store"

// BoltStore keeps the catalog as a single JSON value in a bbolt database.
type BoltStore struct {
	bdb *bolt.DB
}

func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, ioError("open bolt database", err)
	}

	err = db.Update(func(txn *bolt.Tx) error {
		_, err := txn.CreateBucketIfNotExists([]byte(BucketStore))
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing bolt database")
		}
		return nil, ioError("init bolt database", err)
	}

	return &BoltStore{bdb: db}, nil
}

func (s *BoltStore) Load(_ context.Context) ([]catalog.Entry, error) {
	var data []byte
	err := s.bdb.View(func(txn *bolt.Tx) error {
		b := txn.Bucket([]byte(BucketStore))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(ProcessesKey)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, ioError("view bolt database", err)
	}

	if data == nil {
		return []catalog.Entry{}, nil
	}

	entries, err := decodeEntries(data)
	if err != nil {
		log.Error().Err(err).Msg("stored catalog is malformed, starting empty")
		return []catalog.Entry{}, nil
	}
	return entries, nil
}

func (s *BoltStore) Save(_ context.Context, entries []catalog.Entry) error {
	data, err := encodeEntries(entries)
	if err != nil {
		return ioError("encode store", err)
	}

	err = s.bdb.Update(func(txn *bolt.Tx) error {
		b, err := txn.CreateBucketIfNotExists([]byte(BucketStore))
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return b.Put([]byte(ProcessesKey), data)
	})
	if err != nil {
		return ioError("update bolt database", err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	if err := s.bdb.Close(); err != nil {
		return ioError("close bolt database", err)
	}
	return nil
}
