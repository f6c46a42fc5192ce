// Waytrace - GPS Trace Waypoint and Path Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waytrace

package tilecache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/waytrace/internal/tile"
)

// metaKeyPrefix prefixes every tile metadata key.
const metaKeyPrefix = "tile:"

// Meta is what is remembered about a downloaded tile.
type Meta struct {
	ETag      string    `json:"etag,omitempty"`
	Size      int64     `json:"size"`
	FetchedAt time.Time `json:"fetched_at"`
}

// MetaStore persists tile metadata in BadgerDB.
type MetaStore struct {
	db *badger.DB
}

// OpenMetaStore opens (or creates) a metadata store in dir.
func OpenMetaStore(dir string) (*MetaStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open tile metadata %s: %w", dir, err)
	}
	return &MetaStore{db: db}, nil
}

// OpenInMemoryMetaStore opens a store that lives until Close.
func OpenInMemoryMetaStore() (*MetaStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory tile metadata: %w", err)
	}
	return &MetaStore{db: db}, nil
}

func metaKey(t tile.Tile) []byte {
	return []byte(metaKeyPrefix + t.String())
}

// Get returns the metadata for t; ok is false when none is stored.
func (s *MetaStore) Get(t tile.Tile) (Meta, bool, error) {
	var m Meta
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(t))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		})
	})
	if err != nil {
		return Meta{}, false, fmt.Errorf("load tile metadata %s: %w", t, err)
	}
	return m, found, nil
}

// Put stores the metadata for t.
func (s *MetaStore) Put(t tile.Tile, m Meta) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal tile metadata: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(t), data)
	})
}

// Delete removes the metadata for t.
func (s *MetaStore) Delete(t tile.Tile) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(metaKey(t))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Count returns the number of tiles with stored metadata.
func (s *MetaStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(metaKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Close closes the underlying database.
func (s *MetaStore) Close() error {
	return s.db.Close()
}
