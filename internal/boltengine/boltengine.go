// Package boltengine adapts go.etcd.io/bbolt as an alternative backing
// store behind the engine.Engine interface, standing in for an embedded
// engine choice alongside the log-structured engine.
package boltengine

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/arnavsurve/kvs/internal/engine"
)

// FileName is the bbolt database file created under the store path.
const FileName = "sled.db"

var bucketName = []byte("kv")

// BoltEngine satisfies engine.Engine on top of a single bbolt database
// with one fixed bucket.
type BoltEngine struct {
	db *bbolt.DB
}

var _ engine.Engine = (*BoltEngine)(nil)

// Open creates path if necessary and opens (creating if absent) the bbolt
// database at path/sled.db, ensuring the kv bucket exists.
func Open(path string) (*BoltEngine, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("boltengine: mkdir %s: %w", path, err)
	}

	db, err := bbolt.Open(filepath.Join(path, FileName), 0644, nil)
	if err != nil {
		return nil, fmt.Errorf("boltengine: open: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("boltengine: create bucket: %w", err)
	}

	return &BoltEngine{db: db}, nil
}

// Set stores value under key, overwriting any existing value.
func (e *BoltEngine) Set(key, value string) error {
	err := e.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("boltengine: set %q: %w", key, err)
	}
	return nil
}

// Get returns the value for key, or nil if key is absent.
func (e *BoltEngine) Get(key string) (*string, error) {
	var value *string
	err := e.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return nil
		}
		s := string(v)
		value = &s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltengine: get %q: %w", key, err)
	}
	return value, nil
}

// Remove deletes key, returning engine.ErrKeyNotFound if it is absent.
func (e *BoltEngine) Remove(key string) error {
	err := e.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get([]byte(key)) == nil {
			return engine.ErrKeyNotFound
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("boltengine: remove %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (e *BoltEngine) Close() error {
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("boltengine: close: %w", err)
	}
	return nil
}
