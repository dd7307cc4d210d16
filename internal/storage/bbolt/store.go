// Package bbolt provides a BoltDB-backed implementation of the ledger store.
package bbolt

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/kittendex/internal/storage"
	"go.etcd.io/bbolt"
)

const ledgerBucket = "ledger"

// Store provides a BoltDB-backed key-value store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBucket(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Update runs fn in a read-write transaction. Writes are discarded when fn
// returns an error.
func (s *Store) Update(ctx context.Context, fn func(storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errors.New("storage is not configured")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ledgerBucket))
		if bucket == nil {
			return fmt.Errorf("ledger bucket is missing")
		}
		return fn(&view{bucket: bucket})
	})
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errors.New("storage is not configured")
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ledgerBucket))
		if bucket == nil {
			return fmt.Errorf("ledger bucket is missing")
		}
		return fn(&view{bucket: bucket})
	})
}

func (s *Store) ensureBucket() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ledgerBucket))
		if err != nil {
			return fmt.Errorf("create ledger bucket: %w", err)
		}
		return nil
	})
}

// view adapts a bbolt bucket to the storage.Tx contract.
type view struct {
	bucket *bbolt.Bucket
}

func (v *view) Get(key []byte) ([]byte, error) {
	val := v.bucket.Get(key)
	if val == nil {
		return nil, storage.ErrNotFound
	}
	// The slice is only valid for the life of the bolt transaction.
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (v *view) Insert(key, value []byte) error {
	return v.bucket.Put(key, value)
}

func (v *view) Remove(key []byte) error {
	return v.bucket.Delete(key)
}

func (v *view) Take(key []byte) ([]byte, error) {
	out, err := v.Get(key)
	if err != nil {
		return nil, err
	}
	if err := v.bucket.Delete(key); err != nil {
		return nil, err
	}
	return out, nil
}
