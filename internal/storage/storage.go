// Package storage defines the key-value persistence contract for the ledger.
//
// Every public ledger operation runs against a single Tx obtained from
// Store.Update, so all writes made by one operation commit or roll back
// together. Implementations (e.g. bbolt) live in subpackages.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// Tx is a transactional view of the key-value store. Each call is atomic on
// its own; the enclosing Update or View scopes the whole set of calls.
type Tx interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(key []byte) ([]byte, error)
	// Insert stores value at key, overwriting any previous value.
	Insert(key, value []byte) error
	// Remove deletes the value at key. Removing a missing key is a no-op.
	Remove(key []byte) error
	// Take deletes and returns the value at key, or ErrNotFound.
	Take(key []byte) ([]byte, error)
}

// Store provides transactional access to the key-value store.
type Store interface {
	// Update runs fn in a read-write transaction. If fn returns an error,
	// every write made through the Tx is discarded.
	Update(ctx context.Context, fn func(Tx) error) error
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(Tx) error) error
	// Close releases the underlying database.
	Close() error
}
