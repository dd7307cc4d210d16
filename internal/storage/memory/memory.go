// Package memory provides an in-memory store for tests.
package memory

import (
	"context"
	"errors"

	"github.com/louisbranch/kittendex/internal/storage"
)

// Store is a map-backed storage.Store. It mirrors the transactional contract
// of the bbolt store: writes made by an Update whose fn errors are discarded.
type Store struct {
	data map[string][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Update runs fn against a scratch copy and commits it only on success.
func (s *Store) Update(ctx context.Context, fn func(storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return errors.New("storage is not configured")
	}
	scratch := make(map[string][]byte, len(s.data))
	for k, v := range s.data {
		scratch[k] = v
	}
	if err := fn(&tx{data: scratch}); err != nil {
		return err
	}
	s.data = scratch
	return nil
}

// View runs fn against a read-only copy of the data.
func (s *Store) View(ctx context.Context, fn func(storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return errors.New("storage is not configured")
	}
	scratch := make(map[string][]byte, len(s.data))
	for k, v := range s.data {
		scratch[k] = v
	}
	return fn(&tx{data: scratch})
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// Len reports the number of stored keys, for test assertions.
func (s *Store) Len() int { return len(s.data) }

type tx struct {
	data map[string][]byte
}

func (t *tx) Get(key []byte) ([]byte, error) {
	val, ok := t.data[string(key)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (t *tx) Insert(key, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	t.data[string(key)] = stored
	return nil
}

func (t *tx) Remove(key []byte) error {
	delete(t.data, string(key))
	return nil
}

func (t *tx) Take(key []byte) ([]byte, error) {
	val, err := t.Get(key)
	if err != nil {
		return nil, err
	}
	delete(t.data, string(key))
	return val, nil
}
