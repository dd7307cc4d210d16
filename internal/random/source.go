package random

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/louisbranch/kittendex/internal/storage"
	"golang.org/x/crypto/blake2b"
)

// Chain context keys.
const (
	seedKey   = "chain/seed"
	heightKey = "chain/height"
	nonceKey  = "chain/nonce"
)

// Source draws deterministic 16-byte values from the chain context stored in
// the key-value store.
type Source struct{}

// NewSource creates a Source.
func NewSource() *Source {
	return &Source{}
}

// Bytes16 returns 16 bytes derived from (seed, caller, request counter,
// block height) and advances the per-block request counter. The seed is
// created and persisted on first use.
func (s *Source) Bytes16(tx storage.Tx, caller string) ([16]byte, error) {
	var out [16]byte

	seed, err := ensureSeed(tx)
	if err != nil {
		return out, err
	}
	height, err := readCounter(tx, heightKey)
	if err != nil {
		return out, err
	}
	nonce, err := readCounter(tx, nonceKey)
	if err != nil {
		return out, err
	}

	h, err := blake2b.New(16, nil)
	if err != nil {
		return out, fmt.Errorf("init blake2b: %w", err)
	}
	h.Write(seed[:])
	h.Write([]byte(caller))
	var ctx [16]byte
	binary.BigEndian.PutUint64(ctx[:8], nonce)
	binary.BigEndian.PutUint64(ctx[8:], height)
	h.Write(ctx[:])
	copy(out[:], h.Sum(nil))

	if err := writeCounter(tx, nonceKey, nonce+1); err != nil {
		return out, err
	}
	return out, nil
}

// AdvanceBlock increments the block height and resets the per-block request
// counter. The host calls it once per mutating command.
func AdvanceBlock(tx storage.Tx) error {
	height, err := readCounter(tx, heightKey)
	if err != nil {
		return err
	}
	if err := writeCounter(tx, heightKey, height+1); err != nil {
		return err
	}
	return writeCounter(tx, nonceKey, 0)
}

// Height reports the current block height.
func Height(tx storage.Tx) (uint64, error) {
	return readCounter(tx, heightKey)
}

// ensureSeed loads the persisted global seed, generating and storing a new
// one when the store has none yet.
func ensureSeed(tx storage.Tx) ([SeedSize]byte, error) {
	var seed [SeedSize]byte

	payload, err := tx.Get([]byte(seedKey))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return seed, err
		}
		seed, err = NewSeed()
		if err != nil {
			return seed, err
		}
		encoded := hex.EncodeToString(seed[:])
		return seed, tx.Insert([]byte(seedKey), []byte(encoded))
	}

	raw, err := hex.DecodeString(string(payload))
	if err != nil {
		return seed, fmt.Errorf("decode stored seed: %w", err)
	}
	if len(raw) != SeedSize {
		return seed, fmt.Errorf("stored seed must be %d bytes, got %d", SeedSize, len(raw))
	}
	copy(seed[:], raw)
	return seed, nil
}

func readCounter(tx storage.Tx, key string) (uint64, error) {
	payload, err := tx.Get([]byte(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	value, err := strconv.ParseUint(string(payload), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func writeCounter(tx storage.Tx, key string, value uint64) error {
	return tx.Insert([]byte(key), []byte(strconv.FormatUint(value, 10)))
}
