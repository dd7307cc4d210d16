// Package random supplies the ledger's deterministic randomness source.
//
// Entropy is derived with BLAKE2b-128 from the persisted global seed, the
// caller identity, a monotonic per-block request counter, and the current
// block height, so draws are reproducible for a given ledger state yet
// differ across calls within the same block.
package random

import (
	crand "crypto/rand"
	"fmt"
)

// SeedSize is the number of bytes in the global seed.
const SeedSize = 16

// NewSeed generates a fresh global seed using crypto/rand. It is used once,
// on first open of the store; afterwards the persisted seed is authoritative.
func NewSeed() ([SeedSize]byte, error) {
	var seed [SeedSize]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return seed, fmt.Errorf("read random seed: %w", err)
	}
	return seed, nil
}
