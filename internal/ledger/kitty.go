// Package ledger implements the kitty asset ledger: the registry of kitties,
// the per-owner ownership index, the breeding engine, and the marketplace
// operations. All state lives in the key-value store; every public operation
// expects to run inside a single storage transaction supplied by the host.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	kerrors "github.com/louisbranch/kittendex/internal/platform/errors"
	"github.com/louisbranch/kittendex/internal/storage"
)

// KittyID identifies a kitty. IDs are issued strictly increasing from zero
// and are never reused.
type KittyID uint32

// MaxKittyID is the last representable id. Creation fails with an overflow
// error once the counter reaches it, rather than wrapping.
const MaxKittyID = KittyID(math.MaxUint32)

// AccountID identifies an account in the ledger.
type AccountID string

// Balance is a currency amount. A price of zero means not for sale.
type Balance uint64

// Kitty is an asset record. DNA is immutable after creation; Price and the
// owner map entry mutate through marketplace operations.
type Kitty struct {
	DNA   Genome  `json:"dna"`
	Price Balance `json:"price"`
}

// Domain errors. Matching is by code (errors.Is), not by message.
var (
	ErrKittyNotFound = kerrors.New(kerrors.CodeKittyNotFound, "kitty does not exist")
	ErrOverflow      = kerrors.New(kerrors.CodeKittyOverflow, "kitty id counter is exhausted")
	ErrNotOwner      = kerrors.New(kerrors.CodeNotKittyOwner, "sender does not own this kitty")
	ErrSameParent    = kerrors.New(kerrors.CodeBreedSameParent, "breeding needs two different parents")
	ErrInvalidParent = kerrors.New(kerrors.CodeBreedInvalidParent, "parent kitty does not exist")
	ErrNotForSale    = kerrors.New(kerrors.CodeKittyNotForSale, "kitty is not for sale")
	ErrPriceTooHigh  = kerrors.New(kerrors.CodeKittyPriceTooHigh, "kitty costs more than the max price")
	ErrSelfPurchase  = kerrors.New(kerrors.CodeKittySelfPurchase, "cannot buy your own kitty")
)

func getKitty(tx storage.Tx, id KittyID) (Kitty, error) {
	payload, err := tx.Get(kittyKey(id))
	if err != nil {
		return Kitty{}, err
	}
	var kitty Kitty
	if err := json.Unmarshal(payload, &kitty); err != nil {
		return Kitty{}, fmt.Errorf("unmarshal kitty %d: %w", id, err)
	}
	return kitty, nil
}

func putKitty(tx storage.Tx, id KittyID, kitty Kitty) error {
	payload, err := json.Marshal(kitty)
	if err != nil {
		return fmt.Errorf("marshal kitty %d: %w", id, err)
	}
	return tx.Insert(kittyKey(id), payload)
}

func getCount(tx storage.Tx) (KittyID, error) {
	payload, err := tx.Get(countKey())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	count, err := strconv.ParseUint(string(payload), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse kitty count: %w", err)
	}
	return KittyID(count), nil
}

func putCount(tx storage.Tx, count KittyID) error {
	return tx.Insert(countKey(), []byte(strconv.FormatUint(uint64(count), 10)))
}
