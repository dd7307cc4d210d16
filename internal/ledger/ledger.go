package ledger

import (
	"errors"

	"github.com/louisbranch/kittendex/internal/storage"
)

// RandomSource supplies 16 bytes of entropy per call. Implementations must
// be deterministic for a given ledger state and caller, and must differ
// across calls within the same block.
type RandomSource interface {
	Bytes16(tx storage.Tx, caller string) ([16]byte, error)
}

// BalanceTransfer moves currency between accounts. A failed transfer must
// leave both balances untouched.
type BalanceTransfer interface {
	Transfer(tx storage.Tx, from, to string, amount uint64) error
}

// Ledger exposes the public kitty operations. Each method mutates state
// through the supplied transaction only, so the host's transactional scope
// decides whether the operation commits.
type Ledger struct {
	rand     RandomSource
	balances BalanceTransfer
}

// New creates a Ledger with its external collaborators.
func New(rand RandomSource, balances BalanceTransfer) *Ledger {
	return &Ledger{rand: rand, balances: balances}
}

// Create mints a new kitty for owner with a fresh random genome and a price
// of zero, and returns its id.
func (l *Ledger) Create(tx storage.Tx, owner AccountID) (KittyID, error) {
	id, err := nextKittyID(tx)
	if err != nil {
		return 0, err
	}

	dna, err := l.rand.Bytes16(tx, string(owner))
	if err != nil {
		return 0, err
	}

	if err := insertKitty(tx, owner, id, Kitty{DNA: dna}); err != nil {
		return 0, err
	}
	return id, nil
}

// Breed derives a new kitty from two distinct existing parents. Each genome
// bit is taken from parent1 where the random selector bit is 1, else from
// parent2.
func (l *Ledger) Breed(tx storage.Tx, breeder AccountID, id1, id2 KittyID) (KittyID, error) {
	kitty1, err := getKitty(tx, id1)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, ErrInvalidParent
		}
		return 0, err
	}
	kitty2, err := getKitty(tx, id2)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, ErrInvalidParent
		}
		return 0, err
	}
	if id1 == id2 {
		return 0, ErrSameParent
	}

	id, err := nextKittyID(tx)
	if err != nil {
		return 0, err
	}

	selector, err := l.rand.Bytes16(tx, string(breeder))
	if err != nil {
		return 0, err
	}
	dna := CombineDNA(kitty1.DNA, kitty2.DNA, selector)

	if err := insertKitty(tx, breeder, id, Kitty{DNA: dna}); err != nil {
		return 0, err
	}
	return id, nil
}

// Transfer moves a kitty the sender owns to another account.
func (l *Ledger) Transfer(tx storage.Tx, sender, to AccountID, id KittyID) error {
	owner, err := l.OwnerOf(tx, id)
	if err != nil {
		return err
	}
	if owner != sender {
		return ErrNotOwner
	}
	return doTransfer(tx, sender, to, id)
}

// SetPrice lists a kitty for sale at the given price; zero delists it. Only
// the current owner may set the price.
func (l *Ledger) SetPrice(tx storage.Tx, sender AccountID, id KittyID, price Balance) error {
	kitty, err := getKitty(tx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrKittyNotFound
		}
		return err
	}

	owner, err := l.OwnerOf(tx, id)
	if err != nil {
		return err
	}
	if owner != sender {
		return ErrNotOwner
	}

	kitty.Price = price
	return putKitty(tx, id, kitty)
}

// Buy purchases a listed kitty for its asking price, provided it does not
// exceed maxPrice. The balance transfer and the ownership re-parenting are
// one atomic unit: the enclosing transaction discards both on any error.
func (l *Ledger) Buy(tx storage.Tx, sender AccountID, id KittyID, maxPrice Balance) error {
	kitty, err := getKitty(tx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrKittyNotFound
		}
		return err
	}

	owner, err := l.OwnerOf(tx, id)
	if err != nil {
		return err
	}
	if owner == sender {
		return ErrSelfPurchase
	}

	if kitty.Price == 0 {
		return ErrNotForSale
	}
	if kitty.Price > maxPrice {
		return ErrPriceTooHigh
	}

	if err := l.balances.Transfer(tx, string(sender), string(owner), uint64(kitty.Price)); err != nil {
		return err
	}

	// Preconditions are settled: owner holds the kitty, so re-parenting can
	// only fail on a corrupt store, in which case the transaction rolls
	// everything back.
	if err := doTransfer(tx, owner, sender, id); err != nil {
		return err
	}

	kitty.Price = 0
	return putKitty(tx, id, kitty)
}

// Kitty returns the record for id.
func (l *Ledger) Kitty(tx storage.Tx, id KittyID) (Kitty, error) {
	kitty, err := getKitty(tx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Kitty{}, ErrKittyNotFound
		}
		return Kitty{}, err
	}
	return kitty, nil
}

// OwnerOf returns the current owner of id.
func (l *Ledger) OwnerOf(tx storage.Tx, id KittyID) (AccountID, error) {
	payload, err := tx.Get(ownerKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrKittyNotFound
		}
		return "", err
	}
	return AccountID(payload), nil
}

// Exists reports whether a kitty with id has been created.
func (l *Ledger) Exists(tx storage.Tx, id KittyID) (bool, error) {
	_, err := tx.Get(kittyKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Count returns the total number of kitties ever created, which is also the
// next id to issue.
func (l *Ledger) Count(tx storage.Tx) (KittyID, error) {
	return getCount(tx)
}

// Owned returns the ids in account's ownership chain, oldest first.
func (l *Ledger) Owned(tx storage.Tx, account AccountID) ([]KittyID, error) {
	return ownedKitties(tx, account)
}

// nextKittyID returns the id the next kitty will receive without consuming
// it; insertKitty advances the counter.
func nextKittyID(tx storage.Tx) (KittyID, error) {
	id, err := getCount(tx)
	if err != nil {
		return 0, err
	}
	if id == MaxKittyID {
		return 0, ErrOverflow
	}
	return id, nil
}

// insertKitty stores the record, advances the counter, and links the kitty
// under its owner. Used by both Create and Breed.
func insertKitty(tx storage.Tx, owner AccountID, id KittyID, kitty Kitty) error {
	if err := putKitty(tx, id, kitty); err != nil {
		return err
	}
	if err := putCount(tx, id+1); err != nil {
		return err
	}
	if err := tx.Insert(ownerKey(id), []byte(owner)); err != nil {
		return err
	}
	return appendOwned(tx, owner, id)
}

// doTransfer rewrites the owner map and re-links the ownership chains. The
// caller has already established that from owns id.
func doTransfer(tx storage.Tx, from, to AccountID, id KittyID) error {
	if err := tx.Insert(ownerKey(id), []byte(to)); err != nil {
		return err
	}
	if err := removeOwned(tx, from, id); err != nil {
		return err
	}
	return appendOwned(tx, to, id)
}
