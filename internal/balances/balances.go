// Package balances implements the currency collaborator the marketplace
// depends on: an account balance book stored in the key-value store with an
// atomic transfer primitive.
package balances

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	kerrors "github.com/louisbranch/kittendex/internal/platform/errors"
	"github.com/louisbranch/kittendex/internal/storage"
)

const balancePrefix = "bal/"

// Collaborator errors. Matching is by code.
var (
	ErrInsufficientBalance = kerrors.New(kerrors.CodeInsufficientBalance, "account balance is too low")
	ErrBalanceOverflow     = kerrors.New(kerrors.CodeBalanceOverflow, "account balance would overflow")
)

// Book is the KV-backed balance ledger.
type Book struct{}

// NewBook creates a Book.
func NewBook() *Book {
	return &Book{}
}

// Transfer moves amount from one account to the other. On any error neither
// balance changes: both sides are resolved before either is written, and the
// enclosing transaction discards partial writes.
func (b *Book) Transfer(tx storage.Tx, from, to string, amount uint64) error {
	if from == to || amount == 0 {
		return nil
	}

	fromBalance, err := b.BalanceOf(tx, from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientBalance
	}

	toBalance, err := b.BalanceOf(tx, to)
	if err != nil {
		return err
	}
	if toBalance > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}

	if err := writeBalance(tx, from, fromBalance-amount); err != nil {
		return err
	}
	return writeBalance(tx, to, toBalance+amount)
}

// Mint credits amount to an account. Host-side faucet; the ledger core never
// calls it.
func (b *Book) Mint(tx storage.Tx, account string, amount uint64) error {
	balance, err := b.BalanceOf(tx, account)
	if err != nil {
		return err
	}
	if balance > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	return writeBalance(tx, account, balance+amount)
}

// BalanceOf reports an account's balance; unknown accounts hold zero.
func (b *Book) BalanceOf(tx storage.Tx, account string) (uint64, error) {
	payload, err := tx.Get(balanceKey(account))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	balance, err := strconv.ParseUint(string(payload), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance for %s: %w", account, err)
	}
	return balance, nil
}

func writeBalance(tx storage.Tx, account string, balance uint64) error {
	return tx.Insert(balanceKey(account), []byte(strconv.FormatUint(balance, 10)))
}

func balanceKey(account string) []byte {
	return []byte(balancePrefix + account)
}
