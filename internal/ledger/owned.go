package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/kittendex/internal/storage"
)

// link is one node of an account's ownership chain. The entry stored under
// the sentinel slot anchors the chain: its Next is the logical head (oldest
// inserted id) and its Prev the logical tail (most recently inserted id).
type link struct {
	Prev *KittyID `json:"prev"`
	Next *KittyID `json:"next"`
}

// readLink loads the link stored at (account, id). A missing entry reads as
// the empty link, which doubles as the sentinel of an empty chain.
func readLink(tx storage.Tx, account AccountID, id *KittyID) (link, error) {
	payload, err := tx.Get(ownedKey(account, id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return link{}, nil
		}
		return link{}, err
	}
	var item link
	if err := json.Unmarshal(payload, &item); err != nil {
		return link{}, fmt.Errorf("unmarshal ownership link: %w", err)
	}
	return item, nil
}

func writeLink(tx storage.Tx, account AccountID, id *KittyID, item link) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal ownership link: %w", err)
	}
	return tx.Insert(ownedKey(account, id), payload)
}

// appendOwned links id at the tail of account's chain in O(1).
//
// The sentinel is rewritten first; when the chain was empty the follow-up
// read of the previous tail resolves to the freshly written sentinel, which
// is what stitches the single-element chain together.
func appendOwned(tx storage.Tx, account AccountID, id KittyID) error {
	sentinel, err := readLink(tx, account, nil)
	if err != nil {
		return err
	}

	newID := id
	if err := writeLink(tx, account, nil, link{Prev: &newID, Next: sentinel.Next}); err != nil {
		return err
	}

	tail, err := readLink(tx, account, sentinel.Prev)
	if err != nil {
		return err
	}
	if err := writeLink(tx, account, sentinel.Prev, link{Prev: tail.Prev, Next: &newID}); err != nil {
		return err
	}

	return writeLink(tx, account, &newID, link{Prev: sentinel.Prev, Next: nil})
}

// removeOwned unlinks id from account's chain in O(1), splicing its
// neighbors together. Removing an id that is not in the chain is a no-op.
// Callers must only remove ids currently owned by account; anything else
// would desynchronize the owner map from the chain.
func removeOwned(tx storage.Tx, account AccountID, id KittyID) error {
	payload, err := tx.Take(ownedKey(account, &id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	var item link
	if err := json.Unmarshal(payload, &item); err != nil {
		return fmt.Errorf("unmarshal ownership link: %w", err)
	}

	prev, err := readLink(tx, account, item.Prev)
	if err != nil {
		return err
	}
	if err := writeLink(tx, account, item.Prev, link{Prev: prev.Prev, Next: item.Next}); err != nil {
		return err
	}

	next, err := readLink(tx, account, item.Next)
	if err != nil {
		return err
	}
	return writeLink(tx, account, item.Next, link{Prev: item.Prev, Next: next.Next})
}

// ownedKitties walks account's chain forward from the sentinel head and
// returns the owned ids, oldest first.
func ownedKitties(tx storage.Tx, account AccountID) ([]KittyID, error) {
	sentinel, err := readLink(tx, account, nil)
	if err != nil {
		return nil, err
	}

	var ids []KittyID
	seen := make(map[KittyID]bool)
	for cursor := sentinel.Next; cursor != nil; {
		id := *cursor
		if seen[id] {
			return nil, fmt.Errorf("ownership chain for %s contains a cycle at kitty %d", account, id)
		}
		seen[id] = true
		ids = append(ids, id)

		item, err := readLink(tx, account, &id)
		if err != nil {
			return nil, err
		}
		cursor = item.Next
	}
	return ids, nil
}

// ownedKittiesReverse walks account's chain backward from the sentinel tail,
// returning the owned ids most recent first.
func ownedKittiesReverse(tx storage.Tx, account AccountID) ([]KittyID, error) {
	sentinel, err := readLink(tx, account, nil)
	if err != nil {
		return nil, err
	}

	var ids []KittyID
	seen := make(map[KittyID]bool)
	for cursor := sentinel.Prev; cursor != nil; {
		id := *cursor
		if seen[id] {
			return nil, fmt.Errorf("ownership chain for %s contains a cycle at kitty %d", account, id)
		}
		seen[id] = true
		ids = append(ids, id)

		item, err := readLink(tx, account, &id)
		if err != nil {
			return nil, err
		}
		cursor = item.Prev
	}
	return ids, nil
}
