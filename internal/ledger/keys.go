package ledger

import "strconv"

// Key layout, one flat namespace per record family:
//
//	kitty/<id>            -> Kitty record (JSON)
//	owner/<id>            -> owning AccountID
//	owned/<account>/<id>  -> ownership link (JSON)
//	owned/<account>/-     -> the account's sentinel link (JSON)
//	meta/count            -> next kitty id (decimal)
const (
	kittyPrefix = "kitty/"
	ownerPrefix = "owner/"
	ownedPrefix = "owned/"

	sentinelSlot = "-"
)

func kittyKey(id KittyID) []byte {
	return []byte(kittyPrefix + strconv.FormatUint(uint64(id), 10))
}

func ownerKey(id KittyID) []byte {
	return []byte(ownerPrefix + strconv.FormatUint(uint64(id), 10))
}

// ownedKey addresses one link in an account's ownership chain. A nil id
// addresses the account's sentinel entry.
func ownedKey(account AccountID, id *KittyID) []byte {
	slot := sentinelSlot
	if id != nil {
		slot = strconv.FormatUint(uint64(*id), 10)
	}
	return []byte(ownedPrefix + string(account) + "/" + slot)
}

func countKey() []byte {
	return []byte("meta/count")
}
