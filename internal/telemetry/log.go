package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/louisbranch/kittendex/internal/storage"
)

// Event log keys: telemetry/next holds the next sequence number and each
// event lives at telemetry/<seq>, zero-padded so keys sort by insertion.
const (
	eventSeqKey    = "telemetry/next"
	eventKeyPrefix = "telemetry/"
	eventSeqDigits = 12
)

// Log is a KV-backed telemetry event log.
type Log struct {
	store storage.Store
}

// NewLog creates a Log over the given store.
func NewLog(store storage.Store) *Log {
	return &Log{store: store}
}

// AppendEvent persists evt at the next sequence slot.
func (l *Log) AppendEvent(ctx context.Context, evt Event) error {
	if l == nil || l.store == nil {
		return nil
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal telemetry event: %w", err)
	}
	return l.store.Update(ctx, func(tx storage.Tx) error {
		seq, err := nextSeq(tx)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s%0*d", eventKeyPrefix, eventSeqDigits, seq)
		if err := tx.Insert([]byte(key), payload); err != nil {
			return err
		}
		return tx.Insert([]byte(eventSeqKey), []byte(strconv.FormatUint(seq+1, 10)))
	})
}

func nextSeq(tx storage.Tx) (uint64, error) {
	payload, err := tx.Get([]byte(eventSeqKey))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	seq, err := strconv.ParseUint(string(payload), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse telemetry sequence: %w", err)
	}
	return seq, nil
}
