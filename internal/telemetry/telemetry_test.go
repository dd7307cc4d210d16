package telemetry

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/louisbranch/kittendex/internal/storage"
	"github.com/louisbranch/kittendex/internal/storage/memory"
)

type capturingAppender struct {
	events []Event
}

func (c *capturingAppender) AppendEvent(_ context.Context, evt Event) error {
	c.events = append(c.events, evt)
	return nil
}

func TestEmitFillsDefaults(t *testing.T) {
	appender := &capturingAppender{}
	fixed := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	emitter := &Emitter{store: appender, clock: func() time.Time { return fixed }}

	if err := emitter.Emit(context.Background(), Event{Op: "create", Actor: "alice"}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(appender.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(appender.events))
	}
	evt := appender.events[0]
	if evt.Severity != SeverityInfo {
		t.Fatalf("expected default severity INFO, got %s", evt.Severity)
	}
	if !evt.Timestamp.Equal(fixed) {
		t.Fatalf("expected clock timestamp, got %v", evt.Timestamp)
	}
}

func TestEmitIsNoopWithoutStore(t *testing.T) {
	var emitter *Emitter
	if err := emitter.Emit(context.Background(), Event{Op: "create"}); err != nil {
		t.Fatalf("nil emitter should be a no-op, got %v", err)
	}
	if err := NewEmitter(nil).Emit(context.Background(), Event{Op: "create"}); err != nil {
		t.Fatalf("nil store should be a no-op, got %v", err)
	}
}

func TestLogAppendsSequentially(t *testing.T) {
	store := memory.New()
	log := NewLog(store)
	ctx := context.Background()

	for _, op := range []string{"create", "breed"} {
		if err := log.AppendEvent(ctx, Event{Op: op, Actor: "alice", Severity: SeverityInfo}); err != nil {
			t.Fatalf("append %s: %v", op, err)
		}
	}

	err := store.View(ctx, func(tx storage.Tx) error {
		payload, err := tx.Get([]byte("telemetry/000000000000"))
		if err != nil {
			return err
		}
		var evt Event
		if err := json.Unmarshal(payload, &evt); err != nil {
			return err
		}
		if evt.Op != "create" {
			t.Fatalf("expected first event create, got %s", evt.Op)
		}

		payload, err = tx.Get([]byte("telemetry/000000000001"))
		if err != nil {
			return err
		}
		if err := json.Unmarshal(payload, &evt); err != nil {
			return err
		}
		if evt.Op != "breed" {
			t.Fatalf("expected second event breed, got %s", evt.Op)
		}

		seq, err := tx.Get([]byte("telemetry/next"))
		if err != nil {
			return err
		}
		if string(seq) != "2" {
			t.Fatalf("expected next sequence 2, got %s", seq)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}
