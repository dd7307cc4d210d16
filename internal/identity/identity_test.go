package identity

import (
	"errors"
	"testing"
)

func TestResolveValidNames(t *testing.T) {
	tests := []struct {
		actor string
		want  string
	}{
		{"alice", "alice"},
		{"  bob  ", "bob"},
		{"market-maker_7", "market-maker_7"},
	}

	for _, tc := range tests {
		got, err := Resolve(tc.actor)
		if err != nil {
			t.Fatalf("resolve %q: %v", tc.actor, err)
		}
		if got != tc.want {
			t.Fatalf("resolve %q: expected %q, got %q", tc.actor, tc.want, got)
		}
	}
}

func TestResolveRejectsBlankActor(t *testing.T) {
	for _, actor := range []string{"", "   "} {
		_, err := Resolve(actor)
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("resolve %q: expected ErrUnauthenticated, got %v", actor, err)
		}
	}
}

func TestResolveRejectsInvalidCharacters(t *testing.T) {
	for _, actor := range []string{"Alice", "a/b", "bob!", "a b"} {
		_, err := Resolve(actor)
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("resolve %q: expected ErrUnauthenticated, got %v", actor, err)
		}
	}
}
