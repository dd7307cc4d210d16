// Package identity resolves the caller identity attached to a request.
package identity

import (
	"strings"

	kerrors "github.com/louisbranch/kittendex/internal/platform/errors"
)

// ErrUnauthenticated indicates the request carried no usable identity.
var ErrUnauthenticated = kerrors.New(kerrors.CodeUnauthenticated, "caller identity is required")

// Resolve validates an actor name and returns the account identifier. Names
// are restricted to lowercase letters, digits, '-' and '_' so they embed
// unambiguously in storage keys.
func Resolve(actor string) (string, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return "", ErrUnauthenticated
	}
	for _, r := range actor {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return "", kerrors.WithMetadata(kerrors.CodeUnauthenticated,
				"account names may contain only lowercase letters, digits, '-' and '_'",
				map[string]string{"actor": actor})
		}
	}
	return actor, nil
}
