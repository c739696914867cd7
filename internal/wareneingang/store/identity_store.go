package store

import (
	"context"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

// IdentityStore resolves decoded tags against the identity registry.
type IdentityStore interface {
	// FindByTag returns the active identity for an upper-case hex tag.
	// A missing or deactivated tag is (zero, false, nil), not an error.
	FindByTag(ctx context.Context, tag string) (types.Identity, bool, error)
}
