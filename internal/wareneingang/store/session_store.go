package store

import (
	"context"
	"time"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

// SessionStore owns session rows and the one-active-session-per-identity
// invariant.
type SessionStore interface {
	// Start closes any active session for the identity and inserts a new
	// active one as a single atomic unit: concurrent readers never observe
	// two active sessions, nor an interrupted close without a create.
	Start(ctx context.Context, identityID int64, now time.Time) (types.Session, error)

	// End closes the session if it is still active. Returns whether a row
	// changed; false means already ended or not found, which is not an
	// error.
	End(ctx context.Context, sessionID int64, now time.Time) (bool, error)

	// EndAllActive closes every active session and returns their pre-image
	// (the rows as they were before mutation) for downstream notification.
	EndAllActive(ctx context.Context, now time.Time) ([]types.Session, error)

	// Get fetches a session by id. Missing is (zero, false, nil).
	Get(ctx context.Context, sessionID int64) (types.Session, bool, error)

	// ActiveForIdentity returns the identity's active session, if any.
	ActiveForIdentity(ctx context.Context, identityID int64) (types.Session, bool, error)
}
