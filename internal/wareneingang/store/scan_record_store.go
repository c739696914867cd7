package store

import (
	"context"
	"time"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

// ScanRecordStore is the authoritative tier of the duplicate guard plus
// the append-only record log. Payloads match by exact equality; the store
// is not required to index more than that.
type ScanRecordStore interface {
	// FindValidSince returns the most recent valid record with this payload
	// captured at or after since, or nil if none exists.
	FindValidSince(ctx context.Context, payload string, since time.Time) (*types.ScanRecord, error)

	// InsertUnlessDuplicate re-runs the FindValidSince check and, if still
	// clear, inserts a new record, both inside one transaction, so two
	// concurrent callers that each passed the pre-write check cannot both
	// insert. Returns (existing, false, nil) when the re-check finds a
	// match, (inserted, true, nil) on a successful write.
	InsertUnlessDuplicate(ctx context.Context, sessionID int64, payload string, since, capturedAt time.Time) (*types.ScanRecord, bool, error)
}
