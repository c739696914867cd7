// Package dedup admits at most one successful ingestion per scope and
// payload within a time window, safely under concurrent callers. The guard
// layers three checks of increasing strength and cost: an in-flight lock,
// a short-lived cache, and the authoritative store.
package dedup

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/store"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

type Status string

const (
	StatusSaved                Status = "saved"
	StatusProcessing           Status = "processing"
	StatusDuplicateCache       Status = "duplicate_cache"
	StatusDuplicateStore       Status = "duplicate_store"
	StatusDuplicateTransaction Status = "duplicate_transaction"
	StatusError                Status = "error"
)

// Result is the structured outcome of one admission attempt. Rejections
// are results, not errors; Record is set only for StatusSaved.
type Result struct {
	Status  Status
	Message string
	Record  *types.ScanRecord
	At      time.Time
}

func (r Result) Saved() bool { return r.Status == StatusSaved }

type Guard struct {
	locks   *InFlight
	cache   *Cache
	records store.ScanRecordStore
	window  time.Duration
	logger  *log.Logger
	now     func() time.Time
}

// NewGuard wires the guard's three tiers. The window bounds both the cache
// and the store lookups; now defaults to time.Now when nil.
func NewGuard(locks *InFlight, cache *Cache, records store.ScanRecordStore, window time.Duration, logger *log.Logger, now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{
		locks:   locks,
		cache:   cache,
		records: records,
		window:  window,
		logger:  logger,
		now:     now,
	}
}

// TryAdmit decides whether a payload may be persisted for the session and,
// if so, persists it.
//
// Tier 1: the scope key (session+payload) is locked for the whole call; a
// concurrent holder means StatusProcessing. Tier 2: a cache hit within the
// window means StatusDuplicateCache (and refreshes the entry). Tier 3: a
// valid store record within the window means StatusDuplicateStore and
// populates the cache for subsequent callers. Tier 4: the store re-runs
// the check and inserts inside one transaction; a match found there means
// StatusDuplicateTransaction.
//
// Failure policy: a tier-3 read failure is fail-open, logged and treated
// as "not a duplicate" so transient read outages don't block legitimate
// scans; the transactional tier still prevents double-writes. A write
// failure is always StatusError, never a false save.
func (g *Guard) TryAdmit(ctx context.Context, sessionID int64, payload string) Result {
	now := g.now().UTC()

	if payload == "" {
		return Result{
			Status:  StatusError,
			Message: "empty payload",
			At:      now,
		}
	}

	key := scopeKey(sessionID, payload)
	if !g.locks.TryAcquire(key, now) {
		return Result{
			Status:  StatusProcessing,
			Message: "a submission for this payload is already in progress",
			At:      now,
		}
	}
	defer g.locks.Release(key)

	if g.cache.SeenWithin(payload, g.window) {
		return Result{
			Status:  StatusDuplicateCache,
			Message: "payload was scanned recently",
			At:      now,
		}
	}

	since := now.Add(-g.window)

	existing, err := g.records.FindValidSince(ctx, payload, since)
	if err != nil {
		// Fail-open: see the policy note above.
		g.logger.Printf("dedup: store check failed, assuming not duplicate: %v", err)
	} else if existing != nil {
		g.cache.Touch(payload)
		return Result{
			Status:  StatusDuplicateStore,
			Message: "payload already recorded in this window",
			At:      now,
		}
	}

	rec, inserted, err := g.records.InsertUnlessDuplicate(ctx, sessionID, payload, since, now)
	if err != nil {
		return Result{
			Status:  StatusError,
			Message: fmt.Sprintf("persist scan: %v", err),
			At:      now,
		}
	}
	if !inserted {
		g.cache.Touch(payload)
		return Result{
			Status:  StatusDuplicateTransaction,
			Message: "payload was recorded by a concurrent submission",
			At:      now,
		}
	}

	g.cache.Touch(payload)
	return Result{
		Status:  StatusSaved,
		Message: "scan saved",
		Record:  rec,
		At:      now,
	}
}

func scopeKey(sessionID int64, payload string) string {
	return fmt.Sprintf("%d:%s", sessionID, payload)
}
