package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

// ScanRecordStore is an in-memory record log for tests and dev. The mutex
// spans the whole check-then-insert in InsertUnlessDuplicate, matching the
// transactional guarantee of the sqlite store.
type ScanRecordStore struct {
	mu      sync.Mutex
	records []types.ScanRecord
	nextID  int64

	// FailReads / FailWrites make the next matching call return an error.
	// Test-only knobs for exercising the guard's failure policies.
	FailReads  bool
	FailWrites bool
}

var errStoreUnavailable = errors.New("store unavailable")

func NewScanRecordStore() *ScanRecordStore {
	return &ScanRecordStore{nextID: 1}
}

func (s *ScanRecordStore) FindValidSince(_ context.Context, payload string, since time.Time) (*types.ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailReads {
		return nil, errStoreUnavailable
	}
	return s.findLocked(payload, since), nil
}

func (s *ScanRecordStore) InsertUnlessDuplicate(_ context.Context, sessionID int64, payload string, since, capturedAt time.Time) (*types.ScanRecord, bool, error) {
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}
	capturedAt = capturedAt.UTC().Truncate(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return nil, false, errStoreUnavailable
	}

	if existing := s.findLocked(payload, since); existing != nil {
		return existing, false, nil
	}

	rec := types.ScanRecord{
		ID:         s.nextID,
		SessionID:  sessionID,
		Payload:    payload,
		CapturedAt: capturedAt,
		Valid:      true,
	}
	s.nextID++
	s.records = append(s.records, rec)
	return &rec, true, nil
}

func (s *ScanRecordStore) findLocked(payload string, since time.Time) *types.ScanRecord {
	var best *types.ScanRecord
	for i := range s.records {
		rec := &s.records[i]
		if rec.Payload != payload || !rec.Valid || rec.CapturedAt.Before(since) {
			continue
		}
		if best == nil || rec.CapturedAt.After(best.CapturedAt) {
			best = rec
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// Records returns a copy of everything persisted. Test-only helper.
func (s *ScanRecordStore) Records() []types.ScanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.ScanRecord, len(s.records))
	copy(out, s.records)
	return out
}
