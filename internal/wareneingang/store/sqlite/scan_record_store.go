package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/shirtful/wareneingang/server/internal/db"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

type ScanRecordStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewScanRecordStore(db *sql.DB, writer *dbpkg.Worker) *ScanRecordStore {
	return &ScanRecordStore{db: db, writer: writer}
}

func (s *ScanRecordStore) FindValidSince(ctx context.Context, payload string, since time.Time) (*types.ScanRecord, error) {
	rec, err := findValidSince(ctx, s.db, payload, since)
	if err != nil {
		return nil, fmt.Errorf("FindValidSince query: %w", err)
	}
	return rec, nil
}

// InsertUnlessDuplicate runs the windowed lookup again on the writer
// goroutine and inserts only if it is still clear. Two concurrent callers
// that both passed the pre-write check serialize here; the second one gets
// the first one's record back with inserted=false.
func (s *ScanRecordStore) InsertUnlessDuplicate(ctx context.Context, sessionID int64, payload string, since, capturedAt time.Time) (*types.ScanRecord, bool, error) {
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}
	capturedMs := msFromTime(capturedAt)

	var (
		rec      *types.ScanRecord
		inserted bool
	)
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		existing, err := findValidSince(ctx, tx, payload, since)
		if err != nil {
			return fmt.Errorf("InsertUnlessDuplicate re-check: %w", err)
		}
		if existing != nil {
			rec = existing
			inserted = false
			return nil
		}

		res, err := tx.ExecContext(ctx, `
INSERT INTO scan_records(session_id, payload, captured_at_ms, valid)
VALUES (?, ?, ?, 1);
`, sessionID, payload, capturedMs)
		if err != nil {
			return fmt.Errorf("InsertUnlessDuplicate insert: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("InsertUnlessDuplicate last insert id: %w", err)
		}

		rec = &types.ScanRecord{
			ID:         id,
			SessionID:  sessionID,
			Payload:    payload,
			CapturedAt: timeFromMs(capturedMs),
			Valid:      true,
		}
		inserted = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return rec, inserted, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// findValidSince is shared between the pre-write check (plain connection)
// and the transactional re-check so both tiers run the identical query.
func findValidSince(ctx context.Context, q querier, payload string, since time.Time) (*types.ScanRecord, error) {
	var (
		rec        types.ScanRecord
		capturedMs int64
		valid      int
	)
	err := q.QueryRowContext(ctx, `
SELECT id, session_id, payload, captured_at_ms, valid
FROM scan_records
WHERE payload = ? AND valid = 1 AND captured_at_ms >= ?
ORDER BY captured_at_ms DESC
LIMIT 1;
`, payload, msFromTime(since)).Scan(&rec.ID, &rec.SessionID, &rec.Payload, &capturedMs, &valid)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.CapturedAt = timeFromMs(capturedMs)
	rec.Valid = valid == 1
	return &rec, nil
}
