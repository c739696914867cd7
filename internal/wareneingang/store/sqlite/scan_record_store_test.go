package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlitestore "github.com/shirtful/wareneingang/server/internal/wareneingang/store/sqlite"
)

func newScanFixture(t *testing.T) (*sqlitestore.ScanRecordStore, *sql.DB, int64) {
	t.Helper()

	conn := openTestDB(t)
	writer := newTestWriter(t, conn)

	identityID := insertIdentity(t, conn, "53004114", "Operator A")
	sessions := sqlitestore.NewSessionStore(conn, writer)
	sess, err := sessions.Start(context.Background(), identityID, time.Time{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	return sqlitestore.NewScanRecordStore(conn, writer), conn, sess.ID
}

func TestScanRecordStore_InsertAndFind(t *testing.T) {
	store, _, sessionID := newScanFixture(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	since := now.Add(-5 * time.Minute)

	rec, inserted, err := store.InsertUnlessDuplicate(ctx, sessionID, "PKG-0001", since, now)
	if err != nil {
		t.Fatalf("InsertUnlessDuplicate: %v", err)
	}
	if !inserted {
		t.Fatal("expected insert on empty store")
	}
	if rec.ID == 0 || rec.Payload != "PKG-0001" || !rec.Valid {
		t.Errorf("unexpected record: %+v", rec)
	}

	found, err := store.FindValidSince(ctx, "PKG-0001", since)
	if err != nil {
		t.Fatalf("FindValidSince: %v", err)
	}
	if found == nil || found.ID != rec.ID {
		t.Fatalf("expected to find record %d, got %+v", rec.ID, found)
	}
	if !found.CapturedAt.Equal(rec.CapturedAt) {
		t.Errorf("captured_at round-trip mismatch: %v vs %v", rec.CapturedAt, found.CapturedAt)
	}
}

func TestScanRecordStore_FindRespectsWindow(t *testing.T) {
	store, _, sessionID := newScanFixture(t)
	ctx := context.Background()

	capturedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if _, _, err := store.InsertUnlessDuplicate(ctx, sessionID, "PKG-0001",
		capturedAt.Add(-time.Minute), capturedAt); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// A window starting after the capture excludes the record.
	found, err := store.FindValidSince(ctx, "PKG-0001", capturedAt.Add(time.Second))
	if err != nil {
		t.Fatalf("FindValidSince: %v", err)
	}
	if found != nil {
		t.Errorf("expected no match outside window, got %+v", found)
	}

	// A window containing the capture includes it.
	found, err = store.FindValidSince(ctx, "PKG-0001", capturedAt.Add(-time.Second))
	if err != nil {
		t.Fatalf("FindValidSince: %v", err)
	}
	if found == nil {
		t.Error("expected match inside window")
	}
}

func TestScanRecordStore_ReCheckBlocksSecondInsert(t *testing.T) {
	store, _, sessionID := newScanFixture(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	since := now.Add(-5 * time.Minute)

	first, inserted, err := store.InsertUnlessDuplicate(ctx, sessionID, "PKG-0001", since, now)
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}

	// Same window: the transactional re-check finds the first record.
	second, inserted, err := store.InsertUnlessDuplicate(ctx, sessionID, "PKG-0001", since, now.Add(time.Second))
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if inserted {
		t.Fatal("expected re-check to block the second insert")
	}
	if second.ID != first.ID {
		t.Errorf("expected the existing record back, got %+v", second)
	}

	// Past the window the same payload inserts as a new record.
	later := now.Add(10 * time.Minute)
	third, inserted, err := store.InsertUnlessDuplicate(ctx, sessionID, "PKG-0001", later.Add(-5*time.Minute), later)
	if err != nil {
		t.Fatalf("third insert: %v", err)
	}
	if !inserted {
		t.Fatal("expected insert after window elapsed")
	}
	if third.ID == first.ID {
		t.Error("expected a fresh record id")
	}
}

func TestScanRecordStore_FindIgnoresInvalidRecords(t *testing.T) {
	store, conn, sessionID := newScanFixture(t)
	ctx := context.Background()

	capturedMs := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).UnixMilli()
	if _, err := conn.ExecContext(ctx, `
INSERT INTO scan_records(session_id, payload, captured_at_ms, valid)
VALUES (?, 'PKG-0001', ?, 0);
`, sessionID, capturedMs); err != nil {
		t.Fatalf("insert invalid record: %v", err)
	}

	found, err := store.FindValidSince(ctx, "PKG-0001", time.UnixMilli(capturedMs).Add(-time.Minute))
	if err != nil {
		t.Fatalf("FindValidSince: %v", err)
	}
	if found != nil {
		t.Errorf("expected invalidated records to be ignored, got %+v", found)
	}
}
