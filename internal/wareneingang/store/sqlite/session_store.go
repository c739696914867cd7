package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/shirtful/wareneingang/server/internal/db"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

type SessionStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewSessionStore(db *sql.DB, writer *dbpkg.Worker) *SessionStore {
	return &SessionStore{db: db, writer: writer}
}

// Start closes any active session for the identity and inserts the new one
// inside a single writer transaction. The partial unique index on
// sessions(identity_id) WHERE active=1 would reject the insert if the
// close ever failed to run first.
func (s *SessionStore) Start(ctx context.Context, identityID int64, now time.Time) (types.Session, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	nowMs := msFromTime(now)

	var sess types.Session
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
UPDATE sessions
SET ended_at_ms = ?, active = 0
WHERE identity_id = ? AND active = 1;
`, nowMs, identityID); err != nil {
			return fmt.Errorf("Start close previous: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
INSERT INTO sessions(identity_id, started_at_ms, active)
VALUES (?, ?, 1);
`, identityID, nowMs)
		if err != nil {
			return fmt.Errorf("Start insert: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Start last insert id: %w", err)
		}

		sess = types.Session{
			ID:         id,
			IdentityID: identityID,
			StartedAt:  timeFromMs(nowMs),
			Active:     true,
		}
		return nil
	})
	if err != nil {
		return types.Session{}, err
	}
	return sess, nil
}

func (s *SessionStore) End(ctx context.Context, sessionID int64, now time.Time) (bool, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	nowMs := msFromTime(now)

	var ended bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE sessions
SET ended_at_ms = ?, active = 0
WHERE id = ? AND active = 1;
`, nowMs, sessionID)
		if err != nil {
			return fmt.Errorf("End update: %w", err)
		}
		n, _ := res.RowsAffected()
		ended = n > 0
		return nil
	})
	return ended, err
}

// EndAllActive reads the pre-image inside the same transaction that closes
// the rows, so the returned sessions are exactly the ones mutated.
func (s *SessionStore) EndAllActive(ctx context.Context, now time.Time) ([]types.Session, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	nowMs := msFromTime(now)

	var preImage []types.Session
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
SELECT id, identity_id, started_at_ms, ended_at_ms, active
FROM sessions
WHERE active = 1
ORDER BY id;
`)
		if err != nil {
			return fmt.Errorf("EndAllActive select: %w", err)
		}
		preImage, err = scanSessions(rows)
		if err != nil {
			return fmt.Errorf("EndAllActive scan: %w", err)
		}

		if len(preImage) == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE sessions
SET ended_at_ms = ?, active = 0
WHERE active = 1;
`, nowMs); err != nil {
			return fmt.Errorf("EndAllActive update: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return preImage, nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID int64) (types.Session, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, identity_id, started_at_ms, ended_at_ms, active
FROM sessions
WHERE id = ?;
`, sessionID)

	sess, err := scanSessionRow(row)
	if err == sql.ErrNoRows {
		return types.Session{}, false, nil
	}
	if err != nil {
		return types.Session{}, false, fmt.Errorf("Get query: %w", err)
	}
	return sess, true, nil
}

func (s *SessionStore) ActiveForIdentity(ctx context.Context, identityID int64) (types.Session, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, identity_id, started_at_ms, ended_at_ms, active
FROM sessions
WHERE identity_id = ? AND active = 1;
`, identityID)

	sess, err := scanSessionRow(row)
	if err == sql.ErrNoRows {
		return types.Session{}, false, nil
	}
	if err != nil {
		return types.Session{}, false, fmt.Errorf("ActiveForIdentity query: %w", err)
	}
	return sess, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSessionRow(r rowScanner) (types.Session, error) {
	var (
		sess      types.Session
		startedMs int64
		endedMs   sql.NullInt64
		active    int
	)
	if err := r.Scan(&sess.ID, &sess.IdentityID, &startedMs, &endedMs, &active); err != nil {
		return types.Session{}, err
	}
	sess.StartedAt = timeFromMs(startedMs)
	sess.EndedAt = timePtrFromNullMs(endedMs)
	sess.Active = active == 1
	return sess, nil
}

func scanSessions(rows *sql.Rows) ([]types.Session, error) {
	defer rows.Close()

	var out []types.Session
	for rows.Next() {
		sess, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}
