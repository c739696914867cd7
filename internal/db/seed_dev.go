package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev inserts a couple of starter identities so a fresh dev station can
// log in immediately. Idempotent: re-running updates names but never a tag.
func SeedDev(ctx context.Context, conn *sql.DB) error {
	now := time.Now().UTC().UnixMilli()

	seed := []struct {
		tag  string
		name string
	}{
		{"53004114", "Dev Operator"},
		{"AABBCC01", "Dev Operator 2"},
	}

	for _, s := range seed {
		if _, err := conn.ExecContext(ctx, `
INSERT INTO identities(tag, name, active, created_at_ms)
VALUES (?, ?, 1, ?)
ON CONFLICT(tag) DO UPDATE SET
  name   = excluded.name,
  active = 1;
`, s.tag, s.name, now); err != nil {
			return fmt.Errorf("seed identity %s: %w", s.tag, err)
		}
	}

	return nil
}
