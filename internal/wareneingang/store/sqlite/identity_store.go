package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

type IdentityStore struct {
	db *sql.DB
}

func NewIdentityStore(db *sql.DB) *IdentityStore {
	return &IdentityStore{db: db}
}

// FindByTag treats a deactivated identity the same as an unknown one: the
// login flow reports "identity not found" either way.
func (s *IdentityStore) FindByTag(ctx context.Context, tag string) (types.Identity, bool, error) {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if tag == "" {
		return types.Identity{}, false, nil
	}

	var (
		rec       types.Identity
		active    int
		createdMs int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, tag, name, active, created_at_ms
FROM identities
WHERE tag = ? AND active = 1;
`, tag).Scan(&rec.ID, &rec.Tag, &rec.Name, &active, &createdMs)

	if err == sql.ErrNoRows {
		return types.Identity{}, false, nil
	}
	if err != nil {
		return types.Identity{}, false, fmt.Errorf("FindByTag query: %w", err)
	}

	rec.Active = active == 1
	rec.CreatedAt = timeFromMs(createdMs)
	return rec, true, nil
}
