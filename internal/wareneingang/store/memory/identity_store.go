package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

// IdentityStore is an in-memory identity registry for tests and dev.
type IdentityStore struct {
	mu     sync.RWMutex
	byTag  map[string]types.Identity
	nextID int64
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{byTag: make(map[string]types.Identity), nextID: 1}
}

// Add registers an identity and returns it with an assigned id.
func (s *IdentityStore) Add(tag, name string) types.Identity {
	tag = strings.ToUpper(strings.TrimSpace(tag))

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := types.Identity{
		ID:        s.nextID,
		Tag:       tag,
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.byTag[tag] = rec
	return rec
}

// Deactivate hides an identity from FindByTag without removing the row.
func (s *IdentityStore) Deactivate(tag string) {
	tag = strings.ToUpper(strings.TrimSpace(tag))

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.byTag[tag]; ok {
		rec.Active = false
		s.byTag[tag] = rec
	}
}

func (s *IdentityStore) FindByTag(_ context.Context, tag string) (types.Identity, bool, error) {
	tag = strings.ToUpper(strings.TrimSpace(tag))

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byTag[tag]
	if !ok || !rec.Active {
		return types.Identity{}, false, nil
	}
	return rec, true, nil
}
