package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

// SessionStore is an in-memory session store for tests and dev. A single
// mutex across all operations gives the same per-identity linearizability
// the sqlite store gets from its writer transaction.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]types.Session
	nextID   int64
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]types.Session), nextID: 1}
}

func (s *SessionStore) Start(_ context.Context, identityID int64, now time.Time) (types.Session, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	now = now.UTC().Truncate(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.IdentityID == identityID && sess.Active {
			ended := now
			sess.EndedAt = &ended
			sess.Active = false
			s.sessions[id] = sess
		}
	}

	sess := types.Session{
		ID:         s.nextID,
		IdentityID: identityID,
		StartedAt:  now,
		Active:     true,
	}
	s.nextID++
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *SessionStore) End(_ context.Context, sessionID int64, now time.Time) (bool, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	now = now.UTC().Truncate(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || !sess.Active {
		return false, nil
	}
	ended := now
	sess.EndedAt = &ended
	sess.Active = false
	s.sessions[sessionID] = sess
	return true, nil
}

func (s *SessionStore) EndAllActive(_ context.Context, now time.Time) ([]types.Session, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	now = now.UTC().Truncate(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()

	var preImage []types.Session
	for id, sess := range s.sessions {
		if !sess.Active {
			continue
		}
		preImage = append(preImage, sess)

		ended := now
		sess.EndedAt = &ended
		sess.Active = false
		s.sessions[id] = sess
	}

	sort.Slice(preImage, func(i, j int) bool { return preImage[i].ID < preImage[j].ID })
	return preImage, nil
}

func (s *SessionStore) Get(_ context.Context, sessionID int64) (types.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	return sess, ok, nil
}

func (s *SessionStore) ActiveForIdentity(_ context.Context, identityID int64) (types.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.IdentityID == identityID && sess.Active {
			return sess, true, nil
		}
	}
	return types.Session{}, false, nil
}

// ActiveCount reports how many sessions are active for the identity.
// Test-only helper for invariant checks.
func (s *SessionStore) ActiveCount(identityID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sess := range s.sessions {
		if sess.IdentityID == identityID && sess.Active {
			n++
		}
	}
	return n
}
