package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/events"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/store"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

var (
	ErrInvalidSessionID = errors.New("session_id is required")
)

// SessionService maintains the one-active-session-per-identity invariant
// and publishes session lifecycle events.
type SessionService struct {
	sessions store.SessionStore
	notifier events.Publisher
	logger   *log.Logger
	now      func() time.Time
}

func NewSessionService(sessions store.SessionStore, notifier events.Publisher, logger *log.Logger, now func() time.Time) *SessionService {
	if notifier == nil {
		notifier = events.Nop{}
	}
	if now == nil {
		now = time.Now
	}
	return &SessionService{sessions: sessions, notifier: notifier, logger: logger, now: now}
}

// Start opens a new session for the identity, closing any prior active one
// atomically in the store.
func (s *SessionService) Start(ctx context.Context, identityID int64) (types.Session, error) {
	sess, err := s.sessions.Start(ctx, identityID, s.now().UTC())
	if err != nil {
		return types.Session{}, err
	}

	s.notifier.Publish(events.Event{
		Type:       events.TypeSessionStarted,
		At:         sess.StartedAt,
		SessionID:  sess.ID,
		IdentityID: sess.IdentityID,
	})
	return sess, nil
}

// Active returns the identity's current active session, if any.
func (s *SessionService) Active(ctx context.Context, identityID int64) (types.Session, bool, error) {
	return s.sessions.ActiveForIdentity(ctx, identityID)
}

// End closes the session if still active. false means already ended or not
// found; that is a response, not an error.
func (s *SessionService) End(ctx context.Context, sessionID int64) (bool, error) {
	if sessionID <= 0 {
		return false, ErrInvalidSessionID
	}

	now := s.now().UTC()
	ended, err := s.sessions.End(ctx, sessionID, now)
	if err != nil {
		return false, err
	}

	if ended {
		s.notifier.Publish(events.Event{
			Type:      events.TypeSessionEnded,
			At:        now,
			SessionID: sessionID,
		})
	}
	return ended, nil
}

// EndAll closes every active session (single-operator-mode reset) and
// returns the pre-image of the affected sessions. One session-ended event
// is published per closed session so downstream consumers learn which
// identities were logged out.
func (s *SessionService) EndAll(ctx context.Context) ([]types.Session, error) {
	now := s.now().UTC()
	preImage, err := s.sessions.EndAllActive(ctx, now)
	if err != nil {
		return nil, err
	}

	for _, sess := range preImage {
		s.notifier.Publish(events.Event{
			Type:       events.TypeSessionEnded,
			At:         now,
			SessionID:  sess.ID,
			IdentityID: sess.IdentityID,
		})
	}
	return preImage, nil
}
