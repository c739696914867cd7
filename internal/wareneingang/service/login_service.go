package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/store"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

var (
	ErrInvalidTag = errors.New("tag is required")
)

// LoginService runs the login flow: decoded tag → identity lookup →
// session start. An unknown tag is a response, not an error, and does not
// touch sessions.
type LoginService struct {
	identities store.IdentityStore
	sessions   *SessionService
	logger     *log.Logger
	now        func() time.Time
}

func NewLoginService(identities store.IdentityStore, sessions *SessionService, logger *log.Logger, now func() time.Time) *LoginService {
	if now == nil {
		now = time.Now
	}
	return &LoginService{identities: identities, sessions: sessions, logger: logger, now: now}
}

func (s *LoginService) LoginByTag(ctx context.Context, tag string) (types.LoginResponse, error) {
	now := s.now().UTC()

	tag = strings.ToUpper(strings.TrimSpace(tag))
	if tag == "" {
		return types.LoginResponse{}, ErrInvalidTag
	}

	identity, found, err := s.identities.FindByTag(ctx, tag)
	if err != nil {
		return types.LoginResponse{}, err
	}
	if !found {
		return types.LoginResponse{
			OK:         false,
			Known:      false,
			Message:    "identity not found",
			ServerTime: now.Format(time.RFC3339Nano),
		}, nil
	}

	// Snapshot the session this login will close, so the response can tell
	// the shell whose work the new session supersedes.
	prev, hadPrev, err := s.sessions.Active(ctx, identity.ID)
	if err != nil {
		return types.LoginResponse{}, err
	}

	sess, err := s.sessions.Start(ctx, identity.ID)
	if err != nil {
		return types.LoginResponse{}, err
	}

	resp := types.LoginResponse{
		OK:         true,
		Known:      true,
		Identity:   &identity,
		Session:    &sess,
		ServerTime: now.Format(time.RFC3339Nano),
	}
	if hadPrev {
		resp.ReplacedSession = &prev
		resp.Message = "previous session closed"
	}
	return resp, nil
}
