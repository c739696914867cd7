package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/dedup"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/events"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/store"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

var (
	ErrInvalidPayload   = errors.New("payload is required")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotActive = errors.New("session is not active")
)

// ScanService is the ingestion coordinator for the scan flow: validate the
// session, run the duplicate guard, publish the outcome, report it.
type ScanService struct {
	sessions store.SessionStore
	guard    *dedup.Guard
	notifier events.Publisher
	logger   *log.Logger
	now      func() time.Time
}

func NewScanService(sessions store.SessionStore, guard *dedup.Guard, notifier events.Publisher, logger *log.Logger, now func() time.Time) *ScanService {
	if notifier == nil {
		notifier = events.Nop{}
	}
	if now == nil {
		now = time.Now
	}
	return &ScanService{sessions: sessions, guard: guard, notifier: notifier, logger: logger, now: now}
}

// Save runs one scan-save attempt. Guard rejections come back as a
// structured response; only a missing payload, a bad session id, or a
// session lookup failure is a Go error (programmer-error conditions fail
// fast per the API contract).
func (s *ScanService) Save(ctx context.Context, req types.ScanRequest) (types.ScanResponse, error) {
	if req.SessionID <= 0 {
		return types.ScanResponse{}, ErrInvalidSessionID
	}
	payload := strings.TrimSpace(req.Payload)
	if payload == "" {
		return types.ScanResponse{}, ErrInvalidPayload
	}

	sess, found, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return types.ScanResponse{}, err
	}
	if !found {
		return types.ScanResponse{}, ErrSessionNotFound
	}
	if !sess.Active {
		return types.ScanResponse{}, ErrSessionNotActive
	}

	res := s.guard.TryAdmit(ctx, sess.ID, payload)
	if res.Status == dedup.StatusError {
		s.logger.Printf("scan save failed (session=%d): %s", sess.ID, res.Message)
	}

	s.notifier.Publish(events.Event{
		Type:       events.TypeScanResult,
		At:         res.At,
		Status:     string(res.Status),
		Message:    res.Message,
		SessionID:  sess.ID,
		IdentityID: sess.IdentityID,
		Record:     res.Record,
	})

	return types.ScanResponse{
		Success:    res.Saved(),
		Status:     string(res.Status),
		Message:    res.Message,
		Record:     res.Record,
		ServerTime: s.now().UTC().Format(time.RFC3339Nano),
	}, nil
}
