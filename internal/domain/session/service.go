package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier delivers session events to connected clients.
type Notifier interface {
	Notify(userID, sessionID, eventType string) int
}

// Service enforces a single active session per user. A new Claim always
// wins; the displaced session learns about it on its next Validate or
// through the websocket hub.
type Service struct {
	store    Store
	notifier Notifier
	idleTTL  time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewService(store Store, notifier Notifier, idleTTL time.Duration, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		idleTTL:  idleTTL,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) Claim(ctx context.Context, userID string, meta Meta) (*ActiveSession, error) {
	now := s.now().UTC()
	next := &ActiveSession{
		UserID:     userID,
		SessionID:  uuid.NewString(),
		UserAgent:  truncate(meta.UserAgent, 512),
		IPAddress:  truncate(meta.IPAddress, 64),
		CreatedAt:  now,
		LastSeenAt: now,
	}

	previous, err := s.store.Put(ctx, next)
	if err != nil {
		return nil, err
	}

	if previous != nil && previous.SessionID != next.SessionID {
		n := s.notifier.Notify(userID, previous.SessionID, EventSessionRevoked)
		s.log.Info("session superseded",
			zap.String("user_id", userID),
			zap.String("previous_session", previous.SessionID),
			zap.Int("notified_connections", n),
		)
	}
	return next, nil
}

// Validate succeeds only for the session currently holding the user's slot
// and refreshes its last-seen time.
func (s *Service) Validate(ctx context.Context, userID, sessionID string) (*ActiveSession, error) {
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}

	current, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if current == nil || now.Sub(current.LastSeenAt) > s.idleTTL {
		return nil, ErrNoSession
	}
	if current.SessionID != sessionID {
		return nil, ErrSessionSuperseded
	}

	if err := s.store.Touch(ctx, userID, sessionID, now); err != nil {
		return nil, err
	}
	current.LastSeenAt = now
	return current, nil
}

func (s *Service) Release(ctx context.Context, userID, sessionID string) error {
	if sessionID == "" {
		return ErrSessionIDRequired
	}
	deleted, err := s.store.Delete(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNoSession
	}
	s.notifier.Notify(userID, sessionID, EventSessionReleased)
	return nil
}

// PurgeIdle removes sessions idle longer than the idle TTL.
func (s *Service) PurgeIdle(ctx context.Context) (int64, error) {
	return s.store.DeleteIdle(ctx, s.now().UTC().Add(-s.idleTTL))
}

func truncate(v string, n int) string {
	if len(v) <= n {
		return v
	}
	return v[:n]
}
