package session

import (
	"context"
	"time"
)

// Store keeps at most one ActiveSession per user.
type Store interface {
	// Put makes s the user's session and returns the one it replaced, or nil.
	Put(ctx context.Context, s *ActiveSession) (*ActiveSession, error)
	// Get returns the user's session, or nil when there is none.
	Get(ctx context.Context, userID string) (*ActiveSession, error)
	// Touch refreshes LastSeenAt if sessionID still holds the slot.
	Touch(ctx context.Context, userID, sessionID string, at time.Time) error
	// Delete removes the slot only if sessionID holds it.
	Delete(ctx context.Context, userID, sessionID string) (bool, error)
	// DeleteIdle removes sessions not seen since before.
	DeleteIdle(ctx context.Context, before time.Time) (int64, error)
}
