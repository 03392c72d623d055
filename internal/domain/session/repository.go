package session

import (
	"context"
	"time"
)

// Store handles session persistence. Implementations must be safe for
// concurrent use; the redis implementation relies on key-level
// atomicity, the memory implementation on a mutex.
type Store interface {
	// Get returns the session or pkg/errors.ErrSessionExpired when
	// absent or past its TTL.
	Get(ctx context.Context, id string) (*PlayerSession, error)

	// Save upserts the session with its remaining TTL.
	Save(ctx context.Context, s *PlayerSession) error
}

// Limiter enforces per-(session, action) fixed-window cooldowns.
// CheckAndRecord must be atomic with respect to racing duplicates of
// the same action from the same session: exactly one of two
// simultaneous calls may succeed.
type Limiter interface {
	// CheckAndRecord records the invocation and returns nil, or
	// returns *pkg/errors.ThrottledError with the remaining wait.
	// A rejected attempt does not reset the window.
	CheckAndRecord(ctx context.Context, sessionID string, action Action, cooldown time.Duration) error
}
