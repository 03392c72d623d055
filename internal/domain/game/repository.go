package game

import "context"

// RunStore holds in-flight runs keyed by session. One run per session:
// starting a new run supersedes an unfinished one.
type RunStore interface {
	// Put stores the run for its session, bounded by the store's TTL.
	Put(ctx context.Context, run *Run) error

	// Take returns and deletes the run for the session, or
	// pkg/errors.ErrNoActiveRun. The delete happens regardless of how
	// the caller's validation turns out, so a failed end action cannot
	// be replayed against the same server start time.
	Take(ctx context.Context, sessionID string) (*Run, error)
}
