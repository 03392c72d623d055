// Package memory provides in-process implementations of the session,
// cooldown and run stores for single-instance deployments and tests.
// They mirror the Redis implementations' semantics, including atomic
// check-and-record and consume-on-read.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/game"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/session"
	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

// SessionStore keeps player sessions in a mutex-guarded map.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.PlayerSession
	done     chan struct{}
	closed   sync.Once
}

func NewSessionStore() *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*session.PlayerSession),
		done:     make(chan struct{}),
	}
	go s.cleanup()
	return s
}

// Close stops the expiry sweeper. Safe to call more than once.
func (s *SessionStore) Close() {
	s.closed.Do(func() { close(s.done) })
}

func (s *SessionStore) Get(_ context.Context, id string) (*session.PlayerSession, error) {
	s.mu.RLock()
	ps, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || !ps.IsValid() {
		return nil, apperrors.ErrSessionExpired
	}

	cp := *ps
	return &cp, nil
}

func (s *SessionStore) Save(_ context.Context, ps *session.PlayerSession) error {
	if !ps.IsValid() {
		return apperrors.ErrSessionExpired
	}
	cp := *ps
	s.mu.Lock()
	s.sessions[ps.ID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			for id, ps := range s.sessions {
				if !ps.IsValid() {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

// CooldownLimiter enforces per-(session, action) fixed windows. The
// mutex spans the check and the record, which gives the same atomicity
// the Redis implementation gets from SET NX.
type CooldownLimiter struct {
	mu    sync.Mutex
	stamp map[string]time.Time
}

func NewCooldownLimiter() *CooldownLimiter {
	return &CooldownLimiter{stamp: make(map[string]time.Time)}
}

func (l *CooldownLimiter) CheckAndRecord(_ context.Context, sessionID string, action session.Action, cooldown time.Duration) error {
	if cooldown <= 0 {
		return nil
	}

	key := sessionID + ":" + string(action)
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.stamp[key]; ok {
		if remaining := cooldown - now.Sub(last); remaining > 0 {
			// Rejected attempts do not reset the window.
			return apperrors.NewThrottled(string(action), remaining)
		}
	}

	l.stamp[key] = now
	return nil
}

// RunStore keeps in-flight runs keyed by session.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*game.Run
	ttl  time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	return &RunStore{runs: make(map[string]*game.Run), ttl: ttl}
}

func (s *RunStore) Put(_ context.Context, run *game.Run) error {
	cp := *run
	s.mu.Lock()
	s.runs[run.SessionID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *RunStore) Take(_ context.Context, sessionID string) (*game.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[sessionID]
	if !ok {
		return nil, apperrors.ErrNoActiveRun
	}
	delete(s.runs, sessionID)

	if s.ttl > 0 && time.Since(run.StartedAt) > s.ttl {
		return nil, apperrors.ErrNoActiveRun
	}
	return run, nil
}
