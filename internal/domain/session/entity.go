package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Action identifies one of the gated session actions.
type Action string

const (
	ActionCreate   Action = "create"
	ActionStart    Action = "start"
	ActionEnd      Action = "end"
	ActionWithdraw Action = "withdraw"
	ActionMint     Action = "mint"
)

// ParseAction validates a client-supplied action name.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionCreate, ActionStart, ActionEnd, ActionWithdraw, ActionMint:
		return Action(s), true
	}
	return "", false
}

// PlayerSession is a cookie-identified interaction context for one
// browser/wallet pairing. It carries the active CSRF token and the
// wallet address bound by signature. Sessions expire by TTL and are
// superseded on the next token request, never explicitly deleted.
type PlayerSession struct {
	ID        string    `json:"id"`
	CSRFToken string    `json:"csrf_token"`
	Wallet    string    `json:"wallet,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewPlayerSession creates a session with a fresh opaque ID.
func NewPlayerSession(csrfToken string, ttl time.Duration) *PlayerSession {
	now := time.Now().UTC()
	return &PlayerSession{
		ID:        uuid.New().String(),
		CSRFToken: csrfToken,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsValid returns true if the session has not expired.
func (s *PlayerSession) IsValid() bool {
	return time.Now().UTC().Before(s.ExpiresAt)
}

// MatchesToken compares a presented CSRF token exact-match.
func (s *PlayerSession) MatchesToken(token string) bool {
	return token != "" && s.CSRFToken == token
}

// BindWallet records the wallet address proven by signature.
func (s *PlayerSession) BindWallet(address string) {
	s.Wallet = strings.ToLower(address)
}
