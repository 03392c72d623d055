package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/session"
	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

const sessionPrefix = "session:"

// SessionStore keeps player sessions in Redis with TTL-based expiry.
type SessionStore struct {
	client *Client
}

func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.PlayerSession, error) {
	jsonData, err := s.client.Get(ctx, sessionPrefix+id)
	if err != nil {
		if err == goredis.Nil {
			return nil, apperrors.ErrSessionExpired
		}
		return nil, apperrors.Wrap(err, "failed to get session")
	}

	var ps session.PlayerSession
	if err := json.Unmarshal([]byte(jsonData), &ps); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal session")
	}

	// Double-check expiry in case Redis TTL drifted
	if !ps.IsValid() {
		_ = s.client.Delete(ctx, sessionPrefix+id)
		return nil, apperrors.ErrSessionExpired
	}

	return &ps, nil
}

func (s *SessionStore) Save(ctx context.Context, ps *session.PlayerSession) error {
	jsonData, err := json.Marshal(ps)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session")
	}

	ttl := time.Until(ps.ExpiresAt)
	if ttl <= 0 {
		return apperrors.ErrSessionExpired
	}

	if err := s.client.Set(ctx, sessionPrefix+ps.ID, jsonData, ttl); err != nil {
		return apperrors.Wrap(err, "failed to save session")
	}
	return nil
}
