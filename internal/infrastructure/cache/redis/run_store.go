package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/game"
	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

const runPrefix = "run:"

// RunStore keeps in-flight game runs in Redis. Runs expire after the
// configured TTL if the end action never arrives.
type RunStore struct {
	client *Client
	ttl    time.Duration
}

func NewRunStore(client *Client, ttl time.Duration) *RunStore {
	return &RunStore{client: client, ttl: ttl}
}

func (s *RunStore) Put(ctx context.Context, run *game.Run) error {
	jsonData, err := json.Marshal(run)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal run")
	}
	if err := s.client.Set(ctx, runPrefix+run.SessionID, jsonData, s.ttl); err != nil {
		return apperrors.Wrap(err, "failed to store run")
	}
	return nil
}

// Take consumes the run with GETDEL so two racing end actions cannot
// both obtain it.
func (s *RunStore) Take(ctx context.Context, sessionID string) (*game.Run, error) {
	jsonData, err := s.client.GetDel(ctx, runPrefix+sessionID)
	if err != nil {
		if err == goredis.Nil {
			return nil, apperrors.ErrNoActiveRun
		}
		return nil, apperrors.Wrap(err, "failed to take run")
	}

	var run game.Run
	if err := json.Unmarshal([]byte(jsonData), &run); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal run")
	}
	return &run, nil
}
