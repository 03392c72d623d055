package redis

import (
	"context"
	"time"

	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/session"
	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

const cooldownPrefix = "cooldown:"

// CooldownLimiter enforces per-(session, action) fixed windows with a
// single SET NX: the key lives for exactly the cooldown, so the write
// and the check are one atomic operation and racing duplicates cannot
// both pass. A rejected attempt never touches the key, so it does not
// reset the window.
type CooldownLimiter struct {
	client *Client
}

func NewCooldownLimiter(client *Client) *CooldownLimiter {
	return &CooldownLimiter{client: client}
}

func (l *CooldownLimiter) CheckAndRecord(ctx context.Context, sessionID string, action session.Action, cooldown time.Duration) error {
	if cooldown <= 0 {
		return nil
	}

	key := cooldownPrefix + sessionID + ":" + string(action)

	ok, err := l.client.SetNX(ctx, key, 1, cooldown)
	if err != nil {
		return apperrors.Wrap(err, "failed to record cooldown")
	}
	if ok {
		return nil
	}

	remaining, err := l.client.PTTL(ctx, key)
	if err != nil || remaining <= 0 {
		// Window closed between the two calls; be conservative and
		// report a one second wait rather than letting the action
		// double through.
		remaining = time.Second
	}
	return apperrors.NewThrottled(string(action), remaining)
}
