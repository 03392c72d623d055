package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/game"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/session"
	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	store := NewSessionStore()
	t.Cleanup(store.Close)
	ctx := context.Background()

	ps := session.NewPlayerSession("token", time.Hour)
	require.NoError(t, store.Save(ctx, ps))

	got, err := store.Get(ctx, ps.ID)
	require.NoError(t, err)
	assert.Equal(t, ps.CSRFToken, got.CSRFToken)

	// Mutating the returned copy must not leak into the store.
	got.CSRFToken = "tampered"
	again, err := store.Get(ctx, ps.ID)
	require.NoError(t, err)
	assert.Equal(t, "token", again.CSRFToken)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestSessionStoreExpiry(t *testing.T) {
	store := NewSessionStore()
	t.Cleanup(store.Close)
	ctx := context.Background()

	ps := session.NewPlayerSession("token", -time.Second)
	assert.ErrorIs(t, store.Save(ctx, ps), apperrors.ErrSessionExpired)

	live := session.NewPlayerSession("token", 10*time.Millisecond)
	require.NoError(t, store.Save(ctx, live))
	time.Sleep(20 * time.Millisecond)
	_, err := store.Get(ctx, live.ID)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestSessionStoreClose(t *testing.T) {
	store := NewSessionStore()

	store.Close()
	store.Close() // safe to repeat

	// Close only stops the expiry sweeper; the map keeps serving.
	ctx := context.Background()
	ps := session.NewPlayerSession("token", time.Hour)
	require.NoError(t, store.Save(ctx, ps))
	_, err := store.Get(ctx, ps.ID)
	require.NoError(t, err)
}

func TestCooldownLimiter(t *testing.T) {
	limiter := NewCooldownLimiter()
	ctx := context.Background()

	require.NoError(t, limiter.CheckAndRecord(ctx, "s1", session.ActionCreate, time.Hour))

	err := limiter.CheckAndRecord(ctx, "s1", session.ActionCreate, time.Hour)
	te, ok := apperrors.AsThrottled(err)
	require.True(t, ok)
	assert.Positive(t, te.RetryAfter)
	assert.LessOrEqual(t, te.RetryAfter, time.Hour)

	// Other actions and other sessions are independent windows.
	assert.NoError(t, limiter.CheckAndRecord(ctx, "s1", session.ActionEnd, time.Hour))
	assert.NoError(t, limiter.CheckAndRecord(ctx, "s2", session.ActionCreate, time.Hour))

	// Zero cooldown disables the window.
	assert.NoError(t, limiter.CheckAndRecord(ctx, "s1", session.ActionStart, 0))
	assert.NoError(t, limiter.CheckAndRecord(ctx, "s1", session.ActionStart, 0))
}

func TestCooldownLimiterRejectionKeepsWindow(t *testing.T) {
	limiter := NewCooldownLimiter()
	ctx := context.Background()

	require.NoError(t, limiter.CheckAndRecord(ctx, "s1", session.ActionEnd, 50*time.Millisecond))
	require.Error(t, limiter.CheckAndRecord(ctx, "s1", session.ActionEnd, 50*time.Millisecond))

	// The rejected attempt must not have pushed the window out.
	time.Sleep(60 * time.Millisecond)
	assert.NoError(t, limiter.CheckAndRecord(ctx, "s1", session.ActionEnd, 50*time.Millisecond))
}

func TestCooldownLimiterConcurrentDuplicates(t *testing.T) {
	limiter := NewCooldownLimiter()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.CheckAndRecord(ctx, "race", session.ActionCreate, time.Hour) == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, allowed)
}

func TestRunStoreTakeConsumes(t *testing.T) {
	store := NewRunStore(time.Hour)
	ctx := context.Background()

	run := &game.Run{SessionID: "s1", GameID: 7, Kind: game.KindFly, StartedAt: time.Now()}
	require.NoError(t, store.Put(ctx, run))

	got, err := store.Take(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.GameID)

	_, err = store.Take(ctx, "s1")
	assert.ErrorIs(t, err, apperrors.ErrNoActiveRun)
}

func TestRunStoreTTL(t *testing.T) {
	store := NewRunStore(10 * time.Millisecond)
	ctx := context.Background()

	run := &game.Run{SessionID: "s1", GameID: 7, Kind: game.KindFly, StartedAt: time.Now()}
	require.NoError(t, store.Put(ctx, run))
	time.Sleep(20 * time.Millisecond)

	_, err := store.Take(ctx, "s1")
	assert.ErrorIs(t, err, apperrors.ErrNoActiveRun)
}
