package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immanchand/demo-base-onchain-app-sub000/config"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/game"
	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
	"github.com/immanchand/demo-base-onchain-app-sub000/pkg/logger"
)

func newTestEngine(t *testing.T) *PlausibilityEngine {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error"}, nil)
	require.NoError(t, err)
	return NewPlausibilityEngine(&config.GamesConfig{
		TimingJitter:            3 * time.Second,
		TelemetryScoreThreshold: 300,
		RunTTL:                  30 * time.Minute,
	}, log)
}

func flapEvents(n int) []game.TelemetryEvent {
	events := make([]game.TelemetryEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, game.TelemetryEvent{Action: game.EventFlap, Timestamp: int64(i * 100)})
	}
	return events
}

func frameEvents(n int) []game.TelemetryEvent {
	events := make([]game.TelemetryEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, game.TelemetryEvent{Action: game.EventFrame, Timestamp: int64(i * 16)})
	}
	return events
}

func TestEvaluateCheapPath(t *testing.T) {
	engine := newTestEngine(t)

	// At or below the current high score nothing is checked, even
	// with absurd inputs.
	verdict, err := engine.Evaluate(game.KindFly, 50, time.Millisecond, 100, &game.Stats{Inputs: 1 << 30}, nil)
	require.NoError(t, err)
	assert.True(t, verdict.Accepted)
	assert.False(t, verdict.NewHighScore)

	verdict, err = engine.Evaluate(game.KindFly, 100, time.Millisecond, 100, nil, nil)
	require.NoError(t, err)
	assert.True(t, verdict.Accepted)
	assert.False(t, verdict.NewHighScore)
}

func TestEvaluateNegativeScore(t *testing.T) {
	engine := newTestEngine(t)

	// A negative claim sits below any high score, but it must never
	// ride the cheap path: downstream it becomes an unsigned contract
	// argument, where -1 would wrap to 2^256-1.
	verdict, err := engine.Evaluate(game.KindFly, -1, 10*time.Second, 100, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)
	assert.False(t, verdict.Accepted)

	_, err = engine.Evaluate(game.KindFly, -1, 10*time.Second, 0, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)

	// Even an unknown kind does not leak a different error first.
	_, err = engine.Evaluate(game.Kind("pinball"), -1, 10*time.Second, 100, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)
}

func TestEvaluateTimeBound(t *testing.T) {
	engine := newTestEngine(t)

	// 10 seconds of fly at 10 points/second.
	verdict, err := engine.Evaluate(game.KindFly, 100, 10*time.Second, 0, nil, nil)
	require.NoError(t, err)
	assert.True(t, verdict.Accepted)
	assert.True(t, verdict.NewHighScore)

	// 3s jitter allowance at 10/s means 30 points of slack.
	_, err = engine.Evaluate(game.KindFly, 130, 10*time.Second, 0, nil, nil)
	assert.NoError(t, err)

	_, err = engine.Evaluate(game.KindFly, 131, 10*time.Second, 0, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)

	// Claiming far more than the elapsed time can produce.
	_, err = engine.Evaluate(game.KindFly, 500, 10*time.Second, 0, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)

	// Undershooting beyond tolerance is just as implausible.
	_, err = engine.Evaluate(game.KindFly, 40, 10*time.Second, 0, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)
}

func TestEvaluateZeroElapsed(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Evaluate(game.KindFly, 10, 0, 0, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)
}

func TestEvaluateAggregates(t *testing.T) {
	engine := newTestEngine(t)

	// jump: 5/s, 20 seconds -> expected 100.
	stats := &game.Stats{Inputs: 40, Clears: 20}
	verdict, err := engine.Evaluate(game.KindJump, 100, 20*time.Second, 0, stats, nil)
	require.NoError(t, err)
	assert.True(t, verdict.NewHighScore)

	// Input rate above the human bound.
	_, err = engine.Evaluate(game.KindJump, 100, 20*time.Second, 0, &game.Stats{Inputs: 200}, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)

	// Clear rate above the bound.
	_, err = engine.Evaluate(game.KindJump, 100, 20*time.Second, 0, &game.Stats{Inputs: 40, Clears: 100}, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)
}

func TestEvaluateShootScoring(t *testing.T) {
	engine := newTestEngine(t)
	elapsed := 30 * time.Second

	stats := &game.Stats{Inputs: 60, Shots: 20, Hits: 10, Kills: 2}
	verdict, err := engine.Evaluate(game.KindShoot, 200, elapsed, 0, stats, nil)
	require.NoError(t, err)
	assert.True(t, verdict.NewHighScore)

	// Score cannot exceed what the kill count pays out.
	_, err = engine.Evaluate(game.KindShoot, 250, elapsed, 0, stats, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)

	// Count-scored games are unverifiable without counters.
	_, err = engine.Evaluate(game.KindShoot, 200, elapsed, 0, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)

	// Aimbot-grade accuracy.
	_, err = engine.Evaluate(game.KindShoot, 200, elapsed, 0,
		&game.Stats{Inputs: 60, Shots: 100, Hits: 99, Kills: 2}, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)

	_, err = engine.Evaluate(game.KindShoot, 200, elapsed, 0,
		&game.Stats{Inputs: 60, Shots: 10, Hits: 12, Kills: 2}, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)
}

func TestEvaluateTelemetryCrossCheck(t *testing.T) {
	engine := newTestEngine(t)
	elapsed := 40 * time.Second // fly at 10/s -> 400, above the 300 threshold

	stats := &game.Stats{Inputs: 48}
	telemetry := append(flapEvents(48), frameEvents(2400)...) // 60fps

	verdict, err := engine.Evaluate(game.KindFly, 400, elapsed, 0, stats, telemetry)
	require.NoError(t, err)
	assert.True(t, verdict.NewHighScore)

	// A record claim without any telemetry is rejected.
	_, err = engine.Evaluate(game.KindFly, 400, elapsed, 0, stats, nil)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)

	// Stats say 48 inputs, telemetry shows 10.
	_, err = engine.Evaluate(game.KindFly, 400, elapsed, 0, stats,
		append(flapEvents(10), frameEvents(2400)...))
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)

	// Frame count implying a 20fps client.
	_, err = engine.Evaluate(game.KindFly, 400, elapsed, 0, stats,
		append(flapEvents(48), frameEvents(800)...))
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)

	// Below the threshold telemetry is not required.
	stats = &game.Stats{Inputs: 24}
	_, err = engine.Evaluate(game.KindFly, 200, 20*time.Second, 0, stats, nil)
	assert.NoError(t, err)
}

func TestEvaluateUnifiedRejection(t *testing.T) {
	engine := newTestEngine(t)

	// Every filter failure must surface the identical error so the
	// thresholds cannot be probed from outside.
	_, timingErr := engine.Evaluate(game.KindFly, 500, 10*time.Second, 0, nil, nil)
	_, statsErr := engine.Evaluate(game.KindJump, 100, 20*time.Second, 0, &game.Stats{Inputs: 200}, nil)
	_, telemetryErr := engine.Evaluate(game.KindFly, 400, 40*time.Second, 0, &game.Stats{Inputs: 48}, nil)

	require.Error(t, timingErr)
	assert.Equal(t, timingErr.Error(), statsErr.Error())
	assert.Equal(t, timingErr.Error(), telemetryErr.Error())
}

func TestEvaluateUnknownKind(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Evaluate(game.Kind("pinball"), 10, time.Second, 0, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnknownGame)
}
