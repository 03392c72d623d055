package services

import (
	"time"

	"github.com/immanchand/demo-base-onchain-app-sub000/config"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/game"
	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
	"github.com/immanchand/demo-base-onchain-app-sub000/pkg/logger"
)

// Verdict is the outcome of a plausibility evaluation.
type Verdict struct {
	Accepted     bool
	NewHighScore bool
}

// PlausibilityEngine sanity-checks a client-reported score against
// server-observed timing and optional client telemetry. The server
// cannot re-simulate the game, so three independent statistical
// filters gate a new-high-score claim; all must pass. Every failure
// surfaces the same opaque rejection so the anti-cheat thresholds are
// not observable from outside; the tripped filter goes to the log.
type PlausibilityEngine struct {
	cfg *config.GamesConfig
	log logger.Logger
}

// NewPlausibilityEngine creates an engine with the configured tuning.
func NewPlausibilityEngine(cfg *config.GamesConfig, log logger.Logger) *PlausibilityEngine {
	return &PlausibilityEngine{cfg: cfg, log: log}
}

// Evaluate decides whether claimedScore is plausible for the run.
// elapsed is the server-recorded run duration; currentHighScore is the
// ledger's value read within this request. Negative scores are always
// rejected; non-negative scores at or below the current high score take
// the cheap path: accepted without running any filter, regardless of
// what stats or telemetry contain.
func (e *PlausibilityEngine) Evaluate(
	kind game.Kind,
	claimedScore int64,
	elapsed time.Duration,
	currentHighScore int64,
	stats *game.Stats,
	telemetry []game.TelemetryEvent,
) (Verdict, error) {
	// A negative claim can never ride the cheap path: it is headed for
	// an unsigned contract argument, where it would wrap to a huge value.
	if claimedScore < 0 {
		return Verdict{}, e.reject(kind, claimedScore, "negative score")
	}

	if claimedScore <= currentHighScore {
		return Verdict{Accepted: true, NewHighScore: false}, nil
	}

	rules, ok := game.RulesFor(kind)
	if !ok {
		return Verdict{}, apperrors.ErrUnknownGame
	}

	if elapsed <= 0 {
		return Verdict{}, e.reject(kind, claimedScore, "non-positive elapsed")
	}

	if reason := e.checkTimeBound(rules, claimedScore, elapsed); reason != "" {
		return Verdict{}, e.reject(kind, claimedScore, reason)
	}
	if reason := e.checkAggregates(rules, claimedScore, elapsed, stats); reason != "" {
		return Verdict{}, e.reject(kind, claimedScore, reason)
	}
	if claimedScore >= e.cfg.TelemetryScoreThreshold {
		if reason := e.checkTelemetry(rules, elapsed, stats, telemetry); reason != "" {
			return Verdict{}, e.reject(kind, claimedScore, reason)
		}
	}

	return Verdict{Accepted: true, NewHighScore: true}, nil
}

// checkTimeBound compares the claimed score against what the
// server-observed elapsed time can produce for time-scored games.
func (e *PlausibilityEngine) checkTimeBound(rules game.Rules, claimedScore int64, elapsed time.Duration) string {
	if !rules.TimeScored {
		return ""
	}

	expected := elapsed.Milliseconds() * rules.ScoreRatePerSecond / 1000
	tolerance := e.cfg.TimingJitter.Milliseconds() * rules.ScoreRatePerSecond / 1000

	diff := claimedScore - expected
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		return "claimed score outside timing bound"
	}
	return ""
}

// checkAggregates bounds the client-reported counters at plausible
// per-second rates and caps count-derived scores by the scoring
// formula.
func (e *PlausibilityEngine) checkAggregates(rules game.Rules, claimedScore int64, elapsed time.Duration, stats *game.Stats) string {
	// Count-scored games cannot be corroborated without counters.
	if rules.PointsPerKill > 0 && stats == nil {
		return "count-scored run missing stats"
	}
	if stats == nil {
		return ""
	}

	seconds := elapsed.Seconds()

	if rules.MaxInputsPerSecond > 0 && float64(stats.Inputs)/seconds > rules.MaxInputsPerSecond {
		return "input rate above bound"
	}
	if rules.MaxHitRatio > 0 && stats.Shots > 0 {
		if stats.Hits > stats.Shots {
			return "more hits than shots"
		}
		if float64(stats.Hits)/float64(stats.Shots) > rules.MaxHitRatio {
			return "hit ratio above bound"
		}
	}
	if rules.MaxClearsPerSecond > 0 && float64(stats.Clears)/seconds > rules.MaxClearsPerSecond {
		return "clear rate above bound"
	}
	if rules.PointsPerKill > 0 && claimedScore > stats.Kills*rules.PointsPerKill {
		return "claimed score exceeds kill count"
	}
	return ""
}

// checkTelemetry cross-checks the event sequence against the
// aggregate counters and the client frame rate. Only runs for scores
// above the configured threshold to bound verification cost.
func (e *PlausibilityEngine) checkTelemetry(rules game.Rules, elapsed time.Duration, stats *game.Stats, telemetry []game.TelemetryEvent) string {
	if len(telemetry) == 0 {
		return "record claim missing telemetry"
	}

	if stats != nil && rules.InputEvent != "" {
		observed := game.CountEvents(telemetry, rules.InputEvent)

		var reported int64
		switch rules.InputEvent {
		case game.EventKill:
			reported = stats.Kills
		default:
			reported = stats.Inputs
		}

		diff := observed - reported
		if diff < 0 {
			diff = -diff
		}
		if diff > rules.EventCountTolerance {
			return "telemetry disagrees with stats"
		}
	}

	if frames := game.CountEvents(telemetry, game.EventFrame); frames > 0 {
		fps := float64(frames) / elapsed.Seconds()
		if fps < rules.MinFPS || fps > rules.MaxFPS {
			return "frame rate outside allowed band"
		}
	}
	return ""
}

// reject logs the internal reason and returns the unified rejection.
func (e *PlausibilityEngine) reject(kind game.Kind, claimedScore int64, reason string) error {
	e.log.Warn("score rejected",
		logger.Component("plausibility"),
		logger.String("game", string(kind)),
		logger.Score(claimedScore),
		logger.String("reason", reason),
	)
	return apperrors.ErrScoreRejected
}
