package game

import (
	"math/big"
	"time"
)

// Kind identifies a mini-game.
type Kind string

const (
	KindFly   Kind = "fly"
	KindJump  Kind = "jump"
	KindShoot Kind = "shoot"
)

// Telemetry action names emitted by the clients.
const (
	EventFlap  = "flap"
	EventJump  = "jump"
	EventKill  = "kill"
	EventFrame = "frame"
)

// Rules holds the per-kind scoring formula and plausibility bounds.
// Scores are either time-derived (survival games) or count-derived
// (PointsPerKill games); the bounds cap what a human on real hardware
// can produce.
type Rules struct {
	TimeScored         bool
	ScoreRatePerSecond int64
	PointsPerKill      int64

	MaxInputsPerSecond float64
	MaxHitRatio        float64
	MaxClearsPerSecond float64

	// InputEvent is the telemetry action cross-checked against the
	// stats input counter.
	InputEvent string

	// Frame-rate band accepted around the nominal 60fps client loop.
	MinFPS float64
	MaxFPS float64

	// EventCountTolerance absorbs events lost to flushing at the
	// boundaries of a run.
	EventCountTolerance int64
}

var rules = map[Kind]Rules{
	KindFly: {
		TimeScored:          true,
		ScoreRatePerSecond:  10,
		MaxInputsPerSecond:  8,
		InputEvent:          EventFlap,
		MinFPS:              30,
		MaxFPS:              75,
		EventCountTolerance: 3,
	},
	KindJump: {
		TimeScored:          true,
		ScoreRatePerSecond:  5,
		MaxInputsPerSecond:  6,
		MaxClearsPerSecond:  3,
		InputEvent:          EventJump,
		MinFPS:              30,
		MaxFPS:              75,
		EventCountTolerance: 3,
	},
	KindShoot: {
		PointsPerKill:       100,
		MaxInputsPerSecond:  12,
		MaxHitRatio:         0.95,
		MaxClearsPerSecond:  4,
		InputEvent:          EventKill,
		MinFPS:              30,
		MaxFPS:              75,
		EventCountTolerance: 3,
	},
}

// RulesFor returns the rules for a kind.
func RulesFor(kind Kind) (Rules, bool) {
	r, ok := rules[kind]
	return r, ok
}

// ParseKind validates a client-supplied game kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := rules[k]
	return k, ok
}

// Stats are client-reported aggregate counters for a run. They are
// advisory input to the plausibility filters, never trusted.
type Stats struct {
	Inputs int64 `json:"inputs"`
	Shots  int64 `json:"shots"`
	Hits   int64 `json:"hits"`
	Kills  int64 `json:"kills"`
	Clears int64 `json:"clears"`
	Frames int64 `json:"frames"`
}

// TelemetryEvent is one timestamped client event.
type TelemetryEvent struct {
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"`
}

// CountEvents tallies telemetry events by action.
func CountEvents(telemetry []TelemetryEvent, action string) int64 {
	var n int64
	for _, e := range telemetry {
		if e.Action == action {
			n++
		}
	}
	return n
}

// Run is the server-side record of one play, created when a start
// action succeeds and consumed by the end action. StartedAt is
// server-recorded and is the sole source of elapsed time.
type Run struct {
	SessionID string    `json:"session_id"`
	GameID    int64     `json:"game_id"`
	Kind      Kind      `json:"kind"`
	Player    string    `json:"player"`
	StartedAt time.Time `json:"started_at"`
}

// Elapsed returns the server-observed duration of the run.
func (r *Run) Elapsed(now time.Time) time.Duration {
	return now.Sub(r.StartedAt)
}

// LedgerGame is the contract's view of a game. Read-only to this
// service and never cached past a single request.
type LedgerGame struct {
	ID         int64
	EndTime    time.Time
	HighScore  int64
	Leader     string
	Pot        *big.Int
	PotHistory *big.Int
}
