package audit

import (
	"context"
	"time"
)

// ActionRecord is one entry in the audit trail: an action that passed
// validation and reached the ledger, with its outcome. The trail backs
// operator review of disputed scores.
type ActionRecord struct {
	SessionID string
	Wallet    string
	Action    string
	GameID    int64
	Score     int64
	TxHash    string
	Outcome   string
	CreatedAt time.Time
}

// Recorder persists action records. Recording is best-effort: callers
// log failures but never fail the request over them.
type Recorder interface {
	Record(ctx context.Context, rec *ActionRecord) error
}
