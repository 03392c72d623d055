package postgres

import (
	"context"

	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/audit"
	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

// AuditRepository persists action records to the audit trail.
type AuditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Migrate creates the audit table if needed.
func (r *AuditRepository) Migrate(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS action_audit (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			wallet TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			game_id BIGINT NOT NULL DEFAULT 0,
			score BIGINT NOT NULL DEFAULT 0,
			tx_hash TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_action_audit_session ON action_audit(session_id);
		CREATE INDEX IF NOT EXISTS idx_action_audit_wallet ON action_audit(wallet) WHERE wallet != '';
	`)
	if err != nil {
		return apperrors.Wrap(err, "failed to migrate audit table")
	}
	return nil
}

// Record inserts one audit entry.
func (r *AuditRepository) Record(ctx context.Context, rec *audit.ActionRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO action_audit (session_id, wallet, action, game_id, score, tx_hash, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.SessionID, rec.Wallet, rec.Action, rec.GameID, rec.Score, rec.TxHash, rec.Outcome, rec.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to record audit entry")
	}
	return nil
}
