package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

func TestEndGameRejectsNegativeScore(t *testing.T) {
	// The guard runs before any RPC work, so a zero-value client is
	// enough to exercise it.
	c := &Client{}

	_, _, err := c.EndGame(context.Background(), 7, "0x0000000000000000000000000000000000000001", -1)
	assert.ErrorIs(t, err, apperrors.ErrScoreRejected)
}
