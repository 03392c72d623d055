package dto

import (
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/game"
)

// ActionRequest is the JSON body of POST /session-action.
type ActionRequest struct {
	Action         string                `json:"action" binding:"required"`
	GameID         int64                 `json:"gameId"`
	Game           string                `json:"game"`
	Address        string                `json:"address"`
	Score          int64                 `json:"score"`
	RecaptchaToken string                `json:"recaptchaToken"`
	Stats          *game.Stats           `json:"stats"`
	Telemetry      []game.TelemetryEvent `json:"telemetry"`
}

// ActionContext carries the request credentials the handler extracts
// from cookies and headers.
type ActionContext struct {
	SessionID      string
	CSRFToken      string
	GameSigPayload string
}

// ActionResponse is the uniform result of a session action.
type ActionResponse struct {
	Status      string `json:"status"`
	TxHash      string `json:"txHash,omitempty"`
	IsHighScore *bool  `json:"isHighScore,omitempty"`
	HighScore   int64  `json:"highScore,omitempty"`
	Message     string `json:"message,omitempty"`
}

// CSRFResponse is the body of GET /csrf.
type CSRFResponse struct {
	Token string `json:"token"`
}

// GameResponse is the read view of a ledger game.
type GameResponse struct {
	GameID     int64  `json:"gameId"`
	EndTime    int64  `json:"endTime"`
	HighScore  int64  `json:"highScore"`
	Leader     string `json:"leader"`
	Pot        string `json:"pot"`
	PotHistory string `json:"potHistory"`
}

// TicketsResponse is the read view of a wallet's ticket balance.
type TicketsResponse struct {
	Address string `json:"address"`
	Tickets int64  `json:"tickets"`
}
