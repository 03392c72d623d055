package services

import (
	"context"

	"github.com/immanchand/demo-base-onchain-app-sub000/internal/application/dto"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/ledger"
)

// QueryService serves the read-only ledger views. Reads go straight
// to the contract; nothing here mutates state, so no session or CSRF
// checks apply.
type QueryService struct {
	gateway ledger.Gateway
}

// NewQueryService creates the read-side service.
func NewQueryService(gateway ledger.Gateway) *QueryService {
	return &QueryService{gateway: gateway}
}

// LatestGame returns the most recently created ledger game.
func (s *QueryService) LatestGame(ctx context.Context) (*dto.GameResponse, error) {
	id, err := s.gateway.GetLatestGameID(ctx)
	if err != nil {
		return nil, err
	}
	return s.GameByID(ctx, id)
}

// GameByID returns one ledger game.
func (s *QueryService) GameByID(ctx context.Context, id int64) (*dto.GameResponse, error) {
	g, err := s.gateway.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.GameResponse{
		GameID:     g.ID,
		EndTime:    g.EndTime.Unix(),
		HighScore:  g.HighScore,
		Leader:     g.Leader,
		Pot:        g.Pot.String(),
		PotHistory: g.PotHistory.String(),
	}, nil
}

// Tickets returns the ticket balance of a wallet.
func (s *QueryService) Tickets(ctx context.Context, address string) (*dto.TicketsResponse, error) {
	n, err := s.gateway.GetTickets(ctx, address)
	if err != nil {
		return nil, err
	}
	return &dto.TicketsResponse{Address: address, Tickets: n}, nil
}
