package services

import (
	"context"
	"time"

	"github.com/immanchand/demo-base-onchain-app-sub000/config"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/application/dto"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/audit"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/game"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/session"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/captcha"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/crypto"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/ledger"
	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
	"github.com/immanchand/demo-base-onchain-app-sub000/pkg/logger"
)

// ActionService sequences the validation pipeline for every session
// action and is the only path to the ledger gateway. Each action runs
// its gates in order; the first failure resolves the request inside
// the pipeline and the ledger is never reached.
type ActionService struct {
	cfg      *config.Config
	sessions session.Store
	limiter  session.Limiter
	runs     game.RunStore
	binder   *crypto.IdentityBinder
	captcha  captcha.Verifier
	gateway  ledger.Gateway
	engine   *PlausibilityEngine
	tokenGen *crypto.TokenGenerator
	audit    audit.Recorder
	log      logger.Logger
}

// NewActionService creates the orchestrator. audit may be nil when the
// trail is disabled.
func NewActionService(
	cfg *config.Config,
	sessions session.Store,
	limiter session.Limiter,
	runs game.RunStore,
	binder *crypto.IdentityBinder,
	verifier captcha.Verifier,
	gateway ledger.Gateway,
	engine *PlausibilityEngine,
	tokenGen *crypto.TokenGenerator,
	auditRec audit.Recorder,
	log logger.Logger,
) *ActionService {
	return &ActionService{
		cfg:      cfg,
		sessions: sessions,
		limiter:  limiter,
		runs:     runs,
		binder:   binder,
		captcha:  verifier,
		gateway:  gateway,
		engine:   engine,
		tokenGen: tokenGen,
		audit:    auditRec,
		log:      log,
	}
}

// IssueCSRF returns the session and its active anti-forgery token,
// creating a session when the cookie is absent or expired. rotate
// forces a fresh token for an existing session; rotation is always
// client-initiated.
func (s *ActionService) IssueCSRF(ctx context.Context, sessionID string, rotate bool) (*session.PlayerSession, error) {
	if sessionID != "" {
		ps, err := s.sessions.Get(ctx, sessionID)
		if err == nil {
			if !rotate {
				return ps, nil
			}
			token, err := s.tokenGen.GenerateCSRFToken(s.cfg.Security.CSRFTokenLength)
			if err != nil {
				return nil, apperrors.Wrap(err, "failed to rotate csrf token")
			}
			ps.CSRFToken = token
			if err := s.sessions.Save(ctx, ps); err != nil {
				return nil, err
			}
			return ps, nil
		}
		if !apperrors.Is(err, apperrors.ErrSessionExpired) {
			return nil, err
		}
	}

	token, err := s.tokenGen.GenerateCSRFToken(s.cfg.Security.CSRFTokenLength)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate csrf token")
	}
	ps := session.NewPlayerSession(token, s.cfg.Security.SessionTTL)
	if err := s.sessions.Save(ctx, ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// Do validates and executes one session action.
func (s *ActionService) Do(ctx context.Context, actx *dto.ActionContext, req *dto.ActionRequest) (*dto.ActionResponse, error) {
	action, ok := session.ParseAction(req.Action)
	if !ok {
		return nil, apperrors.ErrUnknownAction
	}

	ps, err := s.authorize(ctx, actx)
	if err != nil {
		return nil, err
	}

	switch action {
	case session.ActionCreate:
		return s.createGame(ctx, ps)
	case session.ActionStart:
		return s.startRun(ctx, ps, actx, req)
	case session.ActionEnd:
		return s.endRun(ctx, ps, req)
	case session.ActionWithdraw:
		return s.withdraw(ctx, ps, actx, req)
	case session.ActionMint:
		return s.mintTickets(ctx, ps, actx, req)
	}
	return nil, apperrors.ErrUnknownAction
}

// authorize resolves the session and checks the CSRF token. Every
// action starts here.
func (s *ActionService) authorize(ctx context.Context, actx *dto.ActionContext) (*session.PlayerSession, error) {
	if actx.SessionID == "" {
		return nil, apperrors.ErrSessionExpired
	}
	ps, err := s.sessions.Get(ctx, actx.SessionID)
	if err != nil {
		return nil, err
	}
	if actx.CSRFToken == "" {
		return nil, apperrors.ErrMissingCSRF
	}
	if !ps.MatchesToken(actx.CSRFToken) {
		return nil, apperrors.ErrInvalidCSRF
	}
	return ps, nil
}

func (s *ActionService) createGame(ctx context.Context, ps *session.PlayerSession) (*dto.ActionResponse, error) {
	if err := s.limiter.CheckAndRecord(ctx, ps.ID, session.ActionCreate, s.cfg.Cooldowns.CreateGame); err != nil {
		return nil, err
	}

	txHash, err := s.gateway.CreateGame(ctx)
	if err != nil {
		return nil, err
	}

	s.record(ctx, ps, session.ActionCreate, 0, 0, txHash, "ok")
	s.log.Info("game created",
		logger.Component("orchestrator"),
		logger.SessionID(ps.ID),
		logger.TxHash(txHash),
	)
	return &dto.ActionResponse{Status: "ok", TxHash: txHash}, nil
}

func (s *ActionService) startRun(ctx context.Context, ps *session.PlayerSession, actx *dto.ActionContext, req *dto.ActionRequest) (*dto.ActionResponse, error) {
	kind, ok := game.ParseKind(req.Game)
	if !ok {
		return nil, apperrors.ErrUnknownGame
	}

	// The start action allocates a ledger slot, so it is the one place
	// a human check runs.
	score, err := s.captcha.Verify(ctx, req.RecaptchaToken)
	if err != nil {
		return nil, err
	}

	wallet, err := s.binder.BindAndVerify(actx.GameSigPayload, req.Address)
	if err != nil {
		return nil, err
	}
	ps.BindWallet(wallet)
	if err := s.sessions.Save(ctx, ps); err != nil {
		return nil, err
	}

	txHash, err := s.gateway.StartGame(ctx, req.GameID, wallet)
	if err != nil {
		return nil, err
	}

	// Server-recorded start time; the sole source of elapsed time for
	// the end action.
	run := &game.Run{
		SessionID: ps.ID,
		GameID:    req.GameID,
		Kind:      kind,
		Player:    wallet,
		StartedAt: time.Now().UTC(),
	}
	if err := s.runs.Put(ctx, run); err != nil {
		return nil, err
	}

	s.record(ctx, ps, session.ActionStart, req.GameID, 0, txHash, "ok")
	s.log.Info("run started",
		logger.Component("orchestrator"),
		logger.SessionID(ps.ID),
		logger.Wallet(wallet),
		logger.GameID(req.GameID),
		logger.String("game", string(kind)),
		logger.Float64("captcha_score", score),
		logger.TxHash(txHash),
	)
	return &dto.ActionResponse{Status: "ok", TxHash: txHash}, nil
}

func (s *ActionService) endRun(ctx context.Context, ps *session.PlayerSession, req *dto.ActionRequest) (*dto.ActionResponse, error) {
	if err := s.limiter.CheckAndRecord(ctx, ps.ID, session.ActionEnd, s.cfg.Cooldowns.EndRun); err != nil {
		return nil, err
	}

	// Consume the run up front: a rejected end cannot be replayed
	// against the same server start time.
	run, err := s.runs.Take(ctx, ps.ID)
	if err != nil {
		return nil, err
	}
	elapsed := run.Elapsed(time.Now().UTC())

	current, err := s.gateway.GetGame(ctx, run.GameID)
	if err != nil {
		return nil, err
	}

	verdict, err := s.engine.Evaluate(run.Kind, req.Score, elapsed, current.HighScore, req.Stats, req.Telemetry)
	if err != nil {
		s.record(ctx, ps, session.ActionEnd, run.GameID, req.Score, "", "rejected")
		return nil, err
	}

	txHash, isHighScore, err := s.gateway.EndGame(ctx, run.GameID, run.Player, req.Score)
	if err != nil {
		return nil, err
	}

	highScore := current.HighScore
	if isHighScore {
		highScore = req.Score
	}

	s.record(ctx, ps, session.ActionEnd, run.GameID, req.Score, txHash, "ok")
	s.log.Info("run ended",
		logger.Component("orchestrator"),
		logger.SessionID(ps.ID),
		logger.Wallet(run.Player),
		logger.GameID(run.GameID),
		logger.Score(req.Score),
		logger.Duration("elapsed", elapsed),
		logger.Bool("high_score", isHighScore),
		logger.Bool("filters_run", verdict.NewHighScore),
		logger.TxHash(txHash),
	)

	return &dto.ActionResponse{
		Status:      "ok",
		TxHash:      txHash,
		IsHighScore: &isHighScore,
		HighScore:   highScore,
	}, nil
}

func (s *ActionService) withdraw(ctx context.Context, ps *session.PlayerSession, actx *dto.ActionContext, req *dto.ActionRequest) (*dto.ActionResponse, error) {
	wallet, err := s.binder.BindAndVerify(actx.GameSigPayload, req.Address)
	if err != nil {
		return nil, err
	}
	ps.BindWallet(wallet)
	if err := s.sessions.Save(ctx, ps); err != nil {
		return nil, err
	}

	txHash, err := s.gateway.WinnerWithdraw(ctx, req.GameID)
	if err != nil {
		return nil, err
	}

	s.record(ctx, ps, session.ActionWithdraw, req.GameID, 0, txHash, "ok")
	s.log.Info("winner withdraw",
		logger.Component("orchestrator"),
		logger.SessionID(ps.ID),
		logger.Wallet(wallet),
		logger.GameID(req.GameID),
		logger.TxHash(txHash),
	)
	return &dto.ActionResponse{Status: "ok", TxHash: txHash}, nil
}

func (s *ActionService) mintTickets(ctx context.Context, ps *session.PlayerSession, actx *dto.ActionContext, req *dto.ActionRequest) (*dto.ActionResponse, error) {
	if err := s.limiter.CheckAndRecord(ctx, ps.ID, session.ActionMint, s.cfg.Cooldowns.MintTickets); err != nil {
		return nil, err
	}

	wallet, err := s.binder.BindAndVerify(actx.GameSigPayload, req.Address)
	if err != nil {
		return nil, err
	}
	ps.BindWallet(wallet)
	if err := s.sessions.Save(ctx, ps); err != nil {
		return nil, err
	}

	txHash, err := s.gateway.MintTickets(ctx, wallet)
	if err != nil {
		return nil, err
	}

	s.record(ctx, ps, session.ActionMint, 0, 0, txHash, "ok")
	s.log.Info("tickets minted",
		logger.Component("orchestrator"),
		logger.SessionID(ps.ID),
		logger.Wallet(wallet),
		logger.TxHash(txHash),
	)
	return &dto.ActionResponse{Status: "ok", TxHash: txHash}, nil
}

// record writes a best-effort audit entry.
func (s *ActionService) record(ctx context.Context, ps *session.PlayerSession, action session.Action, gameID, score int64, txHash, outcome string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, &audit.ActionRecord{
		SessionID: ps.ID,
		Wallet:    ps.Wallet,
		Action:    string(action),
		GameID:    gameID,
		Score:     score,
		TxHash:    txHash,
		Outcome:   outcome,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("audit record failed",
			logger.Component("orchestrator"),
			logger.SessionID(ps.ID),
			logger.Error(err),
		)
	}
}
