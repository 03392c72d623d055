package application

import (
	"github.com/immanchand/demo-base-onchain-app-sub000/config"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/application/services"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/audit"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/game"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/session"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/captcha"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/crypto"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/ledger"
	"github.com/immanchand/demo-base-onchain-app-sub000/pkg/logger"
)

// Services holds all application services.
type Services struct {
	Action *services.ActionService
	Query  *services.QueryService
}

// Dependencies holds shared dependencies for services.
type Dependencies struct {
	TokenGen *crypto.TokenGenerator
	Binder   *crypto.IdentityBinder
	Engine   *services.PlausibilityEngine
}

// Stores groups the persistence backends the services run against.
// Each field may be backed by redis or the in-process fallback.
type Stores struct {
	Sessions session.Store
	Limiter  session.Limiter
	Runs     game.RunStore
	Audit    audit.Recorder
}

// NewDependencies creates shared dependencies from config.
func NewDependencies(cfg *config.Config, log logger.Logger) *Dependencies {
	return &Dependencies{
		TokenGen: crypto.NewTokenGenerator(),
		Binder:   crypto.NewIdentityBinder(cfg.Security.SignedMessage),
		Engine:   services.NewPlausibilityEngine(&cfg.Games, log),
	}
}

// NewServices creates all application services.
func NewServices(
	cfg *config.Config,
	stores *Stores,
	deps *Dependencies,
	verifier captcha.Verifier,
	gateway ledger.Gateway,
	log logger.Logger,
) *Services {
	actionService := services.NewActionService(
		cfg,
		stores.Sessions,
		stores.Limiter,
		stores.Runs,
		deps.Binder,
		verifier,
		gateway,
		deps.Engine,
		deps.TokenGen,
		stores.Audit,
		log,
	)

	return &Services{
		Action: actionService,
		Query:  services.NewQueryService(gateway),
	}
}
