package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/immanchand/demo-base-onchain-app-sub000/config"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/application"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/cache/memory"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/cache/redis"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/captcha"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/ledger"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/persistence/postgres"
	apphttp "github.com/immanchand/demo-base-onchain-app-sub000/internal/interfaces/http"
	"github.com/immanchand/demo-base-onchain-app-sub000/pkg/logger"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, logWriter, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()
	logger.SetDefault(log)

	log.Info("Starting arcade gate service...",
		logger.Component("main"),
	)

	// Ledger connection is mandatory; everything funnels into it.
	gateway, err := ledger.NewClient(&cfg.Ledger)
	if err != nil {
		return fmt.Errorf("failed to connect to ledger: %w", err)
	}
	defer gateway.Close()
	log.Info("Connected to ledger RPC",
		logger.Component("infrastructure"),
		logger.String("rpc_url", cfg.Ledger.RPCURL),
		logger.String("contract", cfg.Ledger.ContractAddress),
		logger.Int64("chain_id", cfg.Ledger.ChainID),
	)

	// Session, cooldown and run stores: redis when enabled, otherwise
	// in-process fallbacks good for a single instance.
	stores := &application.Stores{}
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()
		stores.Sessions = redis.NewSessionStore(redisClient)
		stores.Limiter = redis.NewCooldownLimiter(redisClient)
		stores.Runs = redis.NewRunStore(redisClient, cfg.Games.RunTTL)
		log.Info("Connected to Redis",
			logger.Component("infrastructure"),
			logger.String("host", cfg.Redis.Host),
			logger.Int("port", cfg.Redis.Port),
		)
	} else {
		memSessions := memory.NewSessionStore()
		defer memSessions.Close()
		stores.Sessions = memSessions
		stores.Limiter = memory.NewCooldownLimiter()
		stores.Runs = memory.NewRunStore(cfg.Games.RunTTL)
		log.Info("Using in-process stores",
			logger.Component("infrastructure"),
		)
	}

	// Optional postgres audit trail.
	var db *postgres.DB
	if cfg.Database.Enabled {
		db, err = postgres.NewDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		auditRepo := postgres.NewAuditRepository(db)
		if err := auditRepo.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate audit schema: %w", err)
		}
		stores.Audit = auditRepo
		log.Info("Connected to PostgreSQL",
			logger.Component("infrastructure"),
			logger.String("host", cfg.Database.Host),
			logger.Int("port", cfg.Database.Port),
		)
	}

	// Initialize application
	verifier := captcha.NewRecaptchaVerifier(&cfg.Captcha)
	deps := application.NewDependencies(cfg, log)
	svcs := application.NewServices(cfg, stores, deps, verifier, gateway, log)

	// Start log cleanup job if enabled
	if logWriter != nil {
		logWriter.StartCleanupJob(ctx)
		log.Info("Log cleanup job started",
			logger.Component("main"),
			logger.Int("retention_days", cfg.Logging.RetentionDays),
		)
	}

	// Create and start server
	server := newServer(cfg, svcs, db, redisClient, gateway, log)
	return startServer(server, log)
}

func initLogger(cfg *config.Config) (logger.Logger, *logger.SQLiteWriter, error) {
	logCfg := logger.Config{
		Level:           cfg.Logging.Level,
		Environment:     cfg.Logging.Environment,
		EnableConsole:   true,
		EnableStore:     cfg.Logging.StoreEnabled,
		StorePath:       cfg.Logging.StorePath,
		AsyncBufferSize: cfg.Logging.AsyncBufferSize,
		RetentionDays:   cfg.Logging.RetentionDays,
		FlushInterval:   100 * time.Millisecond,
		BatchSize:       100,
	}

	var writer *logger.SQLiteWriter
	var err error

	if logCfg.EnableStore {
		writer, err = logger.NewSQLiteWriter(logCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create SQLite log writer: %w", err)
		}
	}

	// Same rule as the health checkers below: the interface parameter
	// must stay nil when the store is disabled, or Sync would close a
	// nil writer on shutdown.
	var logSink logger.LogWriter
	if writer != nil {
		logSink = writer
	}

	log, err := logger.New(logCfg, logSink)
	if err != nil {
		if writer != nil {
			writer.Close()
		}
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, writer, nil
}

func newServer(
	cfg *config.Config,
	svcs *application.Services,
	db *postgres.DB,
	redisClient *redis.Client,
	gateway *ledger.Client,
	log logger.Logger,
) *http.Server {
	routerDeps := &apphttp.RouterDeps{
		Services:       svcs,
		Logger:         log,
		LedgerHealther: gateway,
	}
	// Interface-typed fields must stay nil when the backend is
	// disabled; a typed nil pointer would probe anyway.
	if db != nil {
		routerDeps.DBHealther = db
	}
	if redisClient != nil {
		routerDeps.RedisHealther = redisClient
	}

	router := apphttp.NewRouter(cfg, routerDeps)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func startServer(server *http.Server, log logger.Logger) error {
	errChan := make(chan error, 1)
	go func() {
		log.Info("Server listening",
			logger.Component("server"),
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Shutting down server...",
			logger.Component("server"),
			logger.String("signal", sig.String()),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited", logger.Component("server"))
	return nil
}
