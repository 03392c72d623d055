package http

import (
	"github.com/gin-gonic/gin"

	"github.com/immanchand/demo-base-onchain-app-sub000/config"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/application"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/interfaces/http/handlers"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/interfaces/http/middleware"
	"github.com/immanchand/demo-base-onchain-app-sub000/pkg/logger"
)

// Router wraps the Gin engine with application dependencies.
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
}

// RouterDeps contains dependencies needed by the router.
type RouterDeps struct {
	Services       *application.Services
	Logger         logger.Logger
	DBHealther     handlers.HealthChecker
	RedisHealther  handlers.HealthChecker
	LedgerHealther handlers.HealthChecker
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg *config.Config, deps *RouterDeps) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewRequestLoggerMiddleware(deps.Logger).Handler())

	csrfHandler := handlers.NewCSRFHandler(deps.Services.Action, cfg)
	actionHandler := handlers.NewActionHandler(deps.Services.Action)
	gameHandler := handlers.NewGameHandler(deps.Services.Query)
	healthHandler := handlers.NewHealthHandler(deps.DBHealther, deps.RedisHealther, deps.LedgerHealther)

	// Health endpoints (no rate limiting, no origin check)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/live", healthHandler.Live)

	if cfg.Security.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst)
		engine.Use(rateLimiter.Middleware())
	}

	engine.Use(corsMiddleware(cfg.Security.AllowedOrigin))
	engine.Use(middleware.NewOriginMiddleware(cfg.Security.AllowedOrigin).Handler())

	engine.GET("/csrf", csrfHandler.Issue)
	engine.POST("/session-action", actionHandler.Do)

	engine.GET("/game/latest", gameHandler.Latest)
	engine.GET("/game/:id", gameHandler.ByID)
	engine.GET("/tickets/:address", gameHandler.Tickets)

	return &Router{
		engine: engine,
		cfg:    cfg,
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// corsMiddleware creates a CORS middleware for the game client origin.
func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if allowedOrigin == "*" || origin == allowedOrigin {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-CSRF-Token, X-App-Origin, X-Request-ID")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
