package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKey is a type for context keys.
type ContextKey string

// OriginMiddleware enforces that state-changing requests carry the
// app origin header. Browsers attach Origin on cross-site POSTs, and
// the game client additionally sends X-App-Origin; either must match
// the configured origin.
type OriginMiddleware struct {
	allowedOrigin string
}

// NewOriginMiddleware creates a new origin middleware.
func NewOriginMiddleware(allowedOrigin string) *OriginMiddleware {
	return &OriginMiddleware{allowedOrigin: allowedOrigin}
}

// Handler returns the Gin middleware handler.
func (m *OriginMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		origin := c.GetHeader("X-App-Origin")
		if origin == "" {
			origin = c.GetHeader("Origin")
		}
		if m.allowedOrigin != "*" && !strings.EqualFold(origin, m.allowedOrigin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":             "origin_mismatch",
				"error_description": "request origin not allowed",
			})
			return
		}

		c.Next()
	}
}

// GetClientIP extracts the client IP from the request.
func GetClientIP(c *gin.Context) string {
	return c.ClientIP()
}
