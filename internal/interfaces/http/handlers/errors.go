package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

// handleActionError converts domain errors to HTTP responses.
func handleActionError(c *gin.Context, err error) {
	if te, ok := errors.AsThrottled(err); ok {
		seconds := int64(math.Ceil(te.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.FormatInt(seconds, 10))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":             "throttled",
			"error_description": te.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, errors.ErrSessionExpired):
		c.JSON(http.StatusForbidden, gin.H{
			"error":             "session_expired",
			"error_description": "session missing or expired, fetch a new csrf token",
		})
	case errors.Is(err, errors.ErrMissingCSRF):
		c.JSON(http.StatusForbidden, gin.H{
			"error":             "missing_csrf",
			"error_description": "csrf token required",
		})
	case errors.Is(err, errors.ErrInvalidCSRF):
		c.JSON(http.StatusForbidden, gin.H{
			"error":             "invalid_csrf",
			"error_description": "csrf token mismatch",
		})
	case errors.Is(err, errors.ErrOriginMismatch):
		c.JSON(http.StatusForbidden, gin.H{
			"error":             "origin_mismatch",
			"error_description": "request origin not allowed",
		})
	case errors.Is(err, errors.ErrMissingSignature),
		errors.Is(err, errors.ErrMalformedPayload),
		errors.Is(err, errors.ErrAddressMismatch):
		c.JSON(http.StatusForbidden, gin.H{
			"error":             "identity_rejected",
			"error_description": "wallet signature invalid, sign again",
		})
	case errors.Is(err, errors.ErrCaptchaFailed),
		errors.Is(err, errors.ErrCaptchaUnavailable):
		c.JSON(http.StatusForbidden, gin.H{
			"error":             "captcha_rejected",
			"error_description": "human verification failed",
		})
	case errors.Is(err, errors.ErrScoreRejected):
		// One opaque message for every plausibility failure; the
		// internal reason is logged server-side only.
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "score_rejected",
			"error_description": "score rejected",
		})
	case errors.Is(err, errors.ErrNoActiveRun):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "no_active_run",
			"error_description": "no active run for this session",
		})
	case errors.Is(err, errors.ErrUnknownAction):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unknown_action",
			"error_description": "unsupported action",
		})
	case errors.Is(err, errors.ErrUnknownGame):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unknown_game",
			"error_description": "unsupported game",
		})
	case errors.Is(err, errors.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "malformed request",
		})
	case errors.Is(err, errors.ErrLedgerTimeout):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "ledger_timeout",
			"error_description": "transaction not confirmed in time",
		})
	case errors.Is(err, errors.ErrLedgerSubmission):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "ledger_error",
			"error_description": "transaction failed",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "internal server error",
		})
	}
}
