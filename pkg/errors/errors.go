package errors

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors - these map to specific HTTP responses
var (
	// Authorization errors (403)
	ErrMissingCSRF    = errors.New("missing csrf token")
	ErrInvalidCSRF    = errors.New("invalid csrf token")
	ErrOriginMismatch = errors.New("origin not allowed")
	ErrSessionExpired = errors.New("session expired")

	// Identity errors (403) - the client must re-sign
	ErrMissingSignature = errors.New("missing wallet signature")
	ErrMalformedPayload = errors.New("malformed signature payload")
	ErrAddressMismatch  = errors.New("signer does not match claimed address")

	// Verification errors (403)
	ErrCaptchaFailed      = errors.New("captcha verification failed")
	ErrCaptchaUnavailable = errors.New("captcha service unavailable")

	// Plausibility errors (400) - terminal for the run.
	// A single opaque sentinel on purpose: revealing which filter
	// tripped would leak the anti-cheat boundary.
	ErrScoreRejected = errors.New("score rejected")
	ErrNoActiveRun   = errors.New("no active run for session")

	// Ledger errors (500)
	ErrLedgerSubmission = errors.New("ledger submission failed")
	ErrLedgerTimeout    = errors.New("ledger receipt wait timed out")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnknownAction  = errors.New("unknown action")
	ErrUnknownGame    = errors.New("unknown game kind")
	ErrInternal       = errors.New("internal error")
)

// ThrottledError reports a cooldown violation with the remaining wait.
type ThrottledError struct {
	Action     string
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("action %q throttled, retry after %s", e.Action, e.RetryAfter.Round(time.Second))
}

// NewThrottled creates a throttle rejection for an action.
func NewThrottled(action string, retryAfter time.Duration) *ThrottledError {
	return &ThrottledError{Action: action, RetryAfter: retryAfter}
}

// AsThrottled extracts a ThrottledError from an error chain.
func AsThrottled(err error) (*ThrottledError, bool) {
	var te *ThrottledError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// Wrap wraps an error with a message while preserving the chain.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
