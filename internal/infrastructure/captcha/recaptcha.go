// Package captcha verifies that a human initiated a start action by
// delegating to the reCAPTCHA scoring service. Any transport failure
// or sub-threshold score is a hard rejection; there is no fallback
// bypass because the start action allocates a ledger slot.
package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/immanchand/demo-base-onchain-app-sub000/config"
	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

// Verifier scores a client response token against the external service.
type Verifier interface {
	Verify(ctx context.Context, responseToken string) (float64, error)
}

// RecaptchaVerifier calls the siteverify endpoint.
type RecaptchaVerifier struct {
	cfg    *config.CaptchaConfig
	client *http.Client
}

// NewRecaptchaVerifier creates a verifier with a bounded HTTP client.
func NewRecaptchaVerifier(cfg *config.CaptchaConfig) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the token and applies the configured threshold.
// Returns the score on success so callers can log it.
func (v *RecaptchaVerifier) Verify(ctx context.Context, responseToken string) (float64, error) {
	if responseToken == "" {
		return 0, apperrors.ErrCaptchaFailed
	}

	form := url.Values{}
	form.Set("secret", v.cfg.Secret)
	form.Set("response", responseToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCaptchaUnavailable, err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCaptchaUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, apperrors.Wrap(apperrors.ErrCaptchaUnavailable, resp.Status)
	}

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCaptchaUnavailable, err.Error())
	}

	if !result.Success || result.Score < v.cfg.ScoreThreshold {
		return result.Score, apperrors.ErrCaptchaFailed
	}

	return result.Score, nil
}
