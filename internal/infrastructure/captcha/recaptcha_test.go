package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immanchand/demo-base-onchain-app-sub000/config"
	apperrors "github.com/immanchand/demo-base-onchain-app-sub000/pkg/errors"
)

func newTestVerifier(t *testing.T, handler http.HandlerFunc) *RecaptchaVerifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRecaptchaVerifier(&config.CaptchaConfig{
		VerifyURL:      srv.URL,
		Secret:         "secret",
		ScoreThreshold: 0.4,
		Timeout:        time.Second,
	})
}

func TestVerifyAccepted(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "secret", r.Form.Get("secret"))
		assert.Equal(t, "tok", r.Form.Get("response"))
		w.Write([]byte(`{"success":true,"score":0.9}`))
	})

	score, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 0.9, score)
}

func TestVerifyBelowThreshold(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"score":0.3}`))
	})

	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, apperrors.ErrCaptchaFailed)
}

func TestVerifyUnsuccessful(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"score":0.9,"error-codes":["invalid-input-response"]}`))
	})

	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, apperrors.ErrCaptchaFailed)
}

func TestVerifyEmptyToken(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty token")
	})

	_, err := v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrCaptchaFailed)
}

func TestVerifyTransportFailure(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, apperrors.ErrCaptchaUnavailable)

	// Unreachable endpoint.
	dead := NewRecaptchaVerifier(&config.CaptchaConfig{
		VerifyURL: "http://127.0.0.1:1",
		Timeout:   200 * time.Millisecond,
	})
	_, err = dead.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, apperrors.ErrCaptchaUnavailable)
}
