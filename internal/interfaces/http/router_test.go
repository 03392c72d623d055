package http

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immanchand/demo-base-onchain-app-sub000/config"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/application"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/game"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/infrastructure/cache/memory"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/interfaces/http/handlers"
	"github.com/immanchand/demo-base-onchain-app-sub000/pkg/logger"
)

const testOrigin = "https://arcade.example"

type stubGateway struct{}

func (stubGateway) CreateGame(ctx context.Context) (string, error) { return "0xcreate", nil }
func (stubGateway) StartGame(ctx context.Context, gameID int64, player string) (string, error) {
	return "0xstart", nil
}
func (stubGateway) EndGame(ctx context.Context, gameID int64, player string, score int64) (string, bool, error) {
	return "0xend", false, nil
}
func (stubGateway) WinnerWithdraw(ctx context.Context, gameID int64) (string, error) {
	return "0xwithdraw", nil
}
func (stubGateway) MintTickets(ctx context.Context, recipient string) (string, error) {
	return "0xmint", nil
}
func (stubGateway) GetGame(ctx context.Context, gameID int64) (*game.LedgerGame, error) {
	return &game.LedgerGame{
		ID: gameID, EndTime: time.Now().Add(time.Hour), HighScore: 42,
		Leader: "0xleader", Pot: big.NewInt(1000), PotHistory: big.NewInt(2000),
	}, nil
}
func (stubGateway) GetLatestGameID(ctx context.Context) (int64, error)           { return 7, nil }
func (stubGateway) GetTickets(ctx context.Context, player string) (int64, error) { return 3, nil }

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, token string) (float64, error) { return 0.9, nil }

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error"}, nil)
	require.NoError(t, err)

	cfg := &config.Config{
		Security: config.SecurityConfig{
			AllowedOrigin:   testOrigin,
			CSRFTokenLength: 32,
			SessionTTL:      24 * time.Hour,
			SignedMessage:   "msg",
		},
		Cooldowns: config.CooldownConfig{CreateGame: 25 * time.Minute},
		Games: config.GamesConfig{
			TimingJitter:            3 * time.Second,
			TelemetryScoreThreshold: 300,
			RunTTL:                  30 * time.Minute,
		},
	}

	sessions := memory.NewSessionStore()
	t.Cleanup(sessions.Close)
	stores := &application.Stores{
		Sessions: sessions,
		Limiter:  memory.NewCooldownLimiter(),
		Runs:     memory.NewRunStore(cfg.Games.RunTTL),
	}
	deps := application.NewDependencies(cfg, log)
	svcs := application.NewServices(cfg, stores, deps, stubVerifier{}, stubGateway{}, log)

	return NewRouter(cfg, &RouterDeps{Services: svcs, Logger: log})
}

func issueCSRF(t *testing.T, router *Router) (cookie *http.Cookie, token string) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/csrf", nil)
	router.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	for _, c := range w.Result().Cookies() {
		if c.Name == handlers.SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	return cookie, body.Token
}

func postAction(router *Router, body string, cookie *http.Cookie, token string, withOrigin bool) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/session-action", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if withOrigin {
		req.Header.Set("X-App-Origin", testOrigin)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if token != "" {
		req.Header.Set(handlers.CSRFHeader, token)
	}
	router.Engine().ServeHTTP(w, req)
	return w
}

func TestCSRFIssueAndRotate(t *testing.T) {
	router := newTestRouter(t)
	cookie, token := issueCSRF(t, router)
	assert.True(t, cookie.HttpOnly)

	// Same session, same token.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/csrf", nil)
	req.AddCookie(cookie)
	router.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), token)

	// Rotation replaces it.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/csrf?rotate=1", nil)
	req.AddCookie(cookie)
	router.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), token)
}

func TestActionRequiresOrigin(t *testing.T) {
	router := newTestRouter(t)
	cookie, token := issueCSRF(t, router)

	w := postAction(router, `{"action":"create"}`, cookie, token, false)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "origin_mismatch")
}

func TestActionRequiresCSRF(t *testing.T) {
	router := newTestRouter(t)
	cookie, _ := issueCSRF(t, router)

	w := postAction(router, `{"action":"create"}`, cookie, "", true)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "missing_csrf")

	w = postAction(router, `{"action":"create"}`, cookie, "bogus", true)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_csrf")

	w = postAction(router, `{"action":"create"}`, nil, "bogus", true)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "session_expired")
}

func TestActionCreateAndThrottle(t *testing.T) {
	router := newTestRouter(t)
	cookie, token := issueCSRF(t, router)

	w := postAction(router, `{"action":"create"}`, cookie, token, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "0xcreate")

	w = postAction(router, `{"action":"create"}`, cookie, token, true)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestActionMalformedBody(t *testing.T) {
	router := newTestRouter(t)
	cookie, token := issueCSRF(t, router)

	w := postAction(router, `{`, cookie, token, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postAction(router, `{"score":1}`, cookie, token, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReadEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/game/latest", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"gameId":7`)
	assert.Contains(t, w.Body.String(), `"highScore":42`)

	w = httptest.NewRecorder()
	router.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/game/3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"gameId":3`)

	w = httptest.NewRecorder()
	router.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/game/zero", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/0x000000000000000000000000000000000000dEaD", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tickets":3`)

	w = httptest.NewRecorder()
	router.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/nonsense", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "disabled")

	w = httptest.NewRecorder()
	router.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/session-action", nil)
	req.Header.Set("Origin", testOrigin)
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
}
