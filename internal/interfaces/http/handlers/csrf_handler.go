package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/immanchand/demo-base-onchain-app-sub000/config"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/application/dto"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/application/services"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/domain/session"
)

const (
	// SessionCookie carries the opaque player session ID.
	SessionCookie = "arcade_session"
	// SignatureCookie carries the wallet-signed identity payload set
	// by the game client after wallet connect.
	SignatureCookie = "game_sig"
	// CSRFHeader carries the anti-forgery token on action requests.
	CSRFHeader = "X-CSRF-Token"
)

// CSRFHandler issues and rotates session anti-forgery tokens.
type CSRFHandler struct {
	actionService *services.ActionService
	cfg           *config.Config
}

// NewCSRFHandler creates a new CSRF handler.
func NewCSRFHandler(actionService *services.ActionService, cfg *config.Config) *CSRFHandler {
	return &CSRFHandler{actionService: actionService, cfg: cfg}
}

// Issue returns the session's CSRF token, creating the session when
// the cookie is absent or expired. ?rotate=1 forces a fresh token.
// GET /csrf
func (h *CSRFHandler) Issue(c *gin.Context) {
	sessionID, _ := c.Cookie(SessionCookie)
	rotate := c.Query("rotate") == "1"

	ps, err := h.actionService.IssueCSRF(c.Request.Context(), sessionID, rotate)
	if err != nil {
		handleActionError(c, err)
		return
	}

	h.setSessionCookie(c, ps)
	c.JSON(http.StatusOK, dto.CSRFResponse{Token: ps.CSRFToken})
}

func (h *CSRFHandler) setSessionCookie(c *gin.Context, ps *session.PlayerSession) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		SessionCookie,
		ps.ID,
		int(h.cfg.Security.SessionTTL.Seconds()),
		"/",
		h.cfg.Security.CookieDomain,
		h.cfg.Security.SecureCookies,
		true, // HttpOnly
	)
}
