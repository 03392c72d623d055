package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/immanchand/demo-base-onchain-app-sub000/internal/application/dto"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/application/services"
	"github.com/immanchand/demo-base-onchain-app-sub000/internal/interfaces/http/middleware"
)

// ActionHandler handles the session action endpoint. All game-state
// mutations flow through it.
type ActionHandler struct {
	actionService *services.ActionService
}

// NewActionHandler creates a new action handler.
func NewActionHandler(actionService *services.ActionService) *ActionHandler {
	return &ActionHandler{actionService: actionService}
}

// Do executes one validated session action.
// POST /session-action
func (h *ActionHandler) Do(c *gin.Context) {
	var req dto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": err.Error(),
		})
		return
	}

	sessionID, _ := c.Cookie(SessionCookie)
	sigPayload, _ := c.Cookie(SignatureCookie)
	actx := &dto.ActionContext{
		SessionID:      sessionID,
		CSRFToken:      c.GetHeader(CSRFHeader),
		GameSigPayload: sigPayload,
	}
	if sessionID != "" {
		c.Set(string(middleware.ContextKeySessionID), sessionID)
	}

	resp, err := h.actionService.Do(c.Request.Context(), actx, &req)
	if err != nil {
		handleActionError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
