package handlers

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/immanchand/demo-base-onchain-app-sub000/internal/application/services"
)

// GameHandler serves the read-only ledger views.
type GameHandler struct {
	queryService *services.QueryService
}

// NewGameHandler creates a new game handler.
func NewGameHandler(queryService *services.QueryService) *GameHandler {
	return &GameHandler{queryService: queryService}
}

// Latest returns the most recently created game.
// GET /game/latest
func (h *GameHandler) Latest(c *gin.Context) {
	resp, err := h.queryService.LatestGame(c.Request.Context())
	if err != nil {
		handleActionError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ByID returns one game.
// GET /game/:id
func (h *GameHandler) ByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "game id must be a positive integer",
		})
		return
	}

	resp, err := h.queryService.GameByID(c.Request.Context(), id)
	if err != nil {
		handleActionError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Tickets returns a wallet's ticket balance.
// GET /tickets/:address
func (h *GameHandler) Tickets(c *gin.Context) {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "malformed wallet address",
		})
		return
	}

	resp, err := h.queryService.Tickets(c.Request.Context(), address)
	if err != nil {
		handleActionError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
