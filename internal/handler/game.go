package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lucidplay/crashgate/internal/model"
	"github.com/lucidplay/crashgate/internal/service"
)

type GameHandler struct {
	cmd *service.CommandProcessor
	eng *service.Engine
}

func NewGameHandler(cmd *service.CommandProcessor, eng *service.Engine) *GameHandler {
	return &GameHandler{cmd: cmd, eng: eng}
}

// PlaceBet handles POST /v1/bets: 202 on acceptance, 409 with the typed
// rejection otherwise.
func (h *GameHandler) PlaceBet(c *gin.Context) {
	var req model.BetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.BetResult{
			Status: model.StatusRejected,
			Reason: err.Error(),
		})
		return
	}

	res := h.cmd.PlaceBet(c.Request.Context(), req)
	if res.Status != model.StatusAccepted {
		c.JSON(http.StatusConflict, res)
		return
	}
	c.JSON(http.StatusAccepted, res)
}

// Cashout handles POST /v1/cashouts.
func (h *GameHandler) Cashout(c *gin.Context) {
	var req model.CashoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.CashoutResult{
			Status: model.StatusRejected,
			Reason: err.Error(),
		})
		return
	}

	res := h.cmd.Cashout(c.Request.Context(), req)
	if res.Status != model.StatusCredited {
		c.JSON(http.StatusConflict, res)
		return
	}
	c.JSON(http.StatusAccepted, res)
}

// State handles GET /v1/state with the live round snapshot.
func (h *GameHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.eng.CurrentRound())
}

// History handles GET /v1/history, newest first.
func (h *GameHandler) History(c *gin.Context) {
	c.JSON(http.StatusOK, h.eng.History())
}
