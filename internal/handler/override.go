package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lucidplay/crashgate/internal/model"
	"github.com/lucidplay/crashgate/internal/pkg/apperrors"
	"github.com/lucidplay/crashgate/internal/pkg/logger"
	"github.com/lucidplay/crashgate/internal/service"
)

// OverrideHandler is the operator entry point: pause/resume the tick
// scheduler or force an immediate crash.
type OverrideHandler struct {
	eng *service.Engine
}

func NewOverrideHandler(eng *service.Engine) *OverrideHandler {
	return &OverrideHandler{eng: eng}
}

func (h *OverrideHandler) Override(c *gin.Context) {
	var req model.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidation(err.Error()))
		return
	}

	logger.Warn("operator override", "action", req.Action, "client_ip", c.ClientIP())

	switch req.Action {
	case model.ActionPause:
		h.eng.Pause()
	case model.ActionResume:
		h.eng.Resume()
	case model.ActionForceCrash:
		if err := h.eng.ForceCrash(nil); err != nil {
			c.JSON(http.StatusConflict, model.OverrideResult{
				Status: model.StatusRejected,
				Action: req.Action,
				Reason: err.Error(),
			})
			return
		}
	default:
		_ = c.Error(apperrors.New(apperrors.ErrUnsupportedAction,
			"unsupported action: "+string(req.Action), nil))
		return
	}

	c.JSON(http.StatusAccepted, model.OverrideResult{Status: "ok", Action: req.Action})
}
