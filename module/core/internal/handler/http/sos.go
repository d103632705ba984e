package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/service"
)

type sosService interface {
	Trigger(ctx context.Context) (*domain.SOSAlert, error)
}

type SOSHandler struct {
	sos sosService
}

func NewSOSHandler(sos sosService) *SOSHandler {
	return &SOSHandler{sos: sos}
}

func (h *SOSHandler) Register(r *gin.RouterGroup) {
	r.POST("/sos", h.Trigger)
}

func (h *SOSHandler) Trigger(c *gin.Context) {
	alert, err := h.sos.Trigger(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, alert)
	case errors.Is(err, service.ErrSOSSleepMode):
		c.JSON(http.StatusConflict, gin.H{"error": service.MsgSOSSleepMode})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to dispatch sos"})
	}
}
