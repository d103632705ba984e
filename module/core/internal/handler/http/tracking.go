package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/internal/positioning"
	"github.com/nandanugg/safetrip/module/core/service"
)

type trackingService interface {
	StartTracking(ctx context.Context) error
	StopTracking()
	Status(ctx context.Context) service.TrackingStatus
	CurrentPosition(ctx context.Context) (domain.GPSLocation, error)
	History() []domain.GPSLocation
	ClearHistory(ctx context.Context)
	ActiveAlerts() []string
	DismissAlert(zoneID string) bool
}

type zoneCatalog interface {
	Zones() []domain.DangerZone
	Zone(id string) (domain.DangerZone, bool)
}

type sleepModeService interface {
	Enabled(ctx context.Context) bool
	Set(ctx context.Context, enabled bool)
	Toggle(ctx context.Context) bool
}

type sleepModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type sleepModeResponse struct {
	Enabled bool `json:"enabled"`
}

type TrackingHandler struct {
	tracker trackingService
	zones   zoneCatalog
	sleep   sleepModeService
}

func NewTrackingHandler(tracker trackingService, zones zoneCatalog, sleep sleepModeService) *TrackingHandler {
	return &TrackingHandler{tracker: tracker, zones: zones, sleep: sleep}
}

func (h *TrackingHandler) Register(r *gin.RouterGroup) {
	r.GET("/zones", h.GetZones)
	r.GET("/tracking", h.GetStatus)
	r.POST("/tracking/start", h.Start)
	r.POST("/tracking/stop", h.Stop)
	r.GET("/tracking/history", h.GetHistory)
	r.DELETE("/tracking/history", h.ClearHistory)
	r.GET("/tracking/position", h.GetPosition)
	r.GET("/alerts", h.GetAlerts)
	r.POST("/alerts/:zone_id/dismiss", h.DismissAlert)
	r.GET("/sleep-mode", h.GetSleepMode)
	r.PUT("/sleep-mode", h.SetSleepMode)
	r.POST("/sleep-mode/toggle", h.ToggleSleepMode)
}

func (h *TrackingHandler) GetZones(c *gin.Context) {
	c.JSON(http.StatusOK, h.zones.Zones())
}

func (h *TrackingHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Status(c.Request.Context()))
}

func (h *TrackingHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()
	err := h.tracker.StartTracking(ctx)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, h.tracker.Status(ctx))
	case errors.Is(err, service.ErrSleepMode):
		c.JSON(http.StatusConflict, gin.H{"error": service.MsgSleepMode})
	case errors.Is(err, service.ErrUnsupported):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": service.MsgUnsupported})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": service.PositionErrorMessage(err)})
	}
}

func (h *TrackingHandler) Stop(c *gin.Context) {
	h.tracker.StopTracking()
	c.JSON(http.StatusOK, h.tracker.Status(c.Request.Context()))
}

func (h *TrackingHandler) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.History())
}

func (h *TrackingHandler) ClearHistory(c *gin.Context) {
	h.tracker.ClearHistory(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *TrackingHandler) GetPosition(c *gin.Context) {
	loc, err := h.tracker.CurrentPosition(c.Request.Context())
	if err != nil {
		c.JSON(positionStatus(err), gin.H{"error": service.PositionErrorMessage(err)})
		return
	}
	c.JSON(http.StatusOK, loc)
}

// GetAlerts expands the active alert ids into their zones.
func (h *TrackingHandler) GetAlerts(c *gin.Context) {
	ids := h.tracker.ActiveAlerts()
	zones := make([]domain.DangerZone, 0, len(ids))
	for _, id := range ids {
		if z, ok := h.zones.Zone(id); ok {
			zones = append(zones, z)
		}
	}
	c.JSON(http.StatusOK, zones)
}

func (h *TrackingHandler) DismissAlert(c *gin.Context) {
	if !h.tracker.DismissAlert(c.Param("zone_id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not active"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active_alerts": h.tracker.ActiveAlerts()})
}

func (h *TrackingHandler) GetSleepMode(c *gin.Context) {
	c.JSON(http.StatusOK, sleepModeResponse{Enabled: h.sleep.Enabled(c.Request.Context())})
}

func (h *TrackingHandler) SetSleepMode(c *gin.Context) {
	var req sleepModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	h.sleep.Set(ctx, *req.Enabled)
	c.JSON(http.StatusOK, sleepModeResponse{Enabled: h.sleep.Enabled(ctx)})
}

func (h *TrackingHandler) ToggleSleepMode(c *gin.Context) {
	c.JSON(http.StatusOK, sleepModeResponse{Enabled: h.sleep.Toggle(c.Request.Context())})
}

func positionStatus(err error) int {
	if errors.Is(err, service.ErrUnsupported) {
		return http.StatusServiceUnavailable
	}
	switch positioning.CodeOf(err) {
	case positioning.PermissionDenied:
		return http.StatusForbidden
	case positioning.PositionUnavailable:
		return http.StatusServiceUnavailable
	case positioning.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
