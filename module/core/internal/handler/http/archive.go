package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/safetrip/module/core/domain"
)

type archiveService interface {
	GetLatest(ctx context.Context, deviceID string) (*domain.TrackedLocation, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.TrackedLocation, error)
	GetDevices(ctx context.Context) ([]string, error)
}

type archivedLocation struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

// ArchiveHandler serves the long-term track archive. deviceID is used when
// a request names no device.
type ArchiveHandler struct {
	archive  archiveService
	deviceID string
}

func NewArchiveHandler(archive archiveService, deviceID string) *ArchiveHandler {
	return &ArchiveHandler{archive: archive, deviceID: deviceID}
}

func (h *ArchiveHandler) Register(r *gin.RouterGroup) {
	r.GET("/archive", h.GetHistory)
	r.GET("/archive/devices", h.GetDevices)
	r.GET("/archive/latest", h.GetLatest)
}

func (h *ArchiveHandler) GetDevices(c *gin.Context) {
	devices, err := h.archive.GetDevices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch devices"})
		return
	}
	if devices == nil {
		devices = []string{}
	}
	c.JSON(http.StatusOK, devices)
}

func (h *ArchiveHandler) GetLatest(c *gin.Context) {
	tl, err := h.archive.GetLatest(c.Request.Context(), h.device(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no archived location"})
		return
	}
	c.JSON(http.StatusOK, toArchivedLocation(tl))
}

func (h *ArchiveHandler) GetHistory(c *gin.Context) {
	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	if end < start {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end before start"})
		return
	}

	query := &domain.HistoryQuery{
		DeviceID: h.device(c),
		Start:    time.Unix(start, 0),
		End:      time.Unix(end, 0),
	}

	locations, err := h.archive.GetHistory(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	results := make([]archivedLocation, len(locations))
	for i := range locations {
		results[i] = toArchivedLocation(&locations[i])
	}
	c.JSON(http.StatusOK, results)
}

func (h *ArchiveHandler) device(c *gin.Context) string {
	if id := c.Query("device_id"); id != "" {
		return id
	}
	return h.deviceID
}

func toArchivedLocation(tl *domain.TrackedLocation) archivedLocation {
	return archivedLocation{
		DeviceID:  tl.DeviceID,
		Latitude:  tl.Location.Latitude,
		Longitude: tl.Location.Longitude,
		Accuracy:  tl.Location.Accuracy,
		Timestamp: tl.Location.Timestamp,
	}
}
