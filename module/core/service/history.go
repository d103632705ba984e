package service

import (
	"context"
	"sync"

	"github.com/golang/geo/s2"
	"go.uber.org/zap"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/internal/repository/kv"
	"github.com/nandanugg/safetrip/module/core/metrics"
)

const (
	KeyTrackingHistory = "tracking_history"
	HistoryLimit       = 1000

	earthRadiusMeters = 6371000
)

// History is the bounded, chronologically ordered sample buffer. Once
// full, each append evicts the oldest sample.
type History struct {
	store  kv.Store
	logger *zap.Logger
	limit  int

	mu      sync.RWMutex
	samples []domain.GPSLocation
}

func NewHistory(ctx context.Context, store kv.Store, logger *zap.Logger, limit int) *History {
	if limit <= 0 {
		limit = HistoryLimit
	}
	h := &History{store: store, logger: logger, limit: limit}

	saved, _, err := kv.GetJSON[[]domain.GPSLocation](ctx, store, KeyTrackingHistory)
	if err != nil {
		logger.Warn("load tracking history", zap.Error(err))
	}
	if len(saved) > limit {
		saved = saved[len(saved)-limit:]
	}
	h.samples = make([]domain.GPSLocation, len(saved), limit)
	copy(h.samples, saved)
	return h
}

func (h *History) Append(ctx context.Context, loc domain.GPSLocation) {
	h.mu.Lock()
	if len(h.samples) == h.limit {
		copy(h.samples, h.samples[1:])
		h.samples[len(h.samples)-1] = loc
	} else {
		h.samples = append(h.samples, loc)
	}
	snapshot := append([]domain.GPSLocation(nil), h.samples...)
	h.mu.Unlock()

	h.persist(ctx, snapshot)
}

func (h *History) Clear(ctx context.Context) {
	h.mu.Lock()
	h.samples = h.samples[:0]
	h.mu.Unlock()

	if err := h.store.Remove(ctx, KeyTrackingHistory); err != nil {
		metrics.PersistErrorsTotal.WithLabelValues(KeyTrackingHistory).Inc()
		h.logger.Error("remove tracking history", zap.Error(err))
	}
}

func (h *History) Samples() []domain.GPSLocation {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]domain.GPSLocation(nil), h.samples...)
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// Distance is the great-circle length of the buffered path in meters.
func (h *History) Distance() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var total float64
	for i := 1; i < len(h.samples); i++ {
		a := s2.LatLngFromDegrees(h.samples[i-1].Latitude, h.samples[i-1].Longitude)
		b := s2.LatLngFromDegrees(h.samples[i].Latitude, h.samples[i].Longitude)
		total += a.Distance(b).Radians() * earthRadiusMeters
	}
	return total
}

func (h *History) persist(ctx context.Context, snapshot []domain.GPSLocation) {
	if err := kv.SetJSON(ctx, h.store, KeyTrackingHistory, snapshot); err != nil {
		metrics.PersistErrorsTotal.WithLabelValues(KeyTrackingHistory).Inc()
		h.logger.Error("persist tracking history", zap.Int("samples", len(snapshot)), zap.Error(err))
	}
}
