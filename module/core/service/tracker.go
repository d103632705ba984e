package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/internal/positioning"
	"github.com/nandanugg/safetrip/module/core/metrics"
)

var (
	ErrUnsupported = errors.New("tracking: geolocation not supported")
	ErrSleepMode   = errors.New("tracking: disabled in sleep mode")
)

const (
	MsgUnsupported         = "Geolocation is not supported by this browser."
	MsgSleepMode           = "GPS tracking is disabled in sleep mode."
	MsgPermissionDenied    = "Location access denied by user."
	MsgPositionUnavailable = "Location information unavailable."
	MsgTimeout             = "Location request timed out."
	MsgUnknown             = "An unknown error occurred while retrieving location."
)

const notifyTimeout = 5 * time.Second

type violationChecker interface {
	Violations(loc domain.GPSLocation) []domain.DangerZone
}

type alertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.GeofenceAlert) error
}

type locationArchive interface {
	Insert(ctx context.Context, loc *domain.TrackedLocation) error
}

type TrackerParams struct {
	DeviceID  string
	Source    positioning.Source
	Checker   violationChecker
	SleepMode *SleepMode
	History   *History
	Alerts    *AlertManager
	Publisher alertPublisher
	Archive   locationArchive
	Logger    *zap.Logger
}

type TrackingStatus struct {
	Active        bool                `json:"active"`
	Current       *domain.GPSLocation `json:"current_location"`
	Error         string              `json:"error,omitempty"`
	ActiveAlerts  []string            `json:"active_alerts"`
	HistoryLength int                 `json:"history_length"`
	Distance      float64             `json:"distance_meters"`
	SleepMode     bool                `json:"sleep_mode"`
}

// Tracker drives the location stream: it owns the watch subscription and
// routes every fix into the history buffer and the alert manager.
type Tracker struct {
	deviceID  string
	source    positioning.Source
	checker   violationChecker
	sleep     *SleepMode
	history   *History
	alerts    *AlertManager
	publisher alertPublisher
	archive   locationArchive
	logger    *zap.Logger
	now       func() time.Time

	mu          sync.Mutex
	active      bool
	watchID     positioning.WatchID
	generation  uint64
	current     *domain.GPSLocation
	lastErr     string
	lastStamp   int64
	unsubscribe func()
}

func NewTracker(p TrackerParams) *Tracker {
	t := &Tracker{
		deviceID:  p.DeviceID,
		source:    p.Source,
		checker:   p.Checker,
		sleep:     p.SleepMode,
		history:   p.History,
		alerts:    p.Alerts,
		publisher: p.Publisher,
		archive:   p.Archive,
		logger:    p.Logger,
		now:       time.Now,
	}
	t.unsubscribe = t.sleep.Subscribe(t.onSleepModeChanged)
	return t
}

// StartTracking opens a continuous watch. It is a no-op while already
// tracking.
func (t *Tracker) StartTracking(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active {
		return nil
	}
	if !t.source.Available() {
		t.lastErr = MsgUnsupported
		return ErrUnsupported
	}
	if t.sleep.Enabled(ctx) {
		t.lastErr = MsgSleepMode
		return ErrSleepMode
	}

	t.generation++
	gen := t.generation
	id, err := t.source.Watch(
		func(fix positioning.Fix) { t.onFix(gen, fix) },
		func(err error) { t.onFixError(gen, err) },
		positioning.WatchOptions,
	)
	if err != nil {
		t.lastErr = PositionErrorMessage(err)
		if errors.Is(err, positioning.ErrUnsupported) {
			return ErrUnsupported
		}
		return err
	}

	t.watchID = id
	t.active = true
	t.lastErr = ""
	t.logger.Info("tracking started", zap.String("device_id", t.deviceID))
	return nil
}

// StopTracking cancels the watch and empties the active alert set. No fix
// is processed after it returns. Calling it while stopped only clears
// alerts again.
func (t *Tracker) StopTracking() {
	t.mu.Lock()
	defer t.mu.Unlock()

	wasActive := t.active
	t.stopLocked()
	t.alerts.Clear()
	if wasActive {
		t.logger.Info("tracking stopped", zap.String("device_id", t.deviceID))
	}
}

// CurrentPosition performs a one-shot fetch. It leaves the history and
// the active alert set untouched.
func (t *Tracker) CurrentPosition(ctx context.Context) (domain.GPSLocation, error) {
	if !t.source.Available() {
		return domain.GPSLocation{}, ErrUnsupported
	}
	fix, err := t.source.CurrentPosition(ctx, positioning.OneShotOptions)
	if err != nil {
		return domain.GPSLocation{}, err
	}
	return domain.GPSLocation{
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Accuracy:  fix.Accuracy,
		Timestamp: t.now().UnixMilli(),
	}, nil
}

func (t *Tracker) ClearHistory(ctx context.Context) {
	t.history.Clear(ctx)
}

func (t *Tracker) DismissAlert(zoneID string) bool {
	return t.alerts.Dismiss(zoneID)
}

// ActiveAlerts is empty while sleep mode is on, even before a flip made
// by another process has been delivered here.
func (t *Tracker) ActiveAlerts() []string {
	if t.sleep.Enabled(context.Background()) {
		return []string{}
	}
	return t.alerts.Active()
}

func (t *Tracker) History() []domain.GPSLocation {
	return t.history.Samples()
}

// CurrentLocation is the latest streamed sample, nil before the first.
func (t *Tracker) CurrentLocation() *domain.GPSLocation {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}
	loc := *t.current
	return &loc
}

func (t *Tracker) Status(ctx context.Context) TrackingStatus {
	t.mu.Lock()
	st := TrackingStatus{
		Active: t.active,
		Error:  t.lastErr,
	}
	if t.current != nil {
		loc := *t.current
		st.Current = &loc
	}
	t.mu.Unlock()

	st.SleepMode = t.sleep.Enabled(ctx)
	st.ActiveAlerts = []string{}
	if !st.SleepMode {
		st.ActiveAlerts = t.alerts.Active()
	}
	st.HistoryLength = t.history.Len()
	st.Distance = t.history.Distance()
	return st
}

// Close releases the watch and the sleep mode subscription.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.stopLocked()
	unsubscribe := t.unsubscribe
	t.unsubscribe = nil
	t.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (t *Tracker) stopLocked() {
	if t.active {
		t.source.ClearWatch(t.watchID)
	}
	t.active = false
	t.generation++
}

func (t *Tracker) onFix(gen uint64, fix positioning.Fix) {
	ctx := context.Background()

	t.mu.Lock()
	if !t.active || gen != t.generation {
		t.mu.Unlock()
		return
	}

	loc := t.stamp(fix)
	t.current = &loc
	t.lastErr = ""
	t.history.Append(ctx, loc)
	metrics.SamplesReceivedTotal.Inc()

	var raised []domain.DangerZone
	if t.sleep.Enabled(ctx) {
		t.alerts.Clear()
		metrics.SuppressedSamplesTotal.Inc()
	} else {
		// TODO: hysteresis for fixes jittering across a zone edge; the set
		// is recomputed from scratch and can flap between samples.
		zones := t.checker.Violations(loc)
		metrics.GeofenceEvaluationsTotal.Inc()
		newIDs := t.alerts.Evaluate(zones)
		raised = pickZones(zones, newIDs)
	}
	t.mu.Unlock()

	t.archiveSample(loc)
	t.notify(loc, raised)
}

func (t *Tracker) onFixError(gen uint64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || gen != t.generation {
		return
	}
	t.lastErr = PositionErrorMessage(err)
	metrics.PositionErrorsTotal.WithLabelValues(positioning.CodeOf(err).String()).Inc()
	t.logger.Warn("position fix failed", zap.String("device_id", t.deviceID), zap.Error(err))
}

func (t *Tracker) onSleepModeChanged(enabled bool) {
	if !enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alerts.Clear()
}

// stamp uses the receive clock, clamped so samples never go backwards.
func (t *Tracker) stamp(fix positioning.Fix) domain.GPSLocation {
	ms := t.now().UnixMilli()
	if ms < t.lastStamp {
		ms = t.lastStamp
	}
	t.lastStamp = ms
	return domain.GPSLocation{
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Accuracy:  fix.Accuracy,
		Timestamp: ms,
	}
}

func (t *Tracker) archiveSample(loc domain.GPSLocation) {
	if t.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := t.archive.Insert(ctx, &domain.TrackedLocation{DeviceID: t.deviceID, Location: loc}); err != nil {
		t.logger.Error("archive sample", zap.String("device_id", t.deviceID), zap.Error(err))
	}
}

func (t *Tracker) notify(loc domain.GPSLocation, zones []domain.DangerZone) {
	if len(zones) == 0 {
		return
	}
	names := make([]string, len(zones))
	for i, z := range zones {
		names[i] = z.Name
		metrics.AlertsRaisedTotal.WithLabelValues(z.ID).Inc()
	}
	t.logger.Info("geofence violations detected",
		zap.String("device_id", t.deviceID),
		zap.Strings("zones", names))

	if t.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	for _, z := range zones {
		alert := &domain.GeofenceAlert{
			DeviceID:  t.deviceID,
			Event:     domain.GeofenceEntry,
			ZoneID:    z.ID,
			ZoneName:  z.Name,
			RiskLevel: z.RiskLevel,
			Message:   z.AlertMessage,
			Location:  loc,
			Timestamp: loc.Timestamp,
		}
		if err := t.publisher.PublishAlert(ctx, alert); err != nil {
			t.logger.Error("publish geofence alert", zap.String("zone_id", z.ID), zap.Error(err))
		}
	}
}

func pickZones(zones []domain.DangerZone, ids []string) []domain.DangerZone {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]domain.DangerZone, 0, len(ids))
	for _, z := range zones {
		if want[z.ID] {
			out = append(out, z)
			delete(want, z.ID)
		}
	}
	return out
}

// PositionErrorMessage is the user-facing text for a failed fix.
func PositionErrorMessage(err error) string {
	if errors.Is(err, ErrUnsupported) || errors.Is(err, positioning.ErrUnsupported) {
		return MsgUnsupported
	}
	if errors.Is(err, ErrSleepMode) {
		return MsgSleepMode
	}
	switch positioning.CodeOf(err) {
	case positioning.PermissionDenied:
		return MsgPermissionDenied
	case positioning.PositionUnavailable:
		return MsgPositionUnavailable
	case positioning.Timeout:
		return MsgTimeout
	default:
		return MsgUnknown
	}
}
