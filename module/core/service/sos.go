package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/idgen"
	"github.com/nandanugg/safetrip/module/core/metrics"
)

const (
	RecipientPolice            = "Police"
	RecipientEmergencyServices = "Emergency Services"

	MsgSOSSleepMode = "SOS is disabled in sleep mode. Please disable sleep mode to use emergency features."
)

var ErrSOSSleepMode = errors.New("sos: disabled in sleep mode")

type sosPublisher interface {
	PublishSOS(ctx context.Context, alert *domain.SOSAlert) error
}

type priorityContactFinder interface {
	Priority(ctx context.Context) (*domain.EmergencyContact, error)
}

type locationProvider interface {
	CurrentLocation() *domain.GPSLocation
}

type SOSParams struct {
	DeviceID  string
	SleepMode *SleepMode
	Contacts  priorityContactFinder
	Locations locationProvider
	Publisher sosPublisher
	Logger    *zap.Logger
}

type SOS struct {
	deviceID  string
	sleep     *SleepMode
	contacts  priorityContactFinder
	locations locationProvider
	publisher sosPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewSOS(p SOSParams) *SOS {
	return &SOS{
		deviceID:  p.DeviceID,
		sleep:     p.SleepMode,
		contacts:  p.Contacts,
		locations: p.Locations,
		publisher: p.Publisher,
		logger:    p.Logger,
		now:       time.Now,
	}
}

// Trigger dispatches an SOS to the police and the priority contact. The
// alert is returned even when no publisher is configured.
func (s *SOS) Trigger(ctx context.Context) (*domain.SOSAlert, error) {
	if s.sleep.Enabled(ctx) {
		return nil, ErrSOSSleepMode
	}

	id, err := idgen.New()
	if err != nil {
		return nil, fmt.Errorf("generate sos id: %w", err)
	}

	contact, err := s.contacts.Priority(ctx)
	if err != nil {
		s.logger.Warn("lookup priority contact", zap.Error(err))
		contact = nil
	}
	second := RecipientEmergencyServices
	if contact != nil {
		second = contact.Name
	}

	alert := &domain.SOSAlert{
		ID:         id,
		DeviceID:   s.deviceID,
		Recipients: []string{RecipientPolice, second},
		Contact:    contact,
		Timestamp:  s.now().UnixMilli(),
	}
	if s.locations != nil {
		alert.Location = s.locations.CurrentLocation()
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSOS(ctx, alert); err != nil {
			return nil, fmt.Errorf("publish sos: %w", err)
		}
	}
	metrics.SOSDispatchedTotal.Inc()
	s.logger.Info("sos dispatched",
		zap.String("sos_id", idgen.Shorten(id)),
		zap.String("device_id", s.deviceID),
		zap.Strings("recipients", alert.Recipients))
	return alert, nil
}
