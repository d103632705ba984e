package publisher

import (
	"context"

	"github.com/nandanugg/safetrip/module/core/domain"
)

type EventPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.GeofenceAlert) error
	PublishSOS(ctx context.Context, alert *domain.SOSAlert) error
}
