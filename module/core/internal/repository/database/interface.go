package database

import (
	"context"

	"github.com/nandanugg/safetrip/module/core/domain"
)

// ArchiveRepository is the long-term store of tracked samples. Unlike the
// rolling history it is unbounded and keyed by device.
type ArchiveRepository interface {
	Migrate(ctx context.Context) error
	Insert(ctx context.Context, loc *domain.TrackedLocation) error
	GetLatest(ctx context.Context, deviceID string) (*domain.TrackedLocation, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.TrackedLocation, error)
	GetDevices(ctx context.Context) ([]string, error)
}
