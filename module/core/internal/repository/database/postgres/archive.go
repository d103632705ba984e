package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/internal/repository/database"
)

var _ database.ArchiveRepository = (*ArchiveRepo)(nil)

const schema = `CREATE TABLE IF NOT EXISTS location_samples (
	id BIGSERIAL PRIMARY KEY,
	device_id TEXT NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	accuracy DOUBLE PRECISION NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS location_samples_device_time ON location_samples (device_id, recorded_at)`

type ArchiveRepo struct {
	db *sql.DB
}

func NewArchiveRepo(db *sql.DB) *ArchiveRepo {
	return &ArchiveRepo{db: db}
}

func (r *ArchiveRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *ArchiveRepo) Insert(ctx context.Context, loc *domain.TrackedLocation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO location_samples (device_id, latitude, longitude, accuracy, recorded_at) VALUES ($1, $2, $3, $4, $5)`,
		loc.DeviceID, loc.Location.Latitude, loc.Location.Longitude, loc.Location.Accuracy, loc.Location.Time().UTC(),
	)
	return err
}

func (r *ArchiveRepo) GetLatest(ctx context.Context, deviceID string) (*domain.TrackedLocation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT device_id, latitude, longitude, accuracy, recorded_at FROM location_samples WHERE device_id = $1 ORDER BY recorded_at DESC LIMIT 1`,
		deviceID,
	)

	var tl domain.TrackedLocation
	if err := scanSample(row, &tl); err != nil {
		return nil, err
	}
	return &tl, nil
}

func (r *ArchiveRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.TrackedLocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT device_id, latitude, longitude, accuracy, recorded_at FROM location_samples WHERE device_id = $1 AND recorded_at >= $2 AND recorded_at <= $3 ORDER BY recorded_at ASC`,
		query.DeviceID, query.Start.UTC(), query.End.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	results := []domain.TrackedLocation{}
	for rows.Next() {
		var tl domain.TrackedLocation
		if err := scanSample(rows, &tl); err != nil {
			return nil, err
		}
		results = append(results, tl)
	}
	return results, rows.Err()
}

func (r *ArchiveRepo) GetDevices(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT device_id FROM location_samples ORDER BY device_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		results = append(results, id)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSample(s scanner, tl *domain.TrackedLocation) error {
	var recordedAt time.Time
	if err := s.Scan(&tl.DeviceID, &tl.Location.Latitude, &tl.Location.Longitude, &tl.Location.Accuracy, &recordedAt); err != nil {
		return err
	}
	tl.Location.Timestamp = recordedAt.UnixMilli()
	return nil
}
