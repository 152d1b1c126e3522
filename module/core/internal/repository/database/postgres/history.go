package postgres

import (
	"context"
	"database/sql"

	"github.com/petfence/petfence/module/core/domain"
	"github.com/petfence/petfence/module/core/internal/repository/database"
)

var _ database.HistoryRepository = (*HistoryRepo)(nil)

type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) InsertSample(ctx context.Context, sample *domain.LocationSample) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pet_samples (pet_id, latitude, longitude, accuracy, simulated, captured_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		sample.PetID, sample.Coordinate.Lat, sample.Coordinate.Lon, sample.AccuracyM, sample.Simulated, sample.CapturedAt,
	)
	return err
}

func (r *HistoryRepo) InsertEvent(ctx context.Context, ev *domain.TransitionEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO zone_events (pet_id, zone_id, kind, latitude, longitude, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.PetID, ev.ZoneID, string(ev.Kind), ev.Sample.Coordinate.Lat, ev.Sample.Coordinate.Lon, ev.OccurredAt,
	)
	return err
}

func (r *HistoryRepo) GetSampleHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationSample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT pet_id, latitude, longitude, accuracy, simulated, captured_at FROM pet_samples WHERE pet_id = $1 AND captured_at >= $2 AND captured_at <= $3 ORDER BY captured_at ASC`,
		query.PetID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.LocationSample
	for rows.Next() {
		var s domain.LocationSample
		if err := rows.Scan(&s.PetID, &s.Coordinate.Lat, &s.Coordinate.Lon, &s.AccuracyM, &s.Simulated, &s.CapturedAt); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func (r *HistoryRepo) GetEvents(ctx context.Context, petID string) ([]domain.TransitionEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT pet_id, zone_id, kind, latitude, longitude, occurred_at FROM zone_events WHERE pet_id = $1 ORDER BY occurred_at ASC`,
		petID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.TransitionEvent
	for rows.Next() {
		var ev domain.TransitionEvent
		var kind string
		if err := rows.Scan(&ev.PetID, &ev.ZoneID, &kind, &ev.Sample.Coordinate.Lat, &ev.Sample.Coordinate.Lon, &ev.OccurredAt); err != nil {
			return nil, err
		}
		ev.Kind = domain.TransitionKind(kind)
		ev.Sample.PetID = ev.PetID
		results = append(results, ev)
	}
	return results, rows.Err()
}
