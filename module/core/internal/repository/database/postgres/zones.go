package postgres

import (
	"context"
	"database/sql"

	"github.com/petfence/petfence/module/core/domain"
	"github.com/petfence/petfence/module/core/internal/repository/database"
)

var _ database.ZoneRepository = (*ZoneRepo)(nil)

type ZoneRepo struct {
	db *sql.DB
}

func NewZoneRepo(db *sql.DB) *ZoneRepo {
	return &ZoneRepo{db: db}
}

func (r *ZoneRepo) Upsert(ctx context.Context, zone *domain.SafeZone) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO safe_zones (zone_id, pet_id, latitude, longitude, radius_m, active) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (zone_id) DO UPDATE SET pet_id = $2, latitude = $3, longitude = $4, radius_m = $5, active = $6`,
		zone.ID, zone.PetID, zone.Center.Lat, zone.Center.Lon, zone.RadiusM, zone.Active,
	)
	return err
}

func (r *ZoneRepo) Delete(ctx context.Context, zoneID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM safe_zones WHERE zone_id = $1`, zoneID)
	return err
}

func (r *ZoneRepo) ListActive(ctx context.Context) ([]domain.SafeZone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT zone_id, pet_id, latitude, longitude, radius_m, active FROM safe_zones WHERE active ORDER BY zone_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.SafeZone
	for rows.Next() {
		var z domain.SafeZone
		if err := rows.Scan(&z.ID, &z.PetID, &z.Center.Lat, &z.Center.Lon, &z.RadiusM, &z.Active); err != nil {
			return nil, err
		}
		results = append(results, z)
	}
	return results, rows.Err()
}
