package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"notion-reminder-service/internal/domain"
	"notion-reminder-service/internal/domain/model"
	"notion-reminder-service/internal/domain/ports/repository"
)

var _ repository.RainfallStationRepository = (*stationRepo)(nil)

type stationRepo struct{ pool *pgxpool.Pool }

func NewStationRepo(pool *pgxpool.Pool) *stationRepo {
	return &stationRepo{pool: pool}
}

func (r *stationRepo) UpsertAll(ctx context.Context, tx repository.Tx, stations []*model.RainfallStation) error {
	if len(stations) == 0 {
		return nil
	}
	const q = `
INSERT INTO rainfall_stations (id, device_id, name, latitude, longitude, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW())
ON CONFLICT (id) DO UPDATE SET
  device_id=EXCLUDED.device_id, name=EXCLUDED.name,
  latitude=EXCLUDED.latitude, longitude=EXCLUDED.longitude, updated_at=NOW();`

	b := &pgx.Batch{}
	for _, s := range stations {
		b.Queue(q, s.ID, s.DeviceID, s.Name, s.Latitude, s.Longitude)
	}
	res, err := sendBatch(ctx, r.pool, tx, b)
	if err != nil {
		return err
	}
	defer res.Close()
	for range stations {
		if _, err := res.Exec(); err != nil {
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *stationRepo) NamesByIDs(ctx context.Context, tx repository.Tx, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const q = `SELECT id, name FROM rainfall_stations WHERE id = ANY($1);`
	rows, err := queryRows(ctx, r.pool, tx, q, ids)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[id] = name
	}
	return out, nil
}

func (r *stationRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.RainfallStation, error) {
	const q = `SELECT id, device_id, name, latitude, longitude, updated_at FROM rainfall_stations ORDER BY name;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.RainfallStation
	for rows.Next() {
		s := new(model.RainfallStation)
		if err := rows.Scan(&s.ID, &s.DeviceID, &s.Name, &s.Latitude, &s.Longitude, &s.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	return out, nil
}
