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

var _ repository.IntensitySettingsRepository = (*intensityRepo)(nil)

type intensityRepo struct{ pool *pgxpool.Pool }

func NewIntensityRepo(pool *pgxpool.Pool) *intensityRepo {
	return &intensityRepo{pool: pool}
}

func (r *intensityRepo) Get(ctx context.Context, tx repository.Tx) (*model.IntensitySettings, error) {
	const q = `SELECT id, lower_bound, upper_bound FROM rainfall_intensity_settings LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}

	s := &model.IntensitySettings{}
	if err := row.Scan(&s.ID, &s.LowerBound, &s.UpperBound); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *intensityRepo) Save(ctx context.Context, tx repository.Tx, settings *model.IntensitySettings) error {
	const q = `
INSERT INTO rainfall_intensity_settings (id, lower_bound, upper_bound)
VALUES ($1,$2,$3)
ON CONFLICT (id) DO UPDATE SET lower_bound=$2, upper_bound=$3;`
	_, err := execSQL(ctx, r.pool, tx, q, settings.ID, settings.LowerBound, settings.UpperBound)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
