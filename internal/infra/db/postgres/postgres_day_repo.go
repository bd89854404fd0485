package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"notion-reminder-service/internal/domain"
	"notion-reminder-service/internal/domain/model"
	"notion-reminder-service/internal/domain/ports/repository"
)

var _ repository.RainfallDayRepository = (*dayRepo)(nil)

type dayRepo struct{ pool *pgxpool.Pool }

func NewDayRepo(pool *pgxpool.Pool) *dayRepo {
	return &dayRepo{pool: pool}
}

func (r *dayRepo) FindByDate(ctx context.Context, tx repository.Tx, date time.Time) (*model.RainfallDay, error) {
	const q = `SELECT id, date, slots_per_hour, created_at FROM rainfall_days WHERE date=$1::date LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, date)
	if err != nil {
		return nil, err
	}

	d := &model.RainfallDay{}
	if err := row.Scan(&d.ID, &d.Date, &d.SlotsPerHour, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return d, nil
}

func (r *dayRepo) Create(ctx context.Context, tx repository.Tx, day *model.RainfallDay) error {
	const q = `
INSERT INTO rainfall_days (id, date, slots_per_hour, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (date) DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, q, day.ID, day.Date, day.SlotsPerHour, day.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
