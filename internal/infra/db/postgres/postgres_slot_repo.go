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

var _ repository.RainfallSlotRepository = (*slotRepo)(nil)

type slotRepo struct{ pool *pgxpool.Pool }

func NewSlotRepo(pool *pgxpool.Pool) *slotRepo {
	return &slotRepo{pool: pool}
}

const slotColumns = `id, day_id, station_id, hour_of_day, slot_number, rainfall_amount, updated_at`

func scanSlots(rows pgx.Rows) ([]*model.RainfallSlot, error) {
	var out []*model.RainfallSlot
	for rows.Next() {
		s := new(model.RainfallSlot)
		if err := rows.Scan(&s.ID, &s.DayID, &s.StationID, &s.HourOfDay, &s.SlotNumber, &s.RainfallAmount, &s.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *slotRepo) FindForSlot(ctx context.Context, tx repository.Tx, dayID string, hourOfDay, slotNumber int) ([]*model.RainfallSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM rainfall_slots WHERE day_id=$1 AND hour_of_day=$2 AND slot_number=$3;`
	rows, err := queryRows(ctx, r.pool, tx, q, dayID, hourOfDay, slotNumber)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return scanSlots(rows)
}

func (r *slotRepo) FindForHour(ctx context.Context, tx repository.Tx, dayID string, hourOfDay int) ([]*model.RainfallSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM rainfall_slots WHERE day_id=$1 AND hour_of_day=$2;`
	rows, err := queryRows(ctx, r.pool, tx, q, dayID, hourOfDay)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return scanSlots(rows)
}

func (r *slotRepo) UpsertAll(ctx context.Context, tx repository.Tx, slots []*model.RainfallSlot) error {
	if len(slots) == 0 {
		return nil
	}
	// The (day, station, hour, slot) key is unique; amounts arrive
	// pre-accumulated, so the conflict branch overwrites.
	const q = `
INSERT INTO rainfall_slots (id, day_id, station_id, hour_of_day, slot_number, rainfall_amount, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (day_id, station_id, hour_of_day, slot_number) DO UPDATE SET
  rainfall_amount=EXCLUDED.rainfall_amount, updated_at=EXCLUDED.updated_at;`

	b := &pgx.Batch{}
	for _, s := range slots {
		b.Queue(q, s.ID, s.DayID, s.StationID, s.HourOfDay, s.SlotNumber, s.RainfallAmount, s.UpdatedAt)
	}
	res, err := sendBatch(ctx, r.pool, tx, b)
	if err != nil {
		return err
	}
	defer res.Close()
	for range slots {
		if _, err := res.Exec(); err != nil {
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *slotRepo) DeleteThroughHour(ctx context.Context, tx repository.Tx, dayID string, hour int) (int64, error) {
	const q = `DELETE FROM rainfall_slots WHERE day_id=$1 AND hour_of_day<=$2;`
	cmd, err := execSQL(ctx, r.pool, tx, q, dayID, hour)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return 0, err
		}
		return 0, domain.ErrOperationFailed
	}
	return cmd.RowsAffected(), nil
}
