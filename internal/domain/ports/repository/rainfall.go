package repository

import (
	"context"
	"time"

	"notion-reminder-service/internal/domain/model"
)

// -----------------------------
// Rainfall stations
// -----------------------------

type RainfallStationRepository interface {
	// UpsertAll bulk-upserts the full station directory by station ID.
	// Stale stations are left in place so historical slots keep resolving.
	UpsertAll(ctx context.Context, tx Tx, stations []*model.RainfallStation) error
	// NamesByIDs resolves display names for the given station IDs. IDs with
	// no directory entry are simply absent from the returned map.
	NamesByIDs(ctx context.Context, tx Tx, ids []string) (map[string]string, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.RainfallStation, error)
}

// -----------------------------
// Rainfall days
// -----------------------------

type RainfallDayRepository interface {
	// FindByDate looks up the day bucket for a business date (midnight in
	// the business timezone). Returns domain.ErrNotFound when absent.
	FindByDate(ctx context.Context, tx Tx, date time.Time) (*model.RainfallDay, error)
	Create(ctx context.Context, tx Tx, day *model.RainfallDay) error
}

// -----------------------------
// Rainfall slots
// -----------------------------

type RainfallSlotRepository interface {
	// FindForSlot returns the existing slots of one (day, hour, slot number)
	// key across all stations.
	FindForSlot(ctx context.Context, tx Tx, dayID string, hourOfDay, slotNumber int) ([]*model.RainfallSlot, error)
	// FindForHour returns every slot of one day's hour bucket.
	FindForHour(ctx context.Context, tx Tx, dayID string, hourOfDay int) ([]*model.RainfallSlot, error)
	UpsertAll(ctx context.Context, tx Tx, slots []*model.RainfallSlot) error
	// DeleteThroughHour removes all of a day's slots with hourOfDay <= hour
	// and reports how many rows went away.
	DeleteThroughHour(ctx context.Context, tx Tx, dayID string, hour int) (int64, error)
}

// -----------------------------
// Intensity settings
// -----------------------------

type IntensitySettingsRepository interface {
	// Get returns the singleton thresholds row, domain.ErrNotFound when the
	// table is empty.
	Get(ctx context.Context, tx Tx) (*model.IntensitySettings, error)
	Save(ctx context.Context, tx Tx, settings *model.IntensitySettings) error
}
