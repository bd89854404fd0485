package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"notion-reminder-service/internal/domain"
	"notion-reminder-service/internal/domain/model"
	"notion-reminder-service/internal/domain/ports/adapter"
	"notion-reminder-service/internal/domain/ports/repository"
	"notion-reminder-service/internal/infra/metrics"
)

// Compile-time check
var _ RainfallUseCase = (*rainfallUC)(nil)

// DayLocker serializes ingestion per business day. Satisfied by the Redis
// token lock; overlapping trigger calls would otherwise race on slot amounts.
type DayLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// IngestStats reports what one ingestion run did.
type IngestStats struct {
	Skipped       bool // slot-consistency check failed; nothing was written
	SlotsUpserted int
	SlotsPruned   int64
}

type RainfallUseCase interface {
	// RefreshStations re-syncs the cached station directory and returns the
	// station count seen.
	RefreshStations(ctx context.Context) (int, error)
	// IngestReadings polls the current reading batch and folds it into the
	// day's half-hour slots.
	IngestReadings(ctx context.Context) (*IngestStats, error)
	// LastHourSummary classifies the current hour bucket into intensity tiers.
	LastHourSummary(ctx context.Context) (*model.RainfallSummary, error)
}

type rainfallUC struct {
	provider  adapter.WeatherProvider
	days      repository.RainfallDayRepository
	slots     repository.RainfallSlotRepository
	stations  repository.RainfallStationRepository
	intensity repository.IntensitySettingsRepository
	txm       repository.TransactionManager
	locker    DayLocker
	lockTTL   time.Duration
	clock     clockwork.Clock
	loc       *time.Location
	log       *zerolog.Logger
}

func NewRainfallUseCase(
	provider adapter.WeatherProvider,
	days repository.RainfallDayRepository,
	slots repository.RainfallSlotRepository,
	stations repository.RainfallStationRepository,
	intensity repository.IntensitySettingsRepository,
	txm repository.TransactionManager,
	locker DayLocker,
	lockTTL time.Duration,
	clock clockwork.Clock,
	loc *time.Location,
	logger *zerolog.Logger,
) *rainfallUC {
	l := logger.With().Str("component", "RainfallUC").Logger()
	return &rainfallUC{
		provider:  provider,
		days:      days,
		slots:     slots,
		stations:  stations,
		intensity: intensity,
		txm:       txm,
		locker:    locker,
		lockTTL:   lockTTL,
		clock:     clock,
		loc:       loc,
		log:       &l,
	}
}

func (u *rainfallUC) RefreshStations(ctx context.Context) (int, error) {
	obs, err := u.provider.FetchRainfall(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch station directory: %w", err)
	}
	if err := u.stations.UpsertAll(ctx, repository.NoTX, obs.Stations); err != nil {
		return 0, fmt.Errorf("upsert stations: %w", err)
	}
	metrics.SetStationsRefreshed(len(obs.Stations))
	u.log.Info().Int("stations", len(obs.Stations)).Msg("station directory refreshed")
	return len(obs.Stations), nil
}

func (u *rainfallUC) IngestReadings(ctx context.Context) (*IngestStats, error) {
	start := time.Now()
	defer func() { metrics.ObserveIngestDuration(time.Since(start).Seconds()) }()

	stats, err := u.ingest(ctx)
	switch {
	case err != nil:
		metrics.IncIngestRun("error")
	case stats.Skipped:
		metrics.IncIngestRun("skipped")
	default:
		metrics.IncIngestRun("ok")
	}
	return stats, err
}

func (u *rainfallUC) ingest(ctx context.Context) (*IngestStats, error) {
	obs, err := u.provider.FetchRainfall(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch rainfall readings: %w", err)
	}
	if len(obs.Readings) == 0 {
		return nil, domain.ErrEmptyReadingBatch
	}

	providerAt, err := time.Parse(time.RFC3339, obs.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrBadProviderTimestamp, obs.Timestamp)
	}
	providerAt = providerAt.In(u.loc)
	now := u.clock.Now().In(u.loc)

	// One writer per business day.
	lockKey := "rainfall:ingest:" + now.Format("2006-01-02")
	token, err := u.locker.TryLock(ctx, lockKey, u.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = u.locker.Unlock(ctx, lockKey, token) }()

	// Day resolution failure aborts before any slot writes.
	day, err := u.dayFor(ctx, now)
	if err != nil {
		return nil, err
	}

	// Slot-consistency check: the provider stamp and the system clock must
	// agree on the half-hour slot, or a reading polled near a boundary
	// would be filed into the wrong bucket. Skip the whole run on mismatch.
	slotNumber := model.SlotNumberAt(providerAt)
	if sysSlot := model.SlotNumberAt(now); sysSlot != slotNumber {
		u.log.Warn().
			Int("provider_slot", slotNumber).
			Int("system_slot", sysSlot).
			Str("provider_timestamp", obs.Timestamp).
			Msg("slot number mismatch between provider timestamp and system clock; skipping ingestion")
		metrics.IncSlotMismatchSkip()
		return &IngestStats{Skipped: true}, nil
	}

	hour := providerAt.Hour()
	existing, err := u.slots.FindForSlot(ctx, repository.NoTX, day.ID, hour, slotNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch existing slots: %w", err)
	}
	byStation := make(map[string]*model.RainfallSlot, len(existing))
	for _, s := range existing {
		byStation[s.StationID] = s
	}

	// One reading per station per poll; duplicates keep the first value.
	merged := make([]*model.RainfallSlot, 0, len(obs.Readings))
	seen := make(map[string]bool, len(obs.Readings))
	for _, r := range obs.Readings {
		if seen[r.StationID] {
			continue
		}
		seen[r.StationID] = true

		slot := byStation[r.StationID]
		if slot == nil {
			slot = &model.RainfallSlot{
				ID:         uuid.NewString(),
				DayID:      day.ID,
				StationID:  r.StationID,
				HourOfDay:  hour,
				SlotNumber: slotNumber,
			}
		}
		// The provider reports incremental amounts per poll, so repeated
		// ingestions within a slot accumulate rather than overwrite.
		slot.RainfallAmount += r.Value
		slot.UpdatedAt = now
		merged = append(merged, slot)
	}

	// The hour leaving the two-hour window. Before 02:00 it belongs to
	// yesterday's bucket; pruning today's bucket there would wipe the rows
	// just written.
	pruneHour := model.HourToPrune(hour)
	pruneDayID := day.ID
	if hour < 2 {
		prev, err := u.days.FindByDate(ctx, repository.NoTX, day.Date.AddDate(0, 0, -1))
		switch {
		case err == nil:
			pruneDayID = prev.ID
		case err == domain.ErrNotFound:
			pruneDayID = "" // nothing recorded yesterday, nothing to prune
		default:
			return nil, fmt.Errorf("resolve previous rainfall day: %w", err)
		}
	}

	// Upsert and prune commit together: a run must never prune the window
	// without its readings landing.
	var pruned int64
	err = u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.slots.UpsertAll(ctx, tx, merged); err != nil {
			return fmt.Errorf("upsert slots: %w", err)
		}
		if pruneDayID == "" {
			return nil
		}
		pruned, err = u.slots.DeleteThroughHour(ctx, tx, pruneDayID, pruneHour)
		if err != nil {
			return fmt.Errorf("prune stale slots: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.AddSlotsUpserted(len(merged))
	if pruned > 0 {
		metrics.AddSlotsPruned(pruned)
		u.log.Debug().Int64("pruned", pruned).Int("through_hour", pruneHour).Msg("stale slots removed")
	}

	return &IngestStats{SlotsUpserted: len(merged), SlotsPruned: pruned}, nil
}

// dayFor returns the day bucket for t's business date, creating it lazily.
func (u *rainfallUC) dayFor(ctx context.Context, t time.Time) (*model.RainfallDay, error) {
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, u.loc)
	day, err := u.days.FindByDate(ctx, repository.NoTX, date)
	if err == nil {
		return day, nil
	}
	if err != domain.ErrNotFound {
		return nil, fmt.Errorf("resolve rainfall day: %w", err)
	}

	created := &model.RainfallDay{
		ID:           uuid.NewString(),
		Date:         date,
		SlotsPerHour: model.SlotsPerHour,
		CreatedAt:    u.clock.Now().In(u.loc),
	}
	if err := u.days.Create(ctx, repository.NoTX, created); err != nil {
		return nil, fmt.Errorf("create rainfall day: %w", err)
	}
	// Re-read so a concurrent creator's row wins over ours.
	day, err = u.days.FindByDate(ctx, repository.NoTX, date)
	if err != nil {
		return nil, fmt.Errorf("resolve rainfall day after create: %w", err)
	}
	return day, nil
}

func (u *rainfallUC) LastHourSummary(ctx context.Context) (*model.RainfallSummary, error) {
	summary, err := u.buildSummary(ctx)
	if err != nil {
		metrics.IncSummaryBuilt("error")
		return nil, err
	}
	metrics.IncSummaryBuilt("ok")
	return summary, nil
}

func (u *rainfallUC) buildSummary(ctx context.Context) (*model.RainfallSummary, error) {
	now := u.clock.Now().In(u.loc)

	day, err := u.dayLookup(ctx, now)
	if err != nil {
		return nil, err
	}
	slots, err := u.slots.FindForHour(ctx, repository.NoTX, day.ID, now.Hour())
	if err != nil {
		return nil, fmt.Errorf("fetch slots for hour %d: %w", now.Hour(), err)
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("hour %d: %w", now.Hour(), domain.ErrNoSlotsForHour)
	}

	settings, err := u.intensity.Get(ctx, repository.NoTX)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrIntensitySettingsMissing
		}
		return nil, fmt.Errorf("fetch intensity settings: %w", err)
	}

	// Sum per station, preserving first-seen order across slot numbers.
	totals := make(map[string]float64, len(slots))
	order := make([]string, 0, len(slots))
	for _, s := range slots {
		if _, ok := totals[s.StationID]; !ok {
			order = append(order, s.StationID)
		}
		totals[s.StationID] += s.RainfallAmount
	}

	names, err := u.stations.NamesByIDs(ctx, repository.NoTX, order)
	if err != nil {
		return nil, fmt.Errorf("resolve station names: %w", err)
	}

	summary := &model.RainfallSummary{Hour: now.Hour()}
	for _, id := range order {
		name, ok := names[id]
		if !ok {
			// Unknown station must not sink the whole summary.
			name = id
		}
		summary.Add(name, settings.Classify(totals[id]))
	}
	return summary, nil
}

func (u *rainfallUC) dayLookup(ctx context.Context, now time.Time) (*model.RainfallDay, error) {
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, u.loc)
	day, err := u.days.FindByDate(ctx, repository.NoTX, date)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, fmt.Errorf("no rainfall recorded for %s: %w", date.Format("2006-01-02"), domain.ErrNoSlotsForHour)
		}
		return nil, fmt.Errorf("resolve rainfall day: %w", err)
	}
	return day, nil
}
