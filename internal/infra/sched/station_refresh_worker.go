package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"notion-reminder-service/internal/infra/logging"
	"notion-reminder-service/internal/usecase"
)

// StationRefreshWorker re-syncs the station directory. Station metadata
// changes rarely; a daily cadence is plenty.
type StationRefreshWorker struct {
	interval time.Duration
	uc       usecase.RainfallUseCase
	log      *zerolog.Logger
}

func NewStationRefreshWorker(interval time.Duration, uc usecase.RainfallUseCase, logger *zerolog.Logger) *StationRefreshWorker {
	l := logger.With().Str("component", "StationRefreshWorker").Logger()
	return &StationRefreshWorker{interval: interval, uc: uc, log: &l}
}

func (w *StationRefreshWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting station refresh worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping station refresh worker")
			return ctx.Err()
		case <-ticker.C:
			jctx := logging.WithJob(ctx, "refresh-stations")
			n, err := w.uc.RefreshStations(jctx)
			if err != nil {
				w.log.Error().Err(err).Msg("station refresh error")
				continue
			}
			w.log.Info().Int("stations", n).Msg("station directory refreshed")
		}
	}
}
