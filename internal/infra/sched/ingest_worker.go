package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"notion-reminder-service/internal/domain"
	"notion-reminder-service/internal/infra/logging"
	"notion-reminder-service/internal/usecase"
)

// IngestWorker polls rainfall readings on a fixed cadence. It is the
// in-process alternative to triggering /api/jobs/ingest-readings from an
// external scheduler; run one or the other, not both.
type IngestWorker struct {
	interval time.Duration
	uc       usecase.RainfallUseCase
	log      *zerolog.Logger
}

func NewIngestWorker(interval time.Duration, uc usecase.RainfallUseCase, logger *zerolog.Logger) *IngestWorker {
	l := logger.With().Str("component", "IngestWorker").Logger()
	return &IngestWorker{interval: interval, uc: uc, log: &l}
}

func (w *IngestWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting ingest worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping ingest worker")
			return ctx.Err()
		case <-ticker.C:
			jctx := logging.WithJob(ctx, "ingest-readings")
			stats, err := w.uc.IngestReadings(jctx)
			switch {
			case errors.Is(err, domain.ErrIngestionLockHeld):
				w.log.Warn().Msg("previous ingestion still running")
			case errors.Is(err, domain.ErrEmptyReadingBatch):
				w.log.Warn().Msg("provider returned no readings")
			case err != nil:
				w.log.Error().Err(err).Msg("ingest worker error")
			case stats.Skipped:
				w.log.Warn().Msg("ingestion skipped on slot mismatch")
			default:
				w.log.Debug().
					Int("upserted", stats.SlotsUpserted).
					Int64("pruned", stats.SlotsPruned).
					Msg("readings ingested")
			}
		}
	}
}
