package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		ingestRunsTotal,
		slotMismatchSkipsTotal,
		slotsUpsertedTotal,
		slotsPrunedTotal,
		stationsRefreshed,
		summariesBuiltTotal,
		ingestDurationSeconds,
	)
}

var ingestRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rainfall_ingest_runs_total",
		Help: "Total ingestion runs, labeled by outcome.",
	},
	[]string{"status"}, // 'ok', 'skipped', 'error'
)

var slotMismatchSkipsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "rainfall_slot_mismatch_skips_total",
		Help: "Ingestion runs skipped because provider and system clocks disagreed on the half-hour slot.",
	},
)

var slotsUpsertedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "rainfall_slots_upserted_total",
		Help: "Total slot rows written by ingestion.",
	},
)

var slotsPrunedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "rainfall_slots_pruned_total",
		Help: "Total slot rows removed by the retention prune.",
	},
)

var stationsRefreshed = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "rainfall_stations_refreshed",
		Help: "Station count seen by the most recent directory refresh.",
	},
)

var summariesBuiltTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rainfall_summaries_built_total",
		Help: "Hourly summaries produced, labeled by outcome.",
	},
	[]string{"status"}, // 'ok', 'error'
)

var ingestDurationSeconds = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "rainfall_ingest_duration_seconds",
		Help:    "Wall-clock duration of one ingestion run.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
)

func IncIngestRun(status string)       { ingestRunsTotal.WithLabelValues(status).Inc() }
func IncSlotMismatchSkip()             { slotMismatchSkipsTotal.Inc() }
func AddSlotsUpserted(n int)           { slotsUpsertedTotal.Add(float64(n)) }
func AddSlotsPruned(n int64)           { slotsPrunedTotal.Add(float64(n)) }
func SetStationsRefreshed(n int)       { stationsRefreshed.Set(float64(n)) }
func IncSummaryBuilt(status string)    { summariesBuiltTotal.WithLabelValues(status).Inc() }
func ObserveIngestDuration(s float64)  { ingestDurationSeconds.Observe(s) }
