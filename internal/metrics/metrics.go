package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics
	RecordsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evewatch_ingest_records_total",
			Help: "Total number of alert records ingested from the source log",
		},
	)

	BytesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evewatch_ingest_bytes_total",
			Help: "Total bytes consumed from the source log",
		},
	)

	MalformedLines = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evewatch_ingest_malformed_lines_total",
			Help: "Total number of source-log lines skipped as malformed",
		},
	)

	IngestFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evewatch_ingest_failures_total",
			Help: "Total number of ingestion passes that failed and degraded to zero records",
		},
	)

	Rotations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evewatch_ingest_rotations_total",
			Help: "Total number of detected source-log rotations",
		},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evewatch_ingest_duration_seconds",
			Help:    "Duration of ingestion passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// History metrics
	HistorySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "evewatch_history_size",
			Help: "Current number of records in the alert history",
		},
	)

	Evictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evewatch_history_evictions_total",
			Help: "Total number of records evicted once the history bound was exceeded",
		},
	)
)
