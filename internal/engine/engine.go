// Package engine ties the tailer, parser, and history store into the
// query facade the HTTP layer consumes.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/evewatch/evewatch/internal/history"
	"github.com/evewatch/evewatch/internal/logging"
	"github.com/evewatch/evewatch/internal/metrics"
	"github.com/evewatch/evewatch/internal/models"
	"github.com/evewatch/evewatch/internal/parser"
	"github.com/evewatch/evewatch/internal/stats"
	"github.com/evewatch/evewatch/internal/tailer"
)

// Engine is the single entry point for alert queries. Ingestion is
// triggered synchronously by FetchAlerts rather than by a background
// loop; the mutex makes the read-parse-append-advance cycle one critical
// section so concurrent queries never consume the same byte range.
type Engine struct {
	tailer *tailer.Tailer
	store  *history.Store
	logger *logging.Logger
	now    func() time.Time

	mu sync.Mutex
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for stored-at timestamps and the
// stats window. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New constructs an Engine over the given tailer and store.
func New(t *tailer.Tailer, s *history.Store, logger *logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		tailer: t,
		store:  s,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	metrics.HistorySize.Set(float64(s.Len()))
	return e
}

// FetchAlerts runs one ingestion pass and returns the most recent
// records, capped at limit (limit <= 0 returns the full bounded set).
// An ingestion failure degrades to serving whatever is already in
// history; the response is always well-formed.
func (e *Engine) FetchAlerts(ctx context.Context, limit int) models.AlertsResponse {
	if _, err := e.Ingest(ctx); err != nil {
		metrics.IngestFailures.Inc()
		e.logger.WarnContext(ctx, "ingestion pass failed, serving existing history",
			logging.Error(err))
	}

	alerts := e.store.ReadRecent(limit)
	return models.AlertsResponse{
		Alerts:         alerts,
		TotalInHistory: e.store.Len(),
		Returned:       len(alerts),
	}
}

// FetchStats summarizes the history as of the last ingestion pass. It
// deliberately does not ingest: stats reflect what FetchAlerts has
// already stored.
func (e *Engine) FetchStats(ctx context.Context) models.AlertStats {
	return stats.Summarize(e.store.Snapshot(), e.now())
}

// ClearHistory empties the store and returns the number of records
// removed. The checkpoint stays advanced, so cleared alerts are not
// re-ingested by future queries.
func (e *Engine) ClearHistory(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed, err := e.store.Clear()
	if err != nil {
		return removed, err
	}
	metrics.HistorySize.Set(0)
	e.logger.InfoContext(ctx, "alert history cleared", logging.Records(removed))
	return removed, nil
}

// Ingest performs one read-parse-append-advance cycle over newly
// available source-log bytes and returns the number of records stored.
// A pass that finds no new bytes is a cheap no-op. A caller blocked on
// the mutex proceeds with an already-advanced checkpoint and naturally
// sees nothing new.
func (e *Engine) Ingest(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}()

	ckpt := e.store.Checkpoint()
	res, err := e.tailer.ReadNew(ckpt.Offset)
	if err != nil {
		return 0, err
	}

	if res.Rotated {
		metrics.Rotations.Inc()
		e.logger.WarnContext(ctx, "source log rotated, restarting from beginning",
			slog.Int64("previous_offset", ckpt.Offset),
			slog.Int64("new_offset", res.Offset))
	}

	if len(res.Data) == 0 && res.Offset == ckpt.Offset {
		return 0, nil
	}

	records, malformed := parser.ParseLines(res.Data, e.now())
	if malformed > 0 {
		metrics.MalformedLines.Add(float64(malformed))
		e.logger.WarnContext(ctx, "skipped malformed source-log lines",
			logging.Records(malformed))
	}

	// Append-then-advance: the checkpoint moves in the same critical
	// section, and only to an offset whose records are stored.
	evicted, err := e.store.Append(records, models.Checkpoint{Offset: res.Offset})
	if err != nil {
		// The in-memory state advanced; the previous on-disk state
		// stands and catches up on the next successful persist.
		return len(records), err
	}

	metrics.BytesRead.Add(float64(len(res.Data)))
	metrics.RecordsIngested.Add(float64(len(records)))
	metrics.Evictions.Add(float64(evicted))
	metrics.HistorySize.Set(float64(e.store.Len()))

	if len(records) > 0 {
		e.logger.InfoContext(ctx, "ingested new alerts",
			logging.Records(len(records)),
			logging.Offset(res.Offset))
	}
	return len(records), nil
}
