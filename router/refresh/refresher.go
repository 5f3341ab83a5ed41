package refresh

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/polypheny/adaptive-router/router/routing"
)

// Source is the refresher's view of the external monitoring service: mean
// execution time per placement set for a query class, over whatever
// retention window the monitoring service keeps. That retention window is
// the effective moving-average window the router trains against.
type Source interface {
	MeanTimes(ctx context.Context, qc routing.QC) ([]Sample, error)
}

// ConfigSource supplies the refresh-time thresholds, re-read on every
// tick so a runtime config change takes effect on the next cycle without
// restarting the refresher.
type ConfigSource interface {
	Thresholds() Thresholds
}

// MetricsSink receives refresh-cycle outcomes, if the caller wires one.
type MetricsSink interface {
	RecordRefresh(ctx context.Context, err error)
	RecordRowSumMismatch(ctx context.Context)
}

// Refresher drives the routing table's periodic recomputation. One
// Refresher runs per process, ticking every interval; each tick visits
// every query class currently in the table and replaces its row.
type Refresher struct {
	table    *routing.Table
	source   Source
	config   ConfigSource
	logger   *zap.Logger
	interval time.Duration
	metrics  MetricsSink

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// New builds a Refresher. interval is normally five seconds, per the
// router's refresh cadence; tests may pass a shorter interval.
func New(table *routing.Table, source Source, config ConfigSource, logger *zap.Logger, interval time.Duration) *Refresher {
	return &Refresher{
		table:    table,
		source:   source,
		config:   config,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// WithMetrics attaches a MetricsSink that records every tick's per-query-class
// outcome.
func (r *Refresher) WithMetrics(m MetricsSink) *Refresher {
	r.metrics = m
	return r
}

// Start launches the background refresh loop. Call Stop to terminate it.
func (r *Refresher) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.loop(ctx)
}

// Stop signals the refresh loop to exit and waits for it to finish its
// current tick, if any.
func (r *Refresher) Stop() {
	close(r.stopChan)
	r.wg.Wait()
}

func (r *Refresher) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick runs exactly one refresh cycle: for every query class in the
// table, query the monitoring service, run the row generator, and build
// the replacement row under the table's exclusive lock.
func (r *Refresher) tick(ctx context.Context) {
	th := r.config.Thresholds()

	r.table.Refresh(func(qc routing.QC, old *routing.Row) *routing.Row {
		samples, err := r.source.MeanTimes(ctx, qc)
		if r.metrics != nil {
			r.metrics.RecordRefresh(ctx, err)
		}
		if err != nil {
			r.logger.Error("refresh: failed to fetch mean times",
				zap.String("qc", string(qc)), zap.Error(err))
			return nil
		}

		onMismatch := func() {}
		if r.metrics != nil {
			onMismatch = func() { r.metrics.RecordRowSumMismatch(ctx) }
		}
		weights := generate(samples, th, r.logger, onMismatch)
		return buildRefreshedRow(old, weights)
	})
}

// buildRefreshedRow implements the refresher's row-build rule: every known
// PS that was NO_PLACEMENT in the old row stays NO_PLACEMENT; every other
// known PS takes the generator's weight if it produced one, else
// MISSING_VALUE. When the sample window is empty, generate returns a nil
// weights map, so every non-NO_PLACEMENT entry resets to MISSING_VALUE
// here rather than keeping its prior weight — the next tick re-explores
// that class from scratch instead of routing on a stale distribution.
func buildRefreshedRow(old *routing.Row, weights map[string]routing.Weight) *routing.Row {
	var entries []routing.RowEntry
	old.Each(func(ps routing.PS, w routing.Weight) {
		if w == routing.NoPlacement {
			entries = append(entries, routing.RowEntry{PS: ps, Weight: routing.NoPlacement})
			return
		}
		if nw, ok := weights[ps.Key()]; ok {
			entries = append(entries, routing.RowEntry{PS: ps, Weight: nw})
			return
		}
		entries = append(entries, routing.RowEntry{PS: ps, Weight: routing.MissingValue})
	})
	return routing.NewRow(entries)
}
