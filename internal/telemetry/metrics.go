// Package telemetry instruments the router with OpenTelemetry metrics,
// exported through a Prometheus registry for the admin HTTP surface's
// /metrics endpoint.
package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds every instrument the router emits.
type Metrics struct {
	meter metric.Meter

	selections      metric.Int64Counter
	selectionErrors metric.Int64Counter
	refreshRuns     metric.Int64Counter
	refreshErrors   metric.Int64Counter
	rowSumMismatch  metric.Int64Counter
	executionTime   metric.Float64Histogram
	classifyTime    metric.Float64Histogram
}

// New builds a Metrics instance backed by registry, registering a
// Prometheus exporter as the OTel meter provider's reader so both APIs
// read from the same underlying data.
func New(registry *prometheus.Registry) (*Metrics, error) {
	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("adaptive-router")

	m := &Metrics{meter: meter}

	if m.selections, err = meter.Int64Counter(
		"router_selections_total",
		metric.WithDescription("Total number of placement set selections"),
	); err != nil {
		return nil, err
	}
	if m.selectionErrors, err = meter.Int64Counter(
		"router_selection_errors_total",
		metric.WithDescription("Total number of selection failures"),
	); err != nil {
		return nil, err
	}
	if m.refreshRuns, err = meter.Int64Counter(
		"router_refresh_runs_total",
		metric.WithDescription("Total number of per-query-class refreshes run"),
	); err != nil {
		return nil, err
	}
	if m.refreshErrors, err = meter.Int64Counter(
		"router_refresh_errors_total",
		metric.WithDescription("Total number of per-query-class refreshes that failed to fetch samples"),
	); err != nil {
		return nil, err
	}
	if m.rowSumMismatch, err = meter.Int64Counter(
		"router_row_sum_mismatch_total",
		metric.WithDescription("Total number of refreshed rows whose weights summed to more than 100"),
	); err != nil {
		return nil, err
	}
	if m.executionTime, err = meter.Float64Histogram(
		"router_execution_time_ms",
		metric.WithDescription("Observed query execution time per selected placement set"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.classifyTime, err = meter.Float64Histogram(
		"router_classify_time_ms",
		metric.WithDescription("Time taken to classify a plan into a query class"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordSelection records one selection outcome.
func (m *Metrics) RecordSelection(ctx context.Context, err error) {
	if err != nil {
		m.selectionErrors.Add(ctx, 1)
		return
	}
	m.selections.Add(ctx, 1)
}

// RecordRefresh records one refresh tick's outcome for a single query
// class.
func (m *Metrics) RecordRefresh(ctx context.Context, err error) {
	m.refreshRuns.Add(ctx, 1)
	if err != nil {
		m.refreshErrors.Add(ctx, 1)
	}
}

// RecordRowSumMismatch records the row generator's S > 100 error
// condition.
func (m *Metrics) RecordRowSumMismatch(ctx context.Context) {
	m.rowSumMismatch.Add(ctx, 1)
}

// RecordExecutionTime records one feedback sample's elapsed time.
func (m *Metrics) RecordExecutionTime(ctx context.Context, ms float64) {
	m.executionTime.Record(ctx, ms)
}

// RecordClassifyTime records how long one Classify call took.
func (m *Metrics) RecordClassifyTime(ctx context.Context, ms float64) {
	m.classifyTime.Record(ctx, ms)
}
