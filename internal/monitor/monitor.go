// Package monitor implements the external monitoring service collaborator:
// the router's feedback sink (monitorEvent) and the refresher's data
// source (getRoutingDataPoints). Samples are written to Redis, keyed by
// query class, for low-latency intake off the request path; the refresher
// reads them back and reduces to per-PS means.
package monitor

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/polypheny/adaptive-router/router/refresh"
	"github.com/polypheny/adaptive-router/router/routing"
)

// DataPoint is one recorded execution-time sample.
type DataPoint struct {
	QC    routing.QC
	PS    routing.PS
	Nanos int64
}

// MetricsSink receives every recorded execution-time sample, if the
// caller wires one.
type MetricsSink interface {
	RecordExecutionTime(ctx context.Context, ms float64)
}

// Client is the monitoring service: a Redis-backed list of timing
// samples per query class, retained up to WindowSize entries (the
// configured advisory moving-average window). An optional DurableLog
// additionally persists every sample to Postgres as an audit trail; the
// refresher never reads from it, only from Redis.
type Client struct {
	redis      *redis.Client
	logger     *zap.Logger
	windowSize func() int
	durable    *DurableLog
	metrics    MetricsSink
}

// New builds a Client. windowSize is read on every write so the
// windowSize config knob can change at runtime.
func New(rdb *redis.Client, logger *zap.Logger, windowSize func() int) *Client {
	return &Client{redis: rdb, logger: logger, windowSize: windowSize}
}

// WithDurableLog attaches a durable audit log that every recorded sample
// is additionally appended to.
func (c *Client) WithDurableLog(d *DurableLog) *Client {
	c.durable = d
	return c
}

// WithMetrics attaches a MetricsSink that observes every recorded sample's
// execution time.
func (c *Client) WithMetrics(m MetricsSink) *Client {
	c.metrics = m
	return c
}

func sampleKey(qc routing.QC) string {
	return "router:samples:" + string(qc)
}

// Monitor implements routing.EventSink: record one execution-time sample
// for (qc, ps), trimming the retained list to the configured window. It
// returns at once: the Redis write, the durable-log append and the metrics
// observation run on their own goroutine under a two-second timeout, so a
// slow Redis round trip never holds up the caller.
func (c *Client) Monitor(qc routing.QC, ps routing.PS, nanos int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.RecordSample(ctx, qc, ps, nanos); err != nil {
			c.logger.Warn("monitor: failed to record sample",
				zap.String("qc", string(qc)), zap.Error(err))
		}

		if c.durable != nil {
			if err := c.durable.Append(ctx, qc, ps, nanos); err != nil {
				c.logger.Warn("monitor: failed to append durable sample",
					zap.String("qc", string(qc)), zap.Error(err))
			}
		}

		if c.metrics != nil {
			c.metrics.RecordExecutionTime(ctx, float64(nanos)/float64(time.Millisecond))
		}
	}()
}

// RecordSample appends one timing sample and trims the list to the
// configured window, via a Redis pipeline so both operations round-trip
// once.
func (c *Client) RecordSample(ctx context.Context, qc routing.QC, ps routing.PS, nanos int64) error {
	key := sampleKey(qc)
	value := ps.Key() + "|" + strconv.FormatInt(nanos, 10)
	window := c.windowSize()

	pipe := c.redis.TxPipeline()
	pipe.LPush(ctx, key, value)
	pipe.LTrim(ctx, key, 0, int64(window-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "monitor: record sample for %s", qc)
	}
	return nil
}

// MeanTimes implements router/refresh.Source: the arithmetic mean of
// retained nanosecond samples per PS, for qc.
func (c *Client) MeanTimes(ctx context.Context, qc routing.QC) ([]refresh.Sample, error) {
	raw, err := c.redis.LRange(ctx, sampleKey(qc), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "monitor: fetch samples for %s", qc)
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	psByKey := make(map[string]routing.PS)

	for _, entry := range raw {
		psKey, nanos, ok := splitSample(entry)
		if !ok {
			continue
		}
		sums[psKey] += float64(nanos)
		counts[psKey]++
		if _, seen := psByKey[psKey]; !seen {
			ps, parseErr := parsePSKey(psKey)
			if parseErr != nil {
				continue
			}
			psByKey[psKey] = ps
		}
	}

	samples := make([]refresh.Sample, 0, len(sums))
	for psKey, sum := range sums {
		ps, ok := psByKey[psKey]
		if !ok {
			continue
		}
		samples = append(samples, refresh.Sample{
			PS:        ps,
			MeanNanos: sum / float64(counts[psKey]),
		})
	}
	return samples, nil
}
