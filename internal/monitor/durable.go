package monitor

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/polypheny/adaptive-router/router/routing"
)

// DurableLog is the Postgres-backed durable record of timing samples,
// independent of Redis's bounded retention window. It exists so samples
// survive a Redis restart and so operators can audit routing decisions
// after the fact; the refresher itself never reads from here — only from
// the fast Redis tier.
type DurableLog struct {
	pool    *pgxpool.Pool
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewDurableLog builds a DurableLog backed by pool. limiter bounds the
// rate of durable writes so a query-heavy workload cannot overwhelm the
// archival store; the fast Redis tier has no such limit since it is the
// path the refresher actually depends on.
func NewDurableLog(pool *pgxpool.Pool, logger *zap.Logger, limiter *rate.Limiter) *DurableLog {
	return &DurableLog{pool: pool, logger: logger, limiter: limiter}
}

// Append records one sample in the durable log. It silently drops the
// write (logging at debug level) when the rate limiter is exhausted,
// since the durable log is an audit trail, not the refresher's source of
// truth.
func (d *DurableLog) Append(ctx context.Context, qc routing.QC, ps routing.PS, nanos int64) error {
	if !d.limiter.Allow() {
		d.logger.Debug("monitor: durable log write dropped by rate limiter",
			zap.String("qc", string(qc)))
		return nil
	}

	_, err := d.pool.Exec(ctx,
		`INSERT INTO router_timing_samples (qc, ps, nanos, recorded_at) VALUES ($1, $2, $3, $4)`,
		string(qc), ps.Key(), nanos, time.Now())
	if err != nil {
		return errors.Wrapf(err, "monitor: durable log append for %s", qc)
	}
	return nil
}
