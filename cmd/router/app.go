package main

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/polypheny/adaptive-router/internal/adminserver"
	"github.com/polypheny/adaptive-router/internal/catalog"
	"github.com/polypheny/adaptive-router/internal/monitor"
	"github.com/polypheny/adaptive-router/internal/routerconfig"
	"github.com/polypheny/adaptive-router/internal/telemetry"
	"github.com/polypheny/adaptive-router/router/classify"
	"github.com/polypheny/adaptive-router/router/ddl"
	"github.com/polypheny/adaptive-router/router/engine"
	"github.com/polypheny/adaptive-router/router/intake"
	"github.com/polypheny/adaptive-router/router/refresh"
	"github.com/polypheny/adaptive-router/router/routing"
	"github.com/polypheny/adaptive-router/router/selection"
)

// App is the assembled router process: every singleton component wired
// together, with a config-driven lifecycle (Start/Stop).
type App struct {
	Logger    *zap.Logger
	Config    *routerconfig.Live
	Table     *routing.Table
	Hasher    *classify.Hasher
	Policy    *selection.Policy
	Intake    *intake.Intake
	Engine    *engine.Engine
	Catalog   *catalog.Client
	Monitor   *monitor.Client
	Durable   *monitor.DurableLog
	Telemetry *telemetry.Metrics
	Refresher *refresh.Refresher
	Admin     *adminserver.Server
	Adapters  map[string]ddl.Truncater

	pgPool *pgxpool.Pool
}

// Start launches the background refresher and admin HTTP server. It does
// not block; call Stop to shut everything down.
func (a *App) Start(ctx context.Context) {
	a.Refresher.Start(ctx)
	go func() {
		if err := a.Admin.ListenAndServe(); err != nil {
			a.Logger.Error("admin server exited", zap.Error(err))
		}
	}()
}

// Stop shuts down the refresher, the admin server, and the database
// connection pool, in reverse dependency order.
func (a *App) Stop() {
	a.Refresher.Stop()
	if err := a.Admin.Shutdown(); err != nil {
		a.Logger.Warn("admin server shutdown error", zap.Error(err))
	}
	a.pgPool.Close()
}

func newPrometheusHandlerAndRegistry() (*prometheus.Registry, http.Handler) {
	reg := prometheus.NewRegistry()
	return reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
