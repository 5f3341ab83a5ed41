// Hand-wired dependency injection, in the shape github.com/google/wire
// would generate: each provider call assigned to a local, passed forward
// explicitly, with errors checked after every fallible step. Not run
// through the wire binary — the router's dependency graph is small and
// stable enough that a generator adds more ceremony than it saves, but
// the construction order and error handling follow the same discipline.
package main

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/polypheny/adaptive-router/adapters/blockchainadapter"
	"github.com/polypheny/adaptive-router/adapters/mongoadapter"
	"github.com/polypheny/adaptive-router/adapters/sqladapter"
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

// refreshInterval is the routing table's refresh cadence.
const refreshInterval = 5 * time.Second

// AppParams carries the external connection strings and addresses
// buildApp needs; everything it doesn't need (refresh interval, hasher
// cache size) has a sane built-in default.
type AppParams struct {
	PostgresDSN string
	RedisAddr   string
	AdminAddr   string

	// MongoURI and MongoDatabase, if both set, register the MongoDB
	// adapter under the name "mongo". BlockchainChainID, if set, registers
	// the blockchain adapter under the name "blockchain". SQLDriver and
	// SQLDSN, if both set, register a database/sql-backed adapter (via
	// internal/database.OpenWithPool) under SQLAdapterName, or "sql" if
	// that's empty.
	MongoURI          string
	MongoDatabase     string
	BlockchainChainID string
	SQLDriver         string
	SQLDSN            string
	SQLAdapterName    string
}

// buildApp wires every router component into a runnable App.
func buildApp(ctx context.Context, params AppParams, logger *zap.Logger) (*App, error) {
	pgPool, err := pgxpool.New(ctx, params.PostgresDSN)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{Addr: params.RedisAddr})

	config := routerconfig.NewLive()

	catalogClient := catalog.New(pgPool)

	promRegistry, promHandler := newPrometheusHandlerAndRegistry()
	metrics, err := telemetry.New(promRegistry)
	if err != nil {
		return nil, err
	}

	durableLog := monitor.NewDurableLog(pgPool, logger, rate.NewLimiter(rate.Limit(50), 100))
	monitorClient := monitor.New(rdb, logger, config.WindowSize).
		WithDurableLog(durableLog).
		WithMetrics(metrics)

	registry := routing.NewRegistry()
	table := routing.NewTable(registry, monitorClient)

	hasher, err := classify.New(config.Strategy, 10000)
	if err != nil {
		return nil, err
	}
	hasher.WithMetrics(metrics)

	policy := selection.New(config)
	intakeLayer := intake.New(monitorClient)

	routerEngine := engine.New(hasher, table, catalogClient, policy, intakeLayer, metrics)

	refresher := refresh.New(table, monitorClient, config, logger, refreshInterval).
		WithMetrics(metrics)

	adapters, err := buildAdapters(ctx, params, logger)
	if err != nil {
		return nil, err
	}
	adminAdapters := make(map[string]adminserver.AdapterTruncater, len(adapters))
	for name, a := range adapters {
		adminAdapters[name] = a
	}

	admin := adminserver.New(params.AdminAddr, config, table, promHandler, logger, adminAdapters, routerEngine)

	return &App{
		Logger:    logger,
		Config:    config,
		Table:     table,
		Hasher:    hasher,
		Policy:    policy,
		Intake:    intakeLayer,
		Engine:    routerEngine,
		Catalog:   catalogClient,
		Monitor:   monitorClient,
		Durable:   durableLog,
		Telemetry: metrics,
		Refresher: refresher,
		Admin:     admin,
		Adapters:  adapters,
		pgPool:    pgPool,
	}, nil
}

// buildAdapters registers every physical-store adapter whose connection
// parameters were supplied, each wrapped in its own circuit breaker so a
// failing store stops receiving truncate calls rather than being hammered
// on every one.
func buildAdapters(ctx context.Context, params AppParams, logger *zap.Logger) (map[string]ddl.Truncater, error) {
	adapters := make(map[string]ddl.Truncater)

	if params.MongoURI != "" && params.MongoDatabase != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(params.MongoURI))
		if err != nil {
			return nil, err
		}
		mongoTruncater := mongoadapter.New(client.Database(params.MongoDatabase))
		adapters["mongo"] = ddl.NewCircuitBreaker("mongo", mongoTruncater, logger, ddl.DefaultBreakerConfig())
	}

	if params.BlockchainChainID != "" {
		chainTruncater := blockchainadapter.New(params.BlockchainChainID)
		adapters["blockchain"] = ddl.NewCircuitBreaker("blockchain", chainTruncater, logger, ddl.DefaultBreakerConfig())
	}

	if params.SQLDriver != "" && params.SQLDSN != "" {
		sqlTruncater, err := sqladapter.New(params.SQLDriver, params.SQLDSN, logger)
		if err != nil {
			return nil, err
		}
		name := params.SQLAdapterName
		if name == "" {
			name = "sql"
		}
		adapters[name] = ddl.NewCircuitBreaker(name, sqlTruncater, logger, ddl.DefaultBreakerConfig())
	}

	return adapters, nil
}
