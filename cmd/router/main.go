package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/polypheny/adaptive-router/router/introspect"
	"github.com/polypheny/adaptive-router/router/routing"
)

var params AppParams

func main() {
	root := &cobra.Command{
		Use:   "router",
		Short: "Adaptive unified router for a polyglot database system",
	}

	root.PersistentFlags().StringVar(&params.PostgresDSN, "postgres-dsn", envOr("ROUTER_POSTGRES_DSN", "postgres://localhost:5432/polypheny"), "catalog and durable-log Postgres DSN")
	root.PersistentFlags().StringVar(&params.RedisAddr, "redis-addr", envOr("ROUTER_REDIS_ADDR", "localhost:6379"), "Redis address for the timing-sample window")
	root.PersistentFlags().StringVar(&params.AdminAddr, "admin-addr", envOr("ROUTER_ADMIN_ADDR", ":8090"), "admin HTTP server listen address")
	root.PersistentFlags().StringVar(&params.MongoURI, "mongo-uri", envOr("ROUTER_MONGO_URI", ""), "MongoDB adapter connection URI, empty to disable")
	root.PersistentFlags().StringVar(&params.MongoDatabase, "mongo-database", envOr("ROUTER_MONGO_DATABASE", ""), "MongoDB adapter database name")
	root.PersistentFlags().StringVar(&params.BlockchainChainID, "blockchain-chain-id", envOr("ROUTER_BLOCKCHAIN_CHAIN_ID", ""), "blockchain adapter chain id, empty to disable")
	root.PersistentFlags().StringVar(&params.SQLDriver, "sql-driver", envOr("ROUTER_SQL_DRIVER", ""), "database/sql driver name for an additional relational adapter (postgres, mysql), empty to disable")
	root.PersistentFlags().StringVar(&params.SQLDSN, "sql-dsn", envOr("ROUTER_SQL_DSN", ""), "data source name for the database/sql adapter")
	root.PersistentFlags().StringVar(&params.SQLAdapterName, "sql-adapter-name", envOr("ROUTER_SQL_ADAPTER_NAME", "sql"), "adapter name the database/sql adapter registers under")

	root.AddCommand(serveCmd(), introspectCmd(), dropPlacementCmd())

	// Before the per-component zap loggers exist, bootstrap failures (bad
	// flags, a command erroring before buildApp constructs its logger) go
	// through logrus rather than a bare fmt.Println/os.Exit.
	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("router: command failed")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// serveCmd starts the refresher and admin HTTP server and blocks until
// interrupted.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the router process",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("router: failed to create logger: %w", err)
			}
			defer logger.Sync()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			app, err := buildApp(ctx, params, logger)
			if err != nil {
				return fmt.Errorf("router: failed to build app: %w", err)
			}

			app.Start(ctx)

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			logger.Info("shutting down router")
			app.Stop()
			return nil
		},
	}
}

// introspectCmd prints the current routing table as JSON, for operators
// inspecting router state without a separate HTTP client.
func introspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "introspect",
		Short: "Print the current routing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("router: failed to create logger: %w", err)
			}
			defer logger.Sync()

			ctx := context.Background()
			app, err := buildApp(ctx, params, logger)
			if err != nil {
				return fmt.Errorf("router: failed to build app: %w", err)
			}
			defer app.Stop()

			view := introspect.Snapshot(app.Table)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}
}

// dropPlacementCmd removes every routing-table row's candidate for the
// given adapter id, e.g. after decommissioning an adapter.
func dropPlacementCmd() *cobra.Command {
	var adapterID int
	cmd := &cobra.Command{
		Use:   "drop-placement",
		Short: "Drop an adapter's candidate placements from the routing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("router: failed to create logger: %w", err)
			}
			defer logger.Sync()

			ctx := context.Background()
			app, err := buildApp(ctx, params, logger)
			if err != nil {
				return fmt.Errorf("router: failed to build app: %w", err)
			}
			defer app.Stop()

			app.Table.DropPlacements([]routing.AID{routing.AID(adapterID)})
			return nil
		},
	}
	cmd.Flags().IntVar(&adapterID, "adapter-id", 0, "adapter id to drop")
	return cmd
}
