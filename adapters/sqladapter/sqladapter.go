// Package sqladapter implements the router's adapter façade for a
// relational data store reached through database/sql rather than the
// router's own pgx-backed catalog/durable-log pool — e.g. a standalone
// Postgres or MySQL instance registered as a physical store placement
// candidate, not the catalog's own backing database.
package sqladapter

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/polypheny/adaptive-router/internal/database"
)

// identifierPattern bounds what Truncate will interpolate into a
// statement: TRUNCATE TABLE takes no placeholder parameter in either
// lib/pq or go-sql-driver/mysql, so the table name must be validated
// rather than bound.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Adapter wraps a database/sql connection pool opened through
// internal/database.OpenWithPool.
type Adapter struct {
	db *sql.DB
}

// New opens a database/sql connection for driver ("postgres" or "mysql")
// and dataSource, sized with the router's default connection pool
// config, and returns an Adapter over it.
func New(driver, dataSource string, logger *zap.Logger) (*Adapter, error) {
	db, err := database.OpenWithPool(driver, dataSource, database.DefaultConnectionPoolConfig(), logger)
	if err != nil {
		return nil, err
	}
	database.LogPoolStats(db, logger, "sqladapter")
	return &Adapter{db: db}, nil
}

// Close releases the underlying connection pool.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Truncate empties table. table must be a bare SQL identifier; anything
// else is rejected rather than interpolated into the statement.
func (a *Adapter) Truncate(ctx context.Context, table string) error {
	if !identifierPattern.MatchString(table) {
		return fmt.Errorf("sqladapter: invalid table identifier %q", table)
	}
	_, err := a.db.ExecContext(ctx, "TRUNCATE TABLE "+table)
	return err
}
