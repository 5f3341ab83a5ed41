// Package database provides database/sql connection pool configuration
// for adapters that reach a physical store through database/sql rather
// than pgx's native pool — currently adapters/sqladapter, registered
// optionally alongside the Mongo and blockchain adapters.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// ConnectionPoolConfig defines connection pool sizing for a database/sql
// driver.
type ConnectionPoolConfig struct {
	// Maximum number of open connections to prevent resource exhaustion
	MaxOpenConnections int `json:"max_open_connections" yaml:"max_open_connections"`

	// Maximum number of idle connections in the pool
	MaxIdleConnections int `json:"max_idle_connections" yaml:"max_idle_connections"`

	// Maximum amount of time a connection may be reused
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`

	// Maximum amount of time a connection may be idle
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time"`
}

// DefaultConnectionPoolConfig returns the default database/sql pool
// settings used by adapters/sqladapter.
func DefaultConnectionPoolConfig() ConnectionPoolConfig {
	return ConnectionPoolConfig{
		MaxOpenConnections: 25,
		MaxIdleConnections: 5,
		ConnMaxLifetime:    5 * time.Minute,
		ConnMaxIdleTime:    5 * time.Minute,
	}
}

// TestConnectionPoolConfig returns connection pool settings optimized for testing
func TestConnectionPoolConfig() ConnectionPoolConfig {
	return ConnectionPoolConfig{
		MaxOpenConnections: 10,              // Lower for tests
		MaxIdleConnections: 2,               // Minimal for tests
		ConnMaxLifetime:    2 * time.Minute, // Shorter for tests
		ConnMaxIdleTime:    1 * time.Minute, // Shorter for tests
	}
}

// ConfigureConnectionPool applies pool settings to an open database/sql
// connection.
func ConfigureConnectionPool(db *sql.DB, config ConnectionPoolConfig, logger *zap.Logger) {
	if logger != nil {
		logger.Info("Configuring database connection pool",
			zap.Int("max_open_connections", config.MaxOpenConnections),
			zap.Int("max_idle_connections", config.MaxIdleConnections),
			zap.Duration("conn_max_lifetime", config.ConnMaxLifetime),
			zap.Duration("conn_max_idle_time", config.ConnMaxIdleTime))
	}

	db.SetMaxOpenConns(config.MaxOpenConnections)
	db.SetMaxIdleConns(config.MaxIdleConnections)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)
}

// OpenWithPool opens a database/sql connection and applies config to its
// pool.
func OpenWithPool(driver, dataSource string, config ConnectionPoolConfig, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open(driver, dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	ConfigureConnectionPool(db, config, logger)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if logger != nil {
		logger.Info("Database connection established", zap.String("driver", driver))
	}

	return db, nil
}

// GetPoolStats returns current connection pool statistics
func GetPoolStats(db *sql.DB) sql.DBStats {
	return db.Stats()
}

// LogPoolStats logs current connection pool statistics
func LogPoolStats(db *sql.DB, logger *zap.Logger, component string) {
	if logger == nil {
		return
	}

	stats := GetPoolStats(db)

	logger.Info("Database connection pool statistics",
		zap.String("component", component),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration),
		zap.Int64("max_idle_closed", stats.MaxIdleClosed),
		zap.Int64("max_idle_time_closed", stats.MaxIdleTimeClosed),
		zap.Int64("max_lifetime_closed", stats.MaxLifetimeClosed))
}

// ValidatePoolConfig checks a ConnectionPoolConfig for internal
// consistency.
func ValidatePoolConfig(config ConnectionPoolConfig) error {
	if config.MaxOpenConnections <= 0 {
		return fmt.Errorf("max_open_connections must be positive")
	}
	if config.MaxIdleConnections < 0 {
		return fmt.Errorf("max_idle_connections cannot be negative")
	}
	if config.MaxIdleConnections > config.MaxOpenConnections {
		return fmt.Errorf("max_idle_connections (%d) cannot exceed max_open_connections (%d)",
			config.MaxIdleConnections, config.MaxOpenConnections)
	}
	if config.ConnMaxLifetime <= 0 {
		return fmt.Errorf("conn_max_lifetime must be positive")
	}
	if config.ConnMaxIdleTime <= 0 {
		return fmt.Errorf("conn_max_idle_time must be positive")
	}
	return nil
}
