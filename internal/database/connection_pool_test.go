package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConnectionPoolConfigIsValid(t *testing.T) {
	assert.NoError(t, ValidatePoolConfig(DefaultConnectionPoolConfig()))
}

func TestValidatePoolConfigRejectsNonPositiveMaxOpen(t *testing.T) {
	cfg := DefaultConnectionPoolConfig()
	cfg.MaxOpenConnections = 0
	assert.Error(t, ValidatePoolConfig(cfg))
}

func TestValidatePoolConfigRejectsIdleExceedingOpen(t *testing.T) {
	cfg := DefaultConnectionPoolConfig()
	cfg.MaxIdleConnections = cfg.MaxOpenConnections + 1
	assert.Error(t, ValidatePoolConfig(cfg))
}

func TestTestConnectionPoolConfigIsValid(t *testing.T) {
	assert.NoError(t, ValidatePoolConfig(TestConnectionPoolConfig()))
}

func TestValidatePoolConfigRejectsNonPositiveLifetimes(t *testing.T) {
	cfg := DefaultConnectionPoolConfig()
	cfg.ConnMaxLifetime = 0
	assert.Error(t, ValidatePoolConfig(cfg))

	cfg = DefaultConnectionPoolConfig()
	cfg.ConnMaxIdleTime = 0
	assert.Error(t, ValidatePoolConfig(cfg))
}
