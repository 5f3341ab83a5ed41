package routerconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polypheny/adaptive-router/router/classify"
)

func validConfig() *Config {
	return &Config{
		Training:                           true,
		WindowSize:                         25,
		ShortRunningSimilarThreshold:       10,
		LongRunningSimilarThreshold:        20,
		ShortRunningLongRunningThresholdMS: 1000,
		QueryClassProvider:                 classify.Parameterizer,
	}
}

func TestValidateRejectsNonPositiveWindowSize(t *testing.T) {
	cfg := validConfig()
	cfg.WindowSize = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangePercentages(t *testing.T) {
	cfg := validConfig()
	cfg.ShortRunningSimilarThreshold = 101
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.LongRunningSimilarThreshold = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	cfg := validConfig()
	cfg.QueryClassProvider = classify.Strategy("NOT_A_STRATEGY")
	assert.Error(t, cfg.Validate())
}

func TestValidateAcceptsDefaultConfig(t *testing.T) {
	assert.NoError(t, createDefaultConfig().Validate())
}

func TestLiveSwapRejectsInvalidConfig(t *testing.T) {
	live := NewLive()
	before := live.Load()

	bad := validConfig()
	bad.WindowSize = -5
	err := live.Swap(bad)
	assert.Error(t, err)
	assert.Same(t, before, live.Load())
}

func TestLiveSwapInstallsValidConfig(t *testing.T) {
	live := NewLive()
	next := validConfig()

	require.NoError(t, live.Swap(next))
	assert.Same(t, next, live.Load())
	assert.Equal(t, 25, live.WindowSize())
	assert.Equal(t, 10, live.ShortSimilarPct())
}

func TestThresholdsConvertsMillisecondsToNanoseconds(t *testing.T) {
	live := NewLive()
	require.NoError(t, live.Swap(validConfig()))

	th := live.Thresholds()
	assert.Equal(t, float64(1000*1_000_000), th.ShortLongNanos)
	assert.Equal(t, 10, th.ShortSimilarPct)
	assert.Equal(t, 20, th.LongSimilarPct)
}
