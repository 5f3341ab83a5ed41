// Package routerconfig holds the router's six enumerated runtime-mutable
// configuration fields. A single process-wide value lives behind an
// atomic pointer so the admin HTTP surface can swap it in response to an
// operator edit, and every reader (classifier, refresher, selection
// policy) picks up the new value on its next read without restart.
package routerconfig

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/polypheny/adaptive-router/router/classify"
	"github.com/polypheny/adaptive-router/router/refresh"
)

// Config holds the router's runtime-mutable knobs.
type Config struct {
	// Training is stored, validated and reported through Live.Training.
	// No component reads it: intake forwards feedback events and the
	// refresher rewrites rows whatever its value.
	Training bool `mapstructure:"training"`

	// WindowSize is the advisory moving-average window (sample count) the
	// monitoring service retains per query class.
	WindowSize int `mapstructure:"window_size"`

	// ShortRunningSimilarThreshold is the similarity band, as a percent,
	// for queries faster than ShortRunningLongRunningThresholdMS. Zero
	// disables weighted choice for the short regime.
	ShortRunningSimilarThreshold int `mapstructure:"short_running_similar_threshold"`

	// LongRunningSimilarThreshold is the same, for the long regime.
	LongRunningSimilarThreshold int `mapstructure:"long_running_similar_threshold"`

	// ShortRunningLongRunningThresholdMS is the boundary, in
	// milliseconds, between the short and long regimes.
	ShortRunningLongRunningThresholdMS int `mapstructure:"short_running_long_running_threshold_ms"`

	// QueryClassProvider selects the query class hasher strategy.
	QueryClassProvider classify.Strategy `mapstructure:"query_class_provider"`
}

// Validate checks a Config for internal consistency.
func (c *Config) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("window_size must be positive, got: %d", c.WindowSize)
	}
	if c.ShortRunningSimilarThreshold < 0 || c.ShortRunningSimilarThreshold > 100 {
		return fmt.Errorf("short_running_similar_threshold must be in [0, 100], got: %d", c.ShortRunningSimilarThreshold)
	}
	if c.LongRunningSimilarThreshold < 0 || c.LongRunningSimilarThreshold > 100 {
		return fmt.Errorf("long_running_similar_threshold must be in [0, 100], got: %d", c.LongRunningSimilarThreshold)
	}
	if c.ShortRunningLongRunningThresholdMS < 0 {
		return fmt.Errorf("short_running_long_running_threshold_ms cannot be negative, got: %d", c.ShortRunningLongRunningThresholdMS)
	}
	switch c.QueryClassProvider {
	case classify.StructuralShuttle, classify.Parameterizer:
	default:
		return fmt.Errorf("query_class_provider must be STRUCTURAL_SHUTTLE or PARAMETERIZER, got: %s", c.QueryClassProvider)
	}
	return nil
}

// createDefaultConfig returns the router's documented defaults.
func createDefaultConfig() *Config {
	return &Config{
		Training:                           true,
		WindowSize:                         25,
		ShortRunningSimilarThreshold:       0,
		LongRunningSimilarThreshold:        0,
		ShortRunningLongRunningThresholdMS: 1000,
		QueryClassProvider:                 classify.Parameterizer,
	}
}

// ShortLongThresholdNanos converts ShortRunningLongRunningThresholdMS to
// nanoseconds, the unit the row generator compares mean times in.
func (c *Config) ShortLongThresholdNanos() float64 {
	return float64(c.ShortRunningLongRunningThresholdMS) * float64(time.Millisecond)
}

// Live is the process-wide, atomically-swappable configuration value.
// Live.Load() never returns nil once NewLive has been called.
type Live struct {
	ptr atomic.Pointer[Config]
}

// NewLive builds a Live initialized to the router's default config.
func NewLive() *Live {
	l := &Live{}
	l.ptr.Store(createDefaultConfig())
	return l
}

// Load returns the current configuration snapshot.
func (l *Live) Load() *Config {
	return l.ptr.Load()
}

// Swap installs cfg as the new live configuration after validating it.
func (l *Live) Swap(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("routerconfig: refusing invalid config: %w", err)
	}
	l.ptr.Store(cfg)
	return nil
}

// Strategy adapts Live to classify.Hasher's strategyFn contract.
func (l *Live) Strategy() classify.Strategy {
	return l.Load().QueryClassProvider
}

// Training reports the current Training value. Feedback forwarding and
// the refresher do not consult it.
func (l *Live) Training() bool {
	return l.Load().Training
}

// WindowSize adapts Live to internal/monitor.Client's windowSize contract.
func (l *Live) WindowSize() int {
	return l.Load().WindowSize
}

// ShortSimilarPct adapts Live to router/selection.ConfigSource.
func (l *Live) ShortSimilarPct() int {
	return l.Load().ShortRunningSimilarThreshold
}

// Thresholds adapts Live to router/refresh.ConfigSource.
func (l *Live) Thresholds() refresh.Thresholds {
	cfg := l.Load()
	return refresh.Thresholds{
		ShortLongNanos:  cfg.ShortLongThresholdNanos(),
		ShortSimilarPct: cfg.ShortRunningSimilarThreshold,
		LongSimilarPct:  cfg.LongRunningSimilarThreshold,
	}
}
