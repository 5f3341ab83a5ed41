package ddl

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/polypheny/adaptive-router/internal/routererr"
)

// breakerState is the circuit's current state.
type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// BreakerConfig controls when a circuit trips and how long it stays open
// before a probe call is let through.
type BreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// DefaultBreakerConfig mirrors the teacher's processor defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 3,
		OpenTimeout:      30 * time.Second,
	}
}

// CircuitBreaker wraps one adapter's Truncater: a repeatedly failing
// adapter stops receiving truncate calls for OpenTimeout rather than being
// hammered on every call. Once OpenTimeout has passed the circuit is
// half-open: calls reach the adapter again, SuccessThreshold consecutive
// successes close the circuit, and any failure reopens it.
type CircuitBreaker struct {
	next   Truncater
	name   string
	logger *zap.Logger
	cfg    BreakerConfig

	mu               sync.Mutex
	state            breakerState
	consecutiveFails int
	successesSeen    int
	openedAt         time.Time
}

// NewCircuitBreaker wraps next, an adapter identified by name for logging.
func NewCircuitBreaker(name string, next Truncater, logger *zap.Logger, cfg BreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{next: next, name: name, logger: logger, cfg: cfg}
}

// Truncate calls next.Truncate unless the circuit is open, in which case
// it fails fast with ErrAdapterCircuitOpen.
func (cb *CircuitBreaker) Truncate(ctx context.Context, table string) error {
	if !cb.allow() {
		return routererr.ErrAdapterCircuitOpen
	}

	err := cb.next.Truncate(ctx, table)
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return true
	case stateOpen:
		if time.Since(cb.openedAt) < cb.cfg.OpenTimeout {
			return false
		}
		cb.state = stateHalfOpen
		cb.successesSeen = 0
		cb.logger.Info("adapter circuit half-open", zap.String("adapter", cb.name))
		return true
	default: // stateHalfOpen
		return true
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFails++

	switch cb.state {
	case stateHalfOpen:
		cb.trip()
	case stateClosed:
		if cb.consecutiveFails >= cb.cfg.FailureThreshold {
			cb.trip()
		}
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFails = 0

	if cb.state == stateHalfOpen {
		cb.successesSeen++
		if cb.successesSeen >= cb.cfg.SuccessThreshold {
			cb.state = stateClosed
			cb.logger.Info("adapter circuit closed", zap.String("adapter", cb.name))
		}
	}
}

func (cb *CircuitBreaker) trip() {
	cb.state = stateOpen
	cb.openedAt = time.Now()
	cb.logger.Warn("adapter circuit open",
		zap.String("adapter", cb.name),
		zap.Int("consecutive_fails", cb.consecutiveFails))
}
