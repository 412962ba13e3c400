package predictor

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/VL13N/FullStackNexus-sub005/internal/utils"
)

// BreakerState is the circuit state guarding sidecar calls.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// BreakerConfig tunes the sidecar circuit breaker.
type BreakerConfig struct {
	FailureThreshold int           // consecutive failures before opening
	SuccessThreshold int           // successes in half-open before closing
	CoolDown         time.Duration // open duration before probing again
}

// Breaker wraps sidecar calls with a circuit breaker so a dead predictor
// does not burn a fetch attempt (and a warning log) on every poll tick.
type Breaker struct {
	config BreakerConfig
	logger *logrus.Logger
	now    func() time.Time

	mu           sync.Mutex
	state        BreakerState
	failureCount int
	successCount int
	openedAt     time.Time
}

// NewBreaker creates a circuit breaker with sane defaults for unset fields.
func NewBreaker(config BreakerConfig, logger *logrus.Logger) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 3
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if config.CoolDown <= 0 {
		config.CoolDown = 5 * time.Minute
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Breaker{
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Execute runs fn under the breaker. When the circuit is open the call is
// rejected without invoking fn.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if !b.allow() {
		return utils.NewServiceUnavailableError("predictor", errCircuitOpen)
	}

	err := fn(ctx)
	if err != nil {
		b.onFailure(err)
	} else {
		b.onSuccess()
	}
	return err
}

// State returns the current circuit state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

var errCircuitOpen = circuitOpenError{}

type circuitOpenError struct{}

func (circuitOpenError) Error() string { return "circuit breaker is open" }

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.config.CoolDown {
			return false
		}
		b.transition(BreakerHalfOpen)
		b.successCount = 0
		return true
	default:
		return true
	}
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerHalfOpen:
		b.successCount++
		if b.successCount >= b.config.SuccessThreshold {
			b.transition(BreakerClosed)
			b.failureCount = 0
		}
	default:
		b.failureCount = 0
	}
}

func (b *Breaker) onFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	switch b.state {
	case BreakerHalfOpen:
		// A failed probe re-opens immediately.
		b.transition(BreakerOpen)
		b.openedAt = b.now()
	default:
		if b.failureCount >= b.config.FailureThreshold {
			b.transition(BreakerOpen)
			b.openedAt = b.now()
		}
	}

	b.logger.WithFields(logrus.Fields{
		"state":         b.state.String(),
		"failure_count": b.failureCount,
		"error":         err.Error(),
	}).Debug("Sidecar call failed")
}

func (b *Breaker) transition(next BreakerState) {
	if b.state == next {
		return
	}
	b.logger.WithFields(logrus.Fields{
		"from": b.state.String(),
		"to":   next.String(),
	}).Info("Predictor circuit state changed")
	b.state = next
}
