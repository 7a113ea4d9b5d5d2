package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/fuel-streams/streams/pkg/errors"
)

// CircuitBreaker tracks consecutive failures of a guarded operation and
// fails fast once FailureThreshold is reached, probing recovery after
// Timeout via a single half-open trial.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu        sync.Mutex
	state     State
	failures  int64
	successes int64
	openedAt  time.Time
}

// NewCircuitBreaker builds a CircuitBreaker in the closed state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &CircuitBreaker{cfg: cfg, state: StateClosed}
}

// State returns the circuit breaker's current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) setState(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, from, to)
	}
}

// Execute runs fn if the circuit permits it, recording the outcome. A
// call while the circuit is open fails immediately without invoking fn,
// unless Timeout has elapsed since it opened, in which case one trial
// call is allowed through (half-open).
func (cb *CircuitBreaker) Execute(ctx context.Context, fn Executor) error {
	cb.mu.Lock()
	if cb.state == StateOpen {
		if time.Since(cb.openedAt) < cb.cfg.Timeout {
			cb.mu.Unlock()
			return errors.New(errors.CodeUnavailable, "circuit breaker "+cb.cfg.Name+" is open", nil)
		}
		cb.setState(StateHalfOpen)
		cb.successes = 0
	}
	cb.mu.Unlock()

	err := fn(ctx)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.failures++
		cb.successes = 0
		if cb.state == StateHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
			cb.setState(StateOpen)
			cb.openedAt = time.Now()
		}
		return err
	}

	cb.failures = 0
	if cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.setState(StateClosed)
		}
	}
	return nil
}
