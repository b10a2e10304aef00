package services

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

type CircuitBreakerConfig struct {
	MaxFailures     int
	ResetTimeout    time.Duration
	HalfOpenMaxSucc int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:     5,
		ResetTimeout:    30 * time.Second,
		HalfOpenMaxSucc: 1,
	}
}

type CircuitBreaker struct {
	mu                sync.RWMutex
	config            CircuitBreakerConfig
	state             CircuitBreakerState
	failures          int
	halfOpenSuccesses int
	lastFailureTime   time.Time
}

func NewCircuitBreaker(config CircuitBreakerConfig) CircuitBreakerInterface {
	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.shouldTransitionToHalfOpen() {
		cb.state = StateHalfOpen
		cb.halfOpenSuccesses = 0
		return false
	}

	return cb.state == StateOpen
}

func (cb *CircuitBreaker) shouldTransitionToHalfOpen() bool {
	return time.Since(cb.lastFailureTime) > cb.config.ResetTimeout
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.halfOpenSuccesses++
		if cb.halfOpenSuccesses >= cb.config.HalfOpenMaxSucc {
			cb.transitionToClosed()
		}
	} else if cb.state == StateClosed {
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) transitionToClosed() {
	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenSuccesses = 0
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = time.Now()

	if cb.state == StateHalfOpen {
		cb.transitionToOpen()
	} else if cb.state == StateClosed {
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			cb.transitionToOpen()
		}
	}
}

func (cb *CircuitBreaker) transitionToOpen() {
	cb.state = StateOpen
	cb.halfOpenSuccesses = 0
}

func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenSuccesses = 0
}

func (cb *CircuitBreaker) GetFailureCount() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}

// guardedGenerator short-circuits a TextGenerator while its breaker is open.
// Calls are never retried.
type guardedGenerator struct {
	next    TextGenerator
	breaker CircuitBreakerInterface
	name    string
	metrics MetricsRecorderInterface
	audit   AuditLoggerInterface
}

// NewCircuitBreakingGenerator wraps gen with breaker. metrics and audit may be nil.
func NewCircuitBreakingGenerator(gen TextGenerator, breaker CircuitBreakerInterface, name string, metrics MetricsRecorderInterface, audit AuditLoggerInterface) TextGenerator {
	return &guardedGenerator{
		next:    gen,
		breaker: breaker,
		name:    name,
		metrics: metrics,
		audit:   audit,
	}
}

func (g *guardedGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	if g.breaker.IsOpen() {
		return "", ErrCircuitBreakerOpen
	}

	before := g.breaker.GetState()
	text, err := g.next.Generate(ctx, model, prompt)
	switch {
	case err == nil:
		g.breaker.RecordSuccess()
	case errors.Is(ctx.Err(), context.Canceled):
		// the caller went away; an expired deadline still counts against the provider
	default:
		g.breaker.RecordFailure()
	}

	if after := g.breaker.GetState(); after != before {
		if g.audit != nil {
			g.audit.LogCircuitBreakerStateChange(ctx, g.name, before.String(), after.String())
		}
		if g.metrics != nil {
			g.metrics.RecordGauge(MetricCircuitBreakerState, float64(after), map[string]string{"service": g.name})
		}
	}

	return text, err
}
