package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents circuit breaker state.
type State int

const (
	// StateClosed allows all requests.
	StateClosed State = iota
	// StateOpen rejects all requests.
	StateOpen
	// StateHalfOpen allows limited requests to probe recovery.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker implements the circuit breaker pattern around an
// unreliable downstream.
type CircuitBreaker struct {
	name             string
	failureThreshold int
	successThreshold int
	timeout          time.Duration

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	lastFailTime  time.Time
	onStateChange func(from, to State)
}

// CircuitBreakerConfig holds circuit breaker configuration.
type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures before opening
	SuccessThreshold int           // successes in half-open before closing
	Timeout          time.Duration // open duration before half-open probe
	OnStateChange    func(from, to State)
}

// NewCircuitBreaker creates a circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &CircuitBreaker{
		name:             cfg.Name,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		timeout:          cfg.Timeout,
		state:            StateClosed,
		onStateChange:    cfg.OnStateChange,
	}
}

// Execute runs fn if the circuit allows it and records the outcome.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailTime) < cb.timeout {
			return ErrCircuitOpen
		}
		cb.setStateLocked(StateHalfOpen)
		return nil
	default:
		return nil
	}
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.successes = 0
		cb.lastFailTime = time.Now()

		if cb.state == StateHalfOpen || cb.failures >= cb.failureThreshold {
			cb.setStateLocked(StateOpen)
		}
		return
	}

	cb.failures = 0
	if cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.setStateLocked(StateClosed)
		}
	}
}

func (cb *CircuitBreaker) setStateLocked(newState State) {
	if cb.state == newState {
		return
	}
	old := cb.state
	cb.state = newState
	cb.successes = 0
	if cb.onStateChange != nil {
		cb.onStateChange(old, newState)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// StateInt returns the current state as an int64, for gauges.
func (cb *CircuitBreaker) StateInt() int64 {
	return int64(cb.State())
}

// Name returns the breaker's name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Reset forces the breaker back to closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.successes = 0
	cb.setStateLocked(StateClosed)
}
