package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errDownstream = errors.New("downstream failed")

func failing(ctx context.Context) error { return errDownstream }
func succeeding(ctx context.Context) error { return nil }

func newTestBreaker(timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          timeout,
	})
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := newTestBreaker(time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := cb.Execute(ctx, failing); !errors.Is(err, errDownstream) {
			t.Fatalf("attempt %d: got %v", i, err)
		}
	}

	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	if err := cb.Execute(ctx, succeeding); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker should reject, got %v", err)
	}
}

func TestCircuitBreakerRecovers(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cb.Execute(ctx, failing)
	}
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	time.Sleep(20 * time.Millisecond)

	// First probe transitions to half-open; two successes close it.
	if err := cb.Execute(ctx, succeeding); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", cb.State())
	}
	if err := cb.Execute(ctx, succeeding); err != nil {
		t.Fatalf("second probe failed: %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cb.Execute(ctx, failing)
	}
	time.Sleep(20 * time.Millisecond)

	cb.Execute(ctx, failing)
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open after half-open failure", cb.State())
	}
}

func TestCircuitBreakerStateChanges(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	cb.Execute(context.Background(), failing)
	cb.Reset()

	if len(transitions) != 2 {
		t.Fatalf("transitions = %v", transitions)
	}
	if transitions[0] != "closed->open" || transitions[1] != "open->closed" {
		t.Errorf("transitions = %v", transitions)
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	err := Retry(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errDownstream
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	cfg := RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	err := Retry(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return errDownstream
	})
	if !errors.Is(err, errDownstream) {
		t.Fatalf("got %v, want wrapped downstream error", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRetryWithResult(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	calls := 0

	v, err := RetryWithResult(context.Background(), cfg, func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errDownstream
		}
		return 7, nil
	})
	if err != nil {
		t.Fatalf("RetryWithResult failed: %v", err)
	}
	if v != 7 {
		t.Errorf("value = %d, want 7", v)
	}
}
