package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestSubmitAndWaitCollectsAllResults(t *testing.T) {
	pool := NewPool(context.Background(), 4, 16)
	defer pool.Close()

	jobs := make([]Job, 10)
	for i := range jobs {
		n := i
		jobs[i] = Job{
			ID: fmt.Sprintf("job-%d", n),
			Execute: func(ctx context.Context) (interface{}, error) {
				return n * 2, nil
			},
		}
	}

	results := pool.SubmitAndWait(jobs)
	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}

	seen := make(map[string]int)
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: unexpected error %v", r.JobID, r.Err)
		}
		seen[r.JobID] = r.Value.(int)
	}
	for i := range jobs {
		id := fmt.Sprintf("job-%d", i)
		if seen[id] != i*2 {
			t.Errorf("%s: value = %d, want %d", id, seen[id], i*2)
		}
	}
}

func TestSubmitAndWaitPropagatesJobErrors(t *testing.T) {
	pool := NewPool(context.Background(), 2, 4)
	defer pool.Close()

	errBoom := errors.New("boom")
	jobs := []Job{
		{ID: "ok", Execute: func(ctx context.Context) (interface{}, error) { return 1, nil }},
		{ID: "bad", Execute: func(ctx context.Context) (interface{}, error) { return nil, errBoom }},
	}

	results := pool.SubmitAndWait(jobs)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	for _, r := range results {
		switch r.JobID {
		case "ok":
			if r.Err != nil {
				t.Errorf("ok job: %v", r.Err)
			}
		case "bad":
			if !errors.Is(r.Err, errBoom) {
				t.Errorf("bad job: got %v, want errBoom", r.Err)
			}
		default:
			t.Errorf("unexpected job id %q", r.JobID)
		}
	}
}

func TestSubmitAfterClose(t *testing.T) {
	pool := NewPool(context.Background(), 1, 1)
	pool.Close()

	err := pool.Submit(Job{
		ID:      "late",
		Execute: func(ctx context.Context) (interface{}, error) { return nil, nil },
	})
	if err == nil {
		t.Fatal("Submit after Close should fail")
	}
}

func TestPoolRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 2, 4)
	defer pool.Close()

	var executed atomic.Int32
	pool.SubmitAndWait([]Job{{
		ID: "first",
		Execute: func(ctx context.Context) (interface{}, error) {
			executed.Add(1)
			return nil, nil
		},
	}})

	cancel()

	results := pool.SubmitAndWait([]Job{{
		ID: "after-cancel",
		Execute: func(ctx context.Context) (interface{}, error) {
			executed.Add(1)
			return nil, nil
		},
	}})
	if len(results) != 0 {
		t.Errorf("got %d results after cancel, want 0", len(results))
	}
	if executed.Load() != 1 {
		t.Errorf("executed = %d, want 1", executed.Load())
	}
}
