// Package worker provides a fixed-size worker pool used to fan out
// independent read calls, such as per-pair reserve fetches.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool.
type Job struct {
	// ID identifies the job in results and logs.
	ID string
	// Execute runs the work. It receives the pool's context.
	Execute func(ctx context.Context) (interface{}, error)
}

// Result is the outcome of one job.
type Result struct {
	JobID string
	Value interface{}
	Err   error
}

// Pool runs jobs on a fixed number of goroutines.
type Pool struct {
	workers  int
	jobQueue chan Job
	results  chan Result
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewPool starts a pool with the given number of workers and queue
// buffer size.
func NewPool(ctx context.Context, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	poolCtx, cancel := context.WithCancel(ctx)
	p := &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		results:  make(chan Result, queueSize),
		ctx:      poolCtx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			value, err := job.Execute(p.ctx)
			select {
			case p.results <- Result{JobID: job.ID, Value: value, Err: err}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job, blocking while the queue is full.
func (p *Pool) Submit(job Job) error {
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.jobQueue <- job:
		return nil
	}
}

// SubmitAndWait submits jobs and collects their results, in completion
// order. The queue must be large enough to hold all jobs, otherwise
// submission can block once workers back up on the results channel.
func (p *Pool) SubmitAndWait(jobs []Job) []Result {
	submitted := 0
	for _, job := range jobs {
		if err := p.Submit(job); err != nil {
			break
		}
		submitted++
	}

	results := make([]Result, 0, submitted)
	for i := 0; i < submitted; i++ {
		select {
		case <-p.ctx.Done():
			return results
		case result := <-p.results:
			results = append(results, result)
		}
	}
	return results
}

// Close stops accepting jobs and waits for workers to drain.
func (p *Pool) Close() {
	p.cancel()
	close(p.jobQueue)
	p.wg.Wait()
}
