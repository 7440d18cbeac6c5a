package worker

import (
	"context"
	"sort"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type task struct {
	seq int
	job Job
}

type outcome struct {
	seq    int
	result Result
}

// Pool manages a pool of workers that execute jobs concurrently.
// Wait returns results in submission order regardless of completion order.
type Pool struct {
	workers    int
	jobQueue   chan task
	results    chan outcome
	submitted  int
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a new worker pool with the specified number of workers.
// Cancelling ctx stops the workers after their current job.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan task, workers*2), // Buffered to prevent blocking
		results:    make(chan outcome, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := t.job.Execute(p.ctx)
			select {
			case p.results <- outcome{seq: t.seq, result: result}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit submits a job to the pool for execution. It must not be called
// concurrently with itself or after Wait.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- task{seq: p.submitted, job: job}:
		p.submitted++
	}
}

// Wait waits for all jobs to complete and returns their results in the
// order the jobs were submitted. Jobs dropped by cancellation have no result.
func (p *Pool) Wait() []Result {
	// Close job queue to signal workers to exit when done
	close(p.jobQueue)

	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var collected []outcome
	for o := range p.results {
		collected = append(collected, o)
	}
	p.cancelFunc()

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].seq < collected[j].seq
	})

	results := make([]Result, len(collected))
	for i, o := range collected {
		results[i] = o.result
	}
	return results
}

// Shutdown shuts down the worker pool immediately
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
