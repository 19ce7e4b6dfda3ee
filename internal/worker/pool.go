// Package worker runs per-item pipeline work concurrently and throttles
// calls to external classification services.
package worker

import (
	"context"
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

type sequencedJob struct {
	seq int
	job Job
}

type sequencedResult struct {
	seq    int
	result Result
}

// Pool manages a pool of workers that execute jobs concurrently. Results
// are handed back in submission order regardless of completion order.
type Pool struct {
	workers    int
	jobQueue   chan sequencedJob
	results    chan sequencedResult
	collected  chan []Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once

	mu   sync.Mutex
	next int
}

// NewPool creates a new worker pool with the specified number of workers.
// Cancelling ctx stops the workers.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan sequencedJob, workers*2),
		results:    make(chan sequencedResult, workers*2),
		collected:  make(chan []Result, 1),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case sj, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := sj.job.Execute(p.ctx)
			select {
			case p.results <- sequencedResult{seq: sj.seq, result: result}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// collect drains results while jobs are still being submitted so a full
// results buffer never blocks the workers
func (p *Pool) collect() {
	var ordered []Result
	for sr := range p.results {
		for len(ordered) <= sr.seq {
			ordered = append(ordered, nil)
		}
		ordered[sr.seq] = sr.result
	}
	p.collected <- ordered
}

// Submit submits a job to the pool for execution
func (p *Pool) Submit(job Job) {
	p.mu.Lock()
	seq := p.next
	p.next++
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- sequencedJob{seq: seq, job: job}:
	}
}

// Wait waits for all jobs to complete and returns one result per submitted
// job, in submission order. Jobs dropped by cancellation leave a nil entry.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()

	ordered := <-p.collected

	p.mu.Lock()
	n := p.next
	p.mu.Unlock()
	for len(ordered) < n {
		ordered = append(ordered, nil)
	}
	p.cancelFunc()
	return ordered
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
