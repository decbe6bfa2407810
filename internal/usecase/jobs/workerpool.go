package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Task is one translation item run by the pool.
type Task func(ctx context.Context) error

// WorkerPool runs tasks on a fixed number of goroutines and counts the ones
// that fail.
type WorkerPool struct {
	tasks   chan Task
	wg      sync.WaitGroup
	workers int
	failed  atomic.Int64
	closeMu sync.Mutex
	closed  bool
}

var ErrPoolClosed = errors.New("worker pool closed")

// NewWorkerPool creates a pool with the given number of workers and queue
// capacity.
func NewWorkerPool(workers, queue int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &WorkerPool{tasks: make(chan Task, queue), workers: workers}
}

// Start launches the workers. They stop when ctx is done or the pool is
// closed and drained.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task, ok := <-p.tasks:
					if !ok {
						return
					}
					if err := task(ctx); err != nil {
						p.failed.Add(1)
					}
				}
			}
		}()
	}
}

// Submit enqueues a task, blocking while the queue is full.
func (p *WorkerPool) Submit(ctx context.Context, task Task) error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for the workers to exit.
func (p *WorkerPool) Close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.closeMu.Unlock()
	p.wg.Wait()
}

// Failed returns how many tasks returned an error so far.
func (p *WorkerPool) Failed() int { return int(p.failed.Load()) }
