// Package threadpool implements a bounded worker pool: a fixed number of
// goroutines pull jobs off a shared unbuffered channel, isolating a
// panicking job from the rest of the pool and from the caller that
// submitted it. There is no task queue beyond that channel.
//
// The reference implementation this is adapted from sends an explicit
// Terminate message per worker down a shared channel to shut the pool
// down. Go's channels already broadcast closure to every receiver, so Stop
// here just closes the queue instead of emitting one terminate message per
// worker.
package threadpool

import (
	"sync"

	"go.uber.org/zap"
)

// Task is a unit of work submitted to the pool. It takes no arguments and
// returns nothing; callers close over whatever state a job needs (the
// accepted connection, the request).
type Task func()

// Pool runs Tasks on a fixed number of worker goroutines. Tasks are handed
// over on an unbuffered channel, so Submit blocks the caller until a worker
// is free to take the task; pending tasks are not queued.
type Pool struct {
	queue  chan Task
	wg     sync.WaitGroup
	logger *zap.SugaredLogger
}

// New starts n worker goroutines and returns the pool that feeds them.
func New(n int, logger *zap.SugaredLogger) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{
		queue:  make(chan Task),
		logger: logger,
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for task := range p.queue {
		p.run(id, task)
	}
}

// run executes task, recovering a panic so one bad job never kills the
// worker goroutine or takes down the caller that submitted it.
func (p *Pool) run(id int, task Task) {
	defer func() {
		if r := recover(); r != nil && p.logger != nil {
			p.logger.Errorw("worker recovered from panic", "worker", id, "panic", r)
		}
	}()
	task()
}

// Submit hands task to the next free worker, blocking until one takes it.
// Submit must not be called after Stop.
func (p *Pool) Submit(task Task) {
	p.queue <- task
}

// Stop closes the task queue and waits for every worker goroutine to drain
// it and exit.
func (p *Pool) Stop() {
	close(p.queue)
	p.wg.Wait()
}
