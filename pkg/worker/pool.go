/*
Package worker provides a bounded concurrency pool for the parallel
directory walk, with optional rate limiting of filesystem operations.

The pool is a slot-based spawner rather than a task queue: Go runs the
function on a fresh goroutine when a slot is free and inline in the caller
otherwise. Tasks that recursively spawn subtasks therefore can never
deadlock waiting for a queue slot held by an ancestor, which is exactly
the shape of a recursive tree walk.

Basic usage:

	pool, err := worker.NewPool(worker.Config{Workers: 8})

	pool.Go(func() {
	    // walk one subtree
	})
	pool.Wait()
*/
package worker

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Config holds the configuration for the worker pool.
type Config struct {
	// Workers is the maximum number of concurrently running goroutines.
	Workers int

	// RateLimit is the maximum number of throttled operations per second
	// (0 for unlimited).
	RateLimit int
}

// Stats reports pool activity counters.
type Stats struct {
	// Spawned is the number of tasks that got their own goroutine.
	Spawned int64

	// Inlined is the number of tasks run in the caller because the pool
	// was saturated.
	Inlined int64
}

// Pool bounds the fan-out of a recursive concurrent traversal.
type Pool interface {
	// Go runs fn, on a new goroutine when a worker slot is available and
	// synchronously in the caller otherwise. It always runs fn exactly once.
	Go(fn func())

	// Throttle blocks until the rate limiter admits one more operation,
	// or the context is cancelled. It is a no-op when no rate limit is set.
	Throttle(ctx context.Context) error

	// Wait blocks until every spawned goroutine has finished.
	Wait()

	// Stats returns current activity counters.
	Stats() Stats
}

type pool struct {
	slots   chan struct{}
	limiter *rate.Limiter
	wg      sync.WaitGroup

	mu      sync.Mutex
	spawned int64
	inlined int64
}

// NewPool creates a pool with the given configuration.
func NewPool(config Config) (Pool, error) {
	if config.Workers <= 0 {
		return nil, fmt.Errorf("number of workers must be positive")
	}
	if config.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must be non-negative")
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &pool{
		slots:   make(chan struct{}, config.Workers),
		limiter: limiter,
	}, nil
}

func (p *pool) Go(fn func()) {
	select {
	case p.slots <- struct{}{}:
		p.mu.Lock()
		p.spawned++
		p.mu.Unlock()

		p.wg.Add(1)
		go func() {
			defer func() {
				<-p.slots
				p.wg.Done()
			}()
			fn()
		}()
	default:
		p.mu.Lock()
		p.inlined++
		p.mu.Unlock()

		fn()
	}
}

func (p *pool) Throttle(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func (p *pool) Wait() {
	p.wg.Wait()
}

func (p *pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Spawned: p.spawned,
		Inlined: p.inlined,
	}
}
