package state

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Executor runs store operations off the caller with bounded parallelism.
type Executor struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewExecutor allows up to workers operations at once; values below 1 mean 1.
func NewExecutor(workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{sem: semaphore.NewWeighted(int64(workers))}
}

// Do runs fn on the calling goroutine once a slot is free.
func (e *Executor) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.sem.Release(1)
	return fn(ctx)
}

// Go runs fn in the background and hands its result to done, which may be
// nil. A job whose context ends before it gets a slot reports ctx.Err().
func (e *Executor) Go(ctx context.Context, fn func(context.Context) error, done func(error)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		err := e.Do(ctx, fn)
		if done != nil {
			done(err)
		}
	}()
}

// Wait blocks until every job started with Go has finished.
func (e *Executor) Wait() {
	e.wg.Wait()
}
