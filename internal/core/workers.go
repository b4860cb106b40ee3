package core

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// BackgroundRunner executes fire-and-forget tasks with bounded concurrency.
// Submit never blocks: each task gets its own goroutine and waits on a
// semaphore for a worker slot. Panics are recovered and logged so one bad
// task cannot take the process down.
type BackgroundRunner struct {
	sem    chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewBackgroundRunner creates a runner with the given worker limit.
func NewBackgroundRunner(workers int, logger *zap.Logger) *BackgroundRunner {
	if workers <= 0 {
		workers = 1
	}
	return &BackgroundRunner{
		sem:    make(chan struct{}, workers),
		logger: logger,
	}
}

// Submit schedules a task and returns immediately. The task runs with a
// background context independent of the caller's lifetime.
func (r *BackgroundRunner) Submit(name string, task func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.sem <- struct{}{}
		defer func() { <-r.sem }()
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("Background task panicked",
					zap.String("task", name),
					zap.Any("panic", p))
			}
		}()
		task(context.Background())
	}()
}

// Wait blocks until all submitted tasks have finished. Used on shutdown.
func (r *BackgroundRunner) Wait() {
	r.wg.Wait()
}
