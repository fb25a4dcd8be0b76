// Package ioruntime manages the process-wide worker pool that executes the
// asynchronous channel operations of the socket transports.
//
// The runtime must be started before any socket-backed interface is
// initialized and stopped only after all of them are closed. Guard ties the
// start/stop pair to a scope for callers that prefer paired management.
package ioruntime

import (
	"log/slog"
	"sync"

	"github.com/flooklab/godaq/errors"
)

const taskQueueSize = 256

var (
	mu         sync.Mutex
	tasks      chan func()
	workers    sync.WaitGroup
	submitters sync.WaitGroup
	running    bool
)

// Start launches a pool of n worker goroutines draining a shared task queue.
// Starting an already-running runtime is a no-op. n < 1 is a usage error.
func Start(n int) error {
	if n < 1 {
		return errors.WrapUsage(
			errors.New("worker count must be at least 1"), "ioruntime", "Start", "pool sizing")
	}

	mu.Lock()
	defer mu.Unlock()

	if running {
		return nil
	}

	tasks = make(chan func(), taskQueueSize)
	for i := 0; i < n; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for task := range tasks {
				task()
			}
		}()
	}
	running = true
	slog.Debug("I/O runtime started", "workers", n)
	return nil
}

// Stop closes the task queue and waits for all workers to drain it.
// Stopping a stopped runtime is a no-op.
func Stop() {
	mu.Lock()
	if !running {
		mu.Unlock()
		return
	}
	running = false
	queue := tasks
	mu.Unlock()

	// Let in-flight submissions land before the queue closes.
	submitters.Wait()
	close(queue)

	workers.Wait()
	slog.Debug("I/O runtime stopped")
}

// Running reports whether the pool is accepting tasks.
func Running() bool {
	mu.Lock()
	defer mu.Unlock()
	return running
}

// Submit hands a task to the pool. It fails if the runtime is not running.
// The handoff happens outside the package lock, so a full queue blocks only
// the submitter, never Running or Stop.
func Submit(task func()) error {
	mu.Lock()
	if !running {
		mu.Unlock()
		return errors.WrapIO(errors.ErrRuntimeStopped, "ioruntime", "Submit", "queueing task")
	}
	submitters.Add(1)
	queue := tasks
	mu.Unlock()
	defer submitters.Done()

	queue <- task
	return nil
}

// Guard starts the runtime on construction and stops it on Release, so the
// pool lifetime can be bound to a scope.
type Guard struct {
	once sync.Once
}

// NewGuard starts the runtime with n workers and returns the releasing guard.
func NewGuard(n int) (*Guard, error) {
	if err := Start(n); err != nil {
		return nil, err
	}
	return &Guard{}, nil
}

// Release stops the runtime. Safe to call more than once.
func (g *Guard) Release() {
	g.once.Do(Stop)
}
