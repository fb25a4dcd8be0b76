// Package transport wraps the raw OS communication channels (TCP and UDP
// sockets, serial ports) behind a uniform byte-oriented API with internal
// read buffering, termination handling and timeout-bounded operations.
//
// Socket operations execute on the shared ioruntime worker pool. A bounded
// wait that expires cancels the in-flight operation and then blocks until the
// worker has acknowledged the cancellation, so no operation is ever abandoned
// mid-flight. Cancellation itself is not an error: the worker records any
// partial result and the caller decides how to surface the expired wait.
package transport

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/ioruntime"
)

// probeTimeout bounds the buffer-introspection receives. It must be positive:
// a read whose deadline has already passed fails before ever reaching the OS
// receive buffer, so an immediate deadline would never observe pending bytes.
const probeTimeout = time.Millisecond

// operation tracks one asynchronous channel operation from submission to
// completion.
type operation struct {
	done      chan struct{}
	cancelled atomic.Bool

	// valid after done is closed
	n   int
	err error
}

func newOperation() *operation {
	return &operation{done: make(chan struct{})}
}

// complete records the result and releases waiters. A deadline expiry caused
// by our own cancellation is recorded as success, since the wrapper keeps any
// partial data and reports the timeout itself.
func (op *operation) complete(n int, err error) {
	if err != nil && op.cancelled.Load() && errors.Is(err, os.ErrDeadlineExceeded) {
		err = nil
	}
	op.n = n
	op.err = err
	close(op.done)
}

// submit queues fn on the I/O runtime, completing op with the stopped-runtime
// error if the pool is not running.
func submit(op *operation, fn func()) {
	if err := ioruntime.Submit(fn); err != nil {
		op.complete(0, err)
	}
}

// await blocks until op completes, bounded by timeout (zero waits forever).
// When the bound expires, cancel is invoked to interrupt the operation and
// await keeps blocking until the worker acknowledges; timedOut then reports
// the expired wait while n still carries any partial result.
func await(op *operation, timeout time.Duration, cancel func()) (n int, timedOut bool, err error) {
	if timeout <= 0 {
		<-op.done
		return op.n, false, op.err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-op.done:
		return op.n, false, op.err
	case <-timer.C:
		op.cancelled.Store(true)
		if cancel != nil {
			cancel()
		}
		<-op.done
		return op.n, true, op.err
	}
}

// remaining converts an absolute deadline to a per-attempt timeout.
// A zero deadline means no bound; an expired deadline yields a minimal
// positive timeout so the attempt still cancels promptly instead of blocking.
func remaining(deadline time.Time) time.Duration {
	if deadline.IsZero() {
		return 0
	}
	d := time.Until(deadline)
	if d <= 0 {
		return time.Nanosecond
	}
	return d
}

// deadlineFor converts a relative timeout to an absolute deadline
// (zero timeout keeps the zero deadline, i.e. unbounded).
func deadlineFor(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

// indexOfTerm returns the index of the first occurrence of term in buf,
// or -1. An empty termination never matches.
func indexOfTerm(buf, term []byte) int {
	if len(term) == 0 || len(buf) < len(term) {
		return -1
	}
outer:
	for i := 0; i+len(term) <= len(buf); i++ {
		for j := range term {
			if buf[i+j] != term[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
