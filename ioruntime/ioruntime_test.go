package ioruntime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flooklab/godaq/errors"
)

func TestStartStopCycle(t *testing.T) {
	require.False(t, Running())

	require.NoError(t, Start(2))
	assert.True(t, Running())

	// Starting twice is a no-op.
	require.NoError(t, Start(4))

	Stop()
	assert.False(t, Running())

	// Stopping twice is a no-op.
	Stop()
}

func TestSubmitExecutesTasks(t *testing.T) {
	require.NoError(t, Start(3))
	defer Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.NoError(t, Submit(func() {
			defer wg.Done()
			mu.Lock()
			count++
			mu.Unlock()
		}))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not complete")
	}
	assert.Equal(t, 10, count)
}

func TestSubmitBackpressureDoesNotBlockRunning(t *testing.T) {
	require.NoError(t, Start(1))
	defer Stop()

	// Park the only worker, fill the queue and leave one submitter blocked
	// on the full channel.
	release := make(chan struct{})
	require.NoError(t, Submit(func() { <-release }))
	for i := 0; i < taskQueueSize; i++ {
		require.NoError(t, Submit(func() {}))
	}
	extra := make(chan error, 1)
	go func() { extra <- Submit(func() {}) }()

	probed := make(chan bool, 1)
	go func() { probed <- Running() }()
	select {
	case ok := <-probed:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Running blocked behind a full task queue")
	}

	close(release)
	require.NoError(t, <-extra)
}

func TestSubmitRequiresRunningRuntime(t *testing.T) {
	err := Submit(func() {})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRuntimeStopped))
}

func TestStartRejectsInvalidWorkerCount(t *testing.T) {
	err := Start(0)
	require.Error(t, err)
	assert.True(t, errors.IsUsage(err))
	assert.False(t, Running())
}

func TestGuard(t *testing.T) {
	g, err := NewGuard(1)
	require.NoError(t, err)
	assert.True(t, Running())

	g.Release()
	assert.False(t, Running())

	// Release is idempotent.
	g.Release()
}
