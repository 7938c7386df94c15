package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	p := NewPool(4, 16)
	defer p.Stop(context.Background())

	var done int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			atomic.AddInt32(&done, 1)
			wg.Done()
		}))
	}
	wg.Wait()
	assert.EqualValues(t, 10, atomic.LoadInt32(&done))
}

func TestPoolReportsSaturation(t *testing.T) {
	p := NewPool(1, 1)
	defer p.Stop(context.Background())

	block := make(chan struct{})
	defer close(block)

	// Occupy the single worker, then fill the single queue slot.
	require.NoError(t, p.Submit(func() { <-block }))

	saturated := false
	for i := 0; i < 10; i++ {
		if err := p.Submit(func() {}); err != nil {
			assert.ErrorIs(t, err, ErrQueueFull)
			saturated = true
			break
		}
	}
	assert.True(t, saturated)
}

func TestPoolRecoversFromPanic(t *testing.T) {
	p := NewPool(1, 4)
	defer p.Stop(context.Background())

	require.NoError(t, p.Submit(func() { panic("boom") }))

	// The worker survives and keeps processing.
	done := make(chan struct{})
	require.Eventually(t, func() bool {
		return p.Submit(func() { close(done) }) == nil
	}, time.Second, 5*time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not recover after panic")
	}
}

func TestPoolStopRejectsNewWork(t *testing.T) {
	p := NewPool(2, 4)
	p.Stop(context.Background())

	err := p.Submit(func() {})
	assert.Error(t, err)
}
