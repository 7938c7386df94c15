package workers

import (
	"context"
	"errors"
	"sync"

	"artlink_backend/internal/logger"
)

// ErrQueueFull is returned when the pool's queue has no room; callers on the
// socket path surface it as a typed error event instead of blocking.
var ErrQueueFull = errors.New("worker pool queue full")

// Pool is a fixed-size worker pool with a bounded queue. Database work from
// connection goroutines goes through it, so one slow query cannot stall
// event delivery on other connections.
type Pool struct {
	queue chan func()
	wg    sync.WaitGroup

	stopOnce sync.Once
	stopped  chan struct{}
}

func NewPool(size, queueSize int) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	p := &Pool{
		queue:   make(chan func(), queueSize),
		stopped: make(chan struct{}),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopped:
			return
		case task, ok := <-p.queue:
			if !ok {
				return
			}
			p.run(task)
		}
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker task panicked", "panic", r)
		}
	}()
	task()
}

// Submit enqueues a task without blocking. Returns ErrQueueFull when the
// queue is saturated.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.stopped:
		return errors.New("worker pool stopped")
	default:
	}

	select {
	case p.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop drains workers. In-flight tasks finish; queued tasks are dropped.
func (p *Pool) Stop(ctx context.Context) {
	p.stopOnce.Do(func() {
		close(p.stopped)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}
}
