package bus

import (
	"context"
	"sync"
)

// memoryBus is the in-process implementation: single-node deployments and
// tests. Same at-most-once contract as the redis bus.
type memoryBus struct {
	mu        sync.RWMutex
	listeners []func(Event)
	closed    bool
}

func NewMemoryBus() Bus {
	return &memoryBus{}
}

func (b *memoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	listeners := make([]func(Event), len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, onEvent := range listeners {
		onEvent(event)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onEvent func(Event)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.listeners = append(b.listeners, onEvent)
	}
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.listeners = nil
	return nil
}
