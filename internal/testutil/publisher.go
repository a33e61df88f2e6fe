package testutil

import (
	"context"
	"sync"
)

// CapturedEvent is one event recorded by the in-memory publisher.
type CapturedEvent struct {
	EventName string
	Payload   any
}

// InMemoryEventPublisher records events for assertions instead of
// publishing them.
type InMemoryEventPublisher struct {
	mu     sync.Mutex
	events []CapturedEvent
}

func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, eventName string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, CapturedEvent{EventName: eventName, Payload: payload})
	return nil
}

func (p *InMemoryEventPublisher) Close() error {
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *InMemoryEventPublisher) Events() []CapturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]CapturedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *InMemoryEventPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
