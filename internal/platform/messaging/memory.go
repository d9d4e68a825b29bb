package messaging

import (
	"context"
	"sync"

	"carebridge/internal/shared/events"
)

// MemoryPublisher collects envelopes in process. Used by tests and the
// in-memory bootstrap.
type MemoryPublisher struct {
	mu        sync.Mutex
	published []events.Envelope
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, envelope events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, envelope)
	return nil
}

// Published returns a copy of everything published so far.
func (p *MemoryPublisher) Published() []events.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Envelope(nil), p.published...)
}
