// Package event provides event publishing infrastructure for simulation runs.
package event

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/v2x-go/domain/event"
)

// Publisher batches simulation events and appends them to an event store.
// With batching enabled, events accumulate until the batch fills or the
// engine flushes at a tick boundary.
type Publisher struct {
	store     event.Store
	batch     []event.Event
	batchSize int
	mu        sync.Mutex
}

// PublisherOption configures the publisher.
type PublisherOption func(*Publisher)

// WithBatchSize enables batching with the given capacity. A size of zero
// disables batching and every Publish call hits the store directly.
func WithBatchSize(size int) PublisherOption {
	return func(p *Publisher) {
		p.batchSize = size
	}
}

// NewPublisher creates a publisher writing to the given store.
func NewPublisher(store event.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.batchSize > 0 {
		p.batch = make([]event.Event, 0, p.batchSize)
	}
	return p
}

// Publish records events, appending to the store immediately unless
// batching is enabled.
func (p *Publisher) Publish(ctx context.Context, events ...event.Event) error {
	if len(events) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.batchSize == 0 {
		return p.store.Append(ctx, events...)
	}

	p.batch = append(p.batch, events...)
	if len(p.batch) >= p.batchSize {
		return p.flush(ctx)
	}
	return nil
}

// Flush writes all batched events to the store. The engine calls this at
// the end of every tick so replay sees complete tick boundaries.
func (p *Publisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flush(ctx)
}

// flush writes batched events to the store (must hold lock).
func (p *Publisher) flush(ctx context.Context) error {
	if len(p.batch) == 0 {
		return nil
	}
	if err := p.store.Append(ctx, p.batch...); err != nil {
		return err
	}
	p.batch = p.batch[:0]
	return nil
}

// Close flushes any remaining events.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.batch) > 0 {
		// Best effort flush on close
		_ = p.flush(context.Background())
	}
	return nil
}

// Ensure Publisher implements event.Publisher
var _ event.Publisher = (*Publisher)(nil)
