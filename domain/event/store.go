package event

import "context"

// Store defines the interface for event persistence.
// Implementations may be in-memory, BadgerDB, or any other backend.
type Store interface {
	// Append persists one or more events atomically.
	// Events are assigned sequence numbers in order of appearance.
	Append(ctx context.Context, events ...Event) error

	// LoadEvents retrieves all events for a run in sequence order.
	LoadEvents(ctx context.Context, runID string) ([]Event, error)

	// LoadEventsFrom retrieves events starting from a specific sequence
	// number, enabling incremental replay from a known checkpoint.
	LoadEventsFrom(ctx context.Context, runID string, fromSeq uint64) ([]Event, error)

	// Subscribe returns a channel that receives new events for a run.
	Subscribe(ctx context.Context, runID string) (<-chan Event, error)
}

// Publisher publishes simulation events to the event store.
type Publisher interface {
	// Publish sends events to the event store.
	Publish(ctx context.Context, events ...Event) error

	// Close releases any resources held by the publisher.
	Close() error
}
