package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/v2x-go/domain/event"
)

// Replay reconstructs what happened in a recorded run from its event
// stream.
type Replay struct {
	eventStore event.Store
}

// NewReplay creates a replay service over an event store.
func NewReplay(eventStore event.Store) *Replay {
	return &Replay{eventStore: eventStore}
}

// RunRecord is the reconstructed view of one recorded run.
type RunRecord struct {
	RunID      string
	Ticks      int
	Completed  bool
	MinPayload int
	MaxPayload int
	Counts     map[event.Type]int
}

// Reconstruct rebuilds a run record from its event history.
func (r *Replay) Reconstruct(ctx context.Context, runID string) (RunRecord, error) {
	events, err := r.eventStore.LoadEvents(ctx, runID)
	if err != nil {
		return RunRecord{}, fmt.Errorf("load events: %w", err)
	}
	if len(events) == 0 {
		return RunRecord{}, event.ErrRunNotFound
	}

	record := RunRecord{
		RunID:  runID,
		Counts: make(map[event.Type]int),
	}

	for _, e := range events {
		record.Counts[e.Type]++

		switch e.Type {
		case event.TypeTickStarted:
			if e.Tick+1 > record.Ticks {
				record.Ticks = e.Tick + 1
			}

		case event.TypeRunCompleted:
			var payload event.RunCompletedPayload
			if err := e.UnmarshalPayload(&payload); err != nil {
				return RunRecord{}, fmt.Errorf("unmarshal run.completed: %w", err)
			}
			record.Completed = true
			record.Ticks = payload.Ticks
			record.MinPayload = payload.MinPayload
			record.MaxPayload = payload.MaxPayload

		case event.TypePayloadMeasured:
			var payload event.PayloadMeasuredPayload
			if err := e.UnmarshalPayload(&payload); err != nil {
				continue
			}
			if record.MinPayload == 0 || payload.Bytes < record.MinPayload {
				record.MinPayload = payload.Bytes
			}
			if payload.Bytes > record.MaxPayload {
				record.MaxPayload = payload.Bytes
			}
		}
	}

	return record, nil
}

// EventsByType returns a run's events of one type in sequence order.
func (r *Replay) EventsByType(ctx context.Context, runID string, eventType event.Type) ([]event.Event, error) {
	events, err := r.eventStore.LoadEvents(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	var result []event.Event
	for _, e := range events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result, nil
}
