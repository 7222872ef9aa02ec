package memory

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/v2x-go/domain/event"
)

func newTestEvent(t *testing.T, runID string, tick int, eventType event.Type) event.Event {
	t.Helper()
	ev, err := event.NewEvent(runID, tick, eventType, nil)
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	return ev
}

func TestEventStore_AppendAssignsSequence(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	for i := range 3 {
		if err := store.Append(ctx, newTestEvent(t, "run-1", i, event.TypeTickStarted)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	events, err := store.LoadEvents(ctx, "run-1")
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("LoadEvents() returned %d events, want 3", len(events))
	}
	for i, e := range events {
		if e.Sequence != uint64(i+1) {
			t.Errorf("event %d sequence = %d, want %d", i, e.Sequence, i+1)
		}
		if e.ID == "" {
			t.Errorf("event %d has no ID assigned", i)
		}
	}
}

func TestEventStore_SequencesIsolatedPerRun(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	if err := store.Append(ctx,
		newTestEvent(t, "run-a", 0, event.TypeTickStarted),
		newTestEvent(t, "run-b", 0, event.TypeTickStarted),
	); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	for _, runID := range []string{"run-a", "run-b"} {
		events, err := store.LoadEvents(ctx, runID)
		if err != nil {
			t.Fatalf("LoadEvents(%s) error = %v", runID, err)
		}
		if len(events) != 1 || events[0].Sequence != 1 {
			t.Errorf("run %s: got %d events, first sequence %d, want 1/1",
				runID, len(events), events[0].Sequence)
		}
	}
}

func TestEventStore_RejectsUntypedEvent(t *testing.T) {
	store := NewEventStore()

	err := store.Append(context.Background(), event.Event{RunID: "run-1"})
	if err != event.ErrInvalidEvent {
		t.Errorf("Append() error = %v, want ErrInvalidEvent", err)
	}
}

func TestEventStore_LoadEventsUnknownRun(t *testing.T) {
	store := NewEventStore()

	events, err := store.LoadEvents(context.Background(), "missing")
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("LoadEvents() returned %d events, want 0", len(events))
	}
}

func TestEventStore_LoadEventsFrom(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	for i := range 5 {
		if err := store.Append(ctx, newTestEvent(t, "run-1", i, event.TypeVerdictIssued)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	events, err := store.LoadEventsFrom(ctx, "run-1", 3)
	if err != nil {
		t.Fatalf("LoadEventsFrom() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("LoadEventsFrom() returned %d events, want 3", len(events))
	}
	if events[0].Sequence != 3 {
		t.Errorf("first sequence = %d, want 3", events[0].Sequence)
	}
}

func TestEventStore_Subscribe(t *testing.T) {
	store := NewEventStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := store.Subscribe(ctx, "run-1")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	want := newTestEvent(t, "run-1", 7, event.TypeVehicleStopped)
	if err := store.Append(ctx, want); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	select {
	case got := <-ch:
		if got.Type != event.TypeVehicleStopped || got.Tick != 7 {
			t.Errorf("received event %s tick %d, want %s tick 7",
				got.Type, got.Tick, event.TypeVehicleStopped)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscribed event")
	}
}

func TestEventStore_Len(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	if err := store.Append(ctx,
		newTestEvent(t, "run-a", 0, event.TypeTickStarted),
		newTestEvent(t, "run-b", 0, event.TypeTickStarted),
		newTestEvent(t, "run-b", 1, event.TypeRunCompleted),
	); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if got := store.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}

	store.Clear()
	if got := store.Len(); got != 0 {
		t.Errorf("Len() after Clear = %d, want 0", got)
	}
}
