package application

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/v2x-go/domain/event"
	"github.com/felixgeelhaar/v2x-go/infrastructure/storage/memory"
)

func TestReplay_UnknownRun(t *testing.T) {
	replay := NewReplay(memory.NewEventStore())

	_, err := replay.Reconstruct(context.Background(), "missing")
	if !errors.Is(err, event.ErrRunNotFound) {
		t.Errorf("Reconstruct() error = %v, want ErrRunNotFound", err)
	}
}

func TestReplay_EventsByType(t *testing.T) {
	store := memory.NewEventStore()
	ctx := context.Background()

	for i, typ := range []event.Type{
		event.TypeTickStarted,
		event.TypeVerdictIssued,
		event.TypeVerdictIssued,
	} {
		ev, err := event.NewEvent("run-1", i, typ, nil)
		if err != nil {
			t.Fatalf("NewEvent() error = %v", err)
		}
		if err := store.Append(ctx, ev); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	verdicts, err := NewReplay(store).EventsByType(ctx, "run-1", event.TypeVerdictIssued)
	if err != nil {
		t.Fatalf("EventsByType() error = %v", err)
	}
	if len(verdicts) != 2 {
		t.Errorf("EventsByType() returned %d events, want 2", len(verdicts))
	}
}

func TestReplay_PayloadBoundsFromMeasurements(t *testing.T) {
	store := memory.NewEventStore()
	ctx := context.Background()

	for i, bytes := range []int{140, 120, 164} {
		ev, err := event.NewEvent("run-1", i, event.TypePayloadMeasured,
			event.PayloadMeasuredPayload{VehicleID: "veh0", Bytes: bytes})
		if err != nil {
			t.Fatalf("NewEvent() error = %v", err)
		}
		if err := store.Append(ctx, ev); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	record, err := NewReplay(store).Reconstruct(ctx, "run-1")
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if record.MinPayload != 120 || record.MaxPayload != 164 {
		t.Errorf("payload bounds = [%d, %d], want [120, 164]",
			record.MinPayload, record.MaxPayload)
	}
	if record.Completed {
		t.Error("record without run.completed should not be marked completed")
	}
}
