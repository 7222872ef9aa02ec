package simulator

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastResilientConfig() ResilientConfig {
	return ResilientConfig{
		RetryMaxAttempts:       3,
		RetryInitialDelay:      time.Millisecond,
		RetryBackoffMultiplier: 2.0,
		BreakerThreshold:       5,
		BreakerTimeout:         time.Second,
	}
}

func TestResilientClient_RetriesTransientCommandFailure(t *testing.T) {
	inner := NewScripted().
		AddTick(Observation{ID: "veh0"}).
		FailNext(CommandSetSpeed, errors.New("transient"))

	client := NewResilientClient(inner, fastResilientConfig())

	if err := client.SetSpeed(context.Background(), "veh0", 8.0); err != nil {
		t.Fatalf("SetSpeed() error = %v, want retry to succeed", err)
	}

	// First attempt failed, second was journaled.
	journal := inner.Journal()
	if len(journal) != 1 {
		t.Fatalf("journal has %d entries, want 1", len(journal))
	}
	if journal[0].Kind != CommandSetSpeed || journal[0].Speed != 8.0 {
		t.Errorf("journal[0] = %+v, want set_speed 8.0", journal[0])
	}
}

func TestResilientClient_QueriesPassThrough(t *testing.T) {
	inner := NewScripted().
		AddTick(Observation{ID: "veh0", LanePosition: 25}).
		SetLaneCount("e1", 3)

	client := NewResilientClient(inner, fastResilientConfig())
	ctx := context.Background()

	o, err := client.Observe(ctx, "veh0")
	if err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if o.LanePosition != 25 {
		t.Errorf("Observe() lane position = %v, want 25", o.LanePosition)
	}

	lanes, err := client.LaneCount(ctx, "e1")
	if err != nil {
		t.Fatalf("LaneCount() error = %v", err)
	}
	if lanes != 3 {
		t.Errorf("LaneCount() = %d, want 3", lanes)
	}
}

func TestResilientClient_StepRetries(t *testing.T) {
	inner := NewScripted().
		AddTick(Observation{ID: "veh0"}).
		AddTick(Observation{ID: "veh0"}).
		FailNext(CommandStep, errors.New("transient"))

	client := NewResilientClient(inner, fastResilientConfig())

	if err := client.Step(context.Background()); err != nil {
		t.Fatalf("Step() error = %v, want retry to succeed", err)
	}
	if inner.Tick() != 1 {
		t.Errorf("tick = %d, want 1 after retried step", inner.Tick())
	}
}
