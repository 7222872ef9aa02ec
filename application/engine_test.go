package application

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/v2x-go/domain/config"
	"github.com/felixgeelhaar/v2x-go/domain/event"
	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
	infraevent "github.com/felixgeelhaar/v2x-go/infrastructure/event"
	"github.com/felixgeelhaar/v2x-go/infrastructure/simulator"
	"github.com/felixgeelhaar/v2x-go/infrastructure/storage/memory"
)

func newTestEngine(t *testing.T, sim simulator.Client, cfg config.Config) (*Engine, *memory.EventStore) {
	t.Helper()

	store := memory.NewEventStore()
	engine, err := NewEngine(EngineConfig{
		Client:    sim,
		Config:    cfg,
		Publisher: infraevent.NewPublisher(store),
	})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine, store
}

// speedCommands filters the journal down to set_speed entries for one vehicle.
func speedCommands(journal []simulator.Command, id string) []simulator.Command {
	var out []simulator.Command
	for _, cmd := range journal {
		if cmd.Kind == simulator.CommandSetSpeed && cmd.VehicleID == id {
			out = append(out, cmd)
		}
	}
	return out
}

func TestNewEngine_RequiresClient(t *testing.T) {
	if _, err := NewEngine(EngineConfig{}); err == nil {
		t.Fatal("NewEngine() without client should fail")
	}
}

func TestEngine_ArbitrationHoldsAllButClosest(t *testing.T) {
	// Two vehicles on separate edges closing in on the intersection. After
	// the first tick both carry a previous position, so the second tick
	// sees both approaching; only the closer one may proceed.
	sim := simulator.NewScripted().
		AddTick(
			simulator.Observation{ID: "veh0", EdgeID: "north", LanePosition: 28, Speed: 8, Position: vehicle.Position{X: 0, Y: 0}},
			simulator.Observation{ID: "veh1", EdgeID: "east", LanePosition: 25, Speed: 8, Position: vehicle.Position{X: 200, Y: 0}},
		).
		AddTick(
			simulator.Observation{ID: "veh0", EdgeID: "north", LanePosition: 27, Speed: 8, Position: vehicle.Position{X: 0, Y: 0}},
			simulator.Observation{ID: "veh1", EdgeID: "east", LanePosition: 24, Speed: 8, Position: vehicle.Position{X: 200, Y: 0}},
		)

	engine, store := newTestEngine(t, sim, config.Default())
	ctx := context.Background()

	if err := engine.Tick(ctx); err != nil {
		t.Fatalf("first Tick() error = %v", err)
	}
	if err := engine.Tick(ctx); err != nil {
		t.Fatalf("second Tick() error = %v", err)
	}

	// First tick: no previous positions, everyone released.
	// Second tick: veh1 is closest (24 < 27), veh0 held at speed 0.
	veh0 := speedCommands(sim.Journal(), "veh0")
	if len(veh0) < 2 {
		t.Fatalf("veh0 received %d speed commands, want at least 2", len(veh0))
	}
	if veh0[0].Speed != vehicle.SpeedUnconstrained {
		t.Errorf("veh0 tick 0 speed = %v, want unconstrained", veh0[0].Speed)
	}
	if veh0[1].Speed != 0 {
		t.Errorf("veh0 tick 1 speed = %v, want 0 (held)", veh0[1].Speed)
	}

	veh1 := speedCommands(sim.Journal(), "veh1")
	for i, cmd := range veh1 {
		if cmd.Speed != vehicle.SpeedUnconstrained {
			t.Errorf("veh1 command %d speed = %v, want unconstrained", i, cmd.Speed)
		}
	}

	// The verdict stream recorded both vehicles on both ticks.
	events, err := store.LoadEvents(ctx, engine.RunID())
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}
	verdicts := 0
	for _, e := range events {
		if e.Type == event.TypeVerdictIssued {
			verdicts++
		}
	}
	if verdicts != 4 {
		t.Errorf("verdict.issued events = %d, want 4", verdicts)
	}
}

func TestEngine_GapKeepingScenario(t *testing.T) {
	cfg := config.Default()
	cfg.Safety.SafetyDistance = 15

	tests := []struct {
		name      string
		leaderX   float64
		wantSlow  bool
		wantSpeed float64
	}{
		{name: "gap equal to safety distance maintains", leaderX: 115, wantSlow: false},
		{name: "gap below safety distance slows to 0.8x leader", leaderX: 110, wantSlow: true, wantSpeed: 8.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := simulator.NewScripted().AddTick(
				simulator.Observation{
					ID: "follower", EdgeID: "main", LanePosition: 100,
					Position: vehicle.Position{X: 100, Y: 0}, Speed: 13,
				},
				simulator.Observation{
					ID: "leader", EdgeID: "main", LanePosition: tt.leaderX,
					Position: vehicle.Position{X: tt.leaderX, Y: 0}, Speed: 10,
				},
			)

			engine, _ := newTestEngine(t, sim, cfg)
			if err := engine.Tick(context.Background()); err != nil {
				t.Fatalf("Tick() error = %v", err)
			}

			var slowed bool
			for _, cmd := range speedCommands(sim.Journal(), "follower") {
				if cmd.Speed == tt.wantSpeed && tt.wantSlow {
					slowed = true
				}
				if !tt.wantSlow && cmd.Speed != vehicle.SpeedUnconstrained {
					t.Errorf("unexpected speed command %v for follower", cmd.Speed)
				}
			}
			if tt.wantSlow && !slowed {
				t.Errorf("follower never slowed to %v", tt.wantSpeed)
			}
		})
	}
}

func TestEngine_LaneBlockageReactsOnce(t *testing.T) {
	obs := simulator.Observation{
		ID: "veh0", EdgeID: "main", LaneID: "main_0", LaneIndex: 0,
		LanePosition: 100, Position: vehicle.Position{X: 100, Y: 0}, Speed: 13,
	}
	sim := simulator.NewScripted().
		AddTick(obs).
		AddTick(obs).
		AddTick(obs).
		SetLaneCount("main", 2)

	engine, store := newTestEngine(t, sim, config.Default())
	ctx := context.Background()

	// First tick creates the tracker, then the notification arrives.
	if err := engine.Tick(ctx); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	engine.Inject(ctx, event.LaneBlocked{Lane: "main_0"})

	if err := engine.Tick(ctx); err != nil {
		t.Fatalf("Tick() after injection error = %v", err)
	}
	if err := engine.Tick(ctx); err != nil {
		t.Fatalf("Tick() after reaction error = %v", err)
	}

	changes := 0
	for _, cmd := range sim.Journal() {
		if cmd.Kind == simulator.CommandChangeLane {
			changes++
			if cmd.Lane != 1 {
				t.Errorf("lane change target = %d, want 1", cmd.Lane)
			}
		}
	}
	if changes != 1 {
		t.Errorf("lane change commands = %d, want exactly 1", changes)
	}

	events, err := store.LoadEvents(ctx, engine.RunID())
	if err != nil {
		t.Fatalf("LoadEvents() error = %v", err)
	}
	var injected, changed bool
	for _, e := range events {
		switch e.Type {
		case event.TypeBlockageInjected:
			injected = true
		case event.TypeLaneChanged:
			changed = true
		}
	}
	if !injected || !changed {
		t.Errorf("event stream missing blockage records: injected=%v changed=%v", injected, changed)
	}
}

func TestEngine_RunDrainsAndSummarizes(t *testing.T) {
	obs := simulator.Observation{
		ID: "veh0", EdgeID: "main", LanePosition: 100,
		Position: vehicle.Position{X: 100, Y: 0}, Speed: 13,
		Route: []string{"main", "exit"},
	}
	sim := simulator.NewScripted().AddTick(obs).AddTick(obs)

	engine, store := newTestEngine(t, sim, config.Default())
	ctx := context.Background()

	sum, err := engine.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.Ticks != 2 {
		t.Errorf("Ticks = %d, want 2", sum.Ticks)
	}
	if sum.MinPayload <= 0 || sum.MaxPayload < sum.MinPayload {
		t.Errorf("payload bounds = [%d, %d], want positive ordered range",
			sum.MinPayload, sum.MaxPayload)
	}

	report := sum.OverheadReport()
	if len(report.Columns) != 4 {
		t.Errorf("overhead report has %d columns, want 4", len(report.Columns))
	}

	record, err := NewReplay(store).Reconstruct(ctx, engine.RunID())
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if !record.Completed {
		t.Error("replay record not marked completed")
	}
	if record.Ticks != 2 {
		t.Errorf("replayed ticks = %d, want 2", record.Ticks)
	}
	if record.MinPayload != sum.MinPayload || record.MaxPayload != sum.MaxPayload {
		t.Errorf("replayed payload bounds = [%d, %d], want [%d, %d]",
			record.MinPayload, record.MaxPayload, sum.MinPayload, sum.MaxPayload)
	}
}

func TestEngine_RunStopsOnCancelledContext(t *testing.T) {
	obs := simulator.Observation{ID: "veh0", EdgeID: "main", LanePosition: 100}
	sim := simulator.NewScripted().AddTick(obs)

	engine, _ := newTestEngine(t, sim, config.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Run(ctx); err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
