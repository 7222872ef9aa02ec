// Package application provides the per-tick orchestration of the
// coordination runtime: observation, arbitration, safety control, and
// event publishing.
package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/v2x-go/domain/config"
	"github.com/felixgeelhaar/v2x-go/domain/event"
	"github.com/felixgeelhaar/v2x-go/domain/intersection"
	"github.com/felixgeelhaar/v2x-go/domain/protocol"
	"github.com/felixgeelhaar/v2x-go/domain/safety"
	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
	"github.com/felixgeelhaar/v2x-go/infrastructure/logging"
	"github.com/felixgeelhaar/v2x-go/infrastructure/simulator"
	"github.com/felixgeelhaar/v2x-go/infrastructure/statemachine"
	"github.com/felixgeelhaar/v2x-go/infrastructure/telemetry"
)

// Engine drives the single-threaded tick loop. Each tick it refreshes the
// snapshot set from the simulator, runs intersection arbitration over the
// full set, then runs the safety pass per vehicle against frozen copies.
type Engine struct {
	client     simulator.Client
	arbiter    *intersection.Arbiter
	controller *safety.Controller
	publisher  event.Publisher
	metrics    *telemetry.MetricsProvider
	cfg        config.Config

	runID      string
	tick       int
	maxTicks   int
	beforeTick func(ctx context.Context, engine *Engine, tick int)
	snapshots map[string]vehicle.Snapshot
	trackers  map[string]*statemachine.Tracker

	minPayload int
	maxPayload int
}

// EngineConfig contains the collaborators and tunables for an engine.
type EngineConfig struct {
	// Client is the simulator connection. Required.
	Client simulator.Client

	// Config carries the coordination tunables.
	Config config.Config

	// Publisher receives the tick event stream. Optional; nil disables
	// event recording.
	Publisher event.Publisher

	// Metrics records OTel measurements. Optional.
	Metrics *telemetry.MetricsProvider

	// MaxTicks bounds a run. Zero means the default of 10000.
	MaxTicks int

	// BeforeTick, if set, runs before every tick of Run. Scenario drivers
	// use it to schedule blockage injections.
	BeforeTick func(ctx context.Context, engine *Engine, tick int)
}

// Summary describes a completed run.
type Summary struct {
	RunID      string
	Ticks      int
	MinPayload int
	MaxPayload int
}

// OverheadReport builds the protocol overhead table for the payload sizes
// observed during the run.
func (s Summary) OverheadReport() protocol.Report {
	return protocol.BuildReport(s.MinPayload, s.MaxPayload)
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Client == nil {
		return nil, errors.New("simulator client is required")
	}

	conf := cfg.Config
	conf.ApplyDefaults()

	maxTicks := cfg.MaxTicks
	if maxTicks == 0 {
		maxTicks = 10000
	}

	env := simulator.NewEnvironment(cfg.Client)
	threshold := conf.Intersection.ApproachThreshold

	return &Engine{
		client:     cfg.Client,
		arbiter:    intersection.New(threshold),
		controller: safety.NewController(conf.Safety, threshold, env),
		publisher:  cfg.Publisher,
		metrics:    cfg.Metrics,
		cfg:        conf,
		runID:      generateRunID(),
		maxTicks:   maxTicks,
		beforeTick: cfg.BeforeTick,
		snapshots:  make(map[string]vehicle.Snapshot),
		trackers:   make(map[string]*statemachine.Tracker),
		minPayload: -1,
	}, nil
}

// RunID returns the identifier for this engine's run.
func (e *Engine) RunID() string {
	return e.runID
}

// Inject broadcasts a blockage notification to every tracked vehicle. The
// next safety pass consumes it.
func (e *Engine) Inject(ctx context.Context, b event.Blockage) {
	for _, tracker := range e.trackers {
		tracker.Inject(b)
	}

	logging.Info().
		Add(logging.RunID(e.runID)).
		Add(logging.Tick(e.tick)).
		Add(logging.Blockage(b.Kind())).
		Add(logging.Str("location", b.Location())).
		Msg("blockage injected")

	if e.metrics != nil {
		e.metrics.RecordBlockage(ctx, b.Kind())
	}
	e.publish(ctx, event.TypeBlockageInjected, event.BlockageInjectedPayload{
		Kind:     string(b.Kind()),
		Location: b.Location(),
	})
}

// Run executes ticks until no vehicles remain, the tick bound is hit, or
// the context is cancelled.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	logging.Info().
		Add(logging.RunID(e.runID)).
		Msg("run started")

	for e.tick < e.maxTicks {
		select {
		case <-ctx.Done():
			return e.summary(), ctx.Err()
		default:
		}

		remaining, err := e.client.ExpectedVehicles(ctx)
		if err != nil {
			return e.summary(), fmt.Errorf("expected vehicles: %w", err)
		}
		if remaining == 0 {
			break
		}

		if e.beforeTick != nil {
			e.beforeTick(ctx, e, e.tick)
		}
		if err := e.Tick(ctx); err != nil {
			return e.summary(), err
		}
	}

	sum := e.summary()
	e.publish(ctx, event.TypeRunCompleted, event.RunCompletedPayload{
		Ticks:      sum.Ticks,
		MinPayload: sum.MinPayload,
		MaxPayload: sum.MaxPayload,
	})
	e.flush(ctx)

	logging.Info().
		Add(logging.RunID(e.runID)).
		Add(logging.Tick(sum.Ticks)).
		Msg("run completed")

	return sum, nil
}

// Tick runs one simulation step and the full coordination pass over it.
func (e *Engine) Tick(ctx context.Context) error {
	if err := e.observe(ctx); err != nil {
		return err
	}

	e.publish(ctx, event.TypeTickStarted, event.TickStartedPayload{
		Vehicles: len(e.snapshots),
	})

	e.arbitrate(ctx)
	e.safetyPass(ctx)
	e.flush(ctx)

	if err := e.client.Step(ctx); err != nil {
		return fmt.Errorf("simulator step: %w", err)
	}
	e.tick++
	return nil
}

// observe refreshes the snapshot set from the simulator, carrying previous
// lane positions over and dropping vehicles gone from the network.
func (e *Engine) observe(ctx context.Context) error {
	ids, err := e.client.VehicleIDs(ctx)
	if err != nil {
		return fmt.Errorf("vehicle ids: %w", err)
	}

	observed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		obs, err := e.client.Observe(ctx, id)
		if err != nil {
			return fmt.Errorf("observe %s: %w", id, err)
		}
		observed[id] = struct{}{}

		next := obs.Snapshot()
		if prev, ok := e.snapshots[id]; ok {
			next = prev.Refresh(next)
		} else {
			tracker, err := statemachine.NewTracker(id)
			if err != nil {
				return fmt.Errorf("blockage tracker for %s: %w", id, err)
			}
			e.trackers[id] = tracker
			if e.metrics != nil {
				e.metrics.VehicleObserved(ctx)
			}
		}
		e.snapshots[id] = next
	}

	for id := range e.snapshots {
		if _, ok := observed[id]; ok {
			continue
		}
		delete(e.snapshots, id)
		if tracker, ok := e.trackers[id]; ok {
			tracker.Stop()
			delete(e.trackers, id)
		}
		if e.metrics != nil {
			e.metrics.VehicleGone(ctx)
		}
	}

	return nil
}

// arbitrate registers the full snapshot set, then applies the verdicts.
// Registration completes before any decision so late registrations cannot
// flip a grant within the tick.
func (e *Engine) arbitrate(ctx context.Context) {
	observed := make(map[string]struct{}, len(e.snapshots))
	for id, s := range e.snapshots {
		e.arbiter.Register(s)
		observed[id] = struct{}{}
	}
	e.arbiter.Sync(observed)

	verdicts := e.arbiter.Decide()
	for _, id := range sortedIDs(verdicts) {
		verdict := verdicts[id]
		s := e.snapshots[id]

		if err := e.controller.Apply(ctx, s, verdict); err != nil {
			logging.Warn().
				Add(logging.RunID(e.runID)).
				Add(logging.Tick(e.tick)).
				Add(logging.VehicleID(id)).
				Add(logging.ErrorField(err)).
				Msg("verdict application failed")
		}

		logging.Debug().
			Add(logging.RunID(e.runID)).
			Add(logging.Tick(e.tick)).
			Add(logging.VehicleID(id)).
			Add(logging.VerdictField(verdict)).
			Msg("verdict issued")

		if e.metrics != nil {
			e.metrics.RecordVerdict(ctx, verdict)
		}
		e.publish(ctx, event.TypeVerdictIssued, event.VerdictIssuedPayload{
			VehicleID: id,
			Verdict:   verdict,
		})
	}
}

// safetyPass runs the gap-keeping controller for every vehicle against
// frozen snapshots of the rest.
func (e *Engine) safetyPass(ctx context.Context) {
	frozen := make([]vehicle.Snapshot, 0, len(e.snapshots))
	for _, s := range e.snapshots {
		frozen = append(frozen, s)
	}

	for _, id := range sortedIDs(e.snapshots) {
		s := e.snapshots[id]
		tracker := e.trackers[id]

		out := e.controller.CourseOfAction(ctx, s, frozen, tracker.Pending())
		tracker.Resolve()

		e.recordOutcome(ctx, out)
	}
}

// recordOutcome logs, measures, and publishes one safety outcome.
func (e *Engine) recordOutcome(ctx context.Context, out safety.Outcome) {
	if out.Err != nil {
		logging.Warn().
			Add(logging.RunID(e.runID)).
			Add(logging.Tick(e.tick)).
			Add(logging.VehicleID(out.VehicleID)).
			Add(logging.ErrorField(out.Err)).
			Msg("safety pass recovered an error")
	}

	if out.PayloadSize > 0 {
		if e.minPayload < 0 || out.PayloadSize < e.minPayload {
			e.minPayload = out.PayloadSize
		}
		if out.PayloadSize > e.maxPayload {
			e.maxPayload = out.PayloadSize
		}
		if e.metrics != nil {
			e.metrics.RecordPayloadSize(ctx, out.PayloadSize)
		}
		e.publish(ctx, event.TypePayloadMeasured, event.PayloadMeasuredPayload{
			VehicleID: out.VehicleID,
			Bytes:     out.PayloadSize,
		})
	}

	if e.metrics != nil {
		e.metrics.RecordOutcome(ctx, out)
	}

	switch out.Action {
	case safety.ActionStop:
		e.publish(ctx, event.TypeVehicleStopped, event.VehicleStoppedPayload{
			VehicleID: out.VehicleID,
			Reason:    stopReason(out),
		})
	case safety.ActionSlow:
		e.publish(ctx, event.TypeVehicleSlowed, event.VehicleSlowedPayload{
			VehicleID: out.VehicleID,
			LeaderID:  out.LeaderID,
			Speed:     out.TargetSpeed,
			Gap:       out.Gap,
		})
	case safety.ActionAccelerate:
		e.publish(ctx, event.TypeVehicleReleased, event.VehicleReleasedPayload{
			VehicleID: out.VehicleID,
		})
	case safety.ActionLaneChange:
		e.publish(ctx, event.TypeLaneChanged, event.LaneChangedPayload{
			VehicleID: out.VehicleID,
			LaneIndex: out.TargetLane,
		})
	case safety.ActionReplan:
		e.publish(ctx, event.TypeRouteReplanned, event.RouteReplannedPayload{
			VehicleID: out.VehicleID,
			Route:     out.NewRoute,
		})
	}
}

// stopReason names what forced a stop.
func stopReason(out safety.Outcome) string {
	if out.ConflictID != "" {
		return "conflict zone occupied by " + out.ConflictID
	}
	if out.Consumed != "" {
		return string(out.Consumed)
	}
	return "hold"
}

// publish appends one event to the stream; failures are logged, never fatal.
func (e *Engine) publish(ctx context.Context, eventType event.Type, payload any) {
	if e.publisher == nil {
		return
	}

	ev, err := event.NewEvent(e.runID, e.tick, eventType, payload)
	if err != nil {
		logging.Warn().
			Add(logging.RunID(e.runID)).
			Add(logging.ErrorField(err)).
			Msg("event encoding failed")
		return
	}
	if err := e.publisher.Publish(ctx, ev); err != nil {
		logging.Warn().
			Add(logging.RunID(e.runID)).
			Add(logging.ErrorField(err)).
			Msg("event publish failed")
	}
}

// flush drains the publisher batch at a tick boundary.
func (e *Engine) flush(ctx context.Context) {
	type flusher interface {
		Flush(ctx context.Context) error
	}
	if f, ok := e.publisher.(flusher); ok {
		if err := f.Flush(ctx); err != nil {
			logging.Warn().
				Add(logging.RunID(e.runID)).
				Add(logging.ErrorField(err)).
				Msg("event flush failed")
		}
	}
}

// summary captures the run so far.
func (e *Engine) summary() Summary {
	minPayload := e.minPayload
	if minPayload < 0 {
		minPayload = 0
	}
	return Summary{
		RunID:      e.runID,
		Ticks:      e.tick,
		MinPayload: minPayload,
		MaxPayload: e.maxPayload,
	}
}

// sortedIDs returns map keys in lexicographic order for deterministic
// per-tick iteration.
func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// generateRunID creates a unique run ID using timestamp and random bytes.
func generateRunID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("run-%d-%s", time.Now().UnixNano(), hex.EncodeToString(b))
}
