package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/v2x-go/domain/event"
	"github.com/felixgeelhaar/v2x-go/domain/safety"
	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
)

// Tracker wraps a blockage machine for one vehicle. Injection arms a flag;
// Resolve, called after a controller pass, advances the machine to match
// whatever flags the pass left pending.
type Tracker struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewTracker creates and starts a blockage tracker for a vehicle.
func NewTracker(vehicleID string) (*Tracker, error) {
	machine, err := NewBlockageMachine()
	if err != nil {
		return nil, err
	}

	ctx := &Context{VehicleID: vehicleID}
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	interp.Start()

	return &Tracker{interp: interp, ctx: ctx}, nil
}

// Inject arms a blockage flag. A repeated injection of the same kind
// overwrites the pending location; the two kinds stay independent.
func (t *Tracker) Inject(b event.Blockage) {
	switch blocked := b.(type) {
	case event.LaneBlocked:
		t.interp.Send(statekit.Event{Type: eventInjectLane, Payload: blocked})
	case event.PathBlocked:
		t.interp.Send(statekit.Event{Type: eventInjectPath, Payload: blocked})
	}
}

// Pending exposes the flags for the safety controller, which consumes them
// in place during its pass.
func (t *Tracker) Pending() *safety.Pending {
	return &t.ctx.Pending
}

// Resolve advances the machine after a controller pass, based on the flags
// the pass left armed.
func (t *Tracker) Resolve() {
	switch {
	case t.ctx.Pending.Path != nil:
		// Path still pending (the pass reacted to something else); hold.
	case t.ctx.Pending.Lane != nil:
		if t.State() == vehicle.BlockagePath {
			t.interp.Send(statekit.Event{Type: eventResolveLane})
		}
	default:
		if t.State() != vehicle.BlockageClear {
			t.interp.Send(statekit.Event{Type: eventResolveClear})
		}
	}
}

// State returns the current blockage state.
func (t *Tracker) State() vehicle.BlockageState {
	return StateFromMachine(t.interp.State().Value)
}

// Stop stops the underlying interpreter.
func (t *Tracker) Stop() {
	t.interp.Stop()
}
