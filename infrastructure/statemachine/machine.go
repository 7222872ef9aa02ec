// Package statemachine provides the statekit integration for the
// per-vehicle blockage lifecycle.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/v2x-go/domain/safety"
	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
)

// Context carries one vehicle's pending blockage flags through the machine.
type Context struct {
	VehicleID string
	Pending   safety.Pending
}

// State IDs as StateID type for statekit.
const (
	stateClear statekit.StateID = statekit.StateID(vehicle.BlockageClear)
	stateLane  statekit.StateID = statekit.StateID(vehicle.BlockageLane)
	statePath  statekit.StateID = statekit.StateID(vehicle.BlockagePath)
)

// Event types driving the blockage lifecycle.
const (
	eventInjectLane   statekit.EventType = "INJECT_LANE"
	eventInjectPath   statekit.EventType = "INJECT_PATH"
	eventResolveClear statekit.EventType = "RESOLVE_CLEAR"
	eventResolveLane  statekit.EventType = "RESOLVE_LANE"
)

// NewBlockageMachine creates the blockage lifecycle statechart. Both
// injected flags are one-shot: an inject event arms the flag, the next
// controller pass consumes it and a resolve event returns the machine
// toward clear. A path blockage outranks a simultaneously pending lane
// blockage, which stays armed until its own pass.
func NewBlockageMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("blockage").
		WithInitial(stateClear).
		WithContext(&Context{}).
		WithAction("recordLane", recordLane).
		WithAction("recordPath", recordPath).
		WithAction("logEntry", logStateEntry).
		State(stateClear).
			OnEntry("logEntry").
			On(eventInjectLane).Target(stateLane).Do("recordLane").
			On(eventInjectPath).Target(statePath).Do("recordPath").
			Done().
		State(stateLane).
			OnEntry("logEntry").
			On(eventInjectLane).Target(stateLane).Do("recordLane").
			On(eventInjectPath).Target(statePath).Do("recordPath").
			On(eventResolveClear).Target(stateClear).
			Done().
		State(statePath).
			OnEntry("logEntry").
			On(eventInjectPath).Target(statePath).Do("recordPath").
			On(eventInjectLane).Target(statePath).Do("recordLane").
			On(eventResolveClear).Target(stateClear).
			On(eventResolveLane).Target(stateLane).
			Done().
		Build()
}

// StateFromMachine converts the machine state ID to the domain state.
func StateFromMachine(stateID statekit.StateID) vehicle.BlockageState {
	return vehicle.BlockageState(stateID)
}
