package vehicle

import "errors"

// Domain errors for vehicle coordination.
var (
	// ErrUnknownVehicle indicates an operation referenced an unregistered vehicle.
	ErrUnknownVehicle = errors.New("unknown vehicle")

	// ErrNoPreviousPosition indicates a comparison required a prior lane
	// position that does not exist yet.
	ErrNoPreviousPosition = errors.New("no previous lane position")

	// ErrLaneChangeRejected indicates the environment refused a lane change.
	ErrLaneChangeRejected = errors.New("lane change rejected")

	// ErrEmptyRoute indicates a replan was requested with no route to keep.
	ErrEmptyRoute = errors.New("empty route")
)
