package safety

import "github.com/felixgeelhaar/v2x-go/domain/event"

// Action classifies what a controller pass did for one vehicle.
type Action string

const (
	// ActionNone means the pass made no control change (for example a
	// replan request with an empty route).
	ActionNone Action = "none"

	// ActionMaintain keeps the current speed; no command is sent.
	ActionMaintain Action = "maintain"

	// ActionStop commands a full stop.
	ActionStop Action = "stop"

	// ActionSlow decelerates behind a leader.
	ActionSlow Action = "slow"

	// ActionAccelerate speeds up toward cruise speed on a clear road.
	ActionAccelerate Action = "accelerate"

	// ActionLaneChange requests a move to an alternate lane.
	ActionLaneChange Action = "lane_change"

	// ActionReplan replaces the route around a full blockage.
	ActionReplan Action = "replan"
)

// Outcome reports what one CourseOfAction pass did. The payload size is
// always populated; the remaining fields depend on the action taken. Err
// holds a recovered failure for logging and is never fatal.
type Outcome struct {
	VehicleID   string
	Action      Action
	TargetSpeed float64
	TargetLane  int
	NewRoute    []string

	// LeaderID and Gap describe the nearest leader when one was evaluated.
	LeaderID string
	Gap      float64

	// ConflictID names the in-zone vehicle that forced a pre-entry stop.
	ConflictID string

	// Consumed names the blockage flag this pass cleared, if any.
	Consumed event.BlockageKind

	// PayloadSize is the broadcast payload size for this tick's state.
	PayloadSize int

	// Err is a locally recovered failure, surfaced for logging only.
	Err error
}
