// Package vehicle provides the core domain model for connected vehicles.
package vehicle

import "math"

// SpeedUnconstrained is the simulator sentinel that releases explicit
// speed control for a vehicle.
const SpeedUnconstrained = -1.0

// Position is a 2D map coordinate in meters.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Snapshot captures one vehicle's kinematics and topology position for a
// single tick. Snapshots are replaced wholesale every tick; the only value
// carried across ticks is PreviousLanePosition.
type Snapshot struct {
	// ID is the stable vehicle identifier assigned by the simulator.
	ID string

	// Position is the vehicle's map coordinate in meters.
	Position Position

	// Speed is the scalar speed in m/s. Negative values are only ever the
	// simulator's "unconstrained" sentinel, never a measurement.
	Speed float64

	// Heading is the vehicle angle in degrees.
	Heading float64

	// Route is the ordered edge sequence from the current position to the
	// destination. Empty only before the first update. Never mutated in
	// place; a replan installs a new slice.
	Route []string

	// EdgeID and LaneID locate the vehicle in the road topology.
	EdgeID string
	LaneID string

	// LanePosition is the distance along the current lane in meters.
	LanePosition float64

	// PreviousLanePosition is LanePosition as of the prior tick. It is nil
	// until the vehicle has survived at least one refresh and must not be
	// compared while nil.
	PreviousLanePosition *float64

	// Length is the vehicle length in meters. Informational only.
	Length float64

	// TypeID is the simulator's vehicle type.
	TypeID string
}

// Refresh produces the next tick's snapshot from a fresh observation,
// carrying the current lane position over as the previous one.
func (s Snapshot) Refresh(next Snapshot) Snapshot {
	prev := s.LanePosition
	next.ID = s.ID
	next.PreviousLanePosition = &prev
	return next
}

// HasPrevious reports whether the snapshot carries a prior lane position.
func (s Snapshot) HasPrevious() bool {
	return s.PreviousLanePosition != nil
}

// DistanceTo returns the Euclidean distance to another vehicle in meters.
func (s Snapshot) DistanceTo(other Snapshot) float64 {
	dx := other.Position.X - s.Position.X
	dy := other.Position.Y - s.Position.Y
	return math.Hypot(dx, dy)
}

// OnSameEdge reports whether both vehicles occupy the same edge.
func (s Snapshot) OnSameEdge(other Snapshot) bool {
	return s.EdgeID == other.EdgeID
}
