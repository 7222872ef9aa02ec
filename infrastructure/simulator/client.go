// Package simulator defines the boundary to the traffic simulator and
// provides a scripted in-memory implementation for tests and demos.
package simulator

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
)

// Errors
var (
	ErrVehicleNotFound = errors.New("simulator: vehicle not found")
	ErrEdgeNotFound    = errors.New("simulator: edge not found")
	ErrNoRoute         = errors.New("simulator: no route between edges")
	ErrClosed          = errors.New("simulator: client closed")
)

// Observation is one vehicle's raw simulator state at the current tick.
type Observation struct {
	ID           string
	Position     vehicle.Position
	Speed        float64
	Heading      float64
	Route        []string
	EdgeID       string
	LaneID       string
	LaneIndex    int
	LanePosition float64
	Length       float64
	TypeID       string
}

// Snapshot converts the observation into a domain snapshot. The previous
// lane position is not set; Refresh carries it across ticks.
func (o Observation) Snapshot() vehicle.Snapshot {
	return vehicle.Snapshot{
		ID:           o.ID,
		Position:     o.Position,
		Speed:        o.Speed,
		Heading:      o.Heading,
		Route:        o.Route,
		EdgeID:       o.EdgeID,
		LaneID:       o.LaneID,
		LanePosition: o.LanePosition,
		Length:       o.Length,
		TypeID:       o.TypeID,
	}
}

// Client is the interface to a running traffic simulation. Command
// methods (Step, SetSpeed, ChangeLane, SetRoute) mutate simulator state;
// the rest are queries against the current tick.
type Client interface {
	// Step advances the simulation by one tick.
	Step(ctx context.Context) error

	// VehicleIDs returns the IDs of all vehicles currently in the network.
	VehicleIDs(ctx context.Context) ([]string, error)

	// Observe returns the current state of one vehicle.
	Observe(ctx context.Context, id string) (Observation, error)

	// SetSpeed commands a target speed. vehicle.SpeedUnconstrained
	// releases explicit speed control back to the simulator.
	SetSpeed(ctx context.Context, id string, speed float64) error

	// ChangeLane requests a move to the given lane index with the given
	// urgency in seconds.
	ChangeLane(ctx context.Context, id string, lane int, urgency float64) error

	// SetRoute replaces a vehicle's remaining route.
	SetRoute(ctx context.Context, id string, edges []string) error

	// FindRoute computes an edge sequence between two edges.
	FindRoute(ctx context.Context, from, to string) ([]string, error)

	// LaneCount returns the number of lanes on an edge.
	LaneCount(ctx context.Context, edge string) (int, error)

	// LaneIndex returns a vehicle's current lane index.
	LaneIndex(ctx context.Context, id string) (int, error)

	// ExpectedVehicles returns the number of vehicles still expected to
	// enter or traverse the network. A run ends when this reaches zero.
	ExpectedVehicles(ctx context.Context) (int, error)

	// Close releases the connection to the simulator.
	Close() error
}
