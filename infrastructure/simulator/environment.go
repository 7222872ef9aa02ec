package simulator

import (
	"context"

	"github.com/felixgeelhaar/v2x-go/domain/safety"
)

// Environment adapts a simulator Client to the safety controller's
// environment port.
type Environment struct {
	client Client
}

// NewEnvironment wraps a client for use by the safety controller.
func NewEnvironment(client Client) *Environment {
	return &Environment{client: client}
}

// SetSpeed commands a target speed.
func (e *Environment) SetSpeed(ctx context.Context, id string, speed float64) error {
	return e.client.SetSpeed(ctx, id, speed)
}

// ChangeLane requests a lane change.
func (e *Environment) ChangeLane(ctx context.Context, id string, lane int, urgency float64) error {
	return e.client.ChangeLane(ctx, id, lane, urgency)
}

// SetRoute replaces a vehicle's route.
func (e *Environment) SetRoute(ctx context.Context, id string, edges []string) error {
	return e.client.SetRoute(ctx, id, edges)
}

// FindRoute computes an edge sequence between two edges.
func (e *Environment) FindRoute(ctx context.Context, from, to string) ([]string, error) {
	return e.client.FindRoute(ctx, from, to)
}

// LaneCount returns the number of lanes on an edge.
func (e *Environment) LaneCount(ctx context.Context, edge string) (int, error) {
	return e.client.LaneCount(ctx, edge)
}

// LaneIndex returns a vehicle's current lane index.
func (e *Environment) LaneIndex(ctx context.Context, id string) (int, error) {
	return e.client.LaneIndex(ctx, id)
}

// Ensure Environment implements safety.Environment
var _ safety.Environment = (*Environment)(nil)
