// Package safety provides the per-vehicle local safety controller: verdict
// application, gap keeping, and blockage reactions.
package safety

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/v2x-go/domain/config"
	"github.com/felixgeelhaar/v2x-go/domain/event"
	"github.com/felixgeelhaar/v2x-go/domain/message"
	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
)

// Environment is the slice of the simulator command surface the controller
// needs. All failures it returns are recoverable; the controller never
// escalates them.
type Environment interface {
	// SetSpeed commands a target speed; vehicle.SpeedUnconstrained releases
	// explicit speed control.
	SetSpeed(ctx context.Context, id string, speed float64) error

	// ChangeLane requests a move to the given lane index.
	ChangeLane(ctx context.Context, id string, lane int, urgency float64) error

	// SetRoute replaces the vehicle's route with a new edge sequence.
	SetRoute(ctx context.Context, id string, edges []string) error

	// FindRoute computes an edge sequence between two edges.
	FindRoute(ctx context.Context, from, to string) ([]string, error)

	// LaneCount returns the number of lanes on an edge.
	LaneCount(ctx context.Context, edge string) (int, error)

	// LaneIndex returns the vehicle's current lane index.
	LaneIndex(ctx context.Context, id string) (int, error)
}

// Pending carries the not-yet-consumed blockage flags for one vehicle. The
// two flags are independent; either or both may be set.
type Pending struct {
	Path *event.PathBlocked
	Lane *event.LaneBlocked
}

// Controller translates verdicts and proximity information into control
// commands for one tick. It is stateless across ticks; pending blockage
// flags are owned by the caller and handed in per pass.
type Controller struct {
	cfg       config.SafetyConfig
	threshold float64
	env       Environment
}

// NewController creates a controller with the given tunables and command
// surface. threshold is the conflict-zone lane-position bound shared with
// the arbiter.
func NewController(cfg config.SafetyConfig, threshold float64, env Environment) *Controller {
	return &Controller{cfg: cfg, threshold: threshold, env: env}
}

// Apply executes the arbiter's verdict. A vehicle already past the
// conflict-zone threshold is always released at unconstrained speed: a
// vehicle beyond the contested zone must never be forced to stop.
func (c *Controller) Apply(ctx context.Context, s vehicle.Snapshot, verdict vehicle.Verdict) error {
	if s.LanePosition > c.threshold {
		return c.env.SetSpeed(ctx, s.ID, vehicle.SpeedUnconstrained)
	}

	switch verdict {
	case vehicle.VerdictHold:
		return c.env.SetSpeed(ctx, s.ID, 0)
	default:
		return c.env.SetSpeed(ctx, s.ID, vehicle.SpeedUnconstrained)
	}
}

// CourseOfAction runs the gap-keeping pass for one vehicle against the
// frozen snapshots of all other vehicles this tick. The returned outcome
// always carries the broadcast payload size, whichever branch executed.
// Consumed blockage flags are reset in pending.
func (c *Controller) CourseOfAction(ctx context.Context, self vehicle.Snapshot, others []vehicle.Snapshot, pending *Pending) Outcome {
	out := Outcome{VehicleID: self.ID, Action: ActionMaintain}

	if size, err := message.FromSnapshot(self).Size(); err == nil {
		out.PayloadSize = size
	}

	zone := c.cfg.ConflictZone
	inside := zone.Contains(self.Position.X, self.Position.Y)

	// A vehicle outside the zone yields to anyone already inside it.
	if !inside {
		for _, other := range others {
			if other.ID == self.ID {
				continue
			}
			if zone.Contains(other.Position.X, other.Position.Y) &&
				self.DistanceTo(other) < c.cfg.SafetyDistance {
				out.Action = ActionStop
				out.ConflictID = other.ID
				out.Err = c.env.SetSpeed(ctx, self.ID, 0)
				return out
			}
		}
	}
	// A vehicle inside the zone is never stopped by this pass, only by
	// event-driven blockage handling.

	if pending != nil && (pending.Path != nil || pending.Lane != nil) {
		return c.reactToBlockage(ctx, self, pending, out)
	}

	leader, gap, found := c.nearestLeader(self, others)
	if !found {
		if self.Speed >= 0 && self.Speed < c.cfg.LowSpeedThreshold {
			out.Action = ActionAccelerate
			out.TargetSpeed = c.cfg.CruiseSpeed
			out.Err = c.env.SetSpeed(ctx, self.ID, c.cfg.CruiseSpeed)
		}
		return out
	}

	out.LeaderID = leader.ID
	out.Gap = gap
	if gap < c.cfg.SafetyDistance {
		target := leader.Speed * c.cfg.SlowdownFactor
		if target < 0 {
			target = 0
		}
		out.Action = ActionSlow
		out.TargetSpeed = target
		out.Err = c.env.SetSpeed(ctx, self.ID, target)
	}
	return out
}

// nearestLeader finds the closest vehicle ahead of self on the same edge
// within the lookahead radius.
func (c *Controller) nearestLeader(self vehicle.Snapshot, others []vehicle.Snapshot) (vehicle.Snapshot, float64, bool) {
	var (
		best    vehicle.Snapshot
		bestGap float64
		found   bool
	)
	for _, other := range others {
		if other.ID == self.ID || !self.OnSameEdge(other) {
			continue
		}
		gap := self.DistanceTo(other)
		if gap > c.cfg.LookaheadRadius {
			continue
		}
		if !c.ahead(self, other) {
			continue
		}
		if !found || gap < bestGap {
			best, bestGap, found = other, gap, true
		}
	}
	return best, bestGap, found
}

// ahead applies the configured direction convention: whether other leads
// self on their shared edge.
func (c *Controller) ahead(self, other vehicle.Snapshot) bool {
	if c.cfg.Direction == config.DirectionDecreasing {
		return other.LanePosition < self.LanePosition
	}
	return other.LanePosition > self.LanePosition
}

// reactToBlockage resolves pending blockage flags. Each flag is consumed
// exactly once; a path blockage takes precedence, leaving a simultaneous
// lane blockage pending for the next pass. The leader pass is skipped on a
// blockage tick.
func (c *Controller) reactToBlockage(ctx context.Context, self vehicle.Snapshot, pending *Pending, out Outcome) Outcome {
	if pending.Path != nil {
		blocked := *pending.Path
		pending.Path = nil
		out.Consumed = event.KindPathBlocked

		if blocked.Edge != "" && blocked.Edge != self.EdgeID {
			// Not on the blocked edge; the flag is spent without a reaction.
			return out
		}
		return c.fullBlockReaction(ctx, self, out)
	}

	blocked := *pending.Lane
	pending.Lane = nil
	out.Consumed = event.KindLaneBlocked

	if blocked.Lane != "" && blocked.Lane != self.LaneID {
		return out
	}

	lanes, err := c.env.LaneCount(ctx, self.EdgeID)
	if err != nil {
		out.Err = fmt.Errorf("lane count for %s: %w", self.EdgeID, err)
		return out
	}
	if lanes <= 1 {
		// Single-lane edge: a lane block is a full block.
		return c.fullBlockReaction(ctx, self, out)
	}

	index, err := c.env.LaneIndex(ctx, self.ID)
	if err != nil {
		out.Err = fmt.Errorf("lane index for %s: %w", self.ID, err)
		return out
	}

	target := (index + 1) % lanes
	if lanes == 2 {
		target = 1 - index
	}
	out.Action = ActionLaneChange
	out.TargetLane = target
	if err := c.env.ChangeLane(ctx, self.ID, target, c.cfg.LaneChangeUrgency); err != nil {
		// Rejections are recovered locally, never escalated.
		out.Err = fmt.Errorf("%w: %w", vehicle.ErrLaneChangeRejected, err)
	}
	return out
}

// fullBlockReaction applies the configured full-blockage policy.
func (c *Controller) fullBlockReaction(ctx context.Context, self vehicle.Snapshot, out Outcome) Outcome {
	if c.cfg.BlockPolicy == config.BlockPolicyStopInPlace {
		out.Action = ActionStop
		out.Err = c.env.SetSpeed(ctx, self.ID, 0)
		return out
	}

	if len(self.Route) == 0 {
		// Nothing to replan toward; the request is a no-op.
		out.Action = ActionNone
		return out
	}
	destination := self.Route[len(self.Route)-1]
	route, err := c.env.FindRoute(ctx, self.EdgeID, destination)
	if err != nil {
		out.Err = fmt.Errorf("find route %s -> %s: %w", self.EdgeID, destination, err)
		return out
	}
	out.Action = ActionReplan
	out.NewRoute = route
	if err := c.env.SetRoute(ctx, self.ID, route); err != nil {
		out.Err = fmt.Errorf("set route for %s: %w", self.ID, err)
	}
	return out
}
