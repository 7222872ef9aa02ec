package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/v2x-go/domain/event"
	"github.com/felixgeelhaar/v2x-go/infrastructure/logging"
)

// In statekit, actions receive a pointer to the context. Since our context
// is *Context, actions receive **Context.

// recordLane arms the lane-blocked flag, replacing any pending one
// (last-applied-wins per flag).
func recordLane(ctx **Context, ev statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	if b, ok := ev.Payload.(event.LaneBlocked); ok {
		(*ctx).Pending.Lane = &b
	}
}

// recordPath arms the path-blocked flag, replacing any pending one.
func recordPath(ctx **Context, ev statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	if b, ok := ev.Payload.(event.PathBlocked); ok {
		(*ctx).Pending.Path = &b
	}
}

// logStateEntry logs blockage lifecycle transitions.
func logStateEntry(ctx **Context, ev statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	logging.Debug().
		Add(logging.Component("blockage")).
		Add(logging.VehicleID((*ctx).VehicleID)).
		Add(logging.Str("event", string(ev.Type))).
		Msg("blockage state entered")
}
