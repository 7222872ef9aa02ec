package event

import "github.com/felixgeelhaar/v2x-go/domain/vehicle"

// Type classifies simulation events.
type Type string

// Event types for the coordination runtime.
const (
	// Run lifecycle events
	TypeTickStarted  Type = "tick.started"
	TypeRunCompleted Type = "run.completed"

	// Arbitration events
	TypeVerdictIssued Type = "verdict.issued"

	// Safety controller events
	TypeVehicleStopped  Type = "vehicle.stopped"
	TypeVehicleSlowed   Type = "vehicle.slowed"
	TypeVehicleReleased Type = "vehicle.released"
	TypeLaneChanged     Type = "lane.changed"
	TypeRouteReplanned  Type = "route.replanned"

	// Injection events
	TypeBlockageInjected Type = "blockage.injected"

	// Telemetry events
	TypePayloadMeasured Type = "payload.measured"
)

// Event payload structures

// TickStartedPayload contains data for tick.started events.
type TickStartedPayload struct {
	Vehicles int `json:"vehicles"`
}

// RunCompletedPayload contains data for run.completed events.
type RunCompletedPayload struct {
	Ticks      int `json:"ticks"`
	MinPayload int `json:"min_payload"`
	MaxPayload int `json:"max_payload"`
}

// VerdictIssuedPayload contains data for verdict.issued events.
type VerdictIssuedPayload struct {
	VehicleID string          `json:"vehicle_id"`
	Verdict   vehicle.Verdict `json:"verdict"`
}

// VehicleStoppedPayload contains data for vehicle.stopped events.
type VehicleStoppedPayload struct {
	VehicleID string `json:"vehicle_id"`
	Reason    string `json:"reason"`
}

// VehicleSlowedPayload contains data for vehicle.slowed events.
type VehicleSlowedPayload struct {
	VehicleID string  `json:"vehicle_id"`
	LeaderID  string  `json:"leader_id"`
	Speed     float64 `json:"speed"`
	Gap       float64 `json:"gap"`
}

// VehicleReleasedPayload contains data for vehicle.released events.
type VehicleReleasedPayload struct {
	VehicleID string `json:"vehicle_id"`
}

// LaneChangedPayload contains data for lane.changed events.
type LaneChangedPayload struct {
	VehicleID string `json:"vehicle_id"`
	LaneIndex int    `json:"lane_index"`
}

// RouteReplannedPayload contains data for route.replanned events.
type RouteReplannedPayload struct {
	VehicleID string   `json:"vehicle_id"`
	Route     []string `json:"route"`
}

// BlockageInjectedPayload contains data for blockage.injected events.
type BlockageInjectedPayload struct {
	Kind     string `json:"kind"`
	Location string `json:"location"`
}

// PayloadMeasuredPayload contains data for payload.measured events.
type PayloadMeasuredPayload struct {
	VehicleID string `json:"vehicle_id"`
	Bytes     int    `json:"bytes"`
}
