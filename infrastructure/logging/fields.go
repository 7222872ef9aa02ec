package logging

import (
	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/v2x-go/domain/event"
	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for coordination logging.

// RunID adds a simulation run ID field.
func RunID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("run_id", id)
	}
}

// Tick adds a tick field.
func Tick(tick int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("tick", tick)
	}
}

// VehicleID adds a vehicle ID field.
func VehicleID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("vehicle", id)
	}
}

// LeaderID adds a leader vehicle ID field.
func LeaderID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("leader", id)
	}
}

// Edge adds an edge ID field.
func Edge(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("edge", id)
	}
}

// Lane adds a lane ID field.
func Lane(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("lane", id)
	}
}

// LaneIndex adds a lane index field.
func LaneIndex(index int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("lane_index", index)
	}
}

// VerdictField adds the arbiter verdict.
func VerdictField(v vehicle.Verdict) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("verdict", string(v))
	}
}

// Blockage adds the blockage kind.
func Blockage(kind event.BlockageKind) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("blockage", string(kind))
	}
}

// Gap adds a gap distance field in meters.
func Gap(meters float64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Float64("gap_m", meters)
	}
}

// Speed adds a speed field in m/s.
func Speed(ms float64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Float64("speed_ms", ms)
	}
}

// PayloadSize adds a payload size field in bytes.
func PayloadSize(bytes int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("payload_bytes", bytes)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}
