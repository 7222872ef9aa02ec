// Package message provides the broadcast message schema and payload sizing.
package message

import (
	"encoding/json"

	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
)

// Packet is the per-tick state broadcast of one vehicle. The encoded field
// order (id, position, speed, angle, route) is the external payload
// contract: the reported payload size is the byte length of this encoding
// and must be deterministic for a given input.
type Packet struct {
	ID       string           `json:"id"`
	Position vehicle.Position `json:"position"`
	Speed    float64          `json:"speed"`
	Angle    float64          `json:"angle"`
	Route    []string         `json:"route"`
}

// FromSnapshot builds the broadcast packet for a vehicle's current state.
func FromSnapshot(s vehicle.Snapshot) Packet {
	return Packet{
		ID:       s.ID,
		Position: s.Position,
		Speed:    s.Speed,
		Angle:    s.Heading,
		Route:    s.Route,
	}
}

// Bytes returns the serialized payload.
func (p Packet) Bytes() ([]byte, error) {
	if p.Route == nil {
		// A vehicle before its first route assignment still broadcasts a
		// well-formed (empty) route array.
		p.Route = []string{}
	}
	return json.Marshal(p)
}

// Size returns the payload size in bytes.
func (p Packet) Size() (int, error) {
	b, err := p.Bytes()
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
