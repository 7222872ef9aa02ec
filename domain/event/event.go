// Package event provides domain types and interfaces for the simulation
// event stream.
package event

import (
	"encoding/json"
	"time"
)

// Event is one entry in a simulation run's event stream.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// RunID identifies the simulation run this event belongs to.
	RunID string `json:"run_id"`

	// Type classifies the event.
	Type Type `json:"type"`

	// Tick is the simulation step the event occurred in.
	Tick int `json:"tick"`

	// Timestamp is when the event was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Payload contains the event-specific data.
	Payload json.RawMessage `json:"payload"`

	// Sequence is the ordering number within the run's event stream.
	Sequence uint64 `json:"sequence"`
}

// NewEvent creates a new event with the given type and payload.
func NewEvent(runID string, tick int, eventType Type, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{
		RunID:     runID,
		Type:      eventType,
		Tick:      tick,
		Timestamp: time.Now(),
		Payload:   data,
	}, nil
}

// UnmarshalPayload decodes the event payload into the given value.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}
