// Package events defines the event names and payloads published by the
// built-in producers.
package events

import (
	"encoding/json"
	"time"
)

// Event names published on a hub.
const (
	// File events
	FileChanged = "file_changed"

	// Connection events
	Heartbeat = "heartbeat"
)

// BaseEvent is the value passed as args to listeners of the built-in
// producers.
type BaseEvent struct {
	Name      string      `json:"event"`
	EventTime time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Timestamp returns when the event occurred.
func (e *BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// ToJSON serializes the event to JSON.
func (e *BaseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// NewEvent creates a new base event with the given name and payload.
func NewEvent(name string, payload interface{}) *BaseEvent {
	return &BaseEvent{
		Name:      name,
		EventTime: time.Now().UTC(),
		Payload:   payload,
	}
}

// HeartbeatPayload is the payload for heartbeat events.
type HeartbeatPayload struct {
	Sequence int64 `json:"sequence"`
}

// NewHeartbeatEvent creates a new heartbeat event.
func NewHeartbeatEvent(seq int64) *BaseEvent {
	return NewEvent(Heartbeat, HeartbeatPayload{Sequence: seq})
}
