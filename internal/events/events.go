// Package events relays session renders between server instances over redis
// pub/sub, so tabs of one session stay in sync whichever instance they hit.
package events

import "encoding/json"

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types.
const (
	TypeSessionChanged = "session_changed"
)

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// SessionChangedPayload is the payload for the "session_changed" event.
type SessionChangedPayload struct {
	SessionID string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}
