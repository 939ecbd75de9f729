// Package hub fans driver-state events out to websocket subscribers using
// a single goroutine that owns the client set.
package hub

import (
	"encoding/json"
	"time"
)

// Event types published by the dashboard.
const (
	TypeAlert = "alert"
	TypeState = "state"
	TypeReset = "reset"
)

// Envelope is the JSON frame every subscriber receives.
type Envelope struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEnvelope stamps payload with the current time.
func NewEnvelope(typ string, payload any) Envelope {
	return Envelope{Type: typ, Payload: payload, Timestamp: time.Now().UTC()}
}

// Encode marshals the envelope.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}
