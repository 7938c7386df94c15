package bus

import (
	"context"
	"encoding/json"
)

// Event is one broadcast on the bus. Topic addresses a delivery group:
// "user:{id}" for account-wide pushes, "conversation:{id}" for thread
// events. Delivery to live connections is best-effort and at-most-once;
// persisted state, not the bus, is the source of truth.
type Event struct {
	Topic string          `json:"topic"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	// Exclude suppresses delivery to one user's connections on the topic;
	// typing events use it so the originator never hears their own echo.
	Exclude string `json:"exclude,omitempty"`
}

// Bus decouples event producers from the websocket transport. The session
// registry subscribes through StartForwarder and fans events out to its
// local members of the topic.
type Bus interface {
	Publish(ctx context.Context, event Event) error
	StartForwarder(ctx context.Context, onEvent func(Event)) error
	Close() error
}
