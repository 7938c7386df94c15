package ws

import "encoding/json"

// Close codes distinguishing auth failures so clients know whether to retry
// with a fresh token.
const (
	CloseNoCredential      = 4001
	CloseInvalidCredential = 4002
)

// Client -> server intent kinds.
const (
	IntentJoin        = "join"
	IntentLeave       = "leave"
	IntentSend        = "send"
	IntentTypingStart = "typing_start"
	IntentTypingStop  = "typing_stop"
	IntentPing        = "ping"
)

// IncomingEvent is one framed client intent.
type IncomingEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`

	// send fields may come flat on the frame rather than nested in data.
	ConversationID string  `json:"conversationId,omitempty"`
	RecipientID    string  `json:"recipientId,omitempty"`
	Text           string  `json:"text,omitempty"`
	ReplyToID      *string `json:"replyToId,omitempty"`
}

// OutboundEvent is one framed server event.
type OutboundEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// ErrorPayload is the body of an error event; the connection stays open.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
