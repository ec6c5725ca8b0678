package queue

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CurrentVersion is the envelope version written by Send.
const CurrentVersion = 1

// Message is the envelope sent to downstream queue consumers. Payload is the
// event body, interpreted according to Type.
type Message struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	RequestID  string          `json:"requestId,omitempty"`
	EnqueuedAt string          `json:"enqueuedAt"`
	Version    int             `json:"version"`
	Payload    json.RawMessage `json:"payload"`
}

var ErrInvalidMessage = errors.New("invalid queue message")

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	if msg.Type == "" || msg.ID == "" {
		return nil, fmt.Errorf("%w: type and id are required", ErrInvalidMessage)
	}
	if msg.Version == 0 {
		msg.Version = CurrentVersion
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message. Envelopes from a newer
// version are rejected so consumers never half-read them.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Type == "" || msg.ID == "" {
		return Message{}, fmt.Errorf("%w: type and id are required", ErrInvalidMessage)
	}
	if msg.Version > CurrentVersion {
		return Message{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidMessage, msg.Version)
	}
	return msg, nil
}
