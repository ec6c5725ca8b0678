package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Message is one chat message sent to a provider.
type Message struct {
	Role    string
	Content string
}

// Client completes a chat prompt into a JSON object.
type Client interface {
	CompleteJSON(ctx context.Context, messages []Message) (json.RawMessage, error)
}

// ErrNotConfigured is returned when no provider is configured.
var ErrNotConfigured = errors.New("LLM provider not configured")

// PlaceholderClient stands in when no provider credentials are set.
type PlaceholderClient struct{}

func (PlaceholderClient) CompleteJSON(context.Context, []Message) (json.RawMessage, error) {
	return nil, ErrNotConfigured
}
