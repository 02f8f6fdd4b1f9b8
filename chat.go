package nollama

import "context"

// ChatProvider defines the interface for AI chat providers.
type ChatProvider interface {
	// Chat sends a conversation and returns a complete response.
	Chat(ctx context.Context, messages []Message, opts ...Option) (*Response, error)

	// ChatStream sends a conversation and returns a channel of streaming events.
	// The channel is closed when the stream is complete or an error occurs.
	// Callers should check StreamEvent.Err for any errors.
	ChatStream(ctx context.Context, messages []Message, opts ...Option) (<-chan StreamEvent, error)
}

// ModelInfo describes a model offered by a provider.
type ModelInfo struct {
	ID          string
	DisplayName string
}

// Label returns the display name, or the ID when no display name is known.
func (m ModelInfo) Label() string {
	if m.DisplayName == "" || m.DisplayName == m.ID {
		return m.ID
	}
	return m.DisplayName + " (" + m.ID + ")"
}

// ModelLister discovers the chat models a provider currently offers.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}
