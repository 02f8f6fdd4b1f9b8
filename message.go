package nollama

import "github.com/google/uuid"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents a single turn in a conversation.
type Message struct {
	// ID uniquely identifies the turn within a session.
	ID      string `json:"id,omitempty"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerateMessageID creates a new unique message ID using UUID v4.
func GenerateMessageID() string {
	return uuid.New().String()
}

// NewUserMessage returns a user turn with a fresh ID.
func NewUserMessage(content string) Message {
	return Message{ID: GenerateMessageID(), Role: RoleUser, Content: content}
}

// NewAssistantMessage returns an assistant turn with a fresh ID.
func NewAssistantMessage(content string) Message {
	return Message{ID: GenerateMessageID(), Role: RoleAssistant, Content: content}
}

// Response represents a complete response from a provider.
type Response struct {
	Content      string
	FinishReason string
	Usage        Usage
}

// Usage contains token usage statistics.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns the sum of input and output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// StreamEvent represents a single event in a streaming response.
type StreamEvent struct {
	// Delta contains the incremental text content.
	Delta string

	// Done indicates the stream is complete.
	Done bool

	// Response contains the final response when Done is true.
	Response *Response

	// Err contains any error that occurred during streaming.
	Err error
}
