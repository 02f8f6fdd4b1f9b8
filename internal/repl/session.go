package repl

import (
	"github.com/spetersoncode/nollama"
)

// Session is the state of one REPL run: the active model and the
// conversation sent with each prompt.
type Session struct {
	ID       string
	model    nollama.Model
	messages []nollama.Message
}

// NewSession starts an empty conversation with m.
func NewSession(m nollama.Model) *Session {
	return &Session{
		ID:       nollama.GenerateMessageID(),
		model:    m,
		messages: make([]nollama.Message, 0),
	}
}

// Model returns the active model.
func (s *Session) Model() nollama.Model {
	return s.model
}

// Messages returns a copy of the conversation.
func (s *Session) Messages() []nollama.Message {
	result := make([]nollama.Message, len(s.messages))
	copy(result, s.messages)
	return result
}

// Len returns the number of messages.
func (s *Session) Len() int {
	return len(s.messages)
}

// Replace swaps in the conversation returned by an exchange.
func (s *Session) Replace(messages []nollama.Message) {
	s.messages = make([]nollama.Message, len(messages))
	copy(s.messages, messages)
}

// Clear removes all messages.
func (s *Session) Clear() {
	s.messages = make([]nollama.Message, 0)
}

// SetModel switches to m and reports whether it differs from the active
// model. A switch clears the conversation.
func (s *Session) SetModel(m nollama.Model) bool {
	if m == s.model {
		return false
	}
	s.model = m
	s.Clear()
	return true
}
