package google

import (
	"fmt"

	"github.com/spetersoncode/nollama"
	"google.golang.org/genai"
)

// convertMessages maps the conversation onto Gemini contents. System turns
// and the system option are merged into a single system instruction, which
// is nil when there are none.
func convertMessages(messages []nollama.Message, system string) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var instruction []*genai.Part

	if system != "" {
		instruction = append(instruction, &genai.Part{Text: system})
	}

	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case nollama.RoleSystem:
			instruction = append(instruction, &genai.Part{Text: msg.Content})
		case nollama.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	if len(instruction) == 0 {
		return contents, nil
	}
	return contents, &genai.Content{Parts: instruction}
}

// BlockedError indicates the request was blocked by content filtering.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("request blocked: %s", e.Reason)
}
