package openai

import (
	"github.com/openai/openai-go"
	"github.com/spetersoncode/nollama"
)

// convertMessages maps conversation turns onto chat completion messages.
// Empty turns are dropped.
func convertMessages(messages []nollama.Message, system string) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		result = append(result, openai.SystemMessage(system))
	}
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case nollama.RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		case nollama.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}
