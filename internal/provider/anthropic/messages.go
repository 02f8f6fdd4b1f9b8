package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spetersoncode/nollama"
)

// convertMessages splits the conversation into Messages API turns and system
// blocks. Empty turns are skipped because the API rejects empty text blocks.
func convertMessages(messages []nollama.Message, system string) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var result []anthropic.MessageParam
	var blocks []anthropic.TextBlockParam

	if system != "" {
		blocks = append(blocks, anthropic.TextBlockParam{Text: system})
	}

	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case nollama.RoleSystem:
			blocks = append(blocks, anthropic.TextBlockParam{Text: msg.Content})
		case nollama.RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return result, blocks
}
