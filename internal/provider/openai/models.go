package openai

import (
	"context"
	"net/url"
	"slices"
	"strings"

	"github.com/spetersoncode/nollama"
)

// chatPrefixes are the model families served by chat completions.
var chatPrefixes = []string{"gpt-", "chatgpt-", "o1", "o3", "o4"}

// nonChatMarkers identify models under a chat prefix that do not accept chat
// completion requests.
var nonChatMarkers = []string{
	"audio", "realtime", "transcribe", "tts", "image", "search",
	"instruct", "embedding", "moderation", "codex",
}

// ListModels returns the chat models available to the API key, sorted by id.
// Against a compatible endpoint every listed model is returned, since the
// OpenAI family filter would reject ids such as "llama3".
func (c *Client) ListModels(ctx context.Context) ([]nollama.ModelInfo, error) {
	iter := c.client.Models.ListAutoPaging(ctx)

	var out []nollama.ModelInfo
	for iter.Next() {
		m := iter.Current()
		if c.compatible || isChatModel(m.ID) {
			out = append(out, nollama.ModelInfo{ID: m.ID})
		}
	}
	if err := iter.Err(); err != nil {
		return nil, wrapError(err)
	}

	slices.SortFunc(out, func(a, b nollama.ModelInfo) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func isChatModel(id string) bool {
	id = strings.ToLower(id)
	chat := false
	for _, p := range chatPrefixes {
		if strings.HasPrefix(id, p) {
			chat = true
			break
		}
	}
	if !chat {
		return false
	}
	for _, marker := range nonChatMarkers {
		if strings.Contains(id, marker) {
			return false
		}
	}
	return true
}

// officialEndpoint reports whether baseURL addresses the OpenAI API itself.
// An empty baseURL means the SDK default.
func officialEndpoint(baseURL string) bool {
	if baseURL == "" {
		return true
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), "api.openai.com")
}
