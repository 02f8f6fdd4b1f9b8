package model

import (
	"strings"

	"github.com/spetersoncode/nollama"
)

// Chat is a chat model nollama knows about ahead of time.
type Chat struct {
	id       string
	name     string
	provider nollama.Provider
	pricing  ChatPricing
}

// String returns the API identifier for this model.
func (m Chat) String() string { return m.id }

// Provider returns which provider this model belongs to.
func (m Chat) Provider() nollama.Provider { return m.provider }

// Model returns the routable model identifier.
func (m Chat) Model() nollama.Model {
	return nollama.Model{Provider: m.provider, ID: m.id}
}

// Info returns the model as a selectable entry.
func (m Chat) Info() nollama.ModelInfo {
	return nollama.ModelInfo{ID: m.id, DisplayName: m.name}
}

// Anthropic Claude models.
// Pricing last verified: December 14, 2025
var (
	ClaudeOpus45   = Chat{id: "claude-opus-4-5", name: "Claude Opus 4.5", provider: nollama.ProviderAnthropic, pricing: ChatPricing{InputPerMillion: 5.00, OutputPerMillion: 25.00}}
	ClaudeSonnet45 = Chat{id: "claude-sonnet-4-5", name: "Claude Sonnet 4.5", provider: nollama.ProviderAnthropic, pricing: ChatPricing{InputPerMillion: 3.00, OutputPerMillion: 15.00}}
	ClaudeHaiku45  = Chat{id: "claude-haiku-4-5", name: "Claude Haiku 4.5", provider: nollama.ProviderAnthropic, pricing: ChatPricing{InputPerMillion: 1.00, OutputPerMillion: 5.00}}
)

// OpenAI GPT and o-series models.
// Pricing last verified: December 14, 2025
var (
	GPT52    = Chat{id: "gpt-5.2", provider: nollama.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 1.75, OutputPerMillion: 14.00}}
	GPT51    = Chat{id: "gpt-5.1", provider: nollama.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 1.25, OutputPerMillion: 10.00}}
	GPT5     = Chat{id: "gpt-5", provider: nollama.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 1.25, OutputPerMillion: 10.00}}
	GPT5Mini = Chat{id: "gpt-5-mini", provider: nollama.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 0.25, OutputPerMillion: 1.00}}
	GPT5Nano = Chat{id: "gpt-5-nano", provider: nollama.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 0.10, OutputPerMillion: 0.40}}
	GPT4o    = Chat{id: "gpt-4o", provider: nollama.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 2.50, OutputPerMillion: 10.00}}
	O3       = Chat{id: "o3", provider: nollama.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 2.00, OutputPerMillion: 8.00}}
	O4Mini   = Chat{id: "o4-mini", provider: nollama.ProviderOpenAI, pricing: ChatPricing{InputPerMillion: 1.10, OutputPerMillion: 4.40}}
)

// Google Gemini models.
// Pricing last verified: December 14, 2025
var (
	Gemini3Pro        = Chat{id: "gemini-3-pro-preview", name: "Gemini 3 Pro Preview", provider: nollama.ProviderGoogle, pricing: ChatPricing{InputPerMillion: 2.00, OutputPerMillion: 12.00, InputPerMillionLong: 4.00, OutputPerMillionLong: 18.00}}
	Gemini25Pro       = Chat{id: "gemini-2.5-pro", name: "Gemini 2.5 Pro", provider: nollama.ProviderGoogle, pricing: ChatPricing{InputPerMillion: 1.25, OutputPerMillion: 10.00, InputPerMillionLong: 2.50, OutputPerMillionLong: 15.00}}
	Gemini25Flash     = Chat{id: "gemini-2.5-flash", name: "Gemini 2.5 Flash", provider: nollama.ProviderGoogle, pricing: ChatPricing{InputPerMillion: 0.30, OutputPerMillion: 2.50}}
	Gemini25FlashLite = Chat{id: "gemini-2.5-flash-lite", name: "Gemini 2.5 Flash-Lite", provider: nollama.ProviderGoogle, pricing: ChatPricing{InputPerMillion: 0.10, OutputPerMillion: 0.40}}
)

var known = map[nollama.Provider][]Chat{
	nollama.ProviderOpenAI:    {GPT52, GPT51, GPT5, GPT5Mini, GPT5Nano, GPT4o, O3, O4Mini},
	nollama.ProviderAnthropic: {ClaudeSonnet45, ClaudeOpus45, ClaudeHaiku45},
	nollama.ProviderGoogle:    {Gemini25Flash, Gemini25Pro, Gemini25FlashLite, Gemini3Pro},
}

// KnownInfos returns the curated models for a provider as selectable entries,
// recommended default first. It is used when the provider's model listing is
// unavailable.
func KnownInfos(p nollama.Provider) []nollama.ModelInfo {
	list := known[p]
	out := make([]nollama.ModelInfo, len(list))
	for i, m := range list {
		out[i] = m.Info()
	}
	return out
}

// Default returns the recommended model for a provider.
func Default(p nollama.Provider) (Chat, bool) {
	list := known[p]
	if len(list) == 0 {
		return Chat{}, false
	}
	return list[0], true
}

// Lookup finds a known model by id. Dated snapshots such as
// "claude-sonnet-4-5-20250929" resolve to their alias.
func Lookup(id string) (Chat, bool) {
	var best Chat
	for _, list := range known {
		for _, m := range list {
			if m.id == id {
				return m, true
			}
			if strings.HasPrefix(id, m.id+"-") && len(m.id) > len(best.id) {
				best = m
			}
		}
	}
	return best, best.id != ""
}
