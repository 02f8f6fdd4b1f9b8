package model

import "github.com/spetersoncode/nollama"

// longContextThreshold is the prompt size above which long-context pricing applies.
const longContextThreshold = 200_000

// ChatPricing contains pricing per million tokens (USD) for chat models.
// Fields are zero if not applicable to a specific provider's model.
type ChatPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
	// InputPerMillionLong and OutputPerMillionLong apply to prompts over
	// 200K tokens (Google only).
	InputPerMillionLong  float64
	OutputPerMillionLong float64
}

// HasLongContextPricing returns true if the model has tiered pricing for long context.
func (p ChatPricing) HasLongContextPricing() bool {
	return p.InputPerMillionLong > 0 || p.OutputPerMillionLong > 0
}

// IsZero reports whether no pricing is known.
func (p ChatPricing) IsZero() bool {
	return p.InputPerMillion == 0 && p.OutputPerMillion == 0
}

// Cost estimates the USD cost of one exchange.
func (p ChatPricing) Cost(u nollama.Usage) float64 {
	in, out := p.InputPerMillion, p.OutputPerMillion
	if u.InputTokens > longContextThreshold && p.HasLongContextPricing() {
		in, out = p.InputPerMillionLong, p.OutputPerMillionLong
	}
	return float64(u.InputTokens)/1_000_000*in + float64(u.OutputTokens)/1_000_000*out
}

// EstimateCost prices usage for a model id. ok is false for unknown models.
func EstimateCost(id string, u nollama.Usage) (cost float64, ok bool) {
	m, found := Lookup(id)
	if !found || m.pricing.IsZero() {
		return 0, false
	}
	return m.pricing.Cost(u), true
}
