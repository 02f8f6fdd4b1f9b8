package google

import (
	"context"
	"slices"
	"strings"

	"github.com/spetersoncode/nollama"
)

// ListModels returns the Gemini models that support content generation,
// sorted by id. Embedding, image and audio-only models are skipped.
func (c *Client) ListModels(ctx context.Context) ([]nollama.ModelInfo, error) {
	var out []nollama.ModelInfo
	for m, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, wrapError(err)
		}
		if !slices.Contains(m.SupportedActions, "generateContent") {
			continue
		}
		id := strings.TrimPrefix(m.Name, "models/")
		if !strings.HasPrefix(id, "gemini") || strings.Contains(id, "image") || strings.Contains(id, "tts") {
			continue
		}
		out = append(out, nollama.ModelInfo{ID: id, DisplayName: m.DisplayName})
	}

	slices.SortFunc(out, func(a, b nollama.ModelInfo) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}
