package repl

import (
	"context"
	"errors"
	"fmt"

	"github.com/spetersoncode/nollama"
	"github.com/spetersoncode/nollama/internal/selector"
)

// ModelCatalog lists the models a provider offers.
type ModelCatalog interface {
	ListModels(ctx context.Context, p nollama.Provider) ([]nollama.ModelInfo, error)
}

// SelectProvider asks the user to pick one of providers.
func SelectProvider(ctx context.Context, sel selector.Selector, providers []nollama.Provider) (nollama.Provider, error) {
	choices := make([]selector.Choice, len(providers))
	for i, p := range providers {
		choices[i] = selector.Choice{Label: p.DisplayName(), Value: p.String()}
	}

	c, err := sel.Choose(ctx, "Select a provider", choices)
	if err != nil {
		return "", err
	}
	return nollama.Provider(c.Value), nil
}

// SelectModel lists the models of p and asks the user to pick one.
func SelectModel(ctx context.Context, sel selector.Selector, catalog ModelCatalog, p nollama.Provider) (nollama.Model, error) {
	models, err := catalog.ListModels(ctx, p)
	if err != nil {
		return nollama.Model{}, fmt.Errorf("listing %s models: %w", p.DisplayName(), err)
	}

	choices := make([]selector.Choice, len(models))
	for i, m := range models {
		choices[i] = selector.Choice{Label: m.Label(), Value: m.ID}
	}

	c, err := sel.Choose(ctx, fmt.Sprintf("Select a model (%s)", p.DisplayName()), choices)
	if err != nil {
		if errors.Is(err, selector.ErrNoChoices) {
			return nollama.Model{}, fmt.Errorf("%s offers no chat models", p.DisplayName())
		}
		return nollama.Model{}, err
	}
	return nollama.Model{Provider: p, ID: c.Value}, nil
}
