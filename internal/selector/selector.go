// Package selector asks the user to pick one entry from a list, either with
// an interactive list or with a numbered menu on plain input.
package selector

import (
	"context"
	"errors"
)

var (
	// ErrCanceled is returned when the user backs out of a selection.
	ErrCanceled = errors.New("selection canceled")

	// ErrNoChoices is returned when there is nothing to choose from.
	ErrNoChoices = errors.New("no choices available")
)

// Choice is one selectable entry.
type Choice struct {
	Label string
	Value string
}

// Selector presents choices under a title and returns the one picked.
type Selector interface {
	Choose(ctx context.Context, title string, choices []Choice) (Choice, error)
}
