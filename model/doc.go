// Package model is the curated catalog of chat models nollama knows about.
//
// Live model discovery goes through each provider's models endpoint. This
// catalog backs it up when listing fails, supplies the default model per
// provider, and prices token usage for the status line:
//
//	if cost, ok := model.EstimateCost("claude-sonnet-4-5", usage); ok {
//	    fmt.Printf("~$%.4f\n", cost)
//	}
//
// Dated snapshot ids resolve to their alias, so
// "claude-sonnet-4-5-20250929" is priced as [ClaudeSonnet45].
package model
