package nollama

import (
	"fmt"
	"strings"
)

// Provider identifies an AI provider.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
)

// ProviderInfo describes a supported provider.
type ProviderInfo struct {
	ID          Provider
	DisplayName string
	// EnvKeys lists the environment variables that can hold the API key,
	// in lookup order.
	EnvKeys []string
}

var providers = []ProviderInfo{
	{ID: ProviderOpenAI, DisplayName: "OpenAI", EnvKeys: []string{"OPENAI_API_KEY"}},
	{ID: ProviderAnthropic, DisplayName: "Anthropic", EnvKeys: []string{"ANTHROPIC_API_KEY"}},
	{ID: ProviderGoogle, DisplayName: "Google Gemini", EnvKeys: []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}},
}

// Providers returns every supported provider in display order.
func Providers() []ProviderInfo {
	out := make([]ProviderInfo, len(providers))
	copy(out, providers)
	return out
}

// UnknownProviderError is returned when a provider id is not supported.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	ids := make([]string, len(providers))
	for i, p := range providers {
		ids[i] = p.ID.String()
	}
	return fmt.Sprintf("unknown provider %q (supported: %s)", e.Name, strings.Join(ids, ", "))
}

// ParseProvider resolves a provider id or display name, case-insensitively.
// The aliases "claude" and "gemini" are accepted.
func ParseProvider(s string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "claude":
		return ProviderAnthropic, nil
	case "gemini":
		return ProviderGoogle, nil
	}
	for _, p := range providers {
		if name == p.ID.String() || name == strings.ToLower(p.DisplayName) {
			return p.ID, nil
		}
	}
	return "", &UnknownProviderError{Name: s}
}

// Info returns the registry entry for the provider.
func (p Provider) Info() (ProviderInfo, bool) {
	for _, info := range providers {
		if info.ID == p {
			return info, true
		}
	}
	return ProviderInfo{}, false
}

// DisplayName returns a human-readable provider name.
func (p Provider) DisplayName() string {
	if info, ok := p.Info(); ok {
		return info.DisplayName
	}
	return p.String()
}

// Model identifies a model hosted by a specific provider.
type Model struct {
	Provider Provider
	ID       string
}

// String returns the model identifier.
func (m Model) String() string { return m.ID }

// IsZero reports whether no model has been selected.
func (m Model) IsZero() bool { return m.ID == "" }
