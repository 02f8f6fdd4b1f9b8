package nollama

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		input    string
		expected Provider
	}{
		{"openai", ProviderOpenAI},
		{"OpenAI", ProviderOpenAI},
		{"  anthropic ", ProviderAnthropic},
		{"claude", ProviderAnthropic},
		{"google", ProviderGoogle},
		{"Gemini", ProviderGoogle},
		{"google gemini", ProviderGoogle},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParseProvider(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}

	t.Run("unknown provider", func(t *testing.T) {
		_, err := ParseProvider("ollama")
		require.Error(t, err)

		var upe *UnknownProviderError
		require.True(t, errors.As(err, &upe))
		assert.Equal(t, "ollama", upe.Name)
		assert.Contains(t, err.Error(), "openai, anthropic, google")
	})
}

func TestProviders(t *testing.T) {
	list := Providers()
	require.Len(t, list, 3)
	assert.Equal(t, ProviderOpenAI, list[0].ID)

	list[0].DisplayName = "mutated"
	assert.Equal(t, "OpenAI", ProviderOpenAI.DisplayName())
}

func TestProviderInfo(t *testing.T) {
	info, ok := ProviderGoogle.Info()
	require.True(t, ok)
	assert.Equal(t, []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}, info.EnvKeys)

	_, ok = Provider("nope").Info()
	assert.False(t, ok)
	assert.Equal(t, "nope", Provider("nope").DisplayName())
}

func TestModel(t *testing.T) {
	var zero Model
	assert.True(t, zero.IsZero())

	m := Model{Provider: ProviderAnthropic, ID: "claude-sonnet-4-5"}
	assert.False(t, m.IsZero())
	assert.Equal(t, "claude-sonnet-4-5", m.String())
}
