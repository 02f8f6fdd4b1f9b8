package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spetersoncode/nollama"
	"github.com/spetersoncode/nollama/internal/config"
	"github.com/spetersoncode/nollama/internal/selector"
	"github.com/spetersoncode/nollama/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points configuration lookups at an empty home directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	for _, key := range []string{
		config.EnvOpenAIKey, config.EnvAnthropicKey, config.EnvGoogleKey, config.EnvGeminiKey,
		config.EnvProvider, config.EnvModel, config.EnvStream, config.EnvLogLevel,
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadConfigAppliesFlags(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, "keys.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ANTHROPIC_API_KEY=secret\n"), 0o600))

	f := &flags{}
	cmd := newRootCmdWith(f)
	require.NoError(t, cmd.ParseFlags([]string{
		"--env-file", envFile,
		"--no-stream",
		"-p", "anthropic",
		"-m", "claude-haiku-4-5",
		"--log-level", "debug",
	}))

	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.AnthropicKey)
	assert.False(t, cfg.Stream)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-haiku-4-5", cfg.Model)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []nollama.Provider{nollama.ProviderAnthropic}, cfg.Configured())
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("no credentials", func(t *testing.T) {
		isolate(t)
		f := &flags{}
		_, err := loadConfig(newRootCmdWith(f), f)
		assert.ErrorIs(t, err, config.ErrNoCredentials)
	})

	t.Run("missing env file", func(t *testing.T) {
		dir := isolate(t)
		f := &flags{}
		cmd := newRootCmdWith(f)
		require.NoError(t, cmd.ParseFlags([]string{"--env-file", filepath.Join(dir, "absent")}))
		_, err := loadConfig(cmd, f)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "env file")
	})

	t.Run("provider without key", func(t *testing.T) {
		isolate(t)
		t.Setenv(config.EnvOpenAIKey, "k")
		f := &flags{}
		cmd := newRootCmdWith(f)
		require.NoError(t, cmd.ParseFlags([]string{"-p", "google"}))
		_, err := loadConfig(cmd, f)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
	})
}

// scriptedSelector answers with the first choice whose value matches the next
// scripted answer and records every title it is asked.
type scriptedSelector struct {
	answers []string
	asked   []string
}

func (s *scriptedSelector) Choose(ctx context.Context, title string, choices []selector.Choice) (selector.Choice, error) {
	s.asked = append(s.asked, title)
	if len(s.answers) == 0 {
		return selector.Choice{}, selector.ErrCanceled
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	for _, c := range choices {
		if c.Value == answer {
			return c, nil
		}
	}
	return selector.Choice{}, selector.ErrCanceled
}

type staticCatalog []nollama.ModelInfo

func (c staticCatalog) ListModels(ctx context.Context, p nollama.Provider) ([]nollama.ModelInfo, error) {
	return c, nil
}

func TestChooseModel(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.Config
		interactive bool
		answers     []string
		want        nollama.Model
		asked       []string
		wantErr     error
		errContains string
	}{
		{
			name:        "known model picks its provider",
			cfg:         config.Config{OpenAIKey: "o", AnthropicKey: "a", Model: "claude-sonnet-4-5"},
			interactive: true,
			answers:     []string{"openai"},
			want:        nollama.Model{Provider: nollama.ProviderAnthropic, ID: "claude-sonnet-4-5"},
		},
		{
			name:        "dated snapshot keeps its id",
			cfg:         config.Config{OpenAIKey: "o", GoogleKey: "g", Model: "gpt-5-mini-2025-08-07"},
			interactive: true,
			want:        nollama.Model{Provider: nollama.ProviderOpenAI, ID: "gpt-5-mini-2025-08-07"},
		},
		{
			name: "explicit provider wins",
			cfg:  config.Config{OpenAIKey: "o", AnthropicKey: "a", Provider: "openai", Model: "claude-sonnet-4-5"},
			want: nollama.Model{Provider: nollama.ProviderOpenAI, ID: "claude-sonnet-4-5"},
		},
		{
			name:        "unknown model asks for a provider",
			cfg:         config.Config{OpenAIKey: "o", AnthropicKey: "a", Model: "llama3"},
			interactive: true,
			answers:     []string{"openai"},
			want:        nollama.Model{Provider: nollama.ProviderOpenAI, ID: "llama3"},
			asked:       []string{"Select a provider"},
		},
		{
			name:        "unknown model with one provider",
			cfg:         config.Config{GoogleKey: "g", Model: "gemma-3"},
			interactive: true,
			want:        nollama.Model{Provider: nollama.ProviderGoogle, ID: "gemma-3"},
		},
		{
			name:        "known model without its key",
			cfg:         config.Config{OpenAIKey: "o", GoogleKey: "g", Model: "claude-haiku-4-5"},
			errContains: "Anthropic",
		},
		{
			name:        "interactive session asks for a model",
			cfg:         config.Config{AnthropicKey: "a"},
			interactive: true,
			answers:     []string{"claude-test"},
			want:        nollama.Model{Provider: nollama.ProviderAnthropic, ID: "claude-test"},
			asked:       []string{"Select a model (Anthropic)"},
		},
		{
			name: "piped session uses the provider default",
			cfg:  config.Config{AnthropicKey: "a"},
			want: model.ClaudeSonnet45.Model(),
		},
		{
			name:    "piped session against a compatible endpoint lists models",
			cfg:     config.Config{OpenAIKey: "o", OpenAIBaseURL: "http://localhost:11434/v1/"},
			answers: []string{"claude-test"},
			want:    nollama.Model{Provider: nollama.ProviderOpenAI, ID: "claude-test"},
			asked:   []string{"Select a model (OpenAI)"},
		},
		{
			name:        "cancelled provider picker",
			cfg:         config.Config{OpenAIKey: "o", AnthropicKey: "a"},
			interactive: true,
			asked:       []string{"Select a provider"},
			wantErr:     selector.ErrCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := &scriptedSelector{answers: tt.answers}
			catalog := staticCatalog{{ID: "claude-test"}}

			got, err := chooseModel(context.Background(), &tt.cfg, catalog, sel, tt.interactive)
			assert.Equal(t, tt.asked, sel.asked)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errContains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "nollama "))
}

func TestRootRejectsArguments(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"hello"})
	assert.Error(t, cmd.Execute())
}
