package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spetersoncode/nollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Sources{LookupEnv: envMap(nil)})
	require.NoError(t, err)

	assert.True(t, cfg.Stream)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Provider)
	assert.Empty(t, cfg.Configured())
}

func TestLoadPrecedence(t *testing.T) {
	settings := writeFile(t, "config.toml", `
provider = "anthropic"
model = "claude-haiku-4-5"
stream = false
system_prompt = "be brief"
max_tokens = 512

[log]
level = "debug"
file = "/tmp/from-settings.log"
`)
	credentials := writeFile(t, ".nollama", `
ANTHROPIC_API_KEY=file-anthropic
OPENAI_API_KEY=file-openai
NOLLAMA_MODEL=claude-opus-4-5
`)

	cfg, err := Load(Sources{
		SettingsFile:   settings,
		CredentialFile: credentials,
		LookupEnv: envMap(map[string]string{
			"OPENAI_API_KEY": "env-openai",
			"GEMINI_API_KEY": "env-gemini",
			"NOLLAMA_STREAM": "true",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "env-openai", cfg.OpenAIKey)
	assert.Equal(t, "file-anthropic", cfg.AnthropicKey)
	assert.Equal(t, "env-gemini", cfg.GoogleKey)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-opus-4-5", cfg.Model)
	assert.True(t, cfg.Stream)
	assert.Equal(t, "be brief", cfg.SystemPrompt)
	assert.Equal(t, 512, cfg.MaxTokens)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/from-settings.log", cfg.LogFile)
	assert.Equal(t, []nollama.Provider{nollama.ProviderOpenAI, nollama.ProviderAnthropic, nollama.ProviderGoogle}, cfg.Configured())
}

func TestLoadGoogleKeyPreferredOverGemini(t *testing.T) {
	cfg, err := Load(Sources{LookupEnv: envMap(map[string]string{
		"GOOGLE_API_KEY": "google",
		"GEMINI_API_KEY": "gemini",
	})})
	require.NoError(t, err)
	assert.Equal(t, "google", cfg.GoogleKey)
}

func TestLoadMissingFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(Sources{
		SettingsFile:   filepath.Join(dir, "missing.toml"),
		CredentialFile: filepath.Join(dir, "missing"),
		LookupEnv:      envMap(nil),
	})
	assert.NoError(t, err)
}

func TestLoadErrors(t *testing.T) {
	t.Run("malformed settings", func(t *testing.T) {
		_, err := Load(Sources{SettingsFile: writeFile(t, "config.toml", "provider = "), LookupEnv: envMap(nil)})
		assert.Error(t, err)
	})

	t.Run("invalid numbers and booleans", func(t *testing.T) {
		_, err := Load(Sources{LookupEnv: envMap(map[string]string{
			"NOLLAMA_MAX_TOKENS": "lots",
			"NOLLAMA_STREAM":     "sometimes",
		})})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NOLLAMA_MAX_TOKENS")
		assert.Contains(t, err.Error(), "NOLLAMA_STREAM")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{OpenAIKey: "k", MaxRetries: 1, LogLevel: "info"}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		errText string
	}{
		{"valid", func(*Config) {}, nil, ""},
		{"no credentials", func(c *Config) { c.OpenAIKey = "" }, ErrNoCredentials, ""},
		{"unknown provider", func(c *Config) { c.Provider = "mistral" }, nil, "unknown provider"},
		{"provider without key", func(c *Config) { c.Provider = "gemini" }, nil, "GOOGLE_API_KEY or GEMINI_API_KEY"},
		{"provider alias with key", func(c *Config) { c.Provider = "OpenAI" }, nil, ""},
		{"negative max tokens", func(c *Config) { c.MaxTokens = -1 }, nil, "max tokens"},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, nil, "max retries"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, nil, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestAPIKeys(t *testing.T) {
	cfg := &Config{OpenAIKey: "o", AnthropicKey: "a", GoogleKey: "g"}
	keys := cfg.APIKeys()
	assert.Equal(t, "o", keys.For(nollama.ProviderOpenAI))
	assert.Equal(t, "a", keys.For(nollama.ProviderAnthropic))
	assert.Equal(t, "g", keys.For(nollama.ProviderGoogle))
}
