// Package config loads nollama's settings from the settings file, the
// credential file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spetersoncode/nollama"
	"github.com/spetersoncode/nollama/client"
	"github.com/spetersoncode/nollama/internal/logging"
)

// Environment keys.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvAnthropicKey  = "ANTHROPIC_API_KEY"
	EnvGoogleKey     = "GOOGLE_API_KEY"
	EnvGeminiKey     = "GEMINI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvProvider      = "NOLLAMA_PROVIDER"
	EnvModel         = "NOLLAMA_MODEL"
	EnvStream        = "NOLLAMA_STREAM"
	EnvSystemPrompt  = "NOLLAMA_SYSTEM_PROMPT"
	EnvMaxTokens     = "NOLLAMA_MAX_TOKENS"
	EnvMaxRetries    = "NOLLAMA_MAX_RETRIES"
	EnvLogLevel      = "NOLLAMA_LOG_LEVEL"
	EnvLogFile       = "NOLLAMA_LOG_FILE"
)

// DefaultMaxRetries is the number of attempts per request, including the first.
const DefaultMaxRetries = 5

// ErrNoCredentials is returned when no provider has an API key.
var ErrNoCredentials = errors.New("no API key found: set OPENAI_API_KEY, ANTHROPIC_API_KEY or GOOGLE_API_KEY in the environment or in ~/.nollama")

// Config is the resolved configuration of one run.
type Config struct {
	OpenAIKey     string
	AnthropicKey  string
	GoogleKey     string
	OpenAIBaseURL string

	// Provider and Model are empty when the user should be asked.
	Provider string
	Model    string

	Stream       bool
	SystemPrompt string
	MaxTokens    int
	MaxRetries   int

	LogLevel string
	LogFile  string

	// HistoryFile stores line-editor input history.
	HistoryFile string
}

// Settings mirrors the TOML settings file.
type Settings struct {
	Provider     string `toml:"provider"`
	Model        string `toml:"model"`
	Stream       *bool  `toml:"stream"`
	SystemPrompt string `toml:"system_prompt"`
	MaxTokens    int    `toml:"max_tokens"`
	Log          struct {
		Level string `toml:"level"`
		File  string `toml:"file"`
	} `toml:"log"`
}

// Sources says where configuration is read from. Empty paths are skipped.
type Sources struct {
	CredentialFile string
	SettingsFile   string

	// LookupEnv reads the environment; os.LookupEnv when nil.
	LookupEnv func(string) (string, bool)
}

// DefaultSources reads ~/.nollama, the user settings file and the process
// environment.
func DefaultSources() Sources {
	return Sources{
		CredentialFile: homePath(".nollama"),
		SettingsFile:   DefaultSettingsFile(),
	}
}

// DefaultSettingsFile is $XDG_CONFIG_HOME/nollama/config.toml, falling back
// to ~/.config.
func DefaultSettingsFile() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = homePath(".config")
	}
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "nollama", "config.toml")
}

func homePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, name)
}

// Load resolves configuration. Precedence from lowest to highest: defaults,
// settings file, credential file, environment. Missing files are ignored;
// malformed files and invalid values are errors.
func Load(src Sources) (*Config, error) {
	cfg := &Config{
		Stream:      true,
		MaxRetries:  DefaultMaxRetries,
		LogLevel:    "info",
		HistoryFile: homePath(".nollama_history"),
	}

	if src.SettingsFile != "" {
		s, err := ReadSettings(src.SettingsFile)
		if err != nil {
			return nil, err
		}
		cfg.apply(s)
	}

	var file map[string]string
	if src.CredentialFile != "" {
		m, err := godotenv.Read(src.CredentialFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", src.CredentialFile, err)
		}
		file = m
	}

	lookupEnv := src.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	e := &env{lookup: func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := file[key]
		return v, ok && v != ""
	}}

	cfg.OpenAIKey = e.getOrDefault(EnvOpenAIKey, cfg.OpenAIKey)
	cfg.AnthropicKey = e.getOrDefault(EnvAnthropicKey, cfg.AnthropicKey)
	cfg.GoogleKey = e.getOrDefault(EnvGoogleKey, e.getOrDefault(EnvGeminiKey, cfg.GoogleKey))
	cfg.OpenAIBaseURL = e.getOrDefault(EnvOpenAIBaseURL, cfg.OpenAIBaseURL)
	cfg.Provider = e.getOrDefault(EnvProvider, cfg.Provider)
	cfg.Model = e.getOrDefault(EnvModel, cfg.Model)
	cfg.Stream = e.getBoolOrDefault(EnvStream, cfg.Stream)
	cfg.SystemPrompt = e.getOrDefault(EnvSystemPrompt, cfg.SystemPrompt)
	cfg.MaxTokens = e.getIntOrDefault(EnvMaxTokens, cfg.MaxTokens)
	cfg.MaxRetries = e.getIntOrDefault(EnvMaxRetries, cfg.MaxRetries)
	cfg.LogLevel = e.getOrDefault(EnvLogLevel, cfg.LogLevel)
	cfg.LogFile = e.getOrDefault(EnvLogFile, cfg.LogFile)

	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadSettings decodes a TOML settings file. A missing file yields zero
// Settings.
func ReadSettings(path string) (Settings, error) {
	var s Settings
	_, err := toml.DecodeFile(path, &s)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return s, nil
}

func (c *Config) apply(s Settings) {
	if s.Provider != "" {
		c.Provider = s.Provider
	}
	if s.Model != "" {
		c.Model = s.Model
	}
	if s.Stream != nil {
		c.Stream = *s.Stream
	}
	if s.SystemPrompt != "" {
		c.SystemPrompt = s.SystemPrompt
	}
	if s.MaxTokens != 0 {
		c.MaxTokens = s.MaxTokens
	}
	if s.Log.Level != "" {
		c.LogLevel = s.Log.Level
	}
	if s.Log.File != "" {
		c.LogFile = s.Log.File
	}
}

// Validate checks that configuration is usable before the session starts.
func (c *Config) Validate() error {
	if len(c.Configured()) == 0 {
		return ErrNoCredentials
	}

	if c.Provider != "" {
		p, err := nollama.ParseProvider(c.Provider)
		if err != nil {
			return err
		}
		if c.APIKeys().For(p) == "" {
			info, _ := p.Info()
			return fmt.Errorf("provider %s selected but %s is not set", p.DisplayName(), strings.Join(info.EnvKeys, " or "))
		}
	}

	if c.MaxTokens < 0 {
		return fmt.Errorf("max tokens must not be negative, got %d", c.MaxTokens)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got %d", c.MaxRetries)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// APIKeys returns the credentials in the client's form.
func (c *Config) APIKeys() client.APIKeys {
	return client.APIKeys{
		OpenAI:    c.OpenAIKey,
		Anthropic: c.AnthropicKey,
		Google:    c.GoogleKey,
	}
}

// Configured returns the providers that have credentials, in registry order.
func (c *Config) Configured() []nollama.Provider {
	keys := c.APIKeys()
	var out []nollama.Provider
	for _, info := range nollama.Providers() {
		if keys.For(info.ID) != "" {
			out = append(out, info.ID)
		}
	}
	return out
}

// env reads typed values and collects parse failures.
type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) getOrDefault(key, defaultValue string) string {
	if value, ok := e.lookup(key); ok {
		return value
	}
	return defaultValue
}

func (e *env) getIntOrDefault(key string, defaultValue int) int {
	if value, ok := e.lookup(key); ok {
		i, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %q is not a number", key, value))
			return defaultValue
		}
		return i
	}
	return defaultValue
}

func (e *env) getBoolOrDefault(key string, defaultValue bool) bool {
	if value, ok := e.lookup(key); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %q is not a boolean", key, value))
			return defaultValue
		}
		return b
	}
	return defaultValue
}
