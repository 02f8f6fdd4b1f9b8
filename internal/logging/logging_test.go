package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spetersoncode/nollama"
	"github.com/spetersoncode/nollama/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCreatesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "nollama.log")

	logger, closer, err := Init(Options{Level: "info", File: logPath})
	require.NoError(t, err)

	logger.Info("hello", slog.String("component", "test"))
	logger.Debug("hidden")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	logger, closer, err := Init(Options{Level: "loud", File: filepath.Join(t.TempDir(), "x.log")})
	assert.Error(t, err)
	assert.NotNil(t, logger)
	assert.NotNil(t, closer)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
		wantErr  bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{" INFO ", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDrainEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	events := make(chan client.Event, 2)
	events <- client.Event{Type: client.EventRequestStart, Operation: "chat", Provider: nollama.ProviderOpenAI, Model: "gpt-4o"}
	events <- client.Event{Type: client.EventRequestError, Operation: "chat", Provider: nollama.ProviderOpenAI}
	close(events)

	DrainEvents(context.Background(), logger, events)

	out := buf.String()
	assert.Contains(t, out, `"operation":"chat"`)
	assert.Contains(t, out, `"model":"gpt-4o"`)
	assert.Contains(t, out, `"level":"WARN"`)
}
