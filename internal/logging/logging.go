// Package logging writes structured logs to a rotating file, away from the
// terminal the chat is drawn on.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spetersoncode/nollama/client"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogFile = "nollama.log"

const (
	maxLogSizeMB  = 5
	maxLogBackups = 5
	maxLogAgeDays = 14
)

// Options configures Init.
type Options struct {
	Level string
	File  string // DefaultPath when empty
}

// Init creates a JSON logger writing to a rotating file. When the log
// directory cannot be created the logger discards output and the error is
// returned alongside it. Close the returned io.Closer on exit.
func Init(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return discard(), io.NopCloser(nil), err
	}
	handlerOptions := &slog.HandlerOptions{Level: level}

	logPath := strings.TrimSpace(opts.File)
	if logPath == "" {
		logPath = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return discard(), io.NopCloser(nil), err
	}

	writer := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(writer, handlerOptions)), writer, nil
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// DefaultPath is nollama.log under the user cache directory.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil || strings.TrimSpace(dir) == "" {
		return filepath.Join(".nollama", defaultLogFile)
	}
	return filepath.Join(dir, "nollama", defaultLogFile)
}

// ParseLevel maps a level name to a slog.Level. An empty name is info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
	}
}

// DrainEvents logs client events until events is closed or ctx is done.
func DrainEvents(ctx context.Context, logger *slog.Logger, events <-chan client.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			logger.LogAttrs(ctx, ev.Level(), "client event", slog.Any("event", ev))
		}
	}
}
