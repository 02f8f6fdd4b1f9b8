package client

import (
	"log/slog"
	"time"

	"github.com/spetersoncode/nollama"
	"github.com/spetersoncode/nollama/internal/retry"
)

// EventType names what an Event reports.
type EventType string

const (
	EventRequestStart    EventType = "request_start"
	EventRequestComplete EventType = "request_complete"
	EventRequestError    EventType = "request_error"

	// EventRetry carries a retry.Event for a failed attempt or a pending
	// retry.
	EventRetry EventType = "retry"
)

// Event reports progress of one client call. Operation is "chat",
// "chat_stream" or "list_models".
type Event struct {
	Type      EventType
	Operation string
	Provider  nollama.Provider
	Model     string // empty for listings

	Duration   time.Duration  // set once the call has ended
	Usage      *nollama.Usage // set on completion when the provider reports it
	Error      error
	RetryEvent *retry.Event

	Timestamp time.Time
}

// LogValue implements slog.LogValuer.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", string(e.Type)),
		slog.String("operation", e.Operation),
		slog.String("provider", e.Provider.String()),
	}
	if e.Model != "" {
		attrs = append(attrs, slog.String("model", e.Model))
	}
	if e.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", e.Duration))
	}
	if e.Usage != nil {
		attrs = append(attrs, slog.Int("input_tokens", e.Usage.InputTokens), slog.Int("output_tokens", e.Usage.OutputTokens))
	}
	if e.Error != nil {
		attrs = append(attrs, slog.String("error", e.Error.Error()))
	}
	if e.RetryEvent != nil {
		attrs = append(attrs, slog.Any("retry", *e.RetryEvent))
	}
	return slog.GroupValue(attrs...)
}

// Level is the log level an event should be recorded at.
func (e Event) Level() slog.Level {
	switch {
	case e.Type == EventRequestError:
		return slog.LevelWarn
	case e.RetryEvent != nil && e.RetryEvent.Phase == retry.PhaseWaiting:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// emit stamps the event and offers it to ch. Events are dropped when ch is
// full.
func emit(ch chan<- Event, event Event) {
	if ch == nil {
		return
	}
	event.Timestamp = time.Now()
	select {
	case ch <- event:
	default:
	}
}
