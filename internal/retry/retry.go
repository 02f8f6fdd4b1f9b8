// Package retry repeats provider calls that failed for transient reasons,
// waiting with exponential backoff in between.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/spetersoncode/nollama"
)

// Phase says what a retry Event reports.
type Phase string

const (
	// PhaseFailed follows every failed attempt.
	PhaseFailed Phase = "failed"
	// PhaseWaiting precedes the pause before the next attempt.
	PhaseWaiting Phase = "waiting"
	// PhaseExhausted follows the last allowed attempt.
	PhaseExhausted Phase = "exhausted"
)

// Event describes one step of a retried call.
type Event struct {
	Phase     Phase
	Attempt   int
	Attempts  int
	Wait      time.Duration
	Err       error
	Retryable bool
}

// LogValue implements slog.LogValuer.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("phase", string(e.Phase)),
		slog.Int("attempt", e.Attempt),
		slog.Int("attempts", e.Attempts),
	}
	if e.Wait > 0 {
		attrs = append(attrs, slog.Duration("wait", e.Wait))
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("error", e.Err.Error()), slog.Bool("retryable", e.Retryable))
	}
	return slog.GroupValue(attrs...)
}

// Notify receives retry events. It runs on the calling goroutine and must
// not block.
type Notify func(Event)

// Do calls fn until it succeeds, fails permanently, runs out of attempts or
// ctx ends. The last error is returned. A server's Retry-After hint
// replaces the backoff wait when it is longer. notify may be nil.
func Do[T any](ctx context.Context, p Policy, notify Notify, fn func() (T, error)) (T, error) {
	var zero T
	if notify == nil {
		notify = func(Event) {}
	}
	attempts := p.attempts()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		ev := Event{Attempt: attempt, Attempts: attempts, Err: err, Retryable: Retryable(err)}
		ev.Phase = PhaseFailed
		notify(ev)

		if !ev.Retryable {
			return zero, err
		}
		if attempt == attempts {
			ev.Phase = PhaseExhausted
			notify(ev)
			return zero, err
		}

		wait := max(p.Backoff.Wait(attempt-1), nollama.RetryAfterOf(err))
		notify(Event{Phase: PhaseWaiting, Attempt: attempt, Attempts: attempts, Wait: wait, Err: err, Retryable: true})

		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
