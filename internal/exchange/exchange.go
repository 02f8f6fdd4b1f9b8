// Package exchange runs one prompt/response round trip against a model and
// keeps the terminal view of the response current while it arrives.
package exchange

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spetersoncode/nollama"
	"golang.org/x/time/rate"
)

// DefaultRefreshInterval bounds repaints to roughly ten per second.
const DefaultRefreshInterval = 100 * time.Millisecond

// ModelClient issues completion calls keyed by model.
type ModelClient interface {
	Chat(ctx context.Context, m nollama.Model, messages []nollama.Message, opts ...nollama.Option) (*nollama.Response, error)
	ChatStream(ctx context.Context, m nollama.Model, messages []nollama.Message, opts ...nollama.Option) (<-chan nollama.StreamEvent, error)
}

// Renderer is the display surface an exchange paints on.
type Renderer interface {
	ShowWaitingIndicator()
	HideWaitingIndicator()
	RenderFormatted(text string)
	ClearScreen()
}

// Outcome classifies how an exchange ended.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeEmpty
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Request is one prompt to send along with the conversation so far.
type Request struct {
	Model   nollama.Model
	History []nollama.Message
	Prompt  string
	Stream  bool
}

// Result is the outcome of an exchange. History is the conversation to keep:
// extended by the user and assistant turns on OutcomeOK, the request's
// history otherwise.
type Result struct {
	Outcome Outcome
	Text    string
	History []nollama.Message
	Usage   *nollama.Usage
	Err     error
}

// Option configures a Consumer.
type Option func(*Consumer)

// WithRefreshInterval sets the minimum time between repaints while streaming.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Consumer) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger for exchange diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Consumer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Consumer runs exchanges. It holds no per-exchange state and may be reused.
type Consumer struct {
	client   ModelClient
	renderer Renderer
	interval time.Duration
	logger   *slog.Logger
}

// New creates a Consumer that calls client and paints on renderer.
func New(client ModelClient, renderer Renderer, opts ...Option) *Consumer {
	c := &Consumer{
		client:   client,
		renderer: renderer,
		interval: DefaultRefreshInterval,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exchange sends req.Prompt with the history and renders the reply. The
// waiting indicator is shown before the call and hidden exactly once.
func (c *Consumer) Exchange(ctx context.Context, req Request) Result {
	start := time.Now()
	history := append(slices.Clone(req.History), nollama.NewUserMessage(req.Prompt))

	w := &waiting{r: c.renderer}
	c.renderer.ShowWaitingIndicator()
	defer w.hide()

	var s state
	var err error
	if req.Stream {
		err = c.stream(ctx, req.Model, history, w, &s)
	} else {
		err = c.batch(ctx, req.Model, history, w, &s)
	}

	log := c.logger.With(
		slog.String("model", req.Model.String()),
		slog.Bool("stream", req.Stream),
		slog.Int("chunks", s.chunks),
		slog.Duration("elapsed", time.Since(start)),
	)

	if err != nil {
		log.Warn("exchange failed", slog.String("error", err.Error()))
		return Result{Outcome: OutcomeFailed, History: req.History, Err: err}
	}

	text := s.buf.String()
	if strings.TrimSpace(text) == "" {
		log.Info("exchange returned no text")
		return Result{Outcome: OutcomeEmpty, History: req.History, Err: nollama.ErrEmptyResponse}
	}

	log.Debug("exchange complete", slog.Int("length", len(text)))
	return Result{
		Outcome: OutcomeOK,
		Text:    text,
		History: append(history, nollama.NewAssistantMessage(text)),
		Usage:   s.usage,
	}
}

// state is the transient state of one in-flight exchange.
type state struct {
	buf     strings.Builder
	chunks  int
	painted string
	usage   *nollama.Usage
}

func (s *state) setUsage(resp *nollama.Response) {
	if resp != nil && resp.Usage.Total() > 0 {
		u := resp.Usage
		s.usage = &u
	}
}

func (c *Consumer) batch(ctx context.Context, m nollama.Model, history []nollama.Message, w *waiting, s *state) error {
	resp, err := c.client.Chat(ctx, m, history)
	w.hide()
	if err != nil {
		return err
	}

	s.buf.WriteString(resp.Content)
	s.setUsage(resp)
	if strings.TrimSpace(resp.Content) != "" {
		c.renderer.RenderFormatted(resp.Content)
	}
	return nil
}

func (c *Consumer) stream(ctx context.Context, m nollama.Model, history []nollama.Message, w *waiting, s *state) error {
	ch, err := c.client.ChatStream(ctx, m, history)
	if err != nil {
		return err
	}

	throttle := rate.Sometimes{Interval: c.interval}
	paint := func() {
		text := s.buf.String()
		if text == s.painted || strings.TrimSpace(text) == "" {
			return
		}
		c.renderer.RenderFormatted(text)
		s.painted = text
	}

loop:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				// A stream that closes without Done was cut short.
				if err := ctx.Err(); err != nil {
					return err
				}
				break loop
			}
			if ev.Err != nil {
				return ev.Err
			}
			if ev.Done {
				s.setUsage(ev.Response)
				break loop
			}
			if ev.Delta == "" {
				continue
			}

			s.chunks++
			if s.chunks == 1 {
				w.hide()
			}
			s.buf.WriteString(ev.Delta)
			throttle.Do(paint)
		}
	}

	w.hide()
	paint()
	return nil
}

// waiting makes hiding the indicator idempotent.
type waiting struct {
	once sync.Once
	r    Renderer
}

func (w *waiting) hide() {
	w.once.Do(w.r.HideWaitingIndicator)
}
