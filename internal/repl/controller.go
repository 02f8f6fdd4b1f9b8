// Package repl runs the interactive loop: it reads prompts, dispatches the
// built-in commands and hands everything else to an exchange.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spetersoncode/nollama"
	"github.com/spetersoncode/nollama/internal/exchange"
	"github.com/spetersoncode/nollama/internal/selector"
	"github.com/spetersoncode/nollama/model"
)

// Messages shown to the user.
const (
	MsgEmptyInput    = "Error: Input is empty. Please type something."
	MsgEmptyResponse = "Error: Received an empty response."
	MsgExiting       = "Exiting the prompt..."
)

// Exchanger runs one prompt/response round trip.
type Exchanger interface {
	Exchange(ctx context.Context, req exchange.Request) exchange.Result
}

// Display is the part of the terminal the controller draws on directly.
type Display interface {
	Prompt() string
	ClearScreen()
	Header(model string)
	Question(q string)
	Notice(msg string)
	Errorf(format string, args ...any)
	Status(msg string)
}

// UsageEstimator approximates token usage when a provider reports none.
type UsageEstimator interface {
	Usage(history []nollama.Message, reply string) nollama.Usage
}

// Config holds the collaborators of a Controller.
type Config struct {
	Reader    LineReader
	Exchanger Exchanger
	Display   Display
	Catalog   ModelCatalog
	Selector  selector.Selector
	Estimator UsageEstimator // optional

	// Providers with credentials, offered by the provider command.
	Providers []nollama.Provider
	Model     nollama.Model
	Stream    bool
	Logger    *slog.Logger
}

// Controller owns a session and the REPL loop.
type Controller struct {
	reader    LineReader
	exchanger Exchanger
	display   Display
	catalog   ModelCatalog
	selector  selector.Selector
	estimator UsageEstimator
	providers []nollama.Provider
	stream    bool
	logger    *slog.Logger

	session *Session
}

// New validates cfg and creates a Controller.
func New(cfg Config) (*Controller, error) {
	switch {
	case cfg.Reader == nil:
		return nil, errors.New("repl: reader is required")
	case cfg.Exchanger == nil:
		return nil, errors.New("repl: exchanger is required")
	case cfg.Display == nil:
		return nil, errors.New("repl: display is required")
	case cfg.Catalog == nil:
		return nil, errors.New("repl: model catalog is required")
	case cfg.Selector == nil:
		return nil, errors.New("repl: selector is required")
	case cfg.Model.IsZero():
		return nil, errors.New("repl: model is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Controller{
		reader:    cfg.Reader,
		exchanger: cfg.Exchanger,
		display:   cfg.Display,
		catalog:   cfg.Catalog,
		selector:  cfg.Selector,
		estimator: cfg.Estimator,
		providers: cfg.Providers,
		stream:    cfg.Stream,
		session:   NewSession(cfg.Model),
	}
	c.logger = logger.With(slog.String("session", c.session.ID))
	return c, nil
}

// Session returns the controller's session.
func (c *Controller) Session() *Session {
	return c.session
}

// Run draws the header and processes input until the user quits, input
// ends or ctx is cancelled. Only input failures are returned.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("session started",
		slog.String("provider", c.session.Model().Provider.String()),
		slog.String("model", c.session.Model().ID),
		slog.Bool("stream", c.stream))
	c.redraw()

	for {
		if ctx.Err() != nil {
			return c.exit("cancelled")
		}

		line, err := c.reader.ReadLine(c.display.Prompt())
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return c.exit("end of input")
			case errors.Is(err, ErrInterrupted), ctx.Err() != nil:
				return c.exit("interrupted")
			default:
				return fmt.Errorf("reading input: %w", err)
			}
		}

		if quit := c.dispatch(ctx, line); quit {
			return nil
		}
	}
}

func (c *Controller) exit(reason string) error {
	c.display.Notice(MsgExiting)
	c.logger.Info("session ended", slog.String("reason", reason), slog.Int("messages", c.session.Len()))
	return nil
}

// dispatch handles one line of input and reports whether the loop should
// stop. Commands are matched on the trimmed input, ignoring case.
func (c *Controller) dispatch(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)

	switch strings.ToLower(input) {
	case "":
		c.logger.Debug("input rejected", slog.Any("error", nollama.ErrEmptyInput))
		c.display.Notice(MsgEmptyInput)
	case "quit", "exit", "q":
		c.exit("quit")
		return true
	case "clear":
		c.session.Clear()
		c.redraw()
		c.logger.Debug("conversation cleared")
	case "model":
		c.changeModel(ctx)
	case "provider":
		c.changeProvider(ctx)
	default:
		return c.ask(ctx, input)
	}
	return false
}

func (c *Controller) redraw() {
	c.display.ClearScreen()
	c.display.Header(c.session.Model().ID)
}

func (c *Controller) ask(ctx context.Context, prompt string) bool {
	c.display.Question(prompt)

	history := c.session.Messages()
	res := c.exchanger.Exchange(ctx, exchange.Request{
		Model:   c.session.Model(),
		History: history,
		Prompt:  prompt,
		Stream:  c.stream,
	})

	switch res.Outcome {
	case exchange.OutcomeOK:
		c.session.Replace(res.History)
		if status := c.usageLine(history, prompt, res); status != "" {
			c.display.Status(status)
		}
	case exchange.OutcomeEmpty:
		c.display.Notice(MsgEmptyResponse)
	case exchange.OutcomeFailed:
		if ctx.Err() != nil {
			c.exit("interrupted")
			return true
		}
		c.display.Errorf("An error occurred: %v", res.Err)
	}
	return false
}

// usageLine describes token use and cost of a reply. Counts prefixed with
// "~" are local estimates.
func (c *Controller) usageLine(history []nollama.Message, prompt string, res exchange.Result) string {
	var usage nollama.Usage
	approx := ""
	switch {
	case res.Usage != nil:
		usage = *res.Usage
	case c.estimator != nil:
		usage = c.estimator.Usage(append(history, nollama.NewUserMessage(prompt)), res.Text)
		approx = "~"
	default:
		return ""
	}

	line := fmt.Sprintf("%s%d in · %s%d out tokens", approx, usage.InputTokens, approx, usage.OutputTokens)
	if cost, ok := model.EstimateCost(c.session.Model().ID, usage); ok {
		line += fmt.Sprintf(" · %s$%.4f", approx, cost)
	}
	return line
}

func (c *Controller) changeModel(ctx context.Context) {
	current := c.session.Model()
	m, err := SelectModel(ctx, c.selector, c.catalog, current.Provider)
	if err != nil {
		c.selectionFailed(err)
		return
	}
	c.switchTo(m)
}

func (c *Controller) changeProvider(ctx context.Context) {
	if len(c.providers) == 0 {
		c.display.Notice("No providers are configured.")
		return
	}

	p, err := SelectProvider(ctx, c.selector, c.providers)
	if err != nil {
		c.selectionFailed(err)
		return
	}
	m, err := SelectModel(ctx, c.selector, c.catalog, p)
	if err != nil {
		c.selectionFailed(err)
		return
	}
	c.switchTo(m)
}

func (c *Controller) selectionFailed(err error) {
	if errors.Is(err, selector.ErrCanceled) || errors.Is(err, context.Canceled) {
		c.display.Status("Selection cancelled.")
		return
	}
	c.logger.Warn("selection failed", slog.String("error", err.Error()))
	c.display.Errorf("An error occurred: %v", err)
}

// switchTo makes m the active model. The conversation is kept when m is
// already active.
func (c *Controller) switchTo(m nollama.Model) {
	previous := c.session.Model()
	if !c.session.SetModel(m) {
		c.display.Status("Model unchanged: " + m.ID)
		return
	}

	c.logger.Info("model changed",
		slog.String("from", previous.ID),
		slog.String("provider", m.Provider.String()),
		slog.String("model", m.ID))
	c.redraw()
}
