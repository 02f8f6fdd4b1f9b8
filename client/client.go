package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spetersoncode/nollama"
	"github.com/spetersoncode/nollama/internal/provider"
	"github.com/spetersoncode/nollama/internal/provider/anthropic"
	"github.com/spetersoncode/nollama/internal/provider/google"
	"github.com/spetersoncode/nollama/internal/provider/openai"
	"github.com/spetersoncode/nollama/internal/retry"
	"github.com/spetersoncode/nollama/model"
)

// APIKeys holds API keys for different providers.
// Only configure keys for providers you intend to use.
type APIKeys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// For returns the key configured for p.
func (k APIKeys) For(p nollama.Provider) string {
	switch p {
	case nollama.ProviderAnthropic:
		return k.Anthropic
	case nollama.ProviderOpenAI:
		return k.OpenAI
	case nollama.ProviderGoogle:
		return k.Google
	default:
		return ""
	}
}

// Config holds configuration for creating a unified client.
type Config struct {
	// APIKeys contains authentication keys for each provider.
	APIKeys APIKeys

	// OpenAIBaseURL points the OpenAI provider at a compatible endpoint.
	OpenAIBaseURL string

	// AnthropicBaseURL and GoogleBaseURL override the other providers'
	// endpoints, typically for a proxy.
	AnthropicBaseURL string
	GoogleBaseURL    string

	// Retry governs repeated attempts after transient errors. Nil means
	// retry.Default().
	Retry *retry.Policy

	// Events is an optional channel for receiving client operation events.
	// Events are sent non-blocking; if the channel is full, events are dropped.
	Events chan<- Event
}

// ErrMissingAPIKey is returned when a model is used but no API key
// is configured for that model's provider.
type ErrMissingAPIKey struct {
	Provider nollama.Provider
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// ErrNoModel is returned when a chat call names no model.
var ErrNoModel = errors.New("no model specified")

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDefaultTemperature sets the default temperature for chat requests.
// Per-request options override this default.
func WithDefaultTemperature(t float64) ClientOption {
	return func(c *Client) {
		c.defaultChatOpts = append(c.defaultChatOpts, nollama.WithTemperature(t))
	}
}

// WithDefaultMaxTokens sets the default max tokens for chat requests.
// Per-request options override this default.
func WithDefaultMaxTokens(n int) ClientOption {
	return func(c *Client) {
		c.defaultChatOpts = append(c.defaultChatOpts, nollama.WithMaxTokens(n))
	}
}

// WithDefaultSystem sets the system prompt sent with every chat request.
func WithDefaultSystem(prompt string) ClientOption {
	return func(c *Client) {
		c.defaultChatOpts = append(c.defaultChatOpts, nollama.WithSystem(prompt))
	}
}

// Client is a unified interface to all configured providers.
// Provider clients are lazily initialized when first needed.
type Client struct {
	cfg             Config
	retry           retry.Policy
	events          chan<- Event
	defaultChatOpts []nollama.Option

	// Lazy-initialized providers (protected by mutex)
	mu              sync.RWMutex
	anthropicClient *anthropic.Client
	openaiClient    *openai.Client
	googleClient    *google.Client
	googleInitErr   error
}

// backend is what each provider wrapper offers.
type backend interface {
	nollama.ChatProvider
	nollama.ModelLister
}

// New creates a unified client with the given configuration.
func New(cfg Config, opts ...ClientOption) *Client {
	policy := retry.Default()
	if cfg.Retry != nil {
		policy = *cfg.Retry
	}

	c := &Client{
		cfg:    cfg,
		retry:  policy,
		events: cfg.Events,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns the providers that have credentials, in registry order.
func (c *Client) Configured() []nollama.Provider {
	var out []nollama.Provider
	for _, info := range nollama.Providers() {
		if c.cfg.APIKeys.For(info.ID) != "" {
			out = append(out, info.ID)
		}
	}
	return out
}

// getAnthropicClient returns the Anthropic client, initializing it if needed.
func (c *Client) getAnthropicClient() (*anthropic.Client, error) {
	c.mu.RLock()
	if c.anthropicClient != nil {
		defer c.mu.RUnlock()
		return c.anthropicClient, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.anthropicClient != nil {
		return c.anthropicClient, nil
	}

	if c.cfg.APIKeys.Anthropic == "" {
		return nil, &ErrMissingAPIKey{Provider: nollama.ProviderAnthropic}
	}

	var opts []anthropic.ClientOption
	if c.cfg.AnthropicBaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(c.cfg.AnthropicBaseURL))
	}
	c.anthropicClient = anthropic.New(c.cfg.APIKeys.Anthropic, opts...)
	return c.anthropicClient, nil
}

// getOpenAIClient returns the OpenAI client, initializing it if needed.
func (c *Client) getOpenAIClient() (*openai.Client, error) {
	c.mu.RLock()
	if c.openaiClient != nil {
		defer c.mu.RUnlock()
		return c.openaiClient, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.openaiClient != nil {
		return c.openaiClient, nil
	}

	if c.cfg.APIKeys.OpenAI == "" {
		return nil, &ErrMissingAPIKey{Provider: nollama.ProviderOpenAI}
	}

	var opts []openai.ClientOption
	if c.cfg.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(c.cfg.OpenAIBaseURL))
	}
	c.openaiClient = openai.New(c.cfg.APIKeys.OpenAI, opts...)
	return c.openaiClient, nil
}

// getGoogleClient returns the Google client, initializing it if needed.
func (c *Client) getGoogleClient(ctx context.Context) (*google.Client, error) {
	c.mu.RLock()
	if c.googleClient != nil {
		defer c.mu.RUnlock()
		return c.googleClient, nil
	}
	if c.googleInitErr != nil {
		defer c.mu.RUnlock()
		return nil, c.googleInitErr
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.googleClient != nil {
		return c.googleClient, nil
	}
	if c.googleInitErr != nil {
		return nil, c.googleInitErr
	}

	if c.cfg.APIKeys.Google == "" {
		return nil, &ErrMissingAPIKey{Provider: nollama.ProviderGoogle}
	}

	var opts []google.ClientOption
	if c.cfg.GoogleBaseURL != "" {
		opts = append(opts, google.WithBaseURL(c.cfg.GoogleBaseURL))
	}
	client, err := google.New(ctx, c.cfg.APIKeys.Google, opts...)
	if err != nil {
		c.googleInitErr = fmt.Errorf("failed to initialize Google client: %w", err)
		return nil, c.googleInitErr
	}

	c.googleClient = client
	return c.googleClient, nil
}

// backendFor returns the provider wrapper for p.
func (c *Client) backendFor(ctx context.Context, p nollama.Provider) (backend, error) {
	switch p {
	case nollama.ProviderAnthropic:
		return c.getAnthropicClient()
	case nollama.ProviderOpenAI:
		return c.getOpenAIClient()
	case nollama.ProviderGoogle:
		return c.getGoogleClient(ctx)
	default:
		return nil, &nollama.UnknownProviderError{Name: string(p)}
	}
}

// chatBackend resolves the backend for m and tags missing keys with the model.
func (c *Client) chatBackend(ctx context.Context, m nollama.Model) (backend, error) {
	if m.IsZero() {
		return nil, ErrNoModel
	}
	b, err := c.backendFor(ctx, m.Provider)
	if err != nil {
		var missing *ErrMissingAPIKey
		if errors.As(err, &missing) {
			missing.Model = m.ID
		}
		return nil, err
	}
	return b, nil
}

// chatOptions prepends the client defaults and pins the model, so
// per-request options override defaults but never the routed model.
func (c *Client) chatOptions(m nollama.Model, opts []nollama.Option) []nollama.Option {
	out := make([]nollama.Option, 0, len(c.defaultChatOpts)+len(opts)+1)
	out = append(out, c.defaultChatOpts...)
	out = append(out, opts...)
	return append(out, nollama.WithModel(m.ID))
}

// Chat sends a conversation to m and returns a complete response.
// Automatically retries on transient errors according to the client's retry configuration.
func (c *Client) Chat(ctx context.Context, m nollama.Model, messages []nollama.Message, opts ...nollama.Option) (*nollama.Response, error) {
	b, err := c.chatBackend(ctx, m)
	if err != nil {
		return nil, err
	}
	opts = c.chatOptions(m, opts)

	op := c.start("chat", m)
	resp, err := withRetry(ctx, c, op, func() (*nollama.Response, error) {
		return b.Chat(ctx, messages, opts...)
	})
	if err != nil {
		op.fail(err)
		return nil, err
	}

	op.complete(&resp.Usage)
	return resp, nil
}

// ChatStream sends a conversation to m and returns a channel of streaming events.
// Retries cover establishing the stream, not individual chunks. The
// request_complete event fires once the stream delivers its final event.
func (c *Client) ChatStream(ctx context.Context, m nollama.Model, messages []nollama.Message, opts ...nollama.Option) (<-chan nollama.StreamEvent, error) {
	b, err := c.chatBackend(ctx, m)
	if err != nil {
		return nil, err
	}
	opts = c.chatOptions(m, opts)

	op := c.start("chat_stream", m)
	ch, err := withRetry(ctx, c, op, func() (<-chan nollama.StreamEvent, error) {
		return b.ChatStream(ctx, messages, opts...)
	})
	if err != nil {
		op.fail(err)
		return nil, err
	}

	if c.events == nil {
		return ch, nil
	}
	return observe(ctx, ch, op), nil
}

// ListModels returns the chat models available from p. When the provider's
// listing fails or comes back empty, the curated catalog for p is returned
// instead and the failure is reported as a request_error event.
func (c *Client) ListModels(ctx context.Context, p nollama.Provider) ([]nollama.ModelInfo, error) {
	b, err := c.backendFor(ctx, p)
	if err != nil {
		return nil, err
	}

	op := c.start("list_models", nollama.Model{Provider: p})
	models, err := withRetry(ctx, c, op, func() ([]nollama.ModelInfo, error) {
		return b.ListModels(ctx)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		op.fail(err)
		return model.KnownInfos(p), nil
	}
	op.complete(nil)

	if len(models) == 0 {
		return model.KnownInfos(p), nil
	}
	return models, nil
}

// operation tracks one observable client call.
type operation struct {
	c     *Client
	name  string
	model nollama.Model
	start time.Time
}

func (c *Client) start(name string, m nollama.Model) operation {
	op := operation{c: c, name: name, model: m, start: time.Now()}
	emit(c.events, op.event(EventRequestStart))
	return op
}

func (op operation) event(t EventType) Event {
	return Event{
		Type:      t,
		Operation: op.name,
		Provider:  op.model.Provider,
		Model:     op.model.ID,
	}
}

func (op operation) fail(err error) {
	ev := op.event(EventRequestError)
	ev.Duration = time.Since(op.start)
	ev.Error = err
	emit(op.c.events, ev)
}

func (op operation) complete(usage *nollama.Usage) {
	ev := op.event(EventRequestComplete)
	ev.Duration = time.Since(op.start)
	ev.Usage = usage
	emit(op.c.events, ev)
}

// withRetry runs fn under the client's retry policy and reports each retry
// step as an EventRetry.
func withRetry[T any](ctx context.Context, c *Client, op operation, fn func() (T, error)) (T, error) {
	var notify retry.Notify
	if c.events != nil {
		notify = func(re retry.Event) {
			ev := op.event(EventRetry)
			ev.RetryEvent = &re
			emit(c.events, ev)
		}
	}
	return retry.Do(ctx, c.retry, notify, fn)
}

// observe relays a provider stream and reports its outcome as an event.
func observe(ctx context.Context, in <-chan nollama.StreamEvent, op operation) <-chan nollama.StreamEvent {
	out := make(chan nollama.StreamEvent)
	go func() {
		defer close(out)
		for ev := range in {
			switch {
			case ev.Err != nil:
				op.fail(ev.Err)
			case ev.Done:
				var usage *nollama.Usage
				if ev.Response != nil {
					usage = &ev.Response.Usage
				}
				op.complete(usage)
			}
			if !provider.Send(ctx, out, ev) {
				op.fail(ctx.Err())
				return
			}
		}
	}()
	return out
}
