package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spetersoncode/nollama"
	"github.com/spetersoncode/nollama/internal/provider"
	"github.com/spetersoncode/nollama/model"
)

// defaultMaxTokens is sent when the caller sets no limit; the Messages API
// requires one.
const defaultMaxTokens = 4096

// Client wraps the Anthropic SDK to implement nollama.ChatProvider.
type Client struct {
	client *anthropic.Client
	model  string
}

// ClientOption configures the Anthropic client.
type ClientOption func(*config)

type config struct {
	model   string
	reqOpts []option.RequestOption
}

// WithModel sets the default model for requests.
func WithModel(id string) ClientOption {
	return func(c *config) {
		c.model = id
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *config) {
		c.reqOpts = append(c.reqOpts, option.WithBaseURL(url))
	}
}

// New creates a new Anthropic client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	// Retries are handled by the unified client.
	cfg := config{
		model:   model.ClaudeSonnet45.String(),
		reqOpts: []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	client := anthropic.NewClient(cfg.reqOpts...)
	return &Client{client: &client, model: cfg.model}
}

func (c *Client) params(messages []nollama.Message, opts []nollama.Option) anthropic.MessageNewParams {
	options := nollama.ApplyOptions(opts...)
	id := c.model
	if options.Model != "" {
		id = options.Model
	}

	maxTokens := int64(defaultMaxTokens)
	if options.MaxTokens > 0 {
		maxTokens = int64(options.MaxTokens)
	}

	msgs, system := convertMessages(messages, options.System)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(id),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if options.Temperature != nil {
		params.Temperature = anthropic.Float(*options.Temperature)
	}
	return params
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []nollama.Message, opts ...nollama.Option) (*nollama.Response, error) {
	resp, err := c.client.Messages.New(ctx, c.params(messages, opts))
	if err != nil {
		return nil, wrapError(err)
	}
	return toResponse(resp), nil
}

// ChatStream sends a conversation and returns a channel of streaming events.
func (c *Client) ChatStream(ctx context.Context, messages []nollama.Message, opts ...nollama.Option) (<-chan nollama.StreamEvent, error) {
	stream := c.client.Messages.NewStreaming(ctx, c.params(messages, opts))
	if err := stream.Err(); err != nil {
		return nil, wrapError(err)
	}
	ch := make(chan nollama.StreamEvent)

	go func() {
		defer close(ch)
		defer stream.Close()
		var acc anthropic.Message

		for stream.Next() {
			event := stream.Current()
			if err := acc.Accumulate(event); err != nil {
				provider.Send(ctx, ch, nollama.StreamEvent{Err: err})
				return
			}

			if event.Type == "content_block_delta" {
				delta := event.AsContentBlockDelta()
				if text := delta.Delta.AsTextDelta(); text.Type == "text_delta" && text.Text != "" {
					if !provider.Send(ctx, ch, nollama.StreamEvent{Delta: text.Text}) {
						return
					}
				}
			}
		}

		if err := stream.Err(); err != nil {
			provider.Send(ctx, ch, nollama.StreamEvent{Err: wrapError(err)})
			return
		}

		provider.Send(ctx, ch, nollama.StreamEvent{Done: true, Response: toResponse(&acc)})
	}()

	return ch, nil
}

func toResponse(msg *anthropic.Message) *nollama.Response {
	var content strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	return &nollama.Response{
		Content:      content.String(),
		FinishReason: string(msg.StopReason),
		Usage: nollama.Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}
}

// ListModels returns the models available to the API key, newest first as
// the API orders them.
func (c *Client) ListModels(ctx context.Context) ([]nollama.ModelInfo, error) {
	iter := c.client.Models.ListAutoPaging(ctx, anthropic.ModelListParams{})

	var out []nollama.ModelInfo
	for iter.Next() {
		m := iter.Current()
		out = append(out, nollama.ModelInfo{ID: m.ID, DisplayName: m.DisplayName})
	}
	if err := iter.Err(); err != nil {
		return nil, wrapError(err)
	}
	return out, nil
}

// wrapError wraps an Anthropic SDK error with nollama error categorization.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return provider.WrapStatus(nollama.ProviderAnthropic, apiErr.StatusCode, apiErr.Response, err)
}

var (
	_ nollama.ChatProvider = (*Client)(nil)
	_ nollama.ModelLister  = (*Client)(nil)
)
