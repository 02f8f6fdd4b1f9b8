// Package openai implements nollama.ChatProvider over the OpenAI chat
// completions API. Any OpenAI-compatible endpoint works through WithBaseURL.
package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spetersoncode/nollama"
	"github.com/spetersoncode/nollama/internal/provider"
	"github.com/spetersoncode/nollama/model"
)

// Client wraps the OpenAI SDK to implement nollama.ChatProvider.
type Client struct {
	client *openai.Client
	model  string
	// compatible is set for endpoints other than OpenAI's own, whose model
	// ids do not follow OpenAI naming.
	compatible bool
}

// ClientOption configures the OpenAI client.
type ClientOption func(*config)

type config struct {
	model   string
	baseURL string
}

// WithModel sets the default model for requests.
func WithModel(id string) ClientOption {
	return func(c *config) {
		c.model = id
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *config) {
		c.baseURL = url
	}
}

// New creates a new OpenAI client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	cfg := config{model: model.GPT52.String()}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Retries are handled by the unified client.
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	client := openai.NewClient(reqOpts...)
	return &Client{client: &client, model: cfg.model, compatible: !officialEndpoint(cfg.baseURL)}
}

func (c *Client) params(messages []nollama.Message, opts []nollama.Option) openai.ChatCompletionNewParams {
	options := nollama.ApplyOptions(opts...)
	id := c.model
	if options.Model != "" {
		id = options.Model
	}

	params := openai.ChatCompletionNewParams{
		Model:    id,
		Messages: convertMessages(messages, options.System),
	}
	if options.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(options.MaxTokens))
	}
	if options.Temperature != nil {
		params.Temperature = openai.Float(*options.Temperature)
	}
	return params
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []nollama.Message, opts ...nollama.Option) (*nollama.Response, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.params(messages, opts))
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return &nollama.Response{Usage: usage(resp.Usage)}, nil
	}

	return &nollama.Response{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage:        usage(resp.Usage),
	}, nil
}

// ChatStream sends a conversation and returns a channel of streaming events.
func (c *Client) ChatStream(ctx context.Context, messages []nollama.Message, opts ...nollama.Option) (<-chan nollama.StreamEvent, error) {
	params := c.params(messages, opts)
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{
		IncludeUsage: openai.Bool(true),
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		return nil, wrapError(err)
	}
	ch := make(chan nollama.StreamEvent)

	go func() {
		defer close(ch)
		defer stream.Close()
		var acc openai.ChatCompletionAccumulator

		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				if !provider.Send(ctx, ch, nollama.StreamEvent{Delta: chunk.Choices[0].Delta.Content}) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			provider.Send(ctx, ch, nollama.StreamEvent{Err: wrapError(err)})
			return
		}

		final := &nollama.Response{Usage: usage(acc.Usage)}
		if len(acc.Choices) > 0 {
			final.Content = acc.Choices[0].Message.Content
			final.FinishReason = string(acc.Choices[0].FinishReason)
		}
		provider.Send(ctx, ch, nollama.StreamEvent{Done: true, Response: final})
	}()

	return ch, nil
}

func usage(u openai.CompletionUsage) nollama.Usage {
	return nollama.Usage{
		InputTokens:  int(u.PromptTokens),
		OutputTokens: int(u.CompletionTokens),
	}
}

var (
	_ nollama.ChatProvider = (*Client)(nil)
	_ nollama.ModelLister  = (*Client)(nil)
)
