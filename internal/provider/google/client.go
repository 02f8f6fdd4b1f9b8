package google

import (
	"context"
	"iter"
	"strings"

	"github.com/spetersoncode/nollama"
	"github.com/spetersoncode/nollama/internal/provider"
	"github.com/spetersoncode/nollama/model"
	"google.golang.org/genai"
)

// Client wraps the Google GenAI SDK to implement nollama.ChatProvider.
type Client struct {
	client *genai.Client
	model  string
}

// ClientOption configures the Google client.
type ClientOption func(*options)

type options struct {
	model   string
	baseURL string
}

// WithModel sets the default model for requests.
func WithModel(id string) ClientOption {
	return func(o *options) {
		o.model = id
	}
}

// WithBaseURL overrides the Gemini API endpoint.
func WithBaseURL(url string) ClientOption {
	return func(o *options) {
		o.baseURL = url
	}
}

// New creates a new Google GenAI client with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	o := options{model: model.Gemini25Flash.String()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.baseURL != "" {
		cfg.HTTPOptions.BaseURL = o.baseURL
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Client{client: client, model: o.model}, nil
}

func (c *Client) request(messages []nollama.Message, opts []nollama.Option) (string, []*genai.Content, *genai.GenerateContentConfig) {
	options := nollama.ApplyOptions(opts...)
	id := c.model
	if options.Model != "" {
		id = options.Model
	}

	contents, system := convertMessages(messages, options.System)
	config := &genai.GenerateContentConfig{SystemInstruction: system}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.Temperature != nil {
		temp := float32(*options.Temperature)
		config.Temperature = &temp
	}
	return id, contents, config
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []nollama.Message, opts ...nollama.Option) (*nollama.Response, error) {
	id, contents, config := c.request(messages, opts)

	resp, err := c.client.Models.GenerateContent(ctx, id, contents, config)
	if err != nil {
		return nil, wrapError(err)
	}
	if err := blocked(resp); err != nil {
		return nil, err
	}

	var acc streamState
	acc.add(resp)
	return acc.response(), nil
}

// ChatStream sends a conversation and returns a channel of streaming events.
// The first response is pulled before returning so that connection failures
// surface as an error here rather than on the channel.
func (c *Client) ChatStream(ctx context.Context, messages []nollama.Message, opts ...nollama.Option) (<-chan nollama.StreamEvent, error) {
	id, contents, config := c.request(messages, opts)

	next, stop := iter.Pull2(c.client.Models.GenerateContentStream(ctx, id, contents, config))
	first, err, ok := next()
	if err != nil {
		stop()
		return nil, wrapError(err)
	}

	ch := make(chan nollama.StreamEvent)
	go func() {
		defer close(ch)
		defer stop()

		var acc streamState
		for resp := first; ok; resp, err, ok = next() {
			if err != nil {
				provider.Send(ctx, ch, nollama.StreamEvent{Err: wrapError(err)})
				return
			}
			if err := blocked(resp); err != nil {
				provider.Send(ctx, ch, nollama.StreamEvent{Err: err})
				return
			}
			if delta := acc.add(resp); delta != "" {
				if !provider.Send(ctx, ch, nollama.StreamEvent{Delta: delta}) {
					return
				}
			}
		}

		provider.Send(ctx, ch, nollama.StreamEvent{Done: true, Response: acc.response()})
	}()

	return ch, nil
}

// streamState accumulates text, finish reason and usage across responses.
type streamState struct {
	content      strings.Builder
	finishReason string
	usage        nollama.Usage
}

// add folds one response into the state and returns its text.
func (s *streamState) add(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var delta strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" && !part.Thought {
				delta.WriteString(part.Text)
			}
		}
		if reason := resp.Candidates[0].FinishReason; reason != "" {
			s.finishReason = string(reason)
		}
	}
	if resp.UsageMetadata != nil {
		s.usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		s.usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	s.content.WriteString(delta.String())
	return delta.String()
}

func (s *streamState) response() *nollama.Response {
	return &nollama.Response{
		Content:      s.content.String(),
		FinishReason: s.finishReason,
		Usage:        s.usage,
	}
}

func blocked(resp *genai.GenerateContentResponse) error {
	if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return &BlockedError{Reason: string(resp.PromptFeedback.BlockReason)}
	}
	return nil
}

var (
	_ nollama.ChatProvider = (*Client)(nil)
	_ nollama.ModelLister  = (*Client)(nil)
)
