package exchange

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spetersoncode/nollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	mu      sync.Mutex
	shown   int
	hidden  int
	frames  []string
	cleared int
}

func (r *fakeRenderer) ShowWaitingIndicator() { r.mu.Lock(); r.shown++; r.mu.Unlock() }
func (r *fakeRenderer) HideWaitingIndicator() { r.mu.Lock(); r.hidden++; r.mu.Unlock() }
func (r *fakeRenderer) ClearScreen()          { r.mu.Lock(); r.cleared++; r.mu.Unlock() }

func (r *fakeRenderer) RenderFormatted(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, text)
}

func (r *fakeRenderer) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return ""
	}
	return r.frames[len(r.frames)-1]
}

type fakeClient struct {
	events    []nollama.StreamEvent
	streamErr error
	resp      *nollama.Response
	chatErr   error
	block     bool

	got []nollama.Message
}

func (c *fakeClient) Chat(ctx context.Context, m nollama.Model, messages []nollama.Message, opts ...nollama.Option) (*nollama.Response, error) {
	c.got = messages
	if c.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return c.resp, c.chatErr
}

func (c *fakeClient) ChatStream(ctx context.Context, m nollama.Model, messages []nollama.Message, opts ...nollama.Option) (<-chan nollama.StreamEvent, error) {
	c.got = messages
	if c.streamErr != nil {
		return nil, c.streamErr
	}
	ch := make(chan nollama.StreamEvent, len(c.events))
	for _, ev := range c.events {
		ch <- ev
	}
	if !c.block {
		close(ch)
	}
	return ch, nil
}

func chunks(texts ...string) []nollama.StreamEvent {
	out := make([]nollama.StreamEvent, 0, len(texts)+1)
	var full strings.Builder
	for _, t := range texts {
		out = append(out, nollama.StreamEvent{Delta: t})
		full.WriteString(t)
	}
	return append(out, nollama.StreamEvent{Done: true, Response: &nollama.Response{
		Content: full.String(),
		Usage:   nollama.Usage{InputTokens: 5, OutputTokens: 3},
	}})
}

var testModel = nollama.Model{Provider: nollama.ProviderOpenAI, ID: "gpt-4o"}

func run(t *testing.T, client *fakeClient, history []nollama.Message, stream bool) (Result, *fakeRenderer) {
	t.Helper()
	r := &fakeRenderer{}
	c := New(client, r, WithRefreshInterval(time.Hour))
	res := c.Exchange(context.Background(), Request{Model: testModel, History: history, Prompt: "hello", Stream: stream})
	return res, r
}

func TestStreamConcatenatesChunks(t *testing.T) {
	res, r := run(t, &fakeClient{events: chunks("Hel", "lo, ", "world")}, nil, true)

	require.Equal(t, OutcomeOK, res.Outcome)
	assert.NoError(t, res.Err)
	assert.Equal(t, "Hello, world", res.Text)
	assert.Equal(t, "Hello, world", r.last())
	require.Len(t, res.History, 2)
	assert.Equal(t, nollama.RoleUser, res.History[0].Role)
	assert.Equal(t, "hello", res.History[0].Content)
	assert.Equal(t, nollama.RoleAssistant, res.History[1].Role)
	assert.Equal(t, "Hello, world", res.History[1].Content)
	assert.Equal(t, &nollama.Usage{InputTokens: 5, OutputTokens: 3}, res.Usage)
	assert.Equal(t, 1, r.shown)
	assert.Equal(t, 1, r.hidden)
}

func TestStreamThrottlesRepaints(t *testing.T) {
	// The hour-long interval lets only the first chunk through, and the
	// final repaint always shows the whole buffer.
	res, r := run(t, &fakeClient{events: chunks("a", "b", "c", "d")}, nil, true)

	require.Equal(t, OutcomeOK, res.Outcome)
	assert.Equal(t, []string{"a", "abcd"}, r.frames)
}

func TestStreamRendersEveryChunkWithoutThrottle(t *testing.T) {
	r := &fakeRenderer{}
	c := New(&fakeClient{events: chunks("a", "b", "c")}, r, WithRefreshInterval(time.Nanosecond))

	res := c.Exchange(context.Background(), Request{Model: testModel, Prompt: "hi", Stream: true})
	require.Equal(t, OutcomeOK, res.Outcome)
	assert.Equal(t, "abc", r.last())
	assert.LessOrEqual(t, len(r.frames), 3)
}

func TestStreamEmpty(t *testing.T) {
	history := []nollama.Message{nollama.NewUserMessage("earlier"), nollama.NewAssistantMessage("reply")}

	tests := []struct {
		name   string
		events []nollama.StreamEvent
	}{
		{"no chunks", chunks()},
		{"closed without done", nil},
		{"whitespace only", chunks(" ", "\n\t")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, r := run(t, &fakeClient{events: tt.events}, history, true)

			assert.Equal(t, OutcomeEmpty, res.Outcome)
			assert.ErrorIs(t, res.Err, nollama.ErrEmptyResponse)
			assert.Equal(t, history, res.History)
			assert.Empty(t, r.frames)
			assert.Equal(t, 1, r.hidden)
		})
	}
}

func TestStreamFailureRollsBack(t *testing.T) {
	boom := errors.New("connection reset")
	history := []nollama.Message{nollama.NewUserMessage("earlier"), nollama.NewAssistantMessage("reply")}

	tests := []struct {
		name   string
		client *fakeClient
	}{
		{"setup error", &fakeClient{streamErr: boom}},
		{"error before any chunk", &fakeClient{events: []nollama.StreamEvent{{Err: boom}}}},
		{"error after one chunk", &fakeClient{events: []nollama.StreamEvent{{Delta: "Hel"}, {Err: boom}}}},
		{"error after several chunks", &fakeClient{events: []nollama.StreamEvent{{Delta: "a"}, {Delta: "b"}, {Delta: "c"}, {Err: boom}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, r := run(t, tt.client, history, true)

			assert.Equal(t, OutcomeFailed, res.Outcome)
			assert.ErrorIs(t, res.Err, boom)
			assert.Equal(t, history, res.History)
			assert.Empty(t, res.Text)
			assert.Equal(t, 1, r.shown)
			assert.Equal(t, 1, r.hidden)
		})
	}
}

func TestStreamCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeRenderer{}
	client := &fakeClient{events: []nollama.StreamEvent{{Delta: "partial"}}, block: true}
	c := New(client, r)

	done := make(chan Result, 1)
	go func() {
		done <- c.Exchange(ctx, Request{Model: testModel, Prompt: "hi", Stream: true})
	}()
	cancel()

	select {
	case res := <-done:
		assert.Equal(t, OutcomeFailed, res.Outcome)
		assert.ErrorIs(t, res.Err, context.Canceled)
		assert.Empty(t, res.History)
	case <-time.After(5 * time.Second):
		t.Fatal("exchange did not stop after cancel")
	}
	assert.Equal(t, 1, r.hidden)
}

func TestBatch(t *testing.T) {
	t.Run("renders once and appends", func(t *testing.T) {
		client := &fakeClient{resp: &nollama.Response{Content: "**hi**", Usage: nollama.Usage{InputTokens: 1, OutputTokens: 1}}}
		res, r := run(t, client, nil, false)

		require.Equal(t, OutcomeOK, res.Outcome)
		assert.Equal(t, []string{"**hi**"}, r.frames)
		assert.Len(t, res.History, 2)
		assert.Equal(t, 1, r.hidden)
	})

	t.Run("empty reply", func(t *testing.T) {
		res, r := run(t, &fakeClient{resp: &nollama.Response{Content: "  "}}, nil, false)

		assert.Equal(t, OutcomeEmpty, res.Outcome)
		assert.Empty(t, res.History)
		assert.Empty(t, r.frames)
		assert.Nil(t, res.Usage)
	})

	t.Run("error", func(t *testing.T) {
		boom := errors.New("bad gateway")
		res, r := run(t, &fakeClient{chatErr: boom}, nil, false)

		assert.Equal(t, OutcomeFailed, res.Outcome)
		assert.ErrorIs(t, res.Err, boom)
		assert.Empty(t, res.History)
		assert.Equal(t, 1, r.hidden)
	})
}

func TestHistoryIsNotMutated(t *testing.T) {
	history := make([]nollama.Message, 1, 8)
	history[0] = nollama.NewUserMessage("first")
	client := &fakeClient{events: chunks("ok")}

	res, _ := run(t, client, history, true)

	require.Equal(t, OutcomeOK, res.Outcome)
	assert.Len(t, res.History, 3)
	assert.Equal(t, "first", history[0].Content)
	assert.Len(t, history[:cap(history)][1].Content, 0)

	require.Len(t, client.got, 2)
	assert.Equal(t, "hello", client.got[1].Content)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ok", OutcomeOK.String())
	assert.Equal(t, "empty", OutcomeEmpty.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "unknown", Outcome(9).String())
}
