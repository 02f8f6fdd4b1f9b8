// Package tokens estimates token counts for providers that do not report
// usage.
package tokens

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
	"github.com/spetersoncode/nollama"
)

// Encoding is the BPE encoding used for estimates.
const Encoding = "cl100k_base"

// perMessageOverhead approximates the role and separator tokens chat
// formats add around each message.
const perMessageOverhead = 4

// Counter counts tokens with tiktoken, or with a characters/4 estimate when
// the encoding cannot be loaded.
type Counter struct {
	once   sync.Once
	enc    *tiktoken.Tiktoken
	load   func() (*tiktoken.Tiktoken, error)
	logger *slog.Logger
}

// New creates a Counter. The encoding is loaded on first use, which may
// fetch it over the network when it is not cached.
func New(logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Counter{
		load:   func() (*tiktoken.Tiktoken, error) { return tiktoken.GetEncoding(Encoding) },
		logger: logger,
	}
}

func (c *Counter) encoding() *tiktoken.Tiktoken {
	c.once.Do(func() {
		if c.load == nil {
			return
		}
		enc, err := c.load()
		if err != nil {
			c.logger.Warn("token encoding unavailable, estimating", slog.String("encoding", Encoding), slog.String("error", err.Error()))
			return
		}
		c.enc = enc
	})
	return c.enc
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := c.encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return Estimate(text)
}

// CountMessages returns the tokens a conversation costs as prompt input.
func (c *Counter) CountMessages(messages []nollama.Message) int {
	total := 0
	for _, m := range messages {
		total += perMessageOverhead + c.Count(m.Content)
	}
	return total
}

// Usage estimates usage for one exchange: history is everything sent,
// reply is the generated text.
func (c *Counter) Usage(history []nollama.Message, reply string) nollama.Usage {
	return nollama.Usage{
		InputTokens:  c.CountMessages(history),
		OutputTokens: c.Count(reply),
	}
}

// Estimate approximates tokens as one per four characters, rounding up.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
