package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eraseLine   = "\x1b[2K"
	eraseScreen = "\x1b[2J"
)

func plain() (*Terminal, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, WithTTY(false), WithSize(60, 20)), &buf
}

func tty(width, height int) (*Terminal, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, WithTTY(true), WithSize(width, height), WithStyle("notty")), &buf
}

func TestHeader(t *testing.T) {
	term, buf := plain()
	term.Header("gpt-4o")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Title, strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasSuffix(lines[1], "Model: gpt-4o"))
	assert.Equal(t, 60, len(lines[1]))
}

func TestHeaderTruncatesLongModel(t *testing.T) {
	term, _ := plain()
	out := header(term.styles, 20, "a-very-long-model-identifier-2025")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], "…"))
	assert.LessOrEqual(t, len([]rune(lines[1])), 20)
}

func TestPlainRenderAppendsOnlyNewText(t *testing.T) {
	term, buf := plain()

	term.ShowWaitingIndicator()
	term.RenderFormatted("Hel")
	term.RenderFormatted("Hello, ")
	term.RenderFormatted("Hello, world")
	term.HideWaitingIndicator()
	term.Status("5 tokens")

	assert.Equal(t, "Hello, world\n5 tokens\n", buf.String())
}

func TestPlainRenderIsIdempotent(t *testing.T) {
	term, buf := plain()

	term.RenderFormatted("same text")
	term.RenderFormatted("same text")

	assert.Equal(t, "same text", buf.String())
}

func TestPlainNoticesHaveNoEscapes(t *testing.T) {
	term, buf := plain()

	term.Notice("Exiting the prompt...")
	term.Errorf("An error occurred: %v", "boom")
	term.ClearScreen()

	assert.Equal(t, "Exiting the prompt...\nAn error occurred: boom\n", buf.String())
	assert.NotContains(t, buf.String(), "\x1b")
}

func TestTTYRenderRedrawsInPlace(t *testing.T) {
	term, buf := tty(60, 40)

	term.RenderFormatted("first")
	first := buf.String()
	assert.Contains(t, first, "first")
	assert.NotContains(t, first, eraseLine)

	term.RenderFormatted("first second")
	second := strings.TrimPrefix(buf.String(), first)
	assert.Contains(t, second, eraseLine)
	assert.Contains(t, second, "first second")
	assert.NotContains(t, second, eraseScreen)
}

func TestTTYRenderFallsBackToFullRedraw(t *testing.T) {
	term, buf := tty(60, 5)
	term.Header("gpt-4o")
	term.Question("list things")

	long := strings.Repeat("- item\n", 10)
	term.RenderFormatted(long)
	buf.Reset()

	term.RenderFormatted(long + "- last\n")
	out := buf.String()
	assert.Contains(t, out, eraseScreen)
	assert.Contains(t, out, Title)
	assert.Contains(t, out, PromptPrefix+"list things")
	assert.Contains(t, out, "last")
}

func TestTTYNewResponseDoesNotEraseOldOne(t *testing.T) {
	term, buf := tty(60, 40)

	term.RenderFormatted("old answer")
	term.ShowWaitingIndicator()
	term.HideWaitingIndicator()
	buf.Reset()

	term.RenderFormatted("new answer")
	assert.NotContains(t, buf.String(), "\x1b[1A")
}

func TestWaitingIndicator(t *testing.T) {
	term, buf := tty(60, 20)

	term.ShowWaitingIndicator()
	term.ShowWaitingIndicator()
	term.HideWaitingIndicator()
	term.HideWaitingIndicator()

	assert.Contains(t, buf.String(), WaitingText)
	assert.Nil(t, term.spin)
}

func TestLineCount(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		width    int
		expected int
	}{
		{"single", "hello\n", 80, 1},
		{"several", "a\nb\nc\n", 80, 3},
		{"wrapped", strings.Repeat("x", 25) + "\n", 10, 3},
		{"styled", "\x1b[1mbold\x1b[0m\n", 4, 1},
		{"blank lines", "\n\n", 80, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lineCount(tt.in, tt.width))
		})
	}
}
