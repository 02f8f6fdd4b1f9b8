// Package render paints the chat transcript on a terminal: the header,
// markdown responses that are redrawn in place while they stream, a waiting
// spinner and short status lines.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// PromptPrefix is printed before user input.
	PromptPrefix = ">>> "
)

// Option configures a Terminal.
type Option func(*Terminal)

// WithTTY forces terminal mode on or off instead of detecting it.
func WithTTY(tty bool) Option {
	return func(t *Terminal) {
		t.tty = tty
		t.ttyKnown = true
	}
}

// WithSize fixes the terminal size instead of querying it.
func WithSize(width, height int) Option {
	return func(t *Terminal) {
		t.size = func() (int, int) { return width, height }
	}
}

// WithStyle selects a glamour style by name ("dark", "light", "notty", ...).
// The default follows the terminal background.
func WithStyle(name string) Option {
	return func(t *Terminal) {
		t.style = name
	}
}

// Terminal is the display surface of a session. Methods are safe for
// concurrent use; the spinner paints from its own goroutine.
type Terminal struct {
	mu sync.Mutex

	out      *termenv.Output
	tty      bool
	ttyKnown bool
	size     func() (int, int)
	style    string
	styles   palette

	md      *glamour.TermRenderer
	mdWidth int

	model    string
	question string

	// live region of the response being drawn
	liveLines int
	written   string

	spin *indicator
}

// New creates a Terminal writing to w. Terminal features are enabled when w
// is a TTY.
func New(w io.Writer, opts ...Option) *Terminal {
	t := &Terminal{}
	for _, opt := range opts {
		opt(t)
	}

	fd, isFile := fdOf(w)
	if !t.ttyKnown {
		t.tty = isFile && term.IsTerminal(fd)
	}
	if t.size == nil {
		t.size = func() (int, int) {
			if isFile {
				if width, height, err := term.GetSize(fd); err == nil && width > 0 {
					return width, height
				}
			}
			return defaultWidth, defaultHeight
		}
	}

	profile := termenv.Ascii
	if t.tty {
		profile = termenv.NewOutput(w).EnvColorProfile()
	}
	t.out = termenv.NewOutput(w, termenv.WithProfile(profile), termenv.WithTTY(t.tty))
	t.styles = newPalette(lipgloss.NewRenderer(w, termenv.WithProfile(profile), termenv.WithTTY(t.tty)))
	if t.style == "" && !t.tty {
		t.style = styles.NoTTYStyle
	}
	return t
}

func fdOf(w io.Writer) (int, bool) {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return 0, false
	}
	return int(f.Fd()), true
}

// IsTTY reports whether the terminal supports cursor control.
func (t *Terminal) IsTTY() bool {
	return t.tty
}

// Prompt returns the input prompt. It is unstyled because liner cannot
// measure escape sequences.
func (t *Terminal) Prompt() string {
	return PromptPrefix
}

// ClearScreen erases the display.
func (t *Terminal) ClearScreen() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settle()
	if t.tty {
		t.out.ClearScreen()
	}
}

// Header prints the title and the active model, and remembers the model for
// later redraws.
func (t *Terminal) Header(model string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settle()
	t.model = model
	t.writeHeader()
}

func (t *Terminal) writeHeader() {
	width, _ := t.size()
	io.WriteString(t.out, header(t.styles, width, t.model))
}

// Question records the prompt being answered so a full redraw can repeat it.
func (t *Terminal) Question(q string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.question = q
}

// Notice prints a highlighted one-line message.
func (t *Terminal) Notice(msg string) {
	t.line(t.styles.notice.Render(msg))
}

// Errorf prints an error message.
func (t *Terminal) Errorf(format string, args ...any) {
	t.line(t.styles.notice.Render(fmt.Sprintf(format, args...)))
}

// Status prints a dim informational line.
func (t *Terminal) Status(msg string) {
	t.line(t.styles.status.Render(msg))
}

func (t *Terminal) line(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settle()
	io.WriteString(t.out, s+"\n")
}

// RenderFormatted draws text as markdown in place of the previous frame of
// the current response. On a plain writer only the text not yet written is
// appended, without formatting.
func (t *Terminal) RenderFormatted(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tty {
		t.appendPlain(text)
		return
	}

	width, height := t.size()
	frame := t.markdown(text, width)

	if t.liveLines > 0 {
		if t.liveLines >= height {
			// Lines scrolled off screen cannot be erased; redraw everything.
			t.out.ClearScreen()
			t.writeHeader()
			if t.question != "" {
				io.WriteString(t.out, PromptPrefix+t.question+"\n")
			}
		} else {
			t.out.ClearLines(t.liveLines)
			t.out.ClearLine()
			io.WriteString(t.out, "\r")
		}
	}

	io.WriteString(t.out, frame)
	t.liveLines = lineCount(frame, width)
	t.written = text
}

func (t *Terminal) appendPlain(text string) {
	if strings.HasPrefix(text, t.written) {
		io.WriteString(t.out, text[len(t.written):])
	} else {
		io.WriteString(t.out, "\n"+text)
	}
	t.written = text
}

// settle ends the live region of the last response so following output
// starts on a fresh line.
func (t *Terminal) settle() {
	if !t.tty && t.written != "" && !strings.HasSuffix(t.written, "\n") {
		io.WriteString(t.out, "\n")
	}
	t.liveLines = 0
	t.written = ""
}

// markdown renders text with glamour, falling back to the raw text when the
// renderer cannot be built or fails.
func (t *Terminal) markdown(text string, width int) string {
	if t.md == nil || t.mdWidth != width {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(width - 2)}
		if t.style != "" {
			opts = append(opts, glamour.WithStandardStyle(t.style))
		} else {
			opts = append(opts, glamour.WithAutoStyle())
		}
		md, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			return ensureNewline(text)
		}
		t.md, t.mdWidth = md, width
	}

	out, err := t.md.Render(text)
	if err != nil {
		return ensureNewline(text)
	}
	return ensureNewline(strings.TrimRight(out, "\n"))
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// lineCount is the number of screen rows s occupies at the given width.
func lineCount(s string, width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	n := 0
	for _, line := range strings.Split(strings.TrimSuffix(s, "\n"), "\n") {
		w := lipgloss.Width(line)
		if w <= width {
			n++
			continue
		}
		n += (w + width - 1) / width
	}
	return n
}
