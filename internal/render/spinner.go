package render

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// WaitingText accompanies the spinner while no response has arrived.
const WaitingText = "Waiting for response..."

type indicator struct {
	stop chan struct{}
	done chan struct{}
}

// ShowWaitingIndicator starts the spinner and begins a new response region.
func (t *Terminal) ShowWaitingIndicator() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settle()

	if !t.tty || t.spin != nil {
		return
	}

	s := &indicator{stop: make(chan struct{}), done: make(chan struct{})}
	t.spin = s
	t.out.HideCursor()
	go t.animate(s, spinner.Dot)
}

func (t *Terminal) animate(s *indicator, frames spinner.Spinner) {
	defer close(s.done)

	ticker := time.NewTicker(frames.FPS)
	defer ticker.Stop()

	for i := 0; ; i++ {
		t.mu.Lock()
		t.out.ClearLine()
		io.WriteString(t.out, "\r"+t.styles.spinner.Render(frames.Frames[i%len(frames.Frames)])+" "+WaitingText)
		t.mu.Unlock()

		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}
	}
}

// HideWaitingIndicator stops the spinner and erases it. Calling it when no
// spinner is running does nothing.
func (t *Terminal) HideWaitingIndicator() {
	t.mu.Lock()
	s := t.spin
	t.spin = nil
	t.mu.Unlock()

	if s == nil {
		return
	}
	close(s.stop)
	<-s.done

	t.mu.Lock()
	defer t.mu.Unlock()
	t.out.ClearLine()
	io.WriteString(t.out, "\r")
	t.out.ShowCursor()
}
