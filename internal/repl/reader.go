package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// ErrInterrupted is returned by a LineReader when the user presses Ctrl+C
// at the prompt.
var ErrInterrupted = errors.New("input interrupted")

// LineReader reads one line of user input per call. It returns io.EOF at
// end of input.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// LinerReader is a LineReader with line editing and persistent history for
// interactive terminals.
type LinerReader struct {
	line        *liner.State
	historyFile string
}

// NewLinerReader creates a LinerReader, loading history from historyFile
// when it exists. An empty historyFile disables persistence.
func NewLinerReader(historyFile string) *LinerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &LinerReader{line: line, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			r.line.ReadHistory(f)
			f.Close()
		}
	}
	return r
}

// ReadLine prompts for a line. Non-blank lines are added to the history.
func (r *LinerReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrInterrupted
		}
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history with owner-only permissions and restores the
// terminal.
func (r *LinerReader) Close() error {
	defer r.line.Close()
	if r.historyFile == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = r.line.WriteHistory(f)
	return err
}

// PlainReader reads lines from a non-interactive input such as a pipe.
type PlainReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPlainReader creates a PlainReader that prints prompts to out.
func NewPlainReader(in *bufio.Reader, out io.Writer) *PlainReader {
	return &PlainReader{in: in, out: out}
}

// ReadLine prints the prompt and reads up to the next newline. A final line
// without a newline is returned before io.EOF.
func (r *PlainReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close does nothing.
func (r *PlainReader) Close() error {
	return nil
}
