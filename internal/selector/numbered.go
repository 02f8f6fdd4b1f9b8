package selector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Numbered is a plain-text menu for input that is not a terminal.
type Numbered struct {
	in  *bufio.Reader
	out io.Writer
}

// NewNumbered creates a Numbered selector. Pass the same reader the REPL
// uses so buffered input is not lost between them.
func NewNumbered(in *bufio.Reader, out io.Writer) *Numbered {
	return &Numbered{in: in, out: out}
}

// Choose prints the numbered choices and reads a number. Invalid input
// prompts again; "q" or end of input cancels.
func (n *Numbered) Choose(ctx context.Context, title string, choices []Choice) (Choice, error) {
	if len(choices) == 0 {
		return Choice{}, ErrNoChoices
	}

	fmt.Fprintln(n.out, title)
	for i, c := range choices {
		fmt.Fprintf(n.out, "  %d) %s\n", i+1, c.Label)
	}

	for {
		if err := ctx.Err(); err != nil {
			return Choice{}, err
		}

		fmt.Fprintf(n.out, "Enter a number (1-%d, q to cancel): ", len(choices))
		line, err := n.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(n.out)
				return Choice{}, ErrCanceled
			}
			return Choice{}, err
		}

		answer := strings.TrimSpace(line)
		if strings.EqualFold(answer, "q") {
			return Choice{}, ErrCanceled
		}

		idx, convErr := strconv.Atoi(answer)
		if convErr == nil && idx >= 1 && idx <= len(choices) {
			return choices[idx-1], nil
		}
		fmt.Fprintf(n.out, "Invalid choice %q.\n", answer)

		if err != nil {
			// Last line of input was invalid.
			return Choice{}, ErrCanceled
		}
	}
}
