package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

var (
	// ErrNoInput means the input stream ended before a line was read.
	ErrNoInput = errors.New("console: no input")
	// ErrAborted means the operator cancelled the prompt.
	ErrAborted = errors.New("console: prompt aborted")
)

// Prompter asks the operator for a line of text or a secret.
type Prompter interface {
	Line(ctx context.Context, label string) (string, error)
	Secret(ctx context.Context, label string) (string, error)
}

// NewPrompter returns a TUI prompter when in is a terminal and a plain line
// prompter otherwise.
func NewPrompter(in *os.File, out io.Writer) Prompter {
	if in != nil && (isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd())) {
		return NewTUIPrompter(in, out)
	}
	var r io.Reader = in
	if in == nil {
		r = strings.NewReader("")
	}
	return NewLinePrompter(r, out)
}

// LinePrompter writes the label and reads one line. Secrets are not masked.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	if out == nil {
		out = io.Discard
	}
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Line(ctx context.Context, label string) (string, error) {
	fmt.Fprint(p.out, label)

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
			if errors.Is(r.err, io.EOF) {
				return "", ErrNoInput
			}
			return "", fmt.Errorf("read input: %w", r.err)
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}

func (p *LinePrompter) Secret(ctx context.Context, label string) (string, error) {
	return p.Line(ctx, label)
}
