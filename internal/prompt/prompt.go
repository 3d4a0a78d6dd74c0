// Package prompt provides the single yes/no confirmation gate used before
// a rename plan is applied.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer decides whether a summarized plan should be applied.
type Confirmer interface {
	Confirm(summary string) (bool, error)
}

// Fixed is a Confirmer that always gives the same answer.
type Fixed bool

// Confirm returns the fixed answer.
func (f Fixed) Confirm(string) (bool, error) {
	return bool(f), nil
}

// InteractivePrompter shows the plan summary and reads one answer.
type InteractivePrompter struct {
	reader   io.Reader
	writer   io.Writer
	question string
}

// NewInteractivePrompter creates a new InteractivePrompter with the given reader and writer.
// Use os.Stdin and os.Stdout for normal operation, or buffers for testing.
func NewInteractivePrompter(reader io.Reader, writer io.Writer) *InteractivePrompter {
	return &InteractivePrompter{
		reader:   reader,
		writer:   writer,
		question: "Apply these changes? [y/N]: ",
	}
}

// Confirm prints summary followed by the question. Only "y" or "yes"
// (any case) accepts; anything else, including EOF, declines.
func (p *InteractivePrompter) Confirm(summary string) (bool, error) {
	fmt.Fprint(p.writer, summary)
	fmt.Fprintf(p.writer, "\n%s", p.question)

	scanner := bufio.NewScanner(p.reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, fmt.Errorf("error reading input: %w", err)
		}
		fmt.Fprintln(p.writer)
		return false, nil
	}

	switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
