package tasks

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirmer is the human confirmation gate consulted before playlist
// mutations. Implementations block until an answer is available; only an
// explicit affirmative returns true.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConsoleConfirmer prompts over line-based console I/O.
type ConsoleConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleConfirmer creates a ConsoleConfirmer reading from in and
// prompting on out, defaulting to stdin/stdout.
func NewConsoleConfirmer(in io.Reader, out io.Writer) *ConsoleConfirmer {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm writes the prompt and reads one response line. Empty, malformed,
// or declining input all count as "no".
func (c *ConsoleConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s (y/N): ", prompt)

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
