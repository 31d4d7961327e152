package resolve

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// TerminalPrompter implements Prompter against a real terminal.
type TerminalPrompter struct {
	in     *bufio.Reader
	out    io.Writer
	isTTY  bool
	yellow *color.Color
}

// NewTerminalPrompter creates a prompter bound to stdin/stdout.
func NewTerminalPrompter() (p *TerminalPrompter) {
	p = &TerminalPrompter{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		isTTY:  term.IsTerminal(int(os.Stdin.Fd())),
		yellow: color.New(color.FgYellow),
	}
	return p
}

// Interactive reports whether stdin is a terminal.
func (p *TerminalPrompter) Interactive() (interactive bool) {
	interactive = p.isTTY
	return interactive
}

// Choose displays a prompt and reads one line of input.
func (p *TerminalPrompter) Choose(prompt string) (choice string, err error) {
	fmt.Fprintln(p.out)
	fmt.Fprint(p.out, prompt)

	var line string
	line, err = p.in.ReadString('\n')
	if err != nil {
		err = errors.Wrap(err, "failed to read terminal input")
		return choice, err
	}

	choice = strings.TrimSpace(line)
	return choice, err
}

// Confirm blocks until the operator presses Enter.
func (p *TerminalPrompter) Confirm(prompt string) (err error) {
	fmt.Fprintln(p.out)
	fmt.Fprint(p.out, prompt)

	_, err = p.in.ReadString('\n')
	if err != nil {
		err = errors.Wrap(err, "failed to read terminal input")
		return err
	}

	return err
}

// Say emits an informational message.
func (p *TerminalPrompter) Say(msg string) {
	fmt.Fprintln(p.out, msg)
}

// Warn emits a warning message in yellow.
func (p *TerminalPrompter) Warn(msg string) {
	p.yellow.Fprintln(p.out, msg)
}
