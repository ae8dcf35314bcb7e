// Package terminal draws the daemon's in-place status line.
package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"

	"golang.org/x/term"
)

// Control writes ANSI control sequences to one output.
type Control struct {
	mu  sync.Mutex
	out io.Writer
	fd  int
	tty bool

	drawn bool
}

// NewControl creates a Control for stdout.
func NewControl() *Control {
	return NewControlFor(os.Stdout)
}

// NewControlFor creates a Control for f.
func NewControlFor(f *os.File) *Control {
	fd := int(f.Fd())
	return &Control{out: f, fd: fd, tty: term.IsTerminal(fd)}
}

// newControlWriter is used by tests to capture output.
func newControlWriter(w io.Writer, tty bool) *Control {
	return &Control{out: w, fd: -1, tty: tty}
}

// IsTerminal reports whether output goes to a terminal.
func (c *Control) IsTerminal() bool {
	return c.tty
}

// Width returns the terminal width, or 0 when unknown.
func (c *Control) Width() int {
	if !c.tty || c.fd < 0 {
		return 0
	}
	width, _, err := term.GetSize(c.fd)
	if err != nil {
		return 0
	}
	return width
}

// ClearLine clears the current line.
func (c *Control) ClearLine() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLine()
	c.drawn = false
}

// HideCursor hides the terminal cursor.
func (c *Control) HideCursor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, "\033[?25l")
}

// ShowCursor shows the terminal cursor.
func (c *Control) ShowCursor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showCursor()
}

// Callers of the unlocked helpers hold c.mu.
func (c *Control) clearLine() {
	fmt.Fprint(c.out, "\033[2K\r")
}

func (c *Control) showCursor() {
	fmt.Fprint(c.out, "\033[?25h")
}

// UpdateInPlace redraws the status line. When output is not a terminal each
// update is printed on its own line.
func (c *Control) UpdateInPlace(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.tty {
		fmt.Fprintln(c.out, line)
		return
	}

	if width := c.Width(); width > 1 {
		line = truncate(line, width-1)
	}
	if c.drawn {
		c.clearLine()
	}
	fmt.Fprint(c.out, line)
	c.drawn = true
}

// Finish ends the status line so later output starts on a fresh line.
func (c *Control) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tty && c.drawn {
		fmt.Fprintln(c.out)
		c.showCursor()
	}
	c.drawn = false
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	if maxRunes <= 1 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-1]) + "…"
}
