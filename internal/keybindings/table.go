// Package keybindings parses the clefrc keybinding file and holds the active
// chord -> command table shared between the event loop and the config watcher.
package keybindings

import (
	"bufio"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"
)

const (
	commentPrefix = "#"
	separator     = ":"
)

// ParseError reports a malformed keybinding line. Line is 1-based.
type ParseError struct {
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid key-value pair on line %d: '%s'", e.Line, e.Text)
}

// DuplicateError reports a chord defined twice when duplicates are rejected.
type DuplicateError struct {
	Chord     string
	FirstLine int
	Line      int
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate chord %q on line %d (first defined on line %d)", e.Chord, e.Line, e.FirstLine)
}

// DuplicatePolicy selects what happens when a chord is bound more than once.
type DuplicatePolicy int

const (
	// LastWins keeps the binding from the later line and logs a warning.
	LastWins DuplicatePolicy = iota
	// Reject fails the whole parse with a DuplicateError.
	Reject
)

func (p DuplicatePolicy) String() string {
	switch p {
	case LastWins:
		return "last-wins"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseDuplicatePolicy maps a settings value to a DuplicatePolicy.
// The empty string selects LastWins.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last-wins", "last_wins", "lastwins":
		return LastWins, nil
	case "reject", "error":
		return Reject, nil
	default:
		return LastWins, fmt.Errorf("unknown duplicate binding policy %q", s)
	}
}

// Table is an immutable chord -> command line mapping. A Table is never
// modified after Parse returns, so it can be read without locking.
type Table struct {
	bindings map[string]string
}

// NewTable builds a Table from already canonical chord strings.
func NewTable(bindings map[string]string) *Table {
	copied := make(map[string]string, len(bindings))
	for chord, command := range bindings {
		copied[chord] = command
	}
	return &Table{bindings: copied}
}

// Lookup returns the command line bound to chord.
func (t *Table) Lookup(chord string) (string, bool) {
	if t == nil {
		return "", false
	}
	command, ok := t.bindings[chord]
	return command, ok
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bindings)
}

// Chords returns the bound chord strings in sorted order.
func (t *Table) Chords() []string {
	if t == nil {
		return nil
	}
	chords := make([]string, 0, len(t.bindings))
	for chord := range t.bindings {
		chords = append(chords, chord)
	}
	sort.Strings(chords)
	return chords
}

// Parse reads a whole keybinding file. Blank lines and lines starting with
// '#' are skipped; every other line must be "<chord-spec>: <command-line>".
func Parse(text string, policy DuplicatePolicy) (*Table, error) {
	bindings := make(map[string]string)
	definedAt := make(map[string]int)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		chord, command, ok, err := parseLine(scanner.Text(), lineNum)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if first, exists := definedAt[chord]; exists {
			if policy == Reject {
				return nil, &DuplicateError{Chord: chord, FirstLine: first, Line: lineNum}
			}
			slog.Warn("[config] chord defined more than once, later line wins",
				"chord", chord, "firstLine", first, "line", lineNum)
		}
		bindings[chord] = command
		definedAt[chord] = lineNum
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read keybindings: %w", err)
	}

	return &Table{bindings: bindings}, nil
}

// parseLine returns ok=false for blank and comment lines.
func parseLine(raw string, lineNum int) (chord, command string, ok bool, err error) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, commentPrefix) {
		return "", "", false, nil
	}

	spec, value, found := strings.Cut(line, separator)
	if !found {
		return "", "", false, &ParseError{Line: lineNum, Text: line}
	}

	command = strings.TrimSpace(value)
	chord, valid := NormalizeChord(spec)
	if !valid || command == "" {
		return "", "", false, &ParseError{Line: lineNum, Text: line}
	}
	return chord, command, true, nil
}

// NormalizeChord converts a chord spec such as "Super_L + Shift_L + n" into
// the canonical chord string "Shift_L Super_L n": whitespace is removed, the
// names are split on '+', empty names are dropped, and every name but the
// last is sorted. It reports false when no name remains.
func NormalizeChord(spec string) (string, bool) {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, spec)

	var names []string
	for _, name := range strings.Split(stripped, "+") {
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}

	sort.Strings(names[:len(names)-1])
	return strings.Join(names, " "), true
}

// Unreachable returns, in sorted order, the bound chords no key combination
// can produce: a runtime chord is any number of modifiers followed by exactly
// one other key, so the last name must not be a modifier and the others must.
func (t *Table) Unreachable(isModifier func(name string) bool) []string {
	var unreachable []string
	for _, chord := range t.Chords() {
		names := strings.Fields(chord)
		last := len(names) - 1
		reachable := !isModifier(names[last])
		for _, name := range names[:last] {
			if !isModifier(name) {
				reachable = false
				break
			}
		}
		if !reachable {
			unreachable = append(unreachable, chord)
		}
	}
	return unreachable
}
