package keybindings

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func TestParse_ValidContent(t *testing.T) {
	content := `
		# This is a comment
		Super_L + w : firefox
		Control_L+Shift_L + n : newsboat -r
		Super_L  + n :nvim -o3 +5
	`
	table, err := Parse(content, LastWins)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := map[string]string{
		"Super_L w":           "firefox",
		"Control_L Shift_L n": "newsboat -r",
		"Super_L n":           "nvim -o3 +5",
	}
	if !reflect.DeepEqual(table.bindings, want) {
		t.Errorf("Parse() bindings = %v, want %v", table.bindings, want)
	}
}

func TestParse_NormalizesChordSpec(t *testing.T) {
	table, err := Parse("Control_L+Shift_L + n : newsboat -r", LastWins)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, ok := table.Lookup("Control_L Shift_L n")
	if !ok || got != "newsboat -r" {
		t.Errorf("Lookup(%q) = %q, %v; want %q, true", "Control_L Shift_L n", got, ok, "newsboat -r")
	}
}

func TestParse_EmptyAndCommentOnly(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"blank lines", "\n\n   \n\t\n"},
		{"comments only", "# Only comments and whitespace\n\n   # Another comment.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse(tt.content, LastWins)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if table.Len() != 0 {
				t.Errorf("Len() = %d, want 0", table.Len())
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantLine int
		wantText string
	}{
		{"missing separator", "invalid line", 1, "invalid line"},
		{"empty key", ":command", 1, ":command"},
		{"empty value", "key:", 1, "key:"},
		{"whitespace key", "   : command", 1, ": command"},
		{"only separators", "+ + : true", 1, "+ + : true"},
		{"error on later line", "# ok\nSuper_L+w: firefox\n\nbroken", 4, "broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content, LastWins)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}
			if perr.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", perr.Line, tt.wantLine)
			}
			if perr.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", perr.Text, tt.wantText)
			}
			if !strings.Contains(err.Error(), "on line") {
				t.Errorf("Error() = %q, want line reference", err.Error())
			}
		})
	}
}

func TestParse_SplitsOnFirstSeparatorOnly(t *testing.T) {
	table, err := Parse("Super_L + u: xdg-open https://example.com", LastWins)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, _ := table.Lookup("Super_L u")
	if got != "xdg-open https://example.com" {
		t.Errorf("Lookup() = %q", got)
	}
}

func TestParse_Duplicates(t *testing.T) {
	content := "Super_L + w: firefox\nSuper_L+w: chromium\n"

	table, err := Parse(content, LastWins)
	if err != nil {
		t.Fatalf("Parse(LastWins) error = %v", err)
	}
	if got, _ := table.Lookup("Super_L w"); got != "chromium" {
		t.Errorf("LastWins Lookup() = %q, want chromium", got)
	}

	_, err = Parse(content, Reject)
	var derr *DuplicateError
	if !errors.As(err, &derr) {
		t.Fatalf("Parse(Reject) error = %v, want *DuplicateError", err)
	}
	if derr.FirstLine != 1 || derr.Line != 2 || derr.Chord != "Super_L w" {
		t.Errorf("DuplicateError = %+v", derr)
	}
}

func TestNormalizeChord(t *testing.T) {
	tests := []struct {
		spec   string
		want   string
		wantOK bool
	}{
		{"Control_L + x", "Control_L x", true},
		{"Control_L+x", "Control_L x", true},
		{"Super_L + Shift_L + n", "Shift_L Super_L n", true},
		{"F5", "F5", true},
		{"  a  ", "a", true},
		{"", "", false},
		{"Control_L++x", "Control_L x", true},
		{"Control_L + + x", "Control_L x", true},
		{"Control_L+", "Control_L", true},
		{"+x", "x", true},
		{"+", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeChord(tt.spec)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeChord(%q) = %q, %v; want %q, %v", tt.spec, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParse_EmptyNamesAreDropped(t *testing.T) {
	table, err := Parse("Control_L + + x: true\n", LastWins)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, ok := table.Lookup("Control_L x"); !ok || got != "true" {
		t.Errorf("Lookup(%q) = %q, %v; want %q, true", "Control_L x", got, ok, "true")
	}
}

func TestTable_Unreachable(t *testing.T) {
	isModifier := func(name string) bool {
		return strings.HasSuffix(name, "_L") || strings.HasSuffix(name, "_R")
	}
	table, err := Parse(`
		Control_L + x: ok
		F5: ok
		Control_L + Shift_L + n: ok
		x + Control_L: never
		Control_L: never
		Control_L + a + b: never
		Control_L++y: ok
	`, LastWins)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"Control_L", "Control_L a b", "x Control_L"}
	if got := table.Unreachable(isModifier); !reflect.DeepEqual(got, want) {
		t.Errorf("Unreachable() = %v, want %v", got, want)
	}

	if got := NewTable(nil).Unreachable(isModifier); len(got) != 0 {
		t.Errorf("empty table Unreachable() = %v", got)
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DuplicatePolicy
		wantErr bool
	}{
		{"", LastWins, false},
		{"last-wins", LastWins, false},
		{"Reject", Reject, false},
		{"sometimes", LastWins, true},
	}
	for _, tt := range tests {
		got, err := ParseDuplicatePolicy(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseDuplicatePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestTable_Chords(t *testing.T) {
	table := NewTable(map[string]string{"b": "2", "a": "1"})
	if got := table.Chords(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Chords() = %v", got)
	}

	var nilTable *Table
	if _, ok := nilTable.Lookup("a"); ok {
		t.Error("nil table Lookup() reported a binding")
	}
}

func TestStore_SwapAndLookup(t *testing.T) {
	store := NewStore(NewTable(map[string]string{"key1": "command1"}))
	if got, ok := store.Lookup("key1"); !ok || got != "command1" {
		t.Fatalf("Lookup(key1) = %q, %v", got, ok)
	}

	previous := store.Swap(NewTable(map[string]string{"key2": "command2"}))
	if previous.Len() != 1 {
		t.Errorf("Swap() returned table with %d bindings, want 1", previous.Len())
	}
	if _, ok := store.Lookup("key1"); ok {
		t.Error("key1 still bound after swap")
	}
	if got, ok := store.Lookup("key2"); !ok || got != "command2" {
		t.Errorf("Lookup(key2) = %q, %v", got, ok)
	}
}

func TestStore_ConcurrentReadersSeeWholeTables(t *testing.T) {
	oldTable := NewTable(map[string]string{"a": "old", "b": "old"})
	newTable := NewTable(map[string]string{"a": "new", "b": "new"})
	store := NewStore(oldTable)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := store.Snapshot()
				a, _ := snap.Lookup("a")
				b, _ := snap.Lookup("b")
				if a != b {
					t.Errorf("torn table: a=%q b=%q", a, b)
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			store.Swap(newTable)
		} else {
			store.Swap(oldTable)
		}
	}
	close(stop)
	wg.Wait()
}
