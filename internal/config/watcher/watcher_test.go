package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want Kind
	}{
		{fsnotify.Write, KindModified},
		{fsnotify.Create, KindCreated},
		{fsnotify.Create | fsnotify.Write, KindModified},
		{fsnotify.Remove, KindRemoved},
		{fsnotify.Rename, KindRemoved},
		{fsnotify.Chmod, KindOther},
	}
	for _, tt := range tests {
		if got := Classify(tt.op); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestKind_String(t *testing.T) {
	if KindCreated.String() != "created" || KindModified.String() != "modified" ||
		KindRemoved.String() != "removed" || KindOther.String() != "other" {
		t.Error("unexpected Kind strings")
	}
}

func TestNew_SetupError(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "no-such-dir", "clefrc"))
	var setupErr *SetupError
	if !errors.As(err, &setupErr) {
		t.Fatalf("New() error = %v, want *SetupError", err)
	}
}

func waitForKind(t *testing.T, w *Watcher, want Kind) Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Kind == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %v event", want)
			return Event{}
		}
	}
}

func TestWatcher_ReportsChangesToFileOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clefrc")
	if err := os.WriteFile(path, []byte("x: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	// Sibling files are filtered out.
	if err := os.WriteFile(filepath.Join(dir, "other"), []byte("noise"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x: b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev := waitForKind(t, w, KindModified)
	if ev.Path != w.Path() {
		t.Errorf("Path = %q, want %q", ev.Path, w.Path())
	}
}

func TestWatcher_AtomicSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clefrc")
	if err := os.WriteFile(path, []byte("x: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	tmp := filepath.Join(dir, ".clefrc.swp")
	if err := os.WriteFile(tmp, []byte("x: b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	waitForKind(t, w, KindCreated)
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clefrc")
	w, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events() still open after Close")
	}
}
