package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clef-project/clef/internal/keybindings"
	"github.com/clef-project/clef/internal/keymap"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func stubConfigDir(t *testing.T, dir string) {
	t.Helper()
	orig := userConfigDirFn
	userConfigDirFn = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDirFn = orig })
}

func TestDefaultPaths(t *testing.T) {
	base := t.TempDir()
	stubConfigDir(t, base)
	t.Setenv(EnvSettings, "")

	kb, err := DefaultKeybindingsPath()
	if err != nil || kb != filepath.Join(base, "clef", "clefrc") {
		t.Errorf("DefaultKeybindingsPath() = %q, %v", kb, err)
	}
	env, err := EnvFilePath()
	if err != nil || env != filepath.Join(base, "clef", ".env") {
		t.Errorf("EnvFilePath() = %q, %v", env, err)
	}
	settings, err := SettingsPath("")
	if err != nil || settings != filepath.Join(base, "clef", "settings.yaml") {
		t.Errorf("SettingsPath() = %q, %v", settings, err)
	}
}

func TestSettingsPath_Priority(t *testing.T) {
	stubConfigDir(t, t.TempDir())

	t.Setenv(EnvSettings, "/from/env.yaml")
	if got, _ := SettingsPath(""); got != "/from/env.yaml" {
		t.Errorf("SettingsPath() with env = %q", got)
	}
	if got, _ := SettingsPath("/from/flag.yaml"); got != "/from/flag.yaml" {
		t.Errorf("SettingsPath() with flag = %q", got)
	}
}

func TestDir_Error(t *testing.T) {
	orig := userConfigDirFn
	userConfigDirFn = func() (string, error) { return "", errors.New("no home") }
	t.Cleanup(func() { userConfigDirFn = orig })

	if _, err := DefaultKeybindingsPath(); err == nil {
		t.Error("expected error when config dir cannot be resolved")
	}
}

func TestExpandHome(t *testing.T) {
	orig := userHomeDirFn
	userHomeDirFn = func() (string, error) { return "/home/u", nil }
	t.Cleanup(func() { userHomeDirFn = orig })

	tests := map[string]string{
		"~/clefrc":      "/home/u/clefrc",
		"~":             "/home/u",
		"/etc/clefrc":   "/etc/clefrc",
		"~other/clefrc": "~other/clefrc",
	}
	for in, want := range tests {
		if got := ExpandHome(in); got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadSettings_MissingAndEmpty(t *testing.T) {
	dir := t.TempDir()

	got, err := LoadSettings(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadSettings(missing) error = %v", err)
	}
	if got.Reload.Debounce != DefaultDebounce || got.Reload.Grace != DefaultGrace || got.LogLevel != "info" {
		t.Errorf("LoadSettings(missing) = %+v", got)
	}

	empty := writeFile(t, dir, "empty.yaml", "\n  \n")
	if got, err := LoadSettings(empty); err != nil || got.Reload.Debounce != DefaultDebounce {
		t.Errorf("LoadSettings(empty) = %+v, %v", got, err)
	}

	if _, err := LoadSettings(""); err == nil {
		t.Error("LoadSettings(\"\") expected error")
	}
}

func TestLoadSettings_Values(t *testing.T) {
	path := writeFile(t, t.TempDir(), "settings.yaml", `
keybindings: /tmp/clefrc
log_level: debug
scroll_lock_modifier: true
duplicate_bindings: reject
reload:
  debounce: 120ms
  grace: 0s
keymap: static
devices:
  - /dev/input/event3
status_line: true
feedback:
  beep_on_error: true
  notify_on_error: true
`)

	got, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if got.Keybindings != "/tmp/clefrc" || !got.ScrollLockModifier || !got.StatusLine {
		t.Errorf("LoadSettings() = %+v", got)
	}
	if got.Reload.Debounce != 120*time.Millisecond || got.Reload.Grace != 0 {
		t.Errorf("Reload = %+v", got.Reload)
	}
	if got.DuplicatePolicy() != keybindings.Reject {
		t.Errorf("DuplicatePolicy() = %v", got.DuplicatePolicy())
	}
	if got.KeymapKind() != keymap.KindStatic {
		t.Errorf("KeymapKind() = %v", got.KeymapKind())
	}
	if len(got.Devices) != 1 || got.Devices[0] != "/dev/input/event3" {
		t.Errorf("Devices = %v", got.Devices)
	}
	if !got.Feedback.BeepOnError || !got.Feedback.NotifyOnError || got.Feedback.ToneOnDispatch {
		t.Errorf("Feedback = %+v", got.Feedback)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"bad yaml":       "reload: [",
		"bad duration":   "reload:\n  debounce: soon\n",
		"bad level":      "log_level: chatty\n",
		"bad duplicates": "duplicate_bindings: first-wins\n",
		"bad keymap":     "keymap: wayland\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, "s.yaml", content)
			got, err := LoadSettings(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if got.Reload.Debounce != DefaultDebounce {
				t.Errorf("defaults not returned on error: %+v", got)
			}
		})
	}
}

func TestLoadSettings_ClampsReload(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.yaml", "reload:\n  debounce: 0s\n  grace: -5ms\n")
	got, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if got.Reload.Debounce != DefaultDebounce || got.Reload.Grace != 0 {
		t.Errorf("Reload = %+v", got.Reload)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvConfig, "/env/clefrc")
	t.Setenv(EnvLogLevel, "warn")

	s := DefaultSettings()
	s.Keybindings = "/file/clefrc"
	s.ApplyEnv()
	if s.Keybindings != "/env/clefrc" || s.LogLevel != "warn" {
		t.Errorf("ApplyEnv() = %+v", s)
	}
	if p, _ := s.KeybindingsPath(); p != "/env/clefrc" {
		t.Errorf("KeybindingsPath() = %q", p)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "CLEF_LOG_LEVEL=debug\nCLEF_CONFIG=/dotenv/clefrc\n")

	// Process environment wins over the file.
	t.Setenv(EnvConfig, "/process/clefrc")
	t.Setenv(EnvLogLevel, "")
	os.Unsetenv(EnvLogLevel)

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv(EnvLogLevel); got != "debug" {
		t.Errorf("%s = %q, want debug", EnvLogLevel, got)
	}
	if got := os.Getenv(EnvConfig); got != "/process/clefrc" {
		t.Errorf("%s = %q, want process value", EnvConfig, got)
	}

	if err := LoadEnv(filepath.Join(dir, "missing")); err != nil {
		t.Errorf("LoadEnv(missing) error = %v", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", slog.LevelInfo, true},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLoadKeybindings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "clefrc", "# apps\nControl_L + x: xterm\n")

	table, err := LoadKeybindings(path, keybindings.LastWins)
	if err != nil {
		t.Fatalf("LoadKeybindings() error = %v", err)
	}
	if cmd, ok := table.Lookup("Control_L x"); !ok || cmd != "xterm" {
		t.Errorf("Lookup() = %q, %v", cmd, ok)
	}
}

func TestLoadKeybindings_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadKeybindings(filepath.Join(dir, "missing"), keybindings.LastWins)
	var readErr *ReadError
	if !errors.As(err, &readErr) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want *ReadError wrapping ErrNotExist", err)
	}

	bad := writeFile(t, dir, "bad", "ok: cmd\nbroken\n")
	_, err = LoadKeybindings(bad, keybindings.LastWins)
	var parseErr *keybindings.ParseError
	if !errors.As(err, &parseErr) || parseErr.Line != 2 {
		t.Errorf("parse error = %v, want ParseError on line 2", err)
	}
}
