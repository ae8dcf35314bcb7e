// Package config resolves clef's file locations and loads the optional
// settings file, the .env file and the keybinding file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/clef-project/clef/internal/keybindings"
	"github.com/clef-project/clef/internal/keymap"
)

const (
	configDirName       = "clef"
	keybindingsFileName = "clefrc"
	settingsFileName    = "settings.yaml"
	envFileName         = ".env"

	maxConfigFileBytes int64 = 1 << 20 // 1MB

	DefaultDebounce = 50 * time.Millisecond
	DefaultGrace    = 20 * time.Millisecond
)

// Environment variables consulted by ApplyEnv and SettingsPath.
const (
	EnvConfig   = "CLEF_CONFIG"
	EnvSettings = "CLEF_SETTINGS"
	EnvLogLevel = "CLEF_LOG_LEVEL"
)

var (
	userConfigDirFn = os.UserConfigDir
	userHomeDirFn   = os.UserHomeDir
)

// ReadError reports a configuration file that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Dir returns the clef config directory ($XDG_CONFIG_HOME/clef).
func Dir() (string, error) {
	base, err := userConfigDirFn()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(base, configDirName), nil
}

// DefaultKeybindingsPath returns the keybinding file used when nothing
// overrides it.
func DefaultKeybindingsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, keybindingsFileName), nil
}

// EnvFilePath returns the path of the optional .env file.
func EnvFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, envFileName), nil
}

// SettingsPath picks the settings file: flag, then $CLEF_SETTINGS, then the
// default location.
func SettingsPath(flag string) (string, error) {
	if flag != "" {
		return ExpandHome(flag), nil
	}
	if env := strings.TrimSpace(os.Getenv(EnvSettings)); env != "" {
		return ExpandHome(env), nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := userHomeDirFn()
	if err != nil {
		slog.Warn("[config] cannot expand ~, using path as is", "path", path, "error", err)
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ReloadSettings tunes the config watcher.
type ReloadSettings struct {
	Debounce time.Duration `yaml:"debounce"`
	Grace    time.Duration `yaml:"grace"`
}

// FeedbackSettings enables optional audible and desktop feedback.
type FeedbackSettings struct {
	BeepOnError    bool `yaml:"beep_on_error"`
	NotifyOnError  bool `yaml:"notify_on_error"`
	ToneOnDispatch bool `yaml:"tone_on_dispatch"`
}

// Settings is the content of settings.yaml.
type Settings struct {
	Keybindings        string           `yaml:"keybindings,omitempty"`
	LogLevel           string           `yaml:"log_level,omitempty"`
	ScrollLockModifier bool             `yaml:"scroll_lock_modifier"`
	DuplicateBindings  string           `yaml:"duplicate_bindings,omitempty"`
	Reload             ReloadSettings   `yaml:"reload"`
	Keymap             string           `yaml:"keymap,omitempty"`
	Devices            []string         `yaml:"devices,omitempty"`
	StatusLine         bool             `yaml:"status_line"`
	Feedback           FeedbackSettings `yaml:"feedback"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:          "info",
		DuplicateBindings: keybindings.LastWins.String(),
		Reload: ReloadSettings{
			Debounce: DefaultDebounce,
			Grace:    DefaultGrace,
		},
		Keymap: string(keymap.KindAuto),
	}
}

// LoadSettings reads path. A missing or empty file yields DefaultSettings.
// On a decode or validation error the defaults are returned with the error.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, errors.New("settings path required")
	}

	raw, err := readLimitedFile(path, maxConfigFileBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("[config] no settings file, using defaults", "path", path)
			return settings, nil
		}
		return settings, &ReadError{Path: path, Err: err}
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return settings, nil
	}

	if err := yaml.Unmarshal(raw, &settings); err != nil {
		slog.Warn("[config] failed to parse settings, using defaults", "path", path, "error", err)
		return DefaultSettings(), fmt.Errorf("parse %s: %w", path, err)
	}
	if err := settings.applyDefaultsAndValidate(); err != nil {
		return DefaultSettings(), fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

func (s *Settings) applyDefaultsAndValidate() error {
	if s.Reload.Debounce <= 0 {
		s.Reload.Debounce = DefaultDebounce
	}
	if s.Reload.Grace < 0 {
		s.Reload.Grace = 0
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}
	if _, err := keybindings.ParseDuplicatePolicy(s.DuplicateBindings); err != nil {
		return err
	}
	if _, err := keymap.ParseKind(s.Keymap); err != nil {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from the process environment, which by then
// includes anything loaded from the .env file.
func (s *Settings) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvConfig)); v != "" {
		s.Keybindings = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		s.LogLevel = v
	}
}

// KeybindingsPath returns the configured keybinding file or the default one.
func (s Settings) KeybindingsPath() (string, error) {
	if s.Keybindings != "" {
		return ExpandHome(s.Keybindings), nil
	}
	return DefaultKeybindingsPath()
}

// DuplicatePolicy returns the parsed duplicate_bindings value.
func (s Settings) DuplicatePolicy() keybindings.DuplicatePolicy {
	policy, err := keybindings.ParseDuplicatePolicy(s.DuplicateBindings)
	if err != nil {
		slog.Warn("[config] invalid duplicate_bindings, using last-wins", "value", s.DuplicateBindings)
	}
	return policy
}

// KeymapKind returns the parsed keymap value.
func (s Settings) KeymapKind() keymap.Kind {
	kind, err := keymap.ParseKind(s.Keymap)
	if err != nil {
		slog.Warn("[config] invalid keymap, using auto", "value", s.Keymap)
	}
	return kind
}

// ParseLogLevel maps debug|info|warn|error to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// LoadKeybindings reads and parses the keybinding file at path.
func LoadKeybindings(path string, policy keybindings.DuplicatePolicy) (*keybindings.Table, error) {
	raw, err := readLimitedFile(path, maxConfigFileBytes)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	table, err := keybindings.Parse(string(raw), policy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	limited := io.LimitReader(file, maxBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", maxBytes)
	}
	return raw, nil
}
