package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clef-project/clef/internal/app"
	"github.com/clef-project/clef/internal/config"
	"github.com/clef-project/clef/internal/keymap"
	"github.com/clef-project/clef/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clefd",
	Short: "clef - keyboard chord daemon",
	Long: `clefd watches the keyboard and runs the command bound to each chord.

Bindings live in ~/.config/clef/clefrc, one per line:

  Control_L + Shift_L + n: xterm
  Super_L + f: firefox

The file is reloaded automatically when it changes. A broken edit is
reported and the previous bindings stay active.

Examples:
  clefd                        # Run the daemon
  clefd --config ./clefrc      # Use another keybinding file
  clefd check                  # Validate the keybinding file
  clefd keys                   # Show the chord for the keys you press`,
	Version:       version.VERSION,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		return runDaemon(settings)
	},
}

// Flags shared by every command
var (
	flagConfig   string
	flagSettings string
	flagLogLevel string
	flagDevices  []string
	flagKeymap   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Keybinding file (default ~/.config/clef/clefrc)")
	rootCmd.PersistentFlags().StringVar(&flagSettings, "settings", "", "Settings file (default ~/.config/clef/settings.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	rootCmd.PersistentFlags().StringArrayVarP(&flagDevices, "device", "d", []string{}, "Keyboard device path, can be repeated (default: all keyboards)")
	rootCmd.PersistentFlags().StringVar(&flagKeymap, "keymap", "", "Keymap resolver (auto/x11/static)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadSettings resolves settings in priority order: flags, process
// environment, .env file, settings file, defaults. It also installs the
// default logger.
func loadSettings() (config.Settings, error) {
	if envPath, err := config.EnvFilePath(); err == nil {
		if err := config.LoadEnv(envPath); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Warning: %v\n", err)
		}
	}

	settingsPath, err := config.SettingsPath(flagSettings)
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to locate settings: %w", err)
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return config.Settings{}, err
	}
	settings.ApplyEnv()
	if err := applyFlags(&settings); err != nil {
		return config.Settings{}, err
	}

	level, err := config.ParseLogLevel(settings.LogLevel)
	if err != nil {
		return config.Settings{}, err
	}
	slog.SetDefault(newLogger(os.Stderr, level))
	slog.Debug("[config] settings resolved", "path", settingsPath, "logLevel", settings.LogLevel)
	return settings, nil
}

func applyFlags(settings *config.Settings) error {
	if flagConfig != "" {
		settings.Keybindings = flagConfig
	}
	if flagLogLevel != "" {
		if _, err := config.ParseLogLevel(flagLogLevel); err != nil {
			return err
		}
		settings.LogLevel = flagLogLevel
	}
	if len(flagDevices) > 0 {
		settings.Devices = flagDevices
	}
	if flagKeymap != "" {
		if _, err := keymap.ParseKind(flagKeymap); err != nil {
			return err
		}
		settings.Keymap = flagKeymap
	}
	return nil
}

func newLogger(w *os.File, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runDaemon(settings config.Settings) error {
	daemon := app.NewDaemon(app.Options{Settings: settings})
	if err := daemon.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize daemon: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	err := daemon.Run(ctx)
	if ctx.Err() != nil {
		fmt.Println()
		fmt.Println("🛑 Shutting down...")
	}
	daemon.Cleanup()
	if err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}
	return nil
}
