package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/clef-project/clef/internal/config"
	"github.com/clef-project/clef/internal/hotkeys"
	"github.com/clef-project/clef/internal/input"
	"github.com/clef-project/clef/internal/keymap"
	"github.com/clef-project/clef/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a keybinding file and list its chords",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		path := ""
		if len(args) > 0 {
			path = args[0]
		} else if path, err = settings.KeybindingsPath(); err != nil {
			return err
		}
		return runCheck(cmd.OutOrStdout(), path, settings)
	},
}

var showConfigCmd = &cobra.Command{
	Use:   "show-config",
	Short: "Show configuration locations and contents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		return runShowConfig(cmd.OutOrStdout(), settings)
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the chord for each key press without running anything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		return runKeys(cmd.OutOrStdout(), settings)
	},
}

var flagCheckURL string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the installed version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "clef %s\n", version.VERSION)
		if !cmd.Flags().Changed("check") {
			return nil
		}

		current, newVersion, err := version.CheckVersion(cmd.Context(), nil, flagCheckURL)
		if err != nil {
			return fmt.Errorf("version check failed: %w", err)
		}
		if current {
			fmt.Fprintln(out, "✅ Up to date")
			return nil
		}
		fmt.Fprintf(out, "🆕 %s is available, run 'go install github.com/clef-project/clef/cmd/clefd@latest' to update\n", newVersion)
		return nil
	},
}

func init() {
	versionCmd.Flags().StringVar(&flagCheckURL, "check", version.DefaultURL, "Compare with the version file at this URL")
	versionCmd.Flags().Lookup("check").NoOptDefVal = version.DefaultURL
}

func runCheck(out io.Writer, path string, settings config.Settings) error {
	table, err := config.LoadKeybindings(path, settings.DuplicatePolicy())
	if err != nil {
		fmt.Fprintf(out, "❌ %s\n", path)
		return err
	}

	fmt.Fprintf(out, "✅ %s: %d keybindings\n", path, table.Len())
	for _, chord := range table.Chords() {
		command, _ := table.Lookup(chord)
		fmt.Fprintf(out, "   %-30s %s\n", chord, command)
	}

	classifier := hotkeys.Classifier{ScrollLockIsModifier: settings.ScrollLockModifier}
	for _, chord := range table.Unreachable(classifier.IsModifier) {
		fmt.Fprintf(out, "⚠️  %s can never fire: it needs modifiers followed by exactly one other key\n", chord)
	}
	return nil
}

func runShowConfig(out io.Writer, settings config.Settings) error {
	settingsPath, err := config.SettingsPath(flagSettings)
	if err != nil {
		return err
	}
	bindingsPath, err := settings.KeybindingsPath()
	if err != nil {
		return err
	}
	envPath, err := config.EnvFilePath()
	if err != nil {
		return err
	}

	for _, f := range []struct{ label, path string }{
		{"Settings", settingsPath},
		{"Keybindings", bindingsPath},
		{"Environment", envPath},
	} {
		content, err := os.ReadFile(f.path)
		if os.IsNotExist(err) {
			fmt.Fprintf(out, "📝 %s file does not exist yet: %s\n\n", f.label, f.path)
			continue
		}
		fmt.Fprintf(out, "📁 %s file location: %s\n", f.label, f.path)
		if err != nil {
			fmt.Fprintf(out, "❌ Error reading %s file: %v\n\n", f.label, err)
			continue
		}
		fmt.Fprintln(out, "📋 Contents:")
		fmt.Fprintln(out, string(content))
	}

	fmt.Fprintf(out, "⚙️  keymap=%s scroll_lock_modifier=%t duplicate_bindings=%s debounce=%s grace=%s\n",
		settings.KeymapKind(), settings.ScrollLockModifier, settings.DuplicatePolicy(),
		settings.Reload.Debounce, settings.Reload.Grace)
	return nil
}

// chordPrinter reports derived chords for the keys command.
type chordPrinter struct {
	out io.Writer
}

func (p chordPrinter) OnChord(chord string) {
	fmt.Fprintf(p.out, "🎹 %s\n", chord)
}

func (p chordPrinter) OnDispatch(string, string, error) {}

func (p chordPrinter) OnKeyDropped(key hotkeys.Key) {
	fmt.Fprintf(p.out, "⚠️  %s ignored, too many keys held\n", key.Name)
}

func runKeys(out io.Writer, settings config.Settings) error {
	resolver, err := keymap.New(settings.KeymapKind())
	if err != nil {
		return err
	}
	if closer, ok := resolver.(interface{ Close() }); ok {
		defer closer.Close()
	}

	ctx, stop := signalContext()
	defer stop()

	events, err := input.NewEvdevSource(settings.Devices).Events(ctx)
	if err != nil {
		return err
	}

	manager := hotkeys.NewManager(hotkeys.Config{
		Classifier: hotkeys.Classifier{ScrollLockIsModifier: settings.ScrollLockModifier},
		Resolver:   resolver,
		Handler:    chordPrinter{out: out},
	})
	fmt.Fprintln(out, "⌨️  Press key combinations to see their chords, Ctrl+C to exit")
	return manager.Listen(ctx, events)
}
