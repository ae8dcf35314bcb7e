// Package app wires the chord daemon together: keybinding store, config
// watcher, event loop, dispatcher and the optional status/feedback outputs.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/clef-project/clef/internal/config"
	"github.com/clef-project/clef/internal/config/watcher"
	"github.com/clef-project/clef/internal/dispatch"
	"github.com/clef-project/clef/internal/feedback"
	"github.com/clef-project/clef/internal/hotkeys"
	"github.com/clef-project/clef/internal/input"
	"github.com/clef-project/clef/internal/keybindings"
	"github.com/clef-project/clef/internal/keymap"
	"github.com/clef-project/clef/internal/metrics"
	"github.com/clef-project/clef/internal/terminal"
)

// Options configures a Daemon. Nil collaborators are replaced by the real
// implementations during Initialize.
type Options struct {
	KeybindingsPath string
	Settings        config.Settings

	Source   input.Source
	Resolver keymap.Resolver
	Spawner  dispatch.Spawner
	Notifier watcher.Notifier
	Terminal *terminal.Control
}

type Daemon struct {
	opts Options

	store           *keybindings.Store
	reloader        *watcher.Reloader
	fileWatcher     *watcher.Watcher
	notifier        watcher.Notifier
	resolver        keymap.Resolver
	source          input.Source
	dispatcher      *dispatch.Dispatcher
	hotkeyManager   *hotkeys.Manager
	metricsManager  *metrics.MetricsManager
	feedback        *feedback.Feedback
	feedbackOpts    feedback.Options
	terminalControl *terminal.Control
	statsFormatter  *metrics.StatsFormatter
	statusLine      bool

	// workers is waited on at shutdown. The reaper is tracked separately
	// and abandoned: it may be blocked on a child that outlives the daemon.
	workers  sync.WaitGroup
	reaperWg sync.WaitGroup
}

func NewDaemon(opts Options) *Daemon {
	return &Daemon{
		opts:           opts,
		metricsManager: metrics.NewMetricsManager(),
		statsFormatter: metrics.NewStatsFormatter(),
	}
}

// Initialize performs every startup step whose failure is fatal: the first
// keybinding load, the file watch and the keymap resolver.
func (d *Daemon) Initialize() error {
	settings := d.opts.Settings
	path := d.opts.KeybindingsPath
	if path == "" {
		var err error
		if path, err = settings.KeybindingsPath(); err != nil {
			return err
		}
	}

	policy := settings.DuplicatePolicy()
	classifier := hotkeys.Classifier{ScrollLockIsModifier: settings.ScrollLockModifier}
	d.store = keybindings.NewStore(nil)
	d.reloader = watcher.NewReloader(path, d.store,
		func(path string) (*keybindings.Table, error) {
			table, err := config.LoadKeybindings(path, policy)
			if err != nil {
				return nil, err
			}
			for _, chord := range table.Unreachable(classifier.IsModifier) {
				slog.Warn("[config] chord can never fire", "chord", chord)
			}
			return table, nil
		},
		watcher.WithDebounce(settings.Reload.Debounce),
		watcher.WithGrace(settings.Reload.Grace),
		watcher.WithReloadHandler(d.onReload),
	)
	if err := d.reloader.LoadInitial(); err != nil {
		return fmt.Errorf("load keybindings: %w", err)
	}

	d.notifier = d.opts.Notifier
	if d.notifier == nil {
		w, err := watcher.New(path)
		if err != nil {
			return err
		}
		d.fileWatcher = w
		d.notifier = w
	}

	d.resolver = d.opts.Resolver
	if d.resolver == nil {
		resolver, err := keymap.New(settings.KeymapKind())
		if err != nil {
			d.closeWatcher()
			return fmt.Errorf("keymap: %w", err)
		}
		d.resolver = resolver
	}

	dispatchOpts := []dispatch.Option{dispatch.WithExitHandler(d.onExit)}
	if d.opts.Spawner != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithSpawner(d.opts.Spawner))
	}
	d.dispatcher = dispatch.New(dispatchOpts...)

	d.hotkeyManager = hotkeys.NewManager(hotkeys.Config{
		Classifier: hotkeys.Classifier{ScrollLockIsModifier: settings.ScrollLockModifier},
		Resolver:   d.resolver,
		Bindings:   d.store,
		Launcher:   d.dispatcher,
		Handler:    d,
	})

	d.feedbackOpts = feedback.Options{
		BeepOnError:    settings.Feedback.BeepOnError,
		NotifyOnError:  settings.Feedback.NotifyOnError,
		ToneOnDispatch: settings.Feedback.ToneOnDispatch,
	}
	d.feedback = feedback.New(d.feedbackOpts)

	d.terminalControl = d.opts.Terminal
	if d.terminalControl == nil {
		d.terminalControl = terminal.NewControl()
	}
	d.statusLine = settings.StatusLine && d.terminalControl.IsTerminal()

	d.source = d.opts.Source
	if d.source == nil {
		d.source = input.NewEvdevSource(settings.Devices)
	}

	slog.Info("[daemon] initialized",
		"keybindings", path,
		"bindings", d.store.Snapshot().Len(),
		"duplicates", policy,
		"scrollLockModifier", settings.ScrollLockModifier,
		"resolver", fmt.Sprintf("%T", d.resolver),
	)
	return nil
}

// Run serves key events until ctx is cancelled. It returns an error if the
// input source cannot be opened or disappears.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := d.source.Events(ctx)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}

	d.dispatcher.Start(ctx, &d.reaperWg)
	d.reloader.Start(ctx, &d.workers, d.notifier)
	if d.feedbackOpts.Enabled() {
		d.feedback.Start(ctx, &d.workers)
	}

	fmt.Println("⌨️  clef - chord daemon started")
	fmt.Printf("📋 %d keybindings loaded, watching for changes\n", d.store.Snapshot().Len())
	fmt.Println("🛑 Press Ctrl+C to exit")
	fmt.Println()
	if d.statusLine {
		d.terminalControl.HideCursor()
		d.updateStatus()
	}

	err = d.hotkeyManager.Listen(ctx, events)
	cancel()
	if errors.Is(err, hotkeys.ErrInputClosed) {
		return fmt.Errorf("input: %w", err)
	}
	return err
}

// Cleanup stops the watcher, waits for background workers and reports the
// session counters. Spawned commands are left running.
func (d *Daemon) Cleanup() {
	d.closeWatcher()
	d.workers.Wait()

	if d.terminalControl != nil {
		d.terminalControl.Finish()
	}
	if d.feedback != nil {
		d.feedback.Close()
	}
	if closer, ok := d.resolver.(interface{ Close() }); ok {
		closer.Close()
	}
	if d.dispatcher != nil && d.dispatcher.Pending() > 0 {
		slog.Info("[daemon] leaving unreaped commands running", "count", d.dispatcher.Pending())
	}

	snapshot := d.metricsManager.Snapshot()
	metrics.LogSummary(snapshot)
	fmt.Println(d.statsFormatter.FormatSummary(snapshot))
}

// ReloaderState exposes the config watcher state.
func (d *Daemon) ReloaderState() watcher.State {
	if d.reloader == nil {
		return watcher.StateUninitialized
	}
	return d.reloader.State()
}

// Metrics returns the current counters.
func (d *Daemon) Metrics() metrics.Snapshot {
	return d.metricsManager.Snapshot()
}

// OnChord implements hotkeys.EventHandler.
func (d *Daemon) OnChord(chord string) {
	d.metricsManager.RecordChord(chord)
	d.updateStatus()
}

// OnDispatch implements hotkeys.EventHandler.
func (d *Daemon) OnDispatch(chord, command string, err error) {
	d.metricsManager.RecordDispatch(command, err)
	if err != nil {
		d.feedback.Error(fmt.Sprintf("%s: %v", chord, err))
	} else {
		d.feedback.Dispatched()
	}
	d.updateStatus()
}

// OnKeyDropped implements hotkeys.EventHandler.
func (d *Daemon) OnKeyDropped(hotkeys.Key) {
	d.metricsManager.RecordDroppedKey()
}

func (d *Daemon) onExit(exit dispatch.Exit) {
	d.metricsManager.RecordExit(exit.Success())
	if !exit.Success() {
		d.updateStatus()
	}
}

func (d *Daemon) onReload(result watcher.ReloadResult) {
	if result.Initial {
		if result.Err == nil {
			d.metricsManager.SetBindings(result.Bindings)
		}
		return
	}

	d.metricsManager.RecordReload(result.Bindings, result.Err)
	if result.Err != nil {
		d.feedback.Error(fmt.Sprintf("keybindings not reloaded: %v", result.Err))
	}
	d.updateStatus()
}

func (d *Daemon) updateStatus() {
	if !d.statusLine {
		return
	}
	d.terminalControl.UpdateInPlace(d.statsFormatter.FormatStatusLine(d.metricsManager.Snapshot()))
}

func (d *Daemon) closeWatcher() {
	if d.fileWatcher != nil {
		if err := d.fileWatcher.Close(); err != nil {
			slog.Debug("[daemon] closing watcher", "error", err)
		}
		d.fileWatcher = nil
	}
}
