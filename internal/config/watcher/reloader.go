package watcher

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clef-project/clef/internal/keybindings"
	"github.com/clef-project/clef/internal/workerutil"
)

// State is the reloader lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateLoaded
	StateWatching
	// StateFailed follows a reload that could not read or parse the file.
	// The previous table stays active.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateWatching:
		return "watching"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoadFunc reads and parses the keybinding file.
type LoadFunc func(path string) (*keybindings.Table, error)

// ReloadResult describes one load attempt.
type ReloadResult struct {
	Path     string
	Initial  bool
	Bindings int
	Err      error
	Duration time.Duration
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithDebounce sets the window within which further changes are discarded.
func WithDebounce(d time.Duration) Option {
	return func(r *Reloader) { r.window = d }
}

// WithGrace sets the delay between accepting a change and reading the file.
func WithGrace(d time.Duration) Option {
	return func(r *Reloader) { r.grace = d }
}

// WithClock replaces time.Now for the debouncer.
func WithClock(now func() time.Time) Option {
	return func(r *Reloader) { r.now = now }
}

// WithReloadHandler registers fn to be told about every load attempt.
func WithReloadHandler(fn func(ReloadResult)) Option {
	return func(r *Reloader) { r.onReload = fn }
}

// Reloader owns the write side of the keybinding Store.
type Reloader struct {
	path  string
	store *keybindings.Store
	load  LoadFunc

	window   time.Duration
	grace    time.Duration
	now      func() time.Time
	onReload func(ReloadResult)

	debouncer *Debouncer
	state     atomic.Int32
	watching  atomic.Bool
}

func NewReloader(path string, store *keybindings.Store, load LoadFunc, opts ...Option) *Reloader {
	r := &Reloader{
		path:   path,
		store:  store,
		load:   load,
		window: 50 * time.Millisecond,
		grace:  20 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.debouncer = NewDebouncer(r.window, r.now)
	return r
}

// State returns the current lifecycle state.
func (r *Reloader) State() State {
	return State(r.state.Load())
}

// LoadInitial performs the synchronous first load. Its error is meant to be
// fatal: the Store is left untouched and the state stays uninitialized.
func (r *Reloader) LoadInitial() error {
	start := time.Now()
	table, err := r.load(r.path)
	result := ReloadResult{Path: r.path, Initial: true, Err: err, Duration: time.Since(start)}
	if err != nil {
		r.report(result)
		return err
	}

	r.store.Swap(table)
	r.state.Store(int32(StateLoaded))
	result.Bindings = table.Len()
	slog.Info("[watcher] keybindings loaded", "path", r.path, "bindings", table.Len())
	r.report(result)
	return nil
}

// Reload re-reads the file and swaps the table. On failure the active table
// is kept and the state becomes StateFailed until the next success.
func (r *Reloader) Reload() ReloadResult {
	start := time.Now()
	table, err := r.load(r.path)
	result := ReloadResult{Path: r.path, Err: err, Duration: time.Since(start)}

	if err != nil {
		r.state.Store(int32(StateFailed))
		slog.Error("[watcher] reload failed, keeping previous keybindings", "path", r.path, "error", err)
		r.report(result)
		return result
	}

	previous := r.store.Swap(table)
	if r.watching.Load() {
		r.state.Store(int32(StateWatching))
	} else {
		r.state.Store(int32(StateLoaded))
	}
	result.Bindings = table.Len()
	slog.Info("[watcher] keybindings reloaded",
		"path", r.path,
		"bindings", table.Len(),
		"previous", previous.Len(),
	)
	r.report(result)
	return result
}

// Run consumes notifications until ctx is cancelled or the notifier closes.
func (r *Reloader) Run(ctx context.Context, n Notifier) {
	r.watching.Store(true)
	defer r.watching.Store(false)
	r.state.CompareAndSwap(int32(StateLoaded), int32(StateWatching))

	events := n.Events()
	errs := n.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.handle(ctx, ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Warn("[watcher] watch error", "path", r.path, "error", err)
		}
	}
}

// Start runs the reloader on a recovered background goroutine.
func (r *Reloader) Start(ctx context.Context, wg *sync.WaitGroup, n Notifier) {
	workerutil.RunWithPanicRecovery(ctx, "config-watcher", wg, func(ctx context.Context) {
		r.Run(ctx, n)
	}, workerutil.RecoveryOptions{})
}

func (r *Reloader) handle(ctx context.Context, ev Event) {
	if !r.debouncer.Accept(ev) {
		slog.Debug("[watcher] change ignored", "kind", ev.Kind)
		return
	}

	if r.grace > 0 {
		timer := time.NewTimer(r.grace)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
	r.Reload()
}

func (r *Reloader) report(result ReloadResult) {
	if r.onReload != nil {
		r.onReload(result)
	}
}
