package hotkeys

import (
	"context"
	"errors"
	"log/slog"

	"github.com/clef-project/clef/internal/input"
	"github.com/clef-project/clef/internal/keymap"
)

// ErrInputClosed is returned by Listen when the event channel closes while
// the context is still live (every input device went away).
var ErrInputClosed = errors.New("input event stream closed")

// Bindings is the read side of the keybinding table.
type Bindings interface {
	Lookup(chord string) (string, bool)
}

// Launcher starts a bound command line without waiting for it.
type Launcher interface {
	Dispatch(commandLine string) error
}

// EventHandler observes the loop. Calls happen on the loop goroutine and
// must return quickly.
type EventHandler interface {
	OnChord(chord string)
	OnDispatch(chord, command string, err error)
	OnKeyDropped(key Key)
}

type noopHandler struct{}

func (noopHandler) OnChord(string)                   {}
func (noopHandler) OnDispatch(string, string, error) {}
func (noopHandler) OnKeyDropped(Key)                 {}

// Config wires a Manager. Bindings and Launcher may be nil, in which case
// chords are derived and reported but nothing is dispatched.
type Config struct {
	Classifier Classifier
	Resolver   keymap.Resolver
	Bindings   Bindings
	Launcher   Launcher
	Handler    EventHandler
}

// Manager is the event dispatch loop. It owns the ChordState; only the
// goroutine calling Listen or HandleEvent may touch it.
type Manager struct {
	state      *ChordState
	classifier Classifier
	resolver   keymap.Resolver
	bindings   Bindings
	launcher   Launcher
	handler    EventHandler
}

func NewManager(cfg Config) *Manager {
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = keymap.Static{}
	}
	handler := cfg.Handler
	if handler == nil {
		handler = noopHandler{}
	}
	return &Manager{
		state:      NewChordState(cfg.Classifier),
		classifier: cfg.Classifier,
		resolver:   resolver,
		bindings:   cfg.Bindings,
		launcher:   cfg.Launcher,
		handler:    handler,
	}
}

// Listen feeds events into HandleEvent until ctx is cancelled or the channel
// closes. Cancellation returns nil.
func (m *Manager) Listen(ctx context.Context, events <-chan input.KeyEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrInputClosed
			}
			m.HandleEvent(ev)
		}
	}
}

// HandleEvent applies one key transition. A press of a non-modifier key that
// completes a bound chord dispatches its command.
func (m *Manager) HandleEvent(ev input.KeyEvent) {
	code := keymap.FromEvdev(ev.Code)

	switch ev.State {
	case input.Released:
		m.state.RemoveKey(code)
		return
	case input.DeviceLost:
		// Releases from the lost device will never arrive.
		if held := m.state.Len(); held > 0 {
			slog.Info("[hotkeys] input device lost, releasing held keys", "device", ev.Device, "held", held)
		}
		m.Reset()
		return
	}

	key := Key{Code: code, Name: m.resolver.KeyName(code)}
	if err := m.state.AddKey(key); err != nil {
		slog.Warn("[hotkeys] pressed key dropped",
			"key", key.Name,
			"pressed", m.state.Len(),
			"error", err,
		)
		m.handler.OnKeyDropped(key)
		return
	}

	if m.classifier.IsModifier(key.Name) {
		return
	}

	chord, ok := m.state.Chord()
	if !ok {
		slog.Debug("[hotkeys] no chord", "pressed", len(m.state.Pressed()))
		return
	}
	m.handler.OnChord(chord)

	if m.bindings == nil || m.launcher == nil {
		return
	}
	command, ok := m.bindings.Lookup(chord)
	if !ok {
		slog.Debug("[hotkeys] unbound chord", "chord", chord)
		return
	}

	err := m.launcher.Dispatch(command)
	if err != nil {
		slog.Error("[hotkeys] dispatch failed", "chord", chord, "command", command, "error", err)
	} else {
		slog.Info("[hotkeys] dispatched", "chord", chord, "command", command)
	}
	m.handler.OnDispatch(chord, command, err)
}

// Pressed returns the currently held keys.
func (m *Manager) Pressed() []Key {
	return m.state.Pressed()
}

// Reset forgets every held key. It runs when an input device goes away.
func (m *Manager) Reset() {
	m.state.Reset()
}
