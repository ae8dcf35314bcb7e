package keymap

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// X11 resolves keycodes through the X server's current keyboard mapping, so
// names follow the active layout. Keycodes without a level-one keysym fall
// back to the Static table.
type X11 struct {
	conn *xgb.Conn

	mu         sync.RWMutex
	minKeycode Keycode
	perKeycode int
	keysyms    []xproto.Keysym
}

// NewX11 connects to $DISPLAY and loads the keyboard mapping. The mapping is
// reloaded whenever the server announces a keyboard mapping change.
func NewX11() (*X11, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}

	r := &X11{conn: conn}
	if err := r.Refresh(); err != nil {
		conn.Close()
		return nil, err
	}
	go r.watchMapping()
	return r, nil
}

// watchMapping serves X events until the connection closes. The server sends
// MappingNotify to every client, so no event mask is needed.
func (r *X11) watchMapping() {
	for {
		ev, xerr := r.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return
		}
		if xerr != nil {
			slog.Debug("[keymap] X error", "error", xerr)
			continue
		}
		notify, ok := ev.(xproto.MappingNotifyEvent)
		if !ok || !keyboardMappingChanged(notify) {
			continue
		}
		if err := r.Refresh(); err != nil {
			slog.Warn("[keymap] keeping previous keyboard mapping", "error", err)
			continue
		}
		slog.Info("[keymap] keyboard mapping reloaded")
	}
}

func keyboardMappingChanged(ev xproto.MappingNotifyEvent) bool {
	return ev.Request == xproto.MappingKeyboard
}

// Refresh reloads the keyboard mapping, picking up layout changes.
func (r *X11) Refresh() error {
	setup := xproto.Setup(r.conn)
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)

	reply, err := xproto.GetKeyboardMapping(r.conn, setup.MinKeycode, count).Reply()
	if err != nil {
		return fmt.Errorf("get keyboard mapping: %w", err)
	}
	if reply.KeysymsPerKeycode == 0 {
		return fmt.Errorf("get keyboard mapping: server returned no keysyms")
	}

	r.mu.Lock()
	r.minKeycode = Keycode(setup.MinKeycode)
	r.perKeycode = int(reply.KeysymsPerKeycode)
	r.keysyms = reply.Keysyms
	r.mu.Unlock()
	return nil
}

// Keysym returns the level-one keysym for code.
func (r *X11) Keysym(code Keycode) Keysym {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if code < r.minKeycode {
		return NoSymbol
	}
	idx := int(code-r.minKeycode) * r.perKeycode
	if idx >= len(r.keysyms) {
		return NoSymbol
	}
	return Keysym(r.keysyms[idx])
}

// KeyName implements Resolver.
func (r *X11) KeyName(code Keycode) string {
	if sym := r.Keysym(code); sym != NoSymbol {
		return sym.Name()
	}
	return Static{}.KeyName(code)
}

// Close disconnects from the X server.
func (r *X11) Close() {
	r.conn.Close()
}
