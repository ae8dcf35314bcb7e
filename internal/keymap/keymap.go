// Package keymap resolves hardware keycodes to keysym names such as
// "Control_L", "a" or "F5", the names used in clefrc chord specs.
package keymap

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// EvdevOffset is the fixed distance between kernel evdev codes and XKB/X11
// keycodes.
const EvdevOffset = 8

// Keycode is an XKB keycode (evdev code + EvdevOffset).
type Keycode uint32

// FromEvdev translates a kernel key code into an XKB keycode.
func FromEvdev(code uint16) Keycode {
	return Keycode(code) + EvdevOffset
}

// Evdev returns the kernel key code for k.
func (k Keycode) Evdev() uint16 {
	if k < EvdevOffset {
		return 0
	}
	return uint16(k - EvdevOffset)
}

// Resolver maps a keycode to the keysym name produced by the active layout.
type Resolver interface {
	KeyName(code Keycode) string
}

// Kind selects a Resolver implementation.
type Kind string

const (
	KindAuto   Kind = "auto"
	KindX11    Kind = "x11"
	KindStatic Kind = "static"
)

// ParseKind validates a resolver name from flags or settings.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAuto, nil
	case KindAuto, KindX11, KindStatic:
		return k, nil
	default:
		return KindAuto, fmt.Errorf("unknown keymap %q (want auto, x11 or static)", s)
	}
}

// New builds the resolver for kind. KindAuto uses the X server's keyboard
// mapping when DISPLAY is set and falls back to the built-in US table.
func New(kind Kind) (Resolver, error) {
	switch kind {
	case KindStatic:
		return Static{}, nil
	case KindX11:
		r, err := NewX11()
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		if os.Getenv("DISPLAY") == "" {
			slog.Debug("[keymap] DISPLAY not set, using built-in US layout")
			return Static{}, nil
		}
		r, err := NewX11()
		if err != nil {
			slog.Warn("[keymap] X11 keyboard mapping unavailable, using built-in US layout", "error", err)
			return Static{}, nil
		}
		return r, nil
	}
}
