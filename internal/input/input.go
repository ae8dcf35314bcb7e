// Package input reads raw key press/release events from the kernel evdev
// interface.
package input

import (
	"context"
	"errors"
	"time"
)

// ErrNoKeyboards is returned when no readable keyboard device exists.
var ErrNoKeyboards = errors.New("no keyboard input devices found")

// KeyState is the direction of a key event.
type KeyState int

const (
	Released KeyState = iota
	Pressed
	// DeviceLost reports that Device went away; keys it held are released.
	DeviceLost
)

func (s KeyState) String() string {
	switch s {
	case Released:
		return "released"
	case Pressed:
		return "pressed"
	case DeviceLost:
		return "device lost"
	default:
		return "unknown"
	}
}

// KeyEvent is one key transition. Code is the kernel (evdev) key code, before
// any keymap offset is applied.
type KeyEvent struct {
	Code   uint16
	State  KeyState
	Time   time.Time
	Device string
}

// Source produces key events until ctx is cancelled. Cancelling ctx must
// unblock any pending read promptly and close the returned channel.
type Source interface {
	Events(ctx context.Context) (<-chan KeyEvent, error)
}

// ChannelSource forwards events from an existing channel, for callers that
// already have their own input layer.
type ChannelSource struct {
	C <-chan KeyEvent
}

// Events implements Source.
func (s ChannelSource) Events(ctx context.Context) (<-chan KeyEvent, error) {
	out := make(chan KeyEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-s.C:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
