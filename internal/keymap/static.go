package keymap

import "github.com/holoplot/go-evdev"

// Static resolves keycodes with a built-in US QWERTY table. It is used when
// no X server is reachable (console, Wayland without Xwayland).
type Static struct{}

// KeyName implements Resolver.
func (Static) KeyName(code Keycode) string {
	return usLayout[evdev.EvCode(code.Evdev())].Name()
}

// Keysym returns the level-one keysym for code.
func (Static) Keysym(code Keycode) Keysym {
	return usLayout[evdev.EvCode(code.Evdev())]
}

var usLayout = map[evdev.EvCode]Keysym{
	evdev.KEY_ESC:        xkEscape,
	evdev.KEY_1:          '1',
	evdev.KEY_2:          '2',
	evdev.KEY_3:          '3',
	evdev.KEY_4:          '4',
	evdev.KEY_5:          '5',
	evdev.KEY_6:          '6',
	evdev.KEY_7:          '7',
	evdev.KEY_8:          '8',
	evdev.KEY_9:          '9',
	evdev.KEY_0:          '0',
	evdev.KEY_MINUS:      '-',
	evdev.KEY_EQUAL:      '=',
	evdev.KEY_BACKSPACE:  xkBackSpace,
	evdev.KEY_TAB:        xkTab,
	evdev.KEY_Q:          'q',
	evdev.KEY_W:          'w',
	evdev.KEY_E:          'e',
	evdev.KEY_R:          'r',
	evdev.KEY_T:          't',
	evdev.KEY_Y:          'y',
	evdev.KEY_U:          'u',
	evdev.KEY_I:          'i',
	evdev.KEY_O:          'o',
	evdev.KEY_P:          'p',
	evdev.KEY_LEFTBRACE:  '[',
	evdev.KEY_RIGHTBRACE: ']',
	evdev.KEY_ENTER:      xkReturn,
	evdev.KEY_LEFTCTRL:   xkControlL,
	evdev.KEY_A:          'a',
	evdev.KEY_S:          's',
	evdev.KEY_D:          'd',
	evdev.KEY_F:          'f',
	evdev.KEY_G:          'g',
	evdev.KEY_H:          'h',
	evdev.KEY_J:          'j',
	evdev.KEY_K:          'k',
	evdev.KEY_L:          'l',
	evdev.KEY_SEMICOLON:  ';',
	evdev.KEY_APOSTROPHE: '\'',
	evdev.KEY_GRAVE:      '`',
	evdev.KEY_LEFTSHIFT:  xkShiftL,
	evdev.KEY_BACKSLASH:  '\\',
	evdev.KEY_Z:          'z',
	evdev.KEY_X:          'x',
	evdev.KEY_C:          'c',
	evdev.KEY_V:          'v',
	evdev.KEY_B:          'b',
	evdev.KEY_N:          'n',
	evdev.KEY_M:          'm',
	evdev.KEY_COMMA:      ',',
	evdev.KEY_DOT:        '.',
	evdev.KEY_SLASH:      '/',
	evdev.KEY_RIGHTSHIFT: xkShiftR,
	evdev.KEY_KPASTERISK: xkKPMultiply,
	evdev.KEY_LEFTALT:    xkAltL,
	evdev.KEY_SPACE:      ' ',
	evdev.KEY_CAPSLOCK:   xkCapsLock,
	evdev.KEY_F1:         xkF1,
	evdev.KEY_F2:         xkF1 + 1,
	evdev.KEY_F3:         xkF1 + 2,
	evdev.KEY_F4:         xkF1 + 3,
	evdev.KEY_F5:         xkF1 + 4,
	evdev.KEY_F6:         xkF1 + 5,
	evdev.KEY_F7:         xkF1 + 6,
	evdev.KEY_F8:         xkF1 + 7,
	evdev.KEY_F9:         xkF1 + 8,
	evdev.KEY_F10:        xkF1 + 9,
	evdev.KEY_NUMLOCK:    xkNumLock,
	evdev.KEY_SCROLLLOCK: xkScrollLock,
	evdev.KEY_KP7:        xkKPHome,
	evdev.KEY_KP8:        xkKPUp,
	evdev.KEY_KP9:        xkKPPrior,
	evdev.KEY_KPMINUS:    xkKPSubtract,
	evdev.KEY_KP4:        xkKPLeft,
	evdev.KEY_KP5:        xkKPBegin,
	evdev.KEY_KP6:        xkKPRight,
	evdev.KEY_KPPLUS:     xkKPAdd,
	evdev.KEY_KP1:        xkKPEnd,
	evdev.KEY_KP2:        xkKPDown,
	evdev.KEY_KP3:        xkKPNext,
	evdev.KEY_KP0:        xkKPInsert,
	evdev.KEY_KPDOT:      xkKPDelete,
	evdev.KEY_102ND:      '<',
	evdev.KEY_F11:        xkF1 + 10,
	evdev.KEY_F12:        xkF1 + 11,
	evdev.KEY_KPENTER:    xkKPEnter,
	evdev.KEY_RIGHTCTRL:  xkControlR,
	evdev.KEY_KPSLASH:    xkKPDivide,
	evdev.KEY_SYSRQ:      xkPrint,
	evdev.KEY_RIGHTALT:   xkAltR,
	evdev.KEY_HOME:       xkHome,
	evdev.KEY_UP:         xkUp,
	evdev.KEY_PAGEUP:     xkPrior,
	evdev.KEY_LEFT:       xkLeft,
	evdev.KEY_RIGHT:      xkRight,
	evdev.KEY_END:        xkEnd,
	evdev.KEY_DOWN:       xkDown,
	evdev.KEY_PAGEDOWN:   xkNext,
	evdev.KEY_INSERT:     xkInsert,
	evdev.KEY_DELETE:     xkDelete,
	evdev.KEY_MUTE:       xf86AudioMute,
	evdev.KEY_VOLUMEDOWN: xf86AudioLowerVolume,
	evdev.KEY_VOLUMEUP:   xf86AudioRaiseVolume,
	evdev.KEY_PAUSE:      xkPause,
	evdev.KEY_LEFTMETA:   xkSuperL,
	evdev.KEY_RIGHTMETA:  xkSuperR,
	evdev.KEY_COMPOSE:    xkMenu,
	evdev.KEY_F13:        xkF1 + 12,
	evdev.KEY_F14:        xkF1 + 13,
	evdev.KEY_F15:        xkF1 + 14,
	evdev.KEY_F16:        xkF1 + 15,
	evdev.KEY_F17:        xkF1 + 16,
	evdev.KEY_F18:        xkF1 + 17,
	evdev.KEY_F19:        xkF1 + 18,
	evdev.KEY_F20:        xkF1 + 19,

	evdev.KEY_NEXTSONG:       xf86AudioNext,
	evdev.KEY_PLAYPAUSE:      xf86AudioPlay,
	evdev.KEY_PREVIOUSSONG:   xf86AudioPrev,
	evdev.KEY_STOPCD:         xf86AudioStop,
	evdev.KEY_BRIGHTNESSDOWN: xf86MonBrightnessDown,
	evdev.KEY_BRIGHTNESSUP:   xf86MonBrightnessUp,
}
