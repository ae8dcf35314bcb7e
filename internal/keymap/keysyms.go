package keymap

import "fmt"

// Keysym is an X11 keysym value.
type Keysym uint32

// NoSymbol is the keysym of a key with no binding at the queried level.
const NoSymbol Keysym = 0

const (
	xkBackSpace   Keysym = 0xff08
	xkTab         Keysym = 0xff09
	xkReturn      Keysym = 0xff0d
	xkPause       Keysym = 0xff13
	xkScrollLock  Keysym = 0xff14
	xkSysReq      Keysym = 0xff15
	xkEscape      Keysym = 0xff1b
	xkHome        Keysym = 0xff50
	xkLeft        Keysym = 0xff51
	xkUp          Keysym = 0xff52
	xkRight       Keysym = 0xff53
	xkDown        Keysym = 0xff54
	xkPrior       Keysym = 0xff55
	xkNext        Keysym = 0xff56
	xkEnd         Keysym = 0xff57
	xkPrint       Keysym = 0xff61
	xkInsert      Keysym = 0xff63
	xkMenu        Keysym = 0xff67
	xkNumLock     Keysym = 0xff7f
	xkKPEnter     Keysym = 0xff8d
	xkKPHome      Keysym = 0xff95
	xkKPLeft      Keysym = 0xff96
	xkKPUp        Keysym = 0xff97
	xkKPRight     Keysym = 0xff98
	xkKPDown      Keysym = 0xff99
	xkKPPrior     Keysym = 0xff9a
	xkKPNext      Keysym = 0xff9b
	xkKPEnd       Keysym = 0xff9c
	xkKPBegin     Keysym = 0xff9d
	xkKPInsert    Keysym = 0xff9e
	xkKPDelete    Keysym = 0xff9f
	xkKPMultiply  Keysym = 0xffaa
	xkKPAdd       Keysym = 0xffab
	xkKPSubtract  Keysym = 0xffad
	xkKPDecimal   Keysym = 0xffae
	xkKPDivide    Keysym = 0xffaf
	xkKP0         Keysym = 0xffb0
	xkF1          Keysym = 0xffbe
	xkShiftL      Keysym = 0xffe1
	xkShiftR      Keysym = 0xffe2
	xkControlL    Keysym = 0xffe3
	xkControlR    Keysym = 0xffe4
	xkCapsLock    Keysym = 0xffe5
	xkShiftLock   Keysym = 0xffe6
	xkMetaL       Keysym = 0xffe7
	xkMetaR       Keysym = 0xffe8
	xkAltL        Keysym = 0xffe9
	xkAltR        Keysym = 0xffea
	xkSuperL      Keysym = 0xffeb
	xkSuperR      Keysym = 0xffec
	xkHyperL      Keysym = 0xffed
	xkHyperR      Keysym = 0xffee
	xkDelete      Keysym = 0xffff
	xkLevel3Shift Keysym = 0xfe03

	xf86MonBrightnessUp   Keysym = 0x1008ff02
	xf86MonBrightnessDown Keysym = 0x1008ff03
	xf86AudioLowerVolume  Keysym = 0x1008ff11
	xf86AudioMute         Keysym = 0x1008ff12
	xf86AudioRaiseVolume  Keysym = 0x1008ff13
	xf86AudioPlay         Keysym = 0x1008ff14
	xf86AudioStop         Keysym = 0x1008ff15
	xf86AudioPrev         Keysym = 0x1008ff16
	xf86AudioNext         Keysym = 0x1008ff17
)

// latin1Names covers the printable ASCII keysyms 0x20..0x7e; letters and
// digits are their own names.
var latin1Names = map[Keysym]string{
	0x20: "space", 0x21: "exclam", 0x22: "quotedbl", 0x23: "numbersign",
	0x24: "dollar", 0x25: "percent", 0x26: "ampersand", 0x27: "apostrophe",
	0x28: "parenleft", 0x29: "parenright", 0x2a: "asterisk", 0x2b: "plus",
	0x2c: "comma", 0x2d: "minus", 0x2e: "period", 0x2f: "slash",
	0x3a: "colon", 0x3b: "semicolon", 0x3c: "less", 0x3d: "equal",
	0x3e: "greater", 0x3f: "question", 0x40: "at",
	0x5b: "bracketleft", 0x5c: "backslash", 0x5d: "bracketright",
	0x5e: "asciicircum", 0x5f: "underscore", 0x60: "grave",
	0x7b: "braceleft", 0x7c: "bar", 0x7d: "braceright", 0x7e: "asciitilde",
}

var specialNames = map[Keysym]string{
	xkBackSpace:   "BackSpace",
	xkTab:         "Tab",
	xkReturn:      "Return",
	xkPause:       "Pause",
	xkScrollLock:  "Scroll_Lock",
	xkSysReq:      "Sys_Req",
	xkEscape:      "Escape",
	xkHome:        "Home",
	xkLeft:        "Left",
	xkUp:          "Up",
	xkRight:       "Right",
	xkDown:        "Down",
	xkPrior:       "Prior",
	xkNext:        "Next",
	xkEnd:         "End",
	xkPrint:       "Print",
	xkInsert:      "Insert",
	xkMenu:        "Menu",
	xkNumLock:     "Num_Lock",
	xkKPEnter:     "KP_Enter",
	xkKPHome:      "KP_Home",
	xkKPLeft:      "KP_Left",
	xkKPUp:        "KP_Up",
	xkKPRight:     "KP_Right",
	xkKPDown:      "KP_Down",
	xkKPPrior:     "KP_Prior",
	xkKPNext:      "KP_Next",
	xkKPEnd:       "KP_End",
	xkKPBegin:     "KP_Begin",
	xkKPInsert:    "KP_Insert",
	xkKPDelete:    "KP_Delete",
	xkKPMultiply:  "KP_Multiply",
	xkKPAdd:       "KP_Add",
	xkKPSubtract:  "KP_Subtract",
	xkKPDecimal:   "KP_Decimal",
	xkKPDivide:    "KP_Divide",
	xkShiftL:      "Shift_L",
	xkShiftR:      "Shift_R",
	xkControlL:    "Control_L",
	xkControlR:    "Control_R",
	xkCapsLock:    "Caps_Lock",
	xkShiftLock:   "Shift_Lock",
	xkMetaL:       "Meta_L",
	xkMetaR:       "Meta_R",
	xkAltL:        "Alt_L",
	xkAltR:        "Alt_R",
	xkSuperL:      "Super_L",
	xkSuperR:      "Super_R",
	xkHyperL:      "Hyper_L",
	xkHyperR:      "Hyper_R",
	xkDelete:      "Delete",
	xkLevel3Shift: "ISO_Level3_Shift",

	xf86MonBrightnessUp:   "XF86MonBrightnessUp",
	xf86MonBrightnessDown: "XF86MonBrightnessDown",
	xf86AudioLowerVolume:  "XF86AudioLowerVolume",
	xf86AudioMute:         "XF86AudioMute",
	xf86AudioRaiseVolume:  "XF86AudioRaiseVolume",
	xf86AudioPlay:         "XF86AudioPlay",
	xf86AudioStop:         "XF86AudioStop",
	xf86AudioPrev:         "XF86AudioPrev",
	xf86AudioNext:         "XF86AudioNext",
}

// Name returns the keysym name for sym, or its hex value when unknown.
func (sym Keysym) Name() string {
	switch {
	case sym == NoSymbol:
		return "NoSymbol"
	case sym >= '0' && sym <= '9', sym >= 'A' && sym <= 'Z', sym >= 'a' && sym <= 'z':
		return string(rune(sym))
	case sym >= xkKP0 && sym <= xkKP0+9:
		return fmt.Sprintf("KP_%d", sym-xkKP0)
	case sym >= xkF1 && sym < xkF1+35:
		return fmt.Sprintf("F%d", sym-xkF1+1)
	}
	if name, ok := latin1Names[sym]; ok {
		return name
	}
	if name, ok := specialNames[sym]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", uint32(sym))
}
