package keymap

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestFromEvdev(t *testing.T) {
	if got := FromEvdev(29); got != 37 {
		t.Errorf("FromEvdev(29) = %d, want 37", got)
	}
	if got := Keycode(37).Evdev(); got != 29 {
		t.Errorf("Keycode(37).Evdev() = %d, want 29", got)
	}
	if got := Keycode(3).Evdev(); got != 0 {
		t.Errorf("Keycode(3).Evdev() = %d, want 0", got)
	}
}

func TestStatic_KeyName(t *testing.T) {
	tests := []struct {
		evdev uint16
		want  string
	}{
		{29, "Control_L"},
		{42, "Shift_L"},
		{56, "Alt_L"},
		{125, "Super_L"},
		{58, "Caps_Lock"},
		{70, "Scroll_Lock"},
		{30, "a"},
		{45, "x"},
		{17, "w"},
		{2, "1"},
		{63, "F5"},
		{88, "F12"},
		{28, "Return"},
		{57, "space"},
		{52, "period"},
		{113, "XF86AudioMute"},
		{0x2ff, "NoSymbol"},
	}

	for _, tt := range tests {
		if got := (Static{}).KeyName(FromEvdev(tt.evdev)); got != tt.want {
			t.Errorf("KeyName(evdev %d) = %q, want %q", tt.evdev, got, tt.want)
		}
	}
}

func TestKeysym_Name(t *testing.T) {
	tests := []struct {
		sym  Keysym
		want string
	}{
		{'a', "a"},
		{'Q', "Q"},
		{'7', "7"},
		{'+', "plus"},
		{xkF1, "F1"},
		{xkF1 + 34, "F35"},
		{xkKP0 + 5, "KP_5"},
		{xkHyperR, "Hyper_R"},
		{xkShiftLock, "Shift_Lock"},
		{NoSymbol, "NoSymbol"},
		{0x12345, "0x12345"},
	}

	for _, tt := range tests {
		if got := tt.sym.Name(); got != tt.want {
			t.Errorf("Keysym(%#x).Name() = %q, want %q", uint32(tt.sym), got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindAuto, false},
		{"auto", KindAuto, false},
		{"X11", KindX11, false},
		{"static", KindStatic, false},
		{"wayland", KindAuto, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestNew_AutoWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	r, err := New(KindAuto)
	if err != nil {
		t.Fatalf("New(auto) error = %v", err)
	}
	if _, ok := r.(Static); !ok {
		t.Errorf("New(auto) without DISPLAY = %T, want Static", r)
	}
}

func TestKeyboardMappingChanged(t *testing.T) {
	tests := []struct {
		request byte
		want    bool
	}{
		{xproto.MappingKeyboard, true},
		{xproto.MappingModifier, false},
		{xproto.MappingPointer, false},
	}
	for _, tt := range tests {
		ev := xproto.MappingNotifyEvent{Request: tt.request, FirstKeycode: 8, Count: 248}
		if got := keyboardMappingChanged(ev); got != tt.want {
			t.Errorf("keyboardMappingChanged(request=%d) = %v, want %v", tt.request, got, tt.want)
		}
	}
}
