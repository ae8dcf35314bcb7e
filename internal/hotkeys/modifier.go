package hotkeys

// ScrollLock is the keysym name whose modifier status is a policy choice.
const ScrollLock = "Scroll_Lock"

var modifierNames = map[string]struct{}{
	"Shift_L":    {},
	"Shift_R":    {},
	"Control_L":  {},
	"Control_R":  {},
	"Alt_L":      {},
	"Alt_R":      {},
	"Meta_L":     {},
	"Meta_R":     {},
	"Super_L":    {},
	"Super_R":    {},
	"Hyper_L":    {},
	"Hyper_R":    {},
	"Caps_Lock":  {},
	"Shift_Lock": {},
}

// Classifier decides whether a key name is a modifier. The zero value treats
// Scroll Lock as a regular (trigger) key.
type Classifier struct {
	ScrollLockIsModifier bool
}

// IsModifier reports whether name participates in chords as a modifier.
func (c Classifier) IsModifier(name string) bool {
	if name == ScrollLock {
		return c.ScrollLockIsModifier
	}
	_, ok := modifierNames[name]
	return ok
}

// IsModifier classifies name with the default policy.
func IsModifier(name string) bool {
	return Classifier{}.IsModifier(name)
}
