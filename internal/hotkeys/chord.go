package hotkeys

import (
	"errors"
	"sort"
	"strings"

	"github.com/clef-project/clef/internal/keymap"
)

// MaxPressedKeys bounds the pressed-key set. A physical keyboard cannot hold
// more than about a dozen keys, so anything past this is a stuck key or lost
// release events.
const MaxPressedKeys = 16

// ErrCapacityExceeded is returned by AddKey when the pressed set is full.
var ErrCapacityExceeded = errors.New("maximum number of pressed keys exceeded")

// Key is a pressed key: its translated keycode and resolved keysym name.
type Key struct {
	Code keymap.Keycode
	Name string
}

// ChordState tracks currently pressed keys. It is owned by the event loop
// and is not safe for concurrent use.
type ChordState struct {
	classifier Classifier
	pressed    map[keymap.Keycode]string
}

// NewChordState creates an empty ChordState using classifier to split
// modifiers from trigger keys.
func NewChordState(classifier Classifier) *ChordState {
	return &ChordState{
		classifier: classifier,
		pressed:    make(map[keymap.Keycode]string, MaxPressedKeys),
	}
}

// AddKey marks key as pressed. Pressing an already pressed key is a no-op.
// When the set is full the key is dropped and ErrCapacityExceeded returned.
func (s *ChordState) AddKey(key Key) error {
	if _, ok := s.pressed[key.Code]; ok {
		return nil
	}
	if len(s.pressed) >= MaxPressedKeys {
		return ErrCapacityExceeded
	}
	s.pressed[key.Code] = key.Name
	return nil
}

// RemoveKey marks code as released. Unknown codes are ignored.
func (s *ChordState) RemoveKey(code keymap.Keycode) {
	delete(s.pressed, code)
}

// Len returns the number of pressed keys.
func (s *ChordState) Len() int {
	return len(s.pressed)
}

// Reset releases every key.
func (s *ChordState) Reset() {
	clear(s.pressed)
}

// Pressed returns the pressed keys ordered by keycode.
func (s *ChordState) Pressed() []Key {
	keys := make([]Key, 0, len(s.pressed))
	for code, name := range s.pressed {
		keys = append(keys, Key{Code: code, Name: name})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Code < keys[j].Code })
	return keys
}

// Chord derives the canonical chord string: sorted modifier names followed by
// the single trigger key, space separated. It reports false unless exactly one
// non-modifier key is pressed.
func (s *ChordState) Chord() (string, bool) {
	modifiers := make([]string, 0, len(s.pressed))
	var trigger string
	triggers := 0

	for _, name := range s.pressed {
		if s.classifier.IsModifier(name) {
			modifiers = append(modifiers, name)
			continue
		}
		trigger = name
		triggers++
	}

	if triggers != 1 {
		return "", false
	}

	sort.Strings(modifiers)
	return strings.Join(append(modifiers, trigger), " "), true
}
