// Package keypad provides the host side key state of the hexadecimal keypad.
package keypad

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/set"
)

// Compile-time check to ensure State implements chip8.Keypad.
var _ chip8.Keypad = (*State)(nil)

// State tracks the currently held keys and the keys that were pressed since the
// machine last asked for a key press.
type State struct {
	held    set.Set[uint8]
	pending []uint8
}

// New returns a key state with no keys held.
func New() *State {
	return &State{
		held: set.New[uint8](),
	}
}

// Update replaces the set of held keys. Keys that are held now but were not held
// before are recorded as presses. The set is owned by the state afterwards.
func (s *State) Update(pressed set.Set[uint8]) {
	if pressed == nil {
		pressed = set.New[uint8]()
	}
	for key := range uint8(chip8.KeyCount) {
		if pressed.Contains(key) && !s.held.Contains(key) {
			s.pending = append(s.pending, key)
		}
	}
	s.held = pressed
}

// IsPressed returns whether the key is currently held.
func (s *State) IsPressed(key uint8) bool {
	return s.held.Contains(key)
}

// NextPress returns the first key pressed since the last call and discards all
// other recorded presses.
func (s *State) NextPress() (uint8, bool) {
	if len(s.pending) == 0 {
		return 0, false
	}
	key := s.pending[0]
	s.pending = s.pending[:0]
	return key, true
}

// Parse parses a comma separated list of hexadecimal key values like "1,a,F".
func Parse(keys string) (set.Set[uint8], error) {
	result := set.New[uint8]()
	keys = strings.TrimSpace(keys)
	if keys == "" {
		return result, nil
	}

	for _, field := range strings.Split(keys, ",") {
		field = strings.TrimSpace(field)
		value, err := strconv.ParseUint(field, 16, 8)
		if err != nil || value >= chip8.KeyCount {
			return nil, fmt.Errorf("invalid key '%s', expected hexadecimal value 0-F", field)
		}
		result.Add(uint8(value))
	}
	return result, nil
}

// Static is a key source that always reports the same held keys.
type Static struct {
	keys set.Set[uint8]
}

// NewStatic returns a key source for the given held keys.
func NewStatic(keys set.Set[uint8]) Static {
	if keys == nil {
		keys = set.New[uint8]()
	}
	return Static{keys: keys}
}

// Pressed returns the held keys.
func (s Static) Pressed() set.Set[uint8] {
	return s.keys
}
