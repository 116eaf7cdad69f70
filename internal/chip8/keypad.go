package chip8

// Keypad is the key state query supplied by the host.
type Keypad interface {
	// IsPressed returns whether the key is currently held down.
	IsPressed(key uint8) bool
	// NextPress returns a key that transitioned to pressed since the last call.
	NextPress() (uint8, bool)
}

// noKeypad is used when the host does not supply a keypad.
type noKeypad struct{}

func (noKeypad) IsPressed(uint8) bool     { return false }
func (noKeypad) NextPress() (uint8, bool) { return 0, false }
