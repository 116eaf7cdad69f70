package chip8

// Timers contains the delay and sound timer. Both count down to zero at the rate that
// the host calls Tick with.
type Timers struct {
	Delay uint8
	Sound uint8
}

// tick decrements both nonzero timers and returns true when the sound timer expires.
func (t *Timers) tick() bool {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound == 0 {
		return false
	}
	t.Sound--
	return t.Sound == 0
}
