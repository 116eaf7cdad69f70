// Package terminal implements an interactive text terminal frontend. Keys are read
// from stdin in raw mode and the display is drawn using ANSI escape sequences.
package terminal

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrogolib/set"
	"golang.org/x/term"
)

// DefaultDecay is the time a key stays held after the terminal reported it.
// Terminals do not report key releases, only repeated key presses.
const DefaultDecay = 150 * time.Millisecond

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

// Input converts bytes read from a raw mode terminal to held keypad keys.
type Input struct {
	quit  func()
	decay time.Duration
	now   func() time.Time

	mu   sync.Mutex
	held [chip8.KeyCount]time.Time // release deadline per key

	fd           int
	oldTermState *term.State
}

// NewInput returns a new terminal input. quit is called when the user presses
// Ctrl+C or Escape, as raw mode disables the interrupt signal.
func NewInput(quit func()) *Input {
	return &Input{
		quit:  quit,
		decay: DefaultDecay,
		now:   time.Now,
		fd:    int(os.Stdin.Fd()),
	}
}

// IsTerminal returns whether the file is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Start puts stdin into raw mode and begins reading keys in a goroutine.
// Call Stop to restore the terminal state.
func (in *Input) Start() error {
	oldState, err := term.MakeRaw(in.fd)
	if err != nil {
		return fmt.Errorf("setting raw mode: %w", err)
	}
	in.oldTermState = oldState

	go func() {
		buf := make([]byte, 16)
		for {
			n, err := os.Stdin.Read(buf)
			for _, b := range buf[:n] {
				in.HandleByte(b)
			}
			if err != nil {
				return
			}
		}
	}()
	return nil
}

// Stop restores the terminal state. The reading goroutine ends with the process
// as a blocking read on stdin can not be interrupted.
func (in *Input) Stop() {
	if in.oldTermState != nil {
		_ = term.Restore(in.fd, in.oldTermState)
		in.oldTermState = nil
	}
}

// HandleByte processes a single byte received from the terminal.
func (in *Input) HandleByte(b byte) {
	if b == keyCtrlC || b == keyEscape {
		if in.quit != nil {
			in.quit()
		}
		return
	}

	key, ok := keypad.KeyForRune(rune(b))
	if !ok {
		return
	}

	in.mu.Lock()
	in.held[key] = in.now().Add(in.decay)
	in.mu.Unlock()
}

// Pressed returns the set of keys that are currently held.
func (in *Input) Pressed() set.Set[uint8] {
	pressed := set.New[uint8]()
	now := in.now()

	in.mu.Lock()
	defer in.mu.Unlock()

	for key, deadline := range in.held {
		if now.Before(deadline) {
			pressed.Add(uint8(key))
		}
	}
	return pressed
}
