// Package digest creates fingerprints of the rendered display output. The
// fingerprints are used to verify that a program produces the same output
// between runs.
package digest

import (
	"crypto/sha1"
	"fmt"

	"github.com/retroenv/retrochip8/internal/chip8"
)

// Screen chains a SHA-1 fingerprint over every rendered frame.
type Screen struct {
	digest [sha1.Size]byte
	pixels []byte
	frames int
}

// New returns a screen digest with an empty fingerprint.
func New() *Screen {
	return &Screen{}
}

func (s *Screen) String() string {
	return fmt.Sprintf("%x", s.digest)
}

// Frames returns the number of frames that were added to the fingerprint.
func (s *Screen) Frames() int {
	return s.frames
}

// Reset clears the fingerprint.
func (s *Screen) Reset() {
	s.digest = [sha1.Size]byte{}
	s.frames = 0
}

// Render adds the current display content to the fingerprint.
func (s *Screen) Render(display *chip8.Display) error {
	frame := display.Frame()

	// the previous fingerprint is the head of the hashed data
	s.pixels = append(s.pixels[:0], s.digest[:]...)
	s.pixels = append(s.pixels, frame...)
	s.digest = sha1.Sum(s.pixels)
	s.frames++
	return nil
}

// Frame returns the fingerprint of a single display frame.
func Frame(display *chip8.Display) string {
	return fmt.Sprintf("%x", sha1.Sum(display.Frame()))
}
