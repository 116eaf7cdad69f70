package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
)

const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	bell        = "\a"
)

var pixelReplacer = strings.NewReplacer("#", "█", ".", " ")

// Screen draws the display to a terminal.
type Screen struct {
	w       io.Writer
	cleared bool
}

// NewScreen returns a screen that writes to the given terminal writer.
func NewScreen(w io.Writer) *Screen {
	return &Screen{w: w}
}

// Render redraws the complete display. Rows end with CR LF as output
// post processing is disabled in raw mode.
func (s *Screen) Render(display *chip8.Display) error {
	buf := &strings.Builder{}
	if !s.cleared {
		buf.WriteString(clearScreen)
		s.cleared = true
	}
	buf.WriteString(cursorHome)

	rows := strings.Split(strings.TrimSuffix(display.String(), "\n"), "\n")
	for _, row := range rows {
		buf.WriteString(pixelReplacer.Replace(row))
		buf.WriteString("\r\n")
	}

	if _, err := io.WriteString(s.w, buf.String()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// Beep rings the terminal bell.
func (s *Screen) Beep() {
	_, _ = io.WriteString(s.w, bell)
}
