package chip8

import "strings"

// Display is the monochrome frame buffer. Every pixel is either 0 or 1.
type Display struct {
	width  int
	height int
	pixels []byte
	dirty  bool
}

func newDisplay(width, height int) *Display {
	return &Display{
		width:  width,
		height: height,
		pixels: make([]byte, width*height),
		dirty:  true,
	}
}

// Width returns the display width in pixels.
func (d *Display) Width() int {
	return d.width
}

// Height returns the display height in pixels.
func (d *Display) Height() int {
	return d.height
}

// Pixel returns whether the pixel at the given position is lit.
// Positions outside of the display are never lit.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return false
	}
	return d.pixels[y*d.width+x] != 0
}

// Frame returns a copy of the pixels in row-major order.
func (d *Display) Frame() []byte {
	frame := make([]byte, len(d.pixels))
	copy(frame, d.pixels)
	return frame
}

// Dirty returns whether the display changed since the last call to ClearDirty.
func (d *Display) Dirty() bool {
	return d.dirty
}

// ClearDirty marks the current content as presented.
func (d *Display) ClearDirty() {
	d.dirty = false
}

// Clear turns off all pixels.
func (d *Display) Clear() {
	clear(d.pixels)
	d.dirty = true
}

// Draw composites the sprite at the given position using XOR. Every sprite byte is
// one row of 8 pixels, most significant bit first. The start position and all sprite
// pixels wrap around the display edges. Draw returns whether any lit pixel was turned off.
func (d *Display) Draw(x, y uint8, sprite []byte) bool {
	originX := int(x) % d.width
	originY := int(y) % d.height
	collision := false

	for row, bits := range sprite {
		py := (originY + row) % d.height
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (originX + col) % d.width
			offset := py*d.width + px
			if d.pixels[offset] != 0 {
				collision = true
			}
			d.pixels[offset] ^= 1
		}
	}

	d.dirty = true
	return collision
}

func (d *Display) restore(pixels []byte) {
	for i, p := range pixels {
		d.pixels[i] = p & 1
	}
	d.dirty = true
}

// String renders the display as text, one line per pixel row.
func (d *Display) String() string {
	var sb strings.Builder
	sb.Grow((d.width + 1) * d.height)
	for y := range d.height {
		for x := range d.width {
			if d.pixels[y*d.width+x] != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
