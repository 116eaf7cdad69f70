package chip8

import "fmt"

// Memory layout constants.
const (
	// ProgramStart is the address that program images are loaded to and where execution starts.
	ProgramStart = 0x200

	// FontAddress is the address of the first built-in hexadecimal glyph.
	FontAddress = 0x000

	// DefaultMemorySize is the memory capacity of the COSMAC VIP.
	DefaultMemorySize = 0x1000

	// DefaultDisplayWidth and DefaultDisplayHeight are the display dimensions in pixels.
	DefaultDisplayWidth  = 64
	DefaultDisplayHeight = 32

	// RegisterCount is the number of general-purpose registers.
	RegisterCount = 16

	// FlagRegister is the index of VF.
	FlagRegister = 0xF

	// StackSize is the number of stack slots.
	StackSize = 16

	// KeyCount is the number of keys on the hexadecimal keypad.
	KeyCount = 16

	opcodeSize  = 2
	addressMask = 0x0FFF
	maxMemory   = 0x10000
)

// Config contains the construction time settings of a machine.
// It can not be changed after the machine was created.
type Config struct {
	DisplayWidth  int
	DisplayHeight int
	MemorySize    int

	Trace bool // log every executed instruction at debug level
}

// DefaultConfig returns the configuration of the COSMAC VIP.
func DefaultConfig() Config {
	return Config{
		DisplayWidth:  DefaultDisplayWidth,
		DisplayHeight: DefaultDisplayHeight,
		MemorySize:    DefaultMemorySize,
	}
}

// Validate checks that the configuration describes a usable machine.
func (c Config) Validate() error {
	if c.DisplayWidth <= 0 || c.DisplayHeight <= 0 {
		return fmt.Errorf("%w: display size %dx%d", ErrInvalidConfig, c.DisplayWidth, c.DisplayHeight)
	}
	if c.DisplayWidth > 0xFF+1 || c.DisplayHeight > 0xFF+1 {
		return fmt.Errorf("%w: display size %dx%d exceeds 256x256", ErrInvalidConfig, c.DisplayWidth, c.DisplayHeight)
	}
	if c.MemorySize < ProgramStart+opcodeSize || c.MemorySize > maxMemory {
		return fmt.Errorf("%w: memory size %d not in range %d-%d",
			ErrInvalidConfig, c.MemorySize, ProgramStart+opcodeSize, maxMemory)
	}
	return nil
}
