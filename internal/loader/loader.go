// Package loader handles program image file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
)

// Loader handles loading program image files from disk.
type Loader struct{}

// New creates a new program loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a raw program image file. The image can not be larger than
// maxSize bytes, which is the memory available after chip8.ProgramStart.
func (l *Loader) Load(path string, maxSize int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, int64(maxSize)+1))
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, errors.New("program file is empty")
	}
	if len(data) > maxSize {
		return nil, fmt.Errorf("%w: file %s exceeds %d bytes", chip8.ErrProgramTooLarge, path, maxSize)
	}
	return data, nil
}
