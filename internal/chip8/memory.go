package chip8

import "fmt"

// Memory is the flat byte addressable memory of the machine.
type Memory struct {
	data []byte
}

func newMemory(size int) *Memory {
	m := &Memory{
		data: make([]byte, size),
	}
	m.reset()
	return m
}

// reset clears the memory and installs the font glyphs.
func (m *Memory) reset() {
	clear(m.data)
	copy(m.data[FontAddress:], font[:])
}

// Size returns the capacity of the memory in bytes.
func (m *Memory) Size() int {
	return len(m.data)
}

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) (byte, error) {
	if int(address) >= len(m.data) {
		return 0, fmt.Errorf("%w: read $%04X", ErrMemoryOutOfBounds, address)
	}
	return m.data[address], nil
}

// Write sets the byte at the given address.
func (m *Memory) Write(address uint16, value byte) error {
	if int(address) >= len(m.data) {
		return fmt.Errorf("%w: write $%04X", ErrMemoryOutOfBounds, address)
	}
	m.data[address] = value
	return nil
}

// ReadWord returns the big-endian 16 bit word at the given address.
func (m *Memory) ReadWord(address uint16) (uint16, error) {
	if int(address)+1 >= len(m.data) {
		return 0, fmt.Errorf("%w: read word $%04X", ErrMemoryOutOfBounds, address)
	}
	return uint16(m.data[address])<<8 | uint16(m.data[address+1]), nil
}

// window returns the memory slice of length n starting at address. The returned
// slice aliases the memory.
func (m *Memory) window(address uint16, n int) ([]byte, error) {
	end := int(address) + n
	if end > len(m.data) {
		return nil, fmt.Errorf("%w: range $%04X-$%04X", ErrMemoryOutOfBounds, address, end-1)
	}
	return m.data[address:end], nil
}

// load copies the program image to ProgramStart.
func (m *Memory) load(program []byte) error {
	available := len(m.data) - ProgramStart
	if len(program) > available {
		return fmt.Errorf("%w: %d bytes, %d available", ErrProgramTooLarge, len(program), available)
	}
	copy(m.data[ProgramStart:], program)
	return nil
}
