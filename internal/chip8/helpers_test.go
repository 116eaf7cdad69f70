package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// testKeypad reports a fixed set of held keys and queued presses.
type testKeypad struct {
	held    [KeyCount]bool
	presses []uint8
}

func (k *testKeypad) IsPressed(key uint8) bool {
	return int(key) < KeyCount && k.held[key]
}

func (k *testKeypad) NextPress() (uint8, bool) {
	if len(k.presses) == 0 {
		return 0, false
	}
	key := k.presses[0]
	k.presses = k.presses[1:]
	return key, true
}

// sequenceRandom returns the given bytes in a loop.
type sequenceRandom struct {
	values []byte
	next   int
}

func (r *sequenceRandom) Byte() byte {
	b := r.values[r.next%len(r.values)]
	r.next++
	return b
}

func newTestMachine(t *testing.T, options ...Option) *Machine {
	t.Helper()
	m, err := New(log.NewTestLogger(t), DefaultConfig(), options...)
	assert.NoError(t, err)
	return m
}

// newHaltingMachine returns a machine for tests that halt it. Halting logs at
// error level which fails tests that use the test logger.
func newHaltingMachine(t *testing.T, config Config, options ...Option) *Machine {
	t.Helper()
	m, err := New(log.NewNop(), config, options...)
	assert.NoError(t, err)
	return m
}

func loadProgram(t *testing.T, m *Machine, opcodes ...uint16) {
	t.Helper()
	program := make([]byte, 0, len(opcodes)*opcodeSize)
	for _, opcode := range opcodes {
		program = append(program, byte(opcode>>8), byte(opcode))
	}
	assert.NoError(t, m.Load(program))
}

// executeOpcode writes the opcode at the program counter and steps once.
func executeOpcode(t *testing.T, m *Machine, opcode uint16) error {
	t.Helper()
	assert.NoError(t, m.memory.Write(m.pc, byte(opcode>>8)))
	assert.NoError(t, m.memory.Write(m.pc+1, byte(opcode)))
	return m.Step()
}

func stepN(t *testing.T, m *Machine, n int) {
	t.Helper()
	for range n {
		assert.NoError(t, m.Step())
	}
}
