package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestNew(t *testing.T) {
	m := newTestMachine(t)

	assert.Equal(t, uint16(ProgramStart), m.PC())
	assert.Equal(t, uint16(0), m.Index())
	assert.Equal(t, uint8(0), m.StackPointer())
	assert.Equal(t, [RegisterCount]uint8{}, m.Registers())
	assert.Equal(t, DefaultMemorySize, m.Memory().Size())
	assert.Equal(t, DefaultDisplayWidth, m.Display().Width())
	assert.Equal(t, DefaultDisplayHeight, m.Display().Height())
	assert.NoError(t, m.Fault())

	mode, _ := m.Mode()
	assert.Equal(t, ModeRunning, mode)

	// glyph 0 is installed at the font address
	b, err := m.Memory().Read(FontAddress)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xF0), b)
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"zero width", Config{DisplayWidth: 0, DisplayHeight: 32, MemorySize: DefaultMemorySize}},
		{"zero height", Config{DisplayWidth: 64, DisplayHeight: 0, MemorySize: DefaultMemorySize}},
		{"too wide", Config{DisplayWidth: 512, DisplayHeight: 32, MemorySize: DefaultMemorySize}},
		{"memory too small", Config{DisplayWidth: 64, DisplayHeight: 32, MemorySize: ProgramStart}},
		{"memory too large", Config{DisplayWidth: 64, DisplayHeight: 32, MemorySize: 0x10001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(log.NewTestLogger(t), tt.config)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestLoad(t *testing.T) {
	m := newTestMachine(t)

	program := make([]byte, DefaultMemorySize-ProgramStart)
	program[0] = 0x12
	program[len(program)-1] = 0x34
	assert.NoError(t, m.Load(program))

	b, err := m.Memory().Read(ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x12), b)
	b, err = m.Memory().Read(DefaultMemorySize - 1)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x34), b)

	err = m.Load(make([]byte, DefaultMemorySize-ProgramStart+1))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrProgramTooLarge))
}

func TestLoadByte(t *testing.T) {
	m := newTestMachine(t)
	loadProgram(t, m, 0x6A3C)

	assert.NoError(t, m.Step())

	expected := [RegisterCount]uint8{}
	expected[0xA] = 0x3C
	assert.Equal(t, expected, m.Registers())
	assert.Equal(t, uint16(ProgramStart+2), m.PC())
}

func TestAddByte(t *testing.T) {
	m := newTestMachine(t)
	m.registers[FlagRegister] = 0x55
	m.registers[1] = 0xF0

	assert.NoError(t, executeOpcode(t, m, 0x7120))
	assert.Equal(t, uint8(0x10), m.Register(1))
	assert.Equal(t, uint8(0x55), m.Register(FlagRegister))
}

func TestAddRegisters(t *testing.T) {
	m := newTestMachine(t)

	for a := range 256 {
		for b := range 256 {
			m.pc = ProgramStart
			m.registers[1] = uint8(a)
			m.registers[2] = uint8(b)
			assert.NoError(t, executeOpcode(t, m, 0x8124))

			assert.Equal(t, uint8((a+b)%256), m.Register(1))
			var carry uint8
			if a+b >= 256 {
				carry = 1
			}
			assert.Equal(t, carry, m.Register(FlagRegister))
		}
	}
}

func TestSubRegisters(t *testing.T) {
	m := newTestMachine(t)

	for a := range 256 {
		for b := range 256 {
			m.pc = ProgramStart
			m.registers[1] = uint8(a)
			m.registers[2] = uint8(b)
			assert.NoError(t, executeOpcode(t, m, 0x8125))

			assert.Equal(t, uint8((a-b+256)%256), m.Register(1))
			var notBorrow uint8
			if a >= b {
				notBorrow = 1
			}
			assert.Equal(t, notBorrow, m.Register(FlagRegister))
		}
	}
}

func TestSubnRegisters(t *testing.T) {
	m := newTestMachine(t)

	for a := range 256 {
		for b := range 256 {
			m.pc = ProgramStart
			m.registers[1] = uint8(a)
			m.registers[2] = uint8(b)
			assert.NoError(t, executeOpcode(t, m, 0x8127))

			assert.Equal(t, uint8((b-a+256)%256), m.Register(1))
			var notBorrow uint8
			if b >= a {
				notBorrow = 1
			}
			assert.Equal(t, notBorrow, m.Register(FlagRegister))
		}
	}
}

func TestShifts(t *testing.T) {
	m := newTestMachine(t)

	for v := range 256 {
		m.pc = ProgramStart
		m.registers[3] = uint8(v)
		assert.NoError(t, executeOpcode(t, m, 0x8306))
		assert.Equal(t, uint8(v>>1), m.Register(3))
		assert.Equal(t, uint8(v&1), m.Register(FlagRegister))

		m.pc = ProgramStart
		m.registers[3] = uint8(v)
		assert.NoError(t, executeOpcode(t, m, 0x830E))
		assert.Equal(t, uint8((v<<1)%256), m.Register(3))
		assert.Equal(t, uint8(v>>7), m.Register(FlagRegister))
	}
}

func TestFlagRegisterDestination(t *testing.T) {
	m := newTestMachine(t)
	m.registers[FlagRegister] = 0xFF
	m.registers[1] = 0x01

	// the carry overwrites the sum when VF is the destination
	assert.NoError(t, executeOpcode(t, m, 0x8F14))
	assert.Equal(t, uint8(1), m.Register(FlagRegister))
}

func TestLogicOperations(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		expected uint8
	}{
		{"ld", 0x8120, 0x0F},
		{"or", 0x8121, 0x3F},
		{"and", 0x8122, 0x0C},
		{"xor", 0x8123, 0x33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			m.registers[1] = 0x3C
			m.registers[2] = 0x0F
			m.registers[FlagRegister] = 0x42

			assert.NoError(t, executeOpcode(t, m, tt.opcode))
			assert.Equal(t, tt.expected, m.Register(1))
			assert.Equal(t, uint8(0x42), m.Register(FlagRegister))
		})
	}
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		skip   bool
	}{
		{"se byte equal", 0x3105, true},
		{"se byte not equal", 0x3106, false},
		{"sne byte equal", 0x4105, false},
		{"sne byte not equal", 0x4106, true},
		{"se reg equal", 0x5120, true},
		{"se reg not equal", 0x5130, false},
		{"sne reg equal", 0x9120, false},
		{"sne reg not equal", 0x9130, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			m.registers[1] = 5
			m.registers[2] = 5
			m.registers[3] = 6

			assert.NoError(t, executeOpcode(t, m, tt.opcode))
			expected := uint16(ProgramStart + 2)
			if tt.skip {
				expected += 2
			}
			assert.Equal(t, expected, m.PC())
		})
	}
}

func TestJumps(t *testing.T) {
	m := newTestMachine(t)
	assert.NoError(t, executeOpcode(t, m, 0x12E4))
	assert.Equal(t, uint16(0x2E4), m.PC())

	m = newTestMachine(t)
	m.registers[0] = 5
	assert.NoError(t, executeOpcode(t, m, 0xB300))
	assert.Equal(t, uint16(0x305), m.PC())
}

func TestCallReturn(t *testing.T) {
	m := newTestMachine(t)
	loadProgram(t, m,
		0x2206, // 0x200: call $206
		0x6101, // 0x202: ld V1, $01
		0x1204, // 0x204: jp $204
		0x00EE, // 0x206: ret
	)

	assert.NoError(t, m.Step())
	assert.Equal(t, uint16(0x206), m.PC())
	assert.Equal(t, uint8(1), m.StackPointer())

	assert.NoError(t, m.Step())
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, uint8(0), m.StackPointer())

	assert.NoError(t, m.Step())
	assert.Equal(t, uint8(1), m.Register(1))
}

func TestReturnWithEmptyStack(t *testing.T) {
	m := newHaltingMachine(t, DefaultConfig())
	loadProgram(t, m, 0x00EE)

	err := m.Step()
	assert.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.True(t, errors.Is(err, ErrStackUnderflow))

	var fault *FaultError
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, FaultStack, fault.Kind)
	assert.Equal(t, uint16(ProgramStart), fault.Address)
	assert.Equal(t, uint16(0x00EE), fault.Opcode)

	// the machine stays halted
	assert.Equal(t, uint16(ProgramStart), m.PC())
	assert.Equal(t, err, m.Step())
	assert.Equal(t, err, m.Fault())
}

func TestCallStackOverflow(t *testing.T) {
	m := newHaltingMachine(t, DefaultConfig())
	loadProgram(t, m, 0x2200) // recursive call to itself

	stepN(t, m, StackSize-1)
	assert.Equal(t, uint8(StackSize-1), m.StackPointer())

	err := m.Step()
	assert.True(t, IsFatal(err))
	assert.True(t, errors.Is(err, ErrStackOverflow))
}

func TestIndexOperations(t *testing.T) {
	m := newTestMachine(t)

	assert.NoError(t, executeOpcode(t, m, 0xAFFE))
	assert.Equal(t, uint16(0xFFE), m.Index())

	m.registers[2] = 0x05
	assert.NoError(t, executeOpcode(t, m, 0xF21E))
	assert.Equal(t, uint16(0x003), m.Index())

	m.registers[4] = 0x0B
	assert.NoError(t, executeOpcode(t, m, 0xF429))
	assert.Equal(t, uint16(FontAddress+0x0B*5), m.Index())

	// only the low nibble selects the glyph
	m.registers[4] = 0x1B
	assert.NoError(t, executeOpcode(t, m, 0xF429))
	assert.Equal(t, uint16(FontAddress+0x0B*5), m.Index())
}

func TestBCD(t *testing.T) {
	m := newTestMachine(t)
	m.index = 0x300
	m.registers[5] = 234

	assert.NoError(t, executeOpcode(t, m, 0xF533))

	for i, expected := range []byte{2, 3, 4} {
		b, err := m.Memory().Read(0x300 + uint16(i))
		assert.NoError(t, err)
		assert.Equal(t, expected, b)
	}
	assert.Equal(t, uint16(0x300), m.Index())
}

func TestBCDOutOfBounds(t *testing.T) {
	m := newHaltingMachine(t, DefaultConfig())
	m.index = 0xFFE
	m.registers[5] = 234

	err := executeOpcode(t, m, 0xF533)
	assert.True(t, IsFatal(err))
	assert.True(t, errors.Is(err, ErrMemoryOutOfBounds))

	// nothing was written
	b, err := m.Memory().Read(0xFFE)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), b)
}

func TestStoreLoadBlock(t *testing.T) {
	m := newTestMachine(t)
	for i := range uint8(RegisterCount) {
		m.registers[i] = i * 3
	}
	m.index = 0x400

	assert.NoError(t, executeOpcode(t, m, 0xF455))
	assert.Equal(t, uint16(0x400), m.Index())
	for i := range uint16(5) {
		b, err := m.Memory().Read(0x400 + i)
		assert.NoError(t, err)
		assert.Equal(t, byte(i*3), b)
	}
	b, err := m.Memory().Read(0x405)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), b)

	m.registers = [RegisterCount]uint8{}
	m.registers[5] = 0x77
	assert.NoError(t, executeOpcode(t, m, 0xF465))
	for i := range uint8(5) {
		assert.Equal(t, i*3, m.Register(i))
	}
	assert.Equal(t, uint8(0x77), m.Register(5))
}

func TestStoreBlockOutOfBounds(t *testing.T) {
	m := newHaltingMachine(t, DefaultConfig())
	m.index = 0xFFC

	err := executeOpcode(t, m, 0xFF55)
	assert.True(t, IsFatal(err))

	var fault *FaultError
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, FaultMemory, fault.Kind)
}

func TestRandom(t *testing.T) {
	m := newTestMachine(t, WithRandom(&sequenceRandom{values: []byte{0xAB, 0xFF}}))

	assert.NoError(t, executeOpcode(t, m, 0xC10F))
	assert.Equal(t, uint8(0x0B), m.Register(1))
	assert.NoError(t, executeOpcode(t, m, 0xC2F0))
	assert.Equal(t, uint8(0xF0), m.Register(2))
}

func TestDefaultRandomIsDeterministic(t *testing.T) {
	a := NewRandom(42)
	b := NewRandom(42)
	for range 100 {
		assert.Equal(t, a.Byte(), b.Byte())
	}
}

func TestKeySkips(t *testing.T) {
	keypad := &testKeypad{}
	keypad.held[0xA] = true
	m := newTestMachine(t, WithKeypad(keypad))
	m.registers[1] = 0xA
	m.registers[2] = 0xB

	assert.NoError(t, executeOpcode(t, m, 0xE19E))
	assert.Equal(t, uint16(ProgramStart+4), m.PC())

	assert.NoError(t, executeOpcode(t, m, 0xE29E))
	assert.Equal(t, uint16(ProgramStart+6), m.PC())

	assert.NoError(t, executeOpcode(t, m, 0xE1A1))
	assert.Equal(t, uint16(ProgramStart+8), m.PC())

	assert.NoError(t, executeOpcode(t, m, 0xE2A1))
	assert.Equal(t, uint16(ProgramStart+12), m.PC())
}

func TestWaitForKey(t *testing.T) {
	keypad := &testKeypad{}
	m := newTestMachine(t, WithKeypad(keypad))
	loadProgram(t, m, 0xF50A, 0x6101)

	assert.NoError(t, m.Step())
	mode, register := m.Mode()
	assert.Equal(t, ModeAwaitingKey, mode)
	assert.Equal(t, uint8(5), register)
	assert.Equal(t, uint16(ProgramStart), m.PC())

	// steps without a press do not progress
	stepN(t, m, 10)
	mode, _ = m.Mode()
	assert.Equal(t, ModeAwaitingKey, mode)
	assert.Equal(t, uint16(ProgramStart), m.PC())
	assert.Equal(t, uint8(0), m.Register(5))

	// timers keep running while waiting
	m.timers.Delay = 2
	m.Tick()
	assert.Equal(t, uint8(1), m.Timers().Delay)

	keypad.presses = append(keypad.presses, 0x7)
	assert.NoError(t, m.Step())
	mode, _ = m.Mode()
	assert.Equal(t, ModeRunning, mode)
	assert.Equal(t, uint8(0x7), m.Register(5))
	assert.Equal(t, uint16(ProgramStart+2), m.PC())

	assert.NoError(t, m.Step())
	assert.Equal(t, uint8(1), m.Register(1))
}

func TestWaitForKey_PendingPress(t *testing.T) {
	keypad := &testKeypad{presses: []uint8{0x3}}
	m := newTestMachine(t, WithKeypad(keypad))
	loadProgram(t, m, 0xF50A)

	assert.NoError(t, m.Step())
	mode, _ := m.Mode()
	assert.Equal(t, ModeAwaitingKey, mode)

	// a press recorded before the wait completes it
	assert.NoError(t, m.Step())
	mode, _ = m.Mode()
	assert.Equal(t, ModeRunning, mode)
	assert.Equal(t, uint8(0x3), m.Register(5))
	assert.Equal(t, uint16(ProgramStart+2), m.PC())
}

func TestTimers(t *testing.T) {
	m := newTestMachine(t)
	loadProgram(t, m,
		0x6103, // ld V1, $03
		0xF115, // ld DT, V1
		0x6201, // ld V2, $01
		0xF218, // ld ST, V2
		0xF307, // ld V3, DT
		0x120A, // jp $20A
	)
	stepN(t, m, 5)
	assert.Equal(t, uint8(3), m.Register(3))

	// steps do not change the timers
	stepN(t, m, 100)
	assert.Equal(t, Timers{Delay: 3, Sound: 1}, m.Timers())

	assert.True(t, m.Tick())
	assert.Equal(t, Timers{Delay: 2, Sound: 0}, m.Timers())

	beeps := 0
	for range 5 {
		if m.Tick() {
			beeps++
		}
	}
	assert.Equal(t, 0, beeps)
	assert.Equal(t, Timers{}, m.Timers())
}

func TestSoundTimerBeepsOnce(t *testing.T) {
	m := newTestMachine(t)
	m.timers.Sound = 4

	beeps := 0
	for range 10 {
		if m.Tick() {
			beeps++
		}
	}
	assert.Equal(t, 1, beeps)
}

func TestUnknownOpcode(t *testing.T) {
	m := newTestMachine(t)
	loadProgram(t, m, 0xFFFF, 0x6101)

	err := m.Step()
	assert.Error(t, err)
	assert.False(t, IsFatal(err))

	var unknown *UnknownOpcodeError
	assert.True(t, errors.As(err, &unknown))
	assert.Equal(t, uint16(0xFFFF), unknown.Opcode)
	assert.Equal(t, uint16(ProgramStart), unknown.Address)
	assert.Equal(t, uint16(ProgramStart+2), m.PC())

	assert.NoError(t, m.Step())
	assert.Equal(t, uint8(1), m.Register(1))
}

func TestSysIsIgnored(t *testing.T) {
	m := newTestMachine(t)
	loadProgram(t, m, 0x0123)

	assert.NoError(t, m.Step())
	assert.Equal(t, uint16(ProgramStart+2), m.PC())
}

func TestFetchOutOfBounds(t *testing.T) {
	m := newHaltingMachine(t, DefaultConfig())
	m.registers[0] = 0xFF
	loadProgram(t, m, 0xBFFF) // jp V0, $FFF

	assert.NoError(t, m.Step())
	assert.Equal(t, uint16(0x10FE), m.PC())

	err := m.Step()
	assert.True(t, IsFatal(err))
	assert.True(t, errors.Is(err, ErrMemoryOutOfBounds))
}

func TestProgramCounterOverflow(t *testing.T) {
	config := DefaultConfig()
	config.MemorySize = 0x10000
	m := newHaltingMachine(t, config)
	m.pc = 0xFFFE

	err := executeOpcode(t, m, 0x6101) // ld V1, $01
	assert.True(t, IsFatal(err))
	assert.True(t, errors.Is(err, ErrMemoryOutOfBounds))
	assert.Equal(t, uint16(0xFFFE), m.PC())
	assert.Equal(t, uint8(0), m.Register(1))
}

func TestSkipOverflow(t *testing.T) {
	config := DefaultConfig()
	config.MemorySize = 0x10000
	m := newHaltingMachine(t, config)
	m.pc = 0xFFFC

	err := executeOpcode(t, m, 0x3000) // se V0, $00
	assert.True(t, IsFatal(err))

	var fault *FaultError
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, FaultMemory, fault.Kind)
	assert.Equal(t, uint16(0xFFFC), fault.Address)
	assert.Equal(t, uint16(0xFFFC), m.PC())

	// a skip that is not taken only advances past the instruction
	m = newTestMachine(t)
	m.pc = 0xFFC
	assert.NoError(t, executeOpcode(t, m, 0x3001)) // se V0, $01
	assert.Equal(t, uint16(0xFFE), m.PC())
}

func TestTrace(t *testing.T) {
	config := DefaultConfig()
	config.Trace = true
	m, err := New(log.NewTestLogger(t), config)
	assert.NoError(t, err)
	loadProgram(t, m, 0x6A3C)

	assert.NoError(t, m.Step())
	assert.Equal(t, uint8(0x3C), m.Register(0xA))
}

func TestReset(t *testing.T) {
	m := newHaltingMachine(t, DefaultConfig())
	loadProgram(t, m, 0x6A3C, 0xA123, 0x00EE)
	stepN(t, m, 2)
	assert.True(t, IsFatal(m.Step()))

	m.Reset()
	assert.NoError(t, m.Fault())
	assert.Equal(t, uint16(ProgramStart), m.PC())
	assert.Equal(t, uint16(0), m.Index())
	assert.Equal(t, uint8(0), m.Register(0xA))

	word, err := m.Memory().ReadWord(ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0), word)
}

func TestSnapshotRestore(t *testing.T) {
	m := newTestMachine(t)
	loadProgram(t, m,
		0x6A3C, // ld VA, $3C
		0xA000, // ld I, $000
		0xD015, // drw V0, V1, $5
		0x2208, // call $208
		0x1208, // jp $208
	)
	stepN(t, m, 4)
	state := m.Snapshot()

	restored := newTestMachine(t)
	assert.NoError(t, restored.Restore(state))
	assert.Equal(t, m.Registers(), restored.Registers())
	assert.Equal(t, m.PC(), restored.PC())
	assert.Equal(t, m.Index(), restored.Index())
	assert.Equal(t, m.StackPointer(), restored.StackPointer())
	assert.Equal(t, m.Display().Frame(), restored.Display().Frame())
	assert.True(t, restored.Display().Pixel(0, 0))

	// the snapshot does not alias machine memory
	state.Memory[ProgramStart] = 0xFF
	b, err := m.Memory().Read(ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x6A), b)
}

func TestRestoreMismatch(t *testing.T) {
	m := newTestMachine(t)
	state := m.Snapshot()

	state.Memory = state.Memory[:100]
	assert.Error(t, m.Restore(state))

	state = m.Snapshot()
	state.StackPointer = StackSize
	assert.Error(t, m.Restore(state))

	state = m.Snapshot()
	state.DisplayWidth = 128
	assert.Error(t, m.Restore(state))
}
