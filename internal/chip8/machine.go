package chip8

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// Mode is the execution mode of the machine.
type Mode uint8

// Execution modes.
const (
	ModeRunning     Mode = iota
	ModeAwaitingKey      // LD Vx, K is waiting for a key press
)

func (m Mode) String() string {
	switch m {
	case ModeRunning:
		return "running"
	case ModeAwaitingKey:
		return "awaiting key"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Option configures optional collaborators of a machine.
type Option func(*Machine)

// WithKeypad sets the key state query used by the key instructions.
func WithKeypad(keypad Keypad) Option {
	return func(m *Machine) {
		if keypad != nil {
			m.keypad = keypad
		}
	}
}

// WithRandom sets the random source used by the RND instruction.
func WithRandom(random RandomSource) Option {
	return func(m *Machine) {
		if random != nil {
			m.random = random
		}
	}
}

// Machine is a CHIP-8 virtual machine. It is not safe for concurrent use.
type Machine struct {
	logger *log.Logger
	config Config

	memory  *Memory
	display *Display
	stack   Stack
	timers  Timers

	registers [RegisterCount]uint8
	index     uint16
	pc        uint16

	mode         Mode
	waitRegister uint8
	fault        *FaultError

	keypad Keypad
	random RandomSource
}

// New returns a new machine with cleared state, the font installed and the program
// counter at ProgramStart.
func New(logger *log.Logger, config Config, options ...Option) (*Machine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		logger:  logger,
		config:  config,
		memory:  newMemory(config.MemorySize),
		display: newDisplay(config.DisplayWidth, config.DisplayHeight),
		pc:      ProgramStart,
		keypad:  noKeypad{},
		random:  NewRandom(0),
	}
	for _, option := range options {
		option(m)
	}
	return m, nil
}

// Reset returns the machine to the state after creation. The loaded program is cleared.
func (m *Machine) Reset() {
	m.memory.reset()
	m.display.Clear()
	m.stack = Stack{}
	m.timers = Timers{}
	m.registers = [RegisterCount]uint8{}
	m.index = 0
	m.pc = ProgramStart
	m.mode = ModeRunning
	m.waitRegister = 0
	m.fault = nil
}

// Load copies the program image into memory at ProgramStart.
func (m *Machine) Load(program []byte) error {
	if err := m.memory.load(program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	m.logger.Debug("Program loaded",
		log.Hex("address", ProgramStart),
		log.Int("size", len(program)))
	return nil
}

// Step executes a single instruction. While the machine is waiting for a key it
// only polls the keypad.
func (m *Machine) Step() error {
	if m.fault != nil {
		return m.fault
	}
	if m.mode == ModeAwaitingKey {
		return m.pollKey()
	}

	address := m.pc
	opcode, err := m.memory.ReadWord(address)
	if err != nil {
		return m.halt(&FaultError{Kind: FaultMemory, Address: address, Err: err})
	}

	ins := Decode(opcode)
	if m.config.Trace {
		m.logger.Debug("Executing instruction",
			log.Hex("address", address),
			log.String("instruction", ins.String()))
	}

	if err := m.advance(opcodeSize); err != nil {
		return m.halt(newFault(FaultMemory, ins, address, err))
	}

	if !ins.Valid() {
		m.logger.Warn("Unknown opcode",
			log.Hex("address", address),
			log.Hex("opcode", opcode))
		return &UnknownOpcodeError{Address: address, Opcode: opcode}
	}

	if err := m.execute(ins); err != nil {
		m.pc = address
		return m.halt(newFault(faultKind(err), ins, address, err))
	}
	return nil
}

// Tick decrements the timers and returns true if the sound timer just expired.
func (m *Machine) Tick() bool {
	return m.timers.tick()
}

func (m *Machine) halt(fault *FaultError) error {
	m.fault = fault
	m.logger.Error("Machine halted",
		log.Stringer("kind", fault.Kind),
		log.Hex("address", fault.Address),
		log.Err(fault.Err))
	return fault
}

// advance moves the program counter forward without wrapping around the end
// of the address space.
func (m *Machine) advance(n uint16) error {
	if uint32(m.pc)+uint32(n) > maxMemory-1 {
		return fmt.Errorf("%w: program counter $%04X overflows", ErrMemoryOutOfBounds, m.pc)
	}
	m.pc += n
	return nil
}

// pollKey completes a pending LD Vx, K once the keypad reports a press.
func (m *Machine) pollKey() error {
	key, ok := m.keypad.NextPress()
	if !ok {
		return nil
	}
	address := m.pc
	if err := m.advance(opcodeSize); err != nil {
		opcode, _ := m.memory.ReadWord(address)
		return m.halt(newFault(FaultMemory, Decode(opcode), address, err))
	}
	m.registers[m.waitRegister] = key & 0x0F
	m.mode = ModeRunning
	return nil
}

// Display returns the frame buffer.
func (m *Machine) Display() *Display {
	return m.display
}

// Memory returns the machine memory.
func (m *Machine) Memory() *Memory {
	return m.memory
}

// Config returns the configuration the machine was created with.
func (m *Machine) Config() Config {
	return m.config
}

// Register returns the value of register Vx.
func (m *Machine) Register(x uint8) uint8 {
	return m.registers[x&0x0F]
}

// Registers returns a copy of all registers.
func (m *Machine) Registers() [RegisterCount]uint8 {
	return m.registers
}

// Index returns the index register I.
func (m *Machine) Index() uint16 {
	return m.index
}

// PC returns the program counter.
func (m *Machine) PC() uint16 {
	return m.pc
}

// StackPointer returns the stack pointer.
func (m *Machine) StackPointer() uint8 {
	return m.stack.Pointer()
}

// Timers returns the current timer values.
func (m *Machine) Timers() Timers {
	return m.timers
}

// Mode returns the execution mode and, if the machine is waiting for a key, the
// register that receives it.
func (m *Machine) Mode() (Mode, uint8) {
	return m.mode, m.waitRegister
}

// Fault returns the fault that halted the machine or nil.
func (m *Machine) Fault() error {
	if m.fault == nil {
		return nil
	}
	return m.fault
}
