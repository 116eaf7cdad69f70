package chip8

import "fmt"

// State is a copy of the complete machine state, used for save states.
type State struct {
	Registers    [RegisterCount]uint8
	Index        uint16
	PC           uint16
	Stack        [StackSize]uint16
	StackPointer uint8
	Timers       Timers
	Mode         Mode
	WaitRegister uint8

	Memory        []byte
	DisplayWidth  int
	DisplayHeight int
	Display       []byte
}

// Snapshot returns a copy of the machine state.
func (m *Machine) Snapshot() State {
	memory := make([]byte, m.memory.Size())
	copy(memory, m.memory.data)

	return State{
		Registers:    m.registers,
		Index:        m.index,
		PC:           m.pc,
		Stack:        m.stack.Entries(),
		StackPointer: m.stack.Pointer(),
		Timers:       m.timers,
		Mode:         m.mode,
		WaitRegister: m.waitRegister,

		Memory:        memory,
		DisplayWidth:  m.display.Width(),
		DisplayHeight: m.display.Height(),
		Display:       m.display.Frame(),
	}
}

// Restore replaces the machine state. The state has to match the machine
// configuration. A halted machine resumes running.
func (m *Machine) Restore(state State) error {
	if len(state.Memory) != m.memory.Size() {
		return fmt.Errorf("state memory size %d does not match machine memory size %d",
			len(state.Memory), m.memory.Size())
	}
	if state.DisplayWidth != m.display.Width() || state.DisplayHeight != m.display.Height() ||
		len(state.Display) != state.DisplayWidth*state.DisplayHeight {
		return fmt.Errorf("state display %dx%d does not match machine display %dx%d",
			state.DisplayWidth, state.DisplayHeight, m.display.Width(), m.display.Height())
	}
	if int(state.StackPointer) >= StackSize {
		return fmt.Errorf("state stack pointer %d out of range", state.StackPointer)
	}
	if state.Mode != ModeRunning && state.Mode != ModeAwaitingKey {
		return fmt.Errorf("state has unsupported mode %d", state.Mode)
	}
	if state.WaitRegister >= RegisterCount {
		return fmt.Errorf("state wait register %d out of range", state.WaitRegister)
	}

	copy(m.memory.data, state.Memory)
	m.display.restore(state.Display)
	m.registers = state.Registers
	m.index = state.Index & addressMask
	m.pc = state.PC
	m.stack = Stack{entries: state.Stack, sp: state.StackPointer}
	m.timers = state.Timers
	m.mode = state.Mode
	m.waitRegister = state.WaitRegister
	m.fault = nil
	return nil
}
