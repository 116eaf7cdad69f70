package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned by New for unusable configurations.
	ErrInvalidConfig = errors.New("invalid machine configuration")

	// ErrProgramTooLarge is returned by Load if the program image does not fit into memory.
	ErrProgramTooLarge = errors.New("program image exceeds memory capacity")

	// ErrStackOverflow is the cause of a fault when calling with a full stack.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow is the cause of a fault when returning with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrMemoryOutOfBounds is the cause of a fault when accessing memory outside of its capacity.
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
)

// FaultKind classifies fatal machine faults.
type FaultKind uint8

// Fault kinds.
const (
	FaultStack FaultKind = iota + 1
	FaultMemory
)

func (k FaultKind) String() string {
	switch k {
	case FaultStack:
		return "stack fault"
	case FaultMemory:
		return "memory fault"
	default:
		return fmt.Sprintf("fault(%d)", uint8(k))
	}
}

// FaultError is a fatal error that halts the machine.
type FaultError struct {
	Kind    FaultKind
	Address uint16 // address of the faulting instruction
	Opcode  uint16
	Err     error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s at $%04X (opcode $%04X): %v", e.Kind, e.Address, e.Opcode, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

// UnknownOpcodeError is returned for instruction words that do not decode to an instruction.
// It is not fatal, the instruction is skipped.
type UnknownOpcodeError struct {
	Address uint16
	Opcode  uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode $%04X at $%04X", e.Opcode, e.Address)
}

// IsFatal returns whether the error returned by Step halted the machine.
func IsFatal(err error) bool {
	var fault *FaultError
	return errors.As(err, &fault)
}

func newFault(kind FaultKind, ins Instruction, address uint16, err error) *FaultError {
	return &FaultError{
		Kind:    kind,
		Address: address,
		Opcode:  ins.Opcode,
		Err:     err,
	}
}
