package disasm

import "github.com/retroenv/retrochip8/internal/chip8"

// OffsetType defines the type of a program offset.
type OffsetType uint8

// offset types.
const (
	UnknownOffset OffsetType = 0
	CodeOffset    OffsetType = 1 << iota
	CodeOperand              // second byte of an instruction
	CallDestination          // destination of a call, indicating a subroutine
	JumpDestination
	DataReference // address loaded into the index register
)

// offset contains the disassembly information for a single byte of the program image.
type offset struct {
	Type        OffsetType
	Instruction chip8.Instruction // only set for CodeOffset
	Label       string
	Comment     string
}

// IsType returns whether the offset is of given type.
func (o *offset) IsType(typ OffsetType) bool {
	return o.Type&typ != 0
}

// SetType sets the type of the offset.
func (o *offset) SetType(typ OffsetType) {
	o.Type |= typ
}
