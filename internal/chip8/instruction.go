package chip8

import (
	"fmt"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Op identifies the operation of a decoded instruction.
type Op uint8

// Operations. OpInvalid is the zero value and marks unknown instruction words.
const (
	OpInvalid Op = iota
	OpSys        // 0nnn
	OpCls        // 00E0
	OpRet        // 00EE
	OpJp         // 1nnn
	OpCall       // 2nnn
	OpSeByte     // 3xkk
	OpSneByte    // 4xkk
	OpSeReg      // 5xy0
	OpLdByte     // 6xkk
	OpAddByte    // 7xkk
	OpLdReg      // 8xy0
	OpOr         // 8xy1
	OpAnd        // 8xy2
	OpXor        // 8xy3
	OpAddReg     // 8xy4
	OpSub        // 8xy5
	OpShr        // 8xy6
	OpSubn       // 8xy7
	OpShl        // 8xyE
	OpSneReg     // 9xy0
	OpLdI        // Annn
	OpJpV0       // Bnnn
	OpRnd        // Cxkk
	OpDrw        // Dxyn
	OpSkp        // Ex9E
	OpSknp       // ExA1
	OpLdVxDT     // Fx07
	OpLdVxK      // Fx0A
	OpLdDTVx     // Fx15
	OpLdSTVx     // Fx18
	OpAddIVx     // Fx1E
	OpLdFVx      // Fx29
	OpLdBVx      // Fx33
	OpStore      // Fx55
	OpLoad       // Fx65
)

// Instruction is a decoded instruction word. Only the operand fields that the
// operation uses are meaningful.
type Instruction struct {
	Op     Op
	Opcode uint16
	X      uint8  // register index in bits 8-11
	Y      uint8  // register index in bits 4-7
	N      uint8  // nibble in bits 0-3
	KK     uint8  // byte in bits 0-7
	NNN    uint16 // address in bits 0-11
}

// Decode classifies an instruction word. Unknown words decode to OpInvalid.
func Decode(opcode uint16) Instruction {
	ins := Instruction{
		Opcode: opcode,
		X:      uint8(opcode>>8) & 0x0F,
		Y:      uint8(opcode>>4) & 0x0F,
		N:      uint8(opcode) & 0x0F,
		KK:     uint8(opcode),
		NNN:    opcode & addressMask,
	}
	ins.Op = decodeOp(opcode, ins)
	return ins
}

func decodeOp(opcode uint16, ins Instruction) Op {
	switch opcode >> 12 {
	case 0x0:
		switch opcode {
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRet
		}
		return OpSys
	case 0x1:
		return OpJp
	case 0x2:
		return OpCall
	case 0x3:
		return OpSeByte
	case 0x4:
		return OpSneByte
	case 0x5:
		if ins.N == 0 {
			return OpSeReg
		}
	case 0x6:
		return OpLdByte
	case 0x7:
		return OpAddByte
	case 0x8:
		return decodeALU(ins.N)
	case 0x9:
		if ins.N == 0 {
			return OpSneReg
		}
	case 0xA:
		return OpLdI
	case 0xB:
		return OpJpV0
	case 0xC:
		return OpRnd
	case 0xD:
		return OpDrw
	case 0xE:
		switch ins.KK {
		case 0x9E:
			return OpSkp
		case 0xA1:
			return OpSknp
		}
	case 0xF:
		return decodeMisc(ins.KK)
	}
	return OpInvalid
}

// decodeALU decodes the 8xyN register operations.
func decodeALU(n uint8) Op {
	switch n {
	case 0x0:
		return OpLdReg
	case 0x1:
		return OpOr
	case 0x2:
		return OpAnd
	case 0x3:
		return OpXor
	case 0x4:
		return OpAddReg
	case 0x5:
		return OpSub
	case 0x6:
		return OpShr
	case 0x7:
		return OpSubn
	case 0xE:
		return OpShl
	default:
		return OpInvalid
	}
}

// decodeMisc decodes the Fxkk timer, key and memory operations.
func decodeMisc(kk uint8) Op {
	switch kk {
	case 0x07:
		return OpLdVxDT
	case 0x0A:
		return OpLdVxK
	case 0x15:
		return OpLdDTVx
	case 0x18:
		return OpLdSTVx
	case 0x1E:
		return OpAddIVx
	case 0x29:
		return OpLdFVx
	case 0x33:
		return OpLdBVx
	case 0x55:
		return OpStore
	case 0x65:
		return OpLoad
	default:
		return OpInvalid
	}
}

// mnemonics maps operations to the shared CHIP-8 instruction definitions.
var mnemonics = map[Op]*chip8cpu.Instruction{
	OpCls:     chip8cpu.ClsInst,
	OpRet:     chip8cpu.RetInst,
	OpJp:      chip8cpu.JpInst,
	OpJpV0:    chip8cpu.JpInst,
	OpCall:    chip8cpu.CallInst,
	OpSeByte:  chip8cpu.SeInst,
	OpSeReg:   chip8cpu.SeInst,
	OpSneByte: chip8cpu.SneInst,
	OpSneReg:  chip8cpu.SneInst,
	OpLdByte:  chip8cpu.LdInst,
	OpLdReg:   chip8cpu.LdInst,
	OpLdI:     chip8cpu.LdInst,
	OpLdVxDT:  chip8cpu.LdInst,
	OpLdVxK:   chip8cpu.LdInst,
	OpLdDTVx:  chip8cpu.LdInst,
	OpLdSTVx:  chip8cpu.LdInst,
	OpLdFVx:   chip8cpu.LdInst,
	OpLdBVx:   chip8cpu.LdInst,
	OpStore:   chip8cpu.LdInst,
	OpLoad:    chip8cpu.LdInst,
	OpAddByte: chip8cpu.AddInst,
	OpAddReg:  chip8cpu.AddInst,
	OpAddIVx:  chip8cpu.AddInst,
	OpOr:      chip8cpu.OrInst,
	OpAnd:     chip8cpu.AndInst,
	OpXor:     chip8cpu.XorInst,
	OpSub:     chip8cpu.SubInst,
	OpSubn:    chip8cpu.SubnInst,
	OpShr:     chip8cpu.ShrInst,
	OpShl:     chip8cpu.ShlInst,
	OpRnd:     chip8cpu.RndInst,
	OpDrw:     chip8cpu.DrwInst,
	OpSkp:     chip8cpu.SkpInst,
	OpSknp:    chip8cpu.SknpInst,
}

// Valid returns whether the instruction word decoded to a known operation.
func (i Instruction) Valid() bool {
	return i.Op != OpInvalid
}

// Name returns the mnemonic of the instruction.
func (i Instruction) Name() string {
	if i.Op == OpSys {
		return "sys"
	}
	ins, ok := mnemonics[i.Op]
	if !ok {
		return ""
	}
	return ins.Name
}

// IsJump returns whether the instruction unconditionally transfers control.
func (i Instruction) IsJump() bool {
	return i.Op == OpJp || i.Op == OpJpV0
}

// IsSkip returns whether the instruction conditionally skips the next instruction.
func (i Instruction) IsSkip() bool {
	switch i.Op {
	case OpSeByte, OpSneByte, OpSeReg, OpSneReg, OpSkp, OpSknp:
		return true
	default:
		return false
	}
}

// String returns the instruction in assembler syntax.
func (i Instruction) String() string {
	if i.Op == OpInvalid {
		return fmt.Sprintf(".word $%04X", i.Opcode)
	}
	params := i.params()
	if params == "" {
		return i.Name()
	}
	return fmt.Sprintf("%s %s", i.Name(), params)
}

// params formats the operands of the instruction.
func (i Instruction) params() string {
	switch i.Op {
	case OpSys, OpJp, OpCall:
		return fmt.Sprintf("$%03X", i.NNN)
	case OpJpV0:
		return fmt.Sprintf("V0, $%03X", i.NNN)
	case OpSeByte, OpSneByte, OpLdByte, OpAddByte, OpRnd:
		return fmt.Sprintf("V%X, $%02X", i.X, i.KK)
	case OpSeReg, OpSneReg, OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpSubn:
		return fmt.Sprintf("V%X, V%X", i.X, i.Y)
	case OpShr, OpShl, OpSkp, OpSknp:
		return fmt.Sprintf("V%X", i.X)
	case OpLdI:
		return fmt.Sprintf("I, $%03X", i.NNN)
	case OpDrw:
		return fmt.Sprintf("V%X, V%X, $%X", i.X, i.Y, i.N)
	case OpLdVxDT:
		return fmt.Sprintf("V%X, DT", i.X)
	case OpLdVxK:
		return fmt.Sprintf("V%X, K", i.X)
	case OpLdDTVx:
		return fmt.Sprintf("DT, V%X", i.X)
	case OpLdSTVx:
		return fmt.Sprintf("ST, V%X", i.X)
	case OpAddIVx:
		return fmt.Sprintf("I, V%X", i.X)
	case OpLdFVx:
		return fmt.Sprintf("F, V%X", i.X)
	case OpLdBVx:
		return fmt.Sprintf("B, V%X", i.X)
	case OpStore:
		return fmt.Sprintf("[I], V%X", i.X)
	case OpLoad:
		return fmt.Sprintf("V%X, [I]", i.X)
	default:
		return ""
	}
}
