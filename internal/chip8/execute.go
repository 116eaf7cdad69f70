package chip8

import (
	"errors"

	"github.com/retroenv/retrogolib/log"
)

// execute runs a decoded instruction. The program counter already points to the
// next instruction.
func (m *Machine) execute(ins Instruction) error {
	vx := m.registers[ins.X]
	vy := m.registers[ins.Y]

	switch ins.Op {
	case OpSys:
		// machine code routines of the COSMAC VIP interpreter are not supported

	case OpCls:
		m.display.Clear()

	case OpRet:
		address, err := m.stack.pop()
		if err != nil {
			return err
		}
		m.pc = address

	case OpJp:
		m.pc = ins.NNN

	case OpCall:
		if err := m.stack.push(m.pc); err != nil {
			return err
		}
		m.pc = ins.NNN

	case OpSeByte:
		return m.skipIf(vx == ins.KK)
	case OpSneByte:
		return m.skipIf(vx != ins.KK)
	case OpSeReg:
		return m.skipIf(vx == vy)
	case OpSneReg:
		return m.skipIf(vx != vy)

	case OpLdByte:
		m.registers[ins.X] = ins.KK
	case OpAddByte:
		m.registers[ins.X] = vx + ins.KK

	case OpLdReg:
		m.registers[ins.X] = vy
	case OpOr:
		m.registers[ins.X] = vx | vy
	case OpAnd:
		m.registers[ins.X] = vx & vy
	case OpXor:
		m.registers[ins.X] = vx ^ vy

	case OpAddReg:
		sum := uint16(vx) + uint16(vy)
		m.registers[ins.X] = uint8(sum)
		m.setFlag(sum > 0xFF)
	case OpSub:
		m.registers[ins.X] = vx - vy
		m.setFlag(vx >= vy)
	case OpSubn:
		m.registers[ins.X] = vy - vx
		m.setFlag(vy >= vx)
	case OpShr:
		m.registers[ins.X] = vx >> 1
		m.registers[FlagRegister] = vx & 0x01
	case OpShl:
		m.registers[ins.X] = vx << 1
		m.registers[FlagRegister] = vx >> 7

	case OpLdI:
		m.index = ins.NNN
	case OpJpV0:
		m.pc = ins.NNN + uint16(m.registers[0])
	case OpRnd:
		m.registers[ins.X] = m.random.Byte() & ins.KK

	case OpDrw:
		sprite, err := m.memory.window(m.index, int(ins.N))
		if err != nil {
			return err
		}
		m.setFlag(m.display.Draw(vx, vy, sprite))

	case OpSkp:
		return m.skipIf(m.keypad.IsPressed(vx))
	case OpSknp:
		return m.skipIf(!m.keypad.IsPressed(vx))

	default:
		return m.executeMisc(ins, vx)
	}
	return nil
}

// executeMisc runs the Fxkk timer, key and memory instructions.
func (m *Machine) executeMisc(ins Instruction, vx uint8) error {
	switch ins.Op {
	case OpLdVxDT:
		m.registers[ins.X] = m.timers.Delay

	case OpLdVxK:
		m.mode = ModeAwaitingKey
		m.waitRegister = ins.X
		m.pc -= opcodeSize
		m.logger.Debug("Waiting for key", log.Uint8("register", ins.X))

	case OpLdDTVx:
		m.timers.Delay = vx
	case OpLdSTVx:
		m.timers.Sound = vx

	case OpAddIVx:
		m.index = (m.index + uint16(vx)) & addressMask
	case OpLdFVx:
		m.index = GlyphAddress(vx)

	case OpLdBVx:
		digits, err := m.memory.window(m.index, 3)
		if err != nil {
			return err
		}
		digits[0] = vx / 100
		digits[1] = vx / 10 % 10
		digits[2] = vx % 10

	case OpStore:
		block, err := m.memory.window(m.index, int(ins.X)+1)
		if err != nil {
			return err
		}
		copy(block, m.registers[:ins.X+1])

	case OpLoad:
		block, err := m.memory.window(m.index, int(ins.X)+1)
		if err != nil {
			return err
		}
		copy(m.registers[:ins.X+1], block)
	}
	return nil
}

func (m *Machine) skipIf(condition bool) error {
	if !condition {
		return nil
	}
	return m.advance(opcodeSize)
}

// setFlag writes the flag register. It is called after the result was written so
// that the flag takes precedence when the destination is VF.
func (m *Machine) setFlag(set bool) {
	if set {
		m.registers[FlagRegister] = 1
	} else {
		m.registers[FlagRegister] = 0
	}
}

func faultKind(err error) FaultKind {
	if errors.Is(err, ErrStackOverflow) || errors.Is(err, ErrStackUnderflow) {
		return FaultStack
	}
	return FaultMemory
}
