package disasm

import (
	"fmt"
	"slices"

	"github.com/retroenv/retrochip8/internal/chip8"
)

const (
	dataNaming  = "_data_%04x"
	funcNaming  = "_func_%04x"
	labelNaming = "_label_%04x"
)

// processJumpDestinations generates the label names for all referenced addresses.
func (dis *Disasm) processJumpDestinations() {
	branchDestinations := make([]uint16, 0, len(dis.branchDestinations))
	for dest := range dis.branchDestinations {
		branchDestinations = append(branchDestinations, dest)
	}
	slices.Sort(branchDestinations)

	for _, address := range branchDestinations {
		offsetInfo := &dis.offsets[dis.index(address)]
		// references into the middle of an instruction can not be labeled
		if offsetInfo.IsType(CodeOperand) || offsetInfo.Label != "" {
			continue
		}

		switch {
		case offsetInfo.IsType(CallDestination):
			offsetInfo.Label = fmt.Sprintf(funcNaming, address)
		case offsetInfo.IsType(JumpDestination | CodeOffset):
			offsetInfo.Label = fmt.Sprintf(labelNaming, address)
		default:
			offsetInfo.Label = fmt.Sprintf(dataNaming, address)
		}
	}
}

// label returns the label of an address if the address has one.
func (dis *Disasm) label(address uint16) (string, bool) {
	if !dis.inImage(address) {
		return "", false
	}
	name := dis.offsets[dis.index(address)].Label
	return name, name != ""
}

// formatInstruction returns the instruction in assembler syntax, address operands
// are replaced by their labels.
func (dis *Disasm) formatInstruction(ins chip8.Instruction) string {
	name, ok := dis.label(ins.NNN)
	if !ok {
		return ins.String()
	}

	switch ins.Op {
	case chip8.OpJp, chip8.OpCall:
		return fmt.Sprintf("%s %s", ins.Name(), name)
	case chip8.OpJpV0:
		return fmt.Sprintf("%s V0, %s", ins.Name(), name)
	case chip8.OpLdI:
		return fmt.Sprintf("%s I, %s", ins.Name(), name)
	default:
		return ins.String()
	}
}
