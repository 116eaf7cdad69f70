// Package disasm implements a disassembler for program images. Code is found by
// following the execution flow from the program start, everything that is not
// reached is output as data.
package disasm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const maxProgramSize = 0x10000 - chip8.ProgramStart

// Options defines options to control the disassembler output.
type Options struct {
	HexComments    bool
	OffsetComments bool
}

// NewOptions returns a new options instance with default options.
func NewOptions() Options {
	return Options{
		HexComments:    true,
		OffsetComments: true,
	}
}

// Disasm implements a disassembler.
type Disasm struct {
	logger  *log.Logger
	options Options

	data    []byte
	offsets []offset

	branchDestinations set.Set[uint16] // set of all addresses that are referenced

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
}

// New creates a new disassembler for the program image that gets loaded at
// chip8.ProgramStart.
func New(logger *log.Logger, program []byte, options Options) (*Disasm, error) {
	if len(program) == 0 {
		return nil, errors.New("program is empty")
	}
	if len(program) > maxProgramSize {
		return nil, fmt.Errorf("program size %d exceeds address space", len(program))
	}

	dis := &Disasm{
		logger:              logger,
		options:             options,
		data:                program,
		offsets:             make([]offset, len(program)),
		branchDestinations:  set.New[uint16](),
		offsetsToParseAdded: set.New[uint16](),
	}
	dis.offsets[0].Label = "Start"
	dis.addAddressToParse(chip8.ProgramStart)
	return dis, nil
}

// Process disassembles the program and writes the listing to the writer.
func (dis *Disasm) Process(ctx context.Context, w io.Writer) error {
	if err := dis.followExecutionFlow(ctx); err != nil {
		return err
	}
	dis.processJumpDestinations()

	if err := dis.write(w); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// followExecutionFlow parses all code reachable from the program start.
func (dis *Disasm) followExecutionFlow(ctx context.Context) error {
	for len(dis.offsetsToParse) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("following execution flow: %w", err)
		}

		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]
		dis.processOffset(address)
	}
	return nil
}

// processOffset decodes the instruction at the address and queues the addresses
// that execution can continue at.
func (dis *Disasm) processOffset(address uint16) {
	index := dis.index(address)
	offsetInfo := &dis.offsets[index]

	if offsetInfo.IsType(CodeOperand) {
		dis.offsets[index-1].Comment = "branch into instruction detected"
		return
	}
	// a single trailing byte or an instruction that would overlap already
	// parsed code stays data
	if index+1 >= len(dis.data) || dis.offsets[index+1].IsType(CodeOffset) {
		return
	}

	opcode := uint16(dis.data[index])<<8 | uint16(dis.data[index+1])
	ins := chip8.Decode(opcode)
	if !ins.Valid() {
		// consider an unknown instruction as start of data
		dis.logger.Debug("Unknown instruction stops execution flow",
			log.Hex("address", address), log.Hex("opcode", opcode))
		return
	}

	offsetInfo.SetType(CodeOffset)
	offsetInfo.Instruction = ins
	dis.offsets[index+1].SetType(CodeOperand)

	dis.handleControlFlow(address, ins)
}

// handleControlFlow queues the follow up addresses based on the instruction type.
func (dis *Disasm) handleControlFlow(address uint16, ins chip8.Instruction) {
	next := address + 2

	switch {
	case ins.IsJump():
		dis.addBranchDestination(ins.NNN, JumpDestination)

	case ins.Op == chip8.OpCall:
		dis.addBranchDestination(ins.NNN, CallDestination)
		dis.addAddressToParse(next)

	case ins.IsSkip():
		dis.addAddressToParse(next)
		dis.addAddressToParse(next + 2)

	case ins.Op == chip8.OpLdI:
		dis.addDataReference(ins.NNN)
		dis.addAddressToParse(next)

	case ins.Op != chip8.OpRet:
		dis.addAddressToParse(next)
	}
}

// addAddressToParse queues an address for parsing if it is inside the program
// image and was not queued before.
func (dis *Disasm) addAddressToParse(address uint16) {
	if !dis.inImage(address) || dis.offsetsToParseAdded.Contains(address) {
		return
	}
	dis.offsetsToParseAdded.Add(address)
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

func (dis *Disasm) addBranchDestination(address uint16, typ OffsetType) {
	if !dis.inImage(address) {
		return
	}
	dis.offsets[dis.index(address)].SetType(typ)
	dis.branchDestinations.Add(address)
	dis.addAddressToParse(address)
}

func (dis *Disasm) addDataReference(address uint16) {
	if !dis.inImage(address) {
		return
	}
	dis.offsets[dis.index(address)].SetType(DataReference)
	dis.branchDestinations.Add(address)
}

func (dis *Disasm) inImage(address uint16) bool {
	return int(address) >= chip8.ProgramStart && int(address) < chip8.ProgramStart+len(dis.data)
}

func (dis *Disasm) index(address uint16) int {
	return int(address) - chip8.ProgramStart
}
