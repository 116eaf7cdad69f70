// Package snapshot implements reading and writing of machine save states.
//
// A save state file starts with an uncompressed header followed by a snappy
// compressed body that contains the machine state.
package snapshot

import (
	"io"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
	"github.com/retroenv/retrochip8/internal/chip8"
)

// Magic identifies a save state file.
const Magic = "C8SS"

// Version is the save state format version that is written.
const Version = 1

// maxSize limits the memory and display sizes accepted when loading.
const maxSize = 1 << 16

var (
	errInvalidMagic   = errors.New("invalid save state magic")
	errInvalidVersion = errors.New("unsupported save state version")
	errSizeOutOfRange = errors.New("save state size out of range")
)

type header struct {
	Magic   string `struc:"[4]byte"`
	Version uint32
}

// registers is the fixed size start of the compressed state. It is followed by
// the memory, the display size and the display content.
type registers struct {
	Registers    []uint8  `struc:"[16]uint8"`
	Index        uint16   `struc:"uint16"`
	PC           uint16   `struc:"uint16"`
	Stack        []uint16 `struc:"[16]uint16"`
	StackPointer uint8
	Delay        uint8
	Sound        uint8
	Mode         uint8
	WaitRegister uint8

	DisplayWidth  uint16 `struc:"uint16"`
	DisplayHeight uint16 `struc:"uint16"`

	MemorySize uint32 `struc:"uint32"`
}

type displaySize struct {
	Size uint32 `struc:"uint32"`
}

// Save writes the machine state to the writer.
func Save(w io.Writer, state chip8.State) error {
	hdr := &header{
		Magic:   Magic,
		Version: Version,
	}
	if err := struc.Pack(w, hdr); err != nil {
		return errors.Wrap(err, "failed to pack header")
	}

	regs := &registers{
		Registers:     state.Registers[:],
		Index:         state.Index,
		PC:            state.PC,
		Stack:         state.Stack[:],
		StackPointer:  state.StackPointer,
		Delay:         state.Timers.Delay,
		Sound:         state.Timers.Sound,
		Mode:          uint8(state.Mode),
		WaitRegister:  state.WaitRegister,
		DisplayWidth:  uint16(state.DisplayWidth),
		DisplayHeight: uint16(state.DisplayHeight),
		MemorySize:    uint32(len(state.Memory)),
	}

	zw := snappy.NewBufferedWriter(w)
	if err := struc.Pack(zw, regs); err != nil {
		return errors.Wrap(err, "failed to pack state")
	}
	if _, err := zw.Write(state.Memory); err != nil {
		return errors.Wrap(err, "failed to write memory")
	}
	if err := struc.Pack(zw, &displaySize{Size: uint32(len(state.Display))}); err != nil {
		return errors.Wrap(err, "failed to pack display size")
	}
	if _, err := zw.Write(state.Display); err != nil {
		return errors.Wrap(err, "failed to write display")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "failed to flush state")
	}
	return nil
}

// Load reads a machine state from the reader. The returned state still has to
// be validated by restoring it into a machine.
func Load(r io.Reader) (chip8.State, error) {
	var hdr header
	if err := struc.Unpack(r, &hdr); err != nil {
		return chip8.State{}, errors.Wrap(err, "failed to unpack header")
	}
	if hdr.Magic != Magic {
		return chip8.State{}, errInvalidMagic
	}
	if hdr.Version != Version {
		return chip8.State{}, errors.Wrapf(errInvalidVersion, "version %d", hdr.Version)
	}

	var regs registers
	zr := snappy.NewReader(r)
	if err := struc.Unpack(zr, &regs); err != nil {
		return chip8.State{}, errors.Wrap(err, "failed to unpack state")
	}
	memory, err := readBlock(zr, regs.MemorySize)
	if err != nil {
		return chip8.State{}, errors.Wrap(err, "failed to read memory")
	}

	var size displaySize
	if err := struc.Unpack(zr, &size); err != nil {
		return chip8.State{}, errors.Wrap(err, "failed to unpack display size")
	}
	display, err := readBlock(zr, size.Size)
	if err != nil {
		return chip8.State{}, errors.Wrap(err, "failed to read display")
	}

	state := chip8.State{
		Index:        regs.Index,
		PC:           regs.PC,
		StackPointer: regs.StackPointer,
		Timers: chip8.Timers{
			Delay: regs.Delay,
			Sound: regs.Sound,
		},
		Mode:          chip8.Mode(regs.Mode),
		WaitRegister:  regs.WaitRegister,
		Memory:        memory,
		DisplayWidth:  int(regs.DisplayWidth),
		DisplayHeight: int(regs.DisplayHeight),
		Display:       display,
	}
	copy(state.Registers[:], regs.Registers)
	copy(state.Stack[:], regs.Stack)
	return state, nil
}

// readBlock reads a length prefixed block after checking the length against
// the largest supported size.
func readBlock(r io.Reader, size uint32) ([]byte, error) {
	if size > maxSize {
		return nil, errors.Wrapf(errSizeOutOfRange, "size %d", size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
