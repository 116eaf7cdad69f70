// Package chip8 implements the CHIP-8 virtual machine core.
//
// # Machine Model
//
// The machine owns all of its state in a single Machine value:
//   - 4KB of memory, the hexadecimal font glyphs at FontAddress and programs at ProgramStart
//   - 16 general-purpose 8-bit registers V0-VF, VF doubles as the flag register
//   - the 12-bit index register I and the program counter
//   - a 16 entry call stack
//   - the delay and sound timers
//   - a 64x32 monochrome display
//
// # Execution
//
// The host drives the machine by calling Step for every instruction and Tick at the
// timer rate (usually 60Hz). Both are independent of each other:
//
//	m, err := chip8.New(logger, chip8.DefaultConfig(), chip8.WithKeypad(keys))
//	if err != nil {
//		return err
//	}
//	if err := m.Load(program); err != nil {
//		return err
//	}
//	for {
//		if err := m.Step(); chip8.IsFatal(err) {
//			return err
//		}
//	}
//
// Step returns nil on success, a non-fatal *UnknownOpcodeError for unrecognized
// instruction words and a fatal *FaultError for stack or memory faults. After a fault
// the machine is halted and every further Step returns the same fault.
//
// # Waiting for keys
//
// The LD Vx, K instruction does not block. It switches the machine into
// ModeAwaitingKey and every following Step only polls the Keypad until a key press
// is reported.
package chip8
