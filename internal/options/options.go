// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input     string `flag:"i" usage:"program image file"`
	Output    string `flag:"o" usage:"output file of the disassembly (default: stdout)"`
	LoadState string `flag:"load-state" usage:"save state file to restore before running"`
	SaveState string `flag:"save-state" usage:"save state file to write after running"`
	Wav       string `flag:"wav" usage:"record the sound output to a .wav file"`
}

// Flags contains behavior options.
type Flags struct {
	Disasm   bool `flag:"disasm" usage:"disassemble the program instead of running it"`
	Headless bool `flag:"headless" usage:"run without terminal, unpaced and deterministic"`
	Digest   bool `flag:"digest" usage:"print a SHA1 digest of the final frame"`
	Trace    bool `flag:"trace" usage:"log every executed instruction, requires -debug"`
	Debug    bool `flag:"debug" usage:"enable debug logging"`
	Quiet    bool `flag:"q" usage:"quiet mode"`
}

// MachineFlags contains options of the emulated machine.
type MachineFlags struct {
	CPUHz         int    `flag:"cpu-hz" usage:"instructions executed per second" default:"600"`
	TimerHz       int    `flag:"timer-hz" usage:"timer ticks per second" default:"60"`
	Cycles        uint64 `flag:"cycles" usage:"stop after executing this many instructions"`
	Hold          string `flag:"hold" usage:"comma separated hexadecimal keys held during a headless run"`
	Seed          uint64 `flag:"seed" usage:"random number generator seed"`
	MemorySize    int    `flag:"memory" usage:"memory size in bytes" default:"4096"`
	DisplayWidth  int    `flag:"width" usage:"display width in pixels" default:"64"`
	DisplayHeight int    `flag:"height" usage:"display height in pixels" default:"32"`
}

// OutputFlags contains disassembly output formatting options.
type OutputFlags struct {
	NoHexComments bool `flag:"nohexcomments" usage:"omit hex opcode bytes in comments"`
	NoOffsets     bool `flag:"nooffsets" usage:"omit addresses in comments"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	MachineFlags
	OutputFlags
}
