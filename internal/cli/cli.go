// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/pipeline"
)

// ParseFlags parses command line flags and returns program and disassembler options
func ParseFlags() (options.Program, disasm.Options, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)
	disasmOptions := disasm.NewOptions()
	readDisasmOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, disasmOptions, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, disasmOptions, err
	}
	if len(args) > 0 {
		opts.Input = args[0]
	}

	if err := validateOptions(opts); err != nil {
		return opts, disasmOptions, err
	}

	// apply inverse logic for hex comments and offsets
	disasmOptions.HexComments = !opts.NoHexComments
	disasmOptions.OffsetComments = !opts.NoOffsets

	return opts, disasmOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <program file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
			}
		}
	}
	return nil
}

// validateOptions checks option values and option combinations
func validateOptions(opts options.Program) error {
	if opts.CPUHz <= 0 || opts.TimerHz <= 0 {
		return errors.New("cpu and timer rates have to be positive")
	}
	if opts.Headless && opts.Cycles == 0 {
		return errors.New("headless mode requires a cycle limit set by -cycles")
	}
	if opts.Disasm && (opts.LoadState != "" || opts.SaveState != "" || opts.Wav != "") {
		return errors.New("save states and audio recording are not supported in disassembly mode")
	}
	if opts.Hold != "" {
		if _, err := keypad.Parse(opts.Hold); err != nil {
			return fmt.Errorf("parsing held keys: %w", err)
		}
	}

	config := chip8.Config{
		DisplayWidth:  opts.DisplayWidth,
		DisplayHeight: opts.DisplayHeight,
		MemorySize:    opts.MemorySize,
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("validating machine options: %w", err)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the program image file")
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file, printed on console if no name given")
	flags.StringVar(&opts.LoadState, "load-state", "", "name of a save state file to restore before running")
	flags.StringVar(&opts.SaveState, "save-state", "", "name of a save state file to write after running")
	flags.StringVar(&opts.Wav, "wav", "", "name of a .wav file to record the sound output to")
	flags.BoolVar(&opts.Disasm, "disasm", false, "disassemble the program instead of running it")
	flags.BoolVar(&opts.Headless, "headless", false, "run without terminal as fast as possible, output is deterministic")
	flags.BoolVar(&opts.Digest, "digest", false, "print a SHA1 digest of the final frame")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, requires -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	flags.IntVar(&opts.CPUHz, "cpu-hz", pipeline.DefaultCPUHz, "instructions executed per second")
	flags.IntVar(&opts.TimerHz, "timer-hz", pipeline.DefaultTimerHz, "timer ticks per second")
	flags.Uint64Var(&opts.Cycles, "cycles", 0, "stop after executing this many instructions, 0 for no limit")
	flags.StringVar(&opts.Hold, "hold", "", "comma separated hexadecimal keys that are held during a headless run")
	flags.Uint64Var(&opts.Seed, "seed", 0, "random number generator seed, 0 selects a time based seed unless running headless")
	flags.IntVar(&opts.MemorySize, "memory", chip8.DefaultMemorySize, "memory size in bytes")
	flags.IntVar(&opts.DisplayWidth, "width", chip8.DefaultDisplayWidth, "display width in pixels")
	flags.IntVar(&opts.DisplayHeight, "height", chip8.DefaultDisplayHeight, "display height in pixels")
}

func readDisasmOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&opts.NoOffsets, "nooffsets", false, "do not output offsets in comments")
}
