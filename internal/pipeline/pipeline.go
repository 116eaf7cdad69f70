// Package pipeline orchestrates the emulator workflow stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/digest"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/snapshot"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrochip8/internal/wavwriter"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates loading, disassembling and running of a program.
type Pipeline struct {
	logger *log.Logger
	loader *loader.Loader
	stdout io.Writer
}

// New creates a new pipeline that writes console output to stdout.
func New(logger *log.Logger, stdout io.Writer) *Pipeline {
	return &Pipeline{
		logger: logger,
		loader: loader.New(),
		stdout: stdout,
	}
}

// Execute loads the program and either disassembles or runs it.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, disasmOpts disasm.Options) error {
	machineConfig := config.MachineConfig(opts)
	program, err := p.loader.Load(opts.Input, machineConfig.MemorySize-chip8.ProgramStart)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	if !opts.Quiet {
		p.logger.Info("Processing program",
			log.String("file", opts.Input),
			log.Int("size", len(program)),
		)
	}

	if opts.Disasm {
		return p.Disassemble(ctx, program, opts, disasmOpts)
	}
	_, err = p.Run(ctx, program, opts)
	return err
}

// Disassemble writes the disassembly of the program to the output file or stdout.
func (p *Pipeline) Disassemble(ctx context.Context, program []byte, opts options.Program, disasmOpts disasm.Options) (rerr error) {
	dis, err := disasm.New(p.logger, program, disasmOpts)
	if err != nil {
		return fmt.Errorf("creating disassembler: %w", err)
	}

	w := p.stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating file '%s': %w", opts.Output, err)
		}
		defer func() {
			if err := f.Close(); err != nil && rerr == nil {
				rerr = fmt.Errorf("closing file: %w", err)
			}
		}()
		w = f
	}

	if err := dis.Process(ctx, w); err != nil {
		return fmt.Errorf("disassembling: %w", err)
	}
	return nil
}

// Run executes the program. Headless runs print the final frame to stdout,
// otherwise the program runs interactively in the terminal.
func (p *Pipeline) Run(ctx context.Context, program []byte, opts options.Program) (Result, error) {
	keys := keypad.New()
	machine, err := chip8.New(p.logger, config.MachineConfig(opts),
		chip8.WithKeypad(keys),
		chip8.WithRandom(chip8.NewRandom(config.Seed(opts))),
	)
	if err != nil {
		return Result{}, fmt.Errorf("creating machine: %w", err)
	}
	if err := machine.Load(program); err != nil {
		return Result{}, fmt.Errorf("loading program into memory: %w", err)
	}
	if opts.LoadState != "" {
		if err := p.loadState(machine, opts.LoadState); err != nil {
			return Result{}, err
		}
	}

	runner, err := NewRunner(p.logger, machine, RunOptions{
		CPUHz:     opts.CPUHz,
		TimerHz:   opts.TimerHz,
		MaxCycles: opts.Cycles,
		Realtime:  !opts.Headless,
	})
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop, err := p.attachFrontend(runner, keys, opts, cancel)
	if err != nil {
		return Result{}, err
	}

	var recorder *wavwriter.WavWriter
	if opts.Wav != "" {
		recorder, err = wavwriter.New(p.logger, opts.Wav, opts.TimerHz)
		if err != nil {
			stop()
			return Result{}, fmt.Errorf("creating wav writer: %w", err)
		}
		runner.AddAudioSink(recorder)
	}

	var screenDigest *digest.Screen
	if opts.Digest {
		screenDigest = digest.New()
		runner.AddRenderer(screenDigest)
	}

	result, runErr := runner.Run(ctx)
	stop()
	if errors.Is(runErr, context.Canceled) {
		p.logger.Info("Execution stopped")
		runErr = nil
	}

	if err := p.finish(machine, opts, result, recorder, screenDigest); err != nil {
		return result, err
	}
	return result, runErr
}

// attachFrontend connects the key input and display output to the runner and
// returns a function that releases the frontend.
func (p *Pipeline) attachFrontend(runner *Runner, keys *keypad.State, opts options.Program,
	cancel context.CancelFunc) (func(), error) {

	held, err := keypad.Parse(opts.Hold)
	if err != nil {
		return nil, fmt.Errorf("parsing held keys: %w", err)
	}

	if opts.Headless {
		runner.AttachKeys(keys, keypad.NewStatic(held))
		return func() {}, nil
	}

	screen := terminal.NewScreen(p.stdout)
	runner.AddRenderer(screen)
	runner.AddBeepSink(screen)

	if !terminal.IsTerminal(os.Stdin) {
		p.logger.Warn("Input is not a terminal, keyboard input is disabled")
		runner.AttachKeys(keys, keypad.NewStatic(held))
		return func() {}, nil
	}

	input := terminal.NewInput(cancel)
	if err := input.Start(); err != nil {
		return nil, fmt.Errorf("starting terminal input: %w", err)
	}
	runner.AttachKeys(keys, input)
	return input.Stop, nil
}

// finish writes all requested outputs after a run.
func (p *Pipeline) finish(machine *chip8.Machine, opts options.Program, result Result,
	recorder *wavwriter.WavWriter, screenDigest *digest.Screen) error {

	p.logger.Debug("Execution finished",
		log.Uint("cycles", uint(result.Cycles)),
		log.Uint("ticks", uint(result.Ticks)),
		log.Int("beeps", result.Beeps),
		log.Int("unknownOpcodes", result.UnknownOpcodes),
	)

	if opts.Headless {
		if _, err := io.WriteString(p.stdout, machine.Display().String()); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
	}
	if screenDigest != nil {
		p.logger.Info("Frame digest",
			log.String("frame", digest.Frame(machine.Display())),
			log.String("chained", screenDigest.String()),
			log.Int("frames", screenDigest.Frames()),
		)
	}
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			return fmt.Errorf("writing wav file: %w", err)
		}
	}
	if opts.SaveState != "" {
		if err := p.saveState(machine, opts.SaveState); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) loadState(machine *chip8.Machine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening save state '%s': %w", path, err)
	}
	defer func() { _ = f.Close() }()

	state, err := snapshot.Load(f)
	if err != nil {
		return fmt.Errorf("reading save state: %w", err)
	}
	if err := machine.Restore(state); err != nil {
		return fmt.Errorf("restoring save state: %w", err)
	}
	p.logger.Debug("Restored save state", log.String("file", path), log.Hex("pc", machine.PC()))
	return nil
}

func (p *Pipeline) saveState(machine *chip8.Machine, path string) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating save state '%s': %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("closing save state: %w", err)
		}
	}()

	if err := snapshot.Save(f, machine.Snapshot()); err != nil {
		return fmt.Errorf("writing save state: %w", err)
	}
	p.logger.Debug("Wrote save state", log.String("file", path))
	return nil
}
