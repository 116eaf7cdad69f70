package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Default execution rates.
const (
	DefaultCPUHz   = 600
	DefaultTimerHz = 60
)

// Renderer receives the display whenever its content changed.
type Renderer interface {
	Render(display *chip8.Display) error
}

// AudioSink receives the sound state once per timer tick.
type AudioSink interface {
	Tick(sounding bool)
}

// BeepSink is notified when the sound timer expires.
type BeepSink interface {
	Beep()
}

// KeySource reports the currently held keys. It is queried once per timer tick.
type KeySource interface {
	Pressed() set.Set[uint8]
}

// RunOptions controls the execution of a machine.
type RunOptions struct {
	CPUHz     int    // instructions per second
	TimerHz   int    // timer ticks per second
	MaxCycles uint64 // stop after this many steps, 0 for no limit
	Realtime  bool   // pace timer ticks with the wall clock
}

// Result contains the statistics of a run.
type Result struct {
	Cycles         uint64
	Ticks          uint64
	Beeps          int
	UnknownOpcodes int
}

// Runner drives a machine by interleaving instruction steps and timer ticks.
type Runner struct {
	logger  *log.Logger
	machine *chip8.Machine
	options RunOptions

	keypad    *keypad.State
	keySource KeySource

	renderers  []Renderer
	audioSinks []AudioSink
	beepSinks  []BeepSink
}

// NewRunner returns a runner for the machine.
func NewRunner(logger *log.Logger, machine *chip8.Machine, options RunOptions) (*Runner, error) {
	if options.CPUHz <= 0 || options.TimerHz <= 0 {
		return nil, fmt.Errorf("invalid execution rates %d/%d", options.CPUHz, options.TimerHz)
	}
	return &Runner{
		logger:  logger,
		machine: machine,
		options: options,
	}, nil
}

// AttachKeys updates the key state from the source once per timer tick.
// The key state has to be the keypad that the machine was created with.
func (r *Runner) AttachKeys(state *keypad.State, source KeySource) {
	r.keypad = state
	r.keySource = source
}

// AddRenderer adds a renderer that is called for every changed frame.
func (r *Runner) AddRenderer(renderer Renderer) {
	r.renderers = append(r.renderers, renderer)
}

// AddAudioSink adds a sink that receives the sound state every timer tick.
func (r *Runner) AddAudioSink(sink AudioSink) {
	r.audioSinks = append(r.audioSinks, sink)
}

// AddBeepSink adds a sink that is notified on every beep.
func (r *Runner) AddBeepSink(sink BeepSink) {
	r.beepSinks = append(r.beepSinks, sink)
}

// Run executes the machine until the context is canceled, a fatal fault occurs
// or the cycle limit is reached. Reaching the cycle limit is not an error.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var result Result
	stepsPerTick := max(1, r.options.CPUHz/r.options.TimerHz)

	var ticks <-chan time.Time
	if r.options.Realtime {
		ticker := time.NewTicker(time.Second / time.Duration(r.options.TimerHz))
		defer ticker.Stop()
		ticks = ticker.C
	}

	if err := r.render(); err != nil {
		return result, err
	}

	for {
		if err := r.waitForTick(ctx, ticks); err != nil {
			return result, err
		}

		if r.keypad != nil && r.keySource != nil {
			r.keypad.Update(r.keySource.Pressed())
		}

		for range stepsPerTick {
			if r.limitReached(result) {
				return result, r.render()
			}

			err := r.machine.Step()
			result.Cycles++
			if err == nil {
				continue
			}
			if chip8.IsFatal(err) {
				err = fmt.Errorf("executing step: %w", err)
				return result, errors.Join(err, r.render())
			}
			result.UnknownOpcodes++
		}

		r.tick(&result)

		if err := r.render(); err != nil {
			return result, err
		}
	}
}

func (r *Runner) waitForTick(ctx context.Context, ticks <-chan time.Time) error {
	if ticks == nil {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ticks:
		return nil
	}
}

func (r *Runner) limitReached(result Result) bool {
	return r.options.MaxCycles > 0 && result.Cycles >= r.options.MaxCycles
}

// tick advances the timers and forwards the sound state to the sinks.
func (r *Runner) tick(result *Result) {
	beep := r.machine.Tick()
	result.Ticks++

	sounding := beep || r.machine.Timers().Sound > 0
	for _, sink := range r.audioSinks {
		sink.Tick(sounding)
	}

	if !beep {
		return
	}
	result.Beeps++
	r.logger.Debug("Beep", log.Uint("tick", uint(result.Ticks)))
	for _, sink := range r.beepSinks {
		sink.Beep()
	}
}

// render passes a changed display to all renderers.
func (r *Runner) render() error {
	display := r.machine.Display()
	if !display.Dirty() {
		return nil
	}
	display.ClearDirty()

	for _, renderer := range r.renderers {
		if err := renderer.Render(display); err != nil {
			return fmt.Errorf("rendering frame: %w", err)
		}
	}
	return nil
}
