// Package config handles application configuration and setup
package config

import (
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// MachineConfig returns the machine configuration for the program options.
func MachineConfig(opts options.Program) chip8.Config {
	return chip8.Config{
		DisplayWidth:  opts.DisplayWidth,
		DisplayHeight: opts.DisplayHeight,
		MemorySize:    opts.MemorySize,
		Trace:         opts.Trace,
	}
}

// Seed returns the random number generator seed. Headless runs use the
// configured seed as is to produce reproducible output.
func Seed(opts options.Program) uint64 {
	if opts.Seed != 0 || opts.Headless {
		return opts.Seed
	}
	return uint64(time.Now().UnixNano())
}
