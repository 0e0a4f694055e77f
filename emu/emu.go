package emu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/hw/snapshot"
	"nescore/ines"
)

type Emulator struct {
	NES *hw.NES
	cfg RunConfig

	traceOut io.WriteCloser
}

// Launch powers up a console with rom and prepares it according to cfg. It
// doesn't start the emulation loop, call Run() for that. traceOut, if
// non-nil, takes precedence over the trace configuration.
func Launch(rom *ines.Rom, cfg Config, traceOut io.Writer) (*Emulator, error) {
	nes := hw.NewNES()
	if err := nes.PowerUp(rom); err != nil {
		return nil, fmt.Errorf("power up failed: %w", err)
	}

	e := &Emulator{NES: nes, cfg: cfg.Run}

	switch {
	case cfg.Run.Nestest:
		start, stop := uint16(NestestStart), uint16(NestestStop)
		if cfg.Run.StartPC != nil {
			start = *cfg.Run.StartPC
		}
		if cfg.Run.StopAddr != nil {
			stop = *cfg.Run.StopAddr
		}
		nes.CPU.ResetAutomation(start, stop)
	default:
		if cfg.Run.StartPC != nil {
			nes.CPU.PC = nes.CPU.PC.Of(int(*cfg.Run.StartPC))
		}
		if cfg.Run.StopAddr != nil {
			nes.CPU.SetTrap(*cfg.Run.StopAddr)
		}
	}

	// CPU execution trace setup.
	if traceOut == nil && cfg.Trace.Enabled {
		w, err := openOutput(cfg.Trace.Output)
		if err != nil {
			return nil, fmt.Errorf("trace output: %w", err)
		}
		e.traceOut = w
		traceOut = w
	}
	if traceOut != nil {
		if !cfg.Trace.PPUColumns {
			nes.CPU.PPU = nil
		}
		nes.CPU.SetTraceOutput(traceOut)
	}

	return e, nil
}

// Run runs the emulation until the CPU halts, the cycle budget is exhausted
// or ctx is done. Reaching the trap address is not an error.
func (e *Emulator) Run(ctx context.Context) error {
	err := e.NES.RunUntilHalt(ctx, e.cfg.MaxCycles)
	log.ModEmu.InfoZ("Emulation loop exited").
		Int64("cycles", e.NES.CPU.Cycles).
		Error("reason", err).
		End()

	if errors.Is(err, hw.ErrTrap) {
		return nil
	}
	return err
}

// Close releases the trace output, if the emulator opened one.
func (e *Emulator) Close() error {
	if e.traceOut == nil {
		return nil
	}
	return e.traceOut.Close()
}

// Result is the outcome of running a single ROM.
type Result struct {
	Path  string
	State snapshot.CPU
	Err   error // halt reason, nil if the trap address was reached
}

// RunBatch runs each ROM on its own console, concurrently. Loading errors
// abort the whole batch, execution errors are reported per ROM.
func RunBatch(ctx context.Context, paths []string, cfg Config) ([]Result, error) {
	if len(paths) > 1 && cfg.Trace.Enabled {
		return nil, errors.New("tracing is only supported with a single ROM")
	}

	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			rom, err := ines.Open(path)
			if err != nil {
				return err
			}
			e, err := Launch(rom, cfg, nil)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			defer e.Close()

			err = e.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return err
			}
			results[i] = Result{
				Path:  path,
				State: e.NES.CPU.SaveState(),
				Err:   err,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens FILE|stdout|stderr for writing.
func openOutput(name string) (io.WriteCloser, error) {
	switch name {
	case "", "stdout":
		return nopCloser{os.Stdout}, nil
	case "stderr":
		return nopCloser{os.Stderr}, nil
	}
	return os.Create(name)
}
