package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"text/tabwriter"

	"nescore/emu"
	"nescore/emu/log"
	"nescore/hw"
	"nescore/ines"
)

func main() {
	cfg := parseArgs(os.Args[1:])

	switch cfg.mode {
	case romInfosMode:
		rom, err := ines.Open(cfg.RomInfos.RomPath)
		checkf(err, "failed to open rom")
		rom.PrintInfos(os.Stdout)
	case opcodesMode:
		printOpcodes(os.Stdout, cfg.Opcodes.Illegal)
	case configMode:
		writeConfig(cfg.Config)
	case versionMode:
		printVersion()
	case runMode:
		os.Exit(run(cfg.Run, cfg.Log))
	}
}

func run(args Run, logmask logModMask) int {
	appcfg := emu.LoadConfigOrDefault()
	if args.Config != "" {
		var err error
		appcfg, err = emu.LoadConfig(args.Config)
		checkf(err, "failed to load configuration")
	}

	// --log takes precedence over the configuration file.
	if logmask == 0 {
		mask, err := appcfg.General.LogMask()
		checkf(err, "invalid configuration")
		log.EnableDebugModules(mask)
	}

	if args.PC != nil {
		pc := uint16(*args.PC)
		appcfg.Run.StartPC = &pc
	}
	if args.Stop != nil {
		stop := uint16(*args.Stop)
		appcfg.Run.StopAddr = &stop
	}
	if args.Nestest {
		appcfg.Run.Nestest = true
	}
	if args.MaxCycles >= 0 {
		appcfg.Run.MaxCycles = args.MaxCycles
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var results []emu.Result
	if args.Trace != nil {
		if len(args.RomPaths) != 1 {
			fatalf("--trace requires a single ROM")
		}
		defer args.Trace.Close()
		results = []emu.Result{runTraced(ctx, args.RomPaths[0], appcfg, args.Trace)}
	} else {
		var err error
		results, err = emu.RunBatch(ctx, args.RomPaths, appcfg)
		checkf(err, "failed to run")
	}

	code := 0
	for _, res := range results {
		if res.Err != nil {
			code = 1
		}
		printResult(os.Stdout, res, args.State)
	}
	return code
}

func runTraced(ctx context.Context, path string, cfg emu.Config, trace io.Writer) emu.Result {
	rom, err := ines.Open(path)
	checkf(err, "failed to open rom")

	e, err := emu.Launch(rom, cfg, trace)
	checkf(err, "failed to launch emulator")
	defer e.Close()

	err = e.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fatalf("interrupted")
	}
	return emu.Result{
		Path:  path,
		State: e.NES.CPU.SaveState(),
		Err:   err,
	}
}

func printResult(w io.Writer, res emu.Result, withState bool) {
	status := "ok"
	if res.Err != nil {
		status = res.Err.Error()
	}
	fmt.Fprintf(w, "%s: PC=$%04X cycles=%d: %s\n", res.Path, res.State.PC, res.State.Cycles, status)
	if withState {
		buf, err := res.State.MarshalJSON()
		checkf(err, "failed to encode state")
		fmt.Fprintf(w, "%s\n", buf)
	}
}

func printOpcodes(w io.Writer, illegalOnly bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OPCODE\tNAME\tMODE\tLEN\tCYCLES\tILLEGAL")
	for code := range 256 {
		op := hw.LookupOpcode(uint8(code))
		if !op.Defined() {
			continue
		}
		if illegalOnly && !op.Illegal {
			continue
		}
		fmt.Fprintf(tw, "$%02X\t%s\t%s\t%d\t%d\t%t\n", code, op.Name, op.Mode, op.Len(), op.Cycles, op.Illegal)
	}
	tw.Flush()
}

func writeConfig(args Config) {
	path := args.Path
	if path == "" {
		var err error
		path, err = emu.ConfigPath()
		checkf(err, "failed to locate user config directory")
	}
	if _, err := os.Stat(path); err == nil && !args.Force {
		fatalf("%s already exists, use --force to overwrite it", path)
	}
	checkf(emu.SaveConfig(path, emu.DefaultConfig()), "failed to write configuration")
	fmt.Println("configuration written to", path)
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("nescore", version)
}
