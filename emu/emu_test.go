package emu

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/ines"
)

// testProgram loads A and X, stores A in zero page then loops forever.
var testProgram = []byte{
	0xA9, 0x42, // 8000 LDA #$42
	0x85, 0x10, // 8002 STA $10
	0xE8,             // 8004 INX
	0x4C, 0x05, 0x80, // 8005 JMP $8005
}

const loopAddr = 0x8005

func buildRom(tb testing.TB, prog []byte) []byte {
	tb.Helper()

	prg := make([]byte, ines.PRGBankSize)
	copy(prg, prog)
	// Reset vector at 0xFFFC, PRG is mirrored at 0xC000.
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80

	var buf bytes.Buffer
	buf.WriteString(ines.Magic)
	buf.Write([]byte{1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	buf.Write(prg)
	buf.Write(make([]byte, ines.CHRBankSize))
	return buf.Bytes()
}

func loadRom(tb testing.TB, prog []byte) *ines.Rom {
	tb.Helper()

	var rom ines.Rom
	if _, err := rom.ReadFrom(bytes.NewReader(buildRom(tb, prog))); err != nil {
		tb.Fatal(err)
	}
	return &rom
}

func writeRom(tb testing.TB, dir, name string, prog []byte) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buildRom(tb, prog), 0644); err != nil {
		tb.Fatal(err)
	}
	return path
}

func TestMain(m *testing.M) {
	log.Disable()
	os.Exit(m.Run())
}

func TestLaunchRunUntilTrap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Run.StopAddr = addr(loopAddr)

	e, err := Launch(loadRom(t, testProgram), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	cpu := e.NES.CPU
	if cpu.A.Raw() != 0x42 || cpu.X.Raw() != 0x01 {
		t.Errorf("A=%02X X=%02X, want A=42 X=01", cpu.A.Raw(), cpu.X.Raw())
	}
	if cpu.PC.Raw() != loopAddr {
		t.Errorf("PC=%04X, want %04X", cpu.PC.Raw(), loopAddr)
	}
	// RAM is mirrored every 2KB.
	if got := cpu.Bus.Peek8(0x0810); got != 0x42 {
		t.Errorf("mem[0x0810] = %02X, want 42", got)
	}
}

func TestRunMaxCycles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Run.MaxCycles = 1000

	e, err := Launch(loadRom(t, testProgram), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	err = e.Run(context.Background())
	if !errors.Is(err, hw.ErrMaxCycles) {
		t.Fatalf("Run() = %v, want ErrMaxCycles", err)
	}
	if e.NES.CPU.Cycles < 1000 {
		t.Errorf("CPU ran %d cycles, want at least 1000", e.NES.CPU.Cycles)
	}
}

func TestRunCanceled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Run.MaxCycles = 0

	e, err := Launch(loadRom(t, testProgram), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
}

func TestLaunchStartPC(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Run.StartPC = addr(0x8004)
	cfg.Run.StopAddr = addr(loopAddr)

	e, err := Launch(loadRom(t, testProgram), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if cpu := e.NES.CPU; cpu.A.Raw() != 0 || cpu.X.Raw() != 1 {
		t.Errorf("A=%02X X=%02X, want A=00 X=01", cpu.A.Raw(), cpu.X.Raw())
	}
}

// Address 0 is a valid start and stop address.
func TestLaunchZeroAddresses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Run.StartPC = addr(0)
	cfg.Run.StopAddr = addr(0)
	cfg.Run.MaxCycles = 1000

	e, err := Launch(loadRom(t, testProgram), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	cpu := e.NES.CPU
	if cpu.PC.Raw() != 0 || !errors.Is(cpu.HaltReason(), hw.ErrTrap) {
		t.Errorf("PC=%04X halt=%v, want PC=0000 halted on trap", cpu.PC.Raw(), cpu.HaltReason())
	}
}

func TestLaunchTrace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Run.StopAddr = addr(loopAddr)
	cfg.Trace.PPUColumns = false

	var trace bytes.Buffer
	e, err := Launch(loadRom(t, testProgram), cfg, &trace)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(trace.String(), "\n"), "\n")
	want := []struct{ prefix, suffix string }{
		{"8000  A9 42     LDA #$42", "A:00 X:00 Y:00 P:24 SP:FD"},
		{"8002  85 10     STA $10 = 00", "A:42 X:00 Y:00 P:24 SP:FD"},
		{"8004  E8        INX", "A:42 X:00 Y:00 P:24 SP:FD"},
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d trace lines, want %d:\n%s", len(lines), len(want), trace.String())
	}
	for i, w := range want {
		if !strings.HasPrefix(lines[i], w.prefix) || !strings.HasSuffix(lines[i], w.suffix) {
			t.Errorf("line %d:\ngot  %q\nwant %q ... %q", i, lines[i], w.prefix, w.suffix)
		}
		if idx := strings.Index(lines[i], "A:"); idx != 48 {
			t.Errorf("line %d: registers start at column %d, want 48", i, idx)
		}
	}
}

func TestLaunchUnsupportedMapper(t *testing.T) {
	rom := loadRom(t, testProgram)
	raw := buildRom(t, testProgram)
	raw[6] = 0x10 // mapper 1
	if _, err := rom.ReadFrom(bytes.NewReader(raw)); err != nil {
		t.Fatal(err)
	}

	if _, err := Launch(rom, DefaultConfig(), nil); err == nil {
		t.Fatal("Launch should have failed with an unsupported mapper")
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	undecodable := []byte{0xA2, 0x07, 0x02} // LDX #$07, JAM

	paths := []string{
		writeRom(t, dir, "loop.nes", testProgram),
		writeRom(t, dir, "jam.nes", undecodable),
	}

	cfg := DefaultConfig()
	cfg.Run.StopAddr = addr(loopAddr)
	results, err := RunBatch(context.Background(), paths, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if results[0].Err != nil {
		t.Errorf("%s: unexpected error %v", results[0].Path, results[0].Err)
	}
	if results[0].State.A != 0x42 {
		t.Errorf("%s: A=%02X, want 42", results[0].Path, results[0].State.A)
	}

	if !errors.Is(results[1].Err, hw.ErrUndecodableOpcode) {
		t.Errorf("%s: got error %v, want ErrUndecodableOpcode", results[1].Path, results[1].Err)
	}
	if !results[1].State.Halted || results[1].State.X != 0x07 {
		t.Errorf("%s: unexpected state %+v", results[1].Path, results[1].State)
	}
}

func TestRunBatchMissingRom(t *testing.T) {
	paths := []string{filepath.Join(t.TempDir(), "missing.nes")}
	if _, err := RunBatch(context.Background(), paths, DefaultConfig()); err == nil {
		t.Fatal("RunBatch should have failed")
	}
}
