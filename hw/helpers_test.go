package hw

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"

	"nescore/hw/hwio"
)

/* general testing helpers */

func tcheck(tb testing.TB, err error) {
	if err == nil {
		return
	}

	tb.Helper()
	tb.Fatalf("fatal error:\n\n%s\n", err)
}

func hasPanicked(f func()) (yes bool, msg any) {
	defer func() {
		msg = recover()
		if msg != nil {
			yes = true
		}
	}()
	f()
	return yes, msg
}

type tbwriter struct{ tb testing.TB }

func (w tbwriter) Write(p []byte) (int, error) {
	w.tb.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

/* cpu specific testing helpers */

// loadCPUWith returns a reset CPU on a bus made of 64KB of flat memory,
// preloaded with dump.
func loadCPUWith(tb testing.TB, dump string) *CPU {
	tb.Helper()

	cpu := NewCPU(hwio.NewTable("cputest"))
	for _, dl := range loadDump(tb, dump) {
		for i, b := range dl.bytes[:dl.len] {
			cpu.Bus.Write8(dl.off+uint16(i), b)
		}
	}
	cpu.Reset()
	if testing.Verbose() {
		cpu.SetTraceOutput(tbwriter{tb})
	}
	return cpu
}

func wantMem8(t *testing.T, cpu *CPU, addr uint16, want uint8) {
	t.Helper()

	if got := cpu.Bus.Peek8(addr); got != want {
		t.Errorf("$%04X = %02X want %02X", addr, got, want)
	}
}

func wantMem(t *testing.T, cpu *CPU, dl dumpline) {
	t.Helper()

	mem := cpu.Bus.ReadRange(dl.off, dl.off+dl.len-1)
	if !bytes.Equal(mem, dl.bytes[:dl.len]) {
		t.Errorf("mem mismatch at 0x%04x.\ngot:  % x\nwant: % x", dl.off, mem, dl.bytes[:dl.len])
	}
}

func toUint(tb testing.TB, v any) uint {
	switch v := v.(type) {
	case int:
		return uint(v)
	case uint8:
		return uint(v)
	case uint16:
		return uint(v)
	}
	tb.Fatalf("unexpected state value %v (%T)", v, v)
	return 0
}

// runAndCheckState runs cpu for ncycles cycles, then checks the CPU state
// against states, a list of name/value pairs. Names are registers (A, X, Y,
// SP, PC, P), single flags prefixed with P (Pn, Pz, ...) or "mem" followed
// by a memory dump.
func runAndCheckState(t *testing.T, cpu *CPU, ncycles int64, states ...any) {
	t.Helper()

	if len(states)%2 != 0 {
		panic("odd number of states")
	}

	check := func(name string, got, want uint, width int) {
		t.Helper()
		if got != want {
			t.Errorf("got %s=$%0*X, want $%0*X", name, width, got, width, want)
		}
	}

	cpu.Run(ncycles)

	for i := 0; i < len(states); i += 2 {
		s := states[i].(string)
		switch {
		case s == "A":
			check("A", cpu.A.Uint(), toUint(t, states[i+1]), 2)
		case s == "X":
			check("X", cpu.X.Uint(), toUint(t, states[i+1]), 2)
		case s == "Y":
			check("Y", cpu.Y.Uint(), toUint(t, states[i+1]), 2)
		case s == "PC":
			check("PC", cpu.PC.Uint(), toUint(t, states[i+1]), 4)
		case s == "SP":
			check("SP", cpu.SP.Uint(), toUint(t, states[i+1]), 2)
		case s == "P":
			if got, want := cpu.Flags.Pack(), uint8(toUint(t, states[i+1])); got != want {
				t.Errorf("got P=$%02X(%s), want $%02X(%s)", got, Unpack(got), want, Unpack(want))
			}
		case len(s) == 2 && s[0] == 'P':
			bit := strings.IndexByte("czidbuvn", s[1])
			if bit < 0 {
				panic("unknown P bit: " + s)
			}
			got := uint(b2u8(cpu.Flags.Bit(bit)))
			check(s, got, toUint(t, states[i+1]), 1)
		case s == "mem":
			for _, line := range loadDump(t, states[i+1].(string)) {
				wantMem(t, cpu, line)
			}
		default:
			panic("unknown state: " + s)
		}
	}

	if t.Failed() {
		t.FailNow()
	}
}

type dumpline struct {
	off   uint16
	len   uint16
	bytes []byte
}

// loadDump parses a memory dump made of 'ADDR: hex bytes' lines. Empty lines
// and lines starting with # are ignored.
func loadDump(tb testing.TB, dump string) []dumpline {
	tb.Helper()

	var lines []dumpline
	scan := bufio.NewScanner(strings.NewReader(dump))
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		off, octets, ok := strings.Cut(line, ":")
		if !ok {
			tb.Fatalf("malformed line: %s", line)
		}

		ioff, err := strconv.ParseUint(off, 16, 16)
		if err != nil {
			tb.Fatalf("malformed offset %s: %s", off, err)
		}
		buf, err := hex.DecodeString(strings.ReplaceAll(octets, " ", ""))
		if err != nil {
			tb.Fatalf("hex decode: %s", err)
		}
		lines = append(lines, dumpline{off: uint16(ioff), len: uint16(len(buf)), bytes: buf})
	}
	if scan.Err() != nil {
		tb.Fatalf("scan error: %s", scan.Err())
	}

	return lines
}
