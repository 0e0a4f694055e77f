package hw

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"

	"nescore/hw/hwio"
	"nescore/hw/snapshot"
	"nescore/tests"
)

func TestOpcodeTable(t *testing.T) {
	undefined := map[uint8]bool{
		0x8B: true, 0x93: true, 0x9B: true, 0x9C: true,
		0x9E: true, 0x9F: true, 0xAB: true,
	}
	// JAMs
	for _, code := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		undefined[code] = true
	}

	ndefined := 0
	for code := range 256 {
		op := LookupOpcode(uint8(code))
		if undefined[uint8(code)] {
			if op.Defined() {
				t.Errorf("opcode %02X should be undefined, got %s", code, op.Name)
			}
			continue
		}
		if !op.Defined() {
			t.Errorf("opcode %02X is not defined", code)
			continue
		}
		ndefined++

		if len(op.Name) != 3 {
			t.Errorf("opcode %02X: bad mnemonic %q", code, op.Name)
		}
		if op.Cycles < 2 || op.Cycles > 8 {
			t.Errorf("opcode %02X %s: bad cycle count %d", code, op.Name, op.Cycles)
		}
		if op.Name == "NOP" && op.Illegal != (code != 0xEA) {
			t.Errorf("opcode %02X: only $EA is a legal NOP", code)
		}
	}
	if ndefined != 237 {
		t.Errorf("got %d defined opcodes, want 237", ndefined)
	}

	if op := LookupOpcode(0xEB); op.Name != "SBC" || !op.Illegal || op.Mode != IMM {
		t.Errorf("$EB = %+v, want illegal SBC immediate", op)
	}
}

func TestModeLen(t *testing.T) {
	want := map[Mode]int{
		IMP: 1, ACC: 1,
		IMM: 2, ZPG: 2, ZPX: 2, ZPY: 2, REL: 2, IDX: 2, IDY: 2,
		ABS: 3, ABX: 3, ABY: 3, IND: 3,
	}
	for m, n := range want {
		if m.Len() != n {
			t.Errorf("%s.Len() = %d, want %d", m, m.Len(), n)
		}
	}
}

// baseCycles is the documented NMOS 6502 cycle table, without page crossing
// and taken branch penalties. Zero marks opcodes the CPU halts on.
var baseCycles = [256]int{
	//0 1  2  3  4  5  6  7  8  9  A  B  C  D  E  F
	7, 6, 0, 8, 3, 3, 5, 5, 3, 2, 2, 2, 4, 4, 6, 6, // 0x00
	2, 5, 0, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 0x10
	6, 6, 0, 8, 3, 3, 5, 5, 4, 2, 2, 2, 4, 4, 6, 6, // 0x20
	2, 5, 0, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 0x30
	6, 6, 0, 8, 3, 3, 5, 5, 3, 2, 2, 2, 3, 4, 6, 6, // 0x40
	2, 5, 0, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 0x50
	6, 6, 0, 8, 3, 3, 5, 5, 4, 2, 2, 2, 5, 4, 6, 6, // 0x60
	2, 5, 0, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 0x70
	2, 6, 2, 6, 3, 3, 3, 3, 2, 2, 2, 0, 4, 4, 4, 4, // 0x80
	2, 6, 0, 0, 4, 4, 4, 4, 2, 5, 2, 0, 0, 5, 0, 0, // 0x90
	2, 6, 2, 6, 3, 3, 3, 3, 2, 2, 2, 0, 4, 4, 4, 4, // 0xA0
	2, 5, 0, 5, 4, 4, 4, 4, 2, 4, 2, 4, 4, 4, 4, 4, // 0xB0
	2, 6, 2, 8, 3, 3, 5, 5, 2, 2, 2, 2, 4, 4, 6, 6, // 0xC0
	2, 5, 0, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 0xD0
	2, 6, 2, 8, 3, 3, 5, 5, 2, 2, 2, 2, 4, 4, 6, 6, // 0xE0
	2, 5, 0, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 0xF0
}

func TestOpcodeCycles(t *testing.T) {
	for code, want := range baseCycles {
		op := LookupOpcode(uint8(code))
		if want == 0 {
			if op.Defined() {
				t.Errorf("opcode %02X %s: should be undefined", code, op.Name)
			}
			continue
		}
		if op.Cycles != want {
			t.Errorf("opcode %02X %s %s: %d cycles, want %d", code, op.Name, op.Mode, op.Cycles, want)
		}
	}
}

// The CPU reports the base cycles of the executed instruction, and drains
// them before fetching the next one.
func TestStepCycles(t *testing.T) {
	for code, want := range baseCycles {
		if want == 0 {
			continue
		}
		// Park the CPU on the opcode, with zeroed operands and the
		// vectors pointing back at the program.
		cpu := loadCPUWith(t, fmt.Sprintf(`
0600: %02x 00 00
FFFA: 00 06 00 06 00 06`, code))
		res := cpu.Step()
		if res.Status != StepRan || res.Cycles != want {
			t.Errorf("opcode %02X: Step() = %s %d cycles, want %s %d", code, res.Status, res.Cycles, StepRan, want)
			continue
		}
		if got := cpu.PendingCycles(); got != want-1 {
			t.Errorf("opcode %02X: %d pending cycles, want %d", code, got, want-1)
		}
	}
}

/* single step tests */

// stepState is the CPU and memory state of a single step test, in the
// format of the Tom Harte processor tests.
type stepState struct {
	CPU snapshot.CPU
	RAM [][2]int
}

type stepTest struct {
	Name    string
	Initial stepState
	Final   stepState
	Cycles  int
	Writes  [][2]int // bus writes, in order
}

func (s *stepState) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "pc":
			s.CPU.PC, err = d.UInt16()
		case "s":
			s.CPU.SP, err = d.UInt8()
		case "p":
			s.CPU.P, err = d.UInt8()
		case "a":
			s.CPU.A, err = d.UInt8()
		case "x":
			s.CPU.X, err = d.UInt8()
		case "y":
			s.CPU.Y, err = d.UInt8()
		case "ram":
			err = d.Arr(func(d *jx.Decoder) error {
				var cell [2]int
				i := 0
				err := d.Arr(func(d *jx.Decoder) error {
					v, err := d.Int()
					if i < len(cell) {
						cell[i] = v
					}
					i++
					return err
				})
				s.RAM = append(s.RAM, cell)
				return err
			})
		default:
			return d.Skip()
		}
		return err
	})
}

func decodeStepTests(buf []byte) ([]stepTest, error) {
	var all []stepTest
	err := jx.DecodeBytes(buf).Arr(func(d *jx.Decoder) error {
		var tt stepTest
		err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "name":
				s, err := d.Str()
				tt.Name = s
				return err
			case "initial":
				return tt.Initial.decode(d)
			case "final":
				return tt.Final.decode(d)
			case "cycles":
				return d.Arr(func(d *jx.Decoder) error {
					tt.Cycles++
					var (
						cell [2]int
						i    int
					)
					return d.Arr(func(d *jx.Decoder) error {
						defer func() { i++ }()
						if i < len(cell) {
							v, err := d.Int()
							cell[i] = v
							return err
						}
						kind, err := d.Str()
						if kind == "write" {
							tt.Writes = append(tt.Writes, cell)
						}
						return err
					})
				})
			}
			return d.Skip()
		})
		all = append(all, tt)
		return err
	})
	return all, err
}

// runStepTest executes a single instruction from tt initial state and
// returns the differences with its final state. Bits 4 and 5 of P are
// ignored, they don't exist in the register. If writes is not nil, it must be
// filled by the bus with every write and is checked against tt.Writes.
func runStepTest(cpu *CPU, tt stepTest, checkCycles bool, writes *[][2]int) []string {
	for _, cell := range tt.Initial.RAM {
		cpu.Bus.Write8(uint16(cell[0]), uint8(cell[1]))
	}
	cpu.LoadState(tt.Initial.CPU)
	if writes != nil {
		*writes = (*writes)[:0]
	}
	res := cpu.Step()

	var diffs []string
	if res.Status != StepRan {
		diffs = append(diffs, fmt.Sprintf("step status %s, halt reason: %v", res.Status, cpu.HaltReason()))
	}

	got := cpu.SaveState()
	want := tt.Final.CPU
	reg := func(name string, got, want uint16) {
		if got != want {
			diffs = append(diffs, fmt.Sprintf("%s=$%02X, want $%02X", name, got, want))
		}
	}
	reg("PC", got.PC, want.PC)
	reg("SP", uint16(got.SP), uint16(want.SP))
	reg("A", uint16(got.A), uint16(want.A))
	reg("X", uint16(got.X), uint16(want.X))
	reg("Y", uint16(got.Y), uint16(want.Y))
	if got.P&0xCF != want.P&0xCF {
		diffs = append(diffs, fmt.Sprintf("P=%s, want %s", Unpack(got.P), Unpack(want.P)))
	}
	if checkCycles && res.Cycles != tt.Cycles {
		diffs = append(diffs, fmt.Sprintf("cycles=%d, want %d", res.Cycles, tt.Cycles))
	}
	if writes != nil && len(*writes)+len(tt.Writes) != 0 && !cmp.Equal(*writes, tt.Writes) {
		diffs = append(diffs, fmt.Sprintf("bus writes %v, want %v", *writes, tt.Writes))
	}

	for _, cell := range tt.Final.RAM {
		addr, val := uint16(cell[0]), uint8(cell[1])
		if got := cpu.Bus.Peek8(addr); got != val {
			diffs = append(diffs, fmt.Sprintf("ram[$%04X]=$%02X, want $%02X", addr, got, val))
		}
	}

	// Leave memory clean for the next test.
	for _, cell := range tt.Initial.RAM {
		cpu.Bus.Write8(uint16(cell[0]), 0)
	}
	for _, cell := range tt.Final.RAM {
		cpu.Bus.Write8(uint16(cell[0]), 0)
	}
	return diffs
}

const stepVectors = `[
{"name": "69 adc overflow",
 "initial": {"pc": 1024, "s": 253, "a": 80, "x": 0, "y": 0, "p": 36, "ram": [[1024, 105], [1025, 80]]},
 "final":   {"pc": 1026, "s": 253, "a": 160, "x": 0, "y": 0, "p": 228, "ram": [[1024, 105], [1025, 80]]},
 "cycles": [[1024, 105, "read"], [1025, 80, "read"]]},
{"name": "c7 dcp",
 "initial": {"pc": 1024, "s": 253, "a": 5, "x": 0, "y": 0, "p": 36, "ram": [[1024, 199], [1025, 16], [16, 5]]},
 "final":   {"pc": 1026, "s": 253, "a": 5, "x": 0, "y": 0, "p": 37, "ram": [[16, 4]]},
 "cycles": [[1024, 199, "read"], [1025, 16, "read"], [16, 5, "read"], [16, 5, "write"], [16, 4, "write"]]},
{"name": "6c jmp page bug",
 "initial": {"pc": 1024, "s": 253, "a": 0, "x": 0, "y": 0, "p": 36, "ram": [[1024, 108], [1025, 255], [1026, 2], [767, 0], [512, 3], [768, 4]]},
 "final":   {"pc": 768, "s": 253, "a": 0, "x": 0, "y": 0, "p": 36, "ram": []},
 "cycles": [[1024, 108, "read"], [1025, 255, "read"], [1026, 2, "read"], [767, 0, "read"], [512, 3, "read"]]},
{"name": "a7 lax",
 "initial": {"pc": 1024, "s": 253, "a": 0, "x": 0, "y": 0, "p": 38, "ram": [[1024, 167], [1025, 32], [32, 128]]},
 "final":   {"pc": 1026, "s": 253, "a": 128, "x": 128, "y": 0, "p": 164, "ram": [[32, 128]]},
 "cycles": [[1024, 167, "read"], [1025, 32, "read"], [32, 128, "read"]]},
{"name": "eb sbc",
 "initial": {"pc": 1024, "s": 253, "a": 0, "x": 0, "y": 0, "p": 37, "ram": [[1024, 235], [1025, 1]]},
 "final":   {"pc": 1026, "s": 253, "a": 255, "x": 0, "y": 0, "p": 164, "ram": []},
 "cycles": [[1024, 235, "read"], [1025, 1, "read"]]},
{"name": "28 plp",
 "initial": {"pc": 1024, "s": 250, "a": 0, "x": 0, "y": 0, "p": 36, "ram": [[1024, 40], [507, 255]]},
 "final":   {"pc": 1025, "s": 251, "a": 0, "x": 0, "y": 0, "p": 239, "ram": []},
 "cycles": [[1024, 40, "read"], [1025, 0, "read"], [506, 0, "read"], [507, 255, "read"]]},
{"name": "20 jsr",
 "initial": {"pc": 1024, "s": 253, "a": 0, "x": 0, "y": 0, "p": 36, "ram": [[1024, 32], [1025, 0], [1026, 7]]},
 "final":   {"pc": 1792, "s": 251, "a": 0, "x": 0, "y": 0, "p": 36, "ram": [[509, 4], [508, 2]]},
 "cycles": [[1024, 32, "read"], [1025, 0, "read"], [509, 0, "read"], [509, 4, "write"], [508, 2, "write"], [1026, 7, "read"]]},
{"name": "07 slo",
 "initial": {"pc": 1024, "s": 253, "a": 1, "x": 0, "y": 0, "p": 36, "ram": [[1024, 7], [1025, 16], [16, 129]]},
 "final":   {"pc": 1026, "s": 253, "a": 3, "x": 0, "y": 0, "p": 37, "ram": [[16, 2]]},
 "cycles": [[1024, 7, "read"], [1025, 16, "read"], [16, 129, "read"], [16, 129, "write"], [16, 2, "write"]]},
{"name": "27 rla",
 "initial": {"pc": 1024, "s": 253, "a": 255, "x": 0, "y": 0, "p": 37, "ram": [[1024, 39], [1025, 16], [16, 64]]},
 "final":   {"pc": 1026, "s": 253, "a": 129, "x": 0, "y": 0, "p": 164, "ram": [[16, 129]]},
 "cycles": [[1024, 39, "read"], [1025, 16, "read"], [16, 64, "read"], [16, 64, "write"], [16, 129, "write"]]},
{"name": "47 sre",
 "initial": {"pc": 1024, "s": 253, "a": 1, "x": 0, "y": 0, "p": 36, "ram": [[1024, 71], [1025, 16], [16, 3]]},
 "final":   {"pc": 1026, "s": 253, "a": 0, "x": 0, "y": 0, "p": 39, "ram": [[16, 1]]},
 "cycles": [[1024, 71, "read"], [1025, 16, "read"], [16, 3, "read"], [16, 3, "write"], [16, 1, "write"]]},
{"name": "67 rra",
 "initial": {"pc": 1024, "s": 253, "a": 16, "x": 0, "y": 0, "p": 36, "ram": [[1024, 103], [1025, 16], [16, 1]]},
 "final":   {"pc": 1026, "s": 253, "a": 17, "x": 0, "y": 0, "p": 36, "ram": [[16, 0]]},
 "cycles": [[1024, 103, "read"], [1025, 16, "read"], [16, 1, "read"], [16, 1, "write"], [16, 0, "write"]]},
{"name": "e7 isb",
 "initial": {"pc": 1024, "s": 253, "a": 5, "x": 0, "y": 0, "p": 37, "ram": [[1024, 231], [1025, 16], [16, 4]]},
 "final":   {"pc": 1026, "s": 253, "a": 0, "x": 0, "y": 0, "p": 39, "ram": [[16, 5]]},
 "cycles": [[1024, 231, "read"], [1025, 16, "read"], [16, 4, "read"], [16, 4, "write"], [16, 5, "write"]]},
{"name": "87 sax",
 "initial": {"pc": 1024, "s": 253, "a": 243, "x": 60, "y": 0, "p": 36, "ram": [[1024, 135], [1025, 16], [16, 255]]},
 "final":   {"pc": 1026, "s": 253, "a": 243, "x": 60, "y": 0, "p": 36, "ram": [[16, 48]]},
 "cycles": [[1024, 135, "read"], [1025, 16, "read"], [16, 48, "write"]]},
{"name": "0b anc",
 "initial": {"pc": 1024, "s": 253, "a": 240, "x": 0, "y": 0, "p": 36, "ram": [[1024, 11], [1025, 128]]},
 "final":   {"pc": 1026, "s": 253, "a": 128, "x": 0, "y": 0, "p": 165, "ram": []},
 "cycles": [[1024, 11, "read"], [1025, 128, "read"]]},
{"name": "4b alr",
 "initial": {"pc": 1024, "s": 253, "a": 255, "x": 0, "y": 0, "p": 36, "ram": [[1024, 75], [1025, 3]]},
 "final":   {"pc": 1026, "s": 253, "a": 1, "x": 0, "y": 0, "p": 37, "ram": []},
 "cycles": [[1024, 75, "read"], [1025, 3, "read"]]},
{"name": "6b arr",
 "initial": {"pc": 1024, "s": 253, "a": 255, "x": 0, "y": 0, "p": 37, "ram": [[1024, 107], [1025, 192]]},
 "final":   {"pc": 1026, "s": 253, "a": 224, "x": 0, "y": 0, "p": 165, "ram": []},
 "cycles": [[1024, 107, "read"], [1025, 192, "read"]]},
{"name": "cb sbx",
 "initial": {"pc": 1024, "s": 253, "a": 240, "x": 63, "y": 0, "p": 36, "ram": [[1024, 203], [1025, 16]]},
 "final":   {"pc": 1026, "s": 253, "a": 240, "x": 32, "y": 0, "p": 37, "ram": []},
 "cycles": [[1024, 203, "read"], [1025, 16, "read"]]},
{"name": "bb las",
 "initial": {"pc": 1024, "s": 253, "a": 0, "x": 0, "y": 4, "p": 36, "ram": [[1024, 187], [1025, 0], [1026, 3], [772, 245]]},
 "final":   {"pc": 1027, "s": 245, "a": 245, "x": 245, "y": 4, "p": 164, "ram": [[772, 245]]},
 "cycles": [[1024, 187, "read"], [1025, 0, "read"], [1026, 3, "read"], [772, 245, "read"]]}
]`

func TestSingleStepVectors(t *testing.T) {
	all, err := decodeStepTests([]byte(stepVectors))
	tcheck(t, err)
	if len(all) != 18 {
		t.Fatalf("decoded %d tests, want 18", len(all))
	}

	// Every bus access goes through a device covering the whole address
	// space, so that writes can be recorded.
	var (
		ram    [0x10000]uint8
		writes [][2]int
	)
	bus := hwio.NewTable("singlestep")
	bus.MapDevice(0x0000, &hwio.Device{
		Name:   "ram",
		Size:   len(ram),
		ReadCb: func(addr uint16) uint8 { return ram[addr] },
		PeekCb: func(addr uint16) uint8 { return ram[addr] },
		WriteCb: func(addr uint16, val uint8) {
			ram[addr] = val
			writes = append(writes, [2]int{int(addr), int(val)})
		},
	})

	cpu := NewCPU(bus)
	for _, tt := range all {
		t.Run(tt.Name, func(t *testing.T) {
			for _, diff := range runStepTest(cpu, tt, true, &writes) {
				t.Error(diff)
			}
		})
	}
}

// TestProcessorTests runs the Tom Harte nes6502 processor tests, 10000
// single instruction tests per opcode. Cycles are not checked since page
// crossings and taken branches do not add cycles.
func TestProcessorTests(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long test")
	}

	dir := tests.TomHartePath(t)
	for code := range 256 {
		op := LookupOpcode(uint8(code))
		opstr := fmt.Sprintf("%02x", code)
		if !op.Defined() {
			continue
		}

		t.Run(opstr+"_"+op.Name, func(t *testing.T) {
			t.Parallel()

			buf, err := os.ReadFile(filepath.Join(dir, opstr+".json"))
			tcheck(t, err)
			all, err := decodeStepTests(buf)
			tcheck(t, err)

			const maxErrors = 10
			nerrs := 0
			cpu := NewCPU(hwio.NewTable("singlestep"))
			for _, tt := range all {
				diffs := runStepTest(cpu, tt, false, nil)
				if len(diffs) == 0 {
					continue
				}
				t.Errorf("%s: %v", tt.Name, diffs)
				if nerrs++; nerrs == maxErrors {
					t.Fatalf("too many errors")
				}
			}
		})
	}
}
