package hw

import (
	"errors"
	"fmt"
	"io"

	"nescore/emu/log"
	"nescore/hw/fixed"
	"nescore/hw/hwio"
	"nescore/hw/snapshot"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request
)

// Reasons for which the CPU halts, returned by HaltReason.
var (
	ErrUndecodableOpcode = errors.New("undecodable opcode")
	ErrNotReset          = errors.New("cpu has not been reset")
	ErrTrap              = errors.New("trap address reached")
)

// StepStatus tells what a call to Step did.
type StepStatus uint8

//go:generate go tool stringer -type=StepStatus -trimprefix=Step

const (
	StepDraining StepStatus = iota // previous instruction still consuming its cycles
	StepRan                        // an instruction or an interrupt sequence ran
	StepHalted                     // the CPU is halted
)

type StepResult struct {
	Status StepStatus
	Cycles int // cycles taken by what ran, only set with StepRan
}

type CPU struct {
	Bus *hwio.Table
	PPU *PPU // non-nil when there's a PPU.

	// cpu registers
	A, X, Y fixed.Byte
	SP      fixed.Byte
	PC      fixed.Word
	Flags   Status
	P       uint8 // packed Flags, refreshed after each instruction

	Cycles int64 // CPU cycles

	pending int   // cycles left to drain before next fetch
	ready   bool  // set by Reset
	halted  error // non-nil once halted

	trap    uint16
	hasTrap bool

	nmi bool // edge latched, serviced at next instruction boundary
	irq bool // level

	// Non-nil when execution tracing is enabled.
	tracer *tracer
}

// NewCPU creates a CPU connected to bus. The CPU has to be reset before it
// can run.
func NewCPU(bus *hwio.Table) *CPU {
	return &CPU{
		Bus: bus,
		A:   fixed.I8(0),
		X:   fixed.I8(0),
		Y:   fixed.I8(0),
		SP:  fixed.U8(0xFD),
		PC:  fixed.U16(0),
	}
}

// Reset puts the CPU in its power-up state and loads PC from the reset
// vector.
func (c *CPU) Reset() {
	c.A = fixed.I8(0)
	c.X = fixed.I8(0)
	c.Y = fixed.I8(0)
	c.SP = fixed.U8(0xFD)
	c.Flags = Status{IntDisable: true}
	c.P = c.Flags.Pack()

	// Directly read from the bus to avoid side effects.
	c.PC = c.read16(ResetVector)

	// The reset sequence takes 7 cycles.
	c.Cycles = 7
	c.pending = 0
	c.halted = nil
	c.hasTrap = false
	c.nmi = false
	c.irq = false
	c.ready = true
}

// ResetAutomation resets the CPU to run a test program without the help of a
// PPU (nestest automation mode). Execution starts at start and the CPU halts
// with ErrTrap when PC reaches stop. stop-1 is pushed on an empty stack, so
// a final RTS from the program lands on stop.
func (c *CPU) ResetAutomation(start, stop uint16) {
	c.Reset()
	c.SP = fixed.U8(0xFF)
	c.push16(fixed.U16(int(stop) - 1))
	c.PC = fixed.U16(int(start))
	c.SetTrap(stop)
}

// SetTrap makes the CPU halt with ErrTrap when PC reaches addr.
func (c *CPU) SetTrap(addr uint16) {
	c.trap = addr
	c.hasTrap = true
}

func (c *CPU) ClearTrap() {
	c.hasTrap = false
}

// TriggerNMI latches a non-maskable interrupt.
func (c *CPU) TriggerNMI() {
	c.nmi = true
}

// SetIRQ sets the level of the IRQ line.
func (c *CPU) SetIRQ(active bool) {
	c.irq = active
}

// Step advances the CPU by one cycle. A cycle either drains the cycles of the
// last instruction, or executes a whole new instruction whose cycles are
// then drained by the following calls.
func (c *CPU) Step() StepResult {
	if c.pending > 0 {
		c.pending--
		return StepResult{Status: StepDraining}
	}
	if c.halted != nil {
		return StepResult{Status: StepHalted}
	}
	if !c.ready {
		c.halt(ErrNotReset)
		return StepResult{Status: StepHalted}
	}
	if c.hasTrap && c.PC.Raw() == c.trap {
		c.halt(ErrTrap)
		return StepResult{Status: StepHalted}
	}

	var cycles int
	switch {
	case c.nmi:
		c.nmi = false
		c.interrupt(NMIVector)
		cycles = 7
	case c.irq && !c.Flags.IntDisable:
		c.interrupt(IRQVector)
		cycles = 7
	default:
		c.traceOp()

		pc := c.PC
		opcode := c.Bus.Read8(pc.Raw(), false)
		c.PC = pc.Add(1)

		op := &ops[opcode]
		if !op.Defined() {
			c.halt(fmt.Errorf("%w $%02X at $%04X", ErrUndecodableOpcode, opcode, pc.Raw()))
			return StepResult{Status: StepHalted}
		}

		oper := c.decode(c.PC, op.Mode, false)
		c.PC = c.PC.Add(op.Len() - 1)
		op.exec(c, oper)
		cycles = op.Cycles
	}

	c.P = c.Flags.Pack()
	c.pending = cycles - 1
	c.Cycles += int64(cycles)
	return StepResult{Status: StepRan, Cycles: cycles}
}

// Run steps the CPU until it halts or ncycles cycles have elapsed, and
// returns the halt reason, if any.
func (c *CPU) Run(ncycles int64) error {
	until := c.Cycles + ncycles
	for c.Cycles < until {
		if c.Step().Status == StepHalted {
			break
		}
	}
	return c.halted
}

func (c *CPU) interrupt(vector uint16) {
	c.push16(c.PC)
	c.push8(fixed.U8(int(c.Flags.Pack() &^ (1 << Break))))
	c.Flags.IntDisable = true
	c.PC = c.read16(vector)
}

func (c *CPU) halt(err error) {
	c.halted = err
	if errors.Is(err, ErrTrap) {
		log.ModCPU.InfoZ("CPU reached trap address").
			Hex16("PC", c.PC.Raw()).
			End()
		return
	}
	log.ModCPU.WarnZ("CPU halted").
		Hex16("PC", c.PC.Raw()).
		Error("reason", err).
		End()
}

func (c *CPU) IsHalted() bool {
	return c.halted != nil
}

// HaltReason returns why the CPU halted, or nil if it's running.
func (c *CPU) HaltReason() error {
	return c.halted
}

// PendingCycles returns the number of cycles the last instruction still has
// to consume.
func (c *CPU) PendingCycles() int {
	return c.pending
}

func (c *CPU) read8(addr uint16) fixed.Byte {
	return fixed.U8(int(c.Bus.Read8(addr, false)))
}

func (c *CPU) write8(addr uint16, v fixed.Byte) {
	c.Bus.Write8(addr, v.Raw())
}

func (c *CPU) read16(addr uint16) fixed.Word {
	return fixed.U16(int(hwio.Read16(c.Bus, addr)))
}

/* state snapshot */

func (c *CPU) SaveState() snapshot.CPU {
	return snapshot.CPU{
		PC:      c.PC.Raw(),
		SP:      c.SP.Raw(),
		P:       c.Flags.Pack(),
		A:       c.A.Raw(),
		X:       c.X.Raw(),
		Y:       c.Y.Raw(),
		Cycles:  c.Cycles,
		Pending: c.pending,
		Halted:  c.halted != nil,
	}
}

// LoadState restores the registers from a snapshot. The CPU is ready to run
// afterwards, unless the snapshot was taken on a halted CPU.
func (c *CPU) LoadState(s snapshot.CPU) {
	c.PC = fixed.U16(int(s.PC))
	c.SP = fixed.U8(int(s.SP))
	c.A = fixed.I8(int(s.A))
	c.X = fixed.I8(int(s.X))
	c.Y = fixed.I8(int(s.Y))
	c.Flags = Unpack(s.P)
	c.P = c.Flags.Pack()
	c.Cycles = s.Cycles
	c.pending = s.Pending
	c.ready = true
	c.halted = nil
	if s.Halted {
		c.halted = errors.New("halted in snapshot")
	}
}

/* tracing */

// SetTraceOutput enables the execution trace, one line per instruction is
// written to w before the instruction executes. A nil w disables tracing.
func (c *CPU) SetTraceOutput(w io.Writer) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w, d: c}
}

func (c *CPU) traceOp() {
	if c.tracer == nil {
		return
	}
	state := cpuState{
		A:     c.A.Raw(),
		X:     c.X.Raw(),
		Y:     c.Y.Raw(),
		P:     c.P,
		SP:    c.SP.Raw(),
		PC:    c.PC.Raw(),
		Clock: c.Cycles,
	}
	if c.PPU != nil {
		state.hasPPU = true
		state.Scanline, state.PPUCycle = c.PPU.Position()
	}
	c.tracer.write(state)
}
