package hw

import (
	"context"
	"errors"

	"nescore/emu/log"
	"nescore/hw/hwio"
	"nescore/hw/snapshot"
	"nescore/ines"
)

// ErrMaxCycles is returned by RunUntilHalt when the cycle budget is exhausted
// before the CPU halts.
var ErrMaxCycles = errors.New("maximum number of cycles reached")

// NES wires a CPU, a PPU and the cartridge together.
type NES struct {
	CPU *CPU
	PPU *PPU
	RAM hwio.Mem

	Mapper MapperDesc

	io hwio.Device // APU and I/O registers, not emulated

	ticks int // master clock in PPU dots
}

func NewNES() *NES {
	nes := &NES{
		CPU: NewCPU(hwio.NewTable("cpu")),
		PPU: NewPPU(),
		RAM: hwio.Mem{
			Name:  "RAM",
			Data:  make([]byte, 0x800),
			VSize: 0x2000,
		},
	}
	nes.CPU.PPU = nes.PPU
	nes.io = hwio.Device{
		Name:    "APU/IO",
		Size:    0x20,
		ReadCb:  openBus,
		PeekCb:  openBus,
		WriteCb: func(addr uint16, val uint8) {
			log.ModBus.DebugZ("write to unemulated register").
				Hex16("addr", addr).
				Hex8("val", val).
				End()
		},
	}
	nes.PPU.NMI = nes.CPU.TriggerNMI
	return nes
}

// openBus is the value read from registers that are not emulated.
func openBus(uint16) uint8 { return 0xFF }

// PowerUp maps the memory of the console and the cartridge onto the CPU bus
// then resets the console.
func (nes *NES) PowerUp(rom *ines.Rom) error {
	desc, err := FindMapper(rom.Mapper())
	if err != nil {
		return err
	}

	nes.CPU.Bus.Reset()
	clear(nes.RAM.Data)
	nes.CPU.Bus.MapMem(0x0000, &nes.RAM)
	nes.PPU.InitBus(nes.CPU.Bus)
	nes.CPU.Bus.MapDevice(0x4000, &nes.io)

	if err := desc.Load(rom, nes); err != nil {
		return err
	}
	nes.Mapper = desc
	nes.Reset()
	return nil
}

// Reset resets the CPU and the PPU. The PPU runs 21 dots during the 7 cycles
// of the CPU reset sequence.
func (nes *NES) Reset() {
	nes.PPU.Reset()
	nes.CPU.Reset()
	nes.ticks = 0
	for range 3 * nes.CPU.Cycles {
		nes.PPU.Tick()
	}
}

// Step advances the console by one PPU dot. The CPU is stepped every third
// dot, before the PPU, so that a traced instruction shows the PPU position
// at which it starts. It reports whether the CPU is halted.
func (nes *NES) Step() bool {
	halted := false
	if nes.ticks == 0 {
		halted = nes.CPU.Step().Status == StepHalted
	}
	nes.PPU.Tick()
	nes.ticks++
	if nes.ticks == 3 {
		nes.ticks = 0
	}
	return halted || nes.CPU.IsHalted()
}

// RunUntilHalt runs the console until the CPU halts, ctx is done, or the CPU
// has run maxCycles cycles (0 means no limit). It returns the halt reason.
func (nes *NES) RunUntilHalt(ctx context.Context, maxCycles int64) error {
	const checkEvery = 1 << 12

	start := nes.CPU.Cycles
	for n := 0; ; n++ {
		if nes.Step() {
			return nes.CPU.HaltReason()
		}
		if maxCycles > 0 && nes.CPU.Cycles-start >= maxCycles {
			return ErrMaxCycles
		}
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
}

func (nes *NES) SaveState() snapshot.NES {
	return snapshot.NES{
		CPU: nes.CPU.SaveState(),
		RAM: append([]byte(nil), nes.RAM.Data...),
	}
}

func (nes *NES) LoadState(s snapshot.NES) {
	nes.CPU.LoadState(s.CPU)
	copy(nes.RAM.Data, s.RAM)
}
