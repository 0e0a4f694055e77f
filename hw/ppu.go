package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
)

const (
	NumCycles    = 341 // Number of dots per scanline.
	NumScanlines = 262 // Number of scanlines per frame.

	vblankScanline    = 241
	preRenderScanline = 261
)

// PPU register indexes, from 0x2000.
const (
	PPUCTRL = iota
	PPUMASK
	PPUSTATUS
	OAMADDR
	OAMDATA
	PPUSCROLL
	PPUADDR
	PPUDATA
)

const (
	// PPUCTRL: generate an NMI at the start of vblank.
	ctrlNMI = 7
	// PPUCTRL: VRAM address increment per PPUDATA access (0: add 1; 1: add 32).
	ctrlVRAMIncr = 2

	// PPUSTATUS: vertical blank has started. Set at dot 1 of line 241,
	// cleared after reading $2002 and at dot 1 of the pre-render line.
	statusVblank = 7
)

// PPU is the register interface and timing of the picture processing unit.
// It keeps the dot and scanline counters, raises vblank and its NMI, and
// gives access to VRAM through PPUADDR/PPUDATA. Nothing is rendered.
type PPU struct {
	Regs [8]hwio.Reg8
	VRAM [0x4000]uint8
	OAM  [0x100]uint8

	Cycle    int // Current dot in scanline
	Scanline int // Current scanline
	Frame    int64

	// NMI is called when an NMI must be raised.
	NMI func()

	vramAddr uint16
	tmpAddr  uint16
	latch    bool // PPUSCROLL/PPUADDR write toggle
	readBuf  uint8
}

func NewPPU() *PPU {
	p := &PPU{}
	p.Regs = [8]hwio.Reg8{
		PPUCTRL:   {Name: "PPUCTRL", Flags: hwio.WriteOnlyFlag, WriteCb: p.writePPUCTRL},
		PPUMASK:   {Name: "PPUMASK", Flags: hwio.WriteOnlyFlag},
		PPUSTATUS: {Name: "PPUSTATUS", Flags: hwio.ReadOnlyFlag, ReadCb: p.readPPUSTATUS},
		OAMADDR:   {Name: "OAMADDR", Flags: hwio.WriteOnlyFlag},
		OAMDATA:   {Name: "OAMDATA", ReadCb: p.readOAMDATA, PeekCb: p.readOAMDATA, WriteCb: p.writeOAMDATA},
		PPUSCROLL: {Name: "PPUSCROLL", Flags: hwio.WriteOnlyFlag, WriteCb: p.writePPUSCROLL},
		PPUADDR:   {Name: "PPUADDR", Flags: hwio.WriteOnlyFlag, WriteCb: p.writePPUADDR},
		PPUDATA:   {Name: "PPUDATA", ReadCb: p.readPPUDATA, PeekCb: p.peekPPUDATA, WriteCb: p.writePPUDATA},
	}
	return p
}

// InitBus maps the 8 PPU registers, mirrored from 0x2000 to 0x3FFF.
func (p *PPU) InitBus(bus *hwio.Table) {
	bus.MapDevice(0x2000, &hwio.Device{
		Name:    "PPU",
		Size:    0x2000,
		ReadCb:  func(addr uint16) uint8 { return p.Regs[addr&7].Read8(addr, false) },
		PeekCb:  func(addr uint16) uint8 { return p.Regs[addr&7].Read8(addr, true) },
		WriteCb: func(addr uint16, val uint8) { p.Regs[addr&7].Write8(addr, val) },
	})
}

func (p *PPU) Reset() {
	p.Scanline = 0
	p.Cycle = 0
	p.Frame = 0
	p.latch = false
	for i := range p.Regs {
		p.Regs[i].Value = 0
	}
}

// Position returns the current scanline and dot.
func (p *PPU) Position() (scanline, dot int) {
	return p.Scanline, p.Cycle
}

// Tick advances the PPU by one dot.
func (p *PPU) Tick() {
	p.Cycle++
	if p.Cycle >= NumCycles {
		p.Cycle = 0
		p.Scanline++
		if p.Scanline >= NumScanlines {
			p.Scanline = 0
			p.Frame++
		}
	}

	if p.Cycle != 1 {
		return
	}
	switch p.Scanline {
	case vblankScanline:
		hwio.SetBit8(&p.Regs[PPUSTATUS].Value, statusVblank)
		if hwio.GetBit8(p.Regs[PPUCTRL].Value, ctrlNMI) {
			p.raiseNMI()
		}
	case preRenderScanline:
		p.Regs[PPUSTATUS].Value = 0
	}
}

func (p *PPU) raiseNMI() {
	log.ModPPU.DebugZ("raise NMI").
		Int("scanline", p.Scanline).
		Int64("frame", p.Frame).
		End()
	if p.NMI != nil {
		p.NMI()
	}
}

func (p *PPU) writePPUCTRL(old, val uint8) {
	log.ModPPU.DebugZ("Write to PPUCTRL").Hex8("val", val).End()

	// Enabling NMI during vblank raises it immediately.
	nmiOn := hwio.GetBit8(val, ctrlNMI) && !hwio.GetBit8(old, ctrlNMI)
	if nmiOn && hwio.GetBit8(p.Regs[PPUSTATUS].Value, statusVblank) {
		p.raiseNMI()
	}
	p.tmpAddr = (p.tmpAddr &^ 0x0C00) | uint16(val&0x03)<<10
}

func (p *PPU) readPPUSTATUS(val uint8) uint8 {
	hwio.ClearBit8(&p.Regs[PPUSTATUS].Value, statusVblank)
	p.latch = false
	return val
}

func (p *PPU) readOAMDATA(_ uint8) uint8 {
	return p.OAM[p.Regs[OAMADDR].Value]
}

func (p *PPU) writeOAMDATA(_, val uint8) {
	p.OAM[p.Regs[OAMADDR].Value] = val
	p.Regs[OAMADDR].Value++
}

func (p *PPU) writePPUSCROLL(_, val uint8) {
	p.latch = !p.latch
}

func (p *PPU) writePPUADDR(_, val uint8) {
	if !p.latch {
		p.tmpAddr = (p.tmpAddr & 0x00FF) | uint16(val&0x3F)<<8
	} else {
		p.tmpAddr = (p.tmpAddr & 0xFF00) | uint16(val)
		p.vramAddr = p.tmpAddr
	}
	p.latch = !p.latch
}

func (p *PPU) incVRAMaddr() {
	if hwio.GetBit8(p.Regs[PPUCTRL].Value, ctrlVRAMIncr) {
		p.vramAddr += 32
	} else {
		p.vramAddr++
	}
	p.vramAddr &= 0x3FFF
}

// PPUDATA reads are buffered, except for the palette range.
func (p *PPU) readPPUDATA(_ uint8) uint8 {
	addr := p.vramAddr & 0x3FFF
	val := p.readBuf
	p.readBuf = p.VRAM[addr]
	if addr >= 0x3F00 {
		val = p.readBuf
	}
	p.incVRAMaddr()
	return val
}

func (p *PPU) peekPPUDATA(_ uint8) uint8 {
	if addr := p.vramAddr & 0x3FFF; addr >= 0x3F00 {
		return p.VRAM[addr]
	}
	return p.readBuf
}

func (p *PPU) writePPUDATA(_, val uint8) {
	p.VRAM[p.vramAddr&0x3FFF] = val
	p.incVRAMaddr()
}
