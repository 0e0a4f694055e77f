package hw

import (
	"fmt"

	"nescore/emu/log"
	"nescore/hw/hwio"
	"nescore/ines"
)

type MapperDesc struct {
	Name string
	Load func(*ines.Rom, *NES) error
}

var mappers = map[uint8]MapperDesc{
	0: NROM,
}

// FindMapper returns the mapper with the given iNES number.
func FindMapper(num uint8) (MapperDesc, error) {
	desc, ok := mappers[num]
	if !ok {
		return MapperDesc{}, fmt.Errorf("unsupported mapper %d", num)
	}
	return desc, nil
}

var NROM = MapperDesc{
	Name: "NROM",
	Load: loadNROM,
}

func loadNROM(rom *ines.Rom, nes *NES) error {
	prgsz := len(rom.PRG)
	if prgsz != ines.PRGBankSize && prgsz != 2*ines.PRGBankSize {
		return fmt.Errorf("NROM: unexpected PRG-ROM size %d", prgsz)
	}

	prgrom := &hwio.Mem{
		Name:  "PRGROM",
		Data:  make([]byte, prgsz),
		VSize: 0x8000,
		Flags: hwio.MemFlag8ReadOnly,
	}
	copy(prgrom.Data, rom.PRG)

	prgram := &hwio.Mem{
		Name:  "PRGRAM",
		Data:  make([]byte, 0x2000),
		VSize: 0x2000,
	}

	// PRG-ROM mirrors are taken care of by hwio.Mem 'VSize'.
	nes.CPU.Bus.MapMem(0x6000, prgram)
	nes.CPU.Bus.MapMem(0x8000, prgrom)

	copy(nes.PPU.VRAM[:0x2000], rom.CHR)

	log.ModROM.InfoZ("loaded NROM cartridge").
		Int("prg", prgsz).
		Int("chr", len(rom.CHR)).
		End()
	return nil
}
