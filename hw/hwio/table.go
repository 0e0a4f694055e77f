package hwio

import (
	"nescore/emu/log"
)

type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

func Write16(b BankIO8, addr uint16, val uint16) {
	lo := uint8(val & 0xff)
	hi := uint8(val >> 8)
	b.Write8(addr, lo)
	b.Write8(addr+1, hi)
}

func Read16(b BankIO8, addr uint16) uint16 {
	lo := b.Read8(addr, false)
	hi := b.Read8(addr+1, false)
	return uint16(hi)<<8 | uint16(lo)
}

type mapping struct {
	begin, end uint16 // inclusive
	io         BankIO8
}

// Table is a 64KB address space. Addresses not covered by any mapping are
// backed by a flat byte array, mapped ranges are forwarded to the memory area
// or device registered for them. The most recent mapping wins where ranges
// overlap.
type Table struct {
	Name string

	flat  [0x10000]uint8
	table []mapping
}

func NewTable(name string) *Table {
	t := new(Table)
	t.Name = name
	t.Reset()
	return t
}

// Reset removes all mappings and clears the flat memory.
func (t *Table) Reset() {
	t.table = t.table[:0]
	clear(t.flat[:])
}

func (t *Table) mapBus8(begin, end uint16, io BankIO8) {
	if end < begin {
		panic("hwio: invalid mapping range")
	}
	t.table = append(t.table, mapping{begin: begin, end: end, io: io})
}

// MapMem maps a linear memory area at addr, for mem.VSize bytes.
func (t *Table) MapMem(addr uint16, mem *Mem) {
	log.ModBus.DebugZ("mapping mem").
		Hex16("addr", addr).
		Int("size", mem.VSize).
		String("area", mem.Name).
		String("bus", t.Name).
		End()

	t.mapBus8(addr, addr+uint16(mem.VSize-1), mem.BankIO8())
}

// MapMemorySlice maps the [addr, end] range to mem, mirrored if mem is
// smaller than the range.
func (t *Table) MapMemorySlice(addr, end uint16, mem []uint8, readonly bool) {
	var flags MemFlags
	if readonly {
		flags |= MemFlag8ReadOnly
	}
	t.MapMem(addr, &Mem{
		Data:  mem,
		Flags: flags,
		VSize: int(end-addr) + 1,
	})
}

func (t *Table) MapDevice(addr uint16, dev *Device) {
	log.ModBus.DebugZ("mapping device").
		Hex16("addr", addr).
		String("name", dev.Name).
		String("bus", t.Name).
		End()

	t.mapBus8(addr, addr+uint16(dev.Size-1), dev)
}

func (t *Table) MapReg8(addr uint16, reg *Reg8) {
	t.mapBus8(addr, addr, reg)
}

// Unmap removes every mapping lying entirely within [begin, end]. Accesses
// to these addresses fall back to the flat memory.
func (t *Table) Unmap(begin, end uint16) {
	kept := t.table[:0]
	for _, m := range t.table {
		if m.begin >= begin && m.end <= end {
			continue
		}
		kept = append(kept, m)
	}
	t.table = kept
}

func (t *Table) search(addr uint16) BankIO8 {
	for i := len(t.table) - 1; i >= 0; i-- {
		if m := &t.table[i]; addr >= m.begin && addr <= m.end {
			return m.io
		}
	}
	return nil
}

// Read8 forwards the read to the area mapped at addr, or reads flat memory.
func (t *Table) Read8(addr uint16, peek bool) uint8 {
	io := t.search(addr)
	if io == nil {
		return t.flat[addr]
	}
	return io.Read8(addr, peek)
}

// Peek8 is a convenience function.
func (t *Table) Peek8(addr uint16) uint8 {
	return t.Read8(addr, true)
}

func (t *Table) Write8(addr uint16, val uint8) {
	io := t.search(addr)
	if io == nil {
		t.flat[addr] = val
		return
	}
	if mem, ok := io.(*mem); ok {
		if !mem.Write8CheckRO(addr, val) {
			log.ModBus.ErrorZ("Write8 to read-only address").
				String("name", t.Name).
				Hex16("addr", addr).
				Hex8("val", val).
				End()
		}
		return
	}
	io.Write8(addr, val)
}

// ReadRange returns a copy of the bytes in [start, end], wrapping past
// 0xFFFF. Reads are peeks.
func (t *Table) ReadRange(start, end uint16) []byte {
	buf := make([]byte, int(end-start)+1)
	for i := range buf {
		buf[i] = t.Peek8(start + uint16(i))
	}
	return buf
}

// WriteRange writes data at [start, end], wrapping past 0xFFFF. Data is
// truncated or zero-padded to fit the range.
func (t *Table) WriteRange(start, end uint16, data []byte) {
	n := int(end-start) + 1
	for i := range n {
		var val uint8
		if i < len(data) {
			val = data[i]
		}
		t.Write8(start+uint16(i), val)
	}
}
