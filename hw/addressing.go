package hw

import "nescore/hw/fixed"

// Mode is an addressing mode.
type Mode uint8

//go:generate go tool stringer -type=Mode

const (
	IMP Mode = iota // implied
	ACC             // accumulator
	IMM             // #$nn
	ZPG             // $nn
	ZPX             // $nn,X
	ZPY             // $nn,Y
	REL             // branch target
	ABS             // $nnnn
	ABX             // $nnnn,X
	ABY             // $nnnn,Y
	IND             // ($nnnn)
	IDX             // ($nn,X)
	IDY             // ($nn),Y
)

// Len returns the instruction length in bytes, opcode included.
func (m Mode) Len() int {
	switch m {
	case IMP, ACC:
		return 1
	case ABS, ABX, ABY, IND:
		return 3
	}
	return 2
}

// operand is a decoded instruction operand.
type operand struct {
	mode Mode
	raw  uint16 // operand bytes as encoded
	ptr  uint16 // IND: pointer; IDX: zero page pointer after indexing; IDY: base before indexing
	addr uint16 // effective address
}

// decode resolves the operand of an instruction in mode m whose operand
// bytes start at pc. Reads done while resolving (pointer fetches) are peeks
// if peek is set.
func (c *CPU) decode(pc fixed.Word, m Mode, peek bool) operand {
	rd := func(addr fixed.Word) fixed.Byte {
		return fixed.U8(int(c.Bus.Read8(addr.Raw(), peek)))
	}
	// zero page pointer, the high byte wraps within the zero page.
	zpptr := func(zp fixed.Byte) fixed.Word {
		lo := rd(fixed.U16(int(zp.Uint())))
		hi := rd(fixed.U16(int(zp.Add(1).Uint())))
		return fixed.Join(hi, lo)
	}
	abs := func() fixed.Word {
		return fixed.Join(rd(pc.Add(1)), rd(pc))
	}

	op := operand{mode: m}
	switch m {
	case IMP, ACC:
		return op
	case IMM:
		op.raw = uint16(rd(pc).Uint())
		op.addr = pc.Raw()
	case ZPG:
		op.raw = uint16(rd(pc).Uint())
		op.addr = op.raw
	case ZPX:
		zp := rd(pc)
		op.raw = uint16(zp.Uint())
		op.addr = uint16(zp.Add(int(c.X.Uint())).Uint())
	case ZPY:
		zp := rd(pc)
		op.raw = uint16(zp.Uint())
		op.addr = uint16(zp.Add(int(c.Y.Uint())).Uint())
	case REL:
		off := rd(pc)
		op.raw = uint16(off.Uint())
		op.addr = pc.Add(1).Add(fixed.I8(int(off.Uint())).Int()).Raw()
	case ABS:
		op.raw = abs().Raw()
		op.addr = op.raw
	case ABX:
		base := abs()
		op.raw = base.Raw()
		op.addr = base.Add(int(c.X.Uint())).Raw()
	case ABY:
		base := abs()
		op.raw = base.Raw()
		op.addr = base.Add(int(c.Y.Uint())).Raw()
	case IND:
		// The pointer high byte is fetched without carrying into the page:
		// JMP ($xxFF) reads its target from $xxFF and $xx00.
		ptr := abs()
		hi, lo := fixed.Split(ptr)
		op.raw = ptr.Raw()
		op.ptr = ptr.Raw()
		op.addr = fixed.Join(rd(fixed.Join(hi, lo.Add(1))), rd(ptr)).Raw()
	case IDX:
		zp := rd(pc)
		ptr := zp.Add(int(c.X.Uint()))
		op.raw = uint16(zp.Uint())
		op.ptr = uint16(ptr.Uint())
		op.addr = zpptr(ptr).Raw()
	case IDY:
		zp := rd(pc)
		base := zpptr(zp)
		op.raw = uint16(zp.Uint())
		op.ptr = base.Raw()
		op.addr = base.Add(int(c.Y.Uint())).Raw()
	}
	return op
}
