// Package alu implements the arithmetic and logic of the 2A03 as pure
// functions over 8-bit values. No function here touches CPU state: each one
// returns the computed value together with the flags it affects.
package alu

import "nescore/hw/fixed"

// Flag is a bit mask selecting some of the N, V, Z and C status flags. Bit
// positions match the packed status byte.
type Flag uint8

const (
	C Flag = 1 << 0
	Z Flag = 1 << 1
	V Flag = 1 << 6
	N Flag = 1 << 7

	NZ   = N | Z
	NZC  = N | Z | C
	NVZC = N | V | Z | C
	NVZ  = N | V | Z
)

// Flags holds the flag values computed by an operation. Only the flags in
// Affected are meaningful, others must be left untouched by the caller.
type Flags struct {
	Affected   Flag
	N, V, Z, C bool
}

type Result struct {
	Value fixed.Byte
	Flags Flags
}

func nz(v fixed.Byte, mask Flag) Flags {
	return Flags{
		Affected: mask,
		N:        v.Bit(7),
		Z:        v.Raw() == 0,
	}
}

// NZOf returns the negative and zero flags of v (loads, transfers).
func NZOf(v fixed.Byte) Flags {
	return nz(v, NZ)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ADC returns a + m + carry.
func ADC(a, m fixed.Byte, carry bool) Result {
	sum := a.Uint() + m.Uint() + uint(b2i(carry))
	r := a.Of(int(sum))
	f := nz(r, NVZC)
	f.C = sum > 0xFF
	f.V = (a.Uint()^m.Uint())&0x80 == 0 && (a.Uint()^r.Uint())&0x80 != 0
	return Result{Value: r, Flags: f}
}

// SBC returns a - m - (1 - carry). SBC(a, m, c) equals ADC(a, ^m, c).
func SBC(a, m fixed.Byte, carry bool) Result {
	borrow := 1 - b2i(carry)
	r := a.Sub(int(m.Uint()) + borrow)
	f := nz(r, NVZC)
	f.C = int(a.Uint()) >= int(m.Uint())+borrow
	f.V = (a.Uint()^m.Uint())&0x80 != 0 && (a.Uint()^r.Uint())&0x80 != 0
	return Result{Value: r, Flags: f}
}

// Compare computes reg - m for CMP, CPX and CPY. Carry is set when reg >= m,
// both read as unsigned.
func Compare(reg, m fixed.Byte) Result {
	r := reg.Sub(int(m.Uint()))
	f := nz(r, NZC)
	f.C = reg.Uint() >= m.Uint()
	return Result{Value: r, Flags: f}
}

func ASL(v fixed.Byte) Result {
	r := v.Shl(1)
	f := nz(r, NZC)
	f.C = v.Bit(7)
	return Result{Value: r, Flags: f}
}

// LSR is a logical shift of the bit pattern, whatever the signedness of v.
func LSR(v fixed.Byte) Result {
	r := v.Of(int(v.Uint() >> 1))
	f := nz(r, NZC)
	f.C = v.Bit(0)
	return Result{Value: r, Flags: f}
}

func ROL(v fixed.Byte, carry bool) Result {
	r := v.Shl(1).Or(b2i(carry))
	f := nz(r, NZC)
	f.C = v.Bit(7)
	return Result{Value: r, Flags: f}
}

func ROR(v fixed.Byte, carry bool) Result {
	r := v.Of(int(v.Uint()>>1) | b2i(carry)<<7)
	f := nz(r, NZC)
	f.C = v.Bit(0)
	return Result{Value: r, Flags: f}
}

func AND(a, m fixed.Byte) Result {
	r := a.And(int(m.Uint()))
	return Result{Value: r, Flags: nz(r, NZ)}
}

func ORA(a, m fixed.Byte) Result {
	r := a.Or(int(m.Uint()))
	return Result{Value: r, Flags: nz(r, NZ)}
}

func EOR(a, m fixed.Byte) Result {
	r := a.Xor(int(m.Uint()))
	return Result{Value: r, Flags: nz(r, NZ)}
}

// BIT tests a & m. N and V are copied from bits 7 and 6 of m, the value is
// the conjunction (which the CPU discards).
func BIT(a, m fixed.Byte) Result {
	r := a.And(int(m.Uint()))
	return Result{
		Value: r,
		Flags: Flags{
			Affected: NVZ,
			N:        m.Bit(7),
			V:        m.Bit(6),
			Z:        r.Raw() == 0,
		},
	}
}

func INC(v fixed.Byte) Result {
	r := v.Add(1)
	return Result{Value: r, Flags: nz(r, NZ)}
}

func DEC(v fixed.Byte) Result {
	r := v.Sub(1)
	return Result{Value: r, Flags: nz(r, NZ)}
}

// ARR ands a with m then rotates right. Carry comes from bit 6 of the result
// and overflow from bit 6 xor bit 5.
func ARR(a, m fixed.Byte, carry bool) Result {
	r := ROR(a.And(int(m.Uint())), carry).Value
	f := nz(r, NVZC)
	f.C = r.Bit(6)
	f.V = r.Bit(6) != r.Bit(5)
	return Result{Value: r, Flags: f}
}
