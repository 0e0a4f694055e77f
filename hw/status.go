package hw

import (
	"fmt"

	"nescore/hw/alu"
)

// Bit positions in the packed status byte.
const (
	Carry = iota
	Zero
	Interrupt
	Decimal
	Break
	Reserved
	Overflow
	Negative
)

// Status holds the seven flags of the processor status register. Bit 5 of
// the packed byte is not stored, it always reads back as 1.
type Status struct {
	Negative   bool
	Overflow   bool
	Break      bool
	Decimal    bool
	IntDisable bool
	Zero       bool
	Carry      bool
}

func b2u8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Pack returns the status byte, laid out as NV1BDIZC.
func (s Status) Pack() uint8 {
	return b2u8(s.Negative)<<Negative |
		b2u8(s.Overflow)<<Overflow |
		1<<Reserved |
		b2u8(s.Break)<<Break |
		b2u8(s.Decimal)<<Decimal |
		b2u8(s.IntDisable)<<Interrupt |
		b2u8(s.Zero)<<Zero |
		b2u8(s.Carry)<<Carry
}

// Unpack decodes a status byte. Bit 5 is ignored.
func Unpack(p uint8) Status {
	return Status{
		Negative:   p&(1<<Negative) != 0,
		Overflow:   p&(1<<Overflow) != 0,
		Break:      p&(1<<Break) != 0,
		Decimal:    p&(1<<Decimal) != 0,
		IntDisable: p&(1<<Interrupt) != 0,
		Zero:       p&(1<<Zero) != 0,
		Carry:      p&(1<<Carry) != 0,
	}
}

// Bit returns bit i of the packed status. It panics if i is not in [0, 7].
func (s Status) Bit(i int) bool {
	if i < 0 || i > 7 {
		panic(fmt.Sprintf("hw: status bit index out of range: %d", i))
	}
	return s.Pack()&(1<<i) != 0
}

func (s Status) String() string {
	const bits = "nvubdizcNVUBDIZC"

	p := s.Pack()
	buf := make([]byte, 8)
	for i := range 8 {
		ibit := (p >> (7 - i)) & 1
		buf[i] = bits[i+int(8*ibit)]
	}
	return string(buf)
}

// apply copies the flags computed by the ALU, leaving the others untouched.
func (s *Status) apply(f alu.Flags) {
	if f.Affected&alu.N != 0 {
		s.Negative = f.N
	}
	if f.Affected&alu.V != 0 {
		s.Overflow = f.V
	}
	if f.Affected&alu.Z != 0 {
		s.Zero = f.Z
	}
	if f.Affected&alu.C != 0 {
		s.Carry = f.C
	}
}
