// Package fixed implements 8 and 16-bit integers with silent wraparound.
//
// A value carries its width in its type and its signedness in its state.
// The stored bit pattern is always the value modulo 2^N; signed values read
// it as twos-complement. Values are immutable, every operation returns a new
// value of the same width and signedness.
package fixed

import (
	"fmt"
	"strconv"
	"strings"
)

// Bits is the set of storage types backing fixed-width values.
type Bits interface {
	~uint8 | ~uint16
}

// Int is an N-bit integer, N being the width of T.
type Int[T Bits] struct {
	raw    T
	signed bool
}

type (
	Byte = Int[uint8]
	Word = Int[uint16]
)

// New returns the N-bit value holding v modulo 2^N.
func New[T Bits](v int, signed bool) Int[T] {
	return Int[T]{raw: T(v), signed: signed}
}

func U8(v int) Byte  { return New[uint8](v, false) }
func I8(v int) Byte  { return New[uint8](v, true) }
func U16(v int) Word { return New[uint16](v, false) }
func I16(v int) Word { return New[uint16](v, true) }

// Join builds an unsigned word from its high and low bytes.
func Join(hi, lo Byte) Word {
	return U16(int(hi.raw)<<8 | int(lo.raw))
}

// Split returns the high and low bytes of w, as unsigned bytes.
func Split(w Word) (hi, lo Byte) {
	return U8(int(w.raw >> 8)), U8(int(w.raw))
}

// Width returns the number of bits of v.
func (v Int[T]) Width() int {
	n := 0
	for m := ^T(0); m != 0; m >>= 1 {
		n++
	}
	return n
}

func (v Int[T]) Signed() bool { return v.signed }

// Raw returns the stored bit pattern.
func (v Int[T]) Raw() T { return v.raw }

// Uint returns the bit pattern as a non-negative integer, that is the
// twos-complement representation of signed values.
func (v Int[T]) Uint() uint { return uint(v.raw) }

// Int returns the numeric value: the twos-complement reading of the bit
// pattern for signed values, the bit pattern itself otherwise.
func (v Int[T]) Int() int {
	n := int(v.raw)
	if v.signed && v.Bit(uint(v.Width()-1)) {
		n -= 1 << v.Width()
	}
	return n
}

// Of returns n as a value of the same width and signedness as v.
func (v Int[T]) Of(n int) Int[T] {
	return Int[T]{raw: T(n), signed: v.signed}
}

// Bit reports whether bit i of the pattern is set.
func (v Int[T]) Bit(i uint) bool {
	return v.raw&(1<<i) != 0
}

func (v Int[T]) Add(n int) Int[T] { return v.Of(int(v.raw) + n) }
func (v Int[T]) Sub(n int) Int[T] { return v.Of(int(v.raw) - n) }
func (v Int[T]) And(n int) Int[T] { return Int[T]{raw: v.raw & T(n), signed: v.signed} }
func (v Int[T]) Or(n int) Int[T]  { return Int[T]{raw: v.raw | T(n), signed: v.signed} }
func (v Int[T]) Xor(n int) Int[T] { return Int[T]{raw: v.raw ^ T(n), signed: v.signed} }
func (v Int[T]) Not() Int[T]      { return Int[T]{raw: ^v.raw, signed: v.signed} }

// Neg returns the twos-complement negation of v.
func (v Int[T]) Neg() Int[T] { return Int[T]{raw: -v.raw, signed: v.signed} }

// Shl shifts the bit pattern left, bits shifted past the width are lost.
func (v Int[T]) Shl(n uint) Int[T] {
	return Int[T]{raw: v.raw << n, signed: v.signed}
}

// Shr shifts right. It is an arithmetic shift (sign bit replicated) on signed
// values and a logical shift on unsigned ones.
func (v Int[T]) Shr(n uint) Int[T] {
	if v.signed {
		return v.Of(v.Int() >> n)
	}
	return Int[T]{raw: v.raw >> n, signed: v.signed}
}

// Hex formats the bit pattern in hexadecimal, with Width/4 digits when pad is
// set.
func (v Int[T]) Hex(upper, pad bool) string {
	s := strconv.FormatUint(uint64(v.raw), 16)
	if pad {
		if n := v.Width()/4 - len(s); n > 0 {
			s = strings.Repeat("0", n) + s
		}
	}
	if upper {
		s = strings.ToUpper(s)
	}
	return s
}

func (v Int[T]) String() string {
	kind := "UInt"
	if v.signed {
		kind = "Int"
	}
	return fmt.Sprintf("%s%d(%d)", kind, v.Width(), v.Int())
}
