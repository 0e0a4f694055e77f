// Package snapshot holds serializable states of the emulated hardware, with
// their JSON codec.
package snapshot

import (
	"fmt"

	"github.com/go-faster/jx"
)

type NES struct {
	CPU CPU
	RAM []byte
}

type CPU struct {
	PC uint16
	SP uint8
	P  uint8
	A  uint8
	X  uint8
	Y  uint8

	Cycles  int64
	Pending int
	Halted  bool
}

// Encode writes s as a JSON object.
func (s *CPU) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("pc", func(e *jx.Encoder) { e.UInt16(s.PC) })
		e.Field("s", func(e *jx.Encoder) { e.UInt8(s.SP) })
		e.Field("p", func(e *jx.Encoder) { e.UInt8(s.P) })
		e.Field("a", func(e *jx.Encoder) { e.UInt8(s.A) })
		e.Field("x", func(e *jx.Encoder) { e.UInt8(s.X) })
		e.Field("y", func(e *jx.Encoder) { e.UInt8(s.Y) })
		e.Field("cycles", func(e *jx.Encoder) { e.Int64(s.Cycles) })
		e.Field("pending", func(e *jx.Encoder) { e.Int(s.Pending) })
		e.Field("halted", func(e *jx.Encoder) { e.Bool(s.Halted) })
	})
}

// Decode reads a JSON object written by Encode. Unknown keys are skipped
// and missing ones keep their current value.
func (s *CPU) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "pc":
			s.PC, err = d.UInt16()
		case "s":
			s.SP, err = d.UInt8()
		case "p":
			s.P, err = d.UInt8()
		case "a":
			s.A, err = d.UInt8()
		case "x":
			s.X, err = d.UInt8()
		case "y":
			s.Y, err = d.UInt8()
		case "cycles":
			s.Cycles, err = d.Int64()
		case "pending":
			s.Pending, err = d.Int()
		case "halted":
			s.Halted, err = d.Bool()
		default:
			return d.Skip()
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		return nil
	})
}

func (s CPU) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	s.Encode(&e)
	return e.Bytes(), nil
}

func (s *CPU) UnmarshalJSON(buf []byte) error {
	return s.Decode(jx.DecodeBytes(buf))
}

func (s *NES) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("cpu", func(e *jx.Encoder) { s.CPU.Encode(e) })
		e.Field("ram", func(e *jx.Encoder) { e.Base64(s.RAM) })
	})
}

func (s *NES) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "cpu":
			return s.CPU.Decode(d)
		case "ram":
			ram, err := d.Base64()
			if err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			s.RAM = ram
			return nil
		}
		return d.Skip()
	})
}

func (s NES) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	s.Encode(&e)
	return e.Bytes(), nil
}

func (s *NES) UnmarshalJSON(buf []byte) error {
	return s.Decode(jx.DecodeBytes(buf))
}
