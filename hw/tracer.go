package hw

import (
	"fmt"
	"io"

	"nescore/emu/log"
	"nescore/hw/fixed"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	A, X, Y uint8
	P       uint8
	SP      uint8
	PC      uint16

	Clock    int64
	hasPPU   bool
	PPUCycle int
	Scanline int
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

type tracer struct {
	d disasmer
	w io.Writer
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

func appendReg(buf []byte, name string, v uint8) []byte {
	buf = append(buf, name...)
	buf = append(buf, ':', 0, 0)
	hexEncode(buf[len(buf)-2:], v)
	return buf
}

// write writes the trace line of the instruction about to execute. Tracing
// never interrupts emulation: formatting failures are logged and the line
// is dropped, write errors are ignored.
func (t *tracer) write(state cpuState) {
	defer func() {
		if r := recover(); r != nil {
			log.ModTrace.ErrorZ("failed to format trace line").
				Hex16("PC", state.PC).
				String("panic", fmt.Sprint(r)).
				End()
		}
	}()

	buf := t.d.Disasm(state.PC).Bytes()
	buf = appendReg(buf, "A", state.A)
	buf = append(buf, ' ')
	buf = appendReg(buf, "X", state.X)
	buf = append(buf, ' ')
	buf = appendReg(buf, "Y", state.Y)
	buf = append(buf, ' ')
	buf = appendReg(buf, "P", state.P)
	buf = append(buf, ' ')
	buf = appendReg(buf, "SP", state.SP)
	if state.hasPPU {
		buf = fmt.Appendf(buf, " PPU:%3d,%3d CYC:%d", state.Scanline, state.PPUCycle, state.Clock)
	}
	buf = append(buf, '\n')
	t.w.Write(buf)
}

type DisasmOp struct {
	Opcode  string
	Oper    string
	Buf     []byte
	PC      uint16
	Illegal bool
}

// Bytes returns the nestest representation of a DisasmOp, padded to 48
// columns, at which the registers start in the execution trace.
func (d DisasmOp) Bytes() []byte {
	const totalLen = 48
	buf := make([]byte, totalLen)

	hexEncode(buf[0:], byte(d.PC>>8))
	hexEncode(buf[2:], byte(d.PC))
	buf[4] = ' '
	buf[5] = ' '

	off := 6
	for i := range d.Buf {
		hexEncode(buf[off:], d.Buf[i])
		buf[off+2] = ' '
		off += 3
	}

	for ; off < 16; off++ {
		buf[off] = ' '
	}
	if d.Illegal {
		buf[15] = '*'
	}

	off += copy(buf[off:], d.Opcode)
	buf[off] = ' '
	off++

	buf = append(buf[:off], d.Oper...)
	off += len(d.Oper)
	if len(buf) >= totalLen {
		buf = append(buf, ' ')
	} else {
		buf = buf[:totalLen]
		for i := off; i < totalLen; i++ {
			buf[i] = ' '
		}
	}

	return buf
}

func (d DisasmOp) String() string {
	s := d.Opcode
	if d.Illegal {
		s = "*" + s
	}
	if d.Oper != "" {
		s += " " + d.Oper
	}
	return s
}

// Disasm disassembles the instruction at pc. Memory is only peeked, so that
// disassembling has no side effects on devices.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	peek := c.Bus.Peek8

	opcode := peek(pc)
	op := ops[opcode]
	d := DisasmOp{PC: pc, Opcode: op.Name, Illegal: op.Illegal}
	if !op.Defined() {
		d.Opcode = "???"
		d.Buf = []byte{opcode}
		return d
	}

	d.Buf = make([]byte, op.Len())
	for i := range d.Buf {
		d.Buf[i] = peek(pc + uint16(i))
	}

	oper := c.decode(fixed.U16(int(pc)+1), op.Mode, true)
	val := func() uint8 { return peek(oper.addr) }

	switch op.Mode {
	case IMP:
	case ACC:
		d.Oper = "A"
	case IMM:
		d.Oper = fmt.Sprintf("#$%02X", oper.raw)
	case ZPG:
		d.Oper = fmt.Sprintf("$%02X = %02X", oper.raw, val())
	case ZPX:
		d.Oper = fmt.Sprintf("$%02X,X @ %02X = %02X", oper.raw, oper.addr, val())
	case ZPY:
		d.Oper = fmt.Sprintf("$%02X,Y @ %02X = %02X", oper.raw, oper.addr, val())
	case REL:
		d.Oper = fmt.Sprintf("$%04X", oper.addr)
	case ABS:
		if op.Name == "JMP" || op.Name == "JSR" {
			d.Oper = fmt.Sprintf("$%04X", oper.addr)
		} else {
			d.Oper = fmt.Sprintf("$%04X = %02X", oper.addr, val())
		}
	case ABX:
		d.Oper = fmt.Sprintf("$%04X,X @ %04X = %02X", oper.raw, oper.addr, val())
	case ABY:
		d.Oper = fmt.Sprintf("$%04X,Y @ %04X = %02X", oper.raw, oper.addr, val())
	case IND:
		d.Oper = fmt.Sprintf("($%04X) = %04X", oper.raw, oper.addr)
	case IDX:
		d.Oper = fmt.Sprintf("($%02X,X) @ %02X = %04X = %02X", oper.raw, oper.ptr, oper.addr, val())
	case IDY:
		d.Oper = fmt.Sprintf("($%02X),Y = %04X @ %04X = %02X", oper.raw, oper.ptr, oper.addr, val())
	}
	return d
}
