package hw

import (
	"nescore/hw/alu"
	"nescore/hw/fixed"
)

// load returns the operand value, the accumulator in ACC mode.
func (c *CPU) load(op operand) fixed.Byte {
	if op.mode == ACC {
		return c.A
	}
	return c.read8(op.addr)
}

// store writes v to the operand location, the accumulator in ACC mode.
func (c *CPU) store(op operand, v fixed.Byte) {
	if op.mode == ACC {
		c.A = c.A.Of(int(v.Uint()))
		return
	}
	c.write8(op.addr, v)
}

// setNZ loads v into register r, then updates N and Z.
func (c *CPU) setNZ(r *fixed.Byte, v fixed.Byte) {
	*r = r.Of(int(v.Uint()))
	c.Flags.apply(alu.NZOf(*r))
}

// setResult stores an ALU result into register r and applies its flags.
func (c *CPU) setResult(r *fixed.Byte, res alu.Result) {
	*r = r.Of(int(res.Value.Uint()))
	c.Flags.apply(res.Flags)
}

// rmw performs a read-modify-write on the operand and returns the written
// value. On memory operands the unmodified value is written back first, as
// the 6502 does.
func (c *CPU) rmw(op operand, f func(fixed.Byte) alu.Result) fixed.Byte {
	v := c.load(op)
	if op.mode != ACC {
		c.write8(op.addr, v)
	}
	res := f(v)
	c.store(op, res.Value)
	c.Flags.apply(res.Flags)
	return res.Value
}

func (c *CPU) rol(v fixed.Byte) alu.Result { return alu.ROL(v, c.Flags.Carry) }
func (c *CPU) ror(v fixed.Byte) alu.Result { return alu.ROR(v, c.Flags.Carry) }

func (c *CPU) jump(addr uint16) { c.PC = fixed.U16(int(addr)) }

// arithmetic and logic

func opADC(c *CPU, op operand) { c.setResult(&c.A, alu.ADC(c.A, c.load(op), c.Flags.Carry)) }
func opSBC(c *CPU, op operand) { c.setResult(&c.A, alu.SBC(c.A, c.load(op), c.Flags.Carry)) }
func opAND(c *CPU, op operand) { c.setResult(&c.A, alu.AND(c.A, c.load(op))) }
func opORA(c *CPU, op operand) { c.setResult(&c.A, alu.ORA(c.A, c.load(op))) }
func opEOR(c *CPU, op operand) { c.setResult(&c.A, alu.EOR(c.A, c.load(op))) }
func opCMP(c *CPU, op operand) { c.Flags.apply(alu.Compare(c.A, c.load(op)).Flags) }
func opCPX(c *CPU, op operand) { c.Flags.apply(alu.Compare(c.X, c.load(op)).Flags) }
func opCPY(c *CPU, op operand) { c.Flags.apply(alu.Compare(c.Y, c.load(op)).Flags) }
func opBIT(c *CPU, op operand) { c.Flags.apply(alu.BIT(c.A, c.load(op)).Flags) }

// shifts, increments and decrements

func opASL(c *CPU, op operand) { c.rmw(op, alu.ASL) }
func opLSR(c *CPU, op operand) { c.rmw(op, alu.LSR) }
func opROL(c *CPU, op operand) { c.rmw(op, c.rol) }
func opROR(c *CPU, op operand) { c.rmw(op, c.ror) }
func opINC(c *CPU, op operand) { c.rmw(op, alu.INC) }
func opDEC(c *CPU, op operand) { c.rmw(op, alu.DEC) }
func opINX(c *CPU, _ operand)  { c.setResult(&c.X, alu.INC(c.X)) }
func opINY(c *CPU, _ operand)  { c.setResult(&c.Y, alu.INC(c.Y)) }
func opDEX(c *CPU, _ operand)  { c.setResult(&c.X, alu.DEC(c.X)) }
func opDEY(c *CPU, _ operand)  { c.setResult(&c.Y, alu.DEC(c.Y)) }

// loads, stores and transfers

func opLDA(c *CPU, op operand) { c.setNZ(&c.A, c.load(op)) }
func opLDX(c *CPU, op operand) { c.setNZ(&c.X, c.load(op)) }
func opLDY(c *CPU, op operand) { c.setNZ(&c.Y, c.load(op)) }
func opSTA(c *CPU, op operand) { c.write8(op.addr, c.A) }
func opSTX(c *CPU, op operand) { c.write8(op.addr, c.X) }
func opSTY(c *CPU, op operand) { c.write8(op.addr, c.Y) }
func opTAX(c *CPU, _ operand)  { c.setNZ(&c.X, c.A) }
func opTAY(c *CPU, _ operand)  { c.setNZ(&c.Y, c.A) }
func opTXA(c *CPU, _ operand)  { c.setNZ(&c.A, c.X) }
func opTYA(c *CPU, _ operand)  { c.setNZ(&c.A, c.Y) }
func opTSX(c *CPU, _ operand)  { c.setNZ(&c.X, c.SP) }
func opTXS(c *CPU, _ operand)  { c.SP = c.SP.Of(int(c.X.Uint())) }

// flags

func opCLC(c *CPU, _ operand) { c.Flags.Carry = false }
func opSEC(c *CPU, _ operand) { c.Flags.Carry = true }
func opCLI(c *CPU, _ operand) { c.Flags.IntDisable = false }
func opSEI(c *CPU, _ operand) { c.Flags.IntDisable = true }
func opCLD(c *CPU, _ operand) { c.Flags.Decimal = false }
func opSED(c *CPU, _ operand) { c.Flags.Decimal = true }
func opCLV(c *CPU, _ operand) { c.Flags.Overflow = false }

// branches and jumps

func branchIf(cond func(s Status) bool) func(*CPU, operand) {
	return func(c *CPU, op operand) {
		if cond(c.Flags) {
			c.jump(op.addr)
		}
	}
}

var (
	opBPL = branchIf(func(s Status) bool { return !s.Negative })
	opBMI = branchIf(func(s Status) bool { return s.Negative })
	opBVC = branchIf(func(s Status) bool { return !s.Overflow })
	opBVS = branchIf(func(s Status) bool { return s.Overflow })
	opBCC = branchIf(func(s Status) bool { return !s.Carry })
	opBCS = branchIf(func(s Status) bool { return s.Carry })
	opBNE = branchIf(func(s Status) bool { return !s.Zero })
	opBEQ = branchIf(func(s Status) bool { return s.Zero })
)

func opJMP(c *CPU, op operand) { c.jump(op.addr) }

// opJSR pushes the address of the last byte of the instruction, RTS adds 1.
func opJSR(c *CPU, op operand) {
	c.push16(c.PC.Sub(1))
	c.jump(op.addr)
}

func opRTS(c *CPU, _ operand) {
	c.PC = c.pull16().Add(1)
}

func opRTI(c *CPU, op operand) {
	opPLP(c, op)
	c.PC = c.pull16()
}

// opBRK skips the padding byte following the opcode.
func opBRK(c *CPU, _ operand) {
	c.push16(c.PC.Add(1))
	c.push8(fixed.U8(int(c.Flags.Pack() | 1<<Break)))
	c.Flags.IntDisable = true
	c.PC = c.read16(IRQVector)
}

// stack

func opPHA(c *CPU, _ operand) { c.push8(c.A) }
func opPLA(c *CPU, _ operand) { c.setNZ(&c.A, c.pull8()) }

// opPHP pushes the status with bits 4 and 5 set.
func opPHP(c *CPU, _ operand) {
	c.push8(fixed.U8(int(c.Flags.Pack() | 1<<Break | 1<<Reserved)))
}

// opPLP restores the status, except for the break flag which keeps its
// current value.
func opPLP(c *CPU, _ operand) {
	brk := c.Flags.Break
	c.Flags = Unpack(c.pull8().Raw())
	c.Flags.Break = brk
}

// opNOP performs the dummy read of the operand, if any.
func opNOP(c *CPU, op operand) {
	if op.mode != IMP {
		c.load(op)
	}
}

// illegal opcodes

func opLAX(c *CPU, op operand) {
	v := c.load(op)
	c.setNZ(&c.A, v)
	c.setNZ(&c.X, v)
}

func opSAX(c *CPU, op operand) {
	c.write8(op.addr, c.A.And(int(c.X.Uint())))
}

func opDCP(c *CPU, op operand) {
	m := c.rmw(op, alu.DEC)
	c.Flags.apply(alu.Compare(c.A, m).Flags)
}

func opISB(c *CPU, op operand) {
	m := c.rmw(op, alu.INC)
	c.setResult(&c.A, alu.SBC(c.A, m, c.Flags.Carry))
}

func opSLO(c *CPU, op operand) {
	m := c.rmw(op, alu.ASL)
	c.setResult(&c.A, alu.ORA(c.A, m))
}

func opRLA(c *CPU, op operand) {
	m := c.rmw(op, c.rol)
	c.setResult(&c.A, alu.AND(c.A, m))
}

func opSRE(c *CPU, op operand) {
	m := c.rmw(op, alu.LSR)
	c.setResult(&c.A, alu.EOR(c.A, m))
}

func opRRA(c *CPU, op operand) {
	m := c.rmw(op, c.ror)
	c.setResult(&c.A, alu.ADC(c.A, m, c.Flags.Carry))
}

func opANC(c *CPU, op operand) {
	c.setResult(&c.A, alu.AND(c.A, c.load(op)))
	c.Flags.Carry = c.Flags.Negative
}

func opALR(c *CPU, op operand) {
	c.setResult(&c.A, alu.AND(c.A, c.load(op)))
	c.setResult(&c.A, alu.LSR(c.A))
}

func opARR(c *CPU, op operand) {
	c.setResult(&c.A, alu.ARR(c.A, c.load(op), c.Flags.Carry))
}

func opSBX(c *CPU, op operand) {
	c.setResult(&c.X, alu.Compare(c.A.And(int(c.X.Uint())), c.load(op)))
}

func opLAS(c *CPU, op operand) {
	v := c.load(op).And(int(c.SP.Uint()))
	c.setNZ(&c.A, v)
	c.setNZ(&c.X, v)
	c.SP = c.SP.Of(int(v.Uint()))
}
