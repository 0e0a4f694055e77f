package hw

import "nescore/hw/fixed"

const stackBase = 0x0100

// push8 writes v at the top of the stack, then decrements SP.
func (c *CPU) push8(v fixed.Byte) {
	c.write8(stackBase|uint16(c.SP.Raw()), v)
	c.SP = c.SP.Sub(1)
}

// pull8 increments SP, then reads the top of the stack.
func (c *CPU) pull8() fixed.Byte {
	c.SP = c.SP.Add(1)
	return c.read8(stackBase | uint16(c.SP.Raw()))
}

// push16 pushes the high byte first, so that the word is stored little
// endian in memory.
func (c *CPU) push16(v fixed.Word) {
	hi, lo := fixed.Split(v)
	c.push8(hi)
	c.push8(lo)
}

func (c *CPU) pull16() fixed.Word {
	lo := c.pull8()
	hi := c.pull8()
	return fixed.Join(hi, lo)
}
