package chips

// 16-bit views over the 8-bit register halves. The byte fields are the
// single source of truth so the two views can never disagree.

func (c *Z80) AF() uint16 { return uint16(c.A)<<8 | uint16(c.F) }
func (c *Z80) BC() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *Z80) DE() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *Z80) HL() uint16 { return uint16(c.H)<<8 | uint16(c.L) }
func (c *Z80) IX() uint16 { return uint16(c.IXH)<<8 | uint16(c.IXL) }
func (c *Z80) IY() uint16 { return uint16(c.IYH)<<8 | uint16(c.IYL) }

func (c *Z80) SetAF(value uint16) { c.A = byte(value >> 8); c.F = byte(value) }
func (c *Z80) SetBC(value uint16) { c.B = byte(value >> 8); c.C = byte(value) }
func (c *Z80) SetDE(value uint16) { c.D = byte(value >> 8); c.E = byte(value) }
func (c *Z80) SetHL(value uint16) { c.H = byte(value >> 8); c.L = byte(value) }
func (c *Z80) SetIX(value uint16) { c.IXH = byte(value >> 8); c.IXL = byte(value) }
func (c *Z80) SetIY(value uint16) { c.IYH = byte(value >> 8); c.IYL = byte(value) }

func (c *Z80) AF2() uint16 { return uint16(c.A2)<<8 | uint16(c.F2) }
func (c *Z80) BC2() uint16 { return uint16(c.B2)<<8 | uint16(c.C2) }
func (c *Z80) DE2() uint16 { return uint16(c.D2)<<8 | uint16(c.E2) }
func (c *Z80) HL2() uint16 { return uint16(c.H2)<<8 | uint16(c.L2) }

func (c *Z80) SetAF2(value uint16) { c.A2 = byte(value >> 8); c.F2 = byte(value) }
func (c *Z80) SetBC2(value uint16) { c.B2 = byte(value >> 8); c.C2 = byte(value) }
func (c *Z80) SetDE2(value uint16) { c.D2 = byte(value >> 8); c.E2 = byte(value) }
func (c *Z80) SetHL2(value uint16) { c.H2 = byte(value >> 8); c.L2 = byte(value) }

// Flag returns whether the given F bit is set.
func (c *Z80) Flag(mask byte) bool { return c.F&mask != 0 }

// SetFlag sets or clears the given F bit.
func (c *Z80) SetFlag(mask byte, on bool) {
	if on {
		c.F |= mask
	} else {
		c.F &^= mask
	}
}

func (c *Z80) exAF() {
	c.A, c.A2 = c.A2, c.A
	c.F, c.F2 = c.F2, c.F
}

func (c *Z80) exx() {
	c.B, c.B2 = c.B2, c.B
	c.C, c.C2 = c.C2, c.C
	c.D, c.D2 = c.D2, c.D
	c.E, c.E2 = c.E2, c.E
	c.H, c.H2 = c.H2, c.H
	c.L, c.L2 = c.L2, c.L
}

// hlPair returns HL, or IX/IY while a DD/FD prefix is in effect.
func (c *Z80) hlPair() uint16 {
	switch c.prefix {
	case z80PrefixDD:
		return c.IX()
	case z80PrefixFD:
		return c.IY()
	}
	return c.HL()
}

func (c *Z80) setHLPair(value uint16) {
	switch c.prefix {
	case z80PrefixDD:
		c.SetIX(value)
	case z80PrefixFD:
		c.SetIY(value)
	default:
		c.SetHL(value)
	}
}

// readReg8 reads an 8-bit register by its opcode encoding (B=0, C=1,
// D=2, E=3, H=4, L=5, A=7), with H and L mapped to the index register
// halves while a DD/FD prefix is in effect. Code 6 is the memory operand
// and is never routed here.
func (c *Z80) readReg8(code byte) byte {
	switch code {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		switch c.prefix {
		case z80PrefixDD:
			return c.IXH
		case z80PrefixFD:
			return c.IYH
		}
		return c.H
	case 5:
		switch c.prefix {
		case z80PrefixDD:
			return c.IXL
		case z80PrefixFD:
			return c.IYL
		}
		return c.L
	case 7:
		return c.A
	}
	return 0
}

func (c *Z80) writeReg8(code byte, value byte) {
	switch code {
	case 0:
		c.B = value
	case 1:
		c.C = value
	case 2:
		c.D = value
	case 3:
		c.E = value
	case 4:
		switch c.prefix {
		case z80PrefixDD:
			c.IXH = value
		case z80PrefixFD:
			c.IYH = value
		default:
			c.H = value
		}
	case 5:
		switch c.prefix {
		case z80PrefixDD:
			c.IXL = value
		case z80PrefixFD:
			c.IYL = value
		default:
			c.L = value
		}
	case 7:
		c.A = value
	}
}

// readReg8Plain ignores any active index mapping. Instructions with a
// memory operand address H and L directly even under a DD/FD prefix.
func (c *Z80) readReg8Plain(code byte) byte {
	switch code {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 7:
		return c.A
	}
	return 0
}

func (c *Z80) writeReg8Plain(code byte, value byte) {
	switch code {
	case 0:
		c.B = value
	case 1:
		c.C = value
	case 2:
		c.D = value
	case 3:
		c.E = value
	case 4:
		c.H = value
	case 5:
		c.L = value
	case 7:
		c.A = value
	}
}

// readRP reads a register pair by its opcode encoding (BC=0, DE=1, HL=2,
// SP=3), with HL mapped to IX/IY under a prefix.
func (c *Z80) readRP(code byte) uint16 {
	switch code {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.hlPair()
	}
	return c.SP
}

func (c *Z80) writeRP(code byte, value uint16) {
	switch code {
	case 0:
		c.SetBC(value)
	case 1:
		c.SetDE(value)
	case 2:
		c.setHLPair(value)
	default:
		c.SP = value
	}
}

func (c *Z80) writeRPLow(code byte, value byte) {
	switch code {
	case 0:
		c.C = value
	case 1:
		c.E = value
	case 2:
		c.setHLPair(c.hlPair()&0xFF00 | uint16(value))
	default:
		c.SP = c.SP&0xFF00 | uint16(value)
	}
}

func (c *Z80) writeRPHigh(code byte, value byte) {
	switch code {
	case 0:
		c.B = value
	case 1:
		c.D = value
	case 2:
		c.setHLPair(uint16(value)<<8 | c.hlPair()&0x00FF)
	default:
		c.SP = uint16(value)<<8 | c.SP&0x00FF
	}
}

// readRP2/writeRP2* use the push/pop encoding where slot 3 is AF.
func (c *Z80) readRP2(code byte) uint16 {
	switch code {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.hlPair()
	}
	return c.AF()
}

func (c *Z80) writeRP2Low(code byte, value byte) {
	switch code {
	case 0:
		c.C = value
	case 1:
		c.E = value
	case 2:
		c.setHLPair(c.hlPair()&0xFF00 | uint16(value))
	default:
		c.F = value
	}
}

func (c *Z80) writeRP2High(code byte, value byte) {
	switch code {
	case 0:
		c.B = value
	case 1:
		c.D = value
	case 2:
		c.setHLPair(uint16(value)<<8 | c.hlPair()&0x00FF)
	default:
		c.A = value
	}
}
