package chips

// ED-prefixed instructions. The whole table defaults to a NOP-alike so
// the undefined slots execute as two plain fetch cycles, then the
// defined rows overwrite their entries. The repeating block forms share
// a pair of continuation descriptors that rewind PC by two when another
// round is due.

func z80InitEDOps() {
	// undefined slots: 8 T-states, no effect
	edNOP := z80BuildOp(func(b *z80OpBuilder) {
		b.overlap(nil)
	})
	for opcode := 0; opcode < 256; opcode++ {
		z80EDOps[opcode] = edNOP
	}

	// repeat tails: five internal T-states, PC back onto the block op
	z80BlockRepOp = z80BuildOp(func(b *z80OpBuilder) {
		b.idle(5)
		b.overlap(func(c *Z80) {
			c.PC -= 2
			c.WZ = c.PC + 1
		})
	})
	z80IOBlockRepOp = z80BuildOp(func(b *z80OpBuilder) {
		b.idle(5)
		b.overlap(func(c *Z80) { c.PC -= 2 })
	})

	for y := byte(0); y < 8; y++ {
		y := y

		// in r,(c) / in (c)
		z80EDOps[0x40|y<<3] = z80BuildOp(func(b *z80OpBuilder) {
			b.ioread(func(c *Z80) uint16 {
				port := c.BC()
				c.WZ = port + 1
				return port
			}, func(c *Z80, v byte) {
				c.F = c.F&z80FlagC | z80SZP(v)
				if y != 6 {
					c.writeReg8Plain(y, v)
				}
			})
			b.overlap(nil)
		})

		// out (c),r / out (c),0
		z80EDOps[0x41|y<<3] = z80BuildOp(func(b *z80OpBuilder) {
			b.iowrite(func(c *Z80) uint16 {
				port := c.BC()
				c.WZ = port + 1
				return port
			}, func(c *Z80) byte {
				if y == 6 {
					return 0 // NMOS parts output zero here
				}
				return c.readReg8Plain(y)
			})
			b.overlap(nil)
		})

		// sbc hl,rr / adc hl,rr
		p := y >> 1
		if y&1 == 0 {
			z80EDOps[0x42|y<<3] = z80BuildOp(func(b *z80OpBuilder) {
				b.idle(7)
				b.overlap(func(c *Z80) { c.sbcHL16(c.readRP(p)) })
			})
		} else {
			z80EDOps[0x42|y<<3] = z80BuildOp(func(b *z80OpBuilder) {
				b.idle(7)
				b.overlap(func(c *Z80) { c.adcHL16(c.readRP(p)) })
			})
		}

		// ld (nn),rr / ld rr,(nn)
		if y&1 == 0 {
			z80EDOps[0x43|y<<3] = z80BuildOp(func(b *z80OpBuilder) {
				b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
				b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = uint16(v)<<8 | c.WZ&0x00FF })
				b.mwrite(func(c *Z80) uint16 { a := c.WZ; c.WZ++; return a },
					func(c *Z80) byte { return byte(c.readRP(p)) })
				b.mwrite(func(c *Z80) uint16 { return c.WZ },
					func(c *Z80) byte { return byte(c.readRP(p) >> 8) })
				b.overlap(nil)
			})
		} else {
			z80EDOps[0x43|y<<3] = z80BuildOp(func(b *z80OpBuilder) {
				b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
				b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = uint16(v)<<8 | c.WZ&0x00FF })
				b.mread(func(c *Z80) uint16 { a := c.WZ; c.WZ++; return a },
					func(c *Z80, v byte) { c.writeRPLow(p, v) })
				b.mread(func(c *Z80) uint16 { return c.WZ },
					func(c *Z80, v byte) { c.writeRPHigh(p, v) })
				b.overlap(nil)
			})
		}

		// neg (all aliases)
		z80EDOps[0x44|y<<3] = z80BuildOp(func(b *z80OpBuilder) {
			b.overlap(func(c *Z80) { c.A, c.F = z80Sub8(0, c.A, 0) })
		})

		// retn / reti; all aliases restore IFF1 from IFF2, 0x4D also
		// pulses the RETI virtual pin for the daisy chain
		reti := y == 1
		z80EDOps[0x45|y<<3] = z80BuildOp(func(b *z80OpBuilder) {
			b.mread(z80SPInc, func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
			b.mread(z80SPInc, func(c *Z80, v byte) { c.WZ = uint16(v)<<8 | c.WZ&0x00FF })
			b.overlapFn(func(c *Z80, pins uint64) uint64 {
				c.PC = c.WZ
				c.IFF1 = c.IFF2
				if reti {
					pins |= Z80PinRETI
				}
				return c.fetch(pins)
			})
		})

		// im 0/1/2 and the undefined aliases
		im := [8]byte{0, 0, 1, 2, 0, 0, 1, 2}[y]
		z80EDOps[0x46|y<<3] = z80BuildOp(func(b *z80OpBuilder) {
			b.overlap(func(c *Z80) { c.IM = im })
		})
	}

	// ld i,a / ld r,a / ld a,i / ld a,r
	z80EDOps[0x47] = z80BuildOp(func(b *z80OpBuilder) {
		b.idle(1)
		b.overlap(func(c *Z80) { c.I = c.A })
	})
	z80EDOps[0x4F] = z80BuildOp(func(b *z80OpBuilder) {
		b.idle(1)
		b.overlap(func(c *Z80) { c.R = c.A })
	})
	z80EDOps[0x57] = z80BuildOp(func(b *z80OpBuilder) {
		b.idle(1)
		b.overlap(func(c *Z80) {
			c.A = c.I
			c.ldAIFlags(c.A)
		})
	})
	z80EDOps[0x5F] = z80BuildOp(func(b *z80OpBuilder) {
		b.idle(1)
		b.overlap(func(c *Z80) {
			c.A = c.R
			c.ldAIFlags(c.A)
		})
	})

	// rrd / rld
	z80EDOps[0x67] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(func(c *Z80) uint16 {
			a := c.HL()
			c.WZ = a + 1
			return a
		}, func(c *Z80, v byte) { c.dlatch = v })
		b.idle(4)
		b.mwrite(func(c *Z80) uint16 { return c.HL() }, func(c *Z80) byte {
			v := c.dlatch
			out := v>>4 | c.A<<4
			c.A = c.A&0xF0 | v&0x0F
			c.F = c.F&z80FlagC | z80SZP(c.A)
			return out
		})
		b.overlap(nil)
	})
	z80EDOps[0x6F] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(func(c *Z80) uint16 {
			a := c.HL()
			c.WZ = a + 1
			return a
		}, func(c *Z80, v byte) { c.dlatch = v })
		b.idle(4)
		b.mwrite(func(c *Z80) uint16 { return c.HL() }, func(c *Z80) byte {
			v := c.dlatch
			out := v<<4 | c.A&0x0F
			c.A = c.A&0xF0 | v>>4
			c.F = c.F&z80FlagC | z80SZP(c.A)
			return out
		})
		b.overlap(nil)
	})

	// ldi / ldd / ldir / lddr
	buildLDX := func(delta uint16, repeat bool) z80OpState {
		return z80BuildOp(func(b *z80OpBuilder) {
			b.mread(func(c *Z80) uint16 { return c.HL() },
				func(c *Z80, v byte) { c.dlatch = v })
			b.mwrite(func(c *Z80) uint16 { return c.DE() }, func(c *Z80) byte {
				return c.dlatch
			})
			b.idle(1)
			b.tick(func(c *Z80, pins uint64) uint64 {
				c.SetHL(c.HL() + delta)
				c.SetDE(c.DE() + delta)
				c.SetBC(c.BC() - 1)
				c.ldxFlags()
				if repeat && c.BC() != 0 {
					c.op = z80BlockRepOp
				}
				return pins
			})
			b.overlap(nil)
		})
	}
	z80EDOps[0xA0] = buildLDX(1, false)
	z80EDOps[0xA8] = buildLDX(0xFFFF, false)
	z80EDOps[0xB0] = buildLDX(1, true)
	z80EDOps[0xB8] = buildLDX(0xFFFF, true)

	// cpi / cpd / cpir / cpdr
	buildCPX := func(delta uint16, repeat bool) z80OpState {
		return z80BuildOp(func(b *z80OpBuilder) {
			b.mread(func(c *Z80) uint16 { return c.HL() },
				func(c *Z80, v byte) { c.dlatch = v })
			b.tick(func(c *Z80, pins uint64) uint64 {
				c.SetHL(c.HL() + delta)
				c.SetBC(c.BC() - 1)
				c.WZ += delta
				c.cpxFlags(c.dlatch)
				return pins
			})
			b.idle(3)
			b.tick(func(c *Z80, pins uint64) uint64 {
				if repeat && c.BC() != 0 && c.F&z80FlagZ == 0 {
					c.op = z80BlockRepOp
				}
				return pins
			})
			b.overlap(nil)
		})
	}
	z80EDOps[0xA1] = buildCPX(1, false)
	z80EDOps[0xA9] = buildCPX(0xFFFF, false)
	z80EDOps[0xB1] = buildCPX(1, true)
	z80EDOps[0xB9] = buildCPX(0xFFFF, true)

	// ini / ind / inir / indr
	buildINX := func(delta uint16, repeat bool) z80OpState {
		return z80BuildOp(func(b *z80OpBuilder) {
			b.idle(1)
			b.ioread(func(c *Z80) uint16 {
				port := c.BC()
				c.WZ = port + delta
				return port
			}, func(c *Z80, v byte) {
				c.dlatch = v
				c.B--
			})
			b.idle(1)
			b.tickWait(func(c *Z80, pins uint64) uint64 {
				pins = z80SetAddrDataX(pins, c.HL(), c.dlatch, Z80PinMREQ|Z80PinWR)
				c.SetHL(c.HL() + delta)
				c.ioxFlags(c.dlatch, byte(uint16(c.C)+delta))
				return pins
			})
			b.tick(func(c *Z80, pins uint64) uint64 {
				if repeat && c.B != 0 {
					c.op = z80IOBlockRepOp
				}
				return pins
			})
			b.overlap(nil)
		})
	}
	z80EDOps[0xA2] = buildINX(1, false)
	z80EDOps[0xAA] = buildINX(0xFFFF, false)
	z80EDOps[0xB2] = buildINX(1, true)
	z80EDOps[0xBA] = buildINX(0xFFFF, true)

	// outi / outd / otir / otdr
	buildOUTX := func(delta uint16, repeat bool) z80OpState {
		return z80BuildOp(func(b *z80OpBuilder) {
			b.idle(1)
			b.mread(func(c *Z80) uint16 { return c.HL() },
				func(c *Z80, v byte) { c.dlatch = v })
			b.idle(1)
			b.tickWait(func(c *Z80, pins uint64) uint64 {
				c.B--
				port := c.BC()
				c.WZ = port + delta
				pins = z80SetAddrDataX(pins, port, c.dlatch, Z80PinIORQ|Z80PinWR)
				c.SetHL(c.HL() + delta)
				c.ioxFlags(c.dlatch, c.L)
				return pins
			})
			b.idle(1)
			b.tick(func(c *Z80, pins uint64) uint64 {
				if repeat && c.B != 0 {
					c.op = z80IOBlockRepOp
				}
				return pins
			})
			b.overlap(nil)
		})
	}
	z80EDOps[0xA3] = buildOUTX(1, false)
	z80EDOps[0xAB] = buildOUTX(0xFFFF, false)
	z80EDOps[0xB3] = buildOUTX(1, true)
	z80EDOps[0xBB] = buildOUTX(0xFFFF, true)
}
