package chips

// The decoder is data driven: one flat slice of per-T-state step
// functions, plus a descriptor per opcode giving the initial pipeline
// word and the index of its first step. The builder below lays out the
// steps of one instruction and computes the matching pipeline word, so
// the schedule and the step bodies can never drift apart.
//
// Offsets are relative to the T-state that loads the descriptor (the
// third T-state of the opcode fetch machine cycle). A memory read drives
// its pins one T-state before the data T-state and latches on the data
// T-state; writes drive address, data and strobes on the second T-state
// of their machine cycle, where WAIT is sampled. I/O cycles are one T-state longer with the
// automatic wait state before the data transfer.

type z80Step func(*Z80, uint64) uint64

var z80Steps []z80Step

var (
	z80MainOps [256]z80OpState
	z80CBOps   [256]z80OpState
	z80EDOps   [256]z80OpState

	// opcodes that take a displacement interlude under DD/FD
	z80IndirectLoads [256]bool

	z80BootStep uint16 // a bare fetch step, used by Prefetch

	// mid-instruction continuations
	z80SkipFetchOp  z80OpState // fetch on the next T-state (RET cc not taken)
	z80SkipFetch2Op z80OpState // fetch one T-state later (JR cc/CALL cc not taken)
	z80DJNZTakenOp  z80OpState
	z80BlockRepOp   z80OpState // LDIR/CPIR family repeat tail
	z80IOBlockRepOp z80OpState // INIR/OTIR family repeat tail

	// displacement interludes and compound CB fetch
	z80IndexedLoadOp z80OpState
	z80IndexedImmOp  z80OpState // LD (IX+d),n fetches d and n back to back
	z80DDCBFetchOp   z80OpState

	// interrupt and NMI acceptance sequences
	z80NMIOp    z80OpState
	z80IntIM0Op z80OpState
	z80IntIM1Op z80OpState
	z80IntIM2Op z80OpState
)

type z80OpBuilder struct {
	off  int
	pip  uint64
	step uint16
}

func z80BuildOp(build func(*z80OpBuilder)) z80OpState {
	b := z80OpBuilder{step: uint16(len(z80Steps))}
	build(&b)
	return z80OpState{pip: b.pip, step: b.step}
}

// tick schedules fn on the next T-state.
func (b *z80OpBuilder) tick(fn z80Step) {
	b.off++
	b.pip |= 1 << uint(b.off)
	z80Steps = append(z80Steps, fn)
}

// tickWait is tick plus WAIT pin sampling on the same T-state.
func (b *z80OpBuilder) tickWait(fn z80Step) {
	b.tick(fn)
	b.pip |= 1 << uint(32+b.off)
}

func (b *z80OpBuilder) idle(n int) {
	b.off += n
}

// markWait enables WAIT sampling on a T-state without a step.
func (b *z80OpBuilder) markWait(off int) {
	b.pip |= 1 << uint(32+off)
}

// mread emits a 3 T-state memory read machine cycle.
func (b *z80OpBuilder) mread(addr func(*Z80) uint16, store func(*Z80, byte)) {
	b.mreadFn(addr, func(c *Z80, pins uint64) uint64 {
		store(c, Z80GetData(pins))
		return pins
	})
}

// mreadFn is mread with a raw latch step (for branches and pin work).
func (b *z80OpBuilder) mreadFn(addr func(*Z80) uint16, latch z80Step) {
	b.tick(func(c *Z80, pins uint64) uint64 {
		return z80SetAddrX(pins, addr(c), Z80PinMREQ|Z80PinRD)
	})
	b.tickWait(latch)
	b.idle(1)
}

// mwrite emits a 3 T-state memory write machine cycle. addr runs before
// data, so stack pushes can pre-decrement SP in the address callback.
func (b *z80OpBuilder) mwrite(addr func(*Z80) uint16, data func(*Z80) byte) {
	b.idle(1)
	b.tickWait(func(c *Z80, pins uint64) uint64 {
		a := addr(c)
		return z80SetAddrDataX(pins, a, data(c), Z80PinMREQ|Z80PinWR)
	})
	b.idle(1)
}

// ioread emits a 4 T-state input machine cycle.
func (b *z80OpBuilder) ioread(addr func(*Z80) uint16, store func(*Z80, byte)) {
	b.tick(func(c *Z80, pins uint64) uint64 {
		return z80SetAddrX(pins, addr(c), Z80PinIORQ|Z80PinRD)
	})
	b.idle(1)
	b.tickWait(func(c *Z80, pins uint64) uint64 {
		store(c, Z80GetData(pins))
		return pins
	})
	b.idle(1)
}

// iowrite emits a 4 T-state output machine cycle.
func (b *z80OpBuilder) iowrite(addr func(*Z80) uint16, data func(*Z80) byte) {
	b.idle(1)
	b.tickWait(func(c *Z80, pins uint64) uint64 {
		a := addr(c)
		return z80SetAddrDataX(pins, a, data(c), Z80PinIORQ|Z80PinWR)
	})
	b.idle(2)
}

// overlap emits the final T-state: run fn, then start the next opcode
// fetch in the same cycle.
func (b *z80OpBuilder) overlap(fn func(*Z80)) {
	b.tick(func(c *Z80, pins uint64) uint64 {
		if fn != nil {
			fn(c)
		}
		return c.fetch(pins)
	})
}

// overlapFn emits a final T-state with full control over pins and fetch.
func (b *z80OpBuilder) overlapFn(fn z80Step) {
	b.tick(fn)
}

func z80PCInc(c *Z80) uint16 {
	pc := c.PC
	c.PC++
	return pc
}

func z80SPInc(c *Z80) uint16 {
	sp := c.SP
	c.SP++
	return sp
}

func z80EA(c *Z80) uint16 {
	return c.addr
}

// z80Cond evaluates a condition code (NZ,Z,NC,C,PO,PE,P,M).
func z80Cond(c *Z80, code byte) bool {
	var mask byte
	switch code >> 1 {
	case 0:
		mask = z80FlagZ
	case 1:
		mask = z80FlagC
	case 2:
		mask = z80FlagPV
	default:
		mask = z80FlagS
	}
	return (c.F&mask != 0) == (code&1 == 1)
}

// The two steps shared by every opcode fetch: latch the opcode, then
// look up the instruction descriptor while the refresh cycle runs.
func z80StepLatchIR(c *Z80, pins uint64) uint64 {
	c.IR = Z80GetData(pins)
	return pins
}

func z80StepLoadOp(c *Z80, pins uint64) uint64 {
	pins = c.refresh(pins)
	switch c.table {
	case z80TableCB:
		c.addr = c.HL()
		c.op = z80CBOps[c.IR]
	case z80TableED:
		c.addr = c.HL()
		c.op = z80EDOps[c.IR]
	default:
		c.addr = c.hlPair()
		if c.prefix != z80PrefixNone && z80IndirectLoads[c.IR] {
			// (IX+d)/(IY+d) forms insert a displacement fetch before
			// the instruction's own machine cycles
			if c.IR == 0x36 {
				c.op = z80IndexedImmOp
			} else {
				c.op = z80IndexedLoadOp
			}
		} else {
			c.op = z80MainOps[c.IR]
		}
	}
	return pins
}

func init() {
	z80Steps = make([]z80Step, 0, 2048)
	z80Steps = append(z80Steps, z80StepLatchIR, z80StepLoadOp)
	z80InitMainOps()
	z80InitIndexedOps()
	z80InitIntOps()
	z80InitCBOps()
	z80InitEDOps()
}

func z80InitMainOps() {
	// 0x00: nop
	z80MainOps[0x00] = z80BuildOp(func(b *z80OpBuilder) {
		b.overlap(nil)
	})
	z80BootStep = z80MainOps[0x00].step
	z80SkipFetchOp = z80OpState{pip: 1 << 1, step: z80BootStep}
	z80SkipFetch2Op = z80OpState{pip: 1 << 2, step: z80BootStep}

	// ld rr,nn
	for _, opcode := range []int{0x01, 0x11, 0x21, 0x31} {
		p := byte(opcode>>4) & 0x03
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.mread(z80PCInc, func(c *Z80, v byte) { c.writeRPLow(p, v) })
			b.mread(z80PCInc, func(c *Z80, v byte) { c.writeRPHigh(p, v) })
			b.overlap(nil)
		})
	}

	// ld (bc),a / ld (de),a
	z80MainOps[0x02] = z80BuildOp(func(b *z80OpBuilder) {
		b.mwrite(func(c *Z80) uint16 { return c.BC() }, func(c *Z80) byte {
			c.WZ = uint16(c.A)<<8 | uint16(byte(c.C+1))
			return c.A
		})
		b.overlap(nil)
	})
	z80MainOps[0x12] = z80BuildOp(func(b *z80OpBuilder) {
		b.mwrite(func(c *Z80) uint16 { return c.DE() }, func(c *Z80) byte {
			c.WZ = uint16(c.A)<<8 | uint16(byte(c.E+1))
			return c.A
		})
		b.overlap(nil)
	})

	// ld a,(bc) / ld a,(de)
	z80MainOps[0x0A] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(func(c *Z80) uint16 { a := c.BC(); c.WZ = a + 1; return a },
			func(c *Z80, v byte) { c.A = v })
		b.overlap(nil)
	})
	z80MainOps[0x1A] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(func(c *Z80) uint16 { a := c.DE(); c.WZ = a + 1; return a },
			func(c *Z80, v byte) { c.A = v })
		b.overlap(nil)
	})

	// inc rr / dec rr
	for _, opcode := range []int{0x03, 0x13, 0x23, 0x33} {
		p := byte(opcode>>4) & 0x03
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.idle(2)
			b.overlap(func(c *Z80) { c.writeRP(p, c.readRP(p)+1) })
		})
	}
	for _, opcode := range []int{0x0B, 0x1B, 0x2B, 0x3B} {
		p := byte(opcode>>4) & 0x03
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.idle(2)
			b.overlap(func(c *Z80) { c.writeRP(p, c.readRP(p)-1) })
		})
	}

	// inc r / dec r
	for _, opcode := range []int{0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x3C} {
		reg := byte(opcode>>3) & 0x07
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.overlap(func(c *Z80) {
				var v byte
				v, c.F = z80Inc8(c.F, c.readReg8(reg))
				c.writeReg8(reg, v)
			})
		})
	}
	for _, opcode := range []int{0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x3D} {
		reg := byte(opcode>>3) & 0x07
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.overlap(func(c *Z80) {
				var v byte
				v, c.F = z80Dec8(c.F, c.readReg8(reg))
				c.writeReg8(reg, v)
			})
		})
	}

	// inc (hl) / dec (hl): read-modify-write with an internal T-state
	z80MainOps[0x34] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80EA, func(c *Z80, v byte) { c.dlatch = v })
		b.idle(1)
		b.mwrite(z80EA, func(c *Z80) byte {
			var v byte
			v, c.F = z80Inc8(c.F, c.dlatch)
			return v
		})
		b.overlap(nil)
	})
	z80MainOps[0x35] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80EA, func(c *Z80, v byte) { c.dlatch = v })
		b.idle(1)
		b.mwrite(z80EA, func(c *Z80) byte {
			var v byte
			v, c.F = z80Dec8(c.F, c.dlatch)
			return v
		})
		b.overlap(nil)
	})

	// ld r,n
	for _, opcode := range []int{0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x3E} {
		reg := byte(opcode>>3) & 0x07
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.mread(z80PCInc, func(c *Z80, v byte) { c.writeReg8(reg, v) })
			b.overlap(nil)
		})
	}

	// ld (hl),n
	z80MainOps[0x36] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80PCInc, func(c *Z80, v byte) { c.dlatch = v })
		b.mwrite(z80EA, func(c *Z80) byte { return c.dlatch })
		b.overlap(nil)
	})

	// accumulator rotates
	z80MainOps[0x07] = z80BuildOp(func(b *z80OpBuilder) { b.overlap((*Z80).rlca) })
	z80MainOps[0x0F] = z80BuildOp(func(b *z80OpBuilder) { b.overlap((*Z80).rrca) })
	z80MainOps[0x17] = z80BuildOp(func(b *z80OpBuilder) { b.overlap((*Z80).rla) })
	z80MainOps[0x1F] = z80BuildOp(func(b *z80OpBuilder) { b.overlap((*Z80).rra) })

	// ex af,af'
	z80MainOps[0x08] = z80BuildOp(func(b *z80OpBuilder) { b.overlap((*Z80).exAF) })

	// add hl,rr
	for _, opcode := range []int{0x09, 0x19, 0x29, 0x39} {
		p := byte(opcode>>4) & 0x03
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.idle(7)
			b.overlap(func(c *Z80) { c.addHL16(c.readRP(p)) })
		})
	}

	// djnz d
	z80DJNZTakenOp = z80BuildOp(func(b *z80OpBuilder) {
		b.idle(6)
		b.overlap(func(c *Z80) {
			c.WZ = c.PC + uint16(int16(int8(c.dlatch)))
			c.PC = c.WZ
		})
	})
	z80MainOps[0x10] = z80BuildOp(func(b *z80OpBuilder) {
		b.tick(func(c *Z80, pins uint64) uint64 {
			c.B--
			return pins
		})
		b.mreadFn(z80PCInc, func(c *Z80, pins uint64) uint64 {
			c.dlatch = Z80GetData(pins)
			if c.B != 0 {
				c.op = z80DJNZTakenOp
			}
			return pins
		})
		b.overlap(nil)
	})

	// jr d
	z80MainOps[0x18] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80PCInc, func(c *Z80, v byte) { c.dlatch = v })
		b.idle(5)
		b.overlap(func(c *Z80) {
			c.WZ = c.PC + uint16(int16(int8(c.dlatch)))
			c.PC = c.WZ
		})
	})

	// jr cc,d
	for _, opcode := range []int{0x20, 0x28, 0x30, 0x38} {
		cond := byte(opcode>>3) & 0x03
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.mreadFn(z80PCInc, func(c *Z80, pins uint64) uint64 {
				c.dlatch = Z80GetData(pins)
				if !z80Cond(c, cond) {
					c.op = z80SkipFetch2Op
				}
				return pins
			})
			b.idle(5)
			b.overlap(func(c *Z80) {
				c.WZ = c.PC + uint16(int16(int8(c.dlatch)))
				c.PC = c.WZ
			})
		})
	}

	// ld (nn),hl / ld hl,(nn)
	z80MainOps[0x22] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
		b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = uint16(v)<<8 | c.WZ&0x00FF })
		b.mwrite(func(c *Z80) uint16 { a := c.WZ; c.WZ++; return a },
			func(c *Z80) byte { return byte(c.hlPair()) })
		b.mwrite(func(c *Z80) uint16 { return c.WZ },
			func(c *Z80) byte { return byte(c.hlPair() >> 8) })
		b.overlap(nil)
	})
	z80MainOps[0x2A] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
		b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = uint16(v)<<8 | c.WZ&0x00FF })
		b.mread(func(c *Z80) uint16 { a := c.WZ; c.WZ++; return a },
			func(c *Z80, v byte) { c.writeRPLow(2, v) })
		b.mread(func(c *Z80) uint16 { return c.WZ },
			func(c *Z80, v byte) { c.writeRPHigh(2, v) })
		b.overlap(nil)
	})

	// ld (nn),a / ld a,(nn)
	z80MainOps[0x32] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
		b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = uint16(v)<<8 | c.WZ&0x00FF })
		b.mwrite(func(c *Z80) uint16 { a := c.WZ; c.WZ++; return a },
			func(c *Z80) byte {
				c.WZ = uint16(c.A)<<8 | c.WZ&0x00FF
				return c.A
			})
		b.overlap(nil)
	})
	z80MainOps[0x3A] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
		b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = uint16(v)<<8 | c.WZ&0x00FF })
		b.mread(func(c *Z80) uint16 { a := c.WZ; c.WZ++; return a },
			func(c *Z80, v byte) { c.A = v })
		b.overlap(nil)
	})

	// daa, cpl, scf, ccf
	z80MainOps[0x27] = z80BuildOp(func(b *z80OpBuilder) {
		b.overlap(func(c *Z80) { c.A, c.F = z80DAA(c.A, c.F) })
	})
	z80MainOps[0x2F] = z80BuildOp(func(b *z80OpBuilder) { b.overlap((*Z80).cpl) })
	z80MainOps[0x37] = z80BuildOp(func(b *z80OpBuilder) { b.overlap((*Z80).scf) })
	z80MainOps[0x3F] = z80BuildOp(func(b *z80OpBuilder) { b.overlap((*Z80).ccf) })

	// ld r,r' block, including the (hl) rows
	for opcode := 0x40; opcode <= 0x7F; opcode++ {
		if opcode == 0x76 {
			continue
		}
		dst := byte(opcode>>3) & 0x07
		src := byte(opcode) & 0x07
		switch {
		case src == 6:
			z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
				b.mread(z80EA, func(c *Z80, v byte) { c.writeReg8Plain(dst, v) })
				b.overlap(nil)
			})
		case dst == 6:
			z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
				b.mwrite(z80EA, func(c *Z80) byte { return c.readReg8Plain(src) })
				b.overlap(nil)
			})
		default:
			z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
				b.overlap(func(c *Z80) { c.writeReg8(dst, c.readReg8(src)) })
			})
		}
	}

	// halt: keep refetching the same address until an interrupt or reset
	z80MainOps[0x76] = z80BuildOp(func(b *z80OpBuilder) {
		b.overlapFn(func(c *Z80, pins uint64) uint64 {
			pins |= Z80PinHALT
			c.PC--
			return c.fetch(pins)
		})
	})

	// alu a,r block
	for opcode := 0x80; opcode <= 0xBF; opcode++ {
		op := z80ALUOp(opcode>>3) & 0x07
		src := byte(opcode) & 0x07
		if src == 6 {
			z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
				b.mread(z80EA, func(c *Z80, v byte) { c.dlatch = v })
				b.overlap(func(c *Z80) { c.performALU(op, c.dlatch) })
			})
		} else {
			z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
				b.overlap(func(c *Z80) { c.performALU(op, c.readReg8(src)) })
			})
		}
	}

	// alu a,n
	for _, opcode := range []int{0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE} {
		op := z80ALUOp(opcode>>3) & 0x07
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.mread(z80PCInc, func(c *Z80, v byte) { c.dlatch = v })
			b.overlap(func(c *Z80) { c.performALU(op, c.dlatch) })
		})
	}

	// ret cc
	for _, opcode := range []int{0xC0, 0xC8, 0xD0, 0xD8, 0xE0, 0xE8, 0xF0, 0xF8} {
		cond := byte(opcode>>3) & 0x07
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.tick(func(c *Z80, pins uint64) uint64 {
				if !z80Cond(c, cond) {
					c.op = z80SkipFetchOp
				}
				return pins
			})
			b.mread(z80SPInc, func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
			b.mread(z80SPInc, func(c *Z80, v byte) { c.WZ = uint16(v)<<8 | c.WZ&0x00FF })
			b.overlap(func(c *Z80) { c.PC = c.WZ })
		})
	}

	// pop rr
	for _, opcode := range []int{0xC1, 0xD1, 0xE1, 0xF1} {
		p := byte(opcode>>4) & 0x03
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.mread(z80SPInc, func(c *Z80, v byte) { c.writeRP2Low(p, v) })
			b.mread(z80SPInc, func(c *Z80, v byte) { c.writeRP2High(p, v) })
			b.overlap(nil)
		})
	}

	// push rr
	for _, opcode := range []int{0xC5, 0xD5, 0xE5, 0xF5} {
		p := byte(opcode>>4) & 0x03
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.idle(1)
			b.mwrite(func(c *Z80) uint16 { c.SP--; return c.SP },
				func(c *Z80) byte { return byte(c.readRP2(p) >> 8) })
			b.mwrite(func(c *Z80) uint16 { c.SP--; return c.SP },
				func(c *Z80) byte { return byte(c.readRP2(p)) })
			b.overlap(nil)
		})
	}

	// jp cc,nn / jp nn (both 10 T-states; WZ always takes the target)
	for _, opcode := range []int{0xC2, 0xCA, 0xD2, 0xDA, 0xE2, 0xEA, 0xF2, 0xFA} {
		cond := byte(opcode>>3) & 0x07
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
			b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = uint16(v)<<8 | c.WZ&0x00FF })
			b.overlap(func(c *Z80) {
				if z80Cond(c, cond) {
					c.PC = c.WZ
				}
			})
		})
	}
	z80MainOps[0xC3] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
		b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = uint16(v)<<8 | c.WZ&0x00FF })
		b.overlap(func(c *Z80) { c.PC = c.WZ })
	})

	// call cc,nn / call nn
	buildCall := func(cond byte, conditional bool) z80OpState {
		return z80BuildOp(func(b *z80OpBuilder) {
			b.mread(z80PCInc, func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
			b.mreadFn(z80PCInc, func(c *Z80, pins uint64) uint64 {
				c.WZ = uint16(Z80GetData(pins))<<8 | c.WZ&0x00FF
				if conditional && !z80Cond(c, cond) {
					c.op = z80SkipFetch2Op
				}
				return pins
			})
			b.idle(1)
			b.mwrite(func(c *Z80) uint16 { c.SP--; return c.SP },
				func(c *Z80) byte { return byte(c.PC >> 8) })
			b.mwrite(func(c *Z80) uint16 { c.SP--; return c.SP },
				func(c *Z80) byte { return byte(c.PC) })
			b.overlap(func(c *Z80) { c.PC = c.WZ })
		})
	}
	for _, opcode := range []int{0xC4, 0xCC, 0xD4, 0xDC, 0xE4, 0xEC, 0xF4, 0xFC} {
		z80MainOps[opcode] = buildCall(byte(opcode>>3)&0x07, true)
	}
	z80MainOps[0xCD] = buildCall(0, false)

	// ret
	z80MainOps[0xC9] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80SPInc, func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
		b.mread(z80SPInc, func(c *Z80, v byte) { c.WZ = uint16(v)<<8 | c.WZ&0x00FF })
		b.overlap(func(c *Z80) { c.PC = c.WZ })
	})

	// rst n
	for _, opcode := range []int{0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF} {
		target := uint16(opcode & 0x38)
		z80MainOps[opcode] = z80BuildOp(func(b *z80OpBuilder) {
			b.idle(1)
			b.mwrite(func(c *Z80) uint16 { c.SP--; return c.SP },
				func(c *Z80) byte { return byte(c.PC >> 8) })
			b.mwrite(func(c *Z80) uint16 { c.SP--; return c.SP },
				func(c *Z80) byte { return byte(c.PC) })
			b.overlap(func(c *Z80) {
				c.WZ = target
				c.PC = target
			})
		})
	}

	// exx / ex de,hl (both untouched by DD/FD)
	z80MainOps[0xD9] = z80BuildOp(func(b *z80OpBuilder) { b.overlap((*Z80).exx) })
	z80MainOps[0xEB] = z80BuildOp(func(b *z80OpBuilder) {
		b.overlap(func(c *Z80) {
			d, e := c.D, c.E
			c.D, c.E = c.H, c.L
			c.H, c.L = d, e
		})
	})

	// ex (sp),hl
	z80MainOps[0xE3] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(func(c *Z80) uint16 { return c.SP },
			func(c *Z80, v byte) { c.WZ = c.WZ&0xFF00 | uint16(v) })
		b.mread(func(c *Z80) uint16 { return c.SP + 1 },
			func(c *Z80, v byte) { c.WZ = uint16(v)<<8 | c.WZ&0x00FF })
		b.idle(1)
		b.mwrite(func(c *Z80) uint16 { return c.SP + 1 },
			func(c *Z80) byte { return byte(c.hlPair() >> 8) })
		b.mwrite(func(c *Z80) uint16 { return c.SP },
			func(c *Z80) byte { return byte(c.hlPair()) })
		b.idle(2)
		b.overlap(func(c *Z80) { c.setHLPair(c.WZ) })
	})

	// jp (hl) / ld sp,hl
	z80MainOps[0xE9] = z80BuildOp(func(b *z80OpBuilder) {
		b.overlap(func(c *Z80) { c.PC = c.hlPair() })
	})
	z80MainOps[0xF9] = z80BuildOp(func(b *z80OpBuilder) {
		b.idle(2)
		b.overlap(func(c *Z80) { c.SP = c.hlPair() })
	})

	// out (n),a / in a,(n)
	z80MainOps[0xD3] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80PCInc, func(c *Z80, v byte) { c.dlatch = v })
		b.iowrite(func(c *Z80) uint16 {
			port := uint16(c.A)<<8 | uint16(c.dlatch)
			c.WZ = uint16(c.A)<<8 | uint16(byte(c.dlatch+1))
			return port
		}, func(c *Z80) byte { return c.A })
		b.overlap(nil)
	})
	z80MainOps[0xDB] = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80PCInc, func(c *Z80, v byte) { c.dlatch = v })
		b.ioread(func(c *Z80) uint16 {
			port := uint16(c.A)<<8 | uint16(c.dlatch)
			c.WZ = port + 1
			return port
		}, func(c *Z80, v byte) { c.A = v })
		b.overlap(nil)
	})

	// di / ei (EI enables interrupts after the following instruction)
	z80MainOps[0xF3] = z80BuildOp(func(b *z80OpBuilder) {
		b.overlap(func(c *Z80) {
			c.IFF1 = false
			c.IFF2 = false
		})
	})
	z80MainOps[0xFB] = z80BuildOp(func(b *z80OpBuilder) {
		b.overlap(func(c *Z80) {
			c.IFF1 = true
			c.IFF2 = true
			c.eiPending = true
		})
	})

	// prefixes
	z80MainOps[0xCB] = z80BuildOp(func(b *z80OpBuilder) {
		b.overlapFn(func(c *Z80, pins uint64) uint64 {
			if c.prefix == z80PrefixNone {
				return c.fetchPrefixed(pins, z80TableCB)
			}
			// DD CB d xx: displacement and sub-opcode are plain reads
			// without M1 or refresh
			c.op = z80DDCBFetchOp
			pins = z80SetAddrX(pins, c.PC, Z80PinMREQ|Z80PinRD)
			c.PC++
			return pins
		})
	})
	z80MainOps[0xDD] = z80BuildOp(func(b *z80OpBuilder) {
		b.overlapFn(func(c *Z80, pins uint64) uint64 {
			c.prefix = z80PrefixDD
			return c.fetchPrefixed(pins, z80TableMain)
		})
	})
	z80MainOps[0xFD] = z80BuildOp(func(b *z80OpBuilder) {
		b.overlapFn(func(c *Z80, pins uint64) uint64 {
			c.prefix = z80PrefixFD
			return c.fetchPrefixed(pins, z80TableMain)
		})
	})
	z80MainOps[0xED] = z80BuildOp(func(b *z80OpBuilder) {
		b.overlapFn(func(c *Z80, pins uint64) uint64 {
			// ED cancels an active DD/FD mapping
			c.prefix = z80PrefixNone
			return c.fetchPrefixed(pins, z80TableED)
		})
	})

	// opcodes that fetch a displacement when DD/FD is in effect
	for opcode := 0x40; opcode <= 0xBF; opcode++ {
		if opcode == 0x76 {
			continue
		}
		if opcode&0x07 == 6 || (opcode >= 0x70 && opcode <= 0x77) {
			z80IndirectLoads[opcode] = true
		}
	}
	z80IndirectLoads[0x34] = true
	z80IndirectLoads[0x35] = true
	z80IndirectLoads[0x36] = true
}

// z80InitIndexedOps builds the displacement interludes that run between
// the opcode fetch and the instruction body of (IX+d)/(IY+d) forms.
func z80InitIndexedOps() {
	// generic: read d, add it to the index register during five internal
	// T-states, then continue with the instruction's own descriptor
	z80IndexedLoadOp = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80PCInc, func(c *Z80, v byte) { c.dlatch = v })
		b.idle(4)
		b.tick(func(c *Z80, pins uint64) uint64 {
			c.addr += uint16(int16(int8(c.dlatch)))
			c.WZ = c.addr
			c.op = z80MainOps[c.IR]
			return pins
		})
	})

	// ld (hl),n under DD/FD reads d and n back to back and folds the
	// address add into the shorter internal stretch
	z80IndexedImmOp = z80BuildOp(func(b *z80OpBuilder) {
		b.mread(z80PCInc, func(c *Z80, v byte) {
			c.addr += uint16(int16(int8(v)))
			c.WZ = c.addr
		})
		b.mread(z80PCInc, func(c *Z80, v byte) { c.dlatch = v })
		b.idle(3)
		b.tickWait(func(c *Z80, pins uint64) uint64 {
			return z80SetAddrDataX(pins, c.addr, c.dlatch, Z80PinMREQ|Z80PinWR)
		})
		b.idle(1)
		b.overlap(nil)
	})

	// dd cb d xx: the sub-opcode byte arrives without an M1 cycle, then
	// the CB memory-form descriptor runs against IX+d with dual store
	z80DDCBFetchOp = z80BuildOp(func(b *z80OpBuilder) {
		b.tickWait(func(c *Z80, pins uint64) uint64 {
			c.dlatch = Z80GetData(pins)
			return pins
		})
		b.idle(1)
		b.tick(func(c *Z80, pins uint64) uint64 {
			pins = z80SetAddrX(pins, c.PC, Z80PinMREQ|Z80PinRD)
			c.PC++
			return pins
		})
		b.tickWait(func(c *Z80, pins uint64) uint64 {
			c.IR = Z80GetData(pins)
			return pins
		})
		b.idle(2)
		b.tick(func(c *Z80, pins uint64) uint64 {
			c.addr += uint16(int16(int8(c.dlatch)))
			c.WZ = c.addr
			c.ddcbDual = true
			c.op = z80CBOps[c.IR&0xF8|0x06]
			return pins
		})
	})
}

// z80InitIntOps builds the interrupt and NMI acceptance sequences.
func z80InitIntOps() {
	// NMI: 5 T-state dummy fetch with refresh, push PC, jump to 0x0066
	z80NMIOp = z80BuildOp(func(b *z80OpBuilder) {
		b.markWait(1)
		b.idle(2)
		b.tick(func(c *Z80, pins uint64) uint64 { return c.refresh(pins) })
		b.idle(2)
		b.tickWait(func(c *Z80, pins uint64) uint64 {
			c.SP--
			return z80SetAddrDataX(pins, c.SP, byte(c.PC>>8), Z80PinMREQ|Z80PinWR)
		})
		b.idle(2)
		b.tickWait(func(c *Z80, pins uint64) uint64 {
			c.SP--
			c.WZ = 0x0066
			return z80SetAddrDataX(pins, c.SP, byte(c.PC), Z80PinMREQ|Z80PinWR)
		})
		b.idle(1)
		b.overlap(func(c *Z80) { c.PC = c.WZ })
	})

	ackCycle := func(b *z80OpBuilder, latch func(*Z80, byte)) {
		b.idle(3)
		b.tick(func(c *Z80, pins uint64) uint64 {
			return z80SetAddrX(pins, c.PC, Z80PinM1|Z80PinIORQ)
		})
		b.tickWait(func(c *Z80, pins uint64) uint64 {
			latch(c, Z80GetData(pins))
			return c.refresh(pins)
		})
	}

	// IM 0: execute the byte placed on the bus during the acknowledge
	// cycle (typically an RST)
	z80IntIM0Op = z80BuildOp(func(b *z80OpBuilder) {
		ackCycle(b, func(c *Z80, v byte) {
			c.IR = v
			c.addr = c.hlPair()
			c.op = z80MainOps[c.IR]
		})
	})

	// IM 1: 13 T-states, jump to 0x0038
	z80IntIM1Op = z80BuildOp(func(b *z80OpBuilder) {
		ackCycle(b, func(c *Z80, v byte) { c.dlatch = v })
		b.idle(2)
		b.tickWait(func(c *Z80, pins uint64) uint64 {
			c.SP--
			return z80SetAddrDataX(pins, c.SP, byte(c.PC>>8), Z80PinMREQ|Z80PinWR)
		})
		b.idle(2)
		b.tickWait(func(c *Z80, pins uint64) uint64 {
			c.SP--
			c.WZ = 0x0038
			return z80SetAddrDataX(pins, c.SP, byte(c.PC), Z80PinMREQ|Z80PinWR)
		})
		b.idle(1)
		b.overlap(func(c *Z80) { c.PC = c.WZ })
	})

	// IM 2: 19 T-states, vector table lookup at I:(byte & 0xFE)
	z80IntIM2Op = z80BuildOp(func(b *z80OpBuilder) {
		ackCycle(b, func(c *Z80, v byte) { c.dlatch = v })
		b.idle(2)
		b.tickWait(func(c *Z80, pins uint64) uint64 {
			c.SP--
			return z80SetAddrDataX(pins, c.SP, byte(c.PC>>8), Z80PinMREQ|Z80PinWR)
		})
		b.idle(2)
		b.tickWait(func(c *Z80, pins uint64) uint64 {
			c.SP--
			c.addr = uint16(c.I)<<8 | uint16(c.dlatch&0xFE)
			return z80SetAddrDataX(pins, c.SP, byte(c.PC), Z80PinMREQ|Z80PinWR)
		})
		b.idle(1)
		b.tick(func(c *Z80, pins uint64) uint64 {
			return z80SetAddrX(pins, c.addr, Z80PinMREQ|Z80PinRD)
		})
		b.tickWait(func(c *Z80, pins uint64) uint64 {
			c.WZ = c.WZ&0xFF00 | uint16(Z80GetData(pins))
			return pins
		})
		b.idle(1)
		b.tick(func(c *Z80, pins uint64) uint64 {
			return z80SetAddrX(pins, c.addr+1, Z80PinMREQ|Z80PinRD)
		})
		b.tickWait(func(c *Z80, pins uint64) uint64 {
			c.WZ = uint16(Z80GetData(pins))<<8 | c.WZ&0x00FF
			return pins
		})
		b.idle(1)
		b.overlap(func(c *Z80) { c.PC = c.WZ })
	})
}
