package chips

import "testing"

func TestZ80InitDefaults(t *testing.T) {
	cpu := NewZ80()

	requireZ80EqualU16(t, "AF", cpu.AF(), 0x5555)
	requireZ80EqualU16(t, "BC", cpu.BC(), 0x5555)
	requireZ80EqualU16(t, "DE", cpu.DE(), 0x5555)
	requireZ80EqualU16(t, "HL", cpu.HL(), 0x5555)
	requireZ80EqualU16(t, "AF'", cpu.AF2(), 0x5555)
	requireZ80EqualU16(t, "BC'", cpu.BC2(), 0x5555)
	requireZ80EqualU16(t, "DE'", cpu.DE2(), 0x5555)
	requireZ80EqualU16(t, "HL'", cpu.HL2(), 0x5555)
	requireZ80EqualU16(t, "IX", cpu.IX(), 0x5555)
	requireZ80EqualU16(t, "IY", cpu.IY(), 0x5555)
	requireZ80EqualU16(t, "SP", cpu.SP, 0x5555)
	requireZ80EqualU16(t, "WZ", cpu.WZ, 0x5555)
	requireZ80EqualU8(t, "I", cpu.I, 0x00)
	requireZ80EqualU8(t, "R", cpu.R, 0x00)
	requireZ80EqualU8(t, "IM", cpu.IM, 0)
	if cpu.IFF1 || cpu.IFF2 {
		t.Fatalf("IFF1/IFF2 should be disabled after init")
	}

	// the initial pin state drives the first opcode fetch at address 0
	pins := cpu.Pins
	requireZ80EqualU16(t, "addr", Z80GetAddr(pins), 0x0000)
	if pins&(Z80PinM1|Z80PinMREQ|Z80PinRD) != Z80PinM1|Z80PinMREQ|Z80PinRD {
		t.Fatalf("init pins = 0x%010X, want M1|MREQ|RD", pins)
	}
	if !cpu.OpDone() {
		t.Fatalf("OpDone should report an instruction boundary after init")
	}
}

func TestZ80LDBCImmediate(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0x01, 0x34, 0x12}) // LD BC,0x1234

	ticks := rig.step()

	requireZ80Ticks(t, ticks, 10)
	requireZ80EqualU16(t, "BC", rig.cpu.BC(), 0x1234)
	requireZ80EqualU16(t, "PC", rig.pcAtBoundary(), 0x0003)
}

func TestZ80AddImmediate(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0xC6, 0x42}) // ADD A,0x42
	rig.cpu.A = 0x3C

	ticks := rig.step()

	requireZ80Ticks(t, ticks, 7)
	requireZ80EqualU16(t, "PC", rig.pcAtBoundary(), 0x0002)
	requireZ80EqualU8(t, "A", rig.cpu.A, 0x7E)
	// 0x3C+0x42 produces no nibble carry: only the undocumented X/Y
	// bits of the result are set
	requireZ80EqualU8(t, "F", rig.cpu.F, z80FlagY|z80FlagX)
}

func TestZ80AndHLMem(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0xA6}) // AND (HL)
	rig.cpu.SetHL(0x8000)
	rig.cpu.A = 0xAA
	rig.r.Mem[0x8000] = 0x55

	ticks := rig.step()

	requireZ80Ticks(t, ticks, 7)
	requireZ80EqualU16(t, "PC", rig.pcAtBoundary(), 0x0001)
	requireZ80EqualU8(t, "A", rig.cpu.A, 0x00)
	requireZ80EqualU8(t, "F", rig.cpu.F, z80FlagZ|z80FlagH|z80FlagPV)
}

func TestZ80CallPushesReturnAddress(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0xCD, 0x34, 0x12}) // CALL 0x1234
	rig.cpu.SP = 0x8000

	ticks := rig.step()

	requireZ80Ticks(t, ticks, 17)
	requireZ80EqualU16(t, "PC", rig.pcAtBoundary(), 0x1234)
	requireZ80EqualU16(t, "SP", rig.cpu.SP, 0x7FFE)
	requireZ80EqualU8(t, "mem[0x7FFE]", rig.r.Mem[0x7FFE], 0x03)
	requireZ80EqualU8(t, "mem[0x7FFF]", rig.r.Mem[0x7FFF], 0x00)
	requireZ80EqualU16(t, "WZ", rig.cpu.WZ, 0x1234)
}

func TestZ80RegisterPairConsistency(t *testing.T) {
	cpu := NewZ80()

	cpu.SetBC(0x1234)
	requireZ80EqualU8(t, "B", cpu.B, 0x12)
	requireZ80EqualU8(t, "C", cpu.C, 0x34)

	cpu.H = 0xAB
	cpu.L = 0xCD
	requireZ80EqualU16(t, "HL", cpu.HL(), 0xABCD)

	cpu.SetIX(0x55AA)
	requireZ80EqualU8(t, "IXH", cpu.IXH, 0x55)
	requireZ80EqualU8(t, "IXL", cpu.IXL, 0xAA)
	cpu.IYL = 0x01
	cpu.IYH = 0x02
	requireZ80EqualU16(t, "IY", cpu.IY(), 0x0201)

	cpu.SetAF(0x8001)
	requireZ80EqualU8(t, "A", cpu.A, 0x80)
	requireZ80EqualU8(t, "F", cpu.F, 0x01)
}

func TestZ80ExchangeOps(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0x08, 0xD9, 0xEB}) // EX AF,AF' / EXX / EX DE,HL
	rig.cpu.SetAF(0x1122)
	rig.cpu.SetAF2(0x3344)
	rig.cpu.SetBC(0x1111)
	rig.cpu.SetBC2(0x2222)
	rig.cpu.SetDE(0x3333)
	rig.cpu.SetDE2(0x4444)
	rig.cpu.SetHL(0x5555)
	rig.cpu.SetHL2(0x6666)

	ticks := rig.step()
	requireZ80Ticks(t, ticks, 4)
	requireZ80EqualU16(t, "AF", rig.cpu.AF(), 0x3344)
	requireZ80EqualU16(t, "AF'", rig.cpu.AF2(), 0x1122)

	rig.step() // EXX
	requireZ80EqualU16(t, "BC", rig.cpu.BC(), 0x2222)
	requireZ80EqualU16(t, "DE", rig.cpu.DE(), 0x4444)
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x6666)

	rig.step() // EX DE,HL
	requireZ80EqualU16(t, "DE", rig.cpu.DE(), 0x6666)
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x4444)
}

func TestZ80HaltAssertsPinAndLoops(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{0x76}) // HALT

	ticks := rig.step()
	requireZ80Ticks(t, ticks, 4)
	if rig.r.Pins()&Z80PinHALT == 0 {
		t.Fatalf("HALT pin should be asserted")
	}

	// the halted CPU keeps executing 4 T-state fetch cycles at the same
	// address
	for i := 0; i < 3; i++ {
		requireZ80Ticks(t, rig.step(), 4)
		requireZ80EqualU16(t, "PC", rig.pcAtBoundary(), 0x0000)
	}
}

func TestZ80MemWriteReadRoundTrip(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0x32, 0x00, 0x40, // LD (0x4000),A
		0x3E, 0x00, //       LD A,0x00
		0x3A, 0x00, 0x40, // LD A,(0x4000)
	})
	rig.cpu.A = 0x5A

	requireZ80Ticks(t, rig.step(), 13)
	requireZ80EqualU8(t, "mem[0x4000]", rig.r.Mem[0x4000], 0x5A)
	// LD (nn),A leaves A in the high byte of WZ
	requireZ80EqualU8(t, "WZH", byte(rig.cpu.WZ>>8), 0x5A)
	requireZ80EqualU8(t, "WZL", byte(rig.cpu.WZ), 0x01)

	requireZ80Ticks(t, rig.step(), 7)
	requireZ80Ticks(t, rig.step(), 13)
	requireZ80EqualU8(t, "A", rig.cpu.A, 0x5A)
	requireZ80EqualU16(t, "WZ", rig.cpu.WZ, 0x4001)
}

func TestZ80Load16BitMemoryForms(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0000, []byte{
		0x22, 0x00, 0x30, // LD (0x3000),HL
		0x2A, 0x02, 0x30, // LD HL,(0x3002)
	})
	rig.cpu.SetHL(0xBEEF)
	rig.r.Mem[0x3002] = 0x78
	rig.r.Mem[0x3003] = 0x56

	requireZ80Ticks(t, rig.step(), 16)
	requireZ80EqualU8(t, "mem[0x3000]", rig.r.Mem[0x3000], 0xEF)
	requireZ80EqualU8(t, "mem[0x3001]", rig.r.Mem[0x3001], 0xBE)
	requireZ80EqualU16(t, "WZ", rig.cpu.WZ, 0x3001)

	requireZ80Ticks(t, rig.step(), 16)
	requireZ80EqualU16(t, "HL", rig.cpu.HL(), 0x5678)
	requireZ80EqualU16(t, "WZ", rig.cpu.WZ, 0x3003)
}
