package chips

import "testing"

func TestZ80CBRotateRegister(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0100, []byte{0xCB, 0x00}) // RLC B
	rig.cpu.B = 0x80

	requireZ80Ticks(t, rig.step(), 8)
	requireZ80EqualU8(t, "B", rig.cpu.B, 0x01)
	requireZ80EqualU8(t, "F", rig.cpu.F, z80FlagC)
}

func TestZ80CBRotateMemory(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0100, []byte{0xCB, 0x16}) // RL (HL)
	rig.cpu.SetHL(0x1000)
	rig.cpu.F = z80FlagC
	rig.r.Mem[0x1000] = 0x40

	requireZ80Ticks(t, rig.step(), 15)
	requireZ80EqualU8(t, "mem[0x1000]", rig.r.Mem[0x1000], 0x81)
	requireZ80EqualU8(t, "F", rig.cpu.F, z80FlagS|z80FlagPV)
}

func TestZ80CBShifts(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0100, []byte{
		0xCB, 0x27, // SLA A
		0xCB, 0x2F, // SRA A
		0xCB, 0x37, // SLL A (undocumented)
		0xCB, 0x3F, // SRL A
	})
	rig.cpu.A = 0xC1

	rig.step()
	requireZ80EqualU8(t, "A after SLA", rig.cpu.A, 0x82)
	if !rig.cpu.Flag(z80FlagC) {
		t.Fatalf("SLA must move bit 7 into C")
	}

	rig.step()
	requireZ80EqualU8(t, "A after SRA", rig.cpu.A, 0xC1)

	rig.step()
	requireZ80EqualU8(t, "A after SLL", rig.cpu.A, 0x83)

	rig.step()
	requireZ80EqualU8(t, "A after SRL", rig.cpu.A, 0x41)
	if !rig.cpu.Flag(z80FlagC) {
		t.Fatalf("SRL must move bit 0 into C")
	}
}

func TestZ80BITRegisterFlags(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0100, []byte{0xCB, 0x68}) // BIT 5,B
	rig.cpu.B = 0x20
	rig.cpu.F = z80FlagC

	requireZ80Ticks(t, rig.step(), 8)
	// bit set: Z/PV clear, H always set, C preserved, X/Y from operand
	requireZ80EqualU8(t, "F", rig.cpu.F, z80FlagH|z80FlagC|z80FlagY)

	rig.resetAndLoad(0x0100, []byte{0xCB, 0x78}) // BIT 7,B
	rig.cpu.B = 0x80
	rig.step()
	requireZ80EqualU8(t, "F", rig.cpu.F, z80FlagH|z80FlagS)

	rig.resetAndLoad(0x0100, []byte{0xCB, 0x40}) // BIT 0,B
	rig.cpu.B = 0x00
	rig.step()
	requireZ80EqualU8(t, "F", rig.cpu.F, z80FlagH|z80FlagZ|z80FlagPV)
}

func TestZ80BITMemoryLeaksWZ(t *testing.T) {
	rig := newCPUZ80TestRig()
	// LD A,(0x2A00) sets WZ=0x2A01, whose high byte then shows up in
	// the X/Y flags of BIT n,(HL)
	rig.resetAndLoad(0x0100, []byte{
		0x3A, 0x00, 0x2A, // LD A,(0x2A00)
		0xCB, 0x46, //       BIT 0,(HL)
	})
	rig.cpu.SetHL(0x1000)
	rig.r.Mem[0x1000] = 0x01

	rig.step()
	requireZ80Ticks(t, rig.step(), 12)
	requireZ80EqualU8(t, "F", rig.cpu.F, z80FlagH|z80FlagY|z80FlagX)
}

func TestZ80SetResMemory(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0100, []byte{
		0xCB, 0xFE, // SET 7,(HL)
		0xCB, 0x86, // RES 0,(HL)
	})
	rig.cpu.SetHL(0x1000)
	rig.r.Mem[0x1000] = 0x01

	requireZ80Ticks(t, rig.step(), 15)
	requireZ80EqualU8(t, "mem[0x1000]", rig.r.Mem[0x1000], 0x81)

	requireZ80Ticks(t, rig.step(), 15)
	requireZ80EqualU8(t, "mem[0x1000]", rig.r.Mem[0x1000], 0x80)
}

func TestZ80SetResRegister(t *testing.T) {
	rig := newCPUZ80TestRig()
	rig.resetAndLoad(0x0100, []byte{
		0xCB, 0xC7, // SET 0,A
		0xCB, 0xA7, // RES 4,A
	})
	rig.cpu.A = 0x10
	rig.cpu.F = 0xFF

	rig.step()
	requireZ80EqualU8(t, "A", rig.cpu.A, 0x11)
	// SET/RES leave the flags alone
	requireZ80EqualU8(t, "F", rig.cpu.F, 0xFF)

	rig.step()
	requireZ80EqualU8(t, "A", rig.cpu.A, 0x01)
}
