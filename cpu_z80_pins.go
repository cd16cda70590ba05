package chips

// The Z80 core communicates with the rest of an emulated system through a
// single 64-bit pin word. Bits 0..39 mirror the physical pins of the chip
// (plus two virtual daisy-chain pins); the layout is shared by every chip
// emulation that sits on the same bus and must not change.

// Address bus pins A0..A15 (bits 0..15).
const (
	Z80PinA0 uint64 = 1 << iota
	Z80PinA1
	Z80PinA2
	Z80PinA3
	Z80PinA4
	Z80PinA5
	Z80PinA6
	Z80PinA7
	Z80PinA8
	Z80PinA9
	Z80PinA10
	Z80PinA11
	Z80PinA12
	Z80PinA13
	Z80PinA14
	Z80PinA15
)

// Data bus pins D0..D7 (bits 16..23).
const (
	Z80PinD0 uint64 = 1 << (16 + iota)
	Z80PinD1
	Z80PinD2
	Z80PinD3
	Z80PinD4
	Z80PinD5
	Z80PinD6
	Z80PinD7
)

// Control pins.
const (
	Z80PinM1   uint64 = 1 << 24 // machine cycle 1
	Z80PinMREQ uint64 = 1 << 25 // memory request
	Z80PinIORQ uint64 = 1 << 26 // input/output request
	Z80PinRD   uint64 = 1 << 27 // read
	Z80PinWR   uint64 = 1 << 28 // write
	Z80PinHALT uint64 = 1 << 29 // halt state
	Z80PinINT  uint64 = 1 << 30 // interrupt request
	Z80PinRES  uint64 = 1 << 31 // reset requested
	Z80PinNMI  uint64 = 1 << 32 // non-maskable interrupt
	Z80PinWAIT uint64 = 1 << 33 // wait requested
	Z80PinRFSH uint64 = 1 << 34 // refresh
)

// Virtual pins for the interrupt daisy-chain protocol.
const (
	Z80PinIEIO uint64 = 1 << 37 // unified 'interrupt enable in+out'
	Z80PinRETI uint64 = 1 << 38 // cpu has decoded a RETI instruction
)

const (
	// Z80CtrlPinMask covers the strobes that are cleared at the start of
	// every tick; each step re-asserts only the strobes it needs.
	Z80CtrlPinMask = Z80PinM1 | Z80PinMREQ | Z80PinIORQ | Z80PinRD | Z80PinWR | Z80PinRFSH

	// Z80PinMask covers all 40 pins.
	Z80PinMask uint64 = (1 << 40) - 1
)

// Z80GetAddr returns the 16-bit address bus value.
func Z80GetAddr(pins uint64) uint16 {
	return uint16(pins)
}

// Z80SetAddr replaces the 16-bit address bus value.
func Z80SetAddr(pins uint64, addr uint16) uint64 {
	return (pins &^ 0xFFFF) | uint64(addr)
}

// Z80GetData returns the 8-bit data bus value.
func Z80GetData(pins uint64) byte {
	return byte(pins >> 16)
}

// Z80SetData replaces the 8-bit data bus value.
func Z80SetData(pins uint64, data byte) uint64 {
	return (pins &^ 0xFF0000) | (uint64(data) << 16)
}

// z80SetAddrX sets the address bus and asserts extra pins in one go.
func z80SetAddrX(pins uint64, addr uint16, x uint64) uint64 {
	return (pins &^ 0xFFFF) | uint64(addr) | x
}

// z80SetAddrDataX sets address and data bus and asserts extra pins.
func z80SetAddrDataX(pins uint64, addr uint16, data byte, x uint64) uint64 {
	return (pins &^ 0xFFFFFF) | uint64(addr) | (uint64(data) << 16) | x
}
