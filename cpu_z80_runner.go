package chips

// Z80Runner is a minimal reference machine around a Z80: 64 KiB of flat
// memory, a full 16-bit port space, and the glue that services the bus
// contract every T-state (memory and I/O transactions, WAIT/INT/NMI/RES
// line levels, interrupt acknowledge data). It also models the interrupt
// daisy chain so peripherals with pending interrupts are prioritized and
// released through the RETI handshake.
//
// The runner is the host side of the pin protocol and is what the test
// suite and the z80run tool drive; a real emulated machine replaces it
// with its own chips sharing the same pin word.
type Z80Runner struct {
	CPU   *Z80
	Mem   [0x10000]byte
	IO    [0x10000]byte
	Ticks uint64

	// Input lines applied before every tick.
	WaitLine bool
	NMILine  bool
	ResLine  bool

	// Direct INT drive and acknowledge data for hosts without daisy
	// chain devices.
	IntLine bool
	IntData byte

	// Daisy chain, highest priority first.
	Devices []*Z80IntDevice

	pins uint64
}

// Z80IntDevice is one peripheral on the interrupt daisy chain.
type Z80IntDevice struct {
	Vector    byte
	Pending   bool
	InService bool
}

func NewZ80Runner() *Z80Runner {
	r := &Z80Runner{CPU: &Z80{}}
	r.pins = r.CPU.Init()
	return r
}

// Load copies a program image into memory.
func (r *Z80Runner) Load(addr uint16, program []byte) {
	for i, v := range program {
		r.Mem[addr+uint16(i)] = v
	}
}

// Pins returns the current pin word.
func (r *Z80Runner) Pins() uint64 {
	return r.pins
}

// Step advances the machine by one T-state: drive the input lines, tick
// the CPU, then perform the memory or I/O transaction the returned pin
// word requests.
func (r *Z80Runner) Step() uint64 {
	pins := r.pins
	pins = z80SetLine(pins, Z80PinWAIT, r.WaitLine)
	pins = z80SetLine(pins, Z80PinNMI, r.NMILine)
	pins = z80SetLine(pins, Z80PinRES, r.ResLine)
	pins = r.driveINT(pins)

	pins = r.CPU.Tick(pins)
	r.Ticks++

	addr := Z80GetAddr(pins)
	switch {
	case pins&(Z80PinM1|Z80PinIORQ) == Z80PinM1|Z80PinIORQ:
		pins = Z80SetData(pins, r.ackVector())
	case pins&(Z80PinMREQ|Z80PinRD) == Z80PinMREQ|Z80PinRD:
		pins = Z80SetData(pins, r.Mem[addr])
	case pins&(Z80PinMREQ|Z80PinWR) == Z80PinMREQ|Z80PinWR:
		r.Mem[addr] = Z80GetData(pins)
	case pins&(Z80PinIORQ|Z80PinRD) == Z80PinIORQ|Z80PinRD:
		pins = Z80SetData(pins, r.IO[addr])
	case pins&(Z80PinIORQ|Z80PinWR) == Z80PinIORQ|Z80PinWR:
		r.IO[addr] = Z80GetData(pins)
	}
	if pins&Z80PinRETI != 0 {
		r.serviceRETI()
	}
	r.pins = pins
	return pins
}

// Prefetch redirects execution to pc and runs the single tick that
// drives the opcode fetch for it, so the next RunInstruction spans
// exactly one instruction.
func (r *Z80Runner) Prefetch(pc uint16) {
	r.pins = r.CPU.Prefetch(pc)
	r.Step()
}

// RunInstruction steps until the CPU finishes an instruction (including
// any interrupt acceptance sequence it runs into) and returns the number
// of T-states consumed.
func (r *Z80Runner) RunInstruction() int {
	n := 0
	for {
		r.Step()
		n++
		if r.CPU.OpDone() {
			return n
		}
	}
}

// RunTicks advances the machine by n T-states.
func (r *Z80Runner) RunTicks(n int) {
	for i := 0; i < n; i++ {
		r.Step()
	}
}

// driveINT computes the aggregate INT level. With daisy chain devices
// attached, a device requests an interrupt when it is pending and its
// enable-in is high; a higher-priority device that is pending or in
// service holds enable low for everything downstream.
func (r *Z80Runner) driveINT(pins uint64) uint64 {
	if len(r.Devices) == 0 {
		pins = z80SetLine(pins, Z80PinINT, r.IntLine)
		return pins
	}
	pins &^= Z80PinINT
	pins |= Z80PinIEIO
	iei := true
	for _, dev := range r.Devices {
		if iei && dev.Pending {
			pins |= Z80PinINT
		}
		if dev.Pending || dev.InService {
			iei = false
			pins &^= Z80PinIEIO
		}
	}
	return pins
}

// ackVector answers the interrupt acknowledge machine cycle: the highest
// priority pending device with enable-in high goes into service and
// places its vector on the data bus.
func (r *Z80Runner) ackVector() byte {
	for _, dev := range r.Devices {
		if dev.InService {
			break
		}
		if dev.Pending {
			dev.Pending = false
			dev.InService = true
			return dev.Vector
		}
	}
	return r.IntData
}

// serviceRETI completes the daisy chain handshake: the highest priority
// device in service drops its in-service state when the CPU decodes
// RETI.
func (r *Z80Runner) serviceRETI() {
	for _, dev := range r.Devices {
		if dev.InService {
			dev.InService = false
			return
		}
	}
}

func z80SetLine(pins, mask uint64, level bool) uint64 {
	if level {
		return pins | mask
	}
	return pins &^ mask
}
