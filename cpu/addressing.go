package cpu

// Mode is an addressing mode.
type Mode uint8

const (
	IMP Mode = iota // implied or accumulator
	IMM
	ZP0
	ZPX
	ZPY
	REL
	ABS
	ABX
	ABY
	IND
	IZX
	IZY
)

var modeNames = [...]string{"IMP", "IMM", "ZP0", "ZPX", "ZPY", "REL", "ABS", "ABX", "ABY", "IND", "IZX", "IZY"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "???"
}

// Operands is the number of operand bytes following the opcode.
func (m Mode) Operands() int {
	switch m {
	case IMP:
		return 0
	case ABS, ABX, ABY, IND:
		return 2
	}
	return 1
}

// address resolves the operand of the current instruction. It returns 1 when
// an indexed access crossed a page boundary.
func (c *CPU) address(bus Bus) uint8 {
	switch c.mode {
	case IMP:
		c.fetched = c.A

	case IMM:
		c.addrAbs = c.PC
		c.PC++

	case ZP0:
		c.addrAbs = uint16(bus.Read(c.PC))
		c.PC++

	case ZPX:
		c.addrAbs = uint16(bus.Read(c.PC)+c.X) & 0x00FF
		c.PC++

	case ZPY:
		c.addrAbs = uint16(bus.Read(c.PC)+c.Y) & 0x00FF
		c.PC++

	case REL:
		c.addrRel = uint16(bus.Read(c.PC))
		c.PC++
		if c.addrRel&0x80 != 0 {
			c.addrRel |= 0xFF00
		}

	case ABS:
		c.addrAbs = c.readPC16(bus)

	case ABX:
		base := c.readPC16(bus)
		c.addrAbs = base + uint16(c.X)
		return pageCrossed(base, c.addrAbs)

	case ABY:
		base := c.readPC16(bus)
		c.addrAbs = base + uint16(c.Y)
		return pageCrossed(base, c.addrAbs)

	case IND:
		ptr := c.readPC16(bus)
		// The pointer's high byte never carries into the next page.
		next := ptr&0xFF00 | uint16(uint8(ptr)+1)
		c.addrAbs = uint16(bus.Read(next))<<8 | uint16(bus.Read(ptr))

	case IZX:
		t := bus.Read(c.PC) + c.X
		c.PC++
		lo := uint16(bus.Read(uint16(t)))
		hi := uint16(bus.Read(uint16(t + 1)))
		c.addrAbs = hi<<8 | lo

	case IZY:
		t := bus.Read(c.PC)
		c.PC++
		lo := uint16(bus.Read(uint16(t)))
		hi := uint16(bus.Read(uint16(t + 1)))
		base := hi<<8 | lo
		c.addrAbs = base + uint16(c.Y)
		return pageCrossed(base, c.addrAbs)
	}
	return 0
}

func (c *CPU) readPC16(bus Bus) uint16 {
	lo := uint16(bus.Read(c.PC))
	c.PC++
	hi := uint16(bus.Read(c.PC))
	c.PC++
	return hi<<8 | lo
}

func pageCrossed(a, b uint16) uint8 {
	if a&0xFF00 != b&0xFF00 {
		return 1
	}
	return 0
}
