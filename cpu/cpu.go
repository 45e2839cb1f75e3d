// Package cpu implements the 6502 core used by the NES. Every instruction is
// executed on its first cycle and the remaining cycles are burnt afterwards,
// so the CPU only has to be clocked once per machine cycle.
package cpu

// Bus is the CPU's view of the address space.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, data uint8)
}

// Interrupt selects the vector taken by CPU.Interrupt.
type Interrupt int

const (
	NMI Interrupt = iota
	IRQ
)

const (
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
	stackBase   = 0x0100
)

// DMA stall charged to the CPU by an OAM transfer, before the parity cycle.
const DMACycles = 513

type Flag uint8

const (
	Carry Flag = 1 << iota
	Zero
	InterruptDisable
	Decimal
	Break
	Unused
	Overflow
	Negative
)

// Registers is the programmer-visible register file.
type Registers struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16
	P  uint8
}

// CPU is a plain value: copying it copies the complete processor state.
type CPU struct {
	Registers

	fetched uint8
	addrAbs uint16
	addrRel uint16
	opcode  uint8
	mode    Mode

	cycles int
	total  uint64
}

// Clock advances the CPU by one cycle.
func (c *CPU) Clock(bus Bus) {
	if c.cycles == 0 {
		c.opcode = bus.Read(c.PC)
		c.setFlag(Unused, true)
		c.PC++

		ins := &lookup[c.opcode]
		c.cycles = int(ins.Cycles)
		c.mode = ins.Mode

		extraAddr := c.address(bus)
		extraOp := ins.op(c, bus)
		c.cycles += int(extraAddr & extraOp)
		c.setFlag(Unused, true)
	}
	c.cycles--
	c.total++
}

// Reset loads the program counter from the reset vector.
func (c *CPU) Reset(bus Bus) {
	lo := uint16(bus.Read(resetVector))
	hi := uint16(bus.Read(resetVector + 1))

	c.Registers = Registers{
		PC: hi<<8 | lo,
		SP: 0xFD,
		P:  uint8(InterruptDisable | Unused),
	}
	c.fetched = 0
	c.addrAbs = 0
	c.addrRel = 0
	c.opcode = 0
	c.mode = IMP
	c.cycles = 8
	c.total = 0
}

// Interrupt pushes the return state and jumps through the interrupt's vector.
// A masked IRQ is ignored.
func (c *CPU) Interrupt(bus Bus, kind Interrupt) {
	vector := uint16(nmiVector)
	if kind == IRQ {
		if c.getFlag(InterruptDisable) == 1 {
			return
		}
		vector = irqVector
	}

	c.push16(bus, c.PC)
	c.push(bus, (c.P|uint8(Unused))&^uint8(Break))
	c.setFlag(InterruptDisable, true)

	lo := uint16(bus.Read(vector))
	hi := uint16(bus.Read(vector + 1))
	c.PC = hi<<8 | lo

	c.cycles += 7
}

// SkipDMACycles stalls the CPU for an OAM DMA, one cycle longer when the
// transfer starts on an odd cycle.
func (c *CPU) SkipDMACycles() {
	c.cycles += DMACycles + int(c.total&1)
}

// Pending is the number of cycles left before the next instruction is fetched.
func (c *CPU) Pending() int {
	return c.cycles
}

// Cycles is the number of cycles clocked since the last reset.
func (c *CPU) Cycles() uint64 {
	return c.total
}

func (c *CPU) Flag(f Flag) bool {
	return c.P&uint8(f) != 0
}

func (c *CPU) getFlag(f Flag) uint8 {
	if c.P&uint8(f) != 0 {
		return 1
	}
	return 0
}

func (c *CPU) setFlag(f Flag, v bool) {
	if v {
		c.P |= uint8(f)
	} else {
		c.P &^= uint8(f)
	}
}

func (c *CPU) setZN(v uint8) {
	c.setFlag(Zero, v == 0)
	c.setFlag(Negative, v&0x80 != 0)
}

func (c *CPU) fetch(bus Bus) uint8 {
	if c.mode != IMP {
		c.fetched = bus.Read(c.addrAbs)
	}
	return c.fetched
}

func (c *CPU) push(bus Bus, v uint8) {
	bus.Write(stackBase+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) push16(bus Bus, v uint16) {
	c.push(bus, uint8(v>>8))
	c.push(bus, uint8(v))
}

func (c *CPU) pop(bus Bus) uint8 {
	c.SP++
	return bus.Read(stackBase + uint16(c.SP))
}

func (c *CPU) pop16(bus Bus) uint16 {
	lo := uint16(c.pop(bus))
	hi := uint16(c.pop(bus))
	return hi<<8 | lo
}
