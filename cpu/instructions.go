package cpu

type operation func(c *CPU, bus Bus) uint8

type instruction struct {
	Name   string
	Mode   Mode
	Cycles uint8
	op     operation
}

// Opcode returns the mnemonic, addressing mode and base cycle count of op.
func Opcode(op uint8) (string, Mode, uint8) {
	ins := lookup[op]
	return ins.Name, ins.Mode, ins.Cycles
}

// lookup is indexed by opcode. Unofficial opcodes other than the NOP family
// decode as "???" and do nothing.
var lookup = [256]instruction{
	{"BRK", IMP, 7, brk}, {"ORA", IZX, 6, ora}, {"???", IMP, 2, xxx}, {"???", IMP, 8, xxx}, {"NOP", ZP0, 3, nop}, {"ORA", ZP0, 3, ora}, {"ASL", ZP0, 5, asl}, {"???", IMP, 5, xxx}, {"PHP", IMP, 3, php}, {"ORA", IMM, 2, ora}, {"ASL", IMP, 2, asl}, {"???", IMP, 2, xxx}, {"NOP", ABS, 4, nop}, {"ORA", ABS, 4, ora}, {"ASL", ABS, 6, asl}, {"???", IMP, 6, xxx},
	{"BPL", REL, 2, bpl}, {"ORA", IZY, 5, ora}, {"???", IMP, 2, xxx}, {"???", IMP, 8, xxx}, {"NOP", ZPX, 4, nop}, {"ORA", ZPX, 4, ora}, {"ASL", ZPX, 6, asl}, {"???", IMP, 6, xxx}, {"CLC", IMP, 2, clc}, {"ORA", ABY, 4, ora}, {"NOP", IMP, 2, nop}, {"???", IMP, 7, xxx}, {"NOP", ABX, 4, nop}, {"ORA", ABX, 4, ora}, {"ASL", ABX, 7, asl}, {"???", IMP, 7, xxx},
	{"JSR", ABS, 6, jsr}, {"AND", IZX, 6, and}, {"???", IMP, 2, xxx}, {"???", IMP, 8, xxx}, {"BIT", ZP0, 3, bit}, {"AND", ZP0, 3, and}, {"ROL", ZP0, 5, rol}, {"???", IMP, 5, xxx}, {"PLP", IMP, 4, plp}, {"AND", IMM, 2, and}, {"ROL", IMP, 2, rol}, {"???", IMP, 2, xxx}, {"BIT", ABS, 4, bit}, {"AND", ABS, 4, and}, {"ROL", ABS, 6, rol}, {"???", IMP, 6, xxx},
	{"BMI", REL, 2, bmi}, {"AND", IZY, 5, and}, {"???", IMP, 2, xxx}, {"???", IMP, 8, xxx}, {"NOP", ZPX, 4, nop}, {"AND", ZPX, 4, and}, {"ROL", ZPX, 6, rol}, {"???", IMP, 6, xxx}, {"SEC", IMP, 2, sec}, {"AND", ABY, 4, and}, {"NOP", IMP, 2, nop}, {"???", IMP, 7, xxx}, {"NOP", ABX, 4, nop}, {"AND", ABX, 4, and}, {"ROL", ABX, 7, rol}, {"???", IMP, 7, xxx},
	{"RTI", IMP, 6, rti}, {"EOR", IZX, 6, eor}, {"???", IMP, 2, xxx}, {"???", IMP, 8, xxx}, {"NOP", ZP0, 3, nop}, {"EOR", ZP0, 3, eor}, {"LSR", ZP0, 5, lsr}, {"???", IMP, 5, xxx}, {"PHA", IMP, 3, pha}, {"EOR", IMM, 2, eor}, {"LSR", IMP, 2, lsr}, {"???", IMP, 2, xxx}, {"JMP", ABS, 3, jmp}, {"EOR", ABS, 4, eor}, {"LSR", ABS, 6, lsr}, {"???", IMP, 6, xxx},
	{"BVC", REL, 2, bvc}, {"EOR", IZY, 5, eor}, {"???", IMP, 2, xxx}, {"???", IMP, 8, xxx}, {"NOP", ZPX, 4, nop}, {"EOR", ZPX, 4, eor}, {"LSR", ZPX, 6, lsr}, {"???", IMP, 6, xxx}, {"CLI", IMP, 2, cli}, {"EOR", ABY, 4, eor}, {"NOP", IMP, 2, nop}, {"???", IMP, 7, xxx}, {"NOP", ABX, 4, nop}, {"EOR", ABX, 4, eor}, {"LSR", ABX, 7, lsr}, {"???", IMP, 7, xxx},
	{"RTS", IMP, 6, rts}, {"ADC", IZX, 6, adc}, {"???", IMP, 2, xxx}, {"???", IMP, 8, xxx}, {"NOP", ZP0, 3, nop}, {"ADC", ZP0, 3, adc}, {"ROR", ZP0, 5, ror}, {"???", IMP, 5, xxx}, {"PLA", IMP, 4, pla}, {"ADC", IMM, 2, adc}, {"ROR", IMP, 2, ror}, {"???", IMP, 2, xxx}, {"JMP", IND, 5, jmp}, {"ADC", ABS, 4, adc}, {"ROR", ABS, 6, ror}, {"???", IMP, 6, xxx},
	{"BVS", REL, 2, bvs}, {"ADC", IZY, 5, adc}, {"???", IMP, 2, xxx}, {"???", IMP, 8, xxx}, {"NOP", ZPX, 4, nop}, {"ADC", ZPX, 4, adc}, {"ROR", ZPX, 6, ror}, {"???", IMP, 6, xxx}, {"SEI", IMP, 2, sei}, {"ADC", ABY, 4, adc}, {"NOP", IMP, 2, nop}, {"???", IMP, 7, xxx}, {"NOP", ABX, 4, nop}, {"ADC", ABX, 4, adc}, {"ROR", ABX, 7, ror}, {"???", IMP, 7, xxx},
	{"NOP", IMM, 2, nop}, {"STA", IZX, 6, sta}, {"NOP", IMM, 2, nop}, {"???", IMP, 6, xxx}, {"STY", ZP0, 3, sty}, {"STA", ZP0, 3, sta}, {"STX", ZP0, 3, stx}, {"???", IMP, 3, xxx}, {"DEY", IMP, 2, dey}, {"NOP", IMM, 2, nop}, {"TXA", IMP, 2, txa}, {"???", IMP, 2, xxx}, {"STY", ABS, 4, sty}, {"STA", ABS, 4, sta}, {"STX", ABS, 4, stx}, {"???", IMP, 4, xxx},
	{"BCC", REL, 2, bcc}, {"STA", IZY, 6, sta}, {"???", IMP, 2, xxx}, {"???", IMP, 6, xxx}, {"STY", ZPX, 4, sty}, {"STA", ZPX, 4, sta}, {"STX", ZPY, 4, stx}, {"???", IMP, 4, xxx}, {"TYA", IMP, 2, tya}, {"STA", ABY, 5, sta}, {"TXS", IMP, 2, txs}, {"???", IMP, 5, xxx}, {"???", IMP, 5, xxx}, {"STA", ABX, 5, sta}, {"???", IMP, 5, xxx}, {"???", IMP, 5, xxx},
	{"LDY", IMM, 2, ldy}, {"LDA", IZX, 6, lda}, {"LDX", IMM, 2, ldx}, {"???", IMP, 6, xxx}, {"LDY", ZP0, 3, ldy}, {"LDA", ZP0, 3, lda}, {"LDX", ZP0, 3, ldx}, {"???", IMP, 3, xxx}, {"TAY", IMP, 2, tay}, {"LDA", IMM, 2, lda}, {"TAX", IMP, 2, tax}, {"???", IMP, 2, xxx}, {"LDY", ABS, 4, ldy}, {"LDA", ABS, 4, lda}, {"LDX", ABS, 4, ldx}, {"???", IMP, 4, xxx},
	{"BCS", REL, 2, bcs}, {"LDA", IZY, 5, lda}, {"???", IMP, 2, xxx}, {"???", IMP, 5, xxx}, {"LDY", ZPX, 4, ldy}, {"LDA", ZPX, 4, lda}, {"LDX", ZPY, 4, ldx}, {"???", IMP, 4, xxx}, {"CLV", IMP, 2, clv}, {"LDA", ABY, 4, lda}, {"TSX", IMP, 2, tsx}, {"???", IMP, 4, xxx}, {"LDY", ABX, 4, ldy}, {"LDA", ABX, 4, lda}, {"LDX", ABY, 4, ldx}, {"???", IMP, 4, xxx},
	{"CPY", IMM, 2, cpy}, {"CMP", IZX, 6, cmp}, {"NOP", IMM, 2, nop}, {"???", IMP, 8, xxx}, {"CPY", ZP0, 3, cpy}, {"CMP", ZP0, 3, cmp}, {"DEC", ZP0, 5, dec}, {"???", IMP, 5, xxx}, {"INY", IMP, 2, iny}, {"CMP", IMM, 2, cmp}, {"DEX", IMP, 2, dex}, {"???", IMP, 2, xxx}, {"CPY", ABS, 4, cpy}, {"CMP", ABS, 4, cmp}, {"DEC", ABS, 6, dec}, {"???", IMP, 6, xxx},
	{"BNE", REL, 2, bne}, {"CMP", IZY, 5, cmp}, {"???", IMP, 2, xxx}, {"???", IMP, 8, xxx}, {"NOP", ZPX, 4, nop}, {"CMP", ZPX, 4, cmp}, {"DEC", ZPX, 6, dec}, {"???", IMP, 6, xxx}, {"CLD", IMP, 2, cld}, {"CMP", ABY, 4, cmp}, {"NOP", IMP, 2, nop}, {"???", IMP, 7, xxx}, {"NOP", ABX, 4, nop}, {"CMP", ABX, 4, cmp}, {"DEC", ABX, 7, dec}, {"???", IMP, 7, xxx},
	{"CPX", IMM, 2, cpx}, {"SBC", IZX, 6, sbc}, {"NOP", IMM, 2, nop}, {"???", IMP, 8, xxx}, {"CPX", ZP0, 3, cpx}, {"SBC", ZP0, 3, sbc}, {"INC", ZP0, 5, inc}, {"???", IMP, 5, xxx}, {"INX", IMP, 2, inx}, {"SBC", IMM, 2, sbc}, {"NOP", IMP, 2, nop}, {"SBC", IMM, 2, sbc}, {"CPX", ABS, 4, cpx}, {"SBC", ABS, 4, sbc}, {"INC", ABS, 6, inc}, {"???", IMP, 6, xxx},
	{"BEQ", REL, 2, beq}, {"SBC", IZY, 5, sbc}, {"???", IMP, 2, xxx}, {"???", IMP, 8, xxx}, {"NOP", ZPX, 4, nop}, {"SBC", ZPX, 4, sbc}, {"INC", ZPX, 6, inc}, {"???", IMP, 6, xxx}, {"SED", IMP, 2, sed}, {"SBC", ABY, 4, sbc}, {"NOP", IMP, 2, nop}, {"???", IMP, 7, xxx}, {"NOP", ABX, 4, nop}, {"SBC", ABX, 4, sbc}, {"INC", ABX, 7, inc}, {"???", IMP, 7, xxx},
}

func adc(c *CPU, bus Bus) uint8 {
	c.fetch(bus)
	temp := uint16(c.A) + uint16(c.fetched) + uint16(c.getFlag(Carry))
	c.setFlag(Carry, temp > 0xFF)
	c.setFlag(Overflow, (^(uint16(c.A)^uint16(c.fetched)))&(uint16(c.A)^temp)&0x0080 != 0)
	c.A = uint8(temp)
	c.setZN(c.A)
	return 1
}

func sbc(c *CPU, bus Bus) uint8 {
	c.fetch(bus)
	value := uint16(c.fetched) ^ 0x00FF
	temp := uint16(c.A) + value + uint16(c.getFlag(Carry))
	c.setFlag(Carry, temp&0xFF00 != 0)
	c.setFlag(Overflow, (temp^uint16(c.A))&(temp^value)&0x0080 != 0)
	c.A = uint8(temp)
	c.setZN(c.A)
	return 1
}

func and(c *CPU, bus Bus) uint8 {
	c.A &= c.fetch(bus)
	c.setZN(c.A)
	return 1
}

func ora(c *CPU, bus Bus) uint8 {
	c.A |= c.fetch(bus)
	c.setZN(c.A)
	return 1
}

func eor(c *CPU, bus Bus) uint8 {
	c.A ^= c.fetch(bus)
	c.setZN(c.A)
	return 1
}

// writeBack stores the result of a shift or rotate in A or memory.
func (c *CPU) writeBack(bus Bus, v uint8) {
	if c.mode == IMP {
		c.A = v
		return
	}
	bus.Write(c.addrAbs, v)
}

func asl(c *CPU, bus Bus) uint8 {
	v := c.fetch(bus)
	c.setFlag(Carry, v&0x80 != 0)
	v <<= 1
	c.setZN(v)
	c.writeBack(bus, v)
	return 0
}

func lsr(c *CPU, bus Bus) uint8 {
	v := c.fetch(bus)
	c.setFlag(Carry, v&0x01 != 0)
	v >>= 1
	c.setZN(v)
	c.writeBack(bus, v)
	return 0
}

func rol(c *CPU, bus Bus) uint8 {
	v := c.fetch(bus)
	carry := c.getFlag(Carry)
	c.setFlag(Carry, v&0x80 != 0)
	v = v<<1 | carry
	c.setZN(v)
	c.writeBack(bus, v)
	return 0
}

func ror(c *CPU, bus Bus) uint8 {
	v := c.fetch(bus)
	carry := c.getFlag(Carry)
	c.setFlag(Carry, v&0x01 != 0)
	v = v>>1 | carry<<7
	c.setZN(v)
	c.writeBack(bus, v)
	return 0
}

func (c *CPU) branch(taken bool) uint8 {
	if !taken {
		return 0
	}
	c.cycles++
	c.addrAbs = c.PC + c.addrRel
	if c.addrAbs&0xFF00 != c.PC&0xFF00 {
		c.cycles++
	}
	c.PC = c.addrAbs
	return 0
}

func bcc(c *CPU, _ Bus) uint8 { return c.branch(!c.Flag(Carry)) }
func bcs(c *CPU, _ Bus) uint8 { return c.branch(c.Flag(Carry)) }
func beq(c *CPU, _ Bus) uint8 { return c.branch(c.Flag(Zero)) }
func bne(c *CPU, _ Bus) uint8 { return c.branch(!c.Flag(Zero)) }
func bmi(c *CPU, _ Bus) uint8 { return c.branch(c.Flag(Negative)) }
func bpl(c *CPU, _ Bus) uint8 { return c.branch(!c.Flag(Negative)) }
func bvc(c *CPU, _ Bus) uint8 { return c.branch(!c.Flag(Overflow)) }
func bvs(c *CPU, _ Bus) uint8 { return c.branch(c.Flag(Overflow)) }

func bit(c *CPU, bus Bus) uint8 {
	v := c.fetch(bus)
	c.setFlag(Zero, c.A&v == 0)
	c.setFlag(Negative, v&0x80 != 0)
	c.setFlag(Overflow, v&0x40 != 0)
	return 0
}

func brk(c *CPU, bus Bus) uint8 {
	c.PC++
	c.push16(bus, c.PC)
	c.push(bus, c.P|uint8(Break|Unused))
	c.setFlag(InterruptDisable, true)
	c.PC = uint16(bus.Read(irqVector)) | uint16(bus.Read(irqVector+1))<<8
	return 0
}

func clc(c *CPU, _ Bus) uint8 { c.setFlag(Carry, false); return 0 }
func cld(c *CPU, _ Bus) uint8 { c.setFlag(Decimal, false); return 0 }
func cli(c *CPU, _ Bus) uint8 { c.setFlag(InterruptDisable, false); return 0 }
func clv(c *CPU, _ Bus) uint8 { c.setFlag(Overflow, false); return 0 }
func sec(c *CPU, _ Bus) uint8 { c.setFlag(Carry, true); return 0 }
func sed(c *CPU, _ Bus) uint8 { c.setFlag(Decimal, true); return 0 }
func sei(c *CPU, _ Bus) uint8 { c.setFlag(InterruptDisable, true); return 0 }

func (c *CPU) compare(reg, v uint8) {
	c.setFlag(Carry, reg >= v)
	c.setZN(reg - v)
}

func cmp(c *CPU, bus Bus) uint8 {
	c.compare(c.A, c.fetch(bus))
	return 1
}

func cpx(c *CPU, bus Bus) uint8 {
	c.compare(c.X, c.fetch(bus))
	return 0
}

func cpy(c *CPU, bus Bus) uint8 {
	c.compare(c.Y, c.fetch(bus))
	return 0
}

func dec(c *CPU, bus Bus) uint8 {
	v := c.fetch(bus) - 1
	bus.Write(c.addrAbs, v)
	c.setZN(v)
	return 0
}

func inc(c *CPU, bus Bus) uint8 {
	v := c.fetch(bus) + 1
	bus.Write(c.addrAbs, v)
	c.setZN(v)
	return 0
}

func dex(c *CPU, _ Bus) uint8 { c.X--; c.setZN(c.X); return 0 }
func dey(c *CPU, _ Bus) uint8 { c.Y--; c.setZN(c.Y); return 0 }
func inx(c *CPU, _ Bus) uint8 { c.X++; c.setZN(c.X); return 0 }
func iny(c *CPU, _ Bus) uint8 { c.Y++; c.setZN(c.Y); return 0 }

func jmp(c *CPU, _ Bus) uint8 {
	c.PC = c.addrAbs
	return 0
}

func jsr(c *CPU, bus Bus) uint8 {
	c.push16(bus, c.PC-1)
	c.PC = c.addrAbs
	return 0
}

func rts(c *CPU, bus Bus) uint8 {
	c.PC = c.pop16(bus) + 1
	return 0
}

func rti(c *CPU, bus Bus) uint8 {
	c.P = c.pop(bus) &^ uint8(Break|Unused)
	c.PC = c.pop16(bus)
	return 0
}

func lda(c *CPU, bus Bus) uint8 {
	c.A = c.fetch(bus)
	c.setZN(c.A)
	return 1
}

func ldx(c *CPU, bus Bus) uint8 {
	c.X = c.fetch(bus)
	c.setZN(c.X)
	return 1
}

func ldy(c *CPU, bus Bus) uint8 {
	c.Y = c.fetch(bus)
	c.setZN(c.Y)
	return 1
}

// nop covers the unofficial NOPs too; they still take the page-cross cycle.
func nop(_ *CPU, _ Bus) uint8 {
	return 1
}

func pha(c *CPU, bus Bus) uint8 {
	c.push(bus, c.A)
	return 0
}

func php(c *CPU, bus Bus) uint8 {
	c.push(bus, c.P|uint8(Break|Unused))
	return 0
}

func pla(c *CPU, bus Bus) uint8 {
	c.A = c.pop(bus)
	c.setZN(c.A)
	return 0
}

func plp(c *CPU, bus Bus) uint8 {
	c.P = c.pop(bus)&^uint8(Break) | uint8(Unused)
	return 0
}

func sta(c *CPU, bus Bus) uint8 { bus.Write(c.addrAbs, c.A); return 0 }
func stx(c *CPU, bus Bus) uint8 { bus.Write(c.addrAbs, c.X); return 0 }
func sty(c *CPU, bus Bus) uint8 { bus.Write(c.addrAbs, c.Y); return 0 }

func tax(c *CPU, _ Bus) uint8 { c.X = c.A; c.setZN(c.X); return 0 }
func tay(c *CPU, _ Bus) uint8 { c.Y = c.A; c.setZN(c.Y); return 0 }
func tsx(c *CPU, _ Bus) uint8 { c.X = c.SP; c.setZN(c.X); return 0 }
func txa(c *CPU, _ Bus) uint8 { c.A = c.X; c.setZN(c.A); return 0 }
func tya(c *CPU, _ Bus) uint8 { c.A = c.Y; c.setZN(c.A); return 0 }
func txs(c *CPU, _ Bus) uint8 { c.SP = c.X; return 0 }

func xxx(_ *CPU, _ Bus) uint8 {
	return 0
}
