package cpu

import "fmt"

// Line is one disassembled instruction.
type Line struct {
	Addr uint16
	Next uint16
	Text string
}

// Disassemble decodes the instructions between start and stop inclusive.
// read must not have side effects; callers pass a peek function.
func Disassemble(read func(addr uint16) uint8, start, stop uint16) []Line {
	var lines []Line

	addr := uint32(start)
	for addr <= uint32(stop) {
		lineAddr := uint16(addr)
		opcode := read(lineAddr)
		addr++
		ins := lookup[opcode]

		var lo, hi uint8
		if ins.Mode.Operands() >= 1 {
			lo = read(uint16(addr))
			addr++
		}
		if ins.Mode.Operands() == 2 {
			hi = read(uint16(addr))
			addr++
		}
		word := uint16(hi)<<8 | uint16(lo)

		var operand string
		switch ins.Mode {
		case IMP:
		case IMM:
			operand = fmt.Sprintf("#$%02X", lo)
		case ZP0:
			operand = fmt.Sprintf("$%02X", lo)
		case ZPX:
			operand = fmt.Sprintf("$%02X, X", lo)
		case ZPY:
			operand = fmt.Sprintf("$%02X, Y", lo)
		case IZX:
			operand = fmt.Sprintf("($%02X, X)", lo)
		case IZY:
			operand = fmt.Sprintf("($%02X), Y", lo)
		case ABS:
			operand = fmt.Sprintf("$%04X", word)
		case ABX:
			operand = fmt.Sprintf("$%04X, X", word)
		case ABY:
			operand = fmt.Sprintf("$%04X, Y", word)
		case IND:
			operand = fmt.Sprintf("($%04X)", word)
		case REL:
			target := uint16(addr) + uint16(int8(lo))
			operand = fmt.Sprintf("$%02X [$%04X]", lo, target)
		}

		text := fmt.Sprintf("$%04X: %s %s {%s}", lineAddr, ins.Name, operand, ins.Mode)
		if operand == "" {
			text = fmt.Sprintf("$%04X: %s {%s}", lineAddr, ins.Name, ins.Mode)
		}
		lines = append(lines, Line{Addr: lineAddr, Next: uint16(addr), Text: text})
	}
	return lines
}
