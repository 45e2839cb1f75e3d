package mapper

// NROM is mapper 0: no bank switching. A single 16KB PRG bank is mirrored
// into both halves of $8000-$FFFF.
type NROM struct {
	PRGBanks  uint8
	CHRBanks  uint8
	mirroring Mirroring
}

func (m *NROM) CPUMapRead(addr uint16) (uint32, bool) {
	if addr >= 0x8000 {
		base := uint16(0x3FFF)
		if m.PRGBanks > 1 {
			base = 0x7FFF
		}
		return uint32(addr & base), true
	}
	return 0, false
}

// CPUMapWrite never maps: PRG is ROM.
func (m *NROM) CPUMapWrite(addr uint16, data uint8) (uint32, bool) {
	return 0, false
}

func (m *NROM) PPUMapRead(addr uint16) (uint32, bool) {
	if addr < 0x2000 {
		return uint32(addr), true
	}
	return 0, false
}

func (m *NROM) PPUMapWrite(addr uint16) (uint32, bool) {
	if addr < 0x2000 && m.CHRBanks == 0 {
		return uint32(addr), true
	}
	return 0, false
}

func (m *NROM) Mirroring() Mirroring {
	return m.mirroring
}

func (m *NROM) Reset() {
}
