package mapper

// CNROM is mapper 3: fixed PRG, switchable 8KB CHR bank.
type CNROM struct {
	PRGBanks       uint8
	CHRBanks       uint8
	chrBanksSelect uint8
	mirroring      Mirroring
}

func (m *CNROM) CPUMapRead(addr uint16) (uint32, bool) {
	if addr >= 0x8000 {
		if m.PRGBanks > 1 {
			return uint32(addr & 0x7FFF), true
		}
		return uint32(addr & 0x3FFF), true
	}
	return 0, false
}

func (m *CNROM) CPUMapWrite(addr uint16, data uint8) (uint32, bool) {
	if addr >= 0x8000 {
		m.chrBanksSelect = data & 0x03
		if m.CHRBanks > 0 {
			m.chrBanksSelect %= m.CHRBanks
		}
	}
	return 0, false
}

func (m *CNROM) PPUMapRead(addr uint16) (uint32, bool) {
	if addr < 0x2000 {
		return uint32(m.chrBanksSelect)*CHRBankSize + uint32(addr), true
	}
	return 0, false
}

func (m *CNROM) PPUMapWrite(addr uint16) (uint32, bool) {
	return 0, false
}

func (m *CNROM) Mirroring() Mirroring {
	return m.mirroring
}

func (m *CNROM) Reset() {
	m.chrBanksSelect = 0
}
