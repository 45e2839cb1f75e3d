package mapper

// UxROM is mapper 2: a switchable 16KB bank at $8000 and the last bank fixed
// at $C000.
type UxROM struct {
	PRGBanks        uint8
	CHRBanks        uint8
	PRGBankSelectLo uint8
	PRGBankSelectHi uint8
	mirroring       Mirroring
}

func (m *UxROM) CPUMapRead(addr uint16) (uint32, bool) {
	if addr >= 0x8000 && addr <= 0xBFFF {
		return uint32(m.PRGBankSelectLo)*PRGBankSize + uint32(addr&0x3FFF), true
	}
	if addr >= 0xC000 {
		return uint32(m.PRGBankSelectHi)*PRGBankSize + uint32(addr&0x3FFF), true
	}
	return 0, false
}

func (m *UxROM) CPUMapWrite(addr uint16, data uint8) (uint32, bool) {
	if addr >= 0x8000 {
		m.PRGBankSelectLo = data & 0x0F
		if m.PRGBanks > 0 {
			m.PRGBankSelectLo %= m.PRGBanks
		}
	}
	return 0, false
}

func (m *UxROM) PPUMapRead(addr uint16) (uint32, bool) {
	if addr < 0x2000 {
		return uint32(addr), true
	}
	return 0, false
}

func (m *UxROM) PPUMapWrite(addr uint16) (uint32, bool) {
	if addr < 0x2000 && m.CHRBanks == 0 {
		return uint32(addr), true
	}
	return 0, false
}

func (m *UxROM) Mirroring() Mirroring {
	return m.mirroring
}

func (m *UxROM) Reset() {
	m.PRGBankSelectLo = 0
	m.PRGBankSelectHi = 0
	if m.PRGBanks > 0 {
		m.PRGBankSelectHi = m.PRGBanks - 1
	}
}
