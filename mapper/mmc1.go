package mapper

// MMC1 is mapper 1. Registers are loaded serially: five writes of bit 0 to
// $8000-$FFFF fill a shift register, and the address of the fifth write
// selects the destination. A write with bit 7 set resets the shift register.
type MMC1 struct {
	PRGBanks uint8
	CHRBanks uint8

	load      uint8
	loadCount uint8
	control   uint8

	chrSelect4Lo uint8
	chrSelect4Hi uint8
	chrSelect8   uint8

	prg           uint8
	prgSelect16Lo uint8
	prgSelect16Hi uint8
	prgSelect32   uint8

	mirroring Mirroring
}

func (m *MMC1) CPUMapRead(addr uint16) (uint32, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	if m.control&0x08 == 0 {
		// 32KB mode
		return uint32(m.prgSelect32)*0x8000 + uint32(addr&0x7FFF), true
	}
	if addr < 0xC000 {
		return uint32(m.prgSelect16Lo)*PRGBankSize + uint32(addr&0x3FFF), true
	}
	return uint32(m.prgSelect16Hi)*PRGBankSize + uint32(addr&0x3FFF), true
}

func (m *MMC1) CPUMapWrite(addr uint16, data uint8) (uint32, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	if data&0x80 != 0 {
		m.load = 0
		m.loadCount = 0
		m.control |= 0x0C
		m.updatePRG()
		return 0, false
	}

	m.load >>= 1
	m.load |= (data & 0x01) << 4
	m.loadCount++
	if m.loadCount < 5 {
		return 0, false
	}

	switch (addr >> 13) & 0x03 {
	case 0:
		m.control = m.load & 0x1F
		switch m.control & 0x03 {
		case 0:
			m.mirroring = OneScreenLower
		case 1:
			m.mirroring = OneScreenUpper
		case 2:
			m.mirroring = Vertical
		case 3:
			m.mirroring = Horizontal
		}
		m.updatePRG()
	case 1:
		if m.control&0x10 != 0 {
			m.chrSelect4Lo = m.load & 0x1F
		} else {
			m.chrSelect8 = m.load & 0x1E
		}
	case 2:
		if m.control&0x10 != 0 {
			m.chrSelect4Hi = m.load & 0x1F
		}
	case 3:
		m.prg = m.load & 0x0F
		m.updatePRG()
	}
	m.load = 0
	m.loadCount = 0
	return 0, false
}

func (m *MMC1) PPUMapRead(addr uint16) (uint32, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	if m.CHRBanks == 0 {
		return uint32(addr), true
	}
	if m.control&0x10 != 0 {
		if addr < 0x1000 {
			return uint32(m.chrSelect4Lo)*0x1000 + uint32(addr&0x0FFF), true
		}
		return uint32(m.chrSelect4Hi)*0x1000 + uint32(addr&0x0FFF), true
	}
	return uint32(m.chrSelect8)*0x1000 + uint32(addr&0x1FFF), true
}

func (m *MMC1) PPUMapWrite(addr uint16) (uint32, bool) {
	if addr < 0x2000 && m.CHRBanks == 0 {
		return uint32(addr), true
	}
	return 0, false
}

func (m *MMC1) Mirroring() Mirroring {
	return m.mirroring
}

func (m *MMC1) Reset() {
	m.control = 0x1C
	m.load = 0
	m.loadCount = 0
	m.chrSelect4Lo = 0
	m.chrSelect4Hi = 0
	m.chrSelect8 = 0
	m.prg = 0
	m.updatePRG()
	m.mirroring = Horizontal
}

// updatePRG derives the bank windows from the PRG register under the current
// control mode. Both a PRG write and a control write can change them.
func (m *MMC1) updatePRG() {
	switch (m.control >> 2) & 0x03 {
	case 0, 1:
		m.prgSelect32 = m.prg >> 1
	case 2:
		m.prgSelect16Lo = 0
		m.prgSelect16Hi = m.prg
	case 3:
		m.prgSelect16Lo = m.prg
		m.prgSelect16Hi = m.lastBank()
	}
}

func (m *MMC1) lastBank() uint8 {
	if m.PRGBanks == 0 {
		return 0
	}
	return m.PRGBanks - 1
}
