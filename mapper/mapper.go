// Package mapper translates CPU and PPU addresses into offsets within a
// cartridge's PRG and CHR memory. Bank switching state lives here; the
// memory itself belongs to the cartridge.
package mapper

import (
	"errors"
	"fmt"
)

// Mirroring is the nametable arrangement selected by the cartridge.
type Mirroring uint8

const (
	Horizontal Mirroring = iota
	Vertical
	OneScreenLower
	OneScreenUpper
)

func (m Mirroring) String() string {
	switch m {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case OneScreenLower:
		return "one-screen-lower"
	case OneScreenUpper:
		return "one-screen-upper"
	}
	return fmt.Sprintf("mirroring(%d)", uint8(m))
}

const (
	PRGBankSize = 0x4000
	CHRBankSize = 0x2000
)

// ErrUnsupportedMapper is returned by New for mapper ids with no implementation.
var ErrUnsupportedMapper = errors.New("unsupported mapper")

// Mapper maps bus addresses onto cartridge memory. The boolean result of the
// map functions reports whether the address belongs to the cartridge at all;
// a write that only changes mapper registers reports false.
type Mapper interface {
	CPUMapRead(addr uint16) (uint32, bool)
	CPUMapWrite(addr uint16, data uint8) (uint32, bool)
	PPUMapRead(addr uint16) (uint32, bool)
	PPUMapWrite(addr uint16) (uint32, bool)
	Mirroring() Mirroring
	Reset()
}

// New creates the mapper for the given iNES mapper id. prgBanks counts 16KB
// units and chrBanks 8KB units; zero CHR banks means the board carries 8KB of
// CHR RAM instead.
func New(id uint8, prgBanks, chrBanks uint8, mirroring Mirroring) (Mapper, error) {
	var m Mapper
	switch id {
	case 0:
		m = &NROM{PRGBanks: prgBanks, CHRBanks: chrBanks, mirroring: mirroring}
	case 1:
		m = &MMC1{PRGBanks: prgBanks, CHRBanks: chrBanks}
	case 2:
		m = &UxROM{PRGBanks: prgBanks, CHRBanks: chrBanks, mirroring: mirroring}
	case 3:
		m = &CNROM{PRGBanks: prgBanks, CHRBanks: chrBanks, mirroring: mirroring}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, id)
	}
	m.Reset()
	return m, nil
}
