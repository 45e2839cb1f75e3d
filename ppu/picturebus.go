package ppu

import (
	"log/slog"

	"nes-env/mapper"
)

// CHR is the cartridge side of the picture bus.
type CHR interface {
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, data uint8)
	Mirroring() mapper.Mirroring
}

// PictureBus is the PPU's address space: pattern tables on the cartridge,
// 2 KB of nametable RAM behind the mirroring map, and palette RAM.
type PictureBus struct {
	RAM       [0x800]uint8
	Palette   [0x20]uint8
	nametable [4]uint16
	mirroring mapper.Mirroring

	cart CHR
}

// Bind attaches the cartridge and loads its current mirroring.
func (b *PictureBus) Bind(cart CHR) {
	b.cart = cart
	b.UpdateMirroring()
}

// Mirroring reports the layout currently applied to the nametables.
func (b *PictureBus) Mirroring() mapper.Mirroring {
	return b.mirroring
}

// UpdateMirroring re-reads the cartridge's mirroring. It is a no-op when the
// layout is unchanged.
func (b *PictureBus) UpdateMirroring() {
	if b.cart == nil {
		return
	}
	m := b.cart.Mirroring()
	if m == b.mirroring && b.nametable != [4]uint16{} {
		return
	}
	b.mirroring = m

	switch m {
	case mapper.Horizontal:
		b.nametable = [4]uint16{0, 0, 0x400, 0x400}
	case mapper.Vertical:
		b.nametable = [4]uint16{0, 0x400, 0, 0x400}
	case mapper.OneScreenLower:
		b.nametable = [4]uint16{0, 0, 0, 0}
	case mapper.OneScreenUpper:
		b.nametable = [4]uint16{0x400, 0x400, 0x400, 0x400}
	default:
		slog.Warn("unknown mirroring, using horizontal", "mirroring", m)
		b.nametable = [4]uint16{0, 0, 0x400, 0x400}
	}
}

func (b *PictureBus) ramIndex(addr uint16) uint16 {
	table := ((addr - 0x2000) & 0x0FFF) / 0x400
	return b.nametable[table] + addr&0x3FF
}

// paletteIndex folds the sprite backdrop entries onto the background ones.
func paletteIndex(addr uint16) uint16 {
	index := addr & 0x1F
	if index >= 0x10 && index%4 == 0 {
		index &= 0x0F
	}
	return index
}

func (b *PictureBus) Read(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if b.cart == nil {
			return 0
		}
		return b.cart.ReadCHR(addr)
	case addr < 0x3F00:
		return b.RAM[b.ramIndex(addr)]
	default:
		return b.Palette[paletteIndex(addr)]
	}
}

func (b *PictureBus) Write(addr uint16, data uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if b.cart != nil {
			b.cart.WriteCHR(addr, data)
		}
	case addr < 0x3F00:
		b.RAM[b.ramIndex(addr)] = data
	default:
		b.Palette[paletteIndex(addr)] = data
	}
}

// ReadPalette reads palette RAM entry index (0-31).
func (b *PictureBus) ReadPalette(index uint8) uint8 {
	return b.Palette[paletteIndex(uint16(index))]
}
