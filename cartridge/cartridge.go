// Package cartridge parses iNES images and exposes their PRG and CHR memory
// through the board's mapper.
package cartridge

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"nes-env/mapper"
)

var (
	// ErrBadMagic is returned when the image does not start with "NES\x1A".
	ErrBadMagic = errors.New("not an iNES image")
	// ErrTruncated is returned when the image is shorter than its header claims.
	ErrTruncated = errors.New("truncated iNES image")
	// ErrNoPRG is returned for images without PRG-ROM banks.
	ErrNoPRG = errors.New("image has no PRG-ROM banks")
	// ErrTrainer is returned for images carrying a 512 byte trainer.
	ErrTrainer = errors.New("trainer is not supported")
	// ErrPAL is returned for images flagged as PAL.
	ErrPAL = errors.New("PAL images are not supported")
)

var magic = [4]byte{'N', 'E', 'S', 0x1A}

const headerSize = 16

// Header is the 16 byte iNES header.
type Header struct {
	Name         [4]byte
	PrgRomChunks uint8
	ChrRomChunks uint8
	Mapper1      uint8
	Mapper2      uint8
	PrgRamSize   uint8
	TvSystem1    uint8
	TvSystem2    uint8
	Unused       [5]byte
}

// MapperID combines the low and high nibbles of the mapper number.
func (h Header) MapperID() uint8 {
	return (h.Mapper2 & 0xF0) | (h.Mapper1 >> 4)
}

// Mirroring is the hard-wired nametable mirroring.
func (h Header) Mirroring() mapper.Mirroring {
	if h.Mapper1&0x01 != 0 {
		return mapper.Vertical
	}
	return mapper.Horizontal
}

func (h Header) HasTrainer() bool {
	return h.Mapper1&0x04 != 0
}

func (h Header) HasBattery() bool {
	return h.Mapper1&0x02 != 0
}

func (h Header) IsPAL() bool {
	return h.TvSystem1&0x01 != 0
}

// Cartridge holds the ROM session: PRG and CHR memory and the mapper that
// addresses them. It is created once per ROM and shared by every snapshot
// of the machine.
type Cartridge struct {
	Header    Header
	prgMemory []uint8
	chrMemory []uint8
	mapper    mapper.Mapper
}

// Parse builds a cartridge from a raw iNES image.
func Parse(data []byte) (*Cartridge, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}

	header := Header{}
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Name != magic {
		return nil, ErrBadMagic
	}
	if header.PrgRomChunks == 0 {
		return nil, ErrNoPRG
	}
	if header.HasTrainer() {
		return nil, ErrTrainer
	}
	if header.IsPAL() {
		return nil, ErrPAL
	}

	prgSize := int(header.PrgRomChunks) * mapper.PRGBankSize
	chrSize := int(header.ChrRomChunks) * mapper.CHRBankSize
	if len(data) < headerSize+prgSize+chrSize {
		return nil, fmt.Errorf("%w: want %d bytes, have %d", ErrTruncated, headerSize+prgSize+chrSize, len(data))
	}

	m, err := mapper.New(header.MapperID(), header.PrgRomChunks, header.ChrRomChunks, header.Mirroring())
	if err != nil {
		return nil, err
	}

	cart := &Cartridge{
		Header:    header,
		prgMemory: make([]uint8, prgSize),
		mapper:    m,
	}
	copy(cart.prgMemory, data[headerSize:headerSize+prgSize])

	if chrSize == 0 {
		cart.chrMemory = make([]uint8, mapper.CHRBankSize)
	} else {
		cart.chrMemory = make([]uint8, chrSize)
		copy(cart.chrMemory, data[headerSize+prgSize:])
	}

	slog.Debug("parsed cartridge",
		"mapper", header.MapperID(),
		"prg_banks", header.PrgRomChunks,
		"chr_banks", header.ChrRomChunks,
		"mirroring", header.Mirroring())

	return cart, nil
}

// ReadPRG reads CPU space $4020-$FFFF. Unmapped addresses read as zero.
func (c *Cartridge) ReadPRG(addr uint16) uint8 {
	if mapped, ok := c.mapper.CPUMapRead(addr); ok {
		return c.prgMemory[int(mapped)%len(c.prgMemory)]
	}
	return 0
}

// WritePRG forwards a CPU write to the mapper.
func (c *Cartridge) WritePRG(addr uint16, data uint8) {
	if mapped, ok := c.mapper.CPUMapWrite(addr, data); ok {
		c.prgMemory[int(mapped)%len(c.prgMemory)] = data
	}
}

func (c *Cartridge) ReadCHR(addr uint16) uint8 {
	if mapped, ok := c.mapper.PPUMapRead(addr); ok {
		return c.chrMemory[int(mapped)%len(c.chrMemory)]
	}
	return 0
}

func (c *Cartridge) WriteCHR(addr uint16, data uint8) {
	if mapped, ok := c.mapper.PPUMapWrite(addr); ok {
		c.chrMemory[int(mapped)%len(c.chrMemory)] = data
	}
}

func (c *Cartridge) Mirroring() mapper.Mirroring {
	return c.mapper.Mirroring()
}

func (c *Cartridge) MapperID() uint8 {
	return c.Header.MapperID()
}

func (c *Cartridge) Reset() {
	c.mapper.Reset()
}
