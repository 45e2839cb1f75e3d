package nes

import (
	"errors"
	"fmt"

	"nes-env/cartridge"
)

// IORegister is a CPU address that may carry a read or write intercept.
type IORegister uint16

const (
	PPUCTRL   IORegister = 0x2000
	PPUMASK   IORegister = 0x2001
	PPUSTATUS IORegister = 0x2002
	OAMADDR   IORegister = 0x2003
	OAMDATA   IORegister = 0x2004
	PPUSCROLL IORegister = 0x2005
	PPUADDR   IORegister = 0x2006
	PPUDATA   IORegister = 0x2007
	OAMDMA    IORegister = 0x4014
	JOY1      IORegister = 0x4016
	JOY2      IORegister = 0x4017
)

const numIORegisters = 11

func (r IORegister) String() string {
	switch r {
	case PPUCTRL:
		return "PPUCTRL"
	case PPUMASK:
		return "PPUMASK"
	case PPUSTATUS:
		return "PPUSTATUS"
	case OAMADDR:
		return "OAMADDR"
	case OAMDATA:
		return "OAMDATA"
	case PPUSCROLL:
		return "PPUSCROLL"
	case PPUADDR:
		return "PPUADDR"
	case PPUDATA:
		return "PPUDATA"
	case OAMDMA:
		return "OAMDMA"
	case JOY1:
		return "JOY1"
	case JOY2:
		return "JOY2"
	}
	return fmt.Sprintf("$%04X", uint16(r))
}

// slot returns the dispatch table index for r.
func (r IORegister) slot() (int, bool) {
	switch {
	case r >= PPUCTRL && r <= PPUDATA:
		return int(r - PPUCTRL), true
	case r == OAMDMA:
		return 8, true
	case r == JOY1:
		return 9, true
	case r == JOY2:
		return 10, true
	}
	return 0, false
}

// ioRegister folds the PPU register mirrors in $2008-$3FFF onto $2000-$2007.
func ioRegister(addr uint16) IORegister {
	if addr >= 0x2000 && addr < 0x4000 {
		return IORegister(0x2000 | addr&0x0007)
	}
	return IORegister(addr)
}

// Target names the Core component operation an intercept is routed to. It is
// resolved against the live Core on every access, so a copied Core dispatches
// to its own components.
type Target uint8

const (
	NoTarget Target = iota
	TargetPPUStatus
	TargetPPUData
	TargetOAMData
	TargetJoy1
	TargetJoy2
	TargetPPUControl
	TargetPPUMask
	TargetOAMAddress
	TargetPPUAddress
	TargetPPUScroll
	TargetOAMDMA
	TargetStrobe
)

var ErrNotIORegister = errors.New("address has no intercept slot")

// MainBus is the CPU address space: 2 KB of work RAM mirrored over
// $0000-$1FFF, the register intercept table, 8 KB of cartridge RAM at
// $6000-$7FFF and the cartridge's PRG space.
type MainBus struct {
	RAM    [0x800]uint8
	ExtRAM [0x2000]uint8

	reads  [numIORegisters]Target
	writes [numIORegisters]Target

	cart *cartridge.Cartridge
}

// SetRead installs a read intercept.
func (b *MainBus) SetRead(reg IORegister, t Target) error {
	i, ok := reg.slot()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotIORegister, reg)
	}
	b.reads[i] = t
	return nil
}

// SetWrite installs a write intercept.
func (b *MainBus) SetWrite(reg IORegister, t Target) error {
	i, ok := reg.slot()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotIORegister, reg)
	}
	b.writes[i] = t
	return nil
}

func (b *MainBus) readTarget(reg IORegister) Target {
	if i, ok := reg.slot(); ok {
		return b.reads[i]
	}
	return NoTarget
}

func (b *MainBus) writeTarget(reg IORegister) Target {
	if i, ok := reg.slot(); ok {
		return b.writes[i]
	}
	return NoTarget
}

// Cartridge returns the bound cartridge, nil before Core.Bind.
func (b *MainBus) Cartridge() *cartridge.Cartridge {
	return b.cart
}
