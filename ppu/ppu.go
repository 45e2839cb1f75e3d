// Package ppu implements the NES picture processing unit: a scanline state
// machine that renders into a FrameBuffer, the CPU-visible register file and
// the picture bus it reads tiles, nametables and palettes from.
package ppu

import "fmt"

// Frame timing.
const (
	VisibleScanlines = Height
	VisibleDots      = Width
	// ScanlineEndCycle is one past the 340 of real hardware; the extra dot
	// keeps the picture aligned with the CPU frame length.
	ScanlineEndCycle = 341
	FrameEndScanline = 261
)

// State is the pipeline stage the PPU is in.
type State uint8

const (
	PreRender State = iota
	Render
	PostRender
	VerticalBlank
)

func (s State) String() string {
	switch s {
	case PreRender:
		return "pre-render"
	case Render:
		return "render"
	case PostRender:
		return "post-render"
	case VerticalBlank:
		return "vblank"
	}
	return fmt.Sprintf("State(%d)", s)
}

// PPU holds the complete picture unit state. It has no pointers so that a
// plain assignment snapshots it.
type PPU struct {
	OAM         [256]uint8
	oamAddr     uint8
	lineSprites spriteList

	state     State
	cycle     int
	scanline  int
	evenFrame bool

	vblank         bool
	spriteZeroHit  bool
	spriteOverflow bool

	dataAddress uint16
	tempAddress uint16
	fineX       uint8
	toggle      WriteToggle
	dataBuffer  uint8

	ctrl uint8
	mask uint8
}

// Reset returns the registers and pipeline to power-up state. OAM contents
// survive.
func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0x1E
	p.vblank = false
	p.spriteZeroHit = false
	p.spriteOverflow = false
	p.evenFrame = true
	p.toggle = AwaitingHigh
	p.dataAddress = 0
	p.tempAddress = 0
	p.fineX = 0
	p.dataBuffer = 0
	p.oamAddr = 0
	p.cycle = 0
	p.scanline = 0
	p.state = PreRender
	p.lineSprites.clear()
}

func (p *PPU) State() State {
	return p.state
}

// Position returns the current scanline and dot within the pipeline state.
func (p *PPU) Position() (scanline, cycle int) {
	return p.scanline, p.cycle
}

// EvenFrame reports the frame parity used by the odd-frame dot skip.
func (p *PPU) EvenFrame() bool {
	return p.evenFrame
}

// DataAddress is the current VRAM address (loopy v).
func (p *PPU) DataAddress() uint16 {
	return p.dataAddress
}

// TempAddress is the latched VRAM address (loopy t).
func (p *PPU) TempAddress() uint16 {
	return p.tempAddress
}

func (p *PPU) FineX() uint8 {
	return p.fineX
}

func (p *PPU) Toggle() WriteToggle {
	return p.toggle
}

func (p *PPU) OAMAddress() uint8 {
	return p.oamAddr
}

func (p *PPU) showBackground() bool { return MaskBackground.IsSet(p.mask) }
func (p *PPU) showSprites() bool    { return MaskSprites.IsSet(p.mask) }
func (p *PPU) rendering() bool      { return p.showBackground() && p.showSprites() }
func (p *PPU) longSprites() bool    { return CtrlLongSprites.IsSet(p.ctrl) }

func (p *PPU) increment() uint16 {
	if CtrlIncrement.IsSet(p.ctrl) {
		return 32
	}
	return 1
}

// Control handles a PPUCTRL write.
func (p *PPU) Control(data uint8) {
	p.ctrl = data
	p.tempAddress = Nametable.Set(p.tempAddress, CtrlNametable.Get(uint16(data)))
}

// SetMask handles a PPUMASK write.
func (p *PPU) SetMask(data uint8) {
	p.mask = data
}

// Status handles a PPUSTATUS read: it clears vblank and resets the write
// toggle.
func (p *PPU) Status() uint8 {
	status := p.PeekStatus()
	p.vblank = false
	p.toggle = AwaitingHigh
	return status
}

// PeekStatus returns PPUSTATUS without the read side effects.
func (p *PPU) PeekStatus() uint8 {
	var status uint16
	if p.spriteOverflow {
		status = StatusOverflow.Set(status, 1)
	}
	if p.spriteZeroHit {
		status = StatusSpriteZeroHit.Set(status, 1)
	}
	if p.vblank {
		status = StatusVBlank.Set(status, 1)
	}
	return uint8(status)
}

// SetScroll handles a PPUSCROLL write: X first, then Y.
func (p *PPU) SetScroll(data uint8) {
	if p.toggle.flip() == AwaitingHigh {
		p.tempAddress = CoarseX.Set(p.tempAddress, uint16(data>>3))
		p.fineX = data & 0x07
		return
	}
	p.tempAddress = CoarseY.Set(p.tempAddress, uint16(data>>3))
	p.tempAddress = FineY.Set(p.tempAddress, uint16(data&0x07))
}

// SetDataAddress handles a PPUADDR write: high byte first, then low byte,
// which also loads the data address.
func (p *PPU) SetDataAddress(data uint8) {
	if p.toggle.flip() == AwaitingHigh {
		p.tempAddress = p.tempAddress&0x00FF | uint16(data&0x3F)<<8
		return
	}
	p.tempAddress = p.tempAddress&0xFF00 | uint16(data)
	p.dataAddress = p.tempAddress
}

// Data handles a PPUDATA read. Reads below the palette are delayed by one
// through the internal buffer; palette reads return immediately and refill
// the buffer with the nametable byte underneath.
func (p *PPU) Data(bus *PictureBus) uint8 {
	addr := p.dataAddress & 0x3FFF
	data := bus.Read(addr)
	p.dataAddress += p.increment()

	if addr < 0x3F00 {
		data, p.dataBuffer = p.dataBuffer, data
		return data
	}
	p.dataBuffer = bus.Read(addr - 0x1000)
	if MaskGreyscale.IsSet(p.mask) {
		data &= 0x30
	}
	return data
}

// SetData handles a PPUDATA write.
func (p *PPU) SetData(bus *PictureBus, data uint8) {
	bus.Write(p.dataAddress, data)
	p.dataAddress += p.increment()
}

// SetOAMAddress handles an OAMADDR write.
func (p *PPU) SetOAMAddress(addr uint8) {
	p.oamAddr = addr
}

// OAMData handles an OAMDATA read. The cursor does not move.
func (p *PPU) OAMData() uint8 {
	return p.OAM[p.oamAddr]
}

// SetOAMData handles an OAMDATA write and advances the cursor.
func (p *PPU) SetOAMData(data uint8) {
	p.OAM[p.oamAddr] = data
	p.oamAddr++
}

// DMA copies a 256 byte page into OAM starting at the OAM cursor, wrapping
// around the end of OAM.
func (p *PPU) DMA(page []uint8) {
	if len(page) != len(p.OAM) {
		panic(fmt.Sprintf("ppu: DMA source is %d bytes, want %d", len(page), len(p.OAM)))
	}
	n := copy(p.OAM[p.oamAddr:], page)
	copy(p.OAM[:], page[n:])
}
