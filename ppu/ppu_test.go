package ppu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nes-env/mapper"
)

type chrRAM struct {
	mem       [0x2000]uint8
	mirroring mapper.Mirroring
}

func (c *chrRAM) ReadCHR(addr uint16) uint8         { return c.mem[addr] }
func (c *chrRAM) WriteCHR(addr uint16, data uint8) { c.mem[addr] = data }
func (c *chrRAM) Mirroring() mapper.Mirroring       { return c.mirroring }

func newTestPPU(m mapper.Mirroring) (*PPU, *PictureBus, *chrRAM) {
	chr := &chrRAM{mirroring: m}
	bus := &PictureBus{}
	bus.Bind(chr)
	p := &PPU{}
	p.Reset()
	return p, bus, chr
}

func TestResetDefaults(t *testing.T) {
	p, _, _ := newTestPPU(mapper.Horizontal)

	assert.Equal(t, PreRender, p.State())
	assert.True(t, p.EvenFrame())
	assert.True(t, p.showBackground())
	assert.True(t, p.showSprites())
	assert.Equal(t, uint16(1), p.increment())
	assert.Equal(t, AwaitingHigh, p.Toggle())
}

func TestStatusReadSideEffect(t *testing.T) {
	p, _, _ := newTestPPU(mapper.Horizontal)
	p.vblank = true
	p.spriteZeroHit = true
	p.SetScroll(0x10)
	require.Equal(t, AwaitingLow, p.Toggle())

	assert.Equal(t, uint8(0xC0), p.Status())
	assert.Equal(t, AwaitingHigh, p.Toggle())
	assert.Equal(t, uint8(0x40), p.Status(), "vblank is cleared by the first read")
}

func TestControl(t *testing.T) {
	p, _, _ := newTestPPU(mapper.Horizontal)

	p.Control(0xA7)
	assert.Equal(t, uint16(3), Nametable.Get(p.TempAddress()))
	assert.Equal(t, uint16(32), p.increment())
	assert.True(t, p.longSprites())
	assert.True(t, CtrlNMI.IsSet(p.ctrl))

	p.Control(0x00)
	assert.Equal(t, uint16(0), Nametable.Get(p.TempAddress()))
	assert.Equal(t, uint16(1), p.increment())
}

func TestMask(t *testing.T) {
	p, _, _ := newTestPPU(mapper.Horizontal)

	p.SetMask(0x08)
	assert.True(t, p.showBackground())
	assert.False(t, p.showSprites())
	assert.False(t, p.rendering())
}

func TestScroll(t *testing.T) {
	p, _, _ := newTestPPU(mapper.Horizontal)

	p.SetScroll(0x7D) // x = 125
	p.SetScroll(0x5E) // y = 94

	tmp := p.TempAddress()
	assert.Equal(t, uint8(5), p.FineX())
	assert.Equal(t, uint16(15), CoarseX.Get(tmp))
	assert.Equal(t, uint16(11), CoarseY.Get(tmp))
	assert.Equal(t, uint16(6), FineY.Get(tmp))
	assert.Equal(t, uint16(0), p.DataAddress(), "scroll writes only touch t")
}

func TestDataAddress(t *testing.T) {
	p, _, _ := newTestPPU(mapper.Horizontal)

	p.SetDataAddress(0xE1) // upper two bits are dropped
	assert.Equal(t, uint16(0), p.DataAddress())
	p.SetDataAddress(0x08)
	assert.Equal(t, uint16(0x2108), p.DataAddress())
	assert.Equal(t, AwaitingHigh, p.Toggle())
}

func TestDataWriteIncrement(t *testing.T) {
	p, bus, _ := newTestPPU(mapper.Horizontal)

	p.Control(0x04)
	p.SetDataAddress(0x20)
	p.SetDataAddress(0x00)
	p.SetData(bus, 0x11)
	p.SetData(bus, 0x22)

	assert.Equal(t, uint16(0x2040), p.DataAddress())
	assert.Equal(t, uint8(0x11), bus.Read(0x2000))
	assert.Equal(t, uint8(0x22), bus.Read(0x2020))
}

func TestDataReadIsBuffered(t *testing.T) {
	p, bus, _ := newTestPPU(mapper.Horizontal)
	bus.Write(0x2000, 0xAA)
	bus.Write(0x2001, 0xBB)

	p.SetDataAddress(0x20)
	p.SetDataAddress(0x00)
	assert.Equal(t, uint8(0x00), p.Data(bus))
	assert.Equal(t, uint8(0xAA), p.Data(bus))
	assert.Equal(t, uint8(0xBB), p.Data(bus))
}

func TestDataReadPalette(t *testing.T) {
	p, bus, _ := newTestPPU(mapper.Horizontal)
	bus.Write(0x3F01, 0x21)
	bus.Write(0x2F01, 0x77)

	p.SetDataAddress(0x3F)
	p.SetDataAddress(0x01)
	assert.Equal(t, uint8(0x21), p.Data(bus))
	assert.Equal(t, uint8(0x77), p.dataBuffer)

	p.SetMask(0x01)
	p.SetDataAddress(0x3F)
	p.SetDataAddress(0x01)
	assert.Equal(t, uint8(0x20), p.Data(bus), "greyscale masks palette reads")
}

func TestOAMAccess(t *testing.T) {
	p, _, _ := newTestPPU(mapper.Horizontal)

	p.SetOAMAddress(5)
	p.SetOAMData(0x42)
	assert.Equal(t, uint8(0x42), p.OAM[5])
	assert.Equal(t, uint8(6), p.OAMAddress())

	p.OAM[6] = 0x99
	assert.Equal(t, uint8(0x99), p.OAMData())
	assert.Equal(t, uint8(6), p.OAMAddress(), "reads do not advance the cursor")

	p.SetOAMAddress(0xFF)
	p.SetOAMData(1)
	assert.Equal(t, uint8(0), p.OAMAddress())
}

func TestDMAWrapsAtCursor(t *testing.T) {
	p, _, _ := newTestPPU(mapper.Horizontal)
	page := make([]uint8, 256)
	for i := range page {
		page[i] = uint8(i)
	}

	p.SetOAMAddress(0xF0)
	p.DMA(page)

	assert.Equal(t, uint8(0x00), p.OAM[0xF0])
	assert.Equal(t, uint8(0x0F), p.OAM[0xFF])
	assert.Equal(t, uint8(0x10), p.OAM[0x00])
	assert.Equal(t, uint8(0xFF), p.OAM[0xEF])
}

func TestDMARejectsShortPage(t *testing.T) {
	p, _, _ := newTestPPU(mapper.Horizontal)
	assert.Panics(t, func() { p.DMA(make([]uint8, 255)) })
}

// cyclesUntilNMI clocks the PPU until it raises an NMI.
func cyclesUntilNMI(t *testing.T, p *PPU, bus *PictureBus, screen *FrameBuffer) int {
	t.Helper()
	for n := 1; n <= 200000; n++ {
		if p.Cycle(bus, screen) {
			return n
		}
	}
	t.Fatal("no NMI raised")
	return 0
}

func TestFrameLength(t *testing.T) {
	p, bus, _ := newTestPPU(mapper.Horizontal)
	screen := &FrameBuffer{}
	p.Control(0x80)
	p.SetMask(0x00)

	cyclesUntilNMI(t, p, bus, screen)
	assert.True(t, p.vblank)
	scanline, cycle := p.Position()
	assert.Equal(t, VisibleScanlines+1, scanline)
	assert.Equal(t, 2, cycle)

	assert.Equal(t, 341*262, cyclesUntilNMI(t, p, bus, screen))
	assert.Equal(t, 341*262, cyclesUntilNMI(t, p, bus, screen))
}

func TestOddFrameSkip(t *testing.T) {
	p, bus, _ := newTestPPU(mapper.Horizontal)
	screen := &FrameBuffer{}
	p.Control(0x80)
	p.SetMask(0x18)

	cyclesUntilNMI(t, p, bus, screen)
	odd := cyclesUntilNMI(t, p, bus, screen)
	even := cyclesUntilNMI(t, p, bus, screen)

	assert.Equal(t, 341*262-1, odd)
	assert.Equal(t, 341*262, even)
}

func TestNoNMIWhenDisabled(t *testing.T) {
	p, bus, _ := newTestPPU(mapper.Horizontal)
	screen := &FrameBuffer{}

	sawVBlank := false
	for n := 0; n < 2*341*262; n++ {
		require.False(t, p.Cycle(bus, screen))
		sawVBlank = sawVBlank || p.PeekStatus()&0x80 != 0
	}
	assert.True(t, sawVBlank)
}

func TestSpriteLimit(t *testing.T) {
	p, _, _ := newTestPPU(mapper.Horizontal)
	for i := range p.OAM {
		p.OAM[i] = 0xFF
	}
	for i := 0; i < 9; i++ {
		p.OAM[i*4] = 10
	}

	p.scanline = 12
	p.evaluateSprites()
	assert.Equal(t, 8, p.lineSprites.len())
	assert.True(t, p.spriteOverflow)
	assert.Equal(t, uint8(0x20), p.PeekStatus()&0x20)

	p.spriteOverflow = false
	p.OAM[8*4] = 0xFF
	p.evaluateSprites()
	assert.Equal(t, 8, p.lineSprites.len())
	assert.False(t, p.spriteOverflow)
}

func TestRenderAndSpriteZeroHit(t *testing.T) {
	p, bus, chr := newTestPPU(mapper.Horizontal)
	screen := &FrameBuffer{}

	// Tile 1 is solid colour 1.
	for row := 0; row < 8; row++ {
		chr.mem[16+row] = 0xFF
	}
	for addr := uint16(0x2000); addr < 0x23C0; addr++ {
		bus.Write(addr, 1)
	}
	bus.Write(0x3F01, 0x16)
	bus.Write(0x3F11, 0x2A)

	for i := range p.OAM {
		p.OAM[i] = 0xFF
	}
	p.OAM[0], p.OAM[1], p.OAM[2], p.OAM[3] = 20, 1, 0x00, 40

	for n := 0; n < 200000; n++ {
		p.Cycle(bus, screen)
		if p.State() == Render && p.scanline == 30 {
			break
		}
	}

	assert.True(t, p.spriteZeroHit)
	assert.Equal(t, Colour(0x16), screen[0][0])
	assert.Equal(t, Colour(0x2A), screen[21][40])
	assert.Equal(t, Colour(0x2A), screen[28][47])
	assert.Equal(t, Colour(0x16), screen[29][40])
}

func TestPictureBusMirroring(t *testing.T) {
	_, bus, chr := newTestPPU(mapper.Horizontal)

	bus.Write(0x2005, 0x11)
	assert.Equal(t, uint8(0x11), bus.Read(0x2405))
	assert.Equal(t, uint8(0x00), bus.Read(0x2805))
	assert.Equal(t, uint8(0x11), bus.Read(0x3005), "$3000 mirrors $2000")

	chr.mirroring = mapper.Vertical
	bus.UpdateMirroring()
	assert.Equal(t, mapper.Vertical, bus.Mirroring())
	assert.Equal(t, uint8(0x11), bus.Read(0x2805))
	assert.Equal(t, uint8(0x11), bus.Read(0x2005))
	assert.NotEqual(t, bus.Read(0x2405), uint8(0x11))

	chr.mirroring = mapper.OneScreenUpper
	bus.UpdateMirroring()
	bus.Write(0x2000, 0x33)
	assert.Equal(t, uint8(0x33), bus.Read(0x2C00))
	assert.Equal(t, uint8(0x33), bus.RAM[0x400])
}

func TestPalettePaths(t *testing.T) {
	_, bus, _ := newTestPPU(mapper.Horizontal)

	bus.Write(0x3F10, 0x0F)
	assert.Equal(t, uint8(0x0F), bus.Read(0x3F00))
	bus.Write(0x3F04, 0x30)
	assert.Equal(t, uint8(0x30), bus.Read(0x3F14))
	assert.Equal(t, uint8(0x30), bus.ReadPalette(0x14))
	bus.Write(0x3F11, 0x01)
	assert.Equal(t, uint8(0x00), bus.Read(0x3F01), "only backdrop entries mirror")
	assert.Equal(t, uint8(0x0F), bus.Read(0x3F20), "palette repeats every 32 bytes")
}

func TestPaletteDecoding(t *testing.T) {
	def := DefaultPalette()
	assert.Equal(t, RGB(0x66, 0x66, 0x66), def[0])
	assert.Equal(t, Pixel(0x000000), def[0x0F])

	_, err := DecodePalette([]byte(`[[1, 2, 3]]`))
	assert.ErrorIs(t, err, ErrPaletteSize)

	custom := strings.Repeat("[1, 2, 3],", 63) + "[4, 5, 6]"
	p, err := LoadPalette(strings.NewReader("[" + custom + "]"))
	require.NoError(t, err)
	assert.Equal(t, RGB(4, 5, 6), p[63])

	SetPalette(p)
	t.Cleanup(func() { SetPalette(def) })
	assert.Equal(t, RGB(1, 2, 3), Colour(0x40))

	r, g, b := RGB(4, 5, 6).RGB()
	assert.Equal(t, []uint8{4, 5, 6}, []uint8{r, g, b})
}
