package nes

import (
	"log/slog"

	"nes-env/cartridge"
	"nes-env/cpu"
	"nes-env/ppu"
)

// Core is the machine state that snapshots capture: main bus, CPU, PPU and
// picture bus. A Core is a plain value; assigning one Core to another yields
// an independent machine sharing only the read-mostly cartridge.
type Core struct {
	Bus        MainBus
	CPU        cpu.CPU
	PPU        ppu.PPU
	PictureBus ppu.PictureBus

	// Ticks counts Step calls since construction.
	Ticks uint64

	// pads is only set while Emulator.Step runs.
	pads *Controllers
}

// Initialize installs the register intercepts.
func (c *Core) Initialize() {
	reads := []struct {
		reg IORegister
		t   Target
	}{
		{PPUSTATUS, TargetPPUStatus},
		{PPUDATA, TargetPPUData},
		{JOY1, TargetJoy1},
		{JOY2, TargetJoy2},
		{OAMDATA, TargetOAMData},
	}
	writes := []struct {
		reg IORegister
		t   Target
	}{
		{PPUCTRL, TargetPPUControl},
		{PPUMASK, TargetPPUMask},
		{OAMADDR, TargetOAMAddress},
		{PPUADDR, TargetPPUAddress},
		{PPUSCROLL, TargetPPUScroll},
		{PPUDATA, TargetPPUData},
		{OAMDMA, TargetOAMDMA},
		{JOY1, TargetStrobe},
		{OAMDATA, TargetOAMData},
	}

	for _, r := range reads {
		if err := c.Bus.SetRead(r.reg, r.t); err != nil {
			panic(err)
		}
	}
	for _, w := range writes {
		if err := c.Bus.SetWrite(w.reg, w.t); err != nil {
			panic(err)
		}
	}
}

// Bind points both buses at the session cartridge.
func (c *Core) Bind(cart *cartridge.Cartridge) {
	c.Bus.cart = cart
	if cart == nil {
		// keep the interface nil rather than holding a typed nil
		c.PictureBus.Bind(nil)
		return
	}
	c.PictureBus.Bind(cart)
}

// Attach routes joypad reads and strobes to pads until Detach.
func (c *Core) Attach(pads *Controllers) {
	c.pads = pads
}

func (c *Core) Detach() {
	c.pads = nil
}

// Reset re-initializes the CPU and PPU registers. Memory and mapper state
// are kept.
func (c *Core) Reset() {
	c.CPU.Reset(c)
	c.PPU.Reset()
}

// PPUStep clocks the PPU three times. An NMI raised by any of the dots is
// delivered to the CPU immediately.
func (c *Core) PPUStep(screen *ppu.FrameBuffer) {
	for i := 0; i < 3; i++ {
		if c.PPU.Cycle(&c.PictureBus, screen) {
			c.CPU.Interrupt(c, cpu.NMI)
		}
	}
}

// Step runs three PPU dots and then one CPU cycle.
func (c *Core) Step(screen *ppu.FrameBuffer) {
	c.PPUStep(screen)
	c.CPU.Clock(c)
	c.Ticks++
}

// Read implements cpu.Bus.
func (c *Core) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return c.Bus.RAM[addr&0x07FF]

	case addr < 0x4020:
		reg := ioRegister(addr)
		if t := c.Bus.readTarget(reg); t != NoTarget {
			return c.dispatchRead(t)
		}
		slog.Debug("read from unmapped register", "addr", reg)
		return 0

	case addr < 0x6000:
		slog.Debug("read from expansion ROM", "addr", addr)
		return 0

	case addr < 0x8000:
		return c.Bus.ExtRAM[addr-0x6000]
	}

	if c.Bus.cart == nil {
		return 0
	}
	return c.Bus.cart.ReadPRG(addr)
}

// Write implements cpu.Bus.
func (c *Core) Write(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		c.Bus.RAM[addr&0x07FF] = data

	case addr < 0x4020:
		reg := ioRegister(addr)
		if t := c.Bus.writeTarget(reg); t != NoTarget {
			c.dispatchWrite(t, data)
			return
		}
		slog.Debug("write to unmapped register", "addr", reg, "data", data)

	case addr < 0x6000:
		slog.Debug("write to expansion ROM", "addr", addr, "data", data)

	case addr < 0x8000:
		c.Bus.ExtRAM[addr-0x6000] = data

	default:
		if c.Bus.cart == nil {
			return
		}
		c.Bus.cart.WritePRG(addr, data)
		if c.Bus.cart.Mirroring() != c.PictureBus.Mirroring() {
			c.PictureBus.UpdateMirroring()
		}
	}
}

// Peek reads addr without side effects. Intercepted registers other than
// PPUSTATUS read as zero.
func (c *Core) Peek(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return c.Bus.RAM[addr&0x07FF]
	case addr < 0x4020:
		if ioRegister(addr) == PPUSTATUS {
			return c.PPU.PeekStatus()
		}
		return 0
	case addr < 0x6000:
		return 0
	case addr < 0x8000:
		return c.Bus.ExtRAM[addr-0x6000]
	}
	if c.Bus.cart == nil {
		return 0
	}
	return c.Bus.cart.ReadPRG(addr)
}

func (c *Core) dispatchRead(t Target) uint8 {
	switch t {
	case TargetPPUStatus:
		return c.PPU.Status()
	case TargetPPUData:
		return c.PPU.Data(&c.PictureBus)
	case TargetOAMData:
		return c.PPU.OAMData()
	case TargetJoy1:
		return c.readPad(0)
	case TargetJoy2:
		return c.readPad(1)
	}
	slog.Debug("register has no read handler", "target", t)
	return 0
}

func (c *Core) dispatchWrite(t Target, data uint8) {
	switch t {
	case TargetPPUControl:
		c.PPU.Control(data)
	case TargetPPUMask:
		c.PPU.SetMask(data)
	case TargetOAMAddress:
		c.PPU.SetOAMAddress(data)
	case TargetPPUAddress:
		c.PPU.SetDataAddress(data)
	case TargetPPUScroll:
		c.PPU.SetScroll(data)
	case TargetPPUData:
		c.PPU.SetData(&c.PictureBus, data)
	case TargetOAMData:
		c.PPU.SetOAMData(data)
	case TargetOAMDMA:
		c.CPU.SkipDMACycles()
		c.PPU.DMA(c.page(data))
	case TargetStrobe:
		if c.pads != nil {
			c.pads[0].Strobe(data)
			c.pads[1].Strobe(data)
		}
	default:
		slog.Debug("register has no write handler", "target", t)
	}
}

func (c *Core) readPad(port int) uint8 {
	if c.pads == nil {
		return 0
	}
	return c.pads[port].Read()
}

// page returns the 256 bytes of CPU page p. RAM pages alias the bus memory;
// other pages are gathered with Peek.
func (c *Core) page(p uint8) []uint8 {
	base := uint16(p) << 8
	switch {
	case base < 0x2000:
		start := base & 0x07FF
		return c.Bus.RAM[start : start+0x100]
	case base >= 0x6000 && base < 0x8000:
		start := base - 0x6000
		return c.Bus.ExtRAM[start : start+0x100]
	}

	slog.Debug("DMA from non-RAM page", "page", p)
	buf := make([]uint8, 0x100)
	for i := range buf {
		buf[i] = c.Peek(base + uint16(i))
	}
	return buf
}
