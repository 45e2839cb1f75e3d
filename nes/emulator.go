// Package nes wires the CPU, PPU and cartridge into a steppable console and
// exposes the frame, RAM and controller views plus snapshot slots.
package nes

import (
	"errors"
	"fmt"
	"log/slog"

	"nes-env/cartridge"
	"nes-env/cpu"
	"nes-env/ppu"
)

const (
	Width  = ppu.Width
	Height = ppu.Height

	NumBackupSlots = 10

	// CyclesPerFrame is the number of CPU cycles in one NTSC frame.
	CyclesPerFrame = 29781
)

var (
	ErrSlotOutOfRange = errors.New("backup slot out of range")
	ErrPortOutOfRange = errors.New("controller port out of range")
)

type backup struct {
	core   Core
	screen ppu.FrameBuffer
	valid  bool
}

// Emulator owns one running console and its backup slots.
type Emulator struct {
	core        Core
	cart        *cartridge.Cartridge
	controllers Controllers
	screen      ppu.FrameBuffer

	slots [NumBackupSlots]backup
}

// New loads the ROM at path and returns a reset emulator.
func New(path string) (*Emulator, error) {
	cart, err := cartridge.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return NewWithCartridge(cart), nil
}

// NewWithCartridge returns a reset emulator running cart.
func NewWithCartridge(cart *cartridge.Cartridge) *Emulator {
	e := &Emulator{cart: cart}
	e.core.Initialize()
	e.core.Bind(cart)
	e.Reset()

	slog.Info("cartridge inserted",
		"mapper", cart.MapperID(),
		"prg_banks", cart.Header.PrgRomChunks,
		"chr_banks", cart.Header.ChrRomChunks,
		"mirroring", cart.Mirroring(),
	)
	return e
}

// Reset re-initializes the CPU and PPU. RAM and mapper state persist.
func (e *Emulator) Reset() {
	e.core.Reset()
}

// Step runs one frame's worth of CPU cycles.
func (e *Emulator) Step() {
	e.core.Attach(&e.controllers)
	defer e.core.Detach()

	for i := 0; i < CyclesPerFrame; i++ {
		e.core.Step(&e.screen)
	}
}

// PPUStep runs the PPU for one frame's worth of CPU cycles with the CPU held.
func (e *Emulator) PPUStep() {
	e.core.Attach(&e.controllers)
	defer e.core.Detach()

	for i := 0; i < CyclesPerFrame; i++ {
		e.core.PPUStep(&e.screen)
	}
}

// Snapshot copies the running machine into dst.
func (e *Emulator) Snapshot(dst *Core) {
	*dst = e.core
}

// RestoreCore replaces the running machine with a copy of src.
func (e *Emulator) RestoreCore(src *Core) {
	e.core = *src
	e.core.Detach()
	e.core.Bind(e.cart)
}

// Backup stores the machine and the current frame in slot.
func (e *Emulator) Backup(slot int) error {
	if slot < 0 || slot >= NumBackupSlots {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	s := &e.slots[slot]
	e.Snapshot(&s.core)
	s.screen = e.screen
	s.valid = true
	return nil
}

// Restore replaces the machine and frame with the contents of slot.
func (e *Emulator) Restore(slot int) error {
	if slot < 0 || slot >= NumBackupSlots {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	s := &e.slots[slot]
	if !s.valid {
		slog.Warn("restoring empty backup slot", "slot", slot)
		var blank Core
		blank.Initialize()
		e.RestoreCore(&blank)
		e.screen = ppu.FrameBuffer{}
		return nil
	}
	e.RestoreCore(&s.core)
	e.screen = s.screen
	return nil
}

// Screen returns the frame buffer the PPU draws into.
func (e *Emulator) Screen() *ppu.FrameBuffer {
	return &e.screen
}

// ScreenBuffer returns an RGB channel view over the frame buffer.
func (e *Emulator) ScreenBuffer() ScreenView {
	return newScreenView(frameBytes(&e.screen), hostLittleEndian)
}

// MemoryBuffer returns the 2 KB work RAM. Writes go straight to the machine.
func (e *Emulator) MemoryBuffer() []byte {
	return e.core.Bus.RAM[:]
}

// Controller returns the button byte of port 0 or 1.
func (e *Emulator) Controller(port int) (*uint8, error) {
	if port < 0 || port >= len(e.controllers) {
		return nil, fmt.Errorf("%w: %d", ErrPortOutOfRange, port)
	}
	return &e.controllers[port].Buttons, nil
}

// Registers is a read-only view of the CPU and PPU registers.
type Registers struct {
	cpu.Registers
	Cycles uint64

	Scanline  int
	Dot       int
	PPUState  ppu.State
	PPUStatus uint8
	V         uint16
	T         uint16
	FineX     uint8
}

func (e *Emulator) Registers() Registers {
	scanline, dot := e.core.PPU.Position()
	return Registers{
		Registers: e.core.CPU.Registers,
		Cycles:    e.core.CPU.Cycles(),
		Scanline:  scanline,
		Dot:       dot,
		PPUState:  e.core.PPU.State(),
		PPUStatus: e.core.PPU.PeekStatus(),
		V:         e.core.PPU.DataAddress(),
		T:         e.core.PPU.TempAddress(),
		FineX:     e.core.PPU.FineX(),
	}
}

// Peek reads a CPU address without side effects.
func (e *Emulator) Peek(addr uint16) uint8 {
	return e.core.Peek(addr)
}

// Ticks returns the number of Core steps since construction.
func (e *Emulator) Ticks() uint64 {
	return e.core.Ticks
}

func (e *Emulator) Cartridge() *cartridge.Cartridge {
	return e.cart
}
