package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bradleyjkemp/memviz"
	"github.com/urfave/cli"

	"nes-env/cartridge"
	"nes-env/cpu"
	"nes-env/nes"
)

const inspectLines = 16

// machineDump is the structure graphed by --graph.
type machineDump struct {
	Header    cartridge.Header
	Registers nes.Registers
	ZeroPage  [16]uint8
}

func runInspect(c *cli.Context) error {
	emu, romPath, err := loadEmulator(c)
	if err != nil {
		return err
	}
	for i := 0; i < c.Int("frames"); i++ {
		emu.Step()
	}

	printInspection(os.Stdout, romPath, emu)

	if path := c.String("graph"); path != "" {
		if err := writeGraph(path, emu); err != nil {
			return err
		}
		fmt.Printf("register graph written to %s\n", path)
	}
	return nil
}

// writeGraph renders the machine dump as a Graphviz dot file.
func writeGraph(path string, emu *nes.Emulator) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	memviz.Map(f, newMachineDump(emu))
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func newMachineDump(emu *nes.Emulator) *machineDump {
	d := &machineDump{
		Header:    emu.Cartridge().Header,
		Registers: emu.Registers(),
	}
	copy(d.ZeroPage[:], emu.MemoryBuffer())
	return d
}

func printInspection(w io.Writer, romPath string, emu *nes.Emulator) {
	cart := emu.Cartridge()
	h := cart.Header

	fmt.Fprintf(w, "ROM:        %s\n", romPath)
	fmt.Fprintf(w, "Mapper:     %d\n", cart.MapperID())
	fmt.Fprintf(w, "PRG banks:  %d x 16KB\n", h.PrgRomChunks)
	if h.ChrRomChunks == 0 {
		fmt.Fprintf(w, "CHR banks:  8KB RAM\n")
	} else {
		fmt.Fprintf(w, "CHR banks:  %d x 8KB\n", h.ChrRomChunks)
	}
	fmt.Fprintf(w, "Mirroring:  %s\n", cart.Mirroring())
	fmt.Fprintf(w, "Battery:    %t\n", h.HasBattery())

	regs := emu.Registers()
	fmt.Fprintf(w, "\nA=$%02X X=$%02X Y=$%02X SP=$%02X P=$%02X PC=$%04X cycles=%d\n",
		regs.A, regs.X, regs.Y, regs.SP, regs.P, regs.PC, regs.Cycles)
	fmt.Fprintf(w, "PPU %s scanline=%d dot=%d status=$%02X v=$%04X t=$%04X\n\n",
		regs.PPUState, regs.Scanline, regs.Dot, regs.PPUStatus, regs.V, regs.T)

	lines := cpu.Disassemble(emu.Peek, regs.PC, regs.PC+inspectLines*3)
	for i, l := range lines {
		if i == inspectLines {
			break
		}
		fmt.Fprintln(w, l.Text)
	}
}
