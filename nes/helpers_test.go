package nes

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nes-env/cartridge"
	"nes-env/mapper"
)

const (
	resetAddr = 0x8000
	loopAddr  = 0x8026
	nmiAddr   = 0x802B
	irqAddr   = 0x8042

	// zero page locations touched by the test program
	loopCounter  = 0x10
	frameCounter = 0x11
	padByte      = 0x12
)

// testProgram loads the palette with 0..31, enables NMI and rendering and
// spins incrementing $10. The NMI handler counts frames in $11, latches
// controller 1 and stores the first button read in $12, then writes the
// frame count through PPUDATA.
var testProgram = []byte{
	0x78,             // $8000 SEI
	0xD8,             // $8001 CLD
	0xA9, 0x00,       // $8002 LDA #$00
	0x8D, 0x01, 0x20, // $8004 STA $2001
	0xA9, 0x3F,       // $8007 LDA #$3F
	0x8D, 0x06, 0x20, // $8009 STA $2006
	0xA9, 0x00,       // $800C LDA #$00
	0x8D, 0x06, 0x20, // $800E STA $2006
	0xA2, 0x00,       // $8011 LDX #$00
	0x8A,             // $8013 TXA
	0x8D, 0x07, 0x20, // $8014 STA $2007
	0xE8,             // $8017 INX
	0xE0, 0x20,       // $8018 CPX #$20
	0xD0, 0xF7,       // $801A BNE $8013
	0xA9, 0x80,       // $801C LDA #$80
	0x8D, 0x00, 0x20, // $801E STA $2000
	0xA9, 0x1E,       // $8021 LDA #$1E
	0x8D, 0x01, 0x20, // $8023 STA $2001
	0xE6, 0x10,       // $8026 INC $10
	0x4C, 0x26, 0x80, // $8028 JMP $8026
	0xE6, 0x11,       // $802B INC $11
	0xA9, 0x01,       // $802D LDA #$01
	0x8D, 0x16, 0x40, // $802F STA $4016
	0xA9, 0x00,       // $8032 LDA #$00
	0x8D, 0x16, 0x40, // $8034 STA $4016
	0xAD, 0x16, 0x40, // $8037 LDA $4016
	0x85, 0x12,       // $803A STA $12
	0xA5, 0x11,       // $803C LDA $11
	0x8D, 0x07, 0x20, // $803E STA $2007
	0x40,             // $8041 RTI
	0x40,             // $8042 RTI
}

// testImage builds a one bank NROM image running testProgram. Tile 0 of
// the pattern table is solid colour 1.
func testImage(flags6 uint8) []byte {
	prg := make([]byte, mapper.PRGBankSize)
	copy(prg, testProgram)
	vectors := prg[mapper.PRGBankSize-6:]
	vectors[0], vectors[1] = nmiAddr&0xFF, nmiAddr>>8
	vectors[2], vectors[3] = resetAddr&0xFF, resetAddr>>8
	vectors[4], vectors[5] = irqAddr&0xFF, irqAddr>>8

	chr := make([]byte, mapper.CHRBankSize)
	for i := 0; i < 8; i++ {
		chr[i] = 0xFF
	}

	var buf bytes.Buffer
	buf.Write([]byte{'N', 'E', 'S', 0x1A, 1, 1, flags6, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	buf.Write(prg)
	buf.Write(chr)
	return buf.Bytes()
}

func newTestEmulator(t *testing.T) *Emulator {
	t.Helper()
	cart, err := cartridge.Parse(testImage(0))
	require.NoError(t, err)
	return NewWithCartridge(cart)
}

func writeROM(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func runFrames(e *Emulator, n int) {
	for i := 0; i < n; i++ {
		e.Step()
	}
}

type machineState struct {
	screen    [Height][Width]uint32
	ram       [0x800]byte
	registers Registers
	ticks     uint64
}

func capture(e *Emulator) machineState {
	var s machineState
	for y := range e.screen {
		for x := range e.screen[y] {
			s.screen[y][x] = uint32(e.screen[y][x])
		}
	}
	copy(s.ram[:], e.MemoryBuffer())
	s.registers = e.Registers()
	s.ticks = e.Ticks()
	return s
}
