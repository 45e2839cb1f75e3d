package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nes-env/cartridge"
	"nes-env/nes"
)

// spinImage is an NROM image whose reset handler jumps to itself.
func spinImage() []byte {
	prg := make([]byte, 0x4000)
	copy(prg, []byte{0x4C, 0x00, 0x80}) // JMP $8000
	prg[0x3FFC], prg[0x3FFD] = 0x00, 0x80
	prg[0x3FFA], prg[0x3FFB] = 0x00, 0x80

	var buf bytes.Buffer
	buf.Write([]byte{'N', 'E', 'S', 0x1A, 1, 0, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	buf.Write(prg)
	return buf.Bytes()
}

func newSpinEmulator(t *testing.T) *nes.Emulator {
	t.Helper()
	cart, err := cartridge.Parse(spinImage())
	require.NoError(t, err)
	return nes.NewWithCartridge(cart)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := parseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseLogLevel("verbose")
	assert.Error(t, err)
}

func TestButtons(t *testing.T) {
	assert.Equal(t, uint8(0), buttons(nil))
	assert.Equal(t, nes.ButtonA|nes.ButtonRight, buttons([]ebiten.Key{ebiten.KeyO, ebiten.KeyD}))
	assert.Equal(t, nes.ButtonUp, buttons([]ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp}))
	assert.Equal(t, nes.ButtonStart|nes.ButtonSelect, buttons([]ebiten.Key{ebiten.KeyEnter, ebiten.KeySpace, ebiten.KeyQ}))
}

func TestScaleImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 0xFF, A: 0xFF})
	src.Set(1, 0, color.RGBA{B: 0xFF, A: 0xFF})

	dst := scaleImage(src, 3)
	require.Equal(t, image.Rect(0, 0, 6, 3), dst.Bounds())
	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, dst.At(2, 2))
	assert.Equal(t, color.RGBA{B: 0xFF, A: 0xFF}, dst.At(3, 0))

	assert.Same(t, src, scaleImage(src, 1))
}

func TestHeadlessSnapshots(t *testing.T) {
	emu := newSpinEmulator(t)
	dir := t.TempDir()

	err := headless(emu, headlessConfig{
		frames:           4,
		snapshotInterval: 2,
		snapshotDir:      dir,
		scale:            2,
		romName:          "spin",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(4*nes.CyclesPerFrame), emu.Ticks())

	for _, frame := range []string{"2", "4"} {
		f, err := os.Open(filepath.Join(dir, "spin_frame_"+frame+".png"))
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, nes.Width*2, nes.Height*2), img.Bounds())
	}
	_, err = os.Stat(filepath.Join(dir, "spin_frame_3.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestPrintInspection(t *testing.T) {
	emu := newSpinEmulator(t)

	var out bytes.Buffer
	printInspection(&out, "spin.nes", emu)
	s := out.String()
	assert.Contains(t, s, "Mapper:     0")
	assert.Contains(t, s, "CHR banks:  8KB RAM")
	assert.Contains(t, s, "Mirroring:  vertical")
	assert.Contains(t, s, "PC=$8000")
	assert.Contains(t, s, "JMP")

	d := newMachineDump(emu)
	assert.Equal(t, uint16(0x8000), d.Registers.PC)
}

func TestWriteGraph(t *testing.T) {
	emu := newSpinEmulator(t)
	path := filepath.Join(t.TempDir(), "machine.dot")

	require.NoError(t, writeGraph(path, emu))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph")

	assert.Error(t, writeGraph(filepath.Join(t.TempDir(), "missing", "machine.dot"), emu))
}
