package ppu

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Screen geometry.
const (
	Width  = 256
	Height = 240
)

// Pixel is a packed 0x00RRGGBB colour.
type Pixel uint32

func RGB(r, g, b uint8) Pixel {
	return Pixel(r)<<16 | Pixel(g)<<8 | Pixel(b)
}

func (p Pixel) RGB() (r, g, b uint8) {
	return uint8(p >> 16), uint8(p >> 8), uint8(p)
}

// FrameBuffer is the visible picture, row-major.
type FrameBuffer [Height][Width]Pixel

// Palette maps the 64 NES colour indices to pixels.
type Palette [64]Pixel

var ErrPaletteSize = errors.New("palette must have 64 entries")

//go:embed palette.json
var defaultPaletteJSON []byte

var colours = mustLoadPalette(defaultPaletteJSON)

func mustLoadPalette(data []byte) Palette {
	p, err := DecodePalette(data)
	if err != nil {
		panic(fmt.Sprintf("embedded palette: %v", err))
	}
	return p
}

// DecodePalette parses a JSON list of 64 [r, g, b] triples.
func DecodePalette(data []byte) (Palette, error) {
	var entries [][3]uint8
	if err := json.Unmarshal(data, &entries); err != nil {
		return Palette{}, fmt.Errorf("failed to decode palette: %w", err)
	}
	if len(entries) != len(Palette{}) {
		return Palette{}, fmt.Errorf("%w: got %d", ErrPaletteSize, len(entries))
	}

	var p Palette
	for i, e := range entries {
		p[i] = RGB(e[0], e[1], e[2])
	}
	return p, nil
}

// LoadPalette reads a palette in the DecodePalette format.
func LoadPalette(r io.Reader) (Palette, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Palette{}, fmt.Errorf("failed to read palette: %w", err)
	}
	return DecodePalette(data)
}

// SetPalette replaces the colours used for rendering. It must not be called
// while any PPU is being clocked.
func SetPalette(p Palette) {
	colours = p
}

// DefaultPalette returns the built-in NTSC palette.
func DefaultPalette() Palette {
	return mustLoadPalette(defaultPaletteJSON)
}

// Colour returns the pixel for NES colour index i.
func Colour(i uint8) Pixel {
	return colours[i&0x3F]
}
