package nes

import (
	"encoding/binary"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nes-env/ppu"
)

// packedFrame lays out one pixel per 4 bytes in the given byte order.
func packedFrame(order binary.ByteOrder, pixels map[[2]int]ppu.Pixel) []byte {
	raw := make([]byte, Height*Width*bytesPerPixel)
	for pos, p := range pixels {
		off := pos[0]*Width*bytesPerPixel + pos[1]*bytesPerPixel
		order.PutUint32(raw[off:], uint32(p))
	}
	return raw
}

func TestScreenViewByteOrders(t *testing.T) {
	pixels := map[[2]int]ppu.Pixel{
		{0, 0}:     ppu.RGB(0x11, 0x22, 0x33),
		{1, 2}:     ppu.RGB(0xAA, 0xBB, 0xCC),
		{239, 255}: ppu.RGB(0x01, 0x02, 0x03),
	}

	tests := []struct {
		name   string
		order  binary.ByteOrder
		little bool
		offset int
		stride int
	}{
		{"little endian", binary.LittleEndian, true, 2, -1},
		{"big endian", binary.BigEndian, false, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newScreenView(packedFrame(tt.order, pixels), tt.little)
			assert.Equal(t, tt.offset, v.Offset())

			row, col, channel := v.Strides()
			assert.Equal(t, Width*4, row)
			assert.Equal(t, 4, col)
			assert.Equal(t, tt.stride, channel)

			for pos, p := range pixels {
				r, g, b := p.RGB()
				y, x := pos[0], pos[1]
				assert.Equal(t, r, v.Channel(y, x, 0))
				assert.Equal(t, g, v.Channel(y, x, 1))
				assert.Equal(t, b, v.Channel(y, x, 2))
			}
			assert.Zero(t, v.Channel(5, 5, 0))
		})
	}
}

func TestScreenViewOnHost(t *testing.T) {
	var fb ppu.FrameBuffer
	fb[3][4] = ppu.RGB(0x10, 0x20, 0x30)
	v := newScreenView(frameBytes(&fb), hostLittleEndian)

	h, w, c := v.Shape()
	assert.Equal(t, [3]int{Height, Width, 3}, [3]int{h, w, c})
	assert.Len(t, v.Bytes(), Height*Width*4)
	assert.Equal(t, uint8(0x10), v.Channel(3, 4, 0))
	assert.Equal(t, uint8(0x30), v.Channel(3, 4, 2))
	assert.Equal(t, color.RGBA{0x10, 0x20, 0x30, 0xFF}, v.At(4, 3))
	assert.Equal(t, color.RGBA{}, v.At(-1, 0))

	fb[3][4] = ppu.RGB(0x40, 0x50, 0x60)
	assert.Equal(t, uint8(0x50), v.Channel(3, 4, 1), "view aliases the frame")
}

func TestScreenViewCopies(t *testing.T) {
	var fb ppu.FrameBuffer
	fb[0][1] = ppu.RGB(1, 2, 3)
	v := newScreenView(frameBytes(&fb), hostLittleEndian)

	rgb := make([]byte, Width*Height*3)
	require.Equal(t, Width*Height, v.CopyRGB(rgb))
	assert.Equal(t, []byte{0, 0, 0, 1, 2, 3}, rgb[:6])

	rgba := make([]byte, Width*Height*4)
	require.Equal(t, Width*Height, v.CopyRGBA(rgba))
	assert.Equal(t, []byte{0, 0, 0, 0xFF, 1, 2, 3, 0xFF}, rgba[:8])

	short := make([]byte, 7)
	assert.Equal(t, 2, v.CopyRGB(short))
}

func TestEmulatorScreenBuffer(t *testing.T) {
	e := newTestEmulator(t)
	runFrames(e, 2)

	v := e.ScreenBuffer()
	for y := 0; y < Height; y += 37 {
		for x := 0; x < Width; x += 29 {
			r, g, b := e.Screen()[y][x].RGB()
			require.Equal(t, color.RGBA{r, g, b, 0xFF}, v.At(x, y), "(%d,%d)", x, y)
		}
	}
}
