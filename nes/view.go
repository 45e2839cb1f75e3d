package nes

import (
	"encoding/binary"
	"image"
	"image/color"
	"unsafe"

	"nes-env/ppu"
)

const bytesPerPixel = 4

var hostLittleEndian = func() bool {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	return b[0] == 1
}()

// frameBytes aliases the packed pixels of fb as bytes in host order.
func frameBytes(fb *ppu.FrameBuffer) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&fb[0][0])), Height*Width*bytesPerPixel)
}

// ScreenView exposes the frame buffer as a Height x Width x 3 array of RGB
// bytes without copying. The red channel of pixel (0, 0) sits at Offset and
// each following channel is ChannelStride bytes away; the sign depends on
// the host byte order.
type ScreenView struct {
	raw           []byte
	offset        int
	channelStride int
}

func newScreenView(raw []byte, littleEndian bool) ScreenView {
	// 0x00RRGGBB is stored BB GG RR 00 on little-endian hosts and
	// 00 RR GG BB on big-endian ones.
	if littleEndian {
		return ScreenView{raw: raw, offset: 2, channelStride: -1}
	}
	return ScreenView{raw: raw, offset: 1, channelStride: 1}
}

func (v ScreenView) Shape() (height, width, channels int) {
	return Height, Width, 3
}

// Strides returns the byte distance between rows, columns and channels.
func (v ScreenView) Strides() (row, col, channel int) {
	return Width * bytesPerPixel, bytesPerPixel, v.channelStride
}

func (v ScreenView) Offset() int {
	return v.offset
}

// Bytes is the underlying packed buffer. It aliases the live frame.
func (v ScreenView) Bytes() []byte {
	return v.raw
}

// Channel returns channel c (0 red, 1 green, 2 blue) of the pixel at row y,
// column x.
func (v ScreenView) Channel(y, x, c int) uint8 {
	return v.raw[y*Width*bytesPerPixel+x*bytesPerPixel+v.offset+c*v.channelStride]
}

// CopyRGB writes the frame as packed RGB triples into dst and returns the
// number of pixels copied.
func (v ScreenView) CopyRGB(dst []byte) int {
	n := 0
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if len(dst) < (n+1)*3 {
				return n
			}
			base := y*Width*bytesPerPixel + x*bytesPerPixel + v.offset
			dst[n*3] = v.raw[base]
			dst[n*3+1] = v.raw[base+v.channelStride]
			dst[n*3+2] = v.raw[base+2*v.channelStride]
			n++
		}
	}
	return n
}

// CopyRGBA is CopyRGB with an opaque alpha byte after every pixel, the
// layout image.RGBA and ebiten.Image.WritePixels expect.
func (v ScreenView) CopyRGBA(dst []byte) int {
	n := 0
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if len(dst) < (n+1)*4 {
				return n
			}
			base := y*Width*bytesPerPixel + x*bytesPerPixel + v.offset
			dst[n*4] = v.raw[base]
			dst[n*4+1] = v.raw[base+v.channelStride]
			dst[n*4+2] = v.raw[base+2*v.channelStride]
			dst[n*4+3] = 0xFF
			n++
		}
	}
	return n
}

func (v ScreenView) ColorModel() color.Model {
	return color.RGBAModel
}

func (v ScreenView) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

func (v ScreenView) At(x, y int) color.Color {
	if !image.Pt(x, y).In(v.Bounds()) {
		return color.RGBA{}
	}
	return color.RGBA{
		R: v.Channel(y, x, 0),
		G: v.Channel(y, x, 1),
		B: v.Channel(y, x, 2),
		A: 0xFF,
	}
}
