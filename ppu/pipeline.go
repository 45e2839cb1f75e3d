package ppu

// Cycle advances the PPU by one dot, drawing into screen while on a visible
// scanline. It returns true when the dot raised a vblank NMI.
func (p *PPU) Cycle(bus *PictureBus, screen *FrameBuffer) (nmi bool) {
	switch p.state {
	case PreRender:
		p.preRender()

	case Render:
		p.render(bus, screen)

	case PostRender:
		if p.cycle >= ScanlineEndCycle {
			p.scanline++
			p.cycle = 0
			p.state = VerticalBlank
		}

	case VerticalBlank:
		if p.cycle == 1 && p.scanline == VisibleScanlines+1 {
			p.vblank = true
			nmi = CtrlNMI.IsSet(p.ctrl)
		}
		if p.cycle >= ScanlineEndCycle {
			p.scanline++
			p.cycle = 0
		}
		if p.scanline >= FrameEndScanline {
			p.state = PreRender
			p.scanline = 0
			p.evenFrame = !p.evenFrame
		}
	}

	p.cycle++
	return nmi
}

func (p *PPU) preRender() {
	switch {
	case p.cycle == 1:
		p.vblank = false
		p.spriteZeroHit = false
		p.spriteOverflow = false
	case p.cycle == VisibleDots+2 && p.rendering():
		p.copyHorizontal()
	case p.cycle > 280 && p.cycle <= 304 && p.rendering():
		p.copyVertical()
	}

	end := ScanlineEndCycle
	if !p.evenFrame && p.rendering() {
		end--
	}
	if p.cycle >= end {
		p.state = Render
		p.cycle = 0
		p.scanline = 0
	}
}

// copyHorizontal loads coarse X and the horizontal nametable bit from t.
func (p *PPU) copyHorizontal() {
	const bits = 0x041F
	p.dataAddress = p.dataAddress&^bits | p.tempAddress&bits
}

// copyVertical loads fine Y, coarse Y and the vertical nametable bit from t.
func (p *PPU) copyVertical() {
	const bits = 0x7BE0
	p.dataAddress = p.dataAddress&^bits | p.tempAddress&bits
}

func (p *PPU) incrementCoarseX() {
	v := p.dataAddress
	if CoarseX.Get(v) == 31 {
		v = CoarseX.Set(v, 0)
		v ^= 0x0400
	} else {
		v++
	}
	p.dataAddress = v
}

func (p *PPU) incrementY() {
	v := p.dataAddress
	if fine := FineY.Get(v); fine < 7 {
		p.dataAddress = FineY.Set(v, fine+1)
		return
	}
	v = FineY.Set(v, 0)
	switch y := CoarseY.Get(v); y {
	case 29:
		v = CoarseY.Set(v, 0)
		v ^= 0x0800
	case 31:
		v = CoarseY.Set(v, 0)
	default:
		v = CoarseY.Set(v, y+1)
	}
	p.dataAddress = v
}

func (p *PPU) render(bus *PictureBus, screen *FrameBuffer) {
	switch {
	case p.cycle > 0 && p.cycle <= VisibleDots:
		p.drawDot(bus, screen)
	case p.cycle == VisibleDots+1 && p.showBackground():
		p.incrementY()
	case p.cycle == VisibleDots+2 && p.rendering():
		p.copyHorizontal()
	}

	if p.cycle >= ScanlineEndCycle {
		p.evaluateSprites()
		p.scanline++
		p.cycle = 0
	}

	if p.scanline >= VisibleScanlines {
		p.state = PostRender
	}
}

// backgroundColour returns the 4-bit palette index of the background at x
// and steps coarse X at the end of each tile.
func (p *PPU) backgroundColour(bus *PictureBus, x int) uint8 {
	var colour uint8
	fine := (int(p.fineX) + x) % 8

	if MaskBackgroundLeft.IsSet(p.mask) || x >= 8 {
		v := p.dataAddress
		tile := uint16(bus.Read(0x2000 | v&0x0FFF))
		addr := tile*16 + FineY.Get(v)
		addr |= CtrlBackgroundPage.Get(uint16(p.ctrl)) << 12

		shift := 7 ^ fine
		colour = (bus.Read(addr) >> shift) & 1
		colour |= ((bus.Read(addr+8) >> shift) & 1) << 1

		if colour != 0 {
			attrAddr := 0x23C0 | v&0x0C00 | (v>>4)&0x38 | (v>>2)&0x07
			attr := bus.Read(attrAddr)
			attrShift := (v>>4)&4 | v&2
			colour |= ((attr >> attrShift) & 0x3) << 2
		}
	}

	if fine == 7 {
		p.incrementCoarseX()
	}
	return colour
}

// spriteColour returns the palette index of the first opaque sprite covering
// x, whether that sprite is drawn in front of the background and whether it
// is sprite zero.
func (p *PPU) spriteColour(bus *PictureBus, x, y int) (colour uint8, front, zero bool) {
	if !MaskSpritesLeft.IsSet(p.mask) && x < 8 {
		return 0, false, false
	}

	length := 8
	if p.longSprites() {
		length = 16
	}

	for i := 0; i < p.lineSprites.len(); i++ {
		index := int(p.lineSprites.at(i)) * 4
		sprX := int(p.OAM[index+3])
		if x < sprX || x-sprX >= 8 {
			continue
		}
		sprY := int(p.OAM[index]) + 1
		if y < sprY {
			continue
		}
		tile := uint16(p.OAM[index+1])
		attr := p.OAM[index+2]

		xShift := uint8((x - sprX) % 8)
		yOffset := uint16((y - sprY) % length)
		if attr&0x40 == 0 {
			xShift ^= 7
		}
		if attr&0x80 != 0 {
			yOffset ^= uint16(length - 1)
		}

		var addr uint16
		if !p.longSprites() {
			addr = tile*16 + yOffset
			addr |= CtrlSpritePage.Get(uint16(p.ctrl)) << 12
		} else {
			yOffset = yOffset&7 | (yOffset&8)<<1
			addr = (tile>>1)*32 + yOffset
			addr |= (tile & 1) << 12
		}

		colour = (bus.Read(addr) >> xShift) & 1
		colour |= ((bus.Read(addr+8) >> xShift) & 1) << 1
		if colour == 0 {
			continue
		}
		colour |= 0x10
		colour |= (attr & 0x03) << 2
		return colour, attr&0x20 == 0, index == 0
	}
	return 0, false, false
}

func (p *PPU) drawDot(bus *PictureBus, screen *FrameBuffer) {
	x := p.cycle - 1
	y := p.scanline

	var bg uint8
	if p.showBackground() {
		bg = p.backgroundColour(bus, x)
	}

	var spr uint8
	var front, zero bool
	if p.showSprites() {
		spr, front, zero = p.spriteColour(bus, x, y)
	}

	bgOpaque := bg&0x03 != 0
	sprOpaque := spr != 0
	if zero && bgOpaque && p.showBackground() {
		p.spriteZeroHit = true
	}

	index := bg
	switch {
	case sprOpaque && (!bgOpaque || front):
		index = spr
	case !bgOpaque:
		index = 0
	}

	colour := bus.ReadPalette(index)
	if MaskGreyscale.IsSet(p.mask) {
		colour &= 0x30
	}
	screen[y][x] = Colour(colour)
}

// evaluateSprites selects up to eight sprites that intersect the next
// scanline. Further matches set the overflow flag and are dropped.
func (p *PPU) evaluateSprites() {
	p.lineSprites.clear()

	length := 8
	if p.longSprites() {
		length = 16
	}

	for i := int(p.oamAddr) / 4; i < 64; i++ {
		diff := p.scanline - int(p.OAM[i*4])
		if diff < 0 || diff >= length {
			continue
		}
		if !p.lineSprites.push(uint8(i)) {
			p.spriteOverflow = true
			break
		}
	}
}
