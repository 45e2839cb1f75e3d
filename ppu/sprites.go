package ppu

// Maximum sprites the PPU draws on one scanline.
const maxLineSprites = 8

// spriteList is the fixed-capacity list of OAM indices selected for the next
// scanline.
type spriteList struct {
	index [maxLineSprites]uint8
	n     uint8
}

// push appends a sprite. It returns false once the list is full.
func (l *spriteList) push(i uint8) bool {
	if l.n == maxLineSprites {
		return false
	}
	l.index[l.n] = i
	l.n++
	return true
}

func (l *spriteList) clear() {
	l.n = 0
}

func (l *spriteList) len() int {
	return int(l.n)
}

func (l *spriteList) at(i int) uint8 {
	return l.index[i]
}
