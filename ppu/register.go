package ppu

// Field is a run of Size bits starting at bit Index of a register.
type Field struct {
	Index uint16
	Size  uint16
}

func (f Field) mask() uint16 {
	return ((1 << f.Size) - 1) << f.Index
}

// Get extracts the field from reg.
func (f Field) Get(reg uint16) uint16 {
	return (reg & f.mask()) >> f.Index
}

// Set returns reg with the field replaced by value. Bits of value that do
// not fit in the field are dropped.
func (f Field) Set(reg, value uint16) uint16 {
	return (reg &^ f.mask()) | ((value << f.Index) & f.mask())
}

// IsSet reports whether any bit of the field is set in an 8-bit register.
func (f Field) IsSet(reg uint8) bool {
	return f.Get(uint16(reg)) != 0
}

// Loopy scroll address fields, shared by the data address (v) and the
// temporary address (t).
var (
	CoarseX    = Field{0, 5}
	CoarseY    = Field{5, 5}
	NametableX = Field{10, 1}
	NametableY = Field{11, 1}
	Nametable  = Field{10, 2}
	FineY      = Field{12, 3}
)

// PPUCTRL
var (
	CtrlNametable      = Field{0, 2}
	CtrlIncrement      = Field{2, 1}
	CtrlSpritePage     = Field{3, 1}
	CtrlBackgroundPage = Field{4, 1}
	CtrlLongSprites    = Field{5, 1}
	CtrlNMI            = Field{7, 1}
)

// PPUMASK
var (
	MaskGreyscale      = Field{0, 1}
	MaskBackgroundLeft = Field{1, 1}
	MaskSpritesLeft    = Field{2, 1}
	MaskBackground     = Field{3, 1}
	MaskSprites        = Field{4, 1}
)

// PPUSTATUS
var (
	StatusOverflow      = Field{5, 1}
	StatusSpriteZeroHit = Field{6, 1}
	StatusVBlank        = Field{7, 1}
)

// WriteToggle selects which half of a two-write register (PPUSCROLL,
// PPUADDR) the next write lands in.
type WriteToggle uint8

const (
	AwaitingHigh WriteToggle = iota
	AwaitingLow
)

func (w WriteToggle) String() string {
	if w == AwaitingLow {
		return "low"
	}
	return "high"
}

// flip advances the toggle and returns the state it was in.
func (w *WriteToggle) flip() WriteToggle {
	prev := *w
	if prev == AwaitingHigh {
		*w = AwaitingLow
	} else {
		*w = AwaitingHigh
	}
	return prev
}
