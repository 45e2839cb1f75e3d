package nes

// Button bits of a controller byte.
const (
	ButtonA uint8 = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller is a standard joypad. Buttons is written by the host between
// frames; the shift register is loaded from it when the strobe falls.
type Controller struct {
	Buttons uint8
	bits    uint8
	strobe  bool
}

// Strobe handles a write to $4016.
func (c *Controller) Strobe(b uint8) {
	c.strobe = b&1 != 0
	if !c.strobe {
		c.bits = c.Buttons
	}
}

// Read shifts out the next button. Bit 6 reflects the open bus.
func (c *Controller) Read() uint8 {
	var ret uint8
	if c.strobe {
		ret = c.Buttons & 1
	} else {
		ret = c.bits & 1
		c.bits >>= 1
	}
	return ret | 0x40
}

// Controllers are the two ports.
type Controllers [2]Controller
