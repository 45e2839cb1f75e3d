package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/urfave/cli"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"nes-env/cpu"
	"nes-env/nes"
)

const (
	panelWidth = 300
	lineSize   = 24
)

var (
	WHITE = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	GREEN = color.RGBA{G: 0xFF, A: 0xFF}
	RED   = color.RGBA{R: 0xFF, A: 0xFF}
	CYAN  = color.RGBA{G: 0xFF, B: 0xFF, A: 0xFF}
)

// controllerKeys maps keyboard keys to controller 1 buttons. WASD plus O/P
// and the arrow keys plus X/Z both work.
var controllerKeys = map[ebiten.Key]uint8{
	ebiten.KeyW:          nes.ButtonUp,
	ebiten.KeyA:          nes.ButtonLeft,
	ebiten.KeyS:          nes.ButtonDown,
	ebiten.KeyD:          nes.ButtonRight,
	ebiten.KeyO:          nes.ButtonA,
	ebiten.KeyP:          nes.ButtonB,
	ebiten.KeyEnter:      nes.ButtonStart,
	ebiten.KeySpace:      nes.ButtonSelect,
	ebiten.KeyArrowUp:    nes.ButtonUp,
	ebiten.KeyArrowDown:  nes.ButtonDown,
	ebiten.KeyArrowLeft:  nes.ButtonLeft,
	ebiten.KeyArrowRight: nes.ButtonRight,
	ebiten.KeyX:          nes.ButtonA,
	ebiten.KeyZ:          nes.ButtonB,
}

var slotKeys = []ebiten.Key{
	ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

type Game struct {
	emu    *nes.Emulator
	pad    *uint8
	keys   []ebiten.Key
	screen *ebiten.Image
	pixels []byte

	scale  int
	debug  bool
	paused bool
	slot   int

	defaultFont font.Face
}

func newGame(emu *nes.Emulator, scale int, debug bool) (*Game, error) {
	pad, err := emu.Controller(0)
	if err != nil {
		return nil, err
	}
	if scale < 1 {
		scale = 1
	}
	return &Game{
		emu:    emu,
		pad:    pad,
		screen: ebiten.NewImage(nes.Width, nes.Height),
		pixels: make([]byte, nes.Width*nes.Height*4),
		scale:  scale,
		debug:  debug,
	}, nil
}

// buttons folds the pressed keys into a controller byte.
func buttons(pressed []ebiten.Key) uint8 {
	var b uint8
	for _, k := range pressed {
		b |= controllerKeys[k]
	}
	return b
}

func (g *Game) Update() error {
	g.keys = inpututil.AppendPressedKeys(g.keys[:0])
	*g.pad = buttons(g.keys)

	for i, k := range slotKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.slot = i
			slog.Info("Selected backup slot", "slot", i)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := g.emu.Backup(g.slot); err != nil {
			return err
		}
		slog.Info("Saved backup", "slot", g.slot)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		if err := g.emu.Restore(g.slot); err != nil {
			return err
		}
		slog.Info("Restored backup", "slot", g.slot)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.emu.Reset()
	}

	if !g.paused {
		g.emu.Step()
	}
	return nil
}

func numToHex(n int, d int) string {
	format := "%0" + strconv.Itoa(d) + "X"
	return fmt.Sprintf(format, n)
}

func (g *Game) getDefaultFont() font.Face {
	if g.defaultFont != nil {
		return g.defaultFont
	}
	tt, err := opentype.Parse(fonts.MPlus1pRegular_ttf)
	if err != nil {
		panic(err)
	}
	const dpi = 72 * 2
	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    8,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		panic(err)
	}
	g.defaultFont = face
	return g.defaultFont
}

func (g *Game) DrawString(screen *ebiten.Image, x int, y int, str string, clr color.RGBA) {
	text.Draw(screen, str, g.getDefaultFont(), x, y, clr)
}

var statusFlags = []struct {
	name string
	flag cpu.Flag
}{
	{"N", cpu.Negative},
	{"V", cpu.Overflow},
	{"U", cpu.Unused},
	{"B", cpu.Break},
	{"D", cpu.Decimal},
	{"I", cpu.InterruptDisable},
	{"Z", cpu.Zero},
	{"C", cpu.Carry},
}

func (g *Game) DrawCpu(screen *ebiten.Image, x int, y int) {
	regs := g.emu.Registers()

	g.DrawString(screen, x, y, "STATUS: ", WHITE)
	titleOffset := 70
	statusOffset := 10
	for i, f := range statusFlags {
		statusColor := RED
		if regs.P&uint8(f.flag) != 0 {
			statusColor = GREEN
		}
		g.DrawString(screen, x+titleOffset+statusOffset*i, y, f.name, statusColor)
	}

	g.DrawString(screen, x, y+lineSize, fmt.Sprintf("PC: $%s", numToHex(int(regs.PC), 4)), WHITE)
	g.DrawString(screen, x, y+lineSize*2, fmt.Sprintf("A: $%s", numToHex(int(regs.A), 2)), WHITE)
	g.DrawString(screen, x, y+lineSize*3, fmt.Sprintf("X: $%s", numToHex(int(regs.X), 2)), WHITE)
	g.DrawString(screen, x, y+lineSize*4, fmt.Sprintf("Y: $%s", numToHex(int(regs.Y), 2)), WHITE)
	g.DrawString(screen, x, y+lineSize*5, fmt.Sprintf("Stack P: $%s", numToHex(int(regs.SP), 2)), WHITE)
	g.DrawString(screen, x, y+lineSize*6, fmt.Sprintf("Cycles: %d", regs.Cycles), WHITE)
	g.DrawString(screen, x, y+lineSize*7, fmt.Sprintf("%s %d:%d V:$%s", regs.PPUState, regs.Scanline, regs.Dot, numToHex(int(regs.V), 4)), WHITE)
	g.DrawString(screen, x, y+lineSize*8, fmt.Sprintf("Slot: %d", g.slot), WHITE)
}

// DrawCode lists the instructions starting at the program counter.
func (g *Game) DrawCode(screen *ebiten.Image, x int, y int, nLines int) {
	pc := g.emu.Registers().PC
	lines := cpu.Disassemble(g.emu.Peek, pc, pc+uint16(nLines*3))
	for i, l := range lines {
		if i == nLines {
			break
		}
		clr := WHITE
		if i == 0 {
			clr = CYAN
		}
		g.DrawString(screen, x, y+i*lineSize, l.Text, clr)
	}
}

func (g *Game) DrawRam(screen *ebiten.Image, x int, y int, nAddr uint16, nRows int, nColumns int) {
	for row := 0; row < nRows; row++ {
		sOffset := fmt.Sprintf("%s:", numToHex(int(nAddr), 4))
		for col := 0; col < nColumns; col++ {
			sOffset = fmt.Sprintf("%s %s", sOffset, numToHex(int(g.emu.Peek(nAddr)), 2))
			nAddr++
		}
		ebitenutil.DebugPrintAt(screen, sOffset, x, y)
		y += 16
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.emu.ScreenBuffer().CopyRGBA(g.pixels)
	g.screen.WritePixels(g.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.screen, op)

	if !g.debug {
		return
	}
	x := nes.Width*g.scale + 10
	g.DrawCpu(screen, x, 20)
	g.DrawCode(screen, x, 20+lineSize*10, 12)
	g.DrawRam(screen, x, 20+lineSize*23, 0x0000, 8, 8)
}

func (g *Game) Layout(outsideWidth int, outsideHeight int) (int, int) {
	w, h := nes.Width*g.scale, nes.Height*g.scale
	if g.debug {
		w += panelWidth
		if h < 720 {
			h = 720
		}
	}
	return w, h
}

func runPlay(c *cli.Context) error {
	emu, romPath, err := loadEmulator(c)
	if err != nil {
		return err
	}
	g, err := newGame(emu, c.Int("scale"), c.Bool("debug"))
	if err != nil {
		return err
	}

	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(filepath.Base(romPath))
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}
