package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli"

	"nes-env/nes"
)

const (
	// each cell draws a top and bottom pixel with a half block
	cellWidth  = 2
	cellHeight = 4
	frameTime  = time.Second / 60

	// terminals report key presses but not releases, so a button stays held
	// for this long after its last repeat
	holdTime = 150 * time.Millisecond
)

var terminalKeys = map[tcell.Key]uint8{
	tcell.KeyEnter: nes.ButtonStart,
	tcell.KeyUp:    nes.ButtonUp,
	tcell.KeyDown:  nes.ButtonDown,
	tcell.KeyLeft:  nes.ButtonLeft,
	tcell.KeyRight: nes.ButtonRight,
}

var terminalRunes = map[rune]uint8{
	'w': nes.ButtonUp,
	'a': nes.ButtonLeft,
	's': nes.ButtonDown,
	'd': nes.ButtonRight,
	'o': nes.ButtonA,
	'p': nes.ButtonB,
	'x': nes.ButtonA,
	'z': nes.ButtonB,
	' ': nes.ButtonSelect,
}

type TerminalRenderer struct {
	screen   tcell.Screen
	emulator *nes.Emulator
	pad      *uint8

	mu   sync.Mutex
	held map[uint8]time.Time
}

func NewTerminalRenderer(emu *nes.Emulator) (*TerminalRenderer, error) {
	pad, err := emu.Controller(0)
	if err != nil {
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}

	return &TerminalRenderer{
		screen:   screen,
		emulator: emu,
		pad:      pad,
		held:     make(map[uint8]time.Time),
	}, nil
}

func (t *TerminalRenderer) Run() error {
	defer func() {
		slog.Info("Finishing terminal")
		t.screen.Fini()
	}()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	quit := make(chan struct{})
	go t.handleInput(quit)

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	for {
		select {
		case now := <-ticker.C:
			*t.pad = t.buttons(now)
			t.emulator.Step()
			t.render()
			t.screen.Show()
		case <-quit:
			return nil
		case <-signals:
			slog.Info("Received signal to stop")
			return nil
		}
	}
}

// buttons returns the controller byte of the keys seen within holdTime.
func (t *TerminalRenderer) buttons(now time.Time) uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b uint8
	for button, at := range t.held {
		if now.Sub(at) > holdTime {
			delete(t.held, button)
			continue
		}
		b |= button
	}
	return b
}

func (t *TerminalRenderer) press(button uint8) {
	t.mu.Lock()
	t.held[button] = time.Now()
	t.mu.Unlock()
}

func (t *TerminalRenderer) handleInput(quit chan<- struct{}) {
	defer close(quit)
	for {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return
			case tcell.KeyRune:
				if b, ok := terminalRunes[ev.Rune()]; ok {
					t.press(b)
				}
			default:
				if b, ok := terminalKeys[ev.Key()]; ok {
					t.press(b)
				}
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *TerminalRenderer) render() {
	fb := t.emulator.Screen()

	for y := 0; y < nes.Height/cellHeight; y++ {
		for x := 0; x < nes.Width/cellWidth; x++ {
			top := fb[y*cellHeight][x*cellWidth]
			bottom := fb[y*cellHeight+cellHeight/2][x*cellWidth]

			tr, tg, tb := top.RGB()
			br, bg, bb := bottom.RGB()
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(tr), int32(tg), int32(tb))).
				Background(tcell.NewRGBColor(int32(br), int32(bg), int32(bb)))
			t.screen.SetContent(x, y, '▀', nil, style)
		}
	}
}

func runTerminal(c *cli.Context) error {
	emu, _, err := loadEmulator(c)
	if err != nil {
		return err
	}
	renderer, err := NewTerminalRenderer(emu)
	if err != nil {
		return err
	}
	return renderer.Run()
}
