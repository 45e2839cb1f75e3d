package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/urfave/cli"

	"nes-env/nes"
	"nes-env/ppu"
)

const statsAddress = "localhost:12600"

var romFlag = cli.StringFlag{
	Name:  "rom",
	Usage: "Path to the ROM file (.nes, or a zip, 7z, rar or gzip archive holding one)",
}

func main() {
	app := cli.NewApp()
	app.Name = "nes-env"
	app.Description = "A cycle-stepped NES emulator with snapshot slots"
	app.Usage = "nes-env [options] <command> --rom <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
			Value: "info",
		},
		cli.StringFlag{
			Name:  "palette",
			Usage: "JSON file with 64 [r, g, b] entries replacing the built-in palette",
		},
		cli.BoolFlag{
			Name:  "statsview",
			Usage: "Serve runtime statistics at " + statsAddress + "/debug/statsview",
		},
	}
	app.Before = setup
	app.Commands = []cli.Command{
		{
			Name:  "play",
			Usage: "Run the ROM in a window",
			Flags: []cli.Flag{
				romFlag,
				cli.IntFlag{
					Name:  "scale",
					Usage: "Window scale factor",
					Value: 3,
				},
				cli.BoolFlag{
					Name:  "debug",
					Usage: "Show the CPU and PPU debug panel",
				},
			},
			Action: runPlay,
		},
		{
			Name:   "terminal",
			Usage:  "Run the ROM in the terminal",
			Flags:  []cli.Flag{romFlag},
			Action: runTerminal,
		},
		{
			Name:  "headless",
			Usage: "Run the ROM without a display",
			Flags: []cli.Flag{
				romFlag,
				cli.IntFlag{
					Name:  "frames",
					Usage: "Number of frames to run (required)",
				},
				cli.IntFlag{
					Name:  "snapshot-interval",
					Usage: "Save a PNG of the screen every N frames (0 = disabled)",
				},
				cli.StringFlag{
					Name:  "snapshot-dir",
					Usage: "Directory to save frame snapshots (default: temp directory)",
				},
				cli.IntFlag{
					Name:  "scale",
					Usage: "Scale factor of saved snapshots",
					Value: 1,
				},
			},
			Action: runHeadless,
		},
		{
			Name:  "inspect",
			Usage: "Print the cartridge header and the code at the reset vector",
			Flags: []cli.Flag{
				romFlag,
				cli.IntFlag{
					Name:  "frames",
					Usage: "Frames to run before dumping the registers",
				},
				cli.StringFlag{
					Name:  "graph",
					Usage: "Write a graphviz dump of the register state to this file",
				},
			},
			Action: runInspect,
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) error {
	level, err := parseLogLevel(c.GlobalString("log-level"))
	if err != nil {
		return err
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	if path := c.GlobalString("palette"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open palette: %w", err)
		}
		defer f.Close()
		p, err := ppu.LoadPalette(f)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		ppu.SetPalette(p)
		slog.Info("Loaded palette", "path", path)
	}

	if c.GlobalBool("statsview") {
		go func() {
			viewer.SetConfiguration(viewer.WithAddr(statsAddress))
			statsview.New().Start()
		}()
		slog.Info("Stats server started", "url", "http://"+statsAddress+"/debug/statsview")
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// loadEmulator opens the ROM named by --rom or the first argument.
func loadEmulator(c *cli.Context) (*nes.Emulator, string, error) {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowCommandHelp(c, c.Command.Name)
			return nil, "", errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	emu, err := nes.New(romPath)
	if err != nil {
		return nil, "", err
	}
	return emu, romPath, nil
}
