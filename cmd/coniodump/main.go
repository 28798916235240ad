// Package main is the entry point for coniodump, a diagnostic tool that
// paints the current 16-slot palette and echoes decoded input events until
// Escape is pressed. With -events it also appends each event as a JSON
// document to a file, one per line.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/conio/codec"
	"github.com/dshills/conio/color"
	"github.com/dshills/conio/conlog"
	"github.com/dshills/conio/console"
	"github.com/dshills/conio/geom"
	"github.com/dshills/conio/input"
	"github.com/dshills/conio/theme"
)

// Version information (set via ldflags during build).
var version = "dev"

type options struct {
	ThemePath  string
	EventsPath string
	LogPath    string
	LogLevel   string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: coniodump needs a terminal")
		return 1
	}

	log := conlog.Nop()
	if opts.LogPath != "" {
		f, err := os.Create(opts.LogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		log = conlog.New(conlog.Config{
			Level:  conlog.ParseLevel(opts.LogLevel),
			Output: f,
			Prefix: "coniodump",
		})
	}

	var events *os.File
	if opts.EventsPath != "" {
		f, err := os.Create(opts.EventsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open events file: %v\n", err)
			return 1
		}
		defer f.Close()
		events = f
	}

	dev, err := openDevice(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open console: %v\n", err)
		return 1
	}

	c, err := console.New(dev, console.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		_ = dev.Close()
		return 1
	}
	defer c.Close()

	// Everything past this point mutates shared console state; put it
	// back the way it was on every exit path.
	saved, err := c.State()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: snapshot state: %v\n", err)
		return 1
	}
	defer func() { _ = c.Restore(saved) }()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		_ = c.Restore(saved)
		_ = c.Close()
		os.Exit(1)
	}()

	if opts.ThemePath != "" {
		th, err := loadTheme(opts.ThemePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := th.Apply(c); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if err := dump(c, events); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func loadTheme(path string) (theme.Theme, error) {
	if len(path) > 4 && path[len(path)-4:] == ".lua" {
		return theme.LoadLua(path)
	}
	return theme.LoadJSON(path)
}

// dump paints the palette grid and echoes events until Escape goes down.
func dump(c *console.Console, events *os.File) error {
	if err := c.Clear(); err != nil {
		return err
	}
	if err := c.SetTitle("coniodump"); err != nil {
		return err
	}
	if err := drawPalette(c); err != nil {
		return err
	}

	base := color.Attr(color.Gray, color.Black)
	if err := c.WriteText(geom.Pt(0, 11), "press Escape to quit", base); err != nil {
		return err
	}

	dec, err := c.Input()
	if err != nil {
		return err
	}

	count := 0
	for ev, err := range dec.Events() {
		if err != nil {
			return err
		}
		count++

		line := fmt.Sprintf("%6d  %-60s", count, ev.String())
		if werr := c.WriteText(geom.Pt(0, 13), line, base); werr != nil {
			return werr
		}
		if events != nil {
			doc, cerr := codec.EncodeEvent(ev)
			if cerr != nil {
				return cerr
			}
			if _, werr := fmt.Fprintf(events, "%s\n", doc); werr != nil {
				return werr
			}
		}

		if ke, ok := ev.(input.KeyEvent); ok && ke.Down && ke.Key == input.KeyEscape {
			return nil
		}
	}
	return nil
}

// drawPalette renders two rows of eight swatches with their slot names.
func drawPalette(c *console.Console) error {
	for s := color.Slot(0); s < color.SlotCount; s++ {
		col := int(s%8) * 13
		row := 1 + int(s/8)*4

		label := color.Attr(color.Gray, color.Black)
		if err := c.WriteText(geom.Pt(col, row), fmt.Sprintf("%-12s", s), label); err != nil {
			return err
		}
		swatch := color.Attr(s, s)
		for dy := 1; dy <= 2; dy++ {
			if err := c.WriteText(geom.Pt(col, row+dy), "            ", swatch); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ThemePath, "theme", "", "Theme file to apply (.json or .lua)")
	flag.StringVar(&opts.EventsPath, "events", "", "Append decoded events as JSON lines to this file")
	flag.StringVar(&opts.LogPath, "log", "", "Write diagnostic logs to this file")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "coniodump - palette and input event viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: coniodump [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("coniodump %s\n", version)
		os.Exit(0)
	}
	return opts
}
