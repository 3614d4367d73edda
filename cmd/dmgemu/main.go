package main

import (
	"errors"
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/retroenv/retrogolib/log"

	"github.com/retrosim/dmgcore/internal/cpu"
	"github.com/retrosim/dmgcore/internal/emu"
	"github.com/retrosim/dmgcore/internal/ppu"
	"github.com/retrosim/dmgcore/internal/ui"
)

type cliFlags struct {
	Scale int
	Title string
	Trace bool

	// headless
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer CRC32 hex (e.g. "1a2b3c4d")
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "dmgemu", "window title")
	flag.BoolVar(&f.Trace, "trace", false, "CPU trace log")

	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert framebuffer CRC32 (hex)")
	flag.Parse()
	return f
}

func createLogger(trace bool) *log.Logger {
	cfg := log.DefaultConfig()
	if trace {
		cfg.Level = log.DebugLevel
	}
	return log.NewWithConfig(cfg)
}

func runHeadless(logger *log.Logger, m *emu.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := m.StepFrame(); err != nil {
			return err
		}
	}
	dur := time.Since(start)

	fb := make([]uint32, ppu.Width*ppu.Height)
	m.CopyFramebuffer(fb)
	pix := framePixels(fb)
	crc := crc32.ChecksumIEEE(pix)
	fps := float64(frames) / dur.Seconds()

	logger.Info("headless run finished",
		log.Int("frames", frames),
		log.String("elapsed", dur.Truncate(time.Millisecond).String()),
		log.String("fps", fmt.Sprintf("%.2f", fps)),
		log.String("fb_crc32", fmt.Sprintf("%08x", crc)))

	if pngPath != "" {
		if err := saveFramePNG(pix, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		logger.Info("wrote frame", log.String("path", pngPath))
	}

	if expectCRC != "" {
		// normalize expected hex (allow with/without 0x, upper/lowercase)
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func framePixels(fb []uint32) []byte {
	pix := make([]byte, len(fb)*4)
	for i, px := range fb {
		pix[i*4+0] = byte(px >> 16)
		pix[i*4+1] = byte(px >> 8)
		pix[i*4+2] = byte(px)
		pix[i*4+3] = 0xFF
	}
	return pix
}

func saveFramePNG(pix []byte, path string) error {
	img := &image.RGBA{
		Pix:    pix,
		Stride: 4 * ppu.Width,
		Rect:   image.Rect(0, 0, ppu.Width, ppu.Height),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func main() {
	f := parseFlags()
	logger := createLogger(f.Trace)

	m := emu.New(emu.Config{Trace: f.Trace}, logger)

	if f.Headless {
		if err := runHeadless(logger, m, f.Frames, f.PNGOut, f.Expect); err != nil {
			fatal(logger, err)
		}
		return
	}

	app := ui.NewApp(ui.Config{Title: f.Title, Scale: f.Scale}, m)
	if err := app.Run(); err != nil {
		fatal(logger, err)
	}
}

func fatal(logger *log.Logger, err error) {
	var derr *cpu.DecodeError
	if errors.As(err, &derr) {
		fmt.Fprintln(os.Stderr, derr.Dump())
		os.Exit(1)
	}
	logger.Fatal(err.Error())
}
