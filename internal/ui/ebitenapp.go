package ui

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/retrosim/dmgcore/internal/cpu"
	"github.com/retrosim/dmgcore/internal/emu"
	"github.com/retrosim/dmgcore/internal/ppu"
)

// App presents a Machine in an ebiten window. One emulated frame runs
// per update; a decode failure stops the loop and is reported from Run.
type App struct {
	cfg    Config
	m      *emu.Machine
	tex    *ebiten.Image
	fb     []uint32
	pix    []byte
	paused bool
}

func NewApp(cfg Config, m *emu.Machine) *App {
	if cfg.Scale <= 0 {
		cfg.Scale = 3
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(ppu.Width*cfg.Scale, ppu.Height*cfg.Scale)
	return &App{
		cfg: cfg,
		m:   m,
		fb:  make([]uint32, ppu.Width*ppu.Height),
		pix: make([]byte, ppu.Width*ppu.Height*4),
	}
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	// Pause toggle (P)
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}

	// Frame-step when paused (N)
	step := !a.paused || inpututil.IsKeyJustPressed(ebiten.KeyN)
	if step {
		if err := a.m.StepFrame(); err != nil {
			var derr *cpu.DecodeError
			if errors.As(err, &derr) {
				return fmt.Errorf("emulation stopped:\n%s", derr.Dump())
			}
			return err
		}
	}

	// Screenshot (F12)
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		_ = a.saveScreenshot()
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(ppu.Width, ppu.Height)
	}
	a.m.CopyFramebuffer(a.fb)
	pixelsRGBA(a.fb, a.pix)
	a.tex.WritePixels(a.pix)
	screen.DrawImage(a.tex, nil)
}

func (a *App) Layout(outW, outH int) (int, int) { return ppu.Width, ppu.Height }

// pixelsRGBA expands packed 0x00RRGGBB pixels to RGBA bytes.
func pixelsRGBA(fb []uint32, dst []byte) {
	for i, px := range fb {
		dst[i*4+0] = byte(px >> 16)
		dst[i*4+1] = byte(px >> 8)
		dst[i*4+2] = byte(px)
		dst[i*4+3] = 0xFF
	}
}

func (a *App) saveScreenshot() error {
	a.m.CopyFramebuffer(a.fb)
	img := &image.RGBA{
		Pix:    make([]byte, len(a.fb)*4),
		Stride: 4 * ppu.Width,
		Rect:   image.Rect(0, 0, ppu.Width, ppu.Height),
	}
	pixelsRGBA(a.fb, img.Pix)
	name := fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
