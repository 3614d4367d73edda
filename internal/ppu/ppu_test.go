package ppu

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestModeSequenceOneLine(t *testing.T) {
	p := New()
	assert.Equal(t, ModeOAMScan, p.Mode())
	assert.Equal(t, 0, p.Line())

	p.Step(oamScanCycles - 1)
	assert.Equal(t, ModeOAMScan, p.Mode())

	p.Step(1)
	assert.Equal(t, ModeDrawing, p.Mode())

	p.Step(drawingCycles)
	assert.Equal(t, ModeHBlank, p.Mode())
	assert.Equal(t, 0, p.Line())

	p.Step(hblankCycles)
	assert.Equal(t, ModeOAMScan, p.Mode())
	assert.Equal(t, 1, p.Line())
}

func TestVBlankEntryAndWrap(t *testing.T) {
	p := New()
	p.Step(lineCycles * visibleLines)
	assert.Equal(t, ModeVBlank, p.Mode())
	assert.Equal(t, visibleLines, p.Line())

	// ten VBlank lines, then back to the top
	p.Step(lineCycles * 9)
	assert.Equal(t, ModeVBlank, p.Mode())
	assert.Equal(t, 153, p.Line())

	p.Step(lineCycles)
	assert.Equal(t, ModeOAMScan, p.Mode())
	assert.Equal(t, 0, p.Line())
}

func TestFrameCycleBudget(t *testing.T) {
	p := New()
	p.Step(FrameCycles)
	assert.Equal(t, ModeOAMScan, p.Mode())
	assert.Equal(t, 0, p.Line())
}

func TestStepCrossesMultiplePhases(t *testing.T) {
	p := New()
	// one big budget covering two full lines and a bit
	p.Step(lineCycles*2 + oamScanCycles)
	assert.Equal(t, ModeDrawing, p.Mode())
	assert.Equal(t, 2, p.Line())
}

func TestComposeLineFromTileData(t *testing.T) {
	p := New()
	// tile 1: all pixels value 3 (both bitplanes full)
	for i := 0; i < 16; i++ {
		p.WriteVRAM(uint16(16+i), 0xFF)
	}
	// map cell (0,0) selects tile 1
	p.WriteVRAM(0x1800, 0x01)

	// run line 0 through its Drawing phase
	p.Step(oamScanCycles + drawingCycles)
	assert.Equal(t, ModeHBlank, p.Mode())

	fb := make([]uint32, Width*Height)
	p.CopyFramebuffer(fb)
	assert.Equal(t, shades[3], fb[0])
	assert.Equal(t, shades[3], fb[7])
	// cell (0,1) still selects tile 0, which is blank
	assert.Equal(t, shades[0], fb[8])
}

func TestFramebufferBlankByDefault(t *testing.T) {
	p := New()
	p.Step(FrameCycles)
	fb := make([]uint32, Width*Height)
	p.CopyFramebuffer(fb)
	for _, px := range []int{0, Width - 1, Width * Height / 2, Width*Height - 1} {
		assert.Equal(t, shades[0], fb[px])
	}
}

func TestVRAMRoundTrip(t *testing.T) {
	p := New()
	p.WriteVRAM(0x0000, 0x12)
	p.WriteVRAM(0x1FFF, 0x34)
	assert.Equal(t, byte(0x12), p.ReadVRAM(0x0000))
	assert.Equal(t, byte(0x34), p.ReadVRAM(0x1FFF))
}
