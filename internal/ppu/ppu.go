package ppu

// Mode is one of the four video timing phases.
type Mode byte

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeDrawing
)

func (m Mode) String() string {
	switch m {
	case ModeHBlank:
		return "HBlank"
	case ModeVBlank:
		return "VBlank"
	case ModeOAMScan:
		return "OAMScan"
	case ModeDrawing:
		return "Drawing"
	}
	return "?"
}

const (
	Width  = 160
	Height = 144

	// phase lengths in machine cycles
	oamScanCycles = 20
	drawingCycles = 43
	hblankCycles  = 51
	lineCycles    = oamScanCycles + drawingCycles + hblankCycles

	visibleLines = Height
	totalLines   = 154

	// FrameCycles is one full frame: 154 lines of 114 machine cycles.
	FrameCycles = totalLines * lineCycles
)

// PPU is the video timing state machine. It owns VRAM and the
// framebuffer. Each visible line runs OAM-Scan, Drawing, HBlank; lines
// 144-153 are VBlank. The current line is composed into the
// framebuffer at the Drawing to HBlank transition.
type PPU struct {
	vram [0x2000]byte

	mode    Mode
	line    int
	counter int // cycles spent in the current phase

	fb [Width * Height]uint32
}

func New() *PPU {
	return &PPU{mode: ModeOAMScan}
}

func (p *PPU) Mode() Mode { return p.mode }
func (p *PPU) Line() int  { return p.line }

// ReadVRAM reads video RAM at an offset relative to 0x8000.
func (p *PPU) ReadVRAM(offset uint16) byte { return p.vram[offset] }

// WriteVRAM writes video RAM at an offset relative to 0x8000.
func (p *PPU) WriteVRAM(offset uint16, v byte) { p.vram[offset] = v }

// CopyFramebuffer copies the current frame into dst, which must hold
// Width*Height packed 0x00RRGGBB pixels. No allocation.
func (p *PPU) CopyFramebuffer(dst []uint32) {
	copy(dst, p.fb[:])
}

// Step advances the state machine by the given number of machine
// cycles, crossing as many phase boundaries as the budget covers.
func (p *PPU) Step(cycles int) {
	p.counter += cycles
	for {
		n := p.phaseLen()
		if p.counter < n {
			return
		}
		p.counter -= n
		p.advance()
	}
}

func (p *PPU) phaseLen() int {
	switch p.mode {
	case ModeOAMScan:
		return oamScanCycles
	case ModeDrawing:
		return drawingCycles
	case ModeHBlank:
		return hblankCycles
	default: // VBlank, one full line per phase step
		return lineCycles
	}
}

func (p *PPU) advance() {
	switch p.mode {
	case ModeOAMScan:
		p.mode = ModeDrawing
	case ModeDrawing:
		p.composeLine()
		p.mode = ModeHBlank
	case ModeHBlank:
		p.line++
		if p.line >= visibleLines {
			p.mode = ModeVBlank
		} else {
			p.mode = ModeOAMScan
		}
	case ModeVBlank:
		p.line++
		if p.line >= totalLines {
			p.line = 0
			p.mode = ModeOAMScan
		}
	}
}

// shades maps a 2-bit pixel value to packed RGB, lightest first.
var shades = [4]uint32{0x00FFFFFF, 0x00C0C0C0, 0x00606060, 0x00000000}

// composeLine renders the current line from the background map at
// 0x9800 with tile data at 0x8000, the layout the boot program sets
// up. There is no scrolling; the LCD control registers live outside
// this address map.
func (p *PPU) composeLine() {
	y := p.line
	if y >= visibleLines {
		return
	}
	tileRow := y / 8
	pixRow := y % 8
	for x := 0; x < Width; x++ {
		tileCol := x / 8
		tileIdx := p.vram[0x1800+tileRow*32+tileCol]
		// 16 bytes per tile, 2 bytes per row
		base := int(tileIdx)*16 + pixRow*2
		lo := p.vram[base]
		hi := p.vram[base+1]
		bit := byte(7 - x%8)
		px := (lo >> bit & 1) | (hi>>bit&1)<<1
		p.fb[y*Width+x] = shades[px]
	}
}
