package bus

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"github.com/retrosim/dmgcore/internal/ppu"
)

func newTestBus() *Bus {
	return New(ppu.New())
}

func TestBootOverlayMapped(t *testing.T) {
	b := newTestBus()
	assert.True(t, b.BootMapped())
	// the overlay opens with LD SP,0xFFFE
	assert.Equal(t, byte(0x31), b.Read(0x0000))
	assert.Equal(t, uint16(0xFFFE), b.ReadWord(0x0001))

	// overlay is read-only
	b.Write(0x0000, 0xAA)
	assert.Equal(t, byte(0x31), b.Read(0x0000))
}

func TestBootUnmap(t *testing.T) {
	b := newTestBus()
	b.UnmapBoot()
	assert.False(t, b.BootMapped())
	// nothing backs 0x0000 once the overlay is gone
	assert.Equal(t, byte(0x00), b.Read(0x0000))

	// one-shot: unmapping again changes nothing
	b.UnmapBoot()
	assert.False(t, b.BootMapped())
}

func TestBootHandoffRegister(t *testing.T) {
	b := newTestBus()
	b.Write(0xFF50, 0x00) // zero write keeps the overlay
	assert.True(t, b.BootMapped())

	b.Write(0xFF50, 0x01)
	assert.False(t, b.BootMapped())

	// the register itself stays unbacked
	assert.Equal(t, byte(0x00), b.Read(0xFF50))
}

func TestWRAMReadWrite(t *testing.T) {
	b := newTestBus()
	b.Write(0xC000, 0x11)
	b.Write(0xDFFF, 0x22)
	assert.Equal(t, byte(0x11), b.Read(0xC000))
	assert.Equal(t, byte(0x22), b.Read(0xDFFF))
}

func TestEchoAliasesWRAM(t *testing.T) {
	b := newTestBus()
	b.Write(0xC123, 0x99)
	assert.Equal(t, byte(0x99), b.Read(0xE123))

	b.Write(0xF000, 0x77)
	assert.Equal(t, byte(0x77), b.Read(0xD000))
}

func TestHRAMReadWrite(t *testing.T) {
	b := newTestBus()
	b.Write(0xFF80, 0xAB)
	b.Write(0xFFFE, 0xCD)
	assert.Equal(t, byte(0xAB), b.Read(0xFF80))
	assert.Equal(t, byte(0xCD), b.Read(0xFFFE))
}

func TestUnbackedAbsorbs(t *testing.T) {
	b := newTestBus()
	for _, addr := range []uint16{0x0200, 0x4000, 0xA000, 0xFE00, 0xFF44, 0xFFFF} {
		b.Write(addr, 0xFF)
		assert.Equal(t, byte(0x00), b.Read(addr))
	}
}

func TestVRAMDelegatesToPPU(t *testing.T) {
	p := ppu.New()
	b := New(p)

	b.Write(0x8000, 0x3C)
	assert.Equal(t, byte(0x3C), p.ReadVRAM(0))
	assert.Equal(t, byte(0x3C), b.Read(0x8000))

	p.WriteVRAM(0x1FFF, 0x42)
	assert.Equal(t, byte(0x42), b.Read(0x9FFF))
}

func TestWordAccessLittleEndian(t *testing.T) {
	b := newTestBus()
	b.WriteWord(0xC100, 0xBEEF)
	assert.Equal(t, byte(0xEF), b.Read(0xC100))
	assert.Equal(t, byte(0xBE), b.Read(0xC101))
	assert.Equal(t, uint16(0xBEEF), b.ReadWord(0xC100))

	b.WriteWord(0xFF80, 0x1234)
	assert.Equal(t, byte(0x34), b.Read(0xFF80))
	assert.Equal(t, byte(0x12), b.Read(0xFF81))
	assert.Equal(t, uint16(0x1234), b.ReadWord(0xFF80))

	// echo range round-trips and lands in WRAM
	b.WriteWord(0xE200, 0xCAFE)
	assert.Equal(t, uint16(0xCAFE), b.ReadWord(0xE200))
	assert.Equal(t, uint16(0xCAFE), b.ReadWord(0xC200))
}
