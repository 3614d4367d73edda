package bus

import (
	"github.com/retrosim/dmgcore/internal/ppu"
)

// Bus routes CPU memory accesses by address range. Video RAM belongs to
// the PPU and is delegated; addresses outside every backed range read
// 0x00 and absorb writes.
type Bus struct {
	bootMapped bool
	wram       [0x2000]byte
	hram       [0x7F]byte
	ppu        *ppu.PPU
}

// New builds a bus with the boot overlay mapped.
func New(p *ppu.PPU) *Bus {
	return &Bus{
		bootMapped: true,
		ppu:        p,
	}
}

// BootMapped reports whether the boot overlay still shadows 0x0000-0x00FF.
func (b *Bus) BootMapped() bool { return b.bootMapped }

// UnmapBoot removes the boot overlay. One-shot: there is no way to map
// it back.
func (b *Bus) UnmapBoot() { b.bootMapped = false }

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x0100 && b.bootMapped:
		return bootROM[addr]
	case addr >= 0x8000 && addr <= 0x9FFF:
		return b.ppu.ReadVRAM(addr - 0x8000)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr >= 0xE000 && addr <= 0xFDFF: // echo of WRAM
		return b.wram[addr-0xE000]
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	default:
		return 0x00
	}
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x0100 && b.bootMapped:
		// overlay is read-only
	case addr >= 0x8000 && addr <= 0x9FFF:
		b.ppu.WriteVRAM(addr-0x8000, value)
	case addr >= 0xC000 && addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
	case addr >= 0xE000 && addr <= 0xFDFF:
		b.wram[addr-0xE000] = value
	case addr == 0xFF50:
		// boot hand-off register: any nonzero write unmaps the overlay
		if value != 0 {
			b.UnmapBoot()
		}
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
	}
}

// ReadWord reads a little-endian 16-bit value.
func (b *Bus) ReadWord(addr uint16) uint16 {
	lo := uint16(b.Read(addr))
	hi := uint16(b.Read(addr + 1))
	return hi<<8 | lo
}

// WriteWord writes a little-endian 16-bit value.
func (b *Bus) WriteWord(addr, value uint16) {
	b.Write(addr, byte(value))
	b.Write(addr+1, byte(value>>8))
}
