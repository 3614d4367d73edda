package emu

import (
	"github.com/retroenv/retrogolib/log"

	"github.com/retrosim/dmgcore/internal/bus"
	"github.com/retrosim/dmgcore/internal/cpu"
	"github.com/retrosim/dmgcore/internal/ppu"
)

// Machine composes the CPU, bus and PPU into a steppable system. CPU
// cycle counts drive the video timing.
type Machine struct {
	bus *bus.Bus
	cpu *cpu.CPU
	ppu *ppu.PPU
}

func New(cfg Config, logger *log.Logger) *Machine {
	p := ppu.New()
	b := bus.New(p)
	c := cpu.New(b)
	if cfg.Trace {
		c.SetTrace(logger)
	}
	return &Machine{
		bus: b,
		cpu: c,
		ppu: p,
	}
}

func (m *Machine) CPU() *cpu.CPU { return m.cpu }
func (m *Machine) Bus() *bus.Bus { return m.bus }
func (m *Machine) PPU() *ppu.PPU { return m.ppu }

// Step executes one CPU instruction and advances the video timing by
// its cost. It returns the machine cycles consumed.
func (m *Machine) Step() (int, error) {
	cycles, err := m.cpu.Step()
	if err != nil {
		return 0, err
	}
	m.ppu.Step(cycles)
	return cycles, nil
}

// StepFrame runs until one frame worth of machine cycles has elapsed.
func (m *Machine) StepFrame() error {
	budget := ppu.FrameCycles
	for budget > 0 {
		cycles, err := m.Step()
		if err != nil {
			return err
		}
		budget -= cycles
	}
	return nil
}

// CopyFramebuffer copies the current frame into dst; see
// ppu.CopyFramebuffer for the format.
func (m *Machine) CopyFramebuffer(dst []uint32) {
	m.ppu.CopyFramebuffer(dst)
}
