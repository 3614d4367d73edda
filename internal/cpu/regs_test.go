package cpu

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestRegsPairs(t *testing.T) {
	var r Regs
	r.SetBC(0x1234)
	assert.Equal(t, byte(0x12), r.B)
	assert.Equal(t, byte(0x34), r.C)
	assert.Equal(t, uint16(0x1234), r.BC())

	r.SetDE(0xBEEF)
	assert.Equal(t, uint16(0xBEEF), r.DE())

	r.SetHL(0x8001)
	assert.Equal(t, byte(0x80), r.H)
	assert.Equal(t, byte(0x01), r.L)
}

func TestRegsAFMasksLowNibble(t *testing.T) {
	var r Regs
	r.SetAF(0x12FF)
	assert.Equal(t, byte(0x12), r.A)
	assert.Equal(t, byte(0xF0), r.F)
	assert.Equal(t, uint16(0x12F0), r.AF())
}

func TestRegsFlags(t *testing.T) {
	var r Regs
	r.SetFlag(FlagZ, true)
	assert.True(t, r.Flag(FlagZ))
	assert.False(t, r.Flag(FlagN))
	assert.False(t, r.Flag(FlagH))
	assert.False(t, r.Flag(FlagC))

	r.SetFlag(FlagC, true)
	r.SetFlag(FlagZ, false)
	assert.False(t, r.Flag(FlagZ))
	assert.True(t, r.Flag(FlagC))
	assert.Equal(t, byte(FlagC), r.F)
}
