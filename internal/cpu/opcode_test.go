package cpu

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

var illegalOpcodes = []byte{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

func TestDecodeCoverage(t *testing.T) {
	illegal := make(map[byte]bool)
	for _, b := range illegalOpcodes {
		illegal[b] = true
	}
	for i := 0; i < 256; i++ {
		raw := byte(i)
		_, ok := Decode(false, raw)
		assert.Equal(t, !illegal[raw], ok)
	}
	// the CB space has no holes
	for i := 0; i < 256; i++ {
		_, ok := Decode(true, byte(i))
		assert.True(t, ok)
	}
}

func TestDecodeBitGroups(t *testing.T) {
	op, ok := Decode(false, 0xCB) // x=3 y=1 z=3
	assert.True(t, ok)
	assert.Equal(t, byte(3), op.X())
	assert.Equal(t, byte(1), op.Y())
	assert.Equal(t, byte(3), op.Z())

	op, ok = Decode(false, 0x31) // x=0 z=1 p=3 q=0: LD SP,d16
	assert.True(t, ok)
	assert.Equal(t, byte(3), op.P())
	assert.Equal(t, byte(0), op.Q())
	assert.Equal(t, "LD SP,d16", op.Mnemonic)
}

func TestDecodeCycles(t *testing.T) {
	tests := []struct {
		raw       byte
		base, alt int
		mnemonic  string
	}{
		{0x00, 1, 1, "NOP"},
		{0x08, 5, 5, "LD (a16),SP"},
		{0x20, 3, 2, "JR NZ,r8"},
		{0x18, 3, 3, "JR r8"},
		{0x34, 3, 3, "INC (HL)"},
		{0x36, 3, 3, "LD (HL),d8"},
		{0x76, 1, 1, "HALT"},
		{0x46, 2, 2, "LD B,(HL)"},
		{0x86, 2, 2, "ADD A,(HL)"},
		{0xC0, 5, 2, "RET NZ"},
		{0xC3, 4, 4, "JP a16"},
		{0xC4, 6, 3, "CALL NZ,a16"},
		{0xC9, 4, 4, "RET"},
		{0xCD, 6, 6, "CALL a16"},
		{0xE8, 4, 4, "ADD SP,r8"},
		{0xE9, 1, 1, "JP HL"},
		{0xF5, 4, 4, "PUSH AF"},
		{0xFF, 4, 4, "RST 38H"},
	}
	for _, tt := range tests {
		op, ok := Decode(false, tt.raw)
		assert.True(t, ok)
		assert.Equal(t, tt.base, op.Base)
		assert.Equal(t, tt.alt, op.Alt)
		assert.Equal(t, tt.mnemonic, op.Mnemonic)
	}
}

func TestDecodePrefixedCycles(t *testing.T) {
	// register ops cost 1, (HL) ops 3, except BIT (HL) at 2; the prefix
	// byte bills its own cycle when it executes
	op, _ := Decode(true, 0x11) // RL C
	assert.Equal(t, 1, op.Base)
	assert.Equal(t, "RL C", op.Mnemonic)

	op, _ = Decode(true, 0x16) // RL (HL)
	assert.Equal(t, 3, op.Base)

	op, _ = Decode(true, 0x46) // BIT 0,(HL)
	assert.Equal(t, 2, op.Base)
	assert.Equal(t, "BIT 0,(HL)", op.Mnemonic)

	op, _ = Decode(true, 0xFE) // SET 7,(HL)
	assert.Equal(t, 3, op.Base)

	op, _ = Decode(true, 0x37) // SWAP A
	assert.Equal(t, 1, op.Base)
	assert.Equal(t, "SWAP A", op.Mnemonic)
}
