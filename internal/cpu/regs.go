package cpu

// Flag is a bit position in the F register.
type Flag byte

const (
	FlagZ Flag = 1 << 7 // zero
	FlagN Flag = 1 << 6 // subtract
	FlagH Flag = 1 << 5 // half carry
	FlagC Flag = 1 << 4 // carry
)

// Regs is the LR35902 register file. The low nibble of F is wired to
// zero in hardware; every writer of F goes through SetAF or SetFlag so
// those bits can never become observable.
type Regs struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte
	PC   uint16
	SP   uint16
}

func (r *Regs) Flag(f Flag) bool { return r.F&byte(f) != 0 }

func (r *Regs) SetFlag(f Flag, on bool) {
	if on {
		r.F |= byte(f)
	} else {
		r.F &^= byte(f)
	}
}

func (r *Regs) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F) }
func (r *Regs) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Regs) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Regs) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

func (r *Regs) SetAF(v uint16) {
	r.A = byte(v >> 8)
	r.F = byte(v) & 0xF0
}

func (r *Regs) SetBC(v uint16) {
	r.B = byte(v >> 8)
	r.C = byte(v)
}

func (r *Regs) SetDE(v uint16) {
	r.D = byte(v >> 8)
	r.E = byte(v)
}

func (r *Regs) SetHL(v uint16) {
	r.H = byte(v >> 8)
	r.L = byte(v)
}
