package cpu

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/log"

	"github.com/retrosim/dmgcore/internal/bus"
)

// CPU is the LR35902 execution engine. Step drives one instruction at a
// time; the caller owns the loop and feeds the returned machine-cycle
// counts to the rest of the system.
type CPU struct {
	Regs Regs

	bus    *bus.Bus
	halted bool
	ime    bool

	// prefixLatch is armed by the CB prefix opcode and consumed by the
	// very next fetch, switching it to the secondary table.
	prefixLatch bool

	trace *log.Logger
}

func New(b *bus.Bus) *CPU {
	return &CPU{
		bus:  b,
		Regs: Regs{SP: 0xFFFE},
	}
}

// SetTrace enables per-instruction debug logging through the given
// logger. Pass nil to disable.
func (c *CPU) SetTrace(logger *log.Logger) { c.trace = logger }

func (c *CPU) Halted() bool { return c.halted }
func (c *CPU) IME() bool    { return c.ime }

// DecodeError reports a fetched byte with no table entry. It carries
// the register snapshot from before the fetch so callers can present
// the faulting address.
type DecodeError struct {
	Regs     Regs
	Prefixed bool
	Opcode   byte
}

func (e *DecodeError) Error() string {
	space := "primary"
	if e.Prefixed {
		space = "CB"
	}
	return fmt.Sprintf("no instruction for %s-space opcode 0x%02X at 0x%04X", space, e.Opcode, e.Regs.PC)
}

// Dump renders the full register state for a terminal diagnostic.
func (e *DecodeError) Dump() string {
	r := e.Regs
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", e.Error())
	fmt.Fprintf(&sb, "  AF=%04X BC=%04X DE=%04X HL=%04X\n", r.AF(), r.BC(), r.DE(), r.HL())
	fmt.Fprintf(&sb, "  PC=%04X SP=%04X Z=%t N=%t H=%t C=%t",
		r.PC, r.SP, r.Flag(FlagZ), r.Flag(FlagN), r.Flag(FlagH), r.Flag(FlagC))
	return sb.String()
}

// Step executes one instruction and returns its cost in machine
// cycles. In the Halted state nothing is fetched and the cost is one
// cycle. A fetch that lands on an unmapped encoding returns a
// *DecodeError; machine state past the fetch is untouched.
func (c *CPU) Step() (int, error) {
	if c.halted {
		return 1, nil
	}

	snapshot := c.Regs
	raw := c.fetch8()
	prefixed := c.prefixLatch
	c.prefixLatch = false

	op, ok := Decode(prefixed, raw)
	if !ok {
		return 0, &DecodeError{Regs: snapshot, Prefixed: prefixed, Opcode: raw}
	}

	var cycles int
	if prefixed {
		cycles = c.execPrefixed(op)
	} else {
		cycles = c.execPrimary(op)
	}

	if c.trace != nil {
		c.trace.Debug("step",
			log.Hex("pc", snapshot.PC),
			log.String("op", op.String()),
			log.Int("cycles", cycles))
	}
	return cycles, nil
}

func (c *CPU) fetch8() byte {
	v := c.bus.Read(c.Regs.PC)
	c.Regs.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return hi<<8 | lo
}

func (c *CPU) push16(v uint16) {
	c.Regs.SP -= 2
	c.bus.WriteWord(c.Regs.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.bus.ReadWord(c.Regs.SP)
	c.Regs.SP += 2
	return v
}

// reg8 reads the operand selected by a 3-bit register index; index 6 is
// the memory cell at HL.
func (c *CPU) reg8(idx byte) byte {
	r := &c.Regs
	switch idx {
	case 0:
		return r.B
	case 1:
		return r.C
	case 2:
		return r.D
	case 3:
		return r.E
	case 4:
		return r.H
	case 5:
		return r.L
	case 6:
		return c.bus.Read(r.HL())
	case 7:
		return r.A
	}
	panic("impossible register index")
}

func (c *CPU) setReg8(idx, v byte) {
	r := &c.Regs
	switch idx {
	case 0:
		r.B = v
	case 1:
		r.C = v
	case 2:
		r.D = v
	case 3:
		r.E = v
	case 4:
		r.H = v
	case 5:
		r.L = v
	case 6:
		c.bus.Write(r.HL(), v)
	case 7:
		r.A = v
	default:
		panic("impossible register index")
	}
}

// rp is the BC/DE/HL/SP pair group, rp2 the BC/DE/HL/AF group used by
// PUSH and POP.
func (c *CPU) rp(p byte) uint16 {
	r := &c.Regs
	switch p {
	case 0:
		return r.BC()
	case 1:
		return r.DE()
	case 2:
		return r.HL()
	case 3:
		return r.SP
	}
	panic("impossible rp index")
}

func (c *CPU) setRP(p byte, v uint16) {
	r := &c.Regs
	switch p {
	case 0:
		r.SetBC(v)
	case 1:
		r.SetDE(v)
	case 2:
		r.SetHL(v)
	case 3:
		r.SP = v
	default:
		panic("impossible rp index")
	}
}

func (c *CPU) rp2(p byte) uint16 {
	r := &c.Regs
	switch p {
	case 0:
		return r.BC()
	case 1:
		return r.DE()
	case 2:
		return r.HL()
	case 3:
		return r.AF()
	}
	panic("impossible rp2 index")
}

func (c *CPU) setRP2(p byte, v uint16) {
	r := &c.Regs
	switch p {
	case 0:
		r.SetBC(v)
	case 1:
		r.SetDE(v)
	case 2:
		r.SetHL(v)
	case 3:
		r.SetAF(v)
	default:
		panic("impossible rp2 index")
	}
}

// indAddr resolves the (BC)/(DE)/(HL+)/(HL-) indirection group; the HL
// variants post-adjust the pair.
func (c *CPU) indAddr(p byte) uint16 {
	r := &c.Regs
	switch p {
	case 0:
		return r.BC()
	case 1:
		return r.DE()
	case 2:
		hl := r.HL()
		r.SetHL(hl + 1)
		return hl
	case 3:
		hl := r.HL()
		r.SetHL(hl - 1)
		return hl
	}
	panic("impossible indirect index")
}

func (c *CPU) cond(idx byte) bool {
	r := &c.Regs
	switch idx {
	case 0:
		return !r.Flag(FlagZ)
	case 1:
		return r.Flag(FlagZ)
	case 2:
		return !r.Flag(FlagC)
	case 3:
		return r.Flag(FlagC)
	}
	panic("impossible condition index")
}

func (c *CPU) execPrimary(op Opcode) int {
	x, y, z := op.X(), op.Y(), op.Z()
	p, q := op.P(), op.Q()
	r := &c.Regs

	switch x {
	case 0:
		switch z {
		case 0:
			switch y {
			case 0: // NOP
			case 1: // LD (a16),SP
				c.bus.WriteWord(c.fetch16(), r.SP)
			case 2: // STOP consumes its padding byte
				c.fetch8()
			case 3: // JR r8
				d := int8(c.fetch8())
				r.PC = uint16(int32(r.PC) + int32(d))
			default: // JR cc,r8
				d := int8(c.fetch8())
				if !c.cond(y - 4) {
					return op.Alt
				}
				r.PC = uint16(int32(r.PC) + int32(d))
			}
		case 1:
			if q == 0 { // LD rp,d16
				c.setRP(p, c.fetch16())
			} else { // ADD HL,rp
				c.addHL(c.rp(p))
			}
		case 2: // indirect loads through BC/DE/HL+/HL-
			addr := c.indAddr(p)
			if q == 0 {
				c.bus.Write(addr, r.A)
			} else {
				r.A = c.bus.Read(addr)
			}
		case 3: // INC/DEC rp, no flags
			if q == 0 {
				c.setRP(p, c.rp(p)+1)
			} else {
				c.setRP(p, c.rp(p)-1)
			}
		case 4: // INC r
			v := c.reg8(y) + 1
			c.setReg8(y, v)
			r.SetFlag(FlagZ, v == 0)
			r.SetFlag(FlagN, false)
			r.SetFlag(FlagH, v&0x0F == 0)
		case 5: // DEC r
			v := c.reg8(y) - 1
			c.setReg8(y, v)
			r.SetFlag(FlagZ, v == 0)
			r.SetFlag(FlagN, true)
			r.SetFlag(FlagH, v&0x0F == 0x0F)
		case 6: // LD r,d8
			c.setReg8(y, c.fetch8())
		default: // z == 7: accumulator/flag ops
			switch y {
			case 0, 1, 2, 3: // RLCA RRCA RLA RRA: like the CB rotates but Z cleared
				r.A = c.rotate(y, r.A)
				r.SetFlag(FlagZ, false)
			case 4:
				c.daa()
			case 5: // CPL
				r.A = ^r.A
				r.SetFlag(FlagN, true)
				r.SetFlag(FlagH, true)
			case 6: // SCF
				r.SetFlag(FlagN, false)
				r.SetFlag(FlagH, false)
				r.SetFlag(FlagC, true)
			default: // CCF
				r.SetFlag(FlagN, false)
				r.SetFlag(FlagH, false)
				r.SetFlag(FlagC, !r.Flag(FlagC))
			}
		}

	case 1:
		if y == 6 && z == 6 { // HALT occupies the LD (HL),(HL) slot
			c.halted = true
		} else {
			c.setReg8(y, c.reg8(z))
		}

	case 2:
		c.alu(y, c.reg8(z))

	default: // x == 3
		switch z {
		case 0:
			switch y {
			case 0, 1, 2, 3: // RET cc
				if !c.cond(y) {
					return op.Alt
				}
				r.PC = c.pop16()
			case 4: // LDH (a8),A
				c.bus.Write(0xFF00+uint16(c.fetch8()), r.A)
			case 5: // ADD SP,r8
				r.SP = c.addSPr8()
			case 6: // LDH A,(a8)
				r.A = c.bus.Read(0xFF00 + uint16(c.fetch8()))
			default: // LD HL,SP+r8
				r.SetHL(c.addSPr8())
			}
		case 1:
			if q == 0 { // POP rp2
				c.setRP2(p, c.pop16())
			} else {
				switch p {
				case 0: // RET
					r.PC = c.pop16()
				case 1: // RETI
					r.PC = c.pop16()
					c.ime = true
				case 2: // JP HL
					r.PC = r.HL()
				default: // LD SP,HL
					r.SP = r.HL()
				}
			}
		case 2:
			switch y {
			case 0, 1, 2, 3: // JP cc,a16
				addr := c.fetch16()
				if !c.cond(y) {
					return op.Alt
				}
				r.PC = addr
			case 4: // LD (C),A
				c.bus.Write(0xFF00+uint16(r.C), r.A)
			case 5: // LD (a16),A
				c.bus.Write(c.fetch16(), r.A)
			case 6: // LD A,(C)
				r.A = c.bus.Read(0xFF00 + uint16(r.C))
			default: // LD A,(a16)
				r.A = c.bus.Read(c.fetch16())
			}
		case 3:
			switch y {
			case 0: // JP a16
				r.PC = c.fetch16()
			case 1: // CB prefix: arm the latch for the next fetch
				c.prefixLatch = true
			case 6: // DI
				c.ime = false
			default: // EI; unmapped y values never reach execution
				c.ime = true
			}
		case 4: // CALL cc,a16
			addr := c.fetch16()
			if !c.cond(y) {
				return op.Alt
			}
			c.push16(r.PC)
			r.PC = addr
		case 5:
			if q == 0 { // PUSH rp2
				c.push16(c.rp2(p))
			} else { // CALL a16
				addr := c.fetch16()
				c.push16(r.PC)
				r.PC = addr
			}
		case 6: // ALU A,d8
			c.alu(y, c.fetch8())
		default: // RST
			c.push16(r.PC)
			r.PC = uint16(y) * 8
		}
	}
	return op.Base
}

func (c *CPU) execPrefixed(op Opcode) int {
	x, y, z := op.X(), op.Y(), op.Z()
	switch x {
	case 0: // rotate/shift/swap
		c.setReg8(z, c.rotate(y, c.reg8(z)))
	case 1: // BIT y,r
		v := c.reg8(z)
		c.Regs.SetFlag(FlagZ, v&(1<<y) == 0)
		c.Regs.SetFlag(FlagN, false)
		c.Regs.SetFlag(FlagH, true)
	case 2: // RES y,r
		c.setReg8(z, c.reg8(z)&^(1<<y))
	default: // SET y,r
		c.setReg8(z, c.reg8(z)|1<<y)
	}
	return op.Base
}

func (c *CPU) alu(y, v byte) {
	switch y {
	case 0:
		c.aluAdd(v, false)
	case 1:
		c.aluAdd(v, c.Regs.Flag(FlagC))
	case 2:
		c.aluSub(v, false)
	case 3:
		c.aluSub(v, c.Regs.Flag(FlagC))
	case 4:
		c.aluAnd(v)
	case 5:
		c.aluXor(v)
	case 6:
		c.aluOr(v)
	default:
		c.aluCp(v)
	}
}

func (c *CPU) aluAdd(v byte, carry bool) {
	r := &c.Regs
	var cy byte
	if carry {
		cy = 1
	}
	sum := uint16(r.A) + uint16(v) + uint16(cy)
	half := r.A&0x0F+v&0x0F+cy > 0x0F
	r.A = byte(sum)
	r.SetFlag(FlagZ, r.A == 0)
	r.SetFlag(FlagN, false)
	r.SetFlag(FlagH, half)
	r.SetFlag(FlagC, sum > 0xFF)
}

func (c *CPU) aluSub(v byte, carry bool) {
	r := &c.Regs
	var cy byte
	if carry {
		cy = 1
	}
	diff := int16(r.A) - int16(v) - int16(cy)
	half := int16(r.A&0x0F)-int16(v&0x0F)-int16(cy) < 0
	r.A = byte(diff)
	r.SetFlag(FlagZ, r.A == 0)
	r.SetFlag(FlagN, true)
	r.SetFlag(FlagH, half)
	r.SetFlag(FlagC, diff < 0)
}

func (c *CPU) aluAnd(v byte) {
	r := &c.Regs
	r.A &= v
	r.SetFlag(FlagZ, r.A == 0)
	r.SetFlag(FlagN, false)
	r.SetFlag(FlagH, true)
	r.SetFlag(FlagC, false)
}

func (c *CPU) aluXor(v byte) {
	r := &c.Regs
	r.A ^= v
	r.SetFlag(FlagZ, r.A == 0)
	r.SetFlag(FlagN, false)
	r.SetFlag(FlagH, false)
	r.SetFlag(FlagC, false)
}

func (c *CPU) aluOr(v byte) {
	r := &c.Regs
	r.A |= v
	r.SetFlag(FlagZ, r.A == 0)
	r.SetFlag(FlagN, false)
	r.SetFlag(FlagH, false)
	r.SetFlag(FlagC, false)
}

// aluCp is subtraction for flags only.
func (c *CPU) aluCp(v byte) {
	a := c.Regs.A
	c.aluSub(v, false)
	c.Regs.A = a
}

func (c *CPU) addHL(v uint16) {
	r := &c.Regs
	hl := r.HL()
	sum := uint32(hl) + uint32(v)
	r.SetFlag(FlagN, false)
	r.SetFlag(FlagH, hl&0x0FFF+v&0x0FFF > 0x0FFF)
	r.SetFlag(FlagC, sum > 0xFFFF)
	r.SetHL(uint16(sum))
}

// addSPr8 serves ADD SP,r8 and LD HL,SP+r8: signed displacement, flags
// from the unsigned low-byte carries.
func (c *CPU) addSPr8() uint16 {
	r := &c.Regs
	d := c.fetch8()
	res := uint16(int32(r.SP) + int32(int8(d)))
	r.SetFlag(FlagZ, false)
	r.SetFlag(FlagN, false)
	r.SetFlag(FlagH, r.SP&0x0F+uint16(d&0x0F) > 0x0F)
	r.SetFlag(FlagC, r.SP&0xFF+uint16(d) > 0xFF)
	return res
}

// rotate implements the eight CB rotate/shift operations selected by y.
// The RLCA family reuses it and clears Z afterwards.
func (c *CPU) rotate(y, v byte) byte {
	r := &c.Regs
	var res byte
	var carry bool
	switch y {
	case 0: // RLC
		carry = v&0x80 != 0
		res = v<<1 | v>>7
	case 1: // RRC
		carry = v&0x01 != 0
		res = v>>1 | v<<7
	case 2: // RL
		carry = v&0x80 != 0
		res = v << 1
		if r.Flag(FlagC) {
			res |= 0x01
		}
	case 3: // RR
		carry = v&0x01 != 0
		res = v >> 1
		if r.Flag(FlagC) {
			res |= 0x80
		}
	case 4: // SLA
		carry = v&0x80 != 0
		res = v << 1
	case 5: // SRA keeps the sign bit
		carry = v&0x01 != 0
		res = v>>1 | v&0x80
	case 6: // SWAP
		res = v<<4 | v>>4
	default: // SRL
		carry = v&0x01 != 0
		res = v >> 1
	}
	r.SetFlag(FlagZ, res == 0)
	r.SetFlag(FlagN, false)
	r.SetFlag(FlagH, false)
	r.SetFlag(FlagC, carry)
	return res
}

func (c *CPU) daa() {
	r := &c.Regs
	a := r.A
	if !r.Flag(FlagN) {
		if r.Flag(FlagC) || a > 0x99 {
			a += 0x60
			r.SetFlag(FlagC, true)
		}
		if r.Flag(FlagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if r.Flag(FlagC) {
			a -= 0x60
		}
		if r.Flag(FlagH) {
			a -= 0x06
		}
	}
	r.A = a
	r.SetFlag(FlagZ, a == 0)
	r.SetFlag(FlagH, false)
}
