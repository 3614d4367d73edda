package cpu

import "fmt"

// Opcode describes one entry of the instruction table. Base is the cost
// in machine cycles of the taken path, Alt the cost of the not-taken
// path; for unconditional instructions the two are equal. Entries in
// the CB space carry the cost of the operation itself, the prefix byte
// bills its own cycle when it executes.
type Opcode struct {
	Prefixed bool
	Raw      byte
	Base     int
	Alt      int
	Mnemonic string
}

// Bit-group views of the raw byte, following the classic
// x/y/z/p/q decomposition of the instruction encoding.
func (o Opcode) X() byte { return o.Raw >> 6 }
func (o Opcode) Y() byte { return o.Raw >> 3 & 0x07 }
func (o Opcode) Z() byte { return o.Raw & 0x07 }
func (o Opcode) P() byte { return o.Raw >> 4 & 0x03 }
func (o Opcode) Q() byte { return o.Raw >> 3 & 0x01 }

func (o Opcode) String() string {
	if o.Prefixed {
		return fmt.Sprintf("CB %02X %s", o.Raw, o.Mnemonic)
	}
	return fmt.Sprintf("%02X %s", o.Raw, o.Mnemonic)
}

// Operand name tables indexed by the y/z/p groups.
var (
	rNames   = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	rpNames  = [4]string{"BC", "DE", "HL", "SP"}
	rp2Names = [4]string{"BC", "DE", "HL", "AF"}
	ccNames  = [4]string{"NZ", "Z", "NC", "C"}
	aluNames = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
	rotNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
)

// Decode looks up the table entry for a raw byte in either the primary
// or the CB space. It is a pure function of its arguments. The second
// result is false for the eleven primary bytes with no assigned
// instruction.
func Decode(prefixed bool, raw byte) (Opcode, bool) {
	op := Opcode{Prefixed: prefixed, Raw: raw}
	var ok bool
	if prefixed {
		op.Mnemonic, op.Base, ok = decodePrefixed(raw)
	} else {
		op.Mnemonic, op.Base, op.Alt, ok = decodePrimary(raw)
	}
	if prefixed {
		op.Alt = op.Base
	}
	if !ok {
		return Opcode{}, false
	}
	return op, true
}

func decodePrefixed(raw byte) (mn string, cycles int, ok bool) {
	x := raw >> 6
	y := raw >> 3 & 0x07
	z := raw & 0x07
	switch x {
	case 0:
		mn = fmt.Sprintf("%s %s", rotNames[y], rNames[z])
		cycles = 1
		if z == 6 {
			cycles = 3
		}
	case 1:
		mn = fmt.Sprintf("BIT %d,%s", y, rNames[z])
		cycles = 1
		if z == 6 {
			cycles = 2
		}
	case 2:
		mn = fmt.Sprintf("RES %d,%s", y, rNames[z])
		cycles = 1
		if z == 6 {
			cycles = 3
		}
	case 3:
		mn = fmt.Sprintf("SET %d,%s", y, rNames[z])
		cycles = 1
		if z == 6 {
			cycles = 3
		}
	}
	return mn, cycles, true
}

func decodePrimary(raw byte) (mn string, base, alt int, ok bool) {
	x := raw >> 6
	y := raw >> 3 & 0x07
	z := raw & 0x07
	p := y >> 1
	q := y & 1

	// uniform instructions (unconditional): alt mirrors base
	uni := func(m string, c int) (string, int, int, bool) { return m, c, c, true }

	switch x {
	case 0:
		switch z {
		case 0:
			switch y {
			case 0:
				return uni("NOP", 1)
			case 1:
				return uni("LD (a16),SP", 5)
			case 2:
				return uni("STOP", 1)
			case 3:
				return uni("JR r8", 3)
			default: // 4..7
				return fmt.Sprintf("JR %s,r8", ccNames[y-4]), 3, 2, true
			}
		case 1:
			if q == 0 {
				return uni(fmt.Sprintf("LD %s,d16", rpNames[p]), 3)
			}
			return uni(fmt.Sprintf("ADD HL,%s", rpNames[p]), 2)
		case 2:
			tgt := [4]string{"(BC)", "(DE)", "(HL+)", "(HL-)"}[p]
			if q == 0 {
				return uni(fmt.Sprintf("LD %s,A", tgt), 2)
			}
			return uni(fmt.Sprintf("LD A,%s", tgt), 2)
		case 3:
			if q == 0 {
				return uni(fmt.Sprintf("INC %s", rpNames[p]), 2)
			}
			return uni(fmt.Sprintf("DEC %s", rpNames[p]), 2)
		case 4:
			c := 1
			if y == 6 {
				c = 3
			}
			return uni(fmt.Sprintf("INC %s", rNames[y]), c)
		case 5:
			c := 1
			if y == 6 {
				c = 3
			}
			return uni(fmt.Sprintf("DEC %s", rNames[y]), c)
		case 6:
			c := 2
			if y == 6 {
				c = 3
			}
			return uni(fmt.Sprintf("LD %s,d8", rNames[y]), c)
		default: // z == 7
			return uni([8]string{"RLCA", "RRCA", "RLA", "RRA", "DAA", "CPL", "SCF", "CCF"}[y], 1)
		}

	case 1:
		if y == 6 && z == 6 {
			return uni("HALT", 1)
		}
		c := 1
		if y == 6 || z == 6 {
			c = 2
		}
		return uni(fmt.Sprintf("LD %s,%s", rNames[y], rNames[z]), c)

	case 2:
		c := 1
		if z == 6 {
			c = 2
		}
		return uni(aluNames[y]+rNames[z], c)

	default: // x == 3
		switch z {
		case 0:
			switch y {
			case 0, 1, 2, 3:
				return fmt.Sprintf("RET %s", ccNames[y]), 5, 2, true
			case 4:
				return uni("LDH (a8),A", 3)
			case 5:
				return uni("ADD SP,r8", 4)
			case 6:
				return uni("LDH A,(a8)", 3)
			default:
				return uni("LD HL,SP+r8", 3)
			}
		case 1:
			if q == 0 {
				return uni(fmt.Sprintf("POP %s", rp2Names[p]), 3)
			}
			switch p {
			case 0:
				return uni("RET", 4)
			case 1:
				return uni("RETI", 4)
			case 2:
				return uni("JP HL", 1)
			default:
				return uni("LD SP,HL", 2)
			}
		case 2:
			switch y {
			case 0, 1, 2, 3:
				return fmt.Sprintf("JP %s,a16", ccNames[y]), 4, 3, true
			case 4:
				return uni("LD (C),A", 2)
			case 5:
				return uni("LD (a16),A", 4)
			case 6:
				return uni("LD A,(C)", 2)
			default:
				return uni("LD A,(a16)", 4)
			}
		case 3:
			switch y {
			case 0:
				return uni("JP a16", 4)
			case 1:
				return uni("PREFIX CB", 1)
			case 6:
				return uni("DI", 1)
			case 7:
				return uni("EI", 1)
			default: // 0xD3 0xDB 0xE3 0xEB
				return "", 0, 0, false
			}
		case 4:
			if y < 4 {
				return fmt.Sprintf("CALL %s,a16", ccNames[y]), 6, 3, true
			}
			// 0xE4 0xEC 0xF4 0xFC
			return "", 0, 0, false
		case 5:
			if q == 0 {
				return uni(fmt.Sprintf("PUSH %s", rp2Names[p]), 4)
			}
			if p == 0 {
				return uni("CALL a16", 6)
			}
			// 0xDD 0xED 0xFD
			return "", 0, 0, false
		case 6:
			return uni(aluNames[y]+"d8", 2)
		default: // z == 7
			return uni(fmt.Sprintf("RST %02XH", y*8), 4)
		}
	}
}
