package z80

import (
	"fmt"

	"github.com/retroenv/z80ios/internal/arch"
)

var _ arch.Decoder = (*Decoder)(nil)

// Instruction is a decoded Z80 instruction.
type Instruction = arch.Instruction

// Decoder decodes Z80 instructions from a memory view.
type Decoder struct {
	mem arch.Memory
}

// New returns a decoder that reads instruction bytes from mem.
func New(mem arch.Memory) *Decoder {
	return &Decoder{mem: mem}
}

// Decode decodes the instruction at address. first is the byte at address, which the
// caller has already read to find the instruction start. The returned instruction is
// between 1 and 4 bytes long.
func (d *Decoder) Decode(address uint16, first byte) Instruction {
	c := &cursor{
		mem:   d.mem,
		start: address,
		bytes: []byte{first},
	}

	var text string
	switch Classify(first) {
	case PrefixCB:
		text = decodeCB(c)
	case PrefixED:
		text = decodeED(c)
	case PrefixIndex:
		text = decodeIndex(c, first)
	default:
		o := &operands{c: c}
		text = o.decode(first)
	}

	return Instruction{
		Text:   text,
		Length: len(c.bytes),
		Bytes:  c.bytes,
	}
}

// cursor reads the bytes of one instruction and records them.
type cursor struct {
	mem   arch.Memory
	start uint16
	bytes []byte
}

func (c *cursor) address() uint16 {
	return c.start + uint16(len(c.bytes))
}

// peek returns the next byte without consuming it.
func (c *cursor) peek() byte {
	return c.mem.ReadByte(c.address())
}

func (c *cursor) next() byte {
	b := c.mem.ReadByte(c.address())
	c.bytes = append(c.bytes, b)
	return b
}

// word consumes a little endian 16 bit immediate. Memory.ReadWord returns the byte at
// the lower address in the high byte, the result is swapped back.
func (c *cursor) word() uint16 {
	w := c.mem.ReadWord(c.address())
	w = w<<8 | w>>8
	c.bytes = append(c.bytes, byte(w), byte(w>>8))
	return w
}

func (c *cursor) imm8() string {
	return fmt.Sprintf("%02X", c.next())
}

func (c *cursor) imm16() string {
	return fmt.Sprintf("%04X", c.word())
}

// operands renders register operands, with HL replaced by an index register
// when index is set.
type operands struct {
	c     *cursor
	index string
}

func (o *operands) hl() string {
	if o.index != "" {
		return o.index
	}
	return "HL"
}

// indirect returns (HL) or (IX+d), reading the displacement.
func (o *operands) indirect() string {
	if o.index == "" {
		return "(HL)"
	}
	return displaced(o.index, o.c.next())
}

func (o *operands) r(i byte) string {
	switch {
	case i == 6:
		return o.indirect()
	case o.index != "" && (i == 4 || i == 5):
		return o.index + register8[i]
	default:
		return register8[i]
	}
}

func (o *operands) rp(p byte) string {
	if p == 2 {
		return o.hl()
	}
	return registerPair16[p]
}

func (o *operands) rp2(p byte) string {
	if p == 2 {
		return o.hl()
	}
	return registerPair16Alt[p]
}

func displaced(index string, d byte) string {
	offset := int(int8(d))
	if offset < 0 {
		return fmt.Sprintf("(%s-%02X)", index, -offset)
	}
	return fmt.Sprintf("(%s+%02X)", index, offset)
}

func (o *operands) decode(opcode byte) string {
	f := Decompose(opcode)
	switch f.X {
	case 0:
		return o.decodeX0(f)
	case 1:
		return o.decodeX1(f)
	case 2:
		return aluOp[f.Y] + o.r(f.Z)
	default:
		return o.decodeX3(f)
	}
}

func (o *operands) decodeX0(f Fields) string {
	c := o.c
	switch f.Z {
	case 0:
		switch f.Y {
		case 0:
			return "NOP"
		case 1:
			return "EX AF,AF'"
		case 2:
			return "DJNZ " + c.imm8()
		case 3:
			return "JR " + c.imm8()
		default:
			return "JR " + condition[f.Y-4] + "," + c.imm8()
		}

	case 1:
		if f.Q() == 0 {
			return "LD " + o.rp(f.P()) + "," + c.imm16()
		}
		return "ADD " + o.hl() + "," + o.rp(f.P())

	case 2:
		return o.indirectLoad(f)

	case 3:
		if f.Q() == 0 {
			return "INC " + o.rp(f.P())
		}
		return "DEC " + o.rp(f.P())

	case 4:
		return "INC " + o.r(f.Y)

	case 5:
		return "DEC " + o.r(f.Y)

	case 6:
		dst := o.r(f.Y) // displacement precedes the immediate
		return "LD " + dst + "," + c.imm8()

	default:
		return accumulatorFlagOp[f.Y]
	}
}

func (o *operands) indirectLoad(f Fields) string {
	c := o.c
	if f.Q() == 0 {
		switch f.P() {
		case 0:
			return "LD (BC),A"
		case 1:
			return "LD (DE),A"
		case 2:
			return "LD (" + c.imm16() + ")," + o.hl()
		default:
			return "LD (" + c.imm16() + "),A"
		}
	}

	switch f.P() {
	case 0:
		return "LD A,(BC)"
	case 1:
		return "LD A,(DE)"
	case 2:
		return "LD " + o.hl() + ",(" + c.imm16() + ")"
	default:
		return "LD A,(" + c.imm16() + ")"
	}
}

func (o *operands) decodeX1(f Fields) string {
	switch {
	case f.Y == 6 && f.Z == 6:
		return "HALT"
	case f.Y == 6:
		return "LD " + o.indirect() + "," + register8[f.Z]
	case f.Z == 6:
		return "LD " + register8[f.Y] + "," + o.indirect()
	default:
		return "LD " + o.r(f.Y) + "," + o.r(f.Z)
	}
}

func (o *operands) decodeX3(f Fields) string {
	c := o.c
	switch f.Z {
	case 0:
		return "RET " + condition[f.Y]

	case 1:
		if f.Q() == 0 {
			return "POP " + o.rp2(f.P())
		}
		switch f.P() {
		case 0:
			return "RET"
		case 1:
			return "EXX"
		case 2:
			return "JP (" + o.hl() + ")"
		default:
			return "LD SP," + o.hl()
		}

	case 2:
		return "JP " + condition[f.Y] + "," + c.imm16()

	case 3:
		switch f.Y {
		case 0:
			return "JP " + c.imm16()
		case 2:
			return "OUT (" + c.imm8() + "),A"
		case 3:
			return "IN A,(" + c.imm8() + ")"
		case 4:
			return "EX (SP)," + o.hl()
		case 5:
			return "EX DE,HL"
		case 6:
			return "DI"
		case 7:
			return "EI"
		default: // CB prefix, decoded by the caller
			return "NOP"
		}

	case 4:
		return "CALL " + condition[f.Y] + "," + c.imm16()

	case 5:
		if f.Q() == 0 {
			return "PUSH " + o.rp2(f.P())
		}
		if f.P() == 0 {
			return "CALL " + c.imm16()
		}
		return "NOP" // DD, ED and FD prefixes, decoded by the caller

	case 6:
		return aluOp[f.Y] + c.imm8()

	default:
		return fmt.Sprintf("RST %02X", f.Y*8)
	}
}

func decodeCB(c *cursor) string {
	f := Decompose(c.next())
	if f.X == 0 {
		return rotateOp[f.Y] + " " + register8[f.Z]
	}
	return fmt.Sprintf("%s %d,%s", bitOp[f.X], f.Y, register8[f.Z])
}

func decodeED(c *cursor) string {
	f := Decompose(c.next())
	switch f.X {
	case 1:
		return decodeEDX1(c, f)
	case 2:
		if f.Z < 4 && f.Y >= 4 {
			return blockOp[f.Y-4][f.Z]
		}
	}
	return "NOP"
}

func decodeEDX1(c *cursor, f Fields) string {
	switch f.Z {
	case 0:
		if f.Y == 6 {
			return "IN (C)"
		}
		return "IN " + register8[f.Y] + ",(C)"

	case 1:
		if f.Y == 6 {
			return "OUT (C),0"
		}
		return "OUT (C)," + register8[f.Y]

	case 2:
		if f.Q() == 0 {
			return "SBC HL," + registerPair16[f.P()]
		}
		return "ADC HL," + registerPair16[f.P()]

	case 3:
		if f.Q() == 0 {
			return "LD (" + c.imm16() + ")," + registerPair16[f.P()]
		}
		return "LD " + registerPair16[f.P()] + ",(" + c.imm16() + ")"

	case 4:
		return "NEG"

	case 5:
		if f.Y == 1 {
			return "RETI"
		}
		return "RETN"

	case 6:
		return "IM " + interruptMode[f.Y]

	default:
		return edSpecial[f.Y]
	}
}

func decodeIndex(c *cursor, prefix byte) string {
	index := "IX"
	if prefix == prefixIY {
		index = "IY"
	}

	switch c.peek() {
	case prefixIX, prefixED, prefixIY:
		// the prefix has no effect, the following instruction is decoded on its own
		return "NOP"

	case prefixCB:
		c.next()
		operand := displaced(index, c.next())
		return decodeIndexCB(Decompose(c.next()), operand)
	}

	o := &operands{c: c, index: index}
	return o.decode(c.next())
}

// decodeIndexCB decodes DD CB d op and FD CB d op. For z other than 6 the result of
// the rotate, reset or set is also copied to a register.
func decodeIndexCB(f Fields, operand string) string {
	var op string
	switch f.X {
	case 0:
		op = rotateOp[f.Y] + " " + operand
	case 1:
		return fmt.Sprintf("BIT %d,%s", f.Y, operand)
	default:
		op = fmt.Sprintf("%s %d,%s", bitOp[f.X], f.Y, operand)
	}

	if f.Z == 6 {
		return op
	}
	return "LD " + register8[f.Z] + "," + op
}
