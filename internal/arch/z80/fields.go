package z80

// Fields are the bit fields of an opcode byte in the layout xxyyyzzz.
type Fields struct {
	X byte
	Y byte
	Z byte
}

// Decompose splits an opcode into its bit fields.
func Decompose(opcode byte) Fields {
	return Fields{
		X: opcode >> 6,
		Y: (opcode >> 3) & 7,
		Z: opcode & 7,
	}
}

// P returns the register pair index, bits 5-4.
func (f Fields) P() byte {
	return f.Y >> 1
}

// Q returns bit 3.
func (f Fields) Q() byte {
	return f.Y & 1
}

// Prefix is the class of an instruction as determined by its first byte.
type Prefix int

// Prefix classes.
const (
	Unprefixed Prefix = iota
	PrefixCB
	PrefixED
	PrefixIndex // DD or FD
)

// Prefix bytes.
const (
	prefixCB = 0xCB
	prefixED = 0xED
	prefixIX = 0xDD
	prefixIY = 0xFD
)

// Classify returns the prefix class of the first byte of an instruction.
func Classify(b byte) Prefix {
	switch b {
	case prefixCB:
		return PrefixCB
	case prefixED:
		return PrefixED
	case prefixIX, prefixIY:
		return PrefixIndex
	default:
		return Unprefixed
	}
}

func (p Prefix) String() string {
	switch p {
	case PrefixCB:
		return "CB"
	case PrefixED:
		return "ED"
	case PrefixIndex:
		return "DD/FD"
	default:
		return "none"
	}
}
