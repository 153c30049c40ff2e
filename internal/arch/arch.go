// Package arch contains the types shared between the disassembler and the architecture
// specific decoders. It acts as a bridge so that decoders only depend on a memory view.
package arch

// Memory gives byte level read access to the address space of the target.
type Memory interface {
	// ReadByte reads a byte from the memory at the given address.
	ReadByte(address uint16) byte
	// ReadWord reads the bytes at address and address+1 and returns them as
	// (first << 8) | second.
	ReadWord(address uint16) uint16
}

// Instruction is a decoded instruction.
type Instruction struct {
	Text   string // mnemonic and operands
	Length int    // number of bytes consumed
	Bytes  []byte // the consumed bytes
}

// Decoder decodes single instructions.
type Decoder interface {
	// Decode decodes the instruction at address, first is the byte at address.
	Decode(address uint16, first byte) Instruction
}
