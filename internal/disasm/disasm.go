// Package disasm implements the disassembler that reads instructions from the target
// memory and renders them as text.
package disasm

import (
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80ios/internal/arch"
	"github.com/retroenv/z80ios/internal/arch/z80"
)

// Line is a single disassembled instruction.
type Line struct {
	Address     uint16
	Instruction arch.Instruction
}

// Disasm implements a disassembler.
type Disasm struct {
	logger  *log.Logger
	mem     arch.Memory
	decoder arch.Decoder
}

// New creates a new disassembler that reads the target memory through mem.
func New(logger *log.Logger, mem arch.Memory) *Disasm {
	return &Disasm{
		logger:  logger,
		mem:     mem,
		decoder: z80.New(mem),
	}
}

// DisassembleOne decodes the instruction at address and returns its text and the
// address of the following instruction.
func (dis *Disasm) DisassembleOne(address uint16) (string, uint16) {
	line := dis.decode(address)
	return line.Instruction.Text, address + uint16(line.Instruction.Length)
}

// Disassemble decodes count consecutive instructions starting at address.
// The address wraps around at the end of the address space.
func (dis *Disasm) Disassemble(address uint16, count int) []Line {
	lines := make([]Line, 0, count)
	for range count {
		line := dis.decode(address)
		lines = append(lines, line)
		address += uint16(line.Instruction.Length)
	}
	return lines
}

// DisassembleRange decodes instructions starting at address until at least size bytes
// have been consumed.
func (dis *Disasm) DisassembleRange(address uint16, size int) []Line {
	var lines []Line
	for consumed := 0; consumed < size; {
		line := dis.decode(address)
		lines = append(lines, line)
		consumed += line.Instruction.Length
		address += uint16(line.Instruction.Length)
	}
	return lines
}

func (dis *Disasm) decode(address uint16) Line {
	first := dis.mem.ReadByte(address)
	ins := dis.decoder.Decode(address, first)

	dis.logger.Debug("Decoded instruction",
		log.Hex("address", address),
		log.String("prefix", z80.Classify(first).String()),
		log.String("text", ins.Text))

	return Line{
		Address:     address,
		Instruction: ins,
	}
}
