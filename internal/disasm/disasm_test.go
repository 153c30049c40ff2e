package disasm

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80ios/internal/bus"
	"github.com/retroenv/z80ios/internal/channel"
	"github.com/retroenv/z80ios/internal/sim"
)

var program = []byte{
	0x21, 0x34, 0x12, // LD HL,1234
	0xDD, 0x7E, 0x05, // LD A,(IX+05)
	0xCB, 0x47, // BIT 0,A
	0xED, 0xB0, // LDIR
	0x00, // NOP
	0xC3, 0x00, 0x80, // JP 8000
}

func newTestDisasm(t *testing.T, org uint16) (*Disasm, *sim.Target) {
	t.Helper()
	logger := log.NewTestLogger(t)

	target := sim.New()
	target.Load(org, program)
	ch := channel.New(logger, bus.New(target))
	ch.Reset()
	return New(logger, ch), target
}

func TestDisassembleOne(t *testing.T) {
	dis, target := newTestDisasm(t, 0x8000)

	text, next := dis.DisassembleOne(0x8000)
	assert.Equal(t, "LD HL,1234", text)
	assert.Equal(t, uint16(0x8003), next)

	text, next = dis.DisassembleOne(next)
	assert.Equal(t, "LD A,(IX+05)", text)
	assert.Equal(t, uint16(0x8006), next)

	assert.Empty(t, target.Faults())
	assert.Empty(t, target.Written())
}

func TestDisassemble(t *testing.T) {
	dis, _ := newTestDisasm(t, 0x8000)

	lines := dis.Disassemble(0x8000, 6)
	expected := []struct {
		address uint16
		text    string
	}{
		{0x8000, "LD HL,1234"},
		{0x8003, "LD A,(IX+05)"},
		{0x8006, "BIT 0,A"},
		{0x8008, "LDIR"},
		{0x800A, "NOP"},
		{0x800B, "JP 8000"},
	}

	assert.Len(t, lines, len(expected))
	for i, exp := range expected {
		assert.Equal(t, exp.address, lines[i].Address)
		assert.Equal(t, exp.text, lines[i].Instruction.Text)
	}
}

func TestDisassembleRange(t *testing.T) {
	dis, _ := newTestDisasm(t, 0x0100)

	lines := dis.DisassembleRange(0x0100, len(program))
	assert.Len(t, lines, 6)

	consumed := 0
	for _, line := range lines {
		consumed += line.Instruction.Length
	}
	assert.Equal(t, len(program), consumed)
}

func TestDisassembleWrapsAddress(t *testing.T) {
	dis, target := newTestDisasm(t, 0x0000)
	target.Load(0xFFFF, []byte{0x00})

	lines := dis.Disassemble(0xFFFF, 2)
	assert.Equal(t, uint16(0xFFFF), lines[0].Address)
	assert.Equal(t, uint16(0x0000), lines[1].Address)
	assert.Equal(t, "LD HL,1234", lines[1].Instruction.Text)
}
