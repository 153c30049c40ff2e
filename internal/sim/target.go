// Package sim provides a clock-accurate model of the Z80 board that the monitor controls:
// a Z80 executing the memory access instructions at T-state granularity, 64K of RAM with its
// CE2 line, and a DS3231 register file behind an I2C style interface.
package sim

import (
	"fmt"

	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/z80ios/internal/bus"
)

var _ bus.Pins = (*Target)(nil)

const (
	minResetClocks = 3
	resetRecovery  = 2
	floatingBus    = 0xFF
)

type cycleKind int

const (
	cycleIdle cycleKind = iota
	cycleFetch
	cycleRead
	cycleWrite
	cycleInternal
)

var cycleLength = map[cycleKind]int{
	cycleFetch:    4,
	cycleRead:     3,
	cycleWrite:    3,
	cycleInternal: 2,
}

// machineCycle is one bus cycle of the instruction in flight. done is called when the
// data is latched, at T3 of a read or write cycle or at the end of an internal cycle.
type machineCycle struct {
	kind    cycleKind
	address func() uint16
	done    func(data byte)
}

// Target is a Z80 with RAM that is driven through bus.Pins. Only the instructions used by
// the forced execution protocol are executed, every other opcode runs as a NOP and is
// reported as a fault.
type Target struct {
	mem     [0x10000]byte
	written set.Set[uint16]

	clock     bus.Level
	reset     bus.Level
	ramEnable bus.Level

	ctrlDriving bool
	ctrlValue   byte

	resetClocks int
	recovery    int
	ticks       uint64

	pc uint16
	hl uint16
	a  byte

	cycle   machineCycle
	t       int // T-state of the current cycle, 0 before its first rising edge
	pending []machineCycle
	opcode  byte
	operand byte

	faults []string
}

// New returns a target with cleared RAM, reset released and the CPU at address 0.
func New() *Target {
	return &Target{
		written:   set.New[uint16](),
		clock:     bus.Low,
		reset:     bus.High,
		ramEnable: bus.High,
	}
}

// Load copies data into RAM starting at address, bypassing the bus.
func (s *Target) Load(address uint16, data []byte) {
	for i, b := range data {
		s.mem[address+uint16(i)] = b
	}
}

// Peek returns the RAM content at address, bypassing the bus.
func (s *Target) Peek(address uint16) byte {
	return s.mem[address]
}

// Written returns the set of RAM addresses that were stored by bus write cycles.
func (s *Target) Written() set.Set[uint16] {
	return s.written
}

// PC returns the program counter.
func (s *Target) PC() uint16 { return s.pc }

// HL returns the HL register pair.
func (s *Target) HL() uint16 { return s.hl }

// A returns the accumulator.
func (s *Target) A() byte { return s.a }

// Ticks returns the number of rising clock edges seen.
func (s *Target) Ticks() uint64 { return s.ticks }

// Faults returns the protocol violations that were detected, in order of occurrence.
func (s *Target) Faults() []string {
	return s.faults
}

func (s *Target) fault(format string, args ...any) {
	msg := fmt.Sprintf("tick %d: ", s.ticks) + fmt.Sprintf(format, args...)
	s.faults = append(s.faults, msg)
}

// WriteClock advances the CPU by one T-state on every rising edge.
func (s *Target) WriteClock(level bus.Level) {
	rising := level == bus.High && s.clock == bus.Low
	s.clock = level
	if rising {
		s.tick()
	}
}

// WriteReset sets the reset line. Releasing it puts the CPU at address 0 after a
// short recovery.
func (s *Target) WriteReset(level bus.Level) {
	if level == s.reset {
		return
	}
	s.reset = level
	if level == bus.Low {
		s.resetClocks = 0
		return
	}

	if s.resetClocks < minResetClocks {
		s.fault("reset released after %d clocks", s.resetClocks)
	}
	s.pc = 0
	s.cycle = machineCycle{}
	s.pending = nil
	s.t = 0
	s.recovery = resetRecovery
}

// WriteRAMEnable sets the RAM CE2 line.
func (s *Target) WriteRAMEnable(level bus.Level) {
	s.ramEnable = level
	s.checkContention()
}

// DataOutput makes the controller drive the data bus.
func (s *Target) DataOutput(value byte) {
	s.ctrlDriving = true
	s.ctrlValue = value
	s.checkContention()
}

// DataInput floats the controller side of the data bus.
func (s *Target) DataInput() {
	s.ctrlDriving = false
}

// ReadData returns the current data bus value as seen by the controller.
func (s *Target) ReadData() byte {
	return s.busValue()
}

func (s *Target) ramDriving() bool {
	if s.ramEnable == bus.Low || s.t < 1 || s.t > 3 {
		return false
	}
	return s.cycle.kind == cycleFetch || s.cycle.kind == cycleRead
}

func (s *Target) cpuDriving() bool {
	return s.cycle.kind == cycleWrite && s.t >= 1 && s.t <= 3
}

func (s *Target) checkContention() {
	if !s.ctrlDriving {
		return
	}
	if s.ramDriving() {
		s.fault("bus contention between controller and RAM")
	}
	if s.cpuDriving() {
		s.fault("bus contention between controller and CPU write")
	}
}

func (s *Target) busValue() byte {
	switch {
	case s.ctrlDriving:
		return s.ctrlValue
	case s.ramDriving():
		return s.mem[s.cycle.address()]
	case s.cpuDriving():
		return s.operand
	default:
		return floatingBus
	}
}

func (s *Target) tick() {
	s.ticks++

	if s.reset == bus.Low {
		s.resetClocks++
		return
	}
	if s.recovery > 0 {
		s.recovery--
		return
	}

	if s.cycle.kind == cycleIdle || s.t == cycleLength[s.cycle.kind] {
		s.nextCycle()
	}
	s.t++
	s.checkContention()

	switch s.cycle.kind {
	case cycleFetch:
		if s.t == 3 {
			s.opcode = s.busValue()
			s.pc++
		}
		if s.t == 4 {
			s.pending = s.decode(s.opcode)
		}

	case cycleRead:
		if s.t == 3 {
			s.cycle.done(s.busValue())
		}

	case cycleWrite:
		if s.t == 3 {
			address := s.cycle.address()
			if s.ramEnable == bus.High {
				s.mem[address] = s.operand
				s.written.Add(address)
			}
			s.cycle.done(s.operand)
		}

	case cycleInternal:
		if s.t == cycleLength[cycleInternal] {
			s.cycle.done(0)
		}
	}
}

func (s *Target) nextCycle() {
	s.t = 0
	if len(s.pending) > 0 {
		s.cycle = s.pending[0]
		s.pending = s.pending[1:]
		return
	}
	pc := s.pc
	s.cycle = machineCycle{
		kind:    cycleFetch,
		address: func() uint16 { return pc },
	}
}

func (s *Target) pcAddress() uint16 { return s.pc }
func (s *Target) hlAddress() uint16 { return s.hl }

func (s *Target) immediate(done func(data byte)) machineCycle {
	return machineCycle{
		kind:    cycleRead,
		address: s.pcAddress,
		done: func(data byte) {
			s.pc++
			done(data)
		},
	}
}

// decode returns the machine cycles that follow the opcode fetch.
func (s *Target) decode(opcode byte) []machineCycle {
	switch opcode {
	case 0x00: // NOP
		return nil

	case 0x21: // LD HL,nn
		var low byte
		return []machineCycle{
			s.immediate(func(data byte) { low = data }),
			s.immediate(func(data byte) { s.hl = uint16(data)<<8 | uint16(low) }),
		}

	case 0x36: // LD (HL),n
		return []machineCycle{
			s.immediate(func(data byte) { s.operand = data }),
			{kind: cycleWrite, address: s.hlAddress, done: func(byte) {}},
		}

	case 0x23: // INC HL
		return []machineCycle{
			{kind: cycleInternal, done: func(byte) { s.hl++ }},
		}

	case 0x7E: // LD A,(HL)
		return []machineCycle{
			{kind: cycleRead, address: s.hlAddress, done: func(data byte) { s.a = data }},
		}

	default:
		s.fault("unsupported opcode %02X executed as NOP", opcode)
		return nil
	}
}
