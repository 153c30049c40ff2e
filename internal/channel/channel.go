// Package channel implements indirect access to the Z80 address space by forcing the CPU
// to execute chosen instructions. The controller never drives the address bus, it supplies
// opcodes and operands on the data bus while the RAM is held in high impedance and lets the
// CPU perform the actual memory cycle.
//
// There is no handshake with the CPU. Every operation starts at T1 of an opcode fetch and
// ends after the last T-state of its instruction, a wrong pulse count desynchronizes all
// following operations until the next Reset.
package channel

import (
	"sync"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80ios/internal/arch"
	"github.com/retroenv/z80ios/internal/bus"
)

var _ arch.Memory = (*Channel)(nil)

// Injected opcodes.
const (
	opLdHLnn  = 0x21 // LD HL,nn
	opIncHL   = 0x23 // INC HL
	opLdHLn   = 0x36 // LD (HL),n
	opLdAHL   = 0x7E // LD A,(HL)
	resetHold = 6    // clocks with reset asserted
	resetPost = 2    // clocks after reset release
)

// T-state totals of the operations.
const (
	ResetPulses     = resetHold + resetPost
	LoadHLPulses    = 10
	ReadBytePulses  = 7 + LoadHLPulses
	WriteNextPulses = 10 + 6
	WriteBytePulses = LoadHLPulses + WriteNextPulses
	ReadWordPulses  = 2 * ReadBytePulses
)

// Channel performs memory reads and writes on the target through forced execution.
type Channel struct {
	logger *log.Logger
	driver *bus.Driver

	mu sync.Mutex
}

// New returns a channel that uses the given bus driver.
func New(logger *log.Logger, driver *bus.Driver) *Channel {
	return &Channel{
		logger: logger,
		driver: driver,
	}
}

// Reset puts the CPU into its post reset state. It has to be called before the first
// memory operation of a session.
func (c *Channel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.driver.AssertReset()
	c.driver.Pulse(resetHold)
	c.driver.ReleaseReset()
	c.driver.Pulse(resetPost)
	c.logger.Debug("Target CPU reset")
}

// LoadHL loads the HL register of the CPU with value. HL is the cursor of WriteNext.
func (c *Channel) LoadHL(value uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadHL(value)
}

func (c *Channel) loadHL(value uint16) {
	d := c.driver
	d.Pulse(1) // M1 T1

	d.WithRAMOverride(func() {
		d.SetDataBusOutput(opLdHLnn)
		d.Pulse(2) // M1 T2-T3, opcode latched
		d.SetDataBusInput()
		d.Pulse(2) // M1 T4, M2 T1

		d.SetDataBusOutput(byte(value))
		d.Pulse(3) // M2 T2-T3, low byte latched, M3 T1
		d.SetDataBusOutput(byte(value >> 8))
		d.Pulse(2) // M3 T2-T3, high byte latched
	})
}

// ReadByte returns the byte at address. HL is left pointing to address.
func (c *Channel) ReadByte(address uint16) byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadHL(address)
	value := c.readHL()
	c.logger.Debug("Read target memory", log.Hex("address", address), log.Hex("value", value))
	return value
}

func (c *Channel) readHL() byte {
	d := c.driver
	d.Pulse(1) // M1 T1

	d.AssertRAMOverride()
	d.SetDataBusOutput(opLdAHL)
	d.Pulse(2) // M1 T2-T3, opcode latched
	d.ReleaseRAMOverride()

	d.Pulse(2) // M1 T4, M2 T1, RAM drives (HL)
	value := d.ReadDataBus()
	d.Pulse(2) // M2 T2-T3
	return value
}

// ReadWord reads the bytes at address and address+1 and returns them as
// (first << 8) | second.
func (c *Channel) ReadWord(address uint16) uint16 {
	high := c.ReadByte(address)
	low := c.ReadByte(address + 1)
	return uint16(high)<<8 | uint16(low)
}

// WriteByte stores value at address. HL is left pointing to address+1.
func (c *Channel) WriteByte(address uint16, value byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadHL(address)
	c.writeNext(value)
	c.logger.Debug("Wrote target memory", log.Hex("address", address), log.Hex("value", value))
}

// WriteNext stores value at the address in HL and increments HL.
func (c *Channel) WriteNext(value byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeNext(value)
}

func (c *Channel) writeNext(value byte) {
	d := c.driver

	// LD (HL),n
	d.Pulse(1) // M1 T1
	d.AssertRAMOverride()
	d.SetDataBusOutput(opLdHLn)
	d.Pulse(2) // M1 T2-T3, opcode latched
	d.SetDataBusInput()
	d.Pulse(2) // M1 T4, M2 T1
	d.SetDataBusOutput(value)
	d.Pulse(2) // M2 T2-T3, operand latched
	d.ReleaseRAMOverride()
	d.Pulse(3) // M3 write cycle, RAM stores the byte

	// INC HL
	d.Pulse(1) // M1 T1
	d.AssertRAMOverride()
	d.SetDataBusOutput(opIncHL)
	d.Pulse(2) // M1 T2-T3, opcode latched
	d.ReleaseRAMOverride()
	d.Pulse(3) // M1 T4, 2 internal T-states
}
