// Package bus implements raw pin control of the Z80 clock, reset, RAM chip enable and data bus lines.
// It has no knowledge of Z80 instructions, callers compose its primitives into bus cycles.
package bus

import "errors"

// ErrBusContention is the panic value used when the data bus would be driven while the RAM is
// still able to drive it as well.
var ErrBusContention = errors.New("data bus driven while RAM override is not asserted")

// Level is the logic level of a single line.
type Level bool

// Logic levels.
const (
	Low  Level = false
	High Level = true
)

// Pins gives access to the physical lines that connect the controller to the Z80 board.
// Implementations toggle real GPIO lines or a simulated target.
type Pins interface {
	// WriteClock sets the Z80 CLK line.
	WriteClock(level Level)
	// WriteReset sets the Z80 RESET_ line, the CPU is held in reset while it is low.
	WriteReset(level Level)
	// WriteRAMEnable sets the RAM CE2 line, the RAM is in high impedance while it is low.
	WriteRAMEnable(level Level)
	// DataOutput switches the 8 data lines to output and drives the given value.
	DataOutput(value byte)
	// DataInput switches the 8 data lines to input with pull-up.
	DataInput()
	// ReadData samples the 8 data lines.
	ReadData() byte
}

// Driver owns the pins and provides the clock pulse and bus ownership primitives.
type Driver struct {
	pins Pins

	overridden bool // RAM forced to high impedance
	driving    bool // data bus configured as output
	pulses     uint64
}

// New returns a driver with the bus in its idle state: clock low, reset released,
// RAM enabled and the data bus floating with pull-ups.
func New(pins Pins) *Driver {
	d := &Driver{pins: pins}
	pins.DataInput()
	pins.WriteClock(Low)
	pins.WriteReset(High)
	pins.WriteRAMEnable(High)
	return d
}

// Pulse emits n clock pulses. The steady clock level is low, one pulse is a
// low-high-low transition that advances the Z80 by one T-state.
func (d *Driver) Pulse(n int) {
	for range n {
		d.pins.WriteClock(High)
		d.pins.WriteClock(Low)
	}
	d.pulses += uint64(n)
}

// Pulses returns the number of clock pulses emitted since the driver was created.
func (d *Driver) Pulses() uint64 {
	return d.pulses
}

// AssertReset holds the Z80 in reset.
func (d *Driver) AssertReset() {
	d.pins.WriteReset(Low)
}

// ReleaseReset lets the Z80 leave reset.
func (d *Driver) ReleaseReset() {
	d.pins.WriteReset(High)
}

// AssertRAMOverride forces the RAM into high impedance so that the controller answers
// the memory requests of the Z80. Every call must be paired with ReleaseRAMOverride.
func (d *Driver) AssertRAMOverride() {
	d.pins.WriteRAMEnable(Low)
	d.overridden = true
}

// ReleaseRAMOverride floats the data bus and enables the RAM again.
func (d *Driver) ReleaseRAMOverride() {
	if d.driving {
		d.SetDataBusInput()
	}
	d.pins.WriteRAMEnable(High)
	d.overridden = false
}

// WithRAMOverride runs fn with the RAM override asserted and releases it on every return path.
func (d *Driver) WithRAMOverride(fn func()) {
	d.AssertRAMOverride()
	defer d.ReleaseRAMOverride()
	fn()
}

// Overridden returns whether the RAM override is currently asserted.
func (d *Driver) Overridden() bool {
	return d.overridden
}

// SetDataBusOutput drives value on the data bus. It panics with ErrBusContention if the
// RAM override is not asserted, as the RAM and the controller would both drive the bus.
func (d *Driver) SetDataBusOutput(value byte) {
	if !d.overridden {
		panic(ErrBusContention)
	}
	d.pins.DataOutput(value)
	d.driving = true
}

// SetDataBusInput floats the data bus with pull-ups.
func (d *Driver) SetDataBusInput() {
	d.pins.DataInput()
	d.driving = false
}

// ReadDataBus samples the data bus.
func (d *Driver) ReadDataBus() byte {
	return d.pins.ReadData()
}
