// Package gpio implements bus.Pins on host GPIO lines using periph.
package gpio

import (
	"fmt"

	"github.com/retroenv/z80ios/internal/bus"
	"github.com/retroenv/z80ios/internal/config"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var _ bus.Pins = (*Pins)(nil)

// Pins drives the Z80 bus lines through periph GPIO pins.
// Pin level changes can fail on the host side, the first failure is kept and
// returned by Err since the bus.Pins methods do not return errors.
type Pins struct {
	clock     gpio.PinIO
	reset     gpio.PinIO
	ramEnable gpio.PinIO
	data      [8]gpio.PinIO

	err error
}

// Open initializes the host drivers and looks up all lines of the pin map.
func Open(pins config.PinMap) (*Pins, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initializing host drivers: %w", err)
	}

	p := &Pins{}
	var err error
	if p.clock, err = lookup(pins.Clock); err != nil {
		return nil, err
	}
	if p.reset, err = lookup(pins.Reset); err != nil {
		return nil, err
	}
	if p.ramEnable, err = lookup(pins.RAMEnable); err != nil {
		return nil, err
	}
	for i, name := range pins.Data {
		if p.data[i], err = lookup(name); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func lookup(name string) (gpio.PinIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio line '%s' not found", name)
	}
	return pin, nil
}

// Err returns the first error that occurred while changing a line.
func (p *Pins) Err() error {
	return p.err
}

func (p *Pins) record(err error) {
	if err != nil && p.err == nil {
		p.err = err
	}
}

func (p *Pins) out(pin gpio.PinIO, level bus.Level) {
	if err := pin.Out(gpio.Level(level)); err != nil {
		p.record(fmt.Errorf("setting %s: %w", pin.Name(), err))
	}
}

// WriteClock sets the clock line.
func (p *Pins) WriteClock(level bus.Level) { p.out(p.clock, level) }

// WriteReset sets the reset line.
func (p *Pins) WriteReset(level bus.Level) { p.out(p.reset, level) }

// WriteRAMEnable sets the RAM CE2 line.
func (p *Pins) WriteRAMEnable(level bus.Level) { p.out(p.ramEnable, level) }

// DataOutput drives value on D0..D7.
func (p *Pins) DataOutput(value byte) {
	for i, pin := range p.data {
		p.out(pin, bus.Level(value&(1<<i) != 0))
	}
}

// DataInput switches D0..D7 to inputs with pull-ups.
func (p *Pins) DataInput() {
	for _, pin := range p.data {
		if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
			p.record(fmt.Errorf("setting %s to input: %w", pin.Name(), err))
		}
	}
}

// ReadData samples D0..D7.
func (p *Pins) ReadData() byte {
	var value byte
	for i, pin := range p.data {
		if pin.Read() == gpio.High {
			value |= 1 << i
		}
	}
	return value
}

// Close floats the data bus and leaves the Z80 running from RAM.
func (p *Pins) Close() error {
	p.DataInput()
	p.WriteRAMEnable(bus.High)
	p.WriteReset(bus.High)
	return p.err
}
