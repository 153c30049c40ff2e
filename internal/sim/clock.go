package sim

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

var _ i2c.Bus = (*Clock)(nil)

// ClockAddress is the I2C address the simulated DS3231 answers on.
const ClockAddress = 0x68

const (
	clockRegisters = 0x13
	regStatus      = 0x0F
	regTempMSB     = 0x11
	oscStopFlag    = 0x80
)

// Clock is an I2C bus with a single DS3231 real-time clock attached. The time registers
// hold whatever was last set or written, the clock does not run.
type Clock struct {
	mu      sync.Mutex
	regs    [clockRegisters]byte
	pointer byte
}

// NewClock returns a clock set to the given time and temperature.
func NewClock(t time.Time, tempC int8) *Clock {
	c := &Clock{}
	c.SetTime(t)
	c.regs[regTempMSB] = byte(tempC)
	return c
}

// SetTime stores t in the time and date registers.
func (c *Clock) SetTime(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.regs[0] = bcd(t.Second())
	c.regs[1] = bcd(t.Minute())
	c.regs[2] = bcd(t.Hour())
	c.regs[3] = byte(t.Weekday()) + 1
	c.regs[4] = bcd(t.Day())
	c.regs[5] = bcd(int(t.Month()))
	c.regs[6] = bcd(t.Year() % 100)
}

// SetOscillatorStopped sets or clears the oscillator stop flag, as after a battery failure.
func (c *Clock) SetOscillatorStopped(stopped bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stopped {
		c.regs[regStatus] |= oscStopFlag
	} else {
		c.regs[regStatus] &^= oscStopFlag
	}
}

// Register returns the content of a register.
func (c *Clock) Register(reg byte) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[reg%clockRegisters]
}

// String implements i2c.Bus.
func (c *Clock) String() string {
	return "sim-i2c"
}

// SetSpeed implements i2c.Bus.
func (c *Clock) SetSpeed(physic.Frequency) error {
	return nil
}

// Tx performs a transaction with the device at addr. The first written byte sets the
// register pointer, following bytes are stored with auto increment, reads continue from
// the pointer.
func (c *Clock) Tx(addr uint16, w, r []byte) error {
	if addr != ClockAddress {
		return fmt.Errorf("no device at address 0x%02X", addr)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(w) > 0 {
		c.pointer = w[0] % clockRegisters
		for _, b := range w[1:] {
			c.regs[c.pointer] = b
			c.pointer = (c.pointer + 1) % clockRegisters
		}
	}
	for i := range r {
		r[i] = c.regs[c.pointer]
		c.pointer = (c.pointer + 1) % clockRegisters
	}
	return nil
}

func bcd(v int) byte {
	return byte(v/10*16 + v%10)
}
