// Package rtc implements the driver of the DS3231 real-time clock module.
package rtc

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// DS3231 registers.
const (
	regSeconds = 0x00
	regStatus  = 0x0F

	burstLength   = 18 // seconds register up to the temperature MSB
	tempMSBOffset = 17

	oscillatorStopFlag = 0x80
	statusClearOSF     = 0x08 // OSF cleared, 32kHz output left enabled
	unusedDayOfWeek    = 1
)

// Device is an I2C device connection. *i2c.Dev of periph implements it.
type Device interface {
	Tx(w, r []byte) error
}

// Clock is a DS3231 attached to an I2C device connection.
type Clock struct {
	logger *log.Logger
	dev    Device
}

// New returns a clock driver that uses dev.
func New(logger *log.Logger, dev Device) *Clock {
	return &Clock{
		logger: logger,
		dev:    dev,
	}
}

// Present returns whether the clock acknowledges a transaction.
func (c *Clock) Present() bool {
	return c.dev.Tx([]byte{regSeconds}, nil) == nil
}

// Read returns the current date, time and temperature.
func (c *Clock) Read() (DateTime, error) {
	buf := make([]byte, burstLength)
	if err := c.dev.Tx([]byte{regSeconds}, buf); err != nil {
		return DateTime{}, fmt.Errorf("reading clock registers: %w", err)
	}

	// buf[3] is the unused day of week
	return DateTime{
		Second: int(FromBCD(buf[0] & 0x7F)),
		Minute: int(FromBCD(buf[1])),
		Hour:   int(FromBCD(buf[2] & 0x3F)),
		Day:    int(FromBCD(buf[4])),
		Month:  int(FromBCD(buf[5])),
		Year:   int(FromBCD(buf[6])),
		TempC:  int8(buf[tempMSBOffset]),
	}, nil
}

// Write sets the date and time. The day of week is not used and always written as 1.
func (c *Clock) Write(dt DateTime) error {
	if err := dt.Validate(); err != nil {
		return err
	}

	w := []byte{
		regSeconds,
		ToBCD(byte(dt.Second)),
		ToBCD(byte(dt.Minute)),
		ToBCD(byte(dt.Hour)),
		unusedDayOfWeek,
		ToBCD(byte(dt.Day)),
		ToBCD(byte(dt.Month)),
		ToBCD(byte(dt.Year)),
	}
	if err := c.dev.Tx(w, nil); err != nil {
		return fmt.Errorf("writing clock registers: %w", err)
	}

	c.logger.Debug("RTC date/time updated", log.Stringer("time", dt))
	return nil
}

// OscillatorStopped returns whether the oscillator stop flag is set, which means that
// the date and time are not valid.
func (c *Clock) OscillatorStopped() (bool, error) {
	status := make([]byte, 1)
	if err := c.dev.Tx([]byte{regStatus}, status); err != nil {
		return false, fmt.Errorf("reading status register: %w", err)
	}
	return status[0]&oscillatorStopFlag != 0, nil
}

// ClearOscillatorStop resets the oscillator stop flag.
func (c *Clock) ClearOscillatorStop() error {
	if err := c.dev.Tx([]byte{regStatus, statusClearOSF}, nil); err != nil {
		return fmt.Errorf("writing status register: %w", err)
	}
	return nil
}

// AutoSet checks the oscillator stop flag. If it is set, confirm is asked whether the clock
// should be set to fallback and the flag is cleared afterwards in any case.
// It returns whether the clock was set.
func (c *Clock) AutoSet(fallback DateTime, confirm func(DateTime) bool) (bool, error) {
	stopped, err := c.OscillatorStopped()
	if err != nil || !stopped {
		return false, err
	}

	c.logger.Warn("RTC clock failure")

	var set bool
	if confirm(fallback) {
		if err := c.Write(fallback); err != nil {
			return false, err
		}
		set = true
	}

	if err := c.ClearOscillatorStop(); err != nil {
		return set, err
	}
	return set, nil
}

// ToBCD converts a value in the range 0..99 to packed BCD.
func ToBCD(v byte) byte {
	return v/10*16 + v%10
}

// FromBCD converts a packed BCD byte to its value.
func FromBCD(b byte) byte {
	return b/16*10 + b%16
}
