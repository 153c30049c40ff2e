package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80ios/internal/bus"
	"github.com/retroenv/z80ios/internal/bus/gpio"
	"github.com/retroenv/z80ios/internal/config"
	"github.com/retroenv/z80ios/internal/console"
	"github.com/retroenv/z80ios/internal/rtc"
	"github.com/retroenv/z80ios/internal/sim"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// simTemperature is the temperature reported by the simulated clock.
const simTemperature = 25

// target is the pin backend of a session, either the GPIO lines or the simulation.
type target struct {
	pins bus.Pins
	sim  *sim.Target
	gpio *gpio.Pins
}

func (p *Pipeline) openTarget() (*target, error) {
	if p.opts.Sim {
		s := sim.New()
		p.logger.Debug("Using simulated target")
		return &target{pins: s, sim: s}, nil
	}

	pins, err := gpio.Open(config.DefaultPinMap())
	if err != nil {
		return nil, fmt.Errorf("opening GPIO pins: %w", err)
	}
	return &target{pins: pins, gpio: pins}, nil
}

// err returns the first pin error of the GPIO backend or the faults that the
// simulation detected.
func (t *target) err() error {
	if t.gpio != nil {
		if err := t.gpio.Err(); err != nil {
			return fmt.Errorf("GPIO pin access: %w", err)
		}
		return nil
	}

	if faults := t.sim.Faults(); len(faults) > 0 {
		return fmt.Errorf("simulated target reported %d faults, first: %s", len(faults), faults[0])
	}
	return nil
}

func (t *target) Close() error {
	if t.gpio == nil {
		return nil
	}
	return t.gpio.Close() //nolint:wrapcheck // returns the recorded pin error
}

func (p *Pipeline) openConsole() (io.ReadWriter, io.Closer, error) {
	if p.console != nil {
		return p.console, nil, nil
	}

	if p.opts.TTY != "" {
		port, err := console.OpenSerial(p.opts.TTY, p.opts.Baud)
		if err != nil {
			return nil, nil, fmt.Errorf("opening console: %w", err)
		}
		return port, port, nil
	}

	term, err := console.OpenTerminal(os.Stdin, os.Stdout)
	if err != nil {
		return nil, nil, fmt.Errorf("opening console: %w", err)
	}
	return term, term, nil
}

// openClock returns the real-time clock, nil is returned if no clock is attached.
func (p *Pipeline) openClock() (*rtc.Clock, io.Closer, error) {
	if p.opts.Sim {
		dev := &i2c.Dev{
			Bus:  sim.NewClock(p.now(), simTemperature),
			Addr: config.RTCAddress,
		}
		return rtc.New(p.logger, dev), nil, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing host drivers: %w", err)
	}
	i2cBus, err := i2creg.Open(p.opts.I2CBus)
	if err != nil {
		p.logger.Warn("RTC not available", log.Err(err))
		return nil, nil, nil
	}

	clock := rtc.New(p.logger, &i2c.Dev{Bus: i2cBus, Addr: config.RTCAddress})
	if !clock.Present() {
		p.logger.Warn("RTC not found", log.String("bus", i2cBus.String()))
		_ = i2cBus.Close()
		return nil, nil, nil
	}
	return clock, i2cBus, nil
}
