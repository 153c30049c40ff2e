// Package pipeline orchestrates the stages of a monitor session.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80ios/internal/bus"
	"github.com/retroenv/z80ios/internal/channel"
	"github.com/retroenv/z80ios/internal/disasm"
	"github.com/retroenv/z80ios/internal/loader"
	"github.com/retroenv/z80ios/internal/monitor"
	"github.com/retroenv/z80ios/internal/options"
	"github.com/retroenv/z80ios/internal/rtc"
	"github.com/retroenv/z80ios/internal/script"
	"github.com/retroenv/z80ios/internal/sdcard"
	"github.com/retroenv/z80ios/internal/verification"
)

const consoleLineEnding = "\r\n"

// Pipeline orchestrates a complete monitor session.
type Pipeline struct {
	logger  *log.Logger
	opts    options.Program
	console io.ReadWriter
	now     func() time.Time
}

// New creates a new session pipeline.
func New(logger *log.Logger, opts options.Program) *Pipeline {
	return &Pipeline{
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// SetConsole sets the operator console. If no console is set, the serial device of the
// options or the local terminal is opened.
func (p *Pipeline) SetConsole(console io.ReadWriter) {
	p.console = console
}

// Execute runs the complete session: the target is reset, the collaborators are
// initialized, the image is loaded and the script or the monitor is run.
func (p *Pipeline) Execute(ctx context.Context) error {
	tgt, err := p.openTarget()
	if err != nil {
		return err
	}
	defer p.closeResource("target", tgt)

	ch := channel.New(p.logger, bus.New(tgt.pins))
	ch.Reset()

	console, closeConsole, err := p.openConsole()
	if err != nil {
		return err
	}
	defer p.closeResource("console", closeConsole)

	monitorOptions := monitor.Options{
		DiskSet:     p.opts.DiskSet,
		HardwareErr: tgt.err,
	}

	clock, closeClock, err := p.openClock()
	if err != nil {
		return err
	}
	defer p.closeResource("clock", closeClock)
	if clock != nil {
		monitorOptions.Clock = clock
	}

	card, err := p.mountCard()
	if err != nil {
		return err
	}
	if card != nil {
		monitorOptions.Volume = card
		defer p.closeResource("SD card", card)
	}

	engine := script.New(p.logger, ch, disasm.New(p.logger, ch), console, consoleLineEnding)
	monitorOptions.Scripter = engine
	mon := monitor.New(p.logger, console, ch, monitorOptions)

	if clock != nil {
		if err := p.checkClock(clock, mon); err != nil {
			return err
		}
	}

	if err := p.loadImage(ch); err != nil {
		return err
	}

	if p.opts.Script != "" {
		err = engine.RunFile(ctx, p.opts.Script)
	} else {
		err = mon.Run(ctx)
	}
	if err != nil {
		return fmt.Errorf("running session: %w", err)
	}
	return tgt.err()
}

// checkClock reads the clock and offers to set it to the host time if its
// oscillator was stopped.
func (p *Pipeline) checkClock(clock *rtc.Clock, mon *monitor.Monitor) error {
	fallback := rtc.FromTime(p.now())
	set, err := clock.AutoSet(fallback, func(dt rtc.DateTime) bool {
		return mon.Confirm(fmt.Sprintf("RTC clock failure, set it to %s?", dt))
	})
	if err != nil {
		return fmt.Errorf("checking clock: %w", err)
	}
	if set {
		p.logger.Info("RTC set", log.Stringer("time", fallback))
	}

	dt, err := clock.Read()
	if err != nil {
		return fmt.Errorf("reading clock: %w", err)
	}
	p.logger.Info("RTC", log.Stringer("time", dt), log.Int("temperature", int(dt.TempC)))
	return nil
}

func (p *Pipeline) mountCard() (*sdcard.Card, error) {
	if p.opts.SDDir == "" {
		return nil, nil
	}

	card := sdcard.New(p.logger)
	if err := card.Mount(p.opts.SDDir); err != nil {
		return nil, fmt.Errorf("mounting SD card: %w", err)
	}

	name, err := card.OSName(p.opts.DiskSet)
	var sdErr *sdcard.Error
	switch {
	case errors.As(err, &sdErr) && sdErr.Code == sdcard.NoFile:
		p.logger.Info("Disk set", log.Int("set", p.opts.DiskSet))
	case err != nil:
		return nil, fmt.Errorf("reading OS name: %w", err)
	default:
		p.logger.Info("Disk set", log.Int("set", p.opts.DiskSet), log.String("os", name))
	}
	return card, nil
}

func (p *Pipeline) loadImage(ch *channel.Channel) error {
	if p.opts.Image == "" {
		return nil
	}

	l := loader.New(p.logger, ch)
	data, err := l.LoadFile(p.opts.Image, p.opts.Org)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}
	if err := verification.Verify(p.logger, ch, p.opts.Org, data); err != nil {
		return fmt.Errorf("verifying image: %w", err)
	}

	p.logger.Info("Image loaded",
		log.String("file", p.opts.Image),
		log.Hex("address", p.opts.Org),
		log.Int("size", len(data)))
	return nil
}

func (p *Pipeline) closeResource(name string, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		p.logger.Error("Closing resource failed", log.String("resource", name), log.Err(err))
	}
}
