package monitor

import (
	"context"
	"fmt"

	"github.com/retroenv/z80ios/internal/rtc"
)

func (m *Monitor) showTime(context.Context, []string) error {
	if m.options.Clock == nil {
		return errNoClock
	}

	dt, err := m.options.Clock.Read()
	if err != nil {
		return fmt.Errorf("reading clock: %w", err)
	}
	return m.printf("%s  %d C", dt, dt.TempC)
}

// setTime edits the clock fields one after another. U increments the units and T the
// tens of the current field, CR accepts it.
func (m *Monitor) setTime(context.Context, []string) error {
	if m.options.Clock == nil {
		return errNoClock
	}

	dt, err := m.options.Clock.Read()
	if err != nil {
		return fmt.Errorf("reading clock: %w", err)
	}
	if err := dt.Validate(); err != nil {
		// a stopped clock can hold any register content
		dt = rtc.DateTime{Day: 1, Month: 1}
	}

	if err := m.println("RTC manual setting, press T/U to increment +10/+1 or CR to accept"); err != nil {
		return err
	}

	for _, field := range rtc.Fields {
		if err := m.editField(&dt, field); err != nil {
			return err
		}
	}

	if err := m.options.Clock.Write(dt); err != nil {
		return fmt.Errorf("writing clock: %w", err)
	}
	return m.printf("RTC set to %s", dt)
}

func (m *Monitor) editField(dt *rtc.DateTime, field rtc.Field) error {
	for {
		if err := m.print(fmt.Sprintf("\r %s -> %02d ", field, dt.Get(field))); err != nil {
			return err
		}

		key, err := m.readKey()
		if err != nil {
			return fmt.Errorf("reading key: %w", err)
		}

		switch key {
		case 'u', 'U':
			dt.BumpUnits(field)
		case 't', 'T':
			dt.BumpTens(field)
		case asciiCR:
			return m.print(lineEnding)
		}
	}
}
