package monitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/z80ios/internal/config"
	"github.com/retroenv/z80ios/internal/sdcard"
	"github.com/retroenv/z80ios/internal/verification"
)

const (
	addressSpace = 0x10000
	maxDiskSet   = 9
)

var (
	errMissingArgument = errors.New("missing argument")
	errTooManyArgs     = errors.New("too many arguments")
	errNoClock         = errors.New("real-time clock not available")
	errNoVolume        = errors.New("SD card not available")
	errNoScripter      = errors.New("scripting not available")
	errNoAssembler     = errors.New("assembler not available")
)

// helpOrder is the order of the commands in the help output.
var helpOrder = []string{"D", "U", "E", "F", "A", "R", "T", "TS", "O", "L", "S", "H", "Q"}

func (m *Monitor) commandTable() map[string]command {
	commands := map[string]command{
		"D":  {"D addr[,count]", "hex dump memory", m.dump},
		"U":  {"U addr[,count]", "disassemble instructions", m.unassemble},
		"E":  {"E addr b0 b1 ...", "enter bytes", m.enter},
		"F":  {"F addr,count,value", "fill memory", m.fill},
		"A":  {"A addr", "assemble", m.assemble},
		"R":  {"R", "reset the Z80", m.reset},
		"T":  {"T", "show RTC date and time", m.showTime},
		"TS": {"TS", "set RTC date and time", m.setTime},
		"O":  {"O [set]", "show the OS name of the disk set", m.osName},
		"L":  {"L file addr", "load a file from SD into RAM", m.load},
		"S":  {"S file", "run a script from SD", m.script},
		"H":  {"H", "show this help", m.help},
		"Q":  {"Q", "leave the monitor", m.quit},
	}
	commands["?"] = commands["H"]
	return commands
}

func (m *Monitor) dump(_ context.Context, args []string) error {
	address, count, err := addressAndCount(args, config.DefaultDumpLength)
	if err != nil {
		return err
	}

	data := make([]byte, count)
	for i := range data {
		data[i] = m.target.ReadByte(address + uint16(i))
	}
	if err := m.dumper.WriteDump(address, data); err != nil {
		return fmt.Errorf("writing dump: %w", err)
	}
	return nil
}

func (m *Monitor) unassemble(_ context.Context, args []string) error {
	address, count, err := addressAndCount(args, config.DefaultListLength)
	if err != nil {
		return err
	}

	lines := m.dis.Disassemble(address, count)
	if err := m.listing.WriteListing(lines); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}

func (m *Monitor) enter(_ context.Context, args []string) error {
	if len(args) < 2 {
		return errMissingArgument
	}
	address, err := parseAddress(args[0])
	if err != nil {
		return err
	}

	data := make([]byte, 0, len(args)-1)
	for _, arg := range args[1:] {
		b, err := parseByte(arg)
		if err != nil {
			return err
		}
		data = append(data, b)
	}

	if err := m.loader.Load(address, data); err != nil {
		return fmt.Errorf("entering bytes: %w", err)
	}
	return nil
}

func (m *Monitor) fill(_ context.Context, args []string) error {
	if len(args) < 3 {
		return errMissingArgument
	}
	if len(args) > 3 {
		return errTooManyArgs
	}
	address, count, err := addressAndCount(args[:2], 0)
	if err != nil {
		return err
	}
	value, err := parseByte(args[2])
	if err != nil {
		return err
	}

	if err := m.loader.Load(address, bytes.Repeat([]byte{value}, count)); err != nil {
		return fmt.Errorf("filling memory: %w", err)
	}
	return nil
}

func (m *Monitor) assemble(context.Context, []string) error {
	return errNoAssembler
}

func (m *Monitor) reset(context.Context, []string) error {
	m.target.Reset()
	return m.println("Z80 reset")
}

func (m *Monitor) osName(_ context.Context, args []string) error {
	if m.options.Volume == nil {
		return errNoVolume
	}

	if len(args) > 0 {
		diskSet, err := strconv.Atoi(args[0])
		if err != nil || diskSet < 0 || diskSet > maxDiskSet {
			return fmt.Errorf("invalid disk set '%s'", args[0])
		}
		m.diskSet = diskSet
	}

	name, err := m.options.Volume.OSName(m.diskSet)
	var sdErr *sdcard.Error
	if errors.As(err, &sdErr) && sdErr.Code == sdcard.NoFile {
		name, err = "", nil
	}
	if err != nil {
		return fmt.Errorf("reading OS name: %w", err)
	}

	if name == "" {
		return m.printf("Disk Set %d", m.diskSet)
	}
	return m.printf("Disk Set %d (%s)", m.diskSet, name)
}

func (m *Monitor) load(_ context.Context, args []string) error {
	if m.options.Volume == nil {
		return errNoVolume
	}
	if len(args) < 2 {
		return errMissingArgument
	}
	address, err := parseAddress(args[1])
	if err != nil {
		return err
	}

	data, err := m.loader.LoadVolumeFile(m.options.Volume, args[0], address)
	if err != nil {
		return fmt.Errorf("loading file: %w", err)
	}
	if err := verification.Verify(m.logger, m.target, address, data); err != nil {
		return fmt.Errorf("verifying file: %w", err)
	}
	return m.printf("Loaded %d bytes at $%04X", len(data), address)
}

func (m *Monitor) script(ctx context.Context, args []string) error {
	if m.options.Scripter == nil {
		return errNoScripter
	}
	if m.options.Volume == nil {
		return errNoVolume
	}
	if len(args) < 1 {
		return errMissingArgument
	}

	source, err := m.options.Volume.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return m.options.Scripter.Run(ctx, args[0], string(source)) //nolint:wrapcheck // already wrapped by the engine
}

func (m *Monitor) help(context.Context, []string) error {
	for _, name := range helpOrder {
		cmd := m.commands[name]
		if err := m.printf("  %-20s %s", cmd.usage, cmd.help); err != nil {
			return err
		}
	}
	return nil
}

func (m *Monitor) quit(context.Context, []string) error {
	return ErrQuit
}

// addressAndCount parses an address and an optional count. A count of 0 means the
// count argument is required.
func addressAndCount(args []string, defaultCount int) (uint16, int, error) {
	if len(args) == 0 {
		return 0, 0, errMissingArgument
	}
	if len(args) > 2 {
		return 0, 0, errTooManyArgs
	}
	address, err := parseAddress(args[0])
	if err != nil {
		return 0, 0, err
	}

	count := defaultCount
	if len(args) == 2 {
		value, err := parseHex(args[1], 32)
		if err != nil {
			return 0, 0, err
		}
		count = int(value)
	}
	if count == 0 {
		return 0, 0, errMissingArgument
	}
	if count > addressSpace {
		return 0, 0, fmt.Errorf("count %X exceeds the address space", count)
	}
	return address, count, nil
}

func parseAddress(s string) (uint16, error) {
	value, err := parseHex(s, 16)
	return uint16(value), err
}

func parseByte(s string) (byte, error) {
	value, err := parseHex(s, 8)
	return byte(value), err
}

// parseHex parses a hexadecimal number with an optional $ or 0x prefix.
func parseHex(s string, bitSize int) (uint64, error) {
	digits := strings.TrimPrefix(s, "$")
	if len(digits) > 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
		digits = digits[2:]
	}

	value, err := strconv.ParseUint(digits, 16, bitSize)
	if err != nil {
		return 0, fmt.Errorf("invalid hex number '%s'", s)
	}
	return value, nil
}
