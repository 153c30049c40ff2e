// Package monitor implements the line oriented command loop that the operator uses
// on the console to inspect and change the target.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80ios/internal/disasm"
	"github.com/retroenv/z80ios/internal/loader"
	"github.com/retroenv/z80ios/internal/rtc"
	"github.com/retroenv/z80ios/internal/writer"
)

const (
	prompt     = "> "
	lineEnding = "\r\n"

	asciiBackspace = 0x08
	asciiDelete    = 0x7F
	asciiCR        = '\r'
	asciiLF        = '\n'

	maxLineLength = 128
)

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

// Target is the target access used by the monitor commands.
type Target interface {
	Reset()
	LoadHL(value uint16)
	WriteNext(value byte)
	ReadByte(address uint16) byte
	ReadWord(address uint16) uint16
}

// Clock is the real-time clock.
type Clock interface {
	Read() (rtc.DateTime, error)
	Write(dt rtc.DateTime) error
}

// Volume is the SD file layer.
type Volume interface {
	OSName(diskSet int) (string, error)
	ReadFile(name string) ([]byte, error)
}

// Scripter executes scripts.
type Scripter interface {
	Run(ctx context.Context, name, source string) error
}

// Options contains the optional collaborators of the monitor. Commands that need a
// missing collaborator report an error.
type Options struct {
	Clock    Clock
	Volume   Volume
	Scripter Scripter
	DiskSet  int

	// HardwareErr is checked after every command, a returned error ends the session.
	HardwareErr func() error
}

// Monitor is a command session on a console.
type Monitor struct {
	logger  *log.Logger
	target  Target
	options Options

	in       *bufio.Reader
	out      io.Writer
	afterCR  bool
	dis      *disasm.Disasm
	loader   *loader.Loader
	dumper   *writer.Writer
	listing  *writer.Writer
	diskSet  int
	commands map[string]command
}

type command struct {
	usage   string
	help    string
	handler func(ctx context.Context, args []string) error
}

// New creates a monitor that reads commands from console and writes the output back to it.
func New(logger *log.Logger, console io.ReadWriter, target Target, options Options) *Monitor {
	m := &Monitor{
		logger:  logger,
		target:  target,
		options: options,
		in:      bufio.NewReader(console),
		out:     console,
		dis:     disasm.New(logger, target),
		loader:  loader.New(logger, target),
		dumper:  writer.New(console, writer.Options{LineEnding: lineEnding}),
		listing: writer.New(console, writer.Options{
			HexComments:    true,
			OffsetComments: true,
			LineEnding:     lineEnding,
		}),
		diskSet: options.DiskSet,
	}
	m.commands = m.commandTable()
	return m
}

// Run reads and executes commands until the quit command, the end of the input or the
// cancellation of the context.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.println("Z80 monitor, H for help"); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("monitor session: %w", err)
		}

		if err := m.print(prompt); err != nil {
			return err
		}
		line, err := m.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		err = m.Execute(ctx, line)
		switch {
		case errors.Is(err, ErrQuit):
			return nil
		case err != nil:
			m.logger.Debug("Command failed", log.String("line", line), log.Err(err))
			if err := m.println("error: " + err.Error()); err != nil {
				return err
			}
		}

		if m.options.HardwareErr != nil {
			if err := m.options.HardwareErr(); err != nil {
				return fmt.Errorf("hardware failure: %w", err)
			}
		}
	}
}

// Execute runs a single command line.
func (m *Monitor) Execute(ctx context.Context, line string) error {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) == 0 {
		return nil
	}

	name := strings.ToUpper(fields[0])
	cmd, ok := m.commands[name]
	if !ok {
		return m.println("?")
	}
	return cmd.handler(ctx, fields[1:])
}

// Confirm asks a yes or no question and waits for the answer key.
func (m *Monitor) Confirm(question string) bool {
	if err := m.print(question + " [Y/N] "); err != nil {
		return false
	}
	for {
		key, err := m.readKey()
		if err != nil {
			return false
		}
		var answer bool
		switch key {
		case 'y', 'Y':
			answer = true
		case 'n', 'N', asciiCR:
		default:
			continue
		}

		text := "N"
		if answer {
			text = "Y"
		}
		if err := m.println(text); err != nil {
			m.logger.Warn("Writing answer failed", log.Err(err))
			return false
		}
		return answer
	}
}

// readKey returns the next input byte. A LF directly following a CR is skipped so that
// both CR and CR LF terminated lines are accepted.
func (m *Monitor) readKey() (byte, error) {
	for {
		b, err := m.in.ReadByte()
		if err != nil {
			return 0, err //nolint:wrapcheck // io.EOF ends the session
		}
		skip := m.afterCR && b == asciiLF
		m.afterCR = b == asciiCR
		if !skip {
			return b, nil
		}
	}
}

func (m *Monitor) readLine() (string, error) {
	line := make([]byte, 0, maxLineLength)

	for {
		b, err := m.readKey()
		if err != nil {
			return "", err
		}

		switch {
		case b == asciiCR || b == asciiLF:
			return string(line), m.print(lineEnding)

		case b == asciiBackspace || b == asciiDelete:
			if len(line) == 0 {
				continue
			}
			line = line[:len(line)-1]
			if err := m.print("\b \b"); err != nil {
				return "", err
			}

		case b >= 0x20 && b < asciiDelete && len(line) < maxLineLength:
			line = append(line, b)
			if err := m.print(string(b)); err != nil {
				return "", err
			}
		}
	}
}

func (m *Monitor) print(s string) error {
	if _, err := io.WriteString(m.out, s); err != nil {
		return fmt.Errorf("writing to console: %w", err)
	}
	return nil
}

func (m *Monitor) println(s string) error {
	return m.print(s + lineEnding)
}

func (m *Monitor) printf(format string, args ...any) error {
	return m.println(fmt.Sprintf(format, args...))
}
