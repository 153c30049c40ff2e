// Package console provides the operator connections of the monitor: a serial line
// or the local terminal in raw mode.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/jacobsa/go-serial/serial"
	"golang.org/x/term"
)

const (
	asciiBackspace = 0x08
	asciiDelete    = 0x7F
)

// OpenSerial opens a serial port with 8 data bits, no parity and 1 stop bit.
func OpenSerial(portName string, baudRate int) (io.ReadWriteCloser, error) {
	options := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        uint(baudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}

	port, err := serial.Open(options)
	if err != nil {
		return nil, fmt.Errorf("opening serial port '%s': %w", portName, err)
	}
	return port, nil
}

// Terminal is the local terminal. If the input is a terminal it is switched to raw mode
// so that keys are received without line buffering and echo.
type Terminal struct {
	in  *os.File
	out io.Writer

	fd    int
	state *term.State
}

// OpenTerminal returns a console on the given input and output.
func OpenTerminal(in *os.File, out io.Writer) (*Terminal, error) {
	t := &Terminal{
		in:  in,
		out: out,
		fd:  int(in.Fd()),
	}

	if !term.IsTerminal(t.fd) {
		return t, nil
	}

	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return nil, fmt.Errorf("setting terminal raw mode: %w", err)
	}
	t.state = state
	return t, nil
}

// Read reads keys, the delete key that terminals send for backspace is translated to
// a backspace.
func (t *Terminal) Read(p []byte) (int, error) {
	n, err := t.in.Read(p)
	for i := range n {
		if p[i] == asciiDelete {
			p[i] = asciiBackspace
		}
	}
	return n, err //nolint:wrapcheck // io.EOF has to be passed through unwrapped
}

// Write writes to the terminal output.
func (t *Terminal) Write(p []byte) (int, error) {
	n, err := t.out.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing to terminal: %w", err)
	}
	return n, nil
}

// Close restores the terminal mode.
func (t *Terminal) Close() error {
	if t.state == nil {
		return nil
	}
	err := term.Restore(t.fd, t.state)
	t.state = nil
	if err != nil {
		return fmt.Errorf("restoring terminal mode: %w", err)
	}
	return nil
}
