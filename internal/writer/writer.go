// Package writer implements the text output of memory dumps and disassembly listings.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/z80ios/internal/disasm"
)

const dataBytesPerLine = 16

type lineWriterFunc func(line string, byteCount int) error

// Writer formats dumps and listings.
type Writer struct {
	options Options
	writer  io.Writer
}

// Options of the writer.
type Options struct {
	HexComments    bool   // output the instruction bytes as comment
	OffsetComments bool   // output the instruction address as comment
	LineEnding     string // defaults to \n, the serial console uses \r\n
}

// New creates a new writer.
func New(writer io.Writer, options Options) *Writer {
	if options.LineEnding == "" {
		options.LineEnding = "\n"
	}
	return &Writer{
		options: options,
		writer:  writer,
	}
}

// WriteDump writes data as hex dump lines of 16 bytes with an ASCII column.
// address is the address of the first byte.
func (w Writer) WriteDump(address uint16, data []byte) error {
	lineWriter := func(line string, byteCount int) error {
		if _, err := fmt.Fprintf(w.writer, "%04X  %s%s", address, line, w.options.LineEnding); err != nil {
			return fmt.Errorf("writing dump line: %w", err)
		}
		address += uint16(byteCount)
		return nil
	}

	remaining := len(data)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, dataBytesPerLine)
		chunk := data[i : i+toWrite]

		buf := &strings.Builder{}
		for j := range dataBytesPerLine {
			if j < toWrite {
				fmt.Fprintf(buf, "%02X ", chunk[j])
			} else {
				buf.WriteString("   ")
			}
		}
		buf.WriteString(" ")
		buf.WriteString(printable(chunk))

		if err := lineWriter(buf.String(), toWrite); err != nil {
			return err
		}

		i += toWrite
		remaining -= toWrite
	}
	return nil
}

func printable(data []byte) string {
	b := make([]byte, len(data))
	for i, c := range data {
		if c < 0x20 || c > 0x7E {
			c = '.'
		}
		b[i] = c
	}
	return string(b)
}

// BundleDataWrites writes data as DB directive lines of up to 16 bytes.
func (w Writer) BundleDataWrites(data []byte, lineWriter lineWriterFunc) error {
	remaining := len(data)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, dataBytesPerLine)

		buf := &strings.Builder{}
		buf.WriteString("  DB ")
		for j := range toWrite {
			if _, err := fmt.Fprintf(buf, "%02XH,", data[i+j]); err != nil {
				return fmt.Errorf("writing data byte: %w", err)
			}
		}

		line := strings.TrimRight(buf.String(), ",")

		if lineWriter != nil {
			if err := lineWriter(line, toWrite); err != nil {
				return fmt.Errorf("writing data line using custom writer: %w", err)
			}
		} else {
			if _, err := fmt.Fprintf(w.writer, "%s%s", line, w.options.LineEnding); err != nil {
				return fmt.Errorf("writing data line: %w", err)
			}
		}

		i += toWrite
		remaining -= toWrite
	}

	return nil
}

// WriteCommentHeader writes the image information as comments.
func (w Writer) WriteCommentHeader(name string, org uint16, size int) error {
	if _, err := fmt.Fprintf(w.writer, "; Image: %s%s", name, w.options.LineEnding); err != nil {
		return fmt.Errorf("writing image name: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Size: %d bytes%s", size, w.options.LineEnding); err != nil {
		return fmt.Errorf("writing image size: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Code base address: $%04X%s%s", org, w.options.LineEnding, w.options.LineEnding); err != nil {
		return fmt.Errorf("writing code base address: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "  ORG %04XH%s%s", org, w.options.LineEnding, w.options.LineEnding); err != nil {
		return fmt.Errorf("writing origin: %w", err)
	}
	return nil
}

// WriteListing writes one line per instruction.
func (w Writer) WriteListing(lines []disasm.Line) error {
	for _, line := range lines {
		if err := w.writeCodeLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (w Writer) writeCodeLine(line disasm.Line) error {
	var comments []string
	if w.options.OffsetComments {
		comments = append(comments, fmt.Sprintf("$%04X", line.Address))
	}
	if w.options.HexComments {
		hex := make([]string, len(line.Instruction.Bytes))
		for i, b := range line.Instruction.Bytes {
			hex[i] = fmt.Sprintf("%02X", b)
		}
		comments = append(comments, strings.Join(hex, " "))
	}

	var err error
	if len(comments) == 0 {
		_, err = fmt.Fprintf(w.writer, "  %s%s", line.Instruction.Text, w.options.LineEnding)
	} else {
		_, err = fmt.Fprintf(w.writer, "  %-30s ; %s%s", line.Instruction.Text, strings.Join(comments, "  "), w.options.LineEnding)
	}
	if err != nil {
		return fmt.Errorf("writing code line: %w", err)
	}
	return nil
}
