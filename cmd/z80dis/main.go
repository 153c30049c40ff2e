// Package main implements an offline Z80 disassembler that runs binary images through
// the simulated target and the bus level disassembler of the monitor.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/log"
	zapp "github.com/retroenv/z80ios/internal/app"
	"github.com/retroenv/z80ios/internal/bus"
	"github.com/retroenv/z80ios/internal/channel"
	"github.com/retroenv/z80ios/internal/cli"
	"github.com/retroenv/z80ios/internal/config"
	"github.com/retroenv/z80ios/internal/disasm"
	"github.com/retroenv/z80ios/internal/loader"
	"github.com/retroenv/z80ios/internal/options"
	"github.com/retroenv/z80ios/internal/sim"
	"github.com/retroenv/z80ios/internal/verification"
	"github.com/retroenv/z80ios/internal/writer"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	opts, err := cli.ParseDisasmFlags()
	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			zapp.PrintBanner(logger, opts.Quiet, "z80dis", version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	zapp.PrintBanner(logger, opts.Quiet, "z80dis", version, commit, date)

	if err := disasmFile(logger, opts); err != nil {
		logger.Error("Disassembling failed", log.Err(err))
		os.Exit(1)
	}
}

func disasmFile(logger *log.Logger, opts options.Disassembler) error {
	data, ch, err := loadImage(logger, opts)
	if err != nil {
		return err
	}

	dis := disasm.New(logger, ch)
	var lines []disasm.Line
	if opts.Count > 0 {
		lines = dis.Disassemble(opts.Org, opts.Count)
	} else {
		lines = dis.DisassembleRange(opts.Org, len(data))
	}

	var outputFile io.WriteCloser
	if opts.Output == "" {
		outputFile = nopCloser{os.Stdout}
	} else {
		outputFile, err = os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating file '%s': %w", opts.Output, err)
		}
	}

	w := writer.New(outputFile, writer.Options{
		HexComments:    opts.HexComments,
		OffsetComments: opts.OffsetComments,
	})
	if err := w.WriteCommentHeader(filepath.Base(opts.Input), opts.Org, len(data)); err != nil {
		_ = outputFile.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteListing(lines); err != nil {
		_ = outputFile.Close()
		return fmt.Errorf("writing listing: %w", err)
	}

	// bytes after the requested instruction count are kept as data
	consumed := 0
	for _, line := range lines {
		consumed += line.Instruction.Length
	}
	if consumed < len(data) {
		if err := w.BundleDataWrites(data[consumed:], nil); err != nil {
			_ = outputFile.Close()
			return fmt.Errorf("writing data: %w", err)
		}
	}
	if err := outputFile.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	return nil
}

// loadImage loads the input file into the RAM of a simulated target using the
// forced execution channel and verifies it.
func loadImage(logger *log.Logger, opts options.Disassembler) ([]byte, *channel.Channel, error) {
	target := sim.New()
	ch := channel.New(logger, bus.New(target))
	ch.Reset()

	data, err := loader.New(logger, ch).LoadFile(opts.Input, opts.Org)
	if err != nil {
		return nil, nil, fmt.Errorf("loading image: %w", err)
	}
	if err := verification.Verify(logger, ch, opts.Org, data); err != nil {
		return nil, nil, fmt.Errorf("verifying image: %w", err)
	}
	if faults := target.Faults(); len(faults) > 0 {
		return nil, nil, fmt.Errorf("simulated target reported %d faults, first: %s", len(faults), faults[0])
	}
	return data, ch, nil
}

// nopCloser wraps an io.Writer to add a no-op Close method
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
