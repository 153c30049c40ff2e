// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/z80ios/internal/config"
	"github.com/retroenv/z80ios/internal/options"
)

const maxDiskSet = 9

// ParseFlags parses the command line flags of the monitor.
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	var opts options.Program
	var org string
	readOptionFlags(flags, &opts, &org)

	usage := "usage: z80ios [options]"
	if err := flags.Parse(os.Args[1:]); err != nil {
		return opts, &UsageError{flags: flags, usage: usage}
	}
	if args := flags.Args(); len(args) > 0 {
		return opts, &UsageError{
			flags: flags,
			usage: usage,
			msg:   fmt.Sprintf("Unexpected argument %s, the monitor does not take positional arguments", args[0]),
		}
	}

	if err := normalizeOptions(&opts, org); err != nil {
		return opts, err
	}
	return opts, nil
}

// ParseDisasmFlags parses the command line flags of the offline disassembler.
func ParseDisasmFlags() (options.Disassembler, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	opts := options.NewDisassembler()
	var org string
	readDisasmOptionFlags(flags, &opts, &org)

	usage := "usage: z80dis [options] <file to disassemble>"
	var noHexComments, noOffsets bool
	flags.BoolVar(&noHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&noOffsets, "nooffsets", false, "do not output addresses in comments")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags, usage: usage}
	}
	if err := validateArgs(args); err != nil {
		return opts, err
	}
	opts.Input = args[0]

	// inverse logic for hex comments and offsets
	opts.HexComments = !noHexComments
	opts.OffsetComments = !noOffsets

	address, err := parseOrg(org)
	if err != nil {
		return opts, err
	}
	opts.Org = address

	if opts.Count < 0 {
		return opts, fmt.Errorf("invalid instruction count %d", opts.Count)
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	usage string
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage line and the flag defaults.
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("%s\n\n", e.usage)
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to disassemble, please pass the file to disassemble as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			msg: fmt.Sprintf("Only one file can be disassembled, found %d", len(args)),
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program, org string) error {
	address, err := parseOrg(org)
	if err != nil {
		return err
	}
	opts.Org = address

	if opts.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", opts.Baud)
	}
	if opts.DiskSet < 0 || opts.DiskSet > maxDiskSet {
		return fmt.Errorf("invalid disk set %d, valid range: 0-%d", opts.DiskSet, maxDiskSet)
	}
	return nil
}

// parseOrg parses a hexadecimal address with an optional $ or 0x prefix.
func parseOrg(s string) (uint16, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "$"), "0x")
	if digits == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(digits, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address '%s': %w", s, err)
	}
	return uint16(value), nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program, org *string) {
	flags.StringVar(&opts.Image, "image", "", "name of a binary image to load into the target RAM")
	flags.StringVar(&opts.TTY, "tty", "", "serial device of the operator console, the local terminal is used if no device given")
	flags.StringVar(&opts.SDDir, "sd", "", "directory that holds the SD card files")
	flags.StringVar(&opts.Script, "script", "", "Lua script to run instead of the interactive monitor")
	flags.StringVar(&opts.I2CBus, "i2c", config.DefaultI2CBus, "I2C bus of the real-time clock, the first bus is used if no bus given")
	flags.StringVar(org, "org", "0000", "load address of the image in hex")
	flags.BoolVar(&opts.Sim, "sim", false, "use the simulated target instead of the GPIO pins")
	flags.IntVar(&opts.Baud, "baud", config.DefaultBaudRate, "baud rate of the serial console")
	flags.IntVar(&opts.DiskSet, "diskset", config.DefaultDiskSet, "disk set to use (0-9)")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

func readDisasmOptionFlags(flags *flag.FlagSet, opts *options.Disassembler, org *string) {
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file, printed on console if no name given")
	flags.StringVar(org, "org", "0000", "address of the first byte of the image in hex")
	flags.IntVar(&opts.Count, "n", 0, "number of instructions to disassemble, the whole image if 0")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
