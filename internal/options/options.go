// Package options contains the program options.
package options

// Parameters contains file and device path options.
type Parameters struct {
	Image  string `flag:"image" usage:"binary image to load into the target RAM at start"`
	TTY    string `flag:"tty" usage:"serial device of the operator console (default: local terminal)"`
	SDDir  string `flag:"sd" usage:"directory that holds the SD card files"`
	Script string `flag:"script" usage:"Lua script to run instead of the monitor"`
	I2CBus string `flag:"i2c" usage:"I2C bus of the real-time clock (default: first bus)"`
}

// Flags contains behavior options.
type Flags struct {
	Sim     bool   `flag:"sim" usage:"use the simulated target instead of the GPIO pins"`
	Org     uint16 `flag:"org" usage:"load address of the image" default:"0000"`
	Baud    int    `flag:"baud" usage:"baud rate of the serial console" default:"115200"`
	DiskSet int    `flag:"diskset" usage:"disk set 0-9" default:"0"`
	Debug   bool   `flag:"debug" usage:"enable debug logging"`
	Quiet   bool   `flag:"q" usage:"quiet mode"`
}

// Program options of the monitor.
type Program struct {
	Parameters
	Flags
}

// Disassembler options of the offline disassembler.
type Disassembler struct {
	Input  string `arg:"positional" usage:"binary image to disassemble"`
	Output string `flag:"o" usage:"output .asm file (default: stdout)"`
	Org    uint16 `flag:"org" usage:"address of the first byte of the image" default:"0000"`
	Count  int    `flag:"n" usage:"number of instructions to disassemble (default: whole image)"`
	Debug  bool   `flag:"debug" usage:"enable debug logging"`
	Quiet  bool   `flag:"q" usage:"quiet mode"`

	HexComments    bool // output opcode bytes as comments
	OffsetComments bool // output addresses as comments
}

// NewDisassembler returns disassembler options with default values.
func NewDisassembler() Disassembler {
	return Disassembler{
		HexComments:    true,
		OffsetComments: true,
	}
}
