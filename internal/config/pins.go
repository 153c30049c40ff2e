package config

// Physical pin assignment of the controller lines, named as the host GPIO driver
// registers them. The Z80-MBC2 board function of each line is noted on the right.
const (
	PinClock     = "GPIO4"  // Z80 CLK
	PinReset     = "GPIO17" // Z80 RESET_, active low
	PinRAMEnable = "GPIO27" // RAM CE2, active high, low forces the RAM into HiZ

	PinD0 = "GPIO5" // Z80 data bus
	PinD1 = "GPIO6"
	PinD2 = "GPIO12"
	PinD3 = "GPIO13"
	PinD4 = "GPIO16"
	PinD5 = "GPIO19"
	PinD6 = "GPIO20"
	PinD7 = "GPIO21"
)

// PinMap names the GPIO lines used for the Z80 bus.
type PinMap struct {
	Clock     string
	Reset     string
	RAMEnable string
	Data      [8]string // D0 first
}

// DefaultPinMap returns the pin assignment defined by the Pin constants.
func DefaultPinMap() PinMap {
	return PinMap{
		Clock:     PinClock,
		Reset:     PinReset,
		RAMEnable: PinRAMEnable,
		Data:      [8]string{PinD0, PinD1, PinD2, PinD3, PinD4, PinD5, PinD6, PinD7},
	}
}
