// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrogolib/log"
)

// Defaults used when the corresponding option is not given.
const (
	DefaultBaudRate   = 115200
	DefaultI2CBus     = "" // first bus found by the host driver
	DefaultDiskSet    = 0
	DefaultDumpLength = 128
	DefaultListLength = 16
)

// RTCAddress is the I2C address of the DS3231 real-time clock.
const RTCAddress = 0x68

// CreateLogger creates a logger for the monitor. Debug logging includes every
// bus session, quiet mode only reports errors.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
