// Package loader handles loading binary images into the target RAM.
package loader

import (
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"
)

const addressSpace = 0x10000

// Target is the memory write access used by the loader.
type Target interface {
	LoadHL(value uint16)
	WriteNext(value byte)
}

// FileReader reads complete files from a volume.
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

// Loader writes images into the target memory.
type Loader struct {
	logger *log.Logger
	target Target
}

// New creates a new loader.
func New(logger *log.Logger, target Target) *Loader {
	return &Loader{
		logger: logger,
		target: target,
	}
}

// Load writes data to consecutive addresses starting at address. The cursor of the target
// is loaded once and advanced by every written byte.
func (l *Loader) Load(address uint16, data []byte) error {
	if int(address)+len(data) > addressSpace {
		return fmt.Errorf("image of %d bytes does not fit at address $%04X", len(data), address)
	}
	if len(data) == 0 {
		return nil
	}

	l.target.LoadHL(address)
	for _, b := range data {
		l.target.WriteNext(b)
	}

	l.logger.Debug("Image loaded", log.Hex("address", address), log.Int("size", len(data)))
	return nil
}

// LoadFile reads a file of the host file system and loads it at address.
func (l *Loader) LoadFile(fileName string, address uint16) ([]byte, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("reading file '%s': %w", fileName, err)
	}
	if err := l.Load(address, data); err != nil {
		return nil, err
	}
	return data, nil
}

// LoadVolumeFile reads a file from a volume and loads it at address.
func (l *Loader) LoadVolumeFile(volume FileReader, name string, address uint16) ([]byte, error) {
	data, err := volume.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading file '%s': %w", name, err)
	}
	if err := l.Load(address, data); err != nil {
		return nil, err
	}
	return data, nil
}
