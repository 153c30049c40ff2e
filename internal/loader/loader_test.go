package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80ios/internal/bus"
	"github.com/retroenv/z80ios/internal/channel"
	"github.com/retroenv/z80ios/internal/sdcard"
	"github.com/retroenv/z80ios/internal/sim"
)

func newTestLoader(t *testing.T) (*Loader, *sim.Target) {
	t.Helper()
	logger := log.NewTestLogger(t)
	target := sim.New()
	ch := channel.New(logger, bus.New(target))
	ch.Reset()
	return New(logger, ch), target
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		address    uint16
		data       []byte
		errContain string
	}{
		{"load at zero", 0x0000, []byte{0x01, 0x02, 0x03, 0x04}, ""},
		{"load at end of memory", 0xFFFE, []byte{0xAA, 0xBB}, ""},
		{"empty image", 0x8000, nil, ""},
		{"image too large", 0xFFFF, []byte{0x01, 0x02}, "does not fit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, target := newTestLoader(t)

			err := l.Load(tt.address, tt.data)
			if tt.errContain != "" {
				assert.ErrorContains(t, err, tt.errContain)
				assert.Empty(t, target.Written())
				return
			}

			assert.NoError(t, err)
			for i, b := range tt.data {
				assert.Equal(t, b, target.Peek(tt.address+uint16(i)))
			}
			assert.Len(t, target.Written(), len(tt.data))
			assert.Empty(t, target.Faults())
		})
	}
}

func TestLoadFile(t *testing.T) {
	l, target := newTestLoader(t)

	fileName := filepath.Join(t.TempDir(), "boot.bin")
	assert.NoError(t, os.WriteFile(fileName, []byte{0xC3, 0x00, 0x01}, 0o644))

	data, err := l.LoadFile(fileName, 0x0100)
	assert.NoError(t, err)
	assert.Len(t, data, 3)
	assert.Equal(t, byte(0xC3), target.Peek(0x0100))

	_, err = l.LoadFile(filepath.Join(t.TempDir(), "missing.bin"), 0)
	assert.Error(t, err)
}

func TestLoadVolumeFile(t *testing.T) {
	l, target := newTestLoader(t)

	dir := t.TempDir()
	image := make([]byte, 100)
	image[99] = 0x76
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "AUTOBOOT.BIN"), image, 0o644))

	card := sdcard.New(log.NewTestLogger(t))
	assert.NoError(t, card.Mount(dir))

	data, err := l.LoadVolumeFile(card, "AUTOBOOT.BIN", 0x0000)
	assert.NoError(t, err)
	assert.Len(t, data, 100)
	assert.Equal(t, byte(0x76), target.Peek(99))

	_, err = l.LoadVolumeFile(card, "MISSING.BIN", 0x0000)
	assert.ErrorContains(t, err, "NO_FILE")
}
