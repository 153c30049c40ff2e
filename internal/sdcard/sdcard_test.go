package sdcard

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func newTestCard(t *testing.T, files map[string][]byte) *Card {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		assert.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	c := New(log.NewTestLogger(t))
	assert.NoError(t, c.Mount(dir))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sdError(t *testing.T, err error) *Error {
	t.Helper()
	var sdErr *Error
	assert.True(t, errors.As(err, &sdErr))
	return sdErr
}

func TestMount(t *testing.T) {
	c := New(log.NewTestLogger(t))

	err := c.Mount(filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, NotReady, sdError(t, err).Code)

	file := filepath.Join(t.TempDir(), "image.img")
	assert.NoError(t, os.WriteFile(file, nil, 0o644))
	err = c.Mount(file)
	assert.Equal(t, NoFilesystem, sdError(t, err).Code)
}

func TestOpenErrors(t *testing.T) {
	c := New(log.NewTestLogger(t))
	err := c.Open("BOOT.BIN")
	assert.Equal(t, NotEnabled, sdError(t, err).Code)

	c = newTestCard(t, nil)
	err = c.Open("BOOT.BIN")
	assert.Equal(t, "SD error 3 (NO_FILE) on OPEN operation - File: BOOT.BIN", err.Error())

	_, err = c.ReadSegment(make([]byte, SegmentSize))
	assert.Equal(t, "SD error 4 (NOT_OPENED) on READ operation", err.Error())
}

func TestReadSegments(t *testing.T) {
	data := make([]byte, SegmentSize*2+5)
	for i := range data {
		data[i] = byte(i)
	}
	c := newTestCard(t, map[string][]byte{"BOOT.BIN": data})

	assert.NoError(t, c.Open("BOOT.BIN"))
	buf := make([]byte, SegmentSize)

	counts := []int{SegmentSize, SegmentSize, 5, 0}
	for _, expected := range counts {
		n, err := c.ReadSegment(buf)
		assert.NoError(t, err)
		assert.Equal(t, expected, n)
	}

	read, err := c.ReadFile("BOOT.BIN")
	assert.NoError(t, err)
	assert.Equal(t, data, read)
}

func TestSeekAndWrite(t *testing.T) {
	disk := make([]byte, SectorSize*2)
	c := newTestCard(t, map[string][]byte{DiskName(0, 1): disk})

	assert.NoError(t, c.Open("DS0N01.DSK"))
	assert.NoError(t, c.Seek(1))

	segment := bytes.Repeat([]byte{0xE5}, SegmentSize)
	n, err := c.WriteSegment(segment)
	assert.NoError(t, err)
	assert.Equal(t, SegmentSize, n)
	_, err = c.WriteSegment(nil)
	assert.NoError(t, err)

	assert.NoError(t, c.Seek(1))
	buf := make([]byte, SegmentSize)
	n, err = c.ReadSegment(buf)
	assert.NoError(t, err)
	assert.Equal(t, SegmentSize, n)
	assert.Equal(t, segment, buf)

	// writes do not extend the file
	assert.NoError(t, c.Seek(1))
	for range SectorSize / SegmentSize {
		_, err = c.ReadSegment(buf)
		assert.NoError(t, err)
	}
	n, err = c.WriteSegment(segment)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOSName(t *testing.T) {
	c := newTestCard(t, map[string][]byte{
		"DS0NAM.DAT": []byte("CP/M 2.2\x00garbage"),
		"DS1NAM.DAT": []byte("QP/M 2.71\r\n"),
	})

	name, err := c.OSName(0)
	assert.NoError(t, err)
	assert.Equal(t, "CP/M 2.2", name)

	name, err = c.OSName(1)
	assert.NoError(t, err)
	assert.Equal(t, "QP/M 2.71", name)

	_, err = c.OSName(2)
	assert.Equal(t, NoFile, sdError(t, err).Code)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "DS2NAM.DAT", OSNameFile(2))
	assert.Equal(t, "DS1N07.DSK", DiskName(1, 7))
}

func TestOpenAfterFailedClose(t *testing.T) {
	c := newTestCard(t, map[string][]byte{
		"A.BIN": []byte("first"),
		"B.BIN": []byte("second"),
	})

	assert.NoError(t, c.Open("A.BIN"))
	// closing the handle behind the card makes its own close fail
	assert.NoError(t, c.file.Close())

	assert.NoError(t, c.Open("B.BIN"))
	buf := make([]byte, SegmentSize)
	n, err := c.ReadSegment(buf)
	assert.NoError(t, err)
	assert.Equal(t, "second", string(buf[:n]))

	assert.NoError(t, c.file.Close())
	assert.NoError(t, c.Mount(c.root))
	assert.True(t, c.file == nil)
}
