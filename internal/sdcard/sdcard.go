// Package sdcard implements the file access of the monitor on the SD card volume.
// Files are read and written in segments of 32 bytes, 16 segments form a 512 byte sector.
// The volume is a directory of the host file system.
package sdcard

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
)

// Segment and sector sizes in bytes.
const (
	SegmentSize = 32
	SectorSize  = 512
)

// Card is a mounted SD card volume with at most one open file.
type Card struct {
	logger *log.Logger

	root     string
	mounted  bool
	file     *os.File
	fileName string
}

// New returns an unmounted card.
func New(logger *log.Logger) *Card {
	return &Card{logger: logger}
}

// Mount mounts the volume stored in dir.
func (c *Card) Mount(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return newError(OpMount, NotReady, "", err)
	case err != nil:
		return newError(OpMount, DiskErr, "", err)
	case !info.IsDir():
		return newError(OpMount, NoFilesystem, "", nil)
	}

	c.closePrevious()
	c.root = dir
	c.mounted = true
	c.logger.Debug("SD volume mounted", log.String("dir", dir))
	return nil
}

// Open opens an existing file for reading and writing. A previously opened file is closed.
func (c *Card) Open(name string) error {
	if !c.mounted {
		return newError(OpOpen, NotEnabled, name, nil)
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return newError(OpOpen, NoFile, name, nil)
	}
	c.closePrevious()

	file, err := os.OpenFile(filepath.Join(c.root, name), os.O_RDWR, 0)
	if errors.Is(err, fs.ErrPermission) {
		file, err = os.Open(filepath.Join(c.root, name))
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return newError(OpOpen, NoFile, name, err)
	case err != nil:
		return newError(OpOpen, DiskErr, name, err)
	}

	c.file = file
	c.fileName = name
	return nil
}

// ReadSegment reads the next segment of the open file into buf, which must hold
// SegmentSize bytes. A count below SegmentSize means the end of the file was reached.
func (c *Card) ReadSegment(buf []byte) (int, error) {
	if c.file == nil {
		return 0, newError(OpRead, NotOpened, "", nil)
	}

	n, err := io.ReadFull(c.file, buf[:SegmentSize])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, newError(OpRead, DiskErr, c.fileName, err)
	}
	return n, nil
}

// WriteSegment writes a segment at the current position of the open file.
// The file is not extended, writing stops at its end. Passing a nil buffer finalizes
// the write operation.
func (c *Card) WriteSegment(buf []byte) (int, error) {
	if c.file == nil {
		return 0, newError(OpWrite, NotOpened, "", nil)
	}
	if buf == nil {
		if err := c.file.Sync(); err != nil {
			return 0, newError(OpWrite, DiskErr, c.fileName, err)
		}
		return 0, nil
	}

	info, err := c.file.Stat()
	if err != nil {
		return 0, newError(OpWrite, DiskErr, c.fileName, err)
	}
	pos, err := c.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, newError(OpWrite, DiskErr, c.fileName, err)
	}

	toWrite := min(int64(SegmentSize), int64(len(buf)), max(info.Size()-pos, 0))
	n, err := c.file.Write(buf[:toWrite])
	if err != nil {
		return n, newError(OpWrite, DiskErr, c.fileName, err)
	}
	return n, nil
}

// Seek sets the position of the open file to the start of the given sector.
func (c *Card) Seek(sector uint16) error {
	if c.file == nil {
		return newError(OpSeek, NotOpened, "", nil)
	}
	if _, err := c.file.Seek(int64(sector)<<9, io.SeekStart); err != nil {
		return newError(OpSeek, DiskErr, c.fileName, err)
	}
	return nil
}

// closePrevious closes a file left open by an earlier operation.
func (c *Card) closePrevious() {
	name := c.fileName
	if err := c.Close(); err != nil {
		c.logger.Warn("Closing previous file failed", log.String("file", name), log.Err(err))
	}
}

// Close closes the open file.
func (c *Card) Close() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	c.fileName = ""
	if err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	return nil
}

// ReadFile opens name and reads it completely segment by segment.
func (c *Card) ReadFile(name string) ([]byte, error) {
	if err := c.Open(name); err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()

	var data []byte
	buf := make([]byte, SegmentSize)
	for {
		n, err := c.ReadSegment(buf)
		if err != nil {
			return nil, err
		}
		data = append(data, buf[:n]...)
		if n < SegmentSize {
			return data, nil
		}
	}
}
