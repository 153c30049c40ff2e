package sdcard

import (
	"bytes"
	"fmt"
	"strings"
)

// OSNameFile returns the name of the file that holds the OS name of a disk set.
func OSNameFile(diskSet int) string {
	return fmt.Sprintf("DS%dNAM.DAT", diskSet)
}

// DiskName returns the file name of a virtual disk of a disk set.
func DiskName(diskSet, disk int) string {
	return fmt.Sprintf("DS%dN%02d.DSK", diskSet, disk)
}

// OSName returns the OS name of a disk set, read from the first segment of its name file.
// An empty name file results in an empty name.
func (c *Card) OSName(diskSet int) (string, error) {
	name := OSNameFile(diskSet)
	if err := c.Open(name); err != nil {
		return "", err
	}
	defer func() { _ = c.Close() }()

	buf := make([]byte, SegmentSize)
	n, err := c.ReadSegment(buf)
	if err != nil {
		return "", err
	}

	text := buf[:n]
	if i := bytes.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(string(text)), nil
}
