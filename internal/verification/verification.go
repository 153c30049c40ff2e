// Package verification verifies that the target memory holds an expected image.
package verification

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80ios/internal/arch"
)

const maxLoggedMismatches = 10

// Verify reads len(expected) bytes starting at address back from mem and compares them
// with expected.
func Verify(logger *log.Logger, mem arch.Memory, address uint16, expected []byte) error {
	actual := make([]byte, len(expected))
	for i := range expected {
		actual[i] = mem.ReadByte(address + uint16(i))
	}

	if err := checkBufferEqual(logger, address, expected, actual); err != nil {
		return fmt.Errorf("verifying image at $%04X: %w", address, err)
	}
	logger.Debug("Image verified", log.Hex("address", address), log.Int("size", len(expected)))
	return nil
}

func checkBufferEqual(logger *log.Logger, address uint16, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	first := -1
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if first < 0 {
			first = i
		}
		if diffs <= maxLoggedMismatches {
			logger.Error("Offset mismatch",
				log.Hex("address", address+uint16(i)),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches, first at offset %d", diffs, first)
}
