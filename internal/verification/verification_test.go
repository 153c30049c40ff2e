package verification

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type testMemory map[uint16]byte

func (m testMemory) ReadByte(address uint16) byte {
	return m[address]
}

func (m testMemory) ReadWord(address uint16) uint16 {
	return uint16(m[address])<<8 | uint16(m[address+1])
}

func TestVerify(t *testing.T) {
	mem := testMemory{0x8000: 0x01, 0x8001: 0x02, 0x8002: 0x03}
	logger := log.NewTestLogger(t)

	tests := []struct {
		name       string
		expected   []byte
		errContain string
	}{
		{"match", []byte{0x01, 0x02, 0x03}, ""},
		{"empty", nil, ""},
		{"single mismatch", []byte{0x01, 0xFF, 0x03}, "1 offset mismatches, first at offset 1"},
		{"multiple mismatches", []byte{0x00, 0x02, 0x00, 0x01}, "3 offset mismatches, first at offset 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(logger, mem, 0x8000, tt.expected)
			if tt.errContain == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errContain)
		})
	}
}

func TestCheckBufferEqualLengths(t *testing.T) {
	err := checkBufferEqual(log.NewTestLogger(t), 0, []byte{1}, []byte{1, 2})
	assert.ErrorContains(t, err, "mismatched lengths")
}
