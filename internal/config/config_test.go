package config

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDefaultPinMapUniqueLines(t *testing.T) {
	m := DefaultPinMap()

	seen := map[string]bool{}
	lines := append([]string{m.Clock, m.Reset, m.RAMEnable}, m.Data[:]...)
	for _, line := range lines {
		assert.NotEmpty(t, line)
		assert.False(t, seen[line], "line assigned twice: "+line)
		seen[line] = true
	}
	assert.Equal(t, 11, len(seen))
}

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(false, false))
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
}
