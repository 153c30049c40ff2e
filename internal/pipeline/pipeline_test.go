package pipeline

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80ios/internal/options"
)

type testConsole struct {
	in  io.Reader
	out bytes.Buffer
}

func (c *testConsole) Read(p []byte) (int, error) {
	return c.in.Read(p)
}

func (c *testConsole) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func createTempFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	fileName := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(fileName, data, 0o644))
	return fileName
}

func newTestPipeline(t *testing.T, opts options.Program, input string) (*Pipeline, *testConsole) {
	t.Helper()
	opts.Sim = true
	if opts.Baud == 0 {
		opts.Baud = 115200
	}

	p := New(log.NewTestLogger(t), opts)
	p.now = func() time.Time {
		return time.Date(2024, 2, 29, 12, 30, 0, 0, time.UTC)
	}
	con := &testConsole{in: strings.NewReader(input)}
	p.SetConsole(con)
	return p, con
}

func TestNew(t *testing.T) {
	p := New(log.NewTestLogger(t), options.Program{})

	assert.NotNil(t, p)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.now)
	assert.Nil(t, p.console)
}

func TestExecuteMonitor(t *testing.T) {
	dir := t.TempDir()
	image := createTempFile(t, dir, "boot.bin", []byte{0x21, 0x00, 0x90, 0x7E})
	createTempFile(t, dir, "DS2NAM.DAT", []byte("CP/M 3"))

	opts := options.Program{
		Parameters: options.Parameters{Image: image, SDDir: dir},
		Flags:      options.Flags{Org: 0x8000, DiskSet: 2},
	}
	p, con := newTestPipeline(t, opts, "U 8000,2\rT\rO\rQ\r")

	assert.NoError(t, p.Execute(context.Background()))

	out := con.out.String()
	assert.Contains(t, out, "LD HL,9000")
	assert.Contains(t, out, "LD A,(HL)")
	assert.Contains(t, out, "29/02/24 12:30:00  25 C")
	assert.Contains(t, out, "Disk Set 2 (CP/M 3)")
}

func TestExecuteScript(t *testing.T) {
	dir := t.TempDir()
	source := "poke(0x100, 0x42)\nprint(peek(0x100))\nprint(dis(0x100))"
	script := createTempFile(t, dir, "test.lua", []byte(source))

	opts := options.Program{
		Parameters: options.Parameters{Script: script},
	}
	p, con := newTestPipeline(t, opts, "")

	assert.NoError(t, p.Execute(context.Background()))
	assert.Equal(t, "66\r\nLD B,D\t257\r\n", con.out.String())
}

func TestExecuteErrors(t *testing.T) {
	dir := t.TempDir()
	image := createTempFile(t, dir, "big.bin", []byte{1, 2, 3})

	tests := []struct {
		name       string
		opts       options.Program
		errContain string
	}{
		{
			name: "image does not fit",
			opts: options.Program{
				Parameters: options.Parameters{Image: image},
				Flags:      options.Flags{Org: 0xFFFF},
			},
			errContain: "does not fit",
		},
		{
			name: "missing image",
			opts: options.Program{
				Parameters: options.Parameters{Image: filepath.Join(dir, "missing.bin")},
			},
			errContain: "loading image",
		},
		{
			name: "missing SD directory",
			opts: options.Program{
				Parameters: options.Parameters{SDDir: filepath.Join(dir, "missing")},
			},
			errContain: "mounting SD card",
		},
		{
			name: "missing script",
			opts: options.Program{
				Parameters: options.Parameters{Script: filepath.Join(dir, "missing.lua")},
			},
			errContain: "running session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPipeline(t, tt.opts, "Q\r")
			err := p.Execute(context.Background())
			assert.ErrorContains(t, err, tt.errContain)
		})
	}
}
