// Package script runs Lua scripts that automate monitor operations on the target.
//
// The following functions are available to scripts:
//
//	peek(address)         returns the byte at address
//	poke(address, value)  writes a byte
//	dis(address)          returns the disassembled instruction and the next address
//	reset()               resets the target CPU
//	print(...)            writes its arguments to the console
package script

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrogolib/log"
	lua "github.com/yuin/gopher-lua"
)

// Target is the target access used by scripts.
type Target interface {
	Reset()
	ReadByte(address uint16) byte
	WriteByte(address uint16, value byte)
}

// Disassembler decodes single instructions.
type Disassembler interface {
	DisassembleOne(address uint16) (string, uint16)
}

// Engine executes scripts.
type Engine struct {
	logger     *log.Logger
	target     Target
	dis        Disassembler
	out        io.Writer
	lineEnding string
}

// New returns a script engine. Output of print is written to out, terminated by lineEnding.
func New(logger *log.Logger, target Target, dis Disassembler, out io.Writer, lineEnding string) *Engine {
	return &Engine{
		logger:     logger,
		target:     target,
		dis:        dis,
		out:        out,
		lineEnding: lineEnding,
	}
}

// Run executes the script source. name is used in error messages.
func (e *Engine) Run(ctx context.Context, name, source string) error {
	L := e.newState(ctx)
	defer L.Close()

	e.logger.Debug("Running script", log.String("name", name))
	if err := L.DoString(source); err != nil {
		return fmt.Errorf("running script '%s': %w", name, err)
	}
	return nil
}

// RunFile executes a script file of the host file system.
func (e *Engine) RunFile(ctx context.Context, fileName string) error {
	L := e.newState(ctx)
	defer L.Close()

	e.logger.Debug("Running script", log.String("file", fileName))
	if err := L.DoFile(fileName); err != nil {
		return fmt.Errorf("running script file '%s': %w", fileName, err)
	}
	return nil
}

func (e *Engine) newState(ctx context.Context) *lua.LState {
	L := lua.NewState()
	L.SetContext(ctx)

	L.SetGlobal("peek", L.NewFunction(e.peek))
	L.SetGlobal("poke", L.NewFunction(e.poke))
	L.SetGlobal("dis", L.NewFunction(e.disassemble))
	L.SetGlobal("reset", L.NewFunction(e.reset))
	L.SetGlobal("print", L.NewFunction(e.print))
	return L
}

func checkAddress(L *lua.LState, n int) uint16 {
	address := L.CheckInt(n)
	if address < 0 || address > 0xFFFF {
		L.ArgError(n, "address out of range")
	}
	return uint16(address)
}

func (e *Engine) peek(L *lua.LState) int {
	address := checkAddress(L, 1)
	L.Push(lua.LNumber(e.target.ReadByte(address)))
	return 1
}

func (e *Engine) poke(L *lua.LState) int {
	address := checkAddress(L, 1)
	value := L.CheckInt(2)
	if value < 0 || value > 0xFF {
		L.ArgError(2, "value out of range")
	}
	e.target.WriteByte(address, byte(value))
	return 0
}

func (e *Engine) disassemble(L *lua.LState) int {
	address := checkAddress(L, 1)
	text, next := e.dis.DisassembleOne(address)
	L.Push(lua.LString(text))
	L.Push(lua.LNumber(next))
	return 2
}

func (e *Engine) reset(L *lua.LState) int {
	e.target.Reset()
	return 0
}

func (e *Engine) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	if _, err := fmt.Fprint(e.out, strings.Join(parts, "\t")+e.lineEnding); err != nil {
		L.RaiseError("writing output: %s", err)
	}
	return 0
}
