package sdcard

import "fmt"

// Code is a file system result code.
type Code int

// Result codes.
const (
	DiskErr Code = iota + 1
	NotReady
	NoFile
	NotOpened
	NotEnabled
	NoFilesystem
)

var codeNames = map[Code]string{
	DiskErr:      "DISK_ERR",
	NotReady:     "NOT_READY",
	NoFile:       "NO_FILE",
	NotOpened:    "NOT_OPENED",
	NotEnabled:   "NOT_ENABLED",
	NoFilesystem: "NO_FILESYSTEM",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// Op is the operation that failed.
type Op int

// Operations.
const (
	OpMount Op = iota
	OpOpen
	OpRead
	OpWrite
	OpSeek
)

var opNames = map[Op]string{
	OpMount: "MOUNT",
	OpOpen:  "OPEN",
	OpRead:  "READ",
	OpWrite: "WRITE",
	OpSeek:  "SEEK",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}

// Error is returned by all card operations.
type Error struct {
	Op   Op
	Code Code
	File string
	Err  error // underlying host error, can be nil
}

func newError(op Op, code Code, file string, err error) *Error {
	return &Error{
		Op:   op,
		Code: code,
		File: file,
		Err:  err,
	}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("SD error %d (%s) on %s operation", e.Code, e.Code, e.Op)
	if e.File != "" {
		msg += " - File: " + e.File
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
