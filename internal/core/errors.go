package core

import (
	"errors"
	"fmt"
)

// ErrorCode classifies fatal writer failures. The set is closed; every value
// carries a stable code and a human-readable description.
type ErrorCode int

const (
	ErrConfigInvalid ErrorCode = iota
	ErrRequiredValue
	ErrIllegalValue
	ErrWriteFile
	ErrWriteFileIO
	ErrSecurityNotEnough
	ErrCharset
	ErrRuntime
	ErrUnknown
)

var errorCodes = map[ErrorCode]struct {
	code        string
	description string
}{
	ErrConfigInvalid:     {"TxtFileWriter-00", "invalid configuration"},
	ErrRequiredValue:     {"TxtFileWriter-01", "missing required value"},
	ErrIllegalValue:      {"TxtFileWriter-02", "illegal value"},
	ErrWriteFile:         {"TxtFileWriter-03", "target file error while writing"},
	ErrWriteFileIO:       {"TxtFileWriter-04", "I/O error while writing"},
	ErrSecurityNotEnough: {"TxtFileWriter-05", "insufficient permission"},
	ErrCharset:           {"TxtFileWriter-06", "charset could not be used for writing"},
	ErrRuntime:           {"TxtFileWriter-07", "unexpected runtime failure"},
	ErrUnknown:           {"TxtFileWriter-999", "unknown error"},
}

// Code returns the stable code, e.g. "TxtFileWriter-02".
func (c ErrorCode) Code() string {
	if e, ok := errorCodes[c]; ok {
		return e.code
	}
	return errorCodes[ErrUnknown].code
}

// Description returns the human-readable description of the code.
func (c ErrorCode) Description() string {
	if e, ok := errorCodes[c]; ok {
		return e.description
	}
	return errorCodes[ErrUnknown].description
}

func (c ErrorCode) String() string {
	return fmt.Sprintf("Code:[%s], Description:[%s].", c.Code(), c.Description())
}

// Error is a coded failure raised while planning or running a write job.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Message != "" {
		msg += " - " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a coded error with a formatted message.
func NewError(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a coded error that wraps err.
func WrapError(code ErrorCode, err error, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return ErrUnknown, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
