package db

import (
	"errors"
	"fmt"
)

// Code is the small taxonomy every store failure is reduced to.
type Code uint8

const (
	CodeOK Code = iota
	// Nil or missing arguments, malformed ranges, conflicting open flags, use after release.
	// Raised before any native call and never worth retrying.
	CodeInvalidArgument
	// Storage-level faults (disk, corruption) reported by the engine.
	CodeIO
	// Normal end of iteration. Not a fault.
	CodeExhausted
	// Engine failures that could not be classified further.
	CodeStore
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeInvalidArgument:
		return "invalid argument"
	case CodeIO:
		return "io error"
	case CodeExhausted:
		return "exhausted"
	case CodeStore:
		return "store error"
	default:
		return fmt.Sprintf("code(%d)", uint8(c))
	}
}

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrIO              = errors.New("io error")
	ErrExhausted       = errors.New("no more entries")
	ErrStore           = errors.New("store error")

	ErrCursorClosed     = errors.New("cursor closed")
	ErrSnapshotReleased = errors.New("snapshot released")
	ErrBatchClosed      = errors.New("batch already committed or discarded")

	// ErrStopIteration can be returned from a ForEach visitor to end the scan early without failing it.
	ErrStopIteration = errors.New("stop iteration")

	errNilKey   = errors.New("nil key")
	errNilValue = errors.New("nil value")
)

func (c Code) sentinel() error {
	switch c {
	case CodeInvalidArgument:
		return ErrInvalidArgument
	case CodeIO:
		return ErrIO
	case CodeExhausted:
		return ErrExhausted
	case CodeStore:
		return ErrStore
	default:
		return nil
	}
}

// Error carries a classified failure together with the operation that produced it.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func NewError(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Code.String()
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's code, so errors.Is(err, ErrIO) works on classified errors.
func (e *Error) Is(target error) bool {
	sentinel := e.Code.sentinel()
	return sentinel != nil && target == sentinel
}

// CodeOf reports the taxonomy code of err.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified.Code
	}

	switch {
	case errors.Is(err, ErrExhausted):
		return CodeExhausted
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrCursorClosed),
		errors.Is(err, ErrSnapshotReleased),
		errors.Is(err, ErrBatchClosed):
		return CodeInvalidArgument
	case errors.Is(err, ErrIO):
		return CodeIO
	default:
		return CodeStore
	}
}

func CheckKey(op string, key []byte) error {
	if key == nil {
		return NewError(CodeInvalidArgument, op, errNilKey)
	}
	return nil
}

func CheckValue(op string, value []byte) error {
	if value == nil {
		return NewError(CodeInvalidArgument, op, errNilValue)
	}
	return nil
}

// CheckRange validates a [from, to) range: both or neither bound, and from strictly below to.
func CheckRange(op string, from, to []byte) error {
	switch {
	case from == nil && to == nil:
		return nil
	case from == nil || to == nil:
		return NewError(CodeInvalidArgument, op, errors.New("range needs both from and to, or neither"))
	case Compare(from, to) >= 0:
		return NewError(CodeInvalidArgument, op, fmt.Errorf("range start %x is not below end %x", from, to))
	}
	return nil
}
