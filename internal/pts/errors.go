package pts

import (
	"errors"
	"fmt"
)

var (
	// Fatal: the parse aborts and no session is returned.
	ErrInvalidFormat      = errors.New("invalid session file")
	ErrUnsupportedCipher  = errors.New("unsupported cipher type")
	ErrKeyDerivation      = errors.New("cipher key derivation failed")
	ErrUnsupportedVersion = errors.New("unsupported session version")

	// Local: a read or candidate block that fails these is treated as absent.
	ErrOutOfBounds   = errors.New("read out of bounds")
	ErrMalformedTree = errors.New("malformed block tree")
)

// FormatError carries the context of a fatal decode failure.
type FormatError struct {
	Err      error
	Offset   int
	Expected string
	Actual   string
}

// Error describes the failure and where it happened.
func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%v at offset 0x%x", e.Err, e.Offset)
	if e.Expected != "" || e.Actual != "" {
		msg += fmt.Sprintf(": expected %s, got %s", e.Expected, e.Actual)
	}
	return msg
}

// Unwrap returns the sentinel error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErr(err error, offset int, expected, actual string) error {
	return &FormatError{Err: err, Offset: offset, Expected: expected, Actual: actual}
}

// WarningKind classifies a recoverable irregularity surfaced to the caller.
type WarningKind int

const (
	WarnMalformedTree WarningKind = iota + 1
)

// Warning is a non-fatal signal raised while building or reading the tree.
type Warning struct {
	Kind   WarningKind
	Offset uint32
	Reason string
}

// String renders the warning for logs and session output.
func (w Warning) String() string {
	switch w.Kind {
	case WarnMalformedTree:
		return fmt.Sprintf("%v at offset 0x%x: %s", ErrMalformedTree, w.Offset, w.Reason)
	default:
		return fmt.Sprintf("warning at offset 0x%x: %s", w.Offset, w.Reason)
	}
}
