package sarc

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic is returned when a section signature does not match
	ErrBadMagic = errors.New("bad magic")
	// ErrBadByteOrder is returned for an unrecognised byte order mark
	ErrBadByteOrder = errors.New("bad byte order mark")
	// ErrBadHeaderLength is returned when a section declares an unexpected
	// header length
	ErrBadHeaderLength = errors.New("bad header length")
	// ErrLengthMismatch is returned when the declared file length differs
	// from the actual length
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrTruncated is returned when a section or payload extends past the
	// end of the data
	ErrTruncated = errors.New("truncated archive")
	// ErrDuplicateName is returned when two entries share a name
	ErrDuplicateName = errors.New("duplicate name")
	// ErrBadName is returned when saving a name that contains a NUL byte
	ErrBadName = errors.New("invalid name")
	// ErrBadPadding is returned when saving with a padding less than one
	ErrBadPadding = errors.New("invalid padding")
	// ErrTooLarge is returned when the archive cannot be represented
	ErrTooLarge = errors.New("archive too large")
)

// FormatError records which field of an archive failed validation.
type FormatError struct {
	Field  string
	Offset int
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("sarc: %s at offset %#x: %v", e.Field, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
