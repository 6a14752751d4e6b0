package yaz0

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic is returned when the stream does not start with "Yaz0"
	ErrBadMagic = errors.New("bad magic")
	// ErrTruncated is returned when the stream ends before the declared
	// size has been produced
	ErrTruncated = errors.New("truncated stream")
	// ErrBadDistance is returned when a back-reference points before the
	// start of the output
	ErrBadDistance = errors.New("back-reference before start of output")
	// ErrBadLevel is returned for a compression level outside 0..MaxLevel
	ErrBadLevel = errors.New("invalid compression level")
)

// FormatError records where in a Yaz0 stream decoding failed.
type FormatError struct {
	Field  string
	Offset int
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("yaz0: %s at offset %#x: %v", e.Field, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
