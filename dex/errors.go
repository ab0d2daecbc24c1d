package dex

import (
	"errors"
	"fmt"
)

var (
	ErrNotDex            = errors.New("dex: not a dex file")
	ErrUnsupportedEndian = errors.New("dex: unsupported endianness")
	ErrOutOfBounds       = errors.New("dex: read out of bounds")
	ErrBadIndex          = errors.New("dex: index out of range")
	ErrTooDeep           = errors.New("dex: encoded values nested too deeply")
)

// ParseError reports where in the file a structure failed to decode.
type ParseError struct {
	Section string
	Offset  uint32
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dex: %s at 0x%x: %s: %v", e.Section, e.Offset, e.Message, e.Err)
	}
	return fmt.Sprintf("dex: %s at 0x%x: %s", e.Section, e.Offset, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }
