package hostlink

import (
	"errors"
	"fmt"
)

// Errors reported in ParseResult when a frame is dropped.
var (
	ErrFrameLength    = errors.New("invalid frame length")
	ErrFrameSeq       = errors.New("invalid frame seq")
	ErrFrameCRC       = errors.New("frame crc mismatch")
	ErrFrameTrailer   = errors.New("missing frame trailer")
	ErrFrameDuplicate = errors.New("duplicated frame")
)

// UnknownSchemeError is returned by OpenPort for unsupported URLs.
type UnknownSchemeError struct {
	Scheme string
}

// Error implements error.
func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("unknown host port scheme %q", e.Scheme)
}
