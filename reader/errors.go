package reader

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMode is returned for an access mode outside the four known values
	ErrInvalidMode = errors.New("invalid access mode")

	// ErrClosed is returned when a closed reader is used
	ErrClosed = errors.New("reader is closed")
)

// IndexError reports a requested index outside the logical length of the
// current mode. It is an expected outcome callers iterate against, not a
// defect.
type IndexError struct {
	// Index is the requested index.
	Index int

	// Length is the logical length the index was checked against.
	Length int

	// Reason optionally narrows down the failure.
	Reason string
}

func (e *IndexError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("index %d out of range (length %d): %s", e.Index, e.Length, e.Reason)
	}
	return fmt.Sprintf("index %d out of range (length %d)", e.Index, e.Length)
}
