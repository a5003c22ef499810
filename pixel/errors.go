package pixel

import "errors"

var (
	// ErrInvalidDimensions is returned when buffer dimensions do not match the sample count
	ErrInvalidDimensions = errors.New("invalid buffer dimensions")

	// ErrDimensionMismatch is returned when stacking buffers of different sizes
	ErrDimensionMismatch = errors.New("buffer dimension mismatch")

	// ErrSliceOutOfRange is returned when a slice index is outside the buffer
	ErrSliceOutOfRange = errors.New("slice index out of range")
)
