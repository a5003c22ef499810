package format

import "errors"

// ErrFormatNotFound is returned when no registered format matches
var ErrFormatNotFound = errors.New("format not found")
