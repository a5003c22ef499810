package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is returned when a file cannot be decoded as DICOM
	ErrParse = errors.New("cannot parse DICOM file")

	// ErrNoPixelData is returned when a file carries no pixel data element
	ErrNoPixelData = errors.New("no pixel data")
)

// CompressedDataError reports pixel data stored in a compressed transfer
// syntax that the parser cannot decode natively. Callers may inspect Codec
// to decide whether an external decompression step is worth attempting.
type CompressedDataError struct {
	// Codec is the human-readable name of the compression scheme.
	Codec string

	// TransferSyntaxUID identifies the transfer syntax of the file.
	TransferSyntaxUID string
}

func (e *CompressedDataError) Error() string {
	return fmt.Sprintf("compressed pixel data (%s, transfer syntax %s)", e.Codec, e.TransferSyntaxUID)
}
