package dataset

import "github.com/cocosip/go-dicom/pkg/dicom/transfer"

// compressedSyntaxes maps the compressed transfer syntaxes the parser cannot
// decode natively to the codec names reported in CompressedDataError.
var compressedSyntaxes = []struct {
	ts   *transfer.Syntax
	name string
}{
	{transfer.JPEGBaseline8Bit, "JPEG Baseline (Process 1)"},
	{transfer.JPEGProcess2_4, "JPEG Extended (Process 2 & 4)"},
	{transfer.JPEGLossless, "JPEG Lossless (Process 14)"},
	{transfer.JPEGLosslessSV1, "JPEG Lossless SV1"},
	{transfer.JPEGLSLossless, "JPEG-LS Lossless"},
	{transfer.JPEGLSNearLossless, "JPEG-LS Near-Lossless"},
	{transfer.JPEG2000Lossless, "JPEG 2000 Lossless"},
	{transfer.JPEG2000, "JPEG 2000"},
	{transfer.RLELossless, "RLE Lossless"},
}

// codecName resolves a transfer syntax UID to a codec name. Unlisted
// syntaxes report as "unknown codec".
func codecName(uid string) string {
	for _, entry := range compressedSyntaxes {
		if entry.ts.UID().UID() == uid {
			return entry.name
		}
	}
	return "unknown codec"
}
