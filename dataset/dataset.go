// Package dataset parses a single DICOM file into a metadata mapping and a
// pixel buffer. Parsing is two-phase: metadata is read up front, pixel data
// is decoded lazily on first use and memoized.
package dataset

import (
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-dicom-reader/pixel"
)

// Dataset is one parsed DICOM file.
type Dataset struct {
	// Path is the file the dataset was read from.
	Path string

	meta Metadata

	pxLoaded bool
	px       *pixel.Buffer
	pxErr    error
}

// Parse reads the metadata of the file at path. Pixel data is not decoded
// until Pixels is called.
func Parse(path string) (*Dataset, error) {
	ds, err := safeParseFile(path, dicom.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrParse, path, err)
	}
	return &Dataset{Path: path, meta: extractMetadata(ds)}, nil
}

// Meta returns the metadata mapping of the file.
func (d *Dataset) Meta() Metadata { return d.meta }

// Pixels decodes the pixel payload into a buffer. A file with multiple
// frames yields a 3-D buffer, otherwise a 2-D one. The result, success or
// failure, is memoized. Pixel data in a compressed transfer syntax yields a
// *CompressedDataError naming the codec.
//
// The first sample of each pixel is reinterpreted as an unsigned 16-bit
// value; signed pixel representations are not sign-extended.
func (d *Dataset) Pixels() (*pixel.Buffer, error) {
	if d.pxLoaded {
		return d.px, d.pxErr
	}
	d.pxLoaded = true
	d.px, d.pxErr = d.decodePixels()
	return d.px, d.pxErr
}

func (d *Dataset) decodePixels() (*pixel.Buffer, error) {
	ds, err := safeParseFile(d.Path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrParse, d.Path, err)
	}

	elem, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", ErrNoPixelData, d.Path)
	}

	info, err := safePixelDataInfo(elem.Value)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrParse, d.Path, err)
	}
	if info.IsEncapsulated {
		uid := d.meta.GetString("TransferSyntaxUID")
		return nil, &CompressedDataError{Codec: codecName(uid), TransferSyntaxUID: uid}
	}
	if len(info.Frames) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPixelData, d.Path)
	}

	var samples []uint16
	rows, cols := 0, 0
	for _, fr := range info.Frames {
		native := fr.NativeData
		if native == nil {
			return nil, fmt.Errorf("%w %s: frame has no native data", ErrParse, d.Path)
		}
		if rows == 0 {
			rows, cols = native.Rows(), native.Cols()
			samples = make([]uint16, 0, len(info.Frames)*rows*cols)
		} else if native.Rows() != rows || native.Cols() != cols {
			return nil, fmt.Errorf("%w %s: frame size %dx%d does not match %dx%d",
				ErrParse, d.Path, native.Rows(), native.Cols(), rows, cols)
		}
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				px, err := native.GetPixel(c, r)
				if err != nil {
					return nil, fmt.Errorf("%w %s: %v", ErrParse, d.Path, err)
				}
				if len(px) == 0 {
					return nil, fmt.Errorf("%w %s: empty pixel sample", ErrParse, d.Path)
				}
				samples = append(samples, uint16(px[0]))
			}
		}
	}

	if len(info.Frames) > 1 {
		return pixel.NewBuffer3D(samples, len(info.Frames), rows, cols)
	}
	return pixel.NewBuffer2D(samples, rows, cols)
}

// safeParseFile converts the panics the dicom library emits on malformed
// input into errors.
func safeParseFile(path string, opts ...dicom.ParseOption) (ds dicom.Dataset, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return dicom.ParseFile(path, nil, opts...)
}

func safePixelDataInfo(v dicom.Value) (info dicom.PixelDataInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return dicom.MustGetPixelDataInfo(v), nil
}
