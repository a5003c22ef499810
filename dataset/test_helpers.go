package dataset

import "github.com/cocosip/go-dicom-reader/pixel"

// FromBuffer builds a dataset around an already-decoded pixel buffer. It is
// meant for tests and for callers that obtain pixel data outside the normal
// parse path.
func FromBuffer(path string, meta Metadata, buf *pixel.Buffer) *Dataset {
	if meta == nil {
		meta = Metadata{}
	}
	return &Dataset{Path: path, meta: meta, pxLoaded: true, px: buf}
}

// FromError builds a dataset whose pixel decode fails with err. Test helper.
func FromError(path string, meta Metadata, err error) *Dataset {
	if meta == nil {
		meta = Metadata{}
	}
	return &Dataset{Path: path, meta: meta, pxLoaded: true, pxErr: err}
}
