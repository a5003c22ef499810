package pixel

import "fmt"

// Buffer holds decoded grayscale pixel samples for one image or for a stack
// of images. A 2-D buffer is a single image; a 3-D buffer is a stack of
// slices along the first axis. Samples are stored row-major, slice by slice.
type Buffer struct {
	data   []uint16
	slices int // 0 for a 2-D buffer
	rows   int
	cols   int
}

// NewBuffer2D creates a single-image buffer. The sample slice is retained,
// not copied, and must have rows*cols entries.
func NewBuffer2D(data []uint16, rows, cols int) (*Buffer, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: have %d samples, want %d", ErrInvalidDimensions, len(data), rows*cols)
	}
	return &Buffer{data: data, rows: rows, cols: cols}, nil
}

// NewBuffer3D creates a multi-slice buffer with slices*rows*cols samples.
func NewBuffer3D(data []uint16, slices, rows, cols int) (*Buffer, error) {
	if slices <= 0 || rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, slices, rows, cols)
	}
	if len(data) != slices*rows*cols {
		return nil, fmt.Errorf("%w: have %d samples, want %d", ErrInvalidDimensions, len(data), slices*rows*cols)
	}
	return &Buffer{data: data, slices: slices, rows: rows, cols: cols}, nil
}

// NDim returns 2 for a single image and 3 for a slice stack.
func (b *Buffer) NDim() int {
	if b.slices > 0 {
		return 3
	}
	return 2
}

// NumSlices returns the slice count of a 3-D buffer, or 1 for a 2-D buffer.
func (b *Buffer) NumSlices() int {
	if b.slices > 0 {
		return b.slices
	}
	return 1
}

// Rows returns the image height in pixels.
func (b *Buffer) Rows() int { return b.rows }

// Cols returns the image width in pixels.
func (b *Buffer) Cols() int { return b.cols }

// Len returns the total number of samples.
func (b *Buffer) Len() int { return len(b.data) }

// Data returns the underlying samples without copying.
func (b *Buffer) Data() []uint16 { return b.data }

// At returns the sample at row r, column c of a 2-D buffer.
func (b *Buffer) At(r, c int) uint16 {
	return b.data[r*b.cols+c]
}

// Slice returns slice i of a 3-D buffer as a 2-D view sharing the underlying
// samples. For a 2-D buffer only Slice(0) is valid and returns the buffer
// itself.
func (b *Buffer) Slice(i int) (*Buffer, error) {
	if b.slices == 0 {
		if i != 0 {
			return nil, fmt.Errorf("%w: slice %d of a single image", ErrSliceOutOfRange, i)
		}
		return b, nil
	}
	if i < 0 || i >= b.slices {
		return nil, fmt.Errorf("%w: slice %d of %d", ErrSliceOutOfRange, i, b.slices)
	}
	n := b.rows * b.cols
	return &Buffer{data: b.data[i*n : (i+1)*n], rows: b.rows, cols: b.cols}, nil
}

// Stack combines uniform buffers into one 3-D buffer. 2-D inputs contribute
// one slice each, 3-D inputs contribute all of theirs. All inputs must share
// the same row/column dimensions.
func Stack(buffers []*Buffer) (*Buffer, error) {
	if len(buffers) == 0 {
		return nil, fmt.Errorf("%w: no buffers to stack", ErrInvalidDimensions)
	}
	rows, cols := buffers[0].rows, buffers[0].cols
	total := 0
	for _, buf := range buffers {
		if buf.rows != rows || buf.cols != cols {
			return nil, fmt.Errorf("%w: %dx%d does not match %dx%d",
				ErrDimensionMismatch, buf.rows, buf.cols, rows, cols)
		}
		total += buf.NumSlices()
	}
	data := make([]uint16, 0, total*rows*cols)
	for _, buf := range buffers {
		data = append(data, buf.data...)
	}
	return &Buffer{data: data, slices: total, rows: rows, cols: cols}, nil
}
