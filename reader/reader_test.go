package reader

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cocosip/go-dicom-reader/dataset"
	"github.com/cocosip/go-dicom-reader/dcmtk"
	"github.com/cocosip/go-dicom-reader/pixel"
	"github.com/cocosip/go-dicom-reader/progress"
	"github.com/cocosip/go-dicom-reader/series"
)

func buf2d(t *testing.T, samples []uint16, rows, cols int) *pixel.Buffer {
	t.Helper()
	buf, err := pixel.NewBuffer2D(samples, rows, cols)
	require.NoError(t, err)
	return buf
}

func buf3d(t *testing.T, samples []uint16, slices, rows, cols int) *pixel.Buffer {
	t.Helper()
	buf, err := pixel.NewBuffer3D(samples, slices, rows, cols)
	require.NoError(t, err)
	return buf
}

func item(t *testing.T, path, uid string, instance int, buf *pixel.Buffer) *dataset.Dataset {
	t.Helper()
	return dataset.FromBuffer(path, dataset.Metadata{
		"SeriesInstanceUID": []string{uid},
		"InstanceNumber":    []int{instance},
	}, buf)
}

// catalog23 builds a two-series catalog with sizes [2, 3].
func catalog23(t *testing.T) []*series.Series {
	t.Helper()
	px := func(v uint16) *pixel.Buffer { return buf2d(t, []uint16{v, v, v, v}, 2, 2) }
	return []*series.Series{
		series.New("1.1",
			item(t, "s0i0", "1.1", 1, px(10)),
			item(t, "s0i1", "1.1", 2, px(11)),
		),
		series.New("2.2",
			item(t, "s1i0", "2.2", 1, px(20)),
			item(t, "s1i1", "2.2", 2, px(21)),
			item(t, "s1i2", "2.2", 3, px(22)),
		),
	}
}

// dirReader builds a directory-sourced reader with a stubbed discovery
// routine that counts invocations.
func dirReader(mode Mode, catalog []*series.Series, calls *int) *Reader {
	return &Reader{
		path:  "/data/study",
		isDir: true,
		mode:  mode,
		ind:   progress.NopIndicator{},
		log:   zerolog.Nop(),
		discover: func(dir string, ind progress.Indicator) ([]*series.Series, error) {
			*calls++
			return catalog, nil
		},
	}
}

// fileReader builds a reader whose single-file source is already loaded.
func fileReader(mode Mode, data *pixel.Buffer, meta dataset.Metadata, catalog []*series.Series, calls *int) *Reader {
	r := dirReader(mode, catalog, calls)
	r.isDir = false
	r.path = "/data/scan.dcm"
	r.loaded = true
	r.data = data
	r.meta = meta
	return r
}

func TestSingleImageMultiSlice(t *testing.T) {
	calls := 0
	data := buf3d(t, make([]uint16, 4*6), 4, 2, 3)
	meta := dataset.Metadata{"Modality": []string{"MR"}}
	r := fileReader(SingleImage, data, meta, nil, &calls)

	n, err := r.Len()
	require.NoError(t, err)
	require.Equal(t, 4, n)

	for i := 0; i < 4; i++ {
		sl, m, err := r.Data(i)
		require.NoError(t, err)
		require.Equal(t, 2, sl.NDim())
		require.Equal(t, "MR", m.GetString("Modality"))
	}

	_, _, err = r.Data(4)
	var idxErr *IndexError
	require.ErrorAs(t, err, &idxErr)
	require.Equal(t, 4, idxErr.Index)
	require.Equal(t, 4, idxErr.Length)

	_, _, err = r.Data(-1)
	require.ErrorAs(t, err, &idxErr)

	require.Zero(t, calls, "single-image mode must not resolve series")
}

func TestSingleImageSingleSlice(t *testing.T) {
	calls := 0
	data := buf2d(t, []uint16{1, 2, 3, 4}, 2, 2)
	r := fileReader(SingleImage, data, dataset.Metadata{}, nil, &calls)

	n, err := r.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, _, err := r.Data(0)
	require.NoError(t, err)
	require.Same(t, data, got)

	_, _, err = r.Data(1)
	var idxErr *IndexError
	require.ErrorAs(t, err, &idxErr)
	require.Contains(t, idxErr.Error(), "only one slice")

	require.Zero(t, calls)
}

func TestMultiImageOverDirectory(t *testing.T) {
	calls := 0
	r := dirReader(MultiImage, catalog23(t), &calls)

	n, err := r.Len()
	require.NoError(t, err)
	require.Equal(t, 5, n)

	// items resolve in catalog order, series concatenated
	wantFirstSample := []uint16{10, 11, 20, 21, 22}
	for i, want := range wantFirstSample {
		buf, m, err := r.Data(i)
		require.NoError(t, err)
		require.Equal(t, want, buf.At(0, 0), "item %d", i)
		wantUID := "1.1"
		if i >= 2 {
			wantUID = "2.2"
		}
		require.Equal(t, wantUID, m.GetString("SeriesInstanceUID"), "item %d", i)
	}

	_, _, err = r.Data(5)
	var idxErr *IndexError
	require.ErrorAs(t, err, &idxErr)
	require.Equal(t, 5, idxErr.Length)
}

func TestMultiImageFastPath(t *testing.T) {
	calls := 0
	data := buf3d(t, make([]uint16, 3*4), 3, 2, 2)
	r := fileReader(MultiImage, data, dataset.Metadata{"Modality": []string{"CT"}}, nil, &calls)

	n, err := r.Len()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	sl, m, err := r.Data(0)
	require.NoError(t, err)
	require.Equal(t, 2, sl.NDim())
	require.Equal(t, "CT", m.GetString("Modality"))
	require.Zero(t, calls, "index 0 on a multi-slice file must not resolve series")
}

func TestVolumeModesOverDirectory(t *testing.T) {
	for _, mode := range []Mode{SingleVolume, MultiVolume} {
		t.Run(mode.String(), func(t *testing.T) {
			calls := 0
			r := dirReader(mode, catalog23(t), &calls)

			n, err := r.Len()
			require.NoError(t, err)
			require.Equal(t, 2, n)

			vol0, m0, err := r.Data(0)
			require.NoError(t, err)
			require.Equal(t, 3, vol0.NDim())
			require.Equal(t, 2, vol0.NumSlices())
			require.Equal(t, "1.1", m0.GetString("SeriesInstanceUID"))

			vol1, m1, err := r.Data(1)
			require.NoError(t, err)
			require.Equal(t, 3, vol1.NumSlices())
			require.Equal(t, "2.2", m1.GetString("SeriesInstanceUID"))

			_, _, err = r.Data(2)
			var idxErr *IndexError
			require.ErrorAs(t, err, &idxErr)
		})
	}
}

func TestVolumeModeAsymmetry(t *testing.T) {
	// A loaded multi-slice buffer counts as one volume in single-volume
	// mode, while multi-volume mode always counts series.
	data := buf3d(t, make([]uint16, 2*4), 2, 2, 2)

	calls := 0
	single := fileReader(SingleVolume, data, dataset.Metadata{}, catalog23(t), &calls)
	n, err := single.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Zero(t, calls)

	multi := fileReader(MultiVolume, data, dataset.Metadata{}, catalog23(t), &calls)
	n, err = multi.Len()
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 1, calls)

	// index 0 still serves the loaded buffer directly
	vol, _, err := multi.Data(0)
	require.NoError(t, err)
	require.Same(t, data, vol)
}

func TestDiscoveryRunsOnce(t *testing.T) {
	calls := 0
	r := dirReader(MultiImage, catalog23(t), &calls)

	n1, err := r.Len()
	require.NoError(t, err)
	n2, err := r.Len()
	require.NoError(t, err)
	require.Equal(t, n1, n2)

	b1, _, err := r.Data(3)
	require.NoError(t, err)
	b2, _, err := r.Data(3)
	require.NoError(t, err)
	require.Same(t, b1, b2)

	require.Equal(t, 1, calls, "discovery must be memoized")
}

func TestLazyPromotion(t *testing.T) {
	calls := 0
	catalog := catalog23(t)
	r := dirReader(SingleImage, catalog, &calls)
	require.Zero(t, calls, "open must not touch the directory")

	// first query promotes series[0].Item(0)
	n, err := r.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 1, calls)

	meta, err := r.FileMeta()
	require.NoError(t, err)
	require.Equal(t, "1.1", meta.GetString("SeriesInstanceUID"))

	buf, _, err := r.Data(0)
	require.NoError(t, err)
	require.Equal(t, uint16(10), buf.At(0, 0))
	require.Equal(t, 1, calls)
}

func TestMetaResolution(t *testing.T) {
	calls := 0
	r := dirReader(MultiImage, catalog23(t), &calls)

	m, err := r.Meta(3)
	require.NoError(t, err)
	require.Equal(t, "2.2", m.GetString("SeriesInstanceUID"))

	_, err = r.Meta(5)
	var idxErr *IndexError
	require.ErrorAs(t, err, &idxErr)

	// unindexed metadata is the promoted file metadata, regardless of mode
	fm, err := r.FileMeta()
	require.NoError(t, err)
	require.Equal(t, "1.1", fm.GetString("SeriesInstanceUID"))
}

func TestMetaSingleImageIgnoresIndex(t *testing.T) {
	calls := 0
	data := buf3d(t, make([]uint16, 3*4), 3, 2, 2)
	meta := dataset.Metadata{"Modality": []string{"MR"}}
	r := fileReader(SingleImage, data, meta, nil, &calls)

	// all slices of one file share the file metadata
	for _, i := range []int{0, 2, 99} {
		m, err := r.Meta(i)
		require.NoError(t, err)
		require.Equal(t, "MR", m.GetString("Modality"))
	}
}

func TestInvalidMode(t *testing.T) {
	calls := 0
	r := fileReader(Mode(42), buf2d(t, []uint16{0}, 1, 1), dataset.Metadata{}, nil, &calls)

	_, err := r.Len()
	require.ErrorIs(t, err, ErrInvalidMode)

	_, _, err = r.Data(0)
	require.ErrorIs(t, err, ErrInvalidMode)

	_, err = r.Meta(0)
	require.ErrorIs(t, err, ErrInvalidMode)

	_, err = Open(t.TempDir(), Mode(42))
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestOpenInvalidProgressConfig(t *testing.T) {
	_, err := Open(t.TempDir(), SingleImage, WithProgress(progress.With(nil)))
	require.ErrorIs(t, err, progress.ErrInvalidConfig)
}

func TestOpenMissingPath(t *testing.T) {
	_, err := Open("/no/such/path", SingleImage)
	require.Error(t, err)
}

func TestOpenDirectoryIsLazy(t *testing.T) {
	// An empty directory opens fine; nothing is read until a query runs.
	r, err := Open(t.TempDir(), MultiImage, WithProgress(progress.Off()))
	require.NoError(t, err)
	defer r.Close()
	require.False(t, r.loaded)
	require.False(t, r.seriesResolved)
}

func TestClose(t *testing.T) {
	calls := 0
	r := dirReader(MultiImage, catalog23(t), &calls)
	_, err := r.Len()
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "close must be idempotent")

	_, err = r.Len()
	require.ErrorIs(t, err, ErrClosed)
	_, _, err = r.Data(0)
	require.ErrorIs(t, err, ErrClosed)
	_, err = r.FileMeta()
	require.ErrorIs(t, err, ErrClosed)
}

// recoveryReader builds a single-file reader primed for openFile, with all
// recovery collaborators stubbed.
func recoveryReader(parse func(string) (*dataset.Dataset, error)) *Reader {
	return &Reader{
		path:  "/data/compressed.dcm",
		mode:  SingleImage,
		ind:   progress.NopIndicator{},
		log:   zerolog.Nop(),
		parse: parse,
	}
}

func TestRecoverySucceeds(t *testing.T) {
	orig := &dataset.CompressedDataError{Codec: "JPEG Lossless (Process 14)", TransferSyntaxUID: "1.2.840.10008.1.2.4.57"}
	good := buf2d(t, []uint16{7, 7, 7, 7}, 2, 2)

	located := ""
	decompressed := ""
	r := recoveryReader(func(path string) (*dataset.Dataset, error) {
		if path == "/data/compressed.dcm" {
			return dataset.FromError(path, dataset.Metadata{}, orig), nil
		}
		return dataset.FromBuffer(path, dataset.Metadata{"Modality": []string{"MR"}}, good), nil
	})
	r.locateTool = func(extra ...string) (string, error) {
		located = "/opt/dcmtk/bin/dcmdjpeg"
		return located, nil
	}
	r.decompress = func(exe, src string) (string, error) {
		require.Equal(t, located, exe)
		require.Equal(t, "/data/compressed.dcm", src)
		decompressed = src + ".raw"
		return decompressed, nil
	}

	require.NoError(t, r.openFile())
	require.True(t, r.loaded)

	buf, _, err := r.Data(0)
	require.NoError(t, err)
	require.Same(t, good, buf)
	require.Equal(t, "/data/compressed.dcm.raw", decompressed)
}

func TestRecoveryNoTool(t *testing.T) {
	orig := &dataset.CompressedDataError{Codec: "JPEG Baseline (Process 1)", TransferSyntaxUID: "1.2.840.10008.1.2.4.50"}
	r := recoveryReader(func(path string) (*dataset.Dataset, error) {
		return dataset.FromError(path, dataset.Metadata{}, orig), nil
	})
	r.locateTool = func(extra ...string) (string, error) {
		return "", dcmtk.ErrToolNotFound
	}

	err := r.openFile()
	require.Error(t, err)
	var compressed *dataset.CompressedDataError
	require.ErrorAs(t, err, &compressed)
	require.Same(t, orig, compressed, "original diagnostic must be preserved")
}

func TestRecoveryToolFails(t *testing.T) {
	orig := &dataset.CompressedDataError{Codec: "JPEG Lossless SV1", TransferSyntaxUID: "1.2.840.10008.1.2.4.70"}
	r := recoveryReader(func(path string) (*dataset.Dataset, error) {
		return dataset.FromError(path, dataset.Metadata{}, orig), nil
	})
	r.locateTool = func(extra ...string) (string, error) { return "/usr/bin/dcmdjpeg", nil }
	r.decompress = func(exe, src string) (string, error) {
		return "", errors.New("exit status 1")
	}

	err := r.openFile()
	var compressed *dataset.CompressedDataError
	require.ErrorAs(t, err, &compressed)
	require.Same(t, orig, compressed, "tool failure must collapse to the original error")
}

func TestNoRecoveryForNonJPEG(t *testing.T) {
	orig := &dataset.CompressedDataError{Codec: "RLE Lossless", TransferSyntaxUID: "1.2.840.10008.1.2.5"}
	r := recoveryReader(func(path string) (*dataset.Dataset, error) {
		return dataset.FromError(path, dataset.Metadata{}, orig), nil
	})
	r.locateTool = func(extra ...string) (string, error) {
		t.Fatal("recovery must not run for non-JPEG codecs")
		return "", nil
	}

	err := r.openFile()
	var compressed *dataset.CompressedDataError
	require.ErrorAs(t, err, &compressed)
	require.Same(t, orig, compressed)
}

func TestNoRecoveryForGenericParseError(t *testing.T) {
	r := recoveryReader(func(path string) (*dataset.Dataset, error) {
		return nil, dataset.ErrParse
	})
	r.locateTool = func(extra ...string) (string, error) {
		t.Fatal("recovery must not run for generic parse failures")
		return "", nil
	}

	err := r.openFile()
	require.ErrorIs(t, err, dataset.ErrParse)
}
