// Package reader resolves a read request against DICOM-encoded files. A
// request names a single file or a directory and declares an access mode;
// the reader maps integer indices to pixel buffers and metadata, resolving
// series lazily and recovering from JPEG-compressed payloads through an
// external decompression tool.
//
// A Reader is not safe for concurrent use: its lazy state is unguarded and
// callers must synchronize externally.
package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cocosip/go-dicom-reader/dataset"
	"github.com/cocosip/go-dicom-reader/dcmtk"
	"github.com/cocosip/go-dicom-reader/pixel"
	"github.com/cocosip/go-dicom-reader/progress"
	"github.com/cocosip/go-dicom-reader/series"
)

// Reader resolves one read request. Create it with Open, release it with
// Close.
type Reader struct {
	path  string
	isDir bool
	mode  Mode

	ind      progress.Indicator
	log      zerolog.Logger
	toolDirs []string

	loaded bool
	data   *pixel.Buffer
	meta   dataset.Metadata

	seriesResolved bool
	catalog        []*series.Series

	closed bool

	// Collaborator seams, defaulted in Open.
	parse      func(path string) (*dataset.Dataset, error)
	discover   func(dir string, ind progress.Indicator) ([]*series.Series, error)
	locateTool func(extra ...string) (string, error)
	decompress func(exe, src string) (string, error)
}

// Option configures a Reader at open time.
type Option func(*openConfig)

type openConfig struct {
	progress progress.Config
	log      zerolog.Logger
	toolDirs []string
}

// WithProgress selects how series discovery reports progress. The default
// writes to stdout.
func WithProgress(cfg progress.Config) Option {
	return func(c *openConfig) { c.progress = cfg }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *openConfig) { c.log = log }
}

// WithToolDirs adds directories probed for the dcmdjpeg executable before
// the fixed install locations.
func WithToolDirs(dirs ...string) Option {
	return func(c *openConfig) { c.toolDirs = append(c.toolDirs, dirs...) }
}

// Open resolves a read request against the file or directory at path. A
// directory is not touched until the first Len, Data or Meta call. A single
// file is parsed immediately; a JPEG-compressed payload triggers a one-shot
// recovery through dcmdjpeg, and if recovery is impossible the original
// parse failure is returned unchanged.
func Open(path string, mode Mode, opts ...Option) (*Reader, error) {
	if !mode.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}

	cfg := openConfig{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	ind, err := cfg.progress.Resolve()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	r := &Reader{
		path:       path,
		isDir:      info.IsDir(),
		mode:       mode,
		ind:        ind,
		log:        cfg.log,
		toolDirs:   cfg.toolDirs,
		parse:      dataset.Parse,
		discover:   series.Scan,
		locateTool: dcmtk.Locate,
		decompress: dcmtk.Decompress,
	}

	if !r.isDir {
		if err := r.openFile(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// openFile parses the direct single-file source, attempting recovery for
// JPEG-compressed pixel data.
func (r *Reader) openFile() error {
	ds, err := r.parse(r.path)
	if err != nil {
		return err
	}
	buf, err := ds.Pixels()
	if err != nil {
		var compressed *dataset.CompressedDataError
		if !errors.As(err, &compressed) || !strings.Contains(compressed.Codec, "JPEG") {
			return err
		}
		ds, buf, err = r.recoverCompressed(err)
		if err != nil {
			return err
		}
	}
	r.data = buf
	r.meta = ds.Meta()
	r.loaded = true
	return nil
}

// recoverCompressed converts the source file with dcmdjpeg and re-parses the
// result. Recovery is single-attempt: when the tool is missing or its
// invocation fails, the original error comes back so the caller sees the
// original diagnostic. Errors from re-parsing the converted file are
// returned as they are.
func (r *Reader) recoverCompressed(orig error) (*dataset.Dataset, *pixel.Buffer, error) {
	exe, err := r.locateTool(r.toolDirs...)
	if err != nil {
		r.log.Debug().Err(err).Msg("no dcmdjpeg available, not recovering")
		return nil, nil, orig
	}
	converted, err := r.decompress(exe, r.path)
	if err != nil {
		r.log.Debug().Err(err).Str("tool", exe).Msg("dcmdjpeg invocation failed")
		return nil, nil, orig
	}
	r.log.Info().Str("tool", exe).Str("output", converted).
		Msg("file contained compressed pixel data, converted with dcmdjpeg")

	ds, err := r.parse(converted)
	if err != nil {
		return nil, nil, err
	}
	buf, err := ds.Pixels()
	if err != nil {
		return nil, nil, err
	}
	return ds, buf, nil
}

// resolveCatalog runs series discovery once and caches the result. The
// request's source directory is scanned: the directory itself, or the parent
// directory of a single-file source.
func (r *Reader) resolveCatalog() ([]*series.Series, error) {
	if r.seriesResolved {
		return r.catalog, nil
	}
	dir := r.path
	if !r.isDir {
		dir = filepath.Dir(r.path)
	}
	r.log.Debug().Str("dir", dir).Msg("resolving series")
	catalog, err := r.discover(dir, r.ind)
	if err != nil {
		return nil, err
	}
	r.catalog = catalog
	r.seriesResolved = true
	return catalog, nil
}

// ensureLoaded promotes the first item of the first series into the loaded
// data when the source was a directory. Length and data queries observe the
// same state whichever runs first.
func (r *Reader) ensureLoaded() error {
	if r.closed {
		return ErrClosed
	}
	if r.loaded {
		return nil
	}
	catalog, err := r.resolveCatalog()
	if err != nil {
		return err
	}
	first := catalog[0].Item(0)
	buf, err := first.Pixels()
	if err != nil {
		return err
	}
	r.data = buf
	r.meta = first.Meta()
	r.loaded = true
	return nil
}

// numSlices returns the slice count of the loaded buffer, 1 for a single
// image.
func (r *Reader) numSlices() int {
	if r.data.NDim() == 3 {
		return r.data.NumSlices()
	}
	return 1
}

// Len computes the logical number of items for the reader's mode.
func (r *Reader) Len() (int, error) {
	if err := r.ensureLoaded(); err != nil {
		return 0, err
	}
	nslices := r.numSlices()

	switch r.mode {
	case SingleImage:
		// Report what the file really contains, even if the caller
		// expected one image.
		return nslices, nil

	case MultiImage:
		if nslices > 1 {
			return nslices, nil
		}
		catalog, err := r.resolveCatalog()
		if err != nil {
			return 0, err
		}
		total := 0
		for _, s := range catalog {
			total += s.Len()
		}
		return total, nil

	case SingleVolume:
		// One volume per series.
		if nslices > 1 {
			return 1, nil
		}
		catalog, err := r.resolveCatalog()
		if err != nil {
			return 0, err
		}
		return len(catalog), nil

	case MultiVolume:
		// Always counts series, even when a multi-slice buffer is loaded.
		catalog, err := r.resolveCatalog()
		if err != nil {
			return 0, err
		}
		return len(catalog), nil

	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidMode, int(r.mode))
	}
}

// Data returns the pixel buffer and metadata of item i under the reader's
// mode. An index beyond the logical length yields an *IndexError.
func (r *Reader) Data(i int) (*pixel.Buffer, dataset.Metadata, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, nil, err
	}
	nslices := r.numSlices()

	switch r.mode {
	case SingleImage:
		if nslices > 1 {
			sl, err := r.data.Slice(i)
			if err != nil {
				return nil, nil, &IndexError{Index: i, Length: nslices}
			}
			return sl, r.meta, nil
		}
		if i == 0 {
			return r.data, r.meta, nil
		}
		return nil, nil, &IndexError{Index: i, Length: 1, Reason: "file contains only one slice"}

	case MultiImage:
		if i == 0 && nslices > 1 {
			sl, err := r.data.Slice(0)
			if err != nil {
				return nil, nil, err
			}
			return sl, r.meta, nil
		}
		items, err := r.flatten()
		if err != nil {
			return nil, nil, err
		}
		if i < 0 || i >= len(items) {
			return nil, nil, &IndexError{Index: i, Length: len(items)}
		}
		buf, err := items[i].Pixels()
		if err != nil {
			return nil, nil, err
		}
		return buf, items[i].Meta(), nil

	case SingleVolume, MultiVolume:
		if i == 0 && nslices > 1 {
			return r.data, r.meta, nil
		}
		catalog, err := r.resolveCatalog()
		if err != nil {
			return nil, nil, err
		}
		if i < 0 || i >= len(catalog) {
			return nil, nil, &IndexError{Index: i, Length: len(catalog)}
		}
		vol, err := catalog[i].Volume()
		if err != nil {
			return nil, nil, err
		}
		return vol, catalog[i].Meta(), nil

	default:
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(r.mode))
	}
}

// Meta returns the metadata of item i, resolving the index exactly like
// Data but without decoding pixel data beyond the promoted first item.
func (r *Reader) Meta(i int) (dataset.Metadata, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	nslices := r.numSlices()

	switch r.mode {
	case SingleImage:
		// All slices of one file share the file's metadata.
		return r.meta, nil

	case MultiImage:
		if i == 0 && nslices > 1 {
			return r.meta, nil
		}
		items, err := r.flatten()
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= len(items) {
			return nil, &IndexError{Index: i, Length: len(items)}
		}
		return items[i].Meta(), nil

	case SingleVolume, MultiVolume:
		if i == 0 && nslices > 1 {
			return r.meta, nil
		}
		catalog, err := r.resolveCatalog()
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= len(catalog) {
			return nil, &IndexError{Index: i, Length: len(catalog)}
		}
		return catalog[i].Meta(), nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(r.mode))
	}
}

// FileMeta returns the metadata of the directly-loaded file (or of the
// promoted first item after a directory open), regardless of mode.
func (r *Reader) FileMeta() (dataset.Metadata, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	return r.meta, nil
}

// flatten concatenates every series of the catalog into one ordered item
// sequence.
func (r *Reader) flatten() ([]*dataset.Dataset, error) {
	catalog, err := r.resolveCatalog()
	if err != nil {
		return nil, err
	}
	var items []*dataset.Dataset
	for _, s := range catalog {
		for i := 0; i < s.Len(); i++ {
			items = append(items, s.Item(i))
		}
	}
	return items, nil
}

// Close releases the loaded data and the series catalog. It is idempotent.
func (r *Reader) Close() error {
	r.closed = true
	r.loaded = false
	r.data = nil
	r.meta = nil
	r.catalog = nil
	r.seriesResolved = false
	return nil
}
