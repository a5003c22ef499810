// Package series groups the DICOM files of a directory into acquisition
// series. Discovery reads every candidate file once; ordering is
// deterministic for a fixed directory snapshot.
package series

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cocosip/go-dicom-reader/dataset"
	"github.com/cocosip/go-dicom-reader/pixel"
	"github.com/cocosip/go-dicom-reader/progress"
)

// ErrNoDatasets is returned when a directory contains no parseable DICOM files
var ErrNoDatasets = errors.New("no DICOM datasets found")

// parseFile is swapped out in tests.
var parseFile = dataset.Parse

// Series is an ordered group of datasets sharing one SeriesInstanceUID.
type Series struct {
	// UID is the SeriesInstanceUID shared by all items, possibly empty when
	// the files do not carry one.
	UID string

	items []*dataset.Dataset

	volLoaded bool
	vol       *pixel.Buffer
	volErr    error
}

// New builds a series from already-parsed datasets, keeping the given order.
func New(uid string, items ...*dataset.Dataset) *Series {
	return &Series{UID: uid, items: items}
}

// Len returns the number of datasets in the series.
func (s *Series) Len() int { return len(s.items) }

// Item returns the i-th dataset of the series.
func (s *Series) Item(i int) *dataset.Dataset { return s.items[i] }

// Meta returns the metadata of the first dataset, which stands in for the
// whole series.
func (s *Series) Meta() dataset.Metadata { return s.items[0].Meta() }

// Volume stacks the pixel data of every item into one 3-D buffer. The
// result is memoized.
func (s *Series) Volume() (*pixel.Buffer, error) {
	if s.volLoaded {
		return s.vol, s.volErr
	}
	s.volLoaded = true

	buffers := make([]*pixel.Buffer, 0, len(s.items))
	for _, item := range s.items {
		buf, err := item.Pixels()
		if err != nil {
			s.volErr = fmt.Errorf("reading %s: %w", item.Path, err)
			return nil, s.volErr
		}
		buffers = append(buffers, buf)
	}
	s.vol, s.volErr = pixel.Stack(buffers)
	return s.vol, s.volErr
}

// Scan reads every file in dir and groups the parseable DICOM datasets into
// series. Files that fail to parse are skipped. Series appear in order of
// first encounter over the sorted file listing; within a series, items are
// ordered by InstanceNumber, then by path.
func Scan(dir string, ind progress.Indicator) ([]*Series, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	if ind == nil {
		ind = progress.NopIndicator{}
	}
	ind.Start("Reading DICOM", len(names))

	byUID := make(map[string]*Series)
	var result []*Series
	for _, name := range names {
		path := filepath.Join(dir, name)
		ds, err := parseFile(path)
		ind.Advance(1)
		if err != nil {
			continue // not a DICOM file
		}
		uid := ds.Meta().GetString("SeriesInstanceUID")
		s, ok := byUID[uid]
		if !ok {
			s = &Series{UID: uid}
			byUID[uid] = s
			result = append(result, s)
		}
		s.items = append(s.items, ds)
	}
	ind.Finish(fmt.Sprintf("found %d series", len(result)))

	if len(result) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDatasets, dir)
	}

	for _, s := range result {
		sortItems(s.items)
	}
	return result, nil
}

func sortItems(items []*dataset.Dataset) {
	sort.SliceStable(items, func(i, j int) bool {
		ni, iok := items[i].Meta().GetInt("InstanceNumber")
		nj, jok := items[j].Meta().GetInt("InstanceNumber")
		if iok && jok && ni != nj {
			return ni < nj
		}
		return items[i].Path < items[j].Path
	})
}
