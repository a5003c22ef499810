package reader

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// DICOM files carry the "DICM" marker after a 128-byte preamble.
const (
	magicOffset = 128
	sniffLen    = 140
)

var dicmMagic = []byte("DICM")

// CanRead reports whether path looks like DICOM data: either a file with the
// DICM marker, or a directory whose first file (in sorted order) carries it.
func CanRead(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return sniffFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return false
	}
	return sniffFile(filepath.Join(path, names[0]))
}

func sniffFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, _ := io.ReadFull(f, buf)
	if n < magicOffset+len(dicmMagic) {
		return false
	}
	return bytes.Equal(buf[magicOffset:magicOffset+len(dicmMagic)], dicmMagic)
}
