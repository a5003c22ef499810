// Package dcmtk locates and invokes the dcmdjpeg decompression tool from the
// DCMTK toolkit. The tool rewrites a JPEG-compressed DICOM file into an
// uncompressed sibling that the native parser can decode.
package dcmtk

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ErrToolNotFound is returned when no dcmdjpeg executable can be located
var ErrToolNotFound = errors.New("dcmdjpeg executable not found")

// toolName returns the platform-specific executable name.
func toolName() string {
	if runtime.GOOS == "windows" {
		return "dcmdjpeg.exe"
	}
	return "dcmdjpeg"
}

// installDirs lists the fixed locations probed before falling back to PATH.
func installDirs() []string {
	if runtime.GOOS == "windows" {
		return []string{
			`c:\dcmtk`,
			`c:\dcmtk\bin`,
			`c:\Program Files\dcmtk`,
			`c:\Program Files\dcmtk\bin`,
			`c:\Program Files (x86)\dcmtk`,
		}
	}
	return []string{
		"/usr/bin",
		"/usr/local/bin",
		"/opt/dcmtk/bin",
		"/opt/homebrew/bin",
	}
}

// Locate finds the dcmdjpeg executable. Extra directories are probed first,
// then the fixed install locations, then the system PATH. ErrToolNotFound is
// returned when nothing usable exists.
func Locate(extra ...string) (string, error) {
	name := toolName()
	for _, dir := range append(append([]string{}, extra...), installDirs()...) {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	return "", ErrToolNotFound
}

// Decompress runs the tool against src, producing a sibling file with a
// ".raw" suffix, and returns its path. The output file is left in place for
// the caller to re-parse.
func Decompress(exe, src string) (string, error) {
	dst := src + ".raw"
	cmd := exec.Command(exe, src, dst)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("running %s: %w (%s)", exe, err, string(out))
	}
	return dst, nil
}
