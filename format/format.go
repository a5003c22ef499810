package format

// Format describes one recognizable image file format.
type Format interface {
	// Name returns the short registry name (e.g. "DICOM")
	Name() string

	// Description returns a human-readable description
	Description() string

	// Extensions returns the file extensions commonly used by the format,
	// including the leading dot
	Extensions() []string

	// CanRead reports whether the file or directory at path looks like it
	// belongs to this format
	CanRead(path string) bool
}
