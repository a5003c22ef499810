package reader

import "github.com/cocosip/go-dicom-reader/format"

// dicomFormat registers DICOM with the format registry.
type dicomFormat struct{}

func (dicomFormat) Name() string        { return "DICOM" }
func (dicomFormat) Description() string { return "Digital Imaging and Communications in Medicine" }

// Extensions lists common DICOM extensions; files frequently have odd
// extensions or none, which is why detection relies on CanRead.
func (dicomFormat) Extensions() []string { return []string{".dcm", ".ct", ".mri"} }

func (dicomFormat) CanRead(path string) bool { return CanRead(path) }

func init() {
	format.Register(dicomFormat{})
}
