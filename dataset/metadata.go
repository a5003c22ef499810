package dataset

import (
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Metadata maps DICOM attribute keywords to their raw parsed values. Only a
// predefined subset of tags is extracted; values keep the shape the parser
// gives them ([]string, []int, ...).
type Metadata map[string]interface{}

// metaTags is the tag subset extracted from every file.
var metaTags = []struct {
	key string
	tag tag.Tag
}{
	{"PatientName", tag.PatientName},
	{"PatientID", tag.PatientID},
	{"PatientBirthDate", tag.PatientBirthDate},
	{"PatientSex", tag.PatientSex},
	{"StudyInstanceUID", tag.StudyInstanceUID},
	{"StudyDate", tag.StudyDate},
	{"StudyDescription", tag.StudyDescription},
	{"SeriesInstanceUID", tag.SeriesInstanceUID},
	{"SeriesNumber", tag.SeriesNumber},
	{"SeriesDescription", tag.SeriesDescription},
	{"SOPInstanceUID", tag.SOPInstanceUID},
	{"Modality", tag.Modality},
	{"InstanceNumber", tag.InstanceNumber},
	{"AcquisitionNumber", tag.AcquisitionNumber},
	{"Rows", tag.Rows},
	{"Columns", tag.Columns},
	{"SamplesPerPixel", tag.SamplesPerPixel},
	{"BitsAllocated", tag.BitsAllocated},
	{"BitsStored", tag.BitsStored},
	{"HighBit", tag.HighBit},
	{"PixelRepresentation", tag.PixelRepresentation},
	{"PhotometricInterpretation", tag.PhotometricInterpretation},
	{"NumberOfFrames", tag.NumberOfFrames},
	{"RescaleSlope", tag.RescaleSlope},
	{"RescaleIntercept", tag.RescaleIntercept},
	{"PixelSpacing", tag.PixelSpacing},
	{"SliceThickness", tag.SliceThickness},
	{"TransferSyntaxUID", tag.TransferSyntaxUID},
}

func extractMetadata(ds dicom.Dataset) Metadata {
	meta := make(Metadata, len(metaTags))
	for _, entry := range metaTags {
		elem, err := ds.FindElementByTag(entry.tag)
		if err != nil || elem.Value == nil {
			continue
		}
		if v := elem.Value.GetValue(); v != nil {
			meta[entry.key] = v
		}
	}
	return meta
}

// GetString returns the first string value stored under key, or "" when the
// key is absent or not string-shaped.
func (m Metadata) GetString(key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case []string:
		if len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
	}
	return ""
}

// GetInt returns the first value stored under key as an int. DICOM integer
// strings (IS) are converted. The second return reports whether a usable
// value was present.
func (m Metadata) GetInt(key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case []int:
		if len(v) > 0 {
			return v[0], true
		}
	case []string:
		if len(v) > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(v[0])); err == nil {
				return n, true
			}
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
	}
	return 0, false
}
