package reader

import "fmt"

// Mode declares the cardinality and shape a caller expects from a read
// request. It is fixed for the lifetime of a Reader and drives all length
// and index computations.
type Mode int

const (
	// SingleImage expects one 2-D image
	SingleImage Mode = iota

	// MultiImage expects a sequence of 2-D images
	MultiImage

	// SingleVolume expects one 3-D volume
	SingleVolume

	// MultiVolume expects a sequence of 3-D volumes
	MultiVolume
)

func (m Mode) String() string {
	switch m {
	case SingleImage:
		return "single-image"
	case MultiImage:
		return "multi-image"
	case SingleVolume:
		return "single-volume"
	case MultiVolume:
		return "multi-volume"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) valid() bool {
	return m >= SingleImage && m <= MultiVolume
}

// ParseMode converts the single-character mode notation used on the command
// line: "i" (single image), "I" (multi image), "v" (single volume), "V"
// (multi volume).
func ParseMode(s string) (Mode, error) {
	switch s {
	case "i":
		return SingleImage, nil
	case "I":
		return MultiImage, nil
	case "v":
		return SingleVolume, nil
	case "V":
		return MultiVolume, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}
