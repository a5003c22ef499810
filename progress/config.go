package progress

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a progress configuration cannot be
// resolved into an indicator
var ErrInvalidConfig = errors.New("invalid progress configuration")

type kind int

const (
	kindDefault kind = iota // stdout indicator
	kindOff                 // no-op indicator
	kindCustom              // caller-supplied indicator
)

// Config selects how progress is reported. The zero value selects the
// default stdout indicator. The configuration is resolved exactly once when
// a read request is opened.
type Config struct {
	kind   kind
	custom Indicator
}

// Default reports progress on stdout.
func Default() Config { return Config{kind: kindDefault} }

// Off disables progress reporting.
func Off() Config { return Config{kind: kindOff} }

// With reports progress through a caller-supplied indicator.
func With(ind Indicator) Config { return Config{kind: kindCustom, custom: ind} }

// Resolve converts the configuration into a concrete indicator. An
// unrecognized configuration is a programmer error and yields
// ErrInvalidConfig.
func (c Config) Resolve() (Indicator, error) {
	switch c.kind {
	case kindDefault:
		return &StdoutIndicator{}, nil
	case kindOff:
		return NopIndicator{}, nil
	case kindCustom:
		if c.custom == nil {
			return nil, fmt.Errorf("%w: nil indicator", ErrInvalidConfig)
		}
		return c.custom, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidConfig, c.kind)
	}
}
