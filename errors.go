package retro

import (
	"errors"

	"github.com/bodgit/retro/aspect"
	"github.com/bodgit/retro/dither"
	"github.com/bodgit/retro/palette"
	"github.com/bodgit/retro/resample"
)

var (
	// ErrUnsupportedFormat is returned for an unknown display format
	ErrUnsupportedFormat = errors.New("retro: unsupported format")
	// ErrInvalidDimensions is returned when the source or canvas has no
	// area
	ErrInvalidDimensions = aspect.ErrInvalidDimensions
	// ErrInvalidMultiplier is returned when the upscale factor is outside
	// 1 to MaxMultiplier
	ErrInvalidMultiplier = resample.ErrInvalidMultiplier
	// ErrUnknownMethod is returned for an unknown dithering method
	ErrUnknownMethod = dither.ErrUnknownMethod
	// ErrExhausted is matched by the warning returned when an adaptive
	// palette could not be filled
	ErrExhausted = palette.ErrExhausted

	errInvalidConfig = errors.New("retro: invalid configuration")
	errInvalidBuffer = errors.New("retro: invalid pixel buffer")
	errUnknownOutput = errors.New("retro: unsupported output file type")
)
