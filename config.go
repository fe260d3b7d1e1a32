package retro

import (
	"fmt"
	"strings"

	"github.com/bodgit/retro/aspect"
	"github.com/bodgit/retro/dither"
	"github.com/bodgit/retro/palette"
)

// MaxMultiplier is the largest upscale factor.
const MaxMultiplier = 10

// Config selects how an image is converted. The zero value of every field
// other than Format picks a sensible default.
type Config struct {
	Format Format
	// Aspect controls how the source is fitted to the canvas; the default
	// is aspect.Pad
	Aspect aspect.Mode
	// Dither is the dithering method, zero selects the format default
	Dither dither.Method
	// Multiplier enlarges the result by pixel replication, zero means 1
	Multiplier int
	// Thresholds scales the ordered dithering matrix per channel, zero
	// means dither.DefaultThresholds
	Thresholds [3]float64
	// Metric is used for nearest color matching
	Metric palette.Metric
	// Quantizer names the adaptive palette algorithm, see
	// palette.ParseQuantizer
	Quantizer string
	// MixLevels is the Yliluoma mixing granularity, zero means
	// dither.DefaultMixLevels
	MixLevels int
	// NativePixels dithers at the format's native line count and
	// stretches the result back, reproducing non-square pixels
	NativePixels bool
	// Workers bounds the goroutines used by the ordered methods; it has
	// no effect on the output
	Workers int
}

func (c Config) method(s FormatSpec) dither.Method {
	if c.Dither == 0 {
		return s.DefaultDither
	}
	return c.Dither
}

func (c Config) multiplier() int {
	if c.Multiplier == 0 {
		return 1
	}
	return c.Multiplier
}

func (c Config) thresholds() [3]float64 {
	if c.Thresholds == [3]float64{} {
		return dither.DefaultThresholds
	}
	return c.Thresholds
}

func (c Config) mixLevels() int {
	if c.MixLevels == 0 {
		return dither.DefaultMixLevels
	}
	return c.MixLevels
}

func (c Config) options() dither.Options {
	return dither.Options{
		Thresholds: c.thresholds(),
		Metric:     c.Metric,
		MixLevels:  c.mixLevels(),
		Workers:    c.Workers,
	}
}

// Validate checks every field, so a bad Config is rejected before any pixels
// are touched.
func (c Config) Validate() error {
	if !c.Format.Valid() {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, c.Format)
	}
	if !c.Aspect.Valid() {
		return fmt.Errorf("%w: %w: %v", errInvalidConfig, aspect.ErrUnknownMode, c.Aspect)
	}
	if c.Dither != 0 && !c.Dither.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownMethod, c.Dither)
	}
	if c.Multiplier < 0 || c.Multiplier > MaxMultiplier {
		return fmt.Errorf("%w: %d", ErrInvalidMultiplier, c.Multiplier)
	}
	for _, t := range c.Thresholds {
		if t < 0 || t > 255 {
			return fmt.Errorf("%w: threshold %g outside 0 to 255", errInvalidConfig, t)
		}
	}
	if !c.Metric.Valid() {
		return fmt.Errorf("%w: unknown metric %v", errInvalidConfig, c.Metric)
	}
	if _, err := palette.ParseQuantizer(c.Quantizer); err != nil {
		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}
	if c.MixLevels < 0 || c.MixLevels > dither.MaxMixLevels {
		return fmt.Errorf("%w: mix levels %d outside 1 to %d", errInvalidConfig, c.MixLevels, dither.MaxMixLevels)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: negative workers", errInvalidConfig)
	}
	return nil
}

// String returns a canonical description of every setting that affects the
// output, with defaults resolved, so equal strings mean equal results.
func (c Config) String() string {
	var method dither.Method
	if s, err := c.Format.Spec(); err == nil {
		method = c.method(s)
	}
	t := c.thresholds()
	quantizer := strings.ToLower(c.Quantizer)
	if quantizer == "" {
		quantizer = "mediancut"
	}
	return fmt.Sprintf("format=%v aspect=%v dither=%v scale=%d thresholds=%g,%g,%g metric=%v quantizer=%s mix=%d native=%t",
		c.Format, c.Aspect, method, c.multiplier(), t[0], t[1], t[2], c.Metric, quantizer, c.mixLevels(), c.NativePixels)
}

// source returns the palette source for s, applying the configured quantizer
// to adaptive palettes. A padded canvas needs a spare slot for the
// background so a full size adaptive palette gives one up.
func (c Config) source(s FormatSpec, padded bool) (palette.Source, error) {
	a, ok := s.Palette.(palette.Adaptive)
	if !ok {
		return s.Palette, nil
	}

	q, err := palette.ParseQuantizer(c.Quantizer)
	if err != nil {
		return nil, err
	}
	a.Quantizer = q

	if padded && a.Colors >= palette.MaxColors {
		a.Colors = palette.MaxColors - 1
	}

	return a, nil
}
