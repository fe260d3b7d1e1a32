package retro

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/bodgit/retro/aspect"
	"github.com/bodgit/retro/compose"
	"github.com/bodgit/retro/dither"
	"github.com/bodgit/retro/palette"
	"github.com/bodgit/retro/resample"
)

// Result is a converted image.
type Result struct {
	// Image is the final image, anchored at the origin
	Image *image.Paletted
	// Palette is the palette of Image, including the background color if
	// it had to be added for padding
	Palette color.Palette
	// Layout is where the source was placed before upscaling
	Layout aspect.Layout
	// Exhausted is set when an adaptive palette came out smaller than
	// requested; the conversion still succeeded
	Exhausted *palette.ExhaustedError
}

// nativeSize returns the size content would be when drawn with the format's
// non-square pixels, that is with its height scaled by the pixel aspect.
func nativeSize(s FormatSpec, content image.Point) image.Point {
	h := int(math.Round(float64(content.Y) * s.PixelAspect))
	if h < 1 {
		h = 1
	}
	return image.Pt(content.X, h)
}

// Convert renders m in the style of cfg.Format. Configuration errors are
// reported before any pixel processing starts.
func (c *Converter) Convert(m image.Image, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	spec, err := cfg.Format.Spec()
	if err != nil {
		return nil, err
	}

	layout, err := aspect.Resolve(m.Bounds().Size(), spec.Canvas(), cfg.Aspect)
	if err != nil {
		return nil, err
	}

	d, err := dither.New(cfg.method(spec), cfg.options())
	if err != nil {
		return nil, err
	}

	src, err := cfg.source(spec, layout.Padded())
	if err != nil {
		return nil, err
	}

	flat := resample.Flatten(m)

	var key string
	if c.cache != nil {
		key = cacheKey(flat, cfg)
		r, err := c.cache.Get(key)
		if err != nil {
			return nil, err
		}
		if r != nil {
			c.logger.Printf("Cache hit for %s\n", cfg)
			r.Layout = layout
			return r, nil
		}
	}

	// Only the part of the source that survives cropping is resampled
	window := resample.Crop(flat, layout.Window(flat.Bounds().Size()))
	content, err := resample.Downscale(window, layout.Content(), resample.Lanczos)
	if err != nil {
		return nil, err
	}

	work := content
	if cfg.NativePixels && spec.PixelAspect != 1 {
		if work, err = resample.Downscale(content, nativeSize(spec, layout.Content()), resample.Lanczos); err != nil {
			return nil, err
		}
	}

	result := &Result{Layout: layout}

	p, err := src.Palette(work)
	if err != nil {
		if !errors.As(err, &result.Exhausted) || len(p) == 0 {
			return nil, fmt.Errorf("retro: unable to build palette: %w", err)
		}
		c.logger.Printf("%s palette: %v\n", spec.Name, err)
	}

	out := d.Dither(work, p)
	if work != content {
		if out, err = resample.Stretch(out, layout.Content()); err != nil {
			return nil, err
		}
	}

	out = compose.Pad(out, layout.Canvas, layout.Offset, Background)

	if out, err = resample.Upscale(out, cfg.multiplier()); err != nil {
		return nil, err
	}

	result.Image = out
	result.Palette = out.Palette

	if c.cache != nil {
		if err := c.cache.Put(key, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}
