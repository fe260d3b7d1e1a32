/*
Package palette implements the color tables of the supported display
adapters, adaptive palette extraction for the adapters that could program
their own colors, and nearest color matching.

Fixed palettes are package level tables shared by every caller and must be
treated as read-only. Adaptive palettes are derived from an image each time
they are requested and belong to the caller.
*/
package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
)

var (
	// ErrExhausted is matched by an *ExhaustedError
	ErrExhausted = errors.New("palette: not enough distinct colors")
	// ErrUnknownPalette is returned by Lookup for an unrecognised name
	ErrUnknownPalette = errors.New("palette: unknown palette")
)

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 0xff}
}

// EGA is the full sixteen color RGBI palette.
var EGA = color.Palette{
	rgb(0x00, 0x00, 0x00), // Black
	rgb(0x00, 0x00, 0xaa), // Blue
	rgb(0x00, 0xaa, 0x00), // Green
	rgb(0x00, 0xaa, 0xaa), // Cyan
	rgb(0xaa, 0x00, 0x00), // Red
	rgb(0xaa, 0x00, 0xaa), // Magenta
	rgb(0xaa, 0x55, 0x00), // Brown
	rgb(0xaa, 0xaa, 0xaa), // Light gray
	rgb(0x55, 0x55, 0x55), // Dark gray
	rgb(0x55, 0x55, 0xff), // Light blue
	rgb(0x55, 0xff, 0x55), // Light green
	rgb(0x55, 0xff, 0xff), // Light cyan
	rgb(0xff, 0x55, 0x55), // Light red
	rgb(0xff, 0x55, 0xff), // Light magenta
	rgb(0xff, 0xff, 0x55), // Yellow
	rgb(0xff, 0xff, 0xff), // White
}

// CGA1 is CGA mode 4 palette 1 at high intensity.
var CGA1 = color.Palette{
	rgb(0x00, 0x00, 0x00), // Black
	rgb(0x00, 0xff, 0xff), // Cyan
	rgb(0xff, 0x00, 0xff), // Magenta
	rgb(0xff, 0xff, 0xff), // White
}

// CGA2 is CGA mode 4 palette 0 at high intensity. Unlike CGA1 it has no
// white; yellow takes its place.
var CGA2 = color.Palette{
	rgb(0x00, 0x00, 0x00), // Black
	rgb(0x00, 0xff, 0x00), // Green
	rgb(0xff, 0x00, 0x00), // Red
	rgb(0xff, 0xff, 0x00), // Yellow
}

var fixed = map[string]color.Palette{
	"ega":  EGA,
	"cga1": CGA1,
	"cga2": CGA2,
}

// Lookup returns the fixed palette with the given name, ignoring case and
// any '-' separators.
func Lookup(name string) (color.Palette, error) {
	if p, ok := fixed[strings.ToLower(strings.ReplaceAll(name, "-", ""))]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
}

// Source provides the palette used to render an image.
type Source interface {
	// Palette returns the palette for m. Implementations may return a
	// usable palette together with an *ExhaustedError.
	Palette(m image.Image) (color.Palette, error)
	// Size returns the number of colors requested
	Size() int
}

// Fixed is a Source that always returns the same table regardless of the
// image.
type Fixed color.Palette

// Palette returns a copy of the table so the caller may modify it.
func (f Fixed) Palette(image.Image) (color.Palette, error) {
	return append(color.Palette(nil), f...), nil
}

// Size returns the number of colors in the table.
func (f Fixed) Size() int {
	return len(f)
}

// ExhaustedError reports that an image did not contain enough distinct colors
// to fill an adaptive palette. It is a warning; the palette returned alongside
// it is valid, just smaller than requested.
type ExhaustedError struct {
	Requested int
	Got       int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: requested %d, got %d", ErrExhausted, e.Requested, e.Got)
}

// Is makes errors.Is(err, ErrExhausted) work.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// Normalize returns p converted to opaque color.RGBA values with any
// duplicates removed, keeping the first occurrence of each color.
func Normalize(p color.Palette) color.Palette {
	seen := make(map[color.RGBA]struct{}, len(p))
	out := make(color.Palette, 0, len(p))
	for _, c := range p {
		r, g, b, _ := c.RGBA()
		n := rgb(uint8(r>>8), uint8(g>>8), uint8(b>>8))
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Contains reports whether c is exactly one of the colors in p.
func Contains(p color.Palette, c color.Color) bool {
	return Find(p, c) >= 0
}

// Find returns the index of the first entry in p exactly equal to c, or -1.
func Find(p color.Palette, c color.Color) int {
	r1, g1, b1, a1 := c.RGBA()
	for i, pc := range p {
		r2, g2, b2, a2 := pc.RGBA()
		if r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2 {
			return i
		}
	}
	return -1
}
