package retro

import (
	"fmt"
	"image"
	"strings"
	"unicode"

	"github.com/bodgit/retro/dither"
	"github.com/bodgit/retro/palette"
)

// Format identifies a display adapter.
type Format int

// The zero Format is invalid.
const (
	VGA Format = iota + 1
	EGA
	CGA1
	CGA2
	PC98
)

// FormatSpec describes the output of a display adapter.
type FormatSpec struct {
	Name string
	// Width and Height are the native resolution
	Width, Height int
	// PixelAspect is the width of a pixel relative to its height when
	// the native resolution fills a 4:3 display
	PixelAspect float64
	// Palette provides the colors, fixed or derived from the image
	Palette palette.Source
	// DefaultDither is used when a Config doesn't name a method
	DefaultDither dither.Method
}

// Canvas returns the 4:3 canvas the format is composed on, which is the
// native width by three quarters of it.
func (s FormatSpec) Canvas() image.Point {
	return image.Pt(s.Width, s.Width*3/4)
}

var formats = [...]FormatSpec{
	VGA: {
		Name:          "VGA",
		Width:         640,
		Height:        480,
		PixelAspect:   1.0,
		Palette:       palette.Adaptive{Colors: 256},
		DefaultDither: dither.FloydSteinberg,
	},
	EGA: {
		Name:          "EGA",
		Width:         640,
		Height:        350,
		PixelAspect:   0.729,
		Palette:       palette.Fixed(palette.EGA),
		DefaultDither: dither.FloydSteinberg,
	},
	CGA1: {
		Name:          "CGA-1",
		Width:         320,
		Height:        200,
		PixelAspect:   0.833,
		Palette:       palette.Fixed(palette.CGA1),
		DefaultDither: dither.Bayer8,
	},
	CGA2: {
		Name:          "CGA-2",
		Width:         320,
		Height:        200,
		PixelAspect:   0.833,
		Palette:       palette.Fixed(palette.CGA2),
		DefaultDither: dither.Bayer8,
	},
	PC98: {
		Name:          "PC-98",
		Width:         640,
		Height:        400,
		PixelAspect:   0.833,
		Palette:       palette.Adaptive{Colors: 16},
		DefaultDither: dither.FloydSteinberg,
	},
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f >= VGA && f <= PC98
}

// Spec returns the description of f.
func (f Format) Spec() (FormatSpec, error) {
	if !f.Valid() {
		return FormatSpec{}, fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(f))
	}
	return formats[f], nil
}

func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formats[f].Name
}

// Formats returns every supported format.
func Formats() []Format {
	return []Format{VGA, EGA, CGA1, CGA2, PC98}
}

func formatKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var formatKeys = map[string]Format{
	"vga":                 VGA,
	"ega":                 EGA,
	"cga1":                CGA1,
	"cgacyanmagentawhite": CGA1,
	"cga2":                CGA2,
	"cgagreenredyellow":   CGA2,
	"pc98":                PC98,
	"pc9801":              PC98,
}

// ParseFormat returns the format named s. Both the short names such as
// "CGA-1" and the descriptive "CGA (Cyan/Magenta/White)" are accepted,
// ignoring case and punctuation.
func ParseFormat(s string) (Format, error) {
	if f, ok := formatKeys[formatKey(s)]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}
