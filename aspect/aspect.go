/*
Package aspect works out how a source image is fitted onto a fixed size
display canvas.

Given the source dimensions, the canvas dimensions and a Mode it computes the
size the source should be resampled to, which part of the resampled image is
kept, and where that content sits on the canvas.
*/
package aspect

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
)

var (
	// ErrInvalidDimensions is returned when either the source or the
	// canvas has a zero or negative area
	ErrInvalidDimensions = errors.New("aspect: invalid dimensions")
	// ErrUnknownMode is returned by ParseMode for an unrecognised name
	ErrUnknownMode = errors.New("aspect: unknown mode")
)

// Mode controls how the source aspect ratio is reconciled with the canvas.
type Mode int

const (
	// Pad scales the source to fit inside the canvas and fills the
	// remainder with the background color
	Pad Mode = iota
	// Fit scales the source to fit inside the canvas and shrinks the
	// canvas to match, so there is no padding
	Fit
	// Crop scales the source to cover the canvas and trims the overflow
	Crop
	// Stretch scales each axis independently to match the canvas
	Stretch
)

var modeNames = [...]string{
	Pad:     "Pad",
	Fit:     "Fit",
	Crop:    "Crop",
	Stretch: "Stretch",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= Pad && m <= Stretch
}

// Modes returns every supported mode in display order.
func Modes() []Mode {
	return []Mode{Fit, Pad, Crop, Stretch}
}

// ParseMode returns the Mode matching s, ignoring case.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Layout describes where the source ends up on the canvas.
type Layout struct {
	// Canvas is the size of the composed image before any upscaling
	Canvas image.Point
	// Scaled is the size the source is resampled to
	Scaled image.Point
	// Crop is the region of the resampled image that is kept
	Crop image.Rectangle
	// Offset is the position of the kept region on the canvas
	Offset image.Point
}

// Content returns the size of the content placed on the canvas.
func (l Layout) Content() image.Point {
	return l.Crop.Size()
}

// Padded reports whether the canvas has any area not covered by content.
func (l Layout) Padded() bool {
	return l.Content() != l.Canvas
}

// Window maps Crop back onto a source of size src, returning the smallest
// region of the source that covers it. It is never empty.
func (l Layout) Window(src image.Point) image.Rectangle {
	sx := float64(src.X) / float64(l.Scaled.X)
	sy := float64(src.Y) / float64(l.Scaled.Y)

	r := image.Rect(
		int(math.Floor(float64(l.Crop.Min.X)*sx)),
		int(math.Floor(float64(l.Crop.Min.Y)*sy)),
		int(math.Ceil(float64(l.Crop.Max.X)*sx)),
		int(math.Ceil(float64(l.Crop.Max.Y)*sy)),
	).Intersect(image.Rectangle{Max: src})

	if r.Dx() < 1 {
		r.Min.X = clamp(r.Min.X, src.X-1)
		r.Max.X = r.Min.X + 1
	}
	if r.Dy() < 1 {
		r.Min.Y = clamp(r.Min.Y, src.Y-1)
		r.Max.Y = r.Min.Y + 1
	}

	return r
}

func round(f float64) int {
	if n := int(math.Round(f)); n > 1 {
		return n
	}
	return 1
}

func clamp(n, limit int) int {
	if n > limit {
		return limit
	}
	return n
}

// Resolve computes the Layout for a source of size src placed on a canvas of
// size canvas using mode m.
func Resolve(src, canvas image.Point, m Mode) (Layout, error) {
	if src.X <= 0 || src.Y <= 0 {
		return Layout{}, fmt.Errorf("%w: source is %dx%d", ErrInvalidDimensions, src.X, src.Y)
	}
	if canvas.X <= 0 || canvas.Y <= 0 {
		return Layout{}, fmt.Errorf("%w: canvas is %dx%d", ErrInvalidDimensions, canvas.X, canvas.Y)
	}

	sx := float64(canvas.X) / float64(src.X)
	sy := float64(canvas.Y) / float64(src.Y)

	var l Layout

	switch m {
	case Fit, Pad:
		s := math.Min(sx, sy)
		l.Scaled = image.Pt(clamp(round(float64(src.X)*s), canvas.X), clamp(round(float64(src.Y)*s), canvas.Y))
		l.Crop = image.Rectangle{Max: l.Scaled}
		if m == Fit {
			l.Canvas = l.Scaled
		} else {
			l.Canvas = canvas
			l.Offset = canvas.Sub(l.Scaled).Div(2)
		}
	case Crop:
		s := math.Max(sx, sy)
		// Rounding must never leave the scaled image smaller than the canvas
		l.Scaled = image.Pt(round(float64(src.X)*s), round(float64(src.Y)*s))
		if l.Scaled.X < canvas.X {
			l.Scaled.X = canvas.X
		}
		if l.Scaled.Y < canvas.Y {
			l.Scaled.Y = canvas.Y
		}
		origin := l.Scaled.Sub(canvas).Div(2)
		l.Crop = image.Rectangle{Min: origin, Max: origin.Add(canvas)}
		l.Canvas = canvas
	case Stretch:
		l.Scaled = canvas
		l.Crop = image.Rectangle{Max: canvas}
		l.Canvas = canvas
	default:
		return Layout{}, fmt.Errorf("%w: %v", ErrUnknownMode, m)
	}

	return l, nil
}
