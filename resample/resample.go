/*
Package resample implements the two scaling operations used when converting
an image: a band-limiting windowed sinc filter for shrinking the source down to
the content size, and pixel replication for enlarging the finished image
without disturbing the palette.
*/
package resample

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

var (
	// ErrInvalidSize is returned when a target size has a zero or
	// negative area
	ErrInvalidSize = errors.New("resample: invalid size")
	// ErrInvalidMultiplier is returned when an upscale factor is less
	// than one
	ErrInvalidMultiplier = errors.New("resample: invalid multiplier")
)

// Filter selects the interpolation kernel used by Downscale.
type Filter int

const (
	// Lanczos is a three-lobed windowed sinc
	Lanczos Filter = iota
	// CatmullRom is the Catmull-Rom cubic spline
	CatmullRom
)

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}

const lanczosLobes = 3

// Lanczos3 is the x/image/draw kernel for a three-lobed Lanczos filter.
var Lanczos3 = &xdraw.Kernel{
	Support: lanczosLobes,
	At: func(t float64) float64 {
		if t >= lanczosLobes {
			return 0
		}
		return sinc(t) * sinc(t/lanczosLobes)
	},
}

func (f Filter) kernel() *xdraw.Kernel {
	if f == CatmullRom {
		return xdraw.CatmullRom
	}
	return Lanczos3
}

// Flatten returns an opaque copy of m, compositing any translucent pixels
// over black.
func Flatten(m image.Image) *image.NRGBA {
	if o, ok := m.(interface{ Opaque() bool }); ok && o.Opaque() {
		return imaging.Clone(m)
	}
	b := m.Bounds()
	return imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.Black), m, image.Point{}, 1)
}

// Downscale resamples m to exactly size using filter f. The result is always
// a new image anchored at the origin; when m is already the right size it is
// copied unfiltered.
func Downscale(m image.Image, size image.Point, f Filter) (*image.NRGBA, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, size.X, size.Y)
	}

	b := m.Bounds()
	if b.Size() == size {
		return imaging.Clone(m), nil
	}

	dst := image.NewNRGBA(image.Rectangle{Max: size})
	f.kernel().Scale(dst, dst.Bounds(), m, b, xdraw.Src, nil)

	return dst, nil
}

// Crop returns the region r of m as a new image anchored at the origin.
func Crop(m *image.NRGBA, r image.Rectangle) *image.NRGBA {
	if r == m.Bounds() && r.Min == (image.Point{}) {
		return m
	}
	return imaging.Crop(m, r)
}

// Upscale replicates every pixel of m into an n by n block. No filtering of
// any kind is applied so the result uses exactly the same palette indices.
func Upscale(m *image.Paletted, n int) (*image.Paletted, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMultiplier, n)
	}

	b := m.Bounds()
	if n == 1 {
		return m, nil
	}

	dst := image.NewPaletted(image.Rect(0, 0, b.Dx()*n, b.Dy()*n), m.Palette)
	for y := 0; y < b.Dy(); y++ {
		src := m.Pix[m.PixOffset(b.Min.X, b.Min.Y+y):][:b.Dx()]

		// Expand one source row, then copy it for the remaining n-1 rows
		row := dst.Pix[y*n*dst.Stride:][:dst.Stride]
		for x, c := range src {
			block := row[x*n : x*n+n]
			for i := range block {
				block[i] = c
			}
		}
		for i := 1; i < n; i++ {
			copy(dst.Pix[(y*n+i)*dst.Stride:], row)
		}
	}

	return dst, nil
}

// Stretch resizes m to size using nearest neighbour sampling so that every
// output pixel is a copy of some input pixel.
func Stretch(m *image.Paletted, size image.Point) (*image.Paletted, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, size.X, size.Y)
	}

	b := m.Bounds()
	if b.Size() == size && b.Min == (image.Point{}) {
		return m, nil
	}

	dst := image.NewPaletted(image.Rectangle{Max: size}, m.Palette)
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), m, b, xdraw.Src, nil)

	return dst, nil
}
