package dither

import (
	"image"
	"image/color"
	"math"

	"github.com/bodgit/retro/palette"
)

const (
	riemersmaHistory = 16
	riemersmaRatio   = 16
)

// hilbert converts a distance d along a Hilbert curve filling an n by n
// square, n being a power of two, into coordinates.
func hilbert(n, d int) (int, int) {
	var x, y int
	for s := 1; s < n; s <<= 1 {
		rx := 1 & (d >> 1)
		ry := 1 & (d ^ rx)
		if ry == 0 {
			if rx == 1 {
				x, y = s-1-x, s-1-y
			}
			x, y = y, x
		}
		x += s * rx
		y += s * ry
		d >>= 2
	}
	return x, y
}

// hilbertOrder returns every pixel of a w by h image in the order a Hilbert
// curve covering the smallest enclosing power of two square visits them.
func hilbertOrder(w, h int) []image.Point {
	n := 1
	for n < w || n < h {
		n <<= 1
	}

	order := make([]image.Point, 0, w*h)
	for d := 0; d < n*n; d++ {
		if x, y := hilbert(n, d); x < w && y < h {
			order = append(order, image.Pt(x, y))
		}
	}
	return order
}

// riemersma diffuses error along a Hilbert curve. Rather than a spatial
// kernel it keeps the last size errors, weighting them from 1 for the oldest
// up to ratio for the newest.
type riemersma struct {
	size   int
	ratio  float64
	metric palette.Metric
}

func (r *riemersma) weights() []float64 {
	w := make([]float64, r.size)
	if r.size == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = math.Pow(r.ratio, float64(i)/float64(r.size-1))
	}
	return w
}

func (r *riemersma) Dither(m *image.NRGBA, p color.Palette) *image.Paletted {
	w, h, buf := load(m)
	out := image.NewPaletted(image.Rect(0, 0, w, h), p)
	match := palette.NewMatcher(p, r.metric)

	weights := r.weights()
	norm := weights[len(weights)-1]

	// history is a ring; head is the slot of the oldest entry
	history := make([]palette.RGB, r.size)
	head := 0

	for _, pt := range hilbertOrder(w, h) {
		src := buf[pt.Y*w+pt.X]

		var e palette.RGB
		for i, wt := range weights {
			hv := history[(head+i)%r.size]
			e[0] += hv[0] * wt
			e[1] += hv[1] * wt
			e[2] += hv[2] * wt
		}

		c := palette.RGB{
			src[0] + e[0]/norm,
			src[1] + e[1]/norm,
			src[2] + e[2]/norm,
		}.Clamp()
		idx := match.Index(c)
		out.Pix[pt.Y*out.Stride+pt.X] = uint8(idx)

		q := match.Color(idx)
		history[head] = palette.RGB{src[0] - q[0], src[1] - q[1], src[2] - q[2]}
		head = (head + 1) % r.size
	}

	return out
}
