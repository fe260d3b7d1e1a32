package dither

import (
	"image"
	"image/color"
	"sync"

	mdither "github.com/makeworld-the-better-one/dither/v2"

	"github.com/bodgit/retro/palette"
)

// Matrix is a tiled threshold map with every entry normalised to [-0.5, 0.5).
type Matrix [][]float64

func (m Matrix) at(x, y int) float64 {
	row := m[y%len(m)]
	return row[x%len(row)]
}

// bayerIndex returns the classic recursive n by n Bayer index matrix, n being
// a power of two.
func bayerIndex(n int) [][]int {
	if n <= 1 {
		return [][]int{{0}}
	}
	h := n / 2
	prev := bayerIndex(h)
	m := make([][]int, n)
	for y := range m {
		m[y] = make([]int, n)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < h; x++ {
			v := 4 * prev[y][x]
			m[y][x] = v
			m[y][x+h] = v + 2
			m[y+h][x] = v + 3
			m[y+h][x+h] = v + 1
		}
	}
	return m
}

func normalise(index [][]int, levels int) Matrix {
	m := make(Matrix, len(index))
	for y, row := range index {
		m[y] = make([]float64, len(row))
		for x, v := range row {
			m[y][x] = float64(v)/float64(levels) - 0.5
		}
	}
	return m
}

func bayer(n int) Matrix {
	return normalise(bayerIndex(n), n*n)
}

// clusterDot is a 4x4 halftone matrix where the threshold grows outwards
// from the centre of each cell, producing clumped dots rather than a
// dispersed pattern.
var clusterDot = func() Matrix {
	odm := mdither.ClusteredDot4x4
	index := make([][]int, len(odm.Matrix))
	for y, row := range odm.Matrix {
		index[y] = make([]int, len(row))
		for x, v := range row {
			index[y][x] = int(v)
		}
	}
	return normalise(index, int(odm.Max))
}()

// MatrixFor returns the threshold matrix used by an ordered method other than
// Yliluoma.
func MatrixFor(m Method) (Matrix, bool) {
	switch m {
	case ClusterDot:
		return clusterDot, true
	case Bayer2:
		return bayer(2), true
	case Bayer4:
		return bayer(4), true
	case Bayer8:
		return bayer(8), true
	case Bayer16:
		return bayer(16), true
	}
	return nil, false
}

// parallelRows calls fn over [0, h) split into contiguous bands, one per
// worker, and waits for them all.
func parallelRows(h, workers int, fn func(y0, y1 int)) {
	if workers > h {
		workers = h
	}
	if workers <= 1 {
		fn(0, h)
		return
	}

	chunk := (h + workers - 1) / workers

	var wg sync.WaitGroup
	for y0 := 0; y0 < h; y0 += chunk {
		y1 := y0 + chunk
		if y1 > h {
			y1 = h
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}

type ordered struct {
	matrix  Matrix
	scale   palette.RGB
	metric  palette.Metric
	workers int
}

func newOrdered(m Matrix, o Options) *ordered {
	return &ordered{
		matrix:  m,
		scale:   o.thresholds(),
		metric:  o.Metric,
		workers: o.Workers,
	}
}

func (d *ordered) Dither(m *image.NRGBA, p color.Palette) *image.Paletted {
	w, h, buf := load(m)
	out := image.NewPaletted(image.Rect(0, 0, w, h), p)
	match := palette.NewMatcher(p, d.metric)

	parallelRows(h, d.workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				t := d.matrix.at(x, y)
				c := buf[y*w+x]
				c[0] += t * d.scale[0]
				c[1] += t * d.scale[1]
				c[2] += t * d.scale[2]
				out.Pix[y*out.Stride+x] = uint8(match.Index(c))
			}
		}
	})

	return out
}

// nearest maps every pixel to its closest palette entry with no error
// propagation at all, which leaves visible banding on gradients.
type nearest struct {
	metric  palette.Metric
	workers int
}

func (d *nearest) Dither(m *image.NRGBA, p color.Palette) *image.Paletted {
	w, h, buf := load(m)
	out := image.NewPaletted(image.Rect(0, 0, w, h), p)
	match := palette.NewMatcher(p, d.metric)

	parallelRows(h, d.workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				out.Pix[y*out.Stride+x] = uint8(match.Index(buf[y*w+x]))
			}
		}
	})

	return out
}
