package dither

import (
	"image"
	"image/color"
	"math"

	"github.com/bodgit/retro/palette"
)

const (
	// Palettes larger than this only consider the nearest entries for
	// each pixel
	yliluomaMaxColors = 16
	voidClusterSize   = 8
	voidClusterSigma  = 1.0
)

// voidAndCluster builds an n by n dispersed threshold map using Ulichney's
// void-and-cluster method on a torus. The starting pattern is taken from the
// Bayer matrix so the result is the same every time.
func voidAndCluster(n int) [][]int {
	size := n * n

	// Gaussian weight for every toroidal offset
	weight := make([]float64, size)
	for dy := 0; dy < n; dy++ {
		for dx := 0; dx < n; dx++ {
			x, y := dx, dy
			if x > n/2 {
				x = n - x
			}
			if y > n/2 {
				y = n - y
			}
			weight[dy*n+dx] = math.Exp(-float64(x*x+y*y) / (2 * voidClusterSigma * voidClusterSigma))
		}
	}

	energy := func(bits []bool, p int, set bool) float64 {
		px, py := p%n, p/n
		var e float64
		for q, b := range bits {
			if b != set {
				continue
			}
			dx := (q%n - px + n) % n
			dy := (q/n - py + n) % n
			e += weight[dy*n+dx]
		}
		return e
	}

	// tightest finds the member of set with the highest energy amongst
	// members of set; voidest the non-member with the lowest
	tightest := func(bits []bool, set bool) int {
		best, bestE := -1, 0.0
		for p, b := range bits {
			if b != set {
				continue
			}
			if e := energy(bits, p, set); best < 0 || e > bestE {
				best, bestE = p, e
			}
		}
		return best
	}
	voidest := func(bits []bool) int {
		best, bestE := -1, 0.0
		for p, b := range bits {
			if b {
				continue
			}
			if e := energy(bits, p, true); best < 0 || e < bestE {
				best, bestE = p, e
			}
		}
		return best
	}

	ones := size / 10
	if ones < 1 {
		ones = 1
	}
	proto := make([]bool, size)
	for y, row := range bayerIndex(n) {
		for x, v := range row {
			proto[y*n+x] = v < ones
		}
	}

	// Move the tightest cluster into the largest void until that is a no-op
	for i := 0; i < size*size; i++ {
		c := tightest(proto, true)
		proto[c] = false
		v := voidest(proto)
		proto[v] = true
		if v == c {
			break
		}
	}

	rank := make([]int, size)

	bits := append([]bool(nil), proto...)
	for r := ones - 1; r >= 0; r-- {
		c := tightest(bits, true)
		bits[c] = false
		rank[c] = r
	}

	bits = append(bits[:0], proto...)
	for r := ones; r < size/2; r++ {
		v := voidest(bits)
		bits[v] = true
		rank[v] = r
	}

	// Past half full the minority pixels are the unset ones
	for r := size / 2; r < size; r++ {
		c := tightest(bits, false)
		bits[c] = true
		rank[c] = r
	}

	m := make([][]int, n)
	for y := range m {
		m[y] = rank[y*n : y*n+n]
	}
	return m
}

var yliluomaMatrix = voidAndCluster(voidClusterSize)

// psychovisual is the color difference used by Yliluoma's algorithms: a luma
// weighted RGB distance with extra weight on the luma difference itself.
func psychovisual(a, b palette.RGB) float64 {
	l1 := (a[0]*299 + a[1]*587 + a[2]*114) / (255 * 1000)
	l2 := (b[0]*299 + b[1]*587 + b[2]*114) / (255 * 1000)
	dl := l1 - l2
	dr, dg, db := (a[0]-b[0])/255, (a[1]-b[1])/255, (a[2]-b[2])/255
	return (dr*dr*0.299+dg*dg*0.587+db*db*0.114)*0.75 + dl*dl
}

// mixer holds the per-run tables for one palette. It is built once for
// every call to Dither and is read-only afterwards.
type mixer struct {
	colors   []palette.RGB
	levels   int
	mixes    []palette.RGB
	contrast []float64
}

func newMixer(p color.Palette, levels int) *mixer {
	n := len(p)
	mx := &mixer{
		colors:   make([]palette.RGB, n),
		levels:   levels,
		contrast: make([]float64, n*n),
	}
	for i, c := range p {
		mx.colors[i] = palette.ToRGB(c)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			mx.contrast[i*n+j] = psychovisual(mx.colors[i], mx.colors[j])
		}
	}

	// For small palettes precompute every blend of every pair
	if n <= yliluomaMaxColors {
		mx.mixes = make([]palette.RGB, n*n*(levels+1))
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				for k := 0; k <= levels; k++ {
					mx.mixes[(i*n+j)*(levels+1)+k] = mx.blend(i, j, k)
				}
			}
		}
	}
	return mx
}

func (mx *mixer) blend(i, j, k int) palette.RGB {
	a, b := mx.colors[i], mx.colors[j]
	t := float64(k) / float64(mx.levels)
	return palette.RGB{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

func (mx *mixer) mix(i, j, k int) palette.RGB {
	if mx.mixes != nil {
		return mx.mixes[(i*len(mx.colors)+j)*(mx.levels+1)+k]
	}
	return mx.blend(i, j, k)
}

// candidates returns the palette indices considered for c, which is every
// entry for small palettes, otherwise the nearest yliluomaMaxColors.
func (mx *mixer) candidates(c palette.RGB, buf []int) []int {
	n := len(mx.colors)
	buf = buf[:0]
	if n <= yliluomaMaxColors {
		for i := 0; i < n; i++ {
			buf = append(buf, i)
		}
		return buf
	}

	var dist [yliluomaMaxColors]float64
	for i := 0; i < n; i++ {
		d := psychovisual(c, mx.colors[i])
		if len(buf) == yliluomaMaxColors && d >= dist[len(buf)-1] {
			continue
		}
		// Insertion sort keeping the lowest indices first on ties
		j := len(buf)
		if j < yliluomaMaxColors {
			buf = append(buf, 0)
		} else {
			j--
		}
		for j > 0 && dist[j-1] > d {
			dist[j], buf[j] = dist[j-1], buf[j-1]
			j--
		}
		dist[j], buf[j] = d, i
	}

	// Restore palette order so ties in the search favour earlier entries
	for i := 1; i < len(buf); i++ {
		for j := i; j > 0 && buf[j-1] > buf[j]; j-- {
			buf[j-1], buf[j] = buf[j], buf[j-1]
		}
	}
	return buf
}

type plan struct {
	a, b  int
	ratio int
}

// plan picks the pair of colors and mixing ratio that best approximates c.
func (mx *mixer) plan(c palette.RGB, cands []int) plan {
	n := len(mx.colors)
	best := plan{a: cands[0], b: cands[0]}
	bestCost := math.Inf(1)

	for x, i := range cands {
		// A single color on its own
		if cost := psychovisual(c, mx.colors[i]); cost < bestCost {
			best, bestCost = plan{a: i, b: i}, cost
		}

		for _, j := range cands[x+1:] {
			a, b := mx.colors[i], mx.colors[j]
			ab := palette.RGB{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
			den := ab[0]*ab[0] + ab[1]*ab[1] + ab[2]*ab[2]
			if den == 0 {
				continue
			}

			// Project c onto the line between the two colors and try
			// the nearest ratios either side
			t := ((c[0]-a[0])*ab[0] + (c[1]-a[1])*ab[1] + (c[2]-a[2])*ab[2]) / den
			k0 := int(math.Round(t * float64(mx.levels)))
			for k := k0 - 1; k <= k0+1; k++ {
				if k <= 0 || k >= mx.levels {
					continue
				}
				r := float64(k) / float64(mx.levels)
				cost := psychovisual(c, mx.mix(i, j, k)) + mx.contrast[i*n+j]*0.1*(math.Abs(r-0.5)+0.5)
				if cost < bestCost {
					best, bestCost = plan{a: i, b: j, ratio: k}, cost
				}
			}
		}
	}

	return best
}

// yliluoma implements an ordered dither in the style of Joel Yliluoma's
// first algorithm: each pixel is approximated by a mix of two palette colors
// and the threshold map decides which of the two is shown.
type yliluoma struct {
	levels  int
	workers int
}

func (d *yliluoma) Dither(m *image.NRGBA, p color.Palette) *image.Paletted {
	w, h, buf := load(m)
	out := image.NewPaletted(image.Rect(0, 0, w, h), p)
	mx := newMixer(p, d.levels)

	cells := float64(voidClusterSize * voidClusterSize)

	parallelRows(h, d.workers, func(y0, y1 int) {
		cands := make([]int, 0, len(p))
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				c := buf[y*w+x]
				pl := mx.plan(c, mx.candidates(c, cands))

				idx := pl.a
				threshold := (float64(yliluomaMatrix[y%voidClusterSize][x%voidClusterSize]) + 0.5) / cells
				if threshold < float64(pl.ratio)/float64(d.levels) {
					idx = pl.b
				}
				out.Pix[y*out.Stride+x] = uint8(idx)
			}
		}
	})

	return out
}
