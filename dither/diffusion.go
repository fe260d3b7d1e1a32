package dither

import (
	"image"
	"image/color"

	"github.com/bodgit/retro/palette"
)

// Tap is one entry of an error diffusion kernel: the fraction of the error
// pushed to the pixel DX across and DY down from the current one.
type Tap struct {
	DX, DY int
	Weight float64
}

// Kernel describes how an error diffusion method spreads error.
type Kernel struct {
	Taps []Tap
	// Serpentine alternates the scan direction on every row, mirroring
	// the taps horizontally on right to left rows
	Serpentine bool
}

func kernel(divisor float64, serpentine bool, taps ...[3]int) Kernel {
	k := Kernel{
		Taps:       make([]Tap, len(taps)),
		Serpentine: serpentine,
	}
	for i, t := range taps {
		k.Taps[i] = Tap{DX: t[0], DY: t[1], Weight: float64(t[2]) / divisor}
	}
	return k
}

var kernels = map[Method]Kernel{
	FloydSteinberg: kernel(16, true,
		[3]int{1, 0, 7},
		[3]int{-1, 1, 3}, [3]int{0, 1, 5}, [3]int{1, 1, 1},
	),
	JarvisJudiceNinke: kernel(48, false,
		[3]int{1, 0, 7}, [3]int{2, 0, 5},
		[3]int{-2, 1, 3}, [3]int{-1, 1, 5}, [3]int{0, 1, 7}, [3]int{1, 1, 5}, [3]int{2, 1, 3},
		[3]int{-2, 2, 1}, [3]int{-1, 2, 3}, [3]int{0, 2, 5}, [3]int{1, 2, 3}, [3]int{2, 2, 1},
	),
	Stucki: kernel(42, false,
		[3]int{1, 0, 8}, [3]int{2, 0, 4},
		[3]int{-2, 1, 2}, [3]int{-1, 1, 4}, [3]int{0, 1, 8}, [3]int{1, 1, 4}, [3]int{2, 1, 2},
		[3]int{-2, 2, 1}, [3]int{-1, 2, 2}, [3]int{0, 2, 4}, [3]int{1, 2, 2}, [3]int{2, 2, 1},
	),
	Burkes: kernel(32, false,
		[3]int{1, 0, 8}, [3]int{2, 0, 4},
		[3]int{-2, 1, 2}, [3]int{-1, 1, 4}, [3]int{0, 1, 8}, [3]int{1, 1, 4}, [3]int{2, 1, 2},
	),
	Sierra3: kernel(32, false,
		[3]int{1, 0, 5}, [3]int{2, 0, 3},
		[3]int{-2, 1, 2}, [3]int{-1, 1, 4}, [3]int{0, 1, 5}, [3]int{1, 1, 4}, [3]int{2, 1, 2},
		[3]int{-1, 2, 2}, [3]int{0, 2, 3}, [3]int{1, 2, 2},
	),
	Sierra2: kernel(16, false,
		[3]int{1, 0, 4}, [3]int{2, 0, 3},
		[3]int{-2, 1, 1}, [3]int{-1, 1, 2}, [3]int{0, 1, 3}, [3]int{1, 1, 2}, [3]int{2, 1, 1},
	),
	Sierra24A: kernel(4, false,
		[3]int{1, 0, 2},
		[3]int{-1, 1, 1}, [3]int{0, 1, 1},
	),
	// Atkinson only passes on three quarters of the error
	Atkinson: kernel(8, false,
		[3]int{1, 0, 1}, [3]int{2, 0, 1},
		[3]int{-1, 1, 1}, [3]int{0, 1, 1}, [3]int{1, 1, 1},
		[3]int{0, 2, 1},
	),
}

// KernelFor returns the kernel used by an error diffusion method.
func KernelFor(m Method) (Kernel, bool) {
	k, ok := kernels[m]
	return k, ok
}

type step struct {
	x, y int
	dir  int
}

// scanOrder returns the order pixels are visited in. dir is -1 on rows
// scanned right to left.
func scanOrder(w, h int, serpentine bool) []step {
	order := make([]step, 0, w*h)
	for y := 0; y < h; y++ {
		if serpentine && y&1 == 1 {
			for x := w - 1; x >= 0; x-- {
				order = append(order, step{x, y, -1})
			}
			continue
		}
		for x := 0; x < w; x++ {
			order = append(order, step{x, y, 1})
		}
	}
	return order
}

type errorDiffusion struct {
	kernel Kernel
	metric palette.Metric
}

func (d *errorDiffusion) Dither(m *image.NRGBA, p color.Palette) *image.Paletted {
	w, h, buf := load(m)
	out := image.NewPaletted(image.Rect(0, 0, w, h), p)
	match := palette.NewMatcher(p, d.metric)

	for _, s := range scanOrder(w, h, d.kernel.Serpentine) {
		i := s.y*w + s.x

		// Clamp so that error from colors outside the palette's gamut
		// can't keep accumulating
		c := buf[i].Clamp()
		idx := match.Index(c)
		out.Pix[s.y*out.Stride+s.x] = uint8(idx)

		q := match.Color(idx)
		e := palette.RGB{c[0] - q[0], c[1] - q[1], c[2] - q[2]}
		if e == (palette.RGB{}) {
			continue
		}

		for _, t := range d.kernel.Taps {
			x, y := s.x+t.DX*s.dir, s.y+t.DY
			if x < 0 || x >= w || y >= h {
				continue
			}
			n := &buf[y*w+x]
			n[0] += e[0] * t.Weight
			n[1] += e[1] * t.Weight
			n[2] += e[2] * t.Weight
		}
	}

	return out
}
