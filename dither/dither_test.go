package dither

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/retro/palette"
)

var blackWhite = color.Palette{
	color.RGBA{0x00, 0x00, 0x00, 0xff},
	color.RGBA{0xff, 0xff, 0xff, 0xff},
}

func gray(w, h int, v uint8) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(m.Pix); i += 4 {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = v, v, v, 0xff
	}
	return m
}

func pattern(w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x * 7) ^ (y * 13)),
				A: 0xff,
			})
		}
	}
	return m
}

func whiteFraction(m *image.Paletted) float64 {
	var n int
	for _, v := range m.Pix {
		if v == 1 {
			n++
		}
	}
	return float64(n) / float64(len(m.Pix))
}

func mustNew(t *testing.T, m Method, o Options) Ditherer {
	t.Helper()
	d, err := New(m, o)
	require.NoError(t, err)
	return d
}

func TestParseMethod(t *testing.T) {
	tables := []struct {
		name string
		want Method
	}{
		{"FloydSteinberg", FloydSteinberg},
		{"Floyd-Steinberg", FloydSteinberg},
		{"floyd steinberg", FloydSteinberg},
		{"fs", FloydSteinberg},
		{"Riemersma", Riemersma},
		{"Jarvis, Judice & Ninke", JarvisJudiceNinke},
		{"JJN", JarvisJudiceNinke},
		{"Stucki", Stucki},
		{"Burkes", Burkes},
		{"Sierra3", Sierra3},
		{"Sierra 2", Sierra2},
		{"Sierra2-4A", Sierra24A},
		{"sierra lite", Sierra24A},
		{"Atkinson", Atkinson},
		{"None", None},
		{"nearest", None},
		{"Yliluoma (ordered)", Yliluoma},
		{"ClusterDot", ClusterDot},
		{"Clustered Dot", ClusterDot},
		{"Bayer2", Bayer2},
		{"Bayer 4x4 (ordered)", Bayer4},
		{"bayer8x8", Bayer8},
		{"BAYER16", Bayer16},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			m, err := ParseMethod(table.name)
			require.NoError(t, err)
			assert.Equal(t, table.want, m)
		})
	}

	_, err := ParseMethod("bogus")
	assert.ErrorIs(t, err, ErrUnknownMethod)
	_, err = ParseMethod("")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestMethods(t *testing.T) {
	methods := Methods()
	assert.Len(t, methods, 16)

	for _, m := range methods {
		assert.True(t, m.Valid(), m.String())
		assert.NotEqual(t, m.ErrorDiffusion(), m.Ordered(), m.String())

		// Every canonical name parses back to itself
		p, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, p)
	}

	assert.False(t, Method(0).Valid())
	assert.Equal(t, "Method(0)", Method(0).String())
	assert.Equal(t, "Sierra2-4A", Sierra24A.String())

	_, err := New(Method(0), Options{})
	assert.ErrorIs(t, err, ErrUnknownMethod)
	_, err = New(Yliluoma, Options{MixLevels: MaxMixLevels + 1})
	assert.Error(t, err)
}

func TestKernels(t *testing.T) {
	for _, m := range Methods() {
		k, ok := KernelFor(m)
		if m == Riemersma || m == None || m.Ordered() {
			assert.False(t, ok, m.String())
			continue
		}
		require.True(t, ok, m.String())

		var sum float64
		for _, tap := range k.Taps {
			sum += tap.Weight
			// Error only ever flows to pixels not yet visited
			assert.True(t, tap.DY > 0 || (tap.DY == 0 && tap.DX > 0), m.String())
		}

		want := 1.0
		if m == Atkinson {
			want = 0.75
		}
		assert.InDelta(t, want, sum, 1e-9, m.String())
		assert.Equal(t, m == FloydSteinberg, k.Serpentine, m.String())
	}
}

func TestScanOrder(t *testing.T) {
	order := scanOrder(3, 2, true)
	assert.Equal(t, []step{
		{0, 0, 1}, {1, 0, 1}, {2, 0, 1},
		{2, 1, -1}, {1, 1, -1}, {0, 1, -1},
	}, order)

	for _, s := range scanOrder(3, 2, false) {
		assert.Equal(t, 1, s.dir)
	}
}

func TestBayerIndex(t *testing.T) {
	assert.Equal(t, [][]int{{0, 2}, {3, 1}}, bayerIndex(2))
	assert.Equal(t, [][]int{
		{0, 8, 2, 10},
		{12, 4, 14, 6},
		{3, 11, 1, 9},
		{15, 7, 13, 5},
	}, bayerIndex(4))

	for _, n := range []int{2, 4, 8, 16} {
		seen := make(map[int]bool)
		for _, row := range bayerIndex(n) {
			for _, v := range row {
				seen[v] = true
			}
		}
		assert.Len(t, seen, n*n)
	}

	m, ok := MatrixFor(Bayer2)
	require.True(t, ok)
	assert.Equal(t, Matrix{{-0.5, 0}, {0.25, -0.25}}, m)
}

func TestClusterDot(t *testing.T) {
	m, ok := MatrixFor(ClusterDot)
	require.True(t, ok)
	require.Len(t, m, 4)
	for _, row := range m {
		require.Len(t, row, 4)
		for _, v := range row {
			assert.True(t, v >= -0.5 && v < 0.5)
		}
	}
}

func TestVoidAndCluster(t *testing.T) {
	m := voidAndCluster(voidClusterSize)
	require.Len(t, m, voidClusterSize)

	seen := make(map[int]bool)
	for _, row := range m {
		require.Len(t, row, voidClusterSize)
		for _, v := range row {
			assert.True(t, v >= 0 && v < voidClusterSize*voidClusterSize)
			seen[v] = true
		}
	}
	assert.Len(t, seen, voidClusterSize*voidClusterSize)
	assert.NotEqual(t, bayerIndex(voidClusterSize), m)

	// Built the same way every time
	assert.Equal(t, m, voidAndCluster(voidClusterSize))
}

func TestHilbertOrder(t *testing.T) {
	tables := []struct {
		w, h int
	}{
		{1, 1},
		{8, 8},
		{5, 3},
		{3, 17},
		{33, 2},
	}

	for _, table := range tables {
		order := hilbertOrder(table.w, table.h)
		require.Len(t, order, table.w*table.h)

		seen := make(map[image.Point]bool, len(order))
		for _, pt := range order {
			assert.True(t, pt.In(image.Rect(0, 0, table.w, table.h)))
			seen[pt] = true
		}
		assert.Len(t, seen, len(order))
	}

	// On a full power of two square each step moves to a neighbour
	order := hilbertOrder(8, 8)
	for i := 1; i < len(order); i++ {
		d := order[i].Sub(order[i-1])
		assert.Equal(t, 1, abs(d.X)+abs(d.Y))
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func TestPaletteMembership(t *testing.T) {
	src := pattern(67, 41)

	for _, m := range Methods() {
		t.Run(m.String(), func(t *testing.T) {
			out := mustNew(t, m, Options{}).Dither(src, palette.EGA)
			assert.Equal(t, image.Rect(0, 0, 67, 41), out.Bounds())
			assert.Equal(t, palette.EGA, out.Palette)
			for _, v := range out.Pix {
				require.Less(t, int(v), len(palette.EGA))
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	src := pattern(64, 48)

	for _, m := range Methods() {
		t.Run(m.String(), func(t *testing.T) {
			a := mustNew(t, m, Options{Workers: 1}).Dither(src, palette.CGA1)
			b := mustNew(t, m, Options{Workers: 1}).Dither(src, palette.CGA1)
			c := mustNew(t, m, Options{Workers: 4}).Dither(src, palette.CGA1)
			assert.Equal(t, a.Pix, b.Pix)
			assert.Equal(t, a.Pix, c.Pix)
		})
	}
}

func TestDegenerate(t *testing.T) {
	single := color.Palette{color.RGBA{0x55, 0x55, 0x55, 0xff}}

	for _, m := range Methods() {
		t.Run(m.String(), func(t *testing.T) {
			d := mustNew(t, m, Options{})

			out := d.Dither(pattern(9, 7), single)
			for _, v := range out.Pix {
				assert.Equal(t, uint8(0), v)
			}

			out = d.Dither(gray(1, 1, 0xff), blackWhite)
			assert.Equal(t, []uint8{1}, out.Pix)
		})
	}
}

func TestOffsetBounds(t *testing.T) {
	src := gray(20, 20, 0xff).SubImage(image.Rect(5, 5, 15, 12)).(*image.NRGBA)

	for _, m := range Methods() {
		out := mustNew(t, m, Options{}).Dither(src, blackWhite)
		assert.Equal(t, image.Rect(0, 0, 10, 7), out.Bounds(), m.String())
		assert.Equal(t, 1.0, whiteFraction(out), m.String())
	}
}

func TestExactColors(t *testing.T) {
	// A pixel already in the palette has no error to spread
	for _, m := range Methods() {
		if m.Ordered() && m != Yliluoma {
			continue
		}
		out := mustNew(t, m, Options{}).Dither(gray(16, 16, 0x00), blackWhite)
		assert.Equal(t, 0.0, whiteFraction(out), m.String())
	}
}

func TestFloydSteinbergHalftone(t *testing.T) {
	out := mustNew(t, FloydSteinberg, Options{}).Dither(gray(128, 128, 128), blackWhite)
	assert.InDelta(t, 0.5, whiteFraction(out), 0.02)

	// Mid gray turns into a fine alternating pattern rather than blobs
	var changes int
	for y := 0; y < 128; y++ {
		for x := 1; x < 128; x++ {
			if out.Pix[y*out.Stride+x] != out.Pix[y*out.Stride+x-1] {
				changes++
			}
		}
	}
	assert.Greater(t, float64(changes)/float64(128*127), 0.9)
}

func TestErrorDiffusionAverage(t *testing.T) {
	for _, m := range []Method{FloydSteinberg, JarvisJudiceNinke, Stucki, Burkes, Sierra3, Sierra2, Sierra24A} {
		out := mustNew(t, m, Options{}).Dither(gray(96, 96, 64), blackWhite)
		assert.InDelta(t, 0.25, whiteFraction(out), 0.03, m.String())
	}

	// Atkinson drops a quarter of the error so dark grays lose highlights
	out := mustNew(t, Atkinson, Options{}).Dither(gray(96, 96, 64), blackWhite)
	assert.Less(t, whiteFraction(out), 0.25)
}

func TestRiemersma(t *testing.T) {
	tables := []struct {
		level uint8
		want  float64
	}{
		{128, 0.5},
		{64, 0.25},
		{200, 200.0 / 255.0},
	}

	d := mustNew(t, Riemersma, Options{})
	for _, table := range tables {
		out := d.Dither(gray(64, 64, table.level), blackWhite)
		assert.InDelta(t, table.want, whiteFraction(out), 0.03)
	}

	r := &riemersma{size: riemersmaHistory, ratio: riemersmaRatio}
	w := r.weights()
	require.Len(t, w, riemersmaHistory)
	assert.InDelta(t, 1.0, w[0], 1e-9)
	assert.InDelta(t, float64(riemersmaRatio), w[len(w)-1], 1e-9)
	for i := 1; i < len(w); i++ {
		assert.Greater(t, w[i], w[i-1])
	}
}

func TestNone(t *testing.T) {
	out := mustNew(t, None, Options{}).Dither(gray(32, 32, 100), palette.EGA)
	for _, v := range out.Pix {
		assert.Equal(t, out.Pix[0], v)
	}

	// A gradient bands into two solid halves
	m := image.NewNRGBA(image.Rect(0, 0, 256, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 256; x++ {
			m.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(x), uint8(x), 0xff})
		}
	}
	out = mustNew(t, None, Options{Workers: 2}).Dither(m, blackWhite)
	for y := 0; y < 4; y++ {
		for x := 0; x < 256; x++ {
			want := uint8(0)
			if x >= 128 {
				want = 1
			}
			require.Equal(t, want, out.Pix[y*out.Stride+x])
		}
	}
}

func TestBayerHalftone(t *testing.T) {
	o := Options{Thresholds: [3]float64{255, 255, 255}}
	for _, m := range []Method{Bayer2, Bayer4, Bayer8, Bayer16} {
		out := mustNew(t, m, o).Dither(gray(64, 64, 128), blackWhite)
		assert.Equal(t, 0.5, whiteFraction(out), m.String())
	}
}

func TestBayerPeriod(t *testing.T) {
	out := mustNew(t, Bayer4, Options{}).Dither(gray(40, 40, 90), palette.EGA)

	for y := 0; y < 36; y++ {
		for x := 0; x < 36; x++ {
			v := out.Pix[y*out.Stride+x]
			require.Equal(t, v, out.Pix[y*out.Stride+x+4])
			require.Equal(t, v, out.Pix[(y+4)*out.Stride+x])
		}
	}
}

func TestYliluoma(t *testing.T) {
	out := mustNew(t, Yliluoma, Options{}).Dither(gray(64, 64, 128), blackWhite)
	assert.Equal(t, 0.5, whiteFraction(out))

	// Tiles with the threshold map
	for y := 0; y < 56; y++ {
		for x := 0; x < 56; x++ {
			require.Equal(t, out.Pix[y*out.Stride+x], out.Pix[y*out.Stride+x+voidClusterSize])
			require.Equal(t, out.Pix[y*out.Stride+x], out.Pix[(y+voidClusterSize)*out.Stride+x])
		}
	}
}

func TestYliluomaLargePalette(t *testing.T) {
	p := make(color.Palette, 32)
	for i := range p {
		v := uint8(i * 255 / 31)
		p[i] = color.RGBA{v, v, v, 0xff}
	}

	d := mustNew(t, Yliluoma, Options{MixLevels: 16})

	// An exact palette entry is reproduced solid
	v := p[10].(color.RGBA).R
	out := d.Dither(gray(16, 16, v), p)
	for _, idx := range out.Pix {
		require.Equal(t, uint8(10), idx)
	}

	out = d.Dither(pattern(40, 40), p)
	for _, idx := range out.Pix {
		require.Less(t, int(idx), len(p))
	}
}

func TestMixerCandidates(t *testing.T) {
	p := make(color.Palette, 40)
	for i := range p {
		v := uint8(i * 6)
		p[i] = color.RGBA{v, v, v, 0xff}
	}
	mx := newMixer(p, DefaultMixLevels)
	assert.Nil(t, mx.mixes)

	cands := mx.candidates(palette.RGB{0, 0, 0}, nil)
	require.Len(t, cands, yliluomaMaxColors)
	for i, c := range cands {
		assert.Equal(t, i, c)
	}

	small := newMixer(palette.CGA1, DefaultMixLevels)
	assert.NotNil(t, small.mixes)
	assert.Equal(t, []int{0, 1, 2, 3}, small.candidates(palette.RGB{}, nil))
	assert.Equal(t, small.blend(1, 3, 20), small.mix(1, 3, 20))
}

func TestParallelRows(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 8, 100} {
		seen := make([]int, 37)
		done := make(chan [2]int, 100)
		parallelRows(len(seen), workers, func(y0, y1 int) {
			done <- [2]int{y0, y1}
		})
		close(done)
		for r := range done {
			for y := r[0]; y < r[1]; y++ {
				seen[y]++
			}
		}
		for y, n := range seen {
			assert.Equal(t, 1, n, "workers %d row %d", workers, y)
		}
	}
}
