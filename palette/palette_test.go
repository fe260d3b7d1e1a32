package palette

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestImage(w, h int) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetRGBA(x, y, color.RGBA{
				R: uint8((x * 17) ^ (y * 31)),
				G: uint8((x * 43) + (y * 13)),
				B: uint8((x * 7) ^ (y * 11)),
				A: 0xff,
			})
		}
	}
	return m
}

func TestFixed(t *testing.T) {
	black := rgb(0, 0, 0)
	white := rgb(0xff, 0xff, 0xff)

	tables := []struct {
		name    string
		palette color.Palette
		size    int
	}{
		{"EGA", EGA, 16},
		{"CGA-1", CGA1, 4},
		{"CGA-2", CGA2, 4},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			p, err := Lookup(table.name)
			require.NoError(t, err)
			assert.Equal(t, table.palette, p)
			assert.Len(t, p, table.size)
			assert.Len(t, Normalize(p), table.size, "duplicate colors")
			assert.True(t, Contains(p, black))

			size := Fixed(p).Size()
			assert.Equal(t, table.size, size)
		})
	}

	assert.True(t, Contains(EGA, white))
	assert.True(t, Contains(CGA1, white))
	assert.False(t, Contains(CGA2, white))

	// Callers get their own copy of a fixed table
	p, err := Fixed(EGA).Palette(nil)
	require.NoError(t, err)
	p[0] = white
	assert.Equal(t, black, EGA[0])

	_, err = Lookup("hercules")
	assert.True(t, errors.Is(err, ErrUnknownPalette))
}

func TestNormalize(t *testing.T) {
	p := Normalize(color.Palette{
		color.Gray{0x80},
		color.RGBA{0x80, 0x80, 0x80, 0xff},
		color.NRGBA{0x00, 0x00, 0xff, 0xff},
		color.Black,
	})
	assert.Equal(t, color.Palette{
		rgb(0x80, 0x80, 0x80),
		rgb(0x00, 0x00, 0xff),
		rgb(0x00, 0x00, 0x00),
	}, p)
}

func TestFind(t *testing.T) {
	assert.Equal(t, 15, Find(EGA, color.White))
	assert.Equal(t, 0, Find(CGA2, color.RGBA{0, 0, 0, 0xff}))
	assert.Equal(t, -1, Find(CGA2, color.White))
}

func TestAdaptive(t *testing.T) {
	m := makeTestImage(64, 48)

	for name, q := range quantizers {
		t.Run(name, func(t *testing.T) {
			a := Adaptive{Colors: 16, Quantizer: q}

			p1, err := a.Palette(m)
			if err != nil {
				require.True(t, errors.Is(err, ErrExhausted))
			}
			require.NotEmpty(t, p1)
			assert.LessOrEqual(t, len(p1), 16)
			assert.Equal(t, Normalize(p1), p1)

			p2, _ := a.Palette(m)
			assert.Equal(t, p1, p2, "not deterministic")
		})
	}
}

func TestAdaptiveExhausted(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 30, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 30; x++ {
			switch x / 10 {
			case 0:
				m.SetRGBA(x, y, color.RGBA{0xff, 0x00, 0x00, 0xff})
			case 1:
				m.SetRGBA(x, y, color.RGBA{0x00, 0xff, 0x00, 0xff})
			default:
				m.SetRGBA(x, y, color.RGBA{0x00, 0x00, 0xff, 0xff})
			}
		}
	}

	p, err := Adaptive{Colors: 256}.Palette(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExhausted))

	var exhausted *ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 256, exhausted.Requested)
	assert.Equal(t, len(p), exhausted.Got)
	assert.NotEmpty(t, p)
	assert.LessOrEqual(t, len(p), 3)
}

func TestAdaptiveBadSize(t *testing.T) {
	for _, n := range []int{0, 257} {
		_, err := Adaptive{Colors: n}.Palette(makeTestImage(4, 4))
		assert.Error(t, err)
	}
}

func TestParseQuantizer(t *testing.T) {
	q, err := ParseQuantizer("")
	require.NoError(t, err)
	assert.Equal(t, MedianCut, q)

	q, err = ParseQuantizer("Median")
	require.NoError(t, err)
	assert.Equal(t, Median, q)

	_, err = ParseQuantizer("octree")
	assert.Error(t, err)
}

func TestMatcher(t *testing.T) {
	m := NewMatcher(EGA, Euclidean)
	require.Equal(t, 16, m.Len())

	for i, c := range EGA {
		assert.Equal(t, i, m.Index(ToRGB(c)))
	}

	assert.Equal(t, 0, m.Index(RGB{-40, -40, -40}))
	assert.Equal(t, 15, m.Index(RGB{300, 300, 300}))
}

func TestMatcherTies(t *testing.T) {
	p := color.Palette{
		rgb(0x00, 0x00, 0x00),
		rgb(0xff, 0xff, 0xff),
		rgb(0x00, 0x00, 0x00),
	}

	// 127.5 is equidistant from black and white; the first entry wins
	m := NewMatcher(p, Euclidean)
	assert.Equal(t, 0, m.Index(RGB{127.5, 127.5, 127.5}))
	assert.Equal(t, 0, m.Index(RGB{0, 0, 0}))

	single := NewMatcher(color.Palette{rgb(0x12, 0x34, 0x56)}, Weighted)
	assert.Equal(t, 0, single.Index(RGB{255, 0, 255}))
}

func TestMetric(t *testing.T) {
	a, b := RGB{0, 0, 0}, RGB{10, 0, 0}
	c := RGB{0, 10, 0}

	assert.Equal(t, 100.0, Euclidean.Distance(a, b))
	assert.Equal(t, Euclidean.Distance(a, b), Euclidean.Distance(a, c))
	assert.Less(t, Weighted.Distance(a, b), Weighted.Distance(a, c))

	for _, m := range []Metric{Euclidean, Weighted} {
		p, err := ParseMetric(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, p)
	}
	_, err := ParseMetric("ciede2000")
	assert.Error(t, err)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, RGB{0, 128, 255}, RGB{-12.5, 128, 300}.Clamp())
}
