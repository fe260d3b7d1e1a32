package resample

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPalette = color.Palette{
	color.RGBA{0x00, 0x00, 0x00, 0xff},
	color.RGBA{0xff, 0x00, 0x00, 0xff},
	color.RGBA{0x00, 0xff, 0x00, 0xff},
	color.RGBA{0x00, 0x00, 0xff, 0xff},
}

func makeTestPaletted(w, h int) *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, w, h), testPalette)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetColorIndex(x, y, uint8((x*7+y*3)%len(testPalette)))
		}
	}
	return m
}

func makeTestImage(w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 17) ^ (y * 31)),
				G: uint8((x * 43) + (y * 13)),
				B: uint8((x * 7) ^ (y * 11)),
				A: 0xff,
			})
		}
	}
	return m
}

func TestUpscale(t *testing.T) {
	src := makeTestPaletted(7, 5)

	for n := 1; n <= 10; n++ {
		dst, err := Upscale(src, n)
		require.NoError(t, err)
		require.Equal(t, image.Pt(7*n, 5*n), dst.Bounds().Size())

		for y := 0; y < 5*n; y++ {
			for x := 0; x < 7*n; x++ {
				if !assert.Equal(t, src.ColorIndexAt(x/n, y/n), dst.ColorIndexAt(x, y)) {
					return
				}
			}
		}
	}
}

func TestUpscaleOffsetBounds(t *testing.T) {
	src := makeTestPaletted(6, 6).SubImage(image.Rect(2, 2, 5, 4)).(*image.Paletted)

	dst, err := Upscale(src, 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 4), dst.Bounds())
	assert.Equal(t, src.ColorIndexAt(2, 2), dst.ColorIndexAt(0, 0))
	assert.Equal(t, src.ColorIndexAt(4, 3), dst.ColorIndexAt(5, 3))
}

func TestUpscaleInvalid(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := Upscale(makeTestPaletted(2, 2), n)
		assert.ErrorIs(t, err, ErrInvalidMultiplier)
	}
}

func TestDownscale(t *testing.T) {
	src := makeTestImage(97, 61)

	for _, f := range []Filter{Lanczos, CatmullRom} {
		dst, err := Downscale(src, image.Pt(40, 30), f)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 40, 30), dst.Bounds())
	}

	_, err := Downscale(src, image.Pt(0, 30), Lanczos)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestDownscaleSameSize(t *testing.T) {
	src := makeTestImage(32, 24)

	dst, err := Downscale(src, image.Pt(32, 24), Lanczos)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, dst.Pix)

	// Must be a copy
	dst.Pix[0]++
	assert.NotEqual(t, src.Pix[0], dst.Pix[0])
}

func TestDownscaleUniform(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 200, 150))
	for i := 0; i < len(src.Pix); i += 4 {
		copy(src.Pix[i:], []uint8{0x80, 0x40, 0xc0, 0xff})
	}

	dst, err := Downscale(src, image.Pt(33, 17), Lanczos)
	require.NoError(t, err)
	for i := 0; i < len(dst.Pix); i += 4 {
		assert.InDelta(t, 0x80, dst.Pix[i+0], 1)
		assert.InDelta(t, 0x40, dst.Pix[i+1], 1)
		assert.InDelta(t, 0xc0, dst.Pix[i+2], 1)
	}
}

func TestLanczos3(t *testing.T) {
	assert.Equal(t, 1.0, Lanczos3.At(0))
	assert.InDelta(t, 0, Lanczos3.At(1), 1e-12)
	assert.InDelta(t, 0, Lanczos3.At(2), 1e-12)
	assert.Equal(t, 0.0, Lanczos3.At(3))
	assert.Less(t, Lanczos3.At(1.5), 0.0)
}

func TestFlatten(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{0xff, 0xff, 0xff, 0xff})
	src.SetNRGBA(1, 0, color.NRGBA{0xff, 0x00, 0x80, 0x00})

	dst := Flatten(src)
	assert.Equal(t, color.NRGBA{0xff, 0xff, 0xff, 0xff}, dst.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{0x00, 0x00, 0x00, 0xff}, dst.NRGBAAt(1, 0))
}

func TestCrop(t *testing.T) {
	src := makeTestImage(10, 8)

	dst := Crop(src, image.Rect(2, 1, 6, 5))
	assert.Equal(t, image.Rect(0, 0, 4, 4), dst.Bounds())
	assert.Equal(t, src.NRGBAAt(2, 1), dst.NRGBAAt(0, 0))
	assert.Equal(t, src.NRGBAAt(5, 4), dst.NRGBAAt(3, 3))

	assert.Same(t, src, Crop(src, src.Bounds()))
}

func TestStretch(t *testing.T) {
	src := makeTestPaletted(320, 200)

	dst, err := Stretch(src, image.Pt(320, 240))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 320, 240), dst.Bounds())
	assert.Equal(t, src.Palette, dst.Palette)

	// Every row of the result is a copy of some source row
	rows := make(map[string]bool)
	for y := 0; y < 200; y++ {
		rows[string(src.Pix[y*src.Stride:][:320])] = true
	}
	for y := 0; y < 240; y++ {
		assert.True(t, rows[string(dst.Pix[y*dst.Stride:][:320])])
	}
}
