/*
Package compose places dithered content onto the output canvas.
*/
package compose

import (
	"image"
	"image/color"

	"github.com/bodgit/retro/palette"
)

// Background returns the palette to use for a padded canvas along with the
// index of bg within it. If bg is already an entry of p then p is returned
// as is, otherwise bg is appended to a copy of p. The boolean is false when
// p is full and has no room for bg.
func Background(p color.Palette, bg color.Color) (color.Palette, uint8, bool) {
	if i := palette.Find(p, bg); i >= 0 {
		return p, uint8(i), true
	}
	if len(p) >= palette.MaxColors {
		return p, 0, false
	}

	out := make(color.Palette, len(p), len(p)+1)
	copy(out, p)
	r, g, b, _ := bg.RGBA()
	out = append(out, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0xff})

	return out, uint8(len(p)), true
}

// Pad returns a canvas sized image with m copied to offset and every other
// pixel set to bg. When the canvas is the same size as m there is nothing to
// pad and m is returned unchanged.
//
// If bg cannot be added to a full palette the nearest existing entry is used
// instead.
func Pad(m *image.Paletted, canvas, offset image.Point, bg color.Color) *image.Paletted {
	b := m.Bounds()
	if canvas == b.Size() {
		return m
	}

	p, idx, ok := Background(m.Palette, bg)
	if !ok {
		idx = uint8(m.Palette.Index(bg))
	}

	dst := image.NewPaletted(image.Rectangle{Max: canvas}, p)
	if idx != 0 {
		for i := range dst.Pix {
			dst.Pix[i] = idx
		}
	}

	// Clip the content to the canvas
	r := image.Rectangle{Min: offset, Max: offset.Add(b.Size())}.Intersect(dst.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		sx, sy := b.Min.X+r.Min.X-offset.X, b.Min.Y+y-offset.Y
		copy(dst.Pix[dst.PixOffset(r.Min.X, y):][:r.Dx()], m.Pix[m.PixOffset(sx, sy):])
	}

	return dst
}
