package retro

import (
	"fmt"
	"image"
	"image/color"
)

// Buffer is a plain row-major block of 8-bit samples with either three (RGB)
// or four (RGBA) channels per pixel.
type Buffer struct {
	Width, Height int
	Channels      int
	Pix           []uint8
}

func (b *Buffer) validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.Width, b.Height)
	}
	if b.Channels != 3 && b.Channels != 4 {
		return fmt.Errorf("%w: %d channels", errInvalidBuffer, b.Channels)
	}
	if len(b.Pix) != b.Width*b.Height*b.Channels {
		return fmt.Errorf("%w: %d samples for %dx%dx%d", errInvalidBuffer, len(b.Pix), b.Width, b.Height, b.Channels)
	}
	return nil
}

// Image returns the buffer as an image. RGB buffers are treated as opaque.
func (b *Buffer) Image() (*image.NRGBA, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	m := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	if b.Channels == 4 {
		copy(m.Pix, b.Pix)
		return m, nil
	}
	for i, j := 0, 0; i < len(m.Pix); i, j = i+4, j+3 {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = b.Pix[j], b.Pix[j+1], b.Pix[j+2], 0xff
	}
	return m, nil
}

// NewBuffer returns the pixels of m in a Buffer with the given number of
// channels.
func NewBuffer(m image.Image, channels int) (*Buffer, error) {
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("%w: %d channels", errInvalidBuffer, channels)
	}

	r := m.Bounds()
	b := &Buffer{
		Width:    r.Dx(),
		Height:   r.Dy(),
		Channels: channels,
		Pix:      make([]uint8, 0, r.Dx()*r.Dy()*channels),
	}

	// Paletted images are by far the common case here
	if pm, ok := m.(*image.Paletted); ok {
		rgba := make([][4]uint8, len(pm.Palette))
		for i, c := range pm.Palette {
			cr, cg, cb, ca := c.RGBA()
			rgba[i] = [4]uint8{uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8), uint8(ca >> 8)}
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for _, idx := range pm.Pix[pm.PixOffset(r.Min.X, y):][:r.Dx()] {
				b.Pix = append(b.Pix, rgba[idx][:channels]...)
			}
		}
		return b, nil
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			px := [4]uint8{c.R, c.G, c.B, c.A}
			b.Pix = append(b.Pix, px[:channels]...)
		}
	}
	return b, nil
}

// ConvertBuffer converts b and returns the result in a new Buffer with the
// same number of channels. Every pixel of the result is a palette color or
// the background. A zero cfg.Multiplier is taken as 1; anything else outside
// 1 to MaxMultiplier fails with ErrInvalidMultiplier.
func (c *Converter) ConvertBuffer(b *Buffer, cfg Config) (*Buffer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m, err := b.Image()
	if err != nil {
		return nil, err
	}

	r, err := c.Convert(m, cfg)
	if err != nil {
		return nil, err
	}

	return NewBuffer(r.Image, b.Channels)
}
