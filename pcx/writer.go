package pcx

import (
	"bufio"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

var errTooLarge = errors.New("pcx: image is too large")

type encoder struct {
	w *bufio.Writer
}

// encodeScanline writes line as runs. Literal values that would be mistaken
// for a run count are written as a run of one.
func (e *encoder) encodeScanline(line []byte) error {
	for i := 0; i < len(line); {
		b := line[i]
		n := 1
		for i+n < len(line) && n < maxRun && line[i+n] == b {
			n++
		}
		i += n

		if n > 1 || b&runFlag == runFlag {
			if err := e.w.WriteByte(runFlag | byte(n)); err != nil {
				return err
			}
		}
		if err := e.w.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encode(m *image.Paletted) error {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()

	// Scanlines are padded to an even number of bytes
	stride := w + w&1

	hdr := header{
		Manufacturer: manufacturer,
		Version:      version,
		Encoding:     encodingRLE,
		BitsPerPixel: bitsPerPixel,
		XMax:         uint16(w - 1),
		YMax:         uint16(h - 1),
		HDPI:         defaultDPI,
		VDPI:         defaultDPI,
		Planes:       1,
		BytesPerLine: uint16(stride),
		PaletteInfo:  1,
	}
	if err := binary.Write(e.w, binary.LittleEndian, &hdr); err != nil {
		return err
	}

	line := make([]byte, stride)
	for y := 0; y < h; y++ {
		copy(line, m.Pix[m.PixOffset(b.Min.X, b.Min.Y+y):][:w])
		if err := e.encodeScanline(line); err != nil {
			return err
		}
	}

	var tmp [paletteSize + 1]byte
	tmp[0] = paletteMarker
	for i, c := range m.Palette {
		cr, cg, cb, _ := c.RGBA()
		tmp[1+i*3], tmp[2+i*3], tmp[3+i*3] = byte(cr>>8), byte(cg>>8), byte(cb>>8)
	}
	if _, err := e.w.Write(tmp[:]); err != nil {
		return err
	}

	return e.w.Flush()
}

// Encode writes the Image m to w in 256 color PCX format. An *image.Paletted
// is written with its own palette, any other image is first reduced to 256
// colors.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return errBadBounds
	}
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		return errTooLarge
	}

	pm, _ := m.(*image.Paletted)
	if pm == nil || len(pm.Palette) > paletteColors {
		var p color.Palette
		if cp, ok := m.ColorModel().(color.Palette); ok && len(cp) <= paletteColors {
			p = cp
		} else {
			p = quantize.MedianCutQuantizer{}.Quantize(make(color.Palette, 0, paletteColors), m)
		}
		pm = image.NewPaletted(b, p)
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	e := encoder{w: bufio.NewWriter(w)}

	return e.encode(pm)
}
