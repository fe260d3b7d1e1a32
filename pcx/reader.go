package pcx

import (
	"bufio"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"
)

var (
	errNotPCX         = errors.New("pcx: not a PCX file")
	errUnsupported    = errors.New("pcx: unsupported PCX variant")
	errBadBounds      = errors.New("pcx: invalid image bounds")
	errNotEnough      = errors.New("pcx: not enough image data")
	errRunOverflow    = errors.New("pcx: run extends past end of scanline")
	errMissingPalette = errors.New("pcx: missing palette")
)

type decoder struct {
	r *bufio.Reader

	header  header
	width   int
	height  int
	palette color.Palette

	image *image.Paletted
}

func (d *decoder) readHeader() error {
	if err := binary.Read(d.r, binary.LittleEndian, &d.header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errNotPCX
		}
		return err
	}

	h := &d.header
	if h.Manufacturer != manufacturer || h.Encoding != encodingRLE {
		return errNotPCX
	}
	if h.BitsPerPixel != bitsPerPixel || h.Planes != 1 {
		return errUnsupported
	}
	if h.XMax < h.XMin || h.YMax < h.YMin {
		return errBadBounds
	}

	d.width, d.height = h.size()
	if int(h.BytesPerLine) < d.width {
		return errBadBounds
	}

	return nil
}

// readScanline decodes one line of runs into line, which is BytesPerLine
// long. Runs never cross a scanline boundary.
func (d *decoder) readScanline(line []byte) error {
	for i := 0; i < len(line); {
		b, err := d.r.ReadByte()
		if err != nil {
			return err
		}

		n := 1
		if b&runFlag == runFlag {
			n = int(b & maxRun)
			if b, err = d.r.ReadByte(); err != nil {
				return err
			}
		}
		if i+n > len(line) {
			return errRunOverflow
		}
		for ; n > 0; n-- {
			line[i] = b
			i++
		}
	}
	return nil
}

func (d *decoder) readPalette() error {
	// The palette is the last 769 bytes of the file, after the image data
	var tmp [paletteSize + 1]byte
	if _, err := io.ReadFull(d.r, tmp[:]); err != nil {
		return errMissingPalette
	}
	if tmp[0] != paletteMarker {
		return errMissingPalette
	}

	d.palette = make(color.Palette, paletteColors)
	for i := range d.palette {
		rgb := tmp[1+i*3:]
		d.palette[i] = color.RGBA{rgb[0], rgb[1], rgb[2], 0xff}
	}
	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = bufio.NewReader(r)

	if err := d.readHeader(); err != nil {
		return err
	}

	stride := int(d.header.BytesPerLine)
	pix := make([]byte, d.width*d.height)
	line := make([]byte, stride)

	for y := 0; y < d.height; y++ {
		if err := d.readScanline(line); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return errNotEnough
			}
			return err
		}
		copy(pix[y*d.width:], line[:d.width])
	}

	if err := d.readPalette(); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	d.image = &image.Paletted{
		Pix:     pix,
		Stride:  d.width,
		Rect:    image.Rect(0, 0, d.width, d.height),
		Palette: d.palette,
	}

	return nil
}

// Decode reads a PCX image from r and returns it as an image.Image. The type
// of the returned image is always *image.Paletted.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the color model and dimensions of a PCX image. As the
// palette is stored after the pixel data the whole image is read.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: d.palette,
		Width:      d.width,
		Height:     d.height,
	}, nil
}
