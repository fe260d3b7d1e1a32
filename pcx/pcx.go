/*
Package pcx implements a ZSoft PCX image decoder and encoder.

Only the 256 color variant used by VGA era software is supported: a single
plane of 8-bit palette indices, run length encoded one scanline at a time.

The file starts with a 128 byte header giving the image bounds and the number
of bytes per scanline, which is always even so a line may carry a padding
byte. Each scanline is encoded as a sequence of runs; a byte with the top two
bits set holds a repeat count in the lower six bits and is followed by the
value to repeat, any other byte is a literal. The file ends with a marker byte
of 0x0c and the 256 entry palette as 768 bytes of RGB triples.
*/
package pcx

import (
	"encoding/binary"
	"image"
)

const (
	manufacturer  = 0x0a
	version       = 5
	encodingRLE   = 1
	bitsPerPixel  = 8
	headerSize    = 128
	paletteMarker = 0x0c
	paletteColors = 256
	paletteSize   = paletteColors * 3
	runFlag       = 0xc0
	maxRun        = 0x3f
	maxDimension  = 0xffff
	defaultDPI    = 72
)

type header struct {
	Manufacturer uint8
	Version      uint8
	Encoding     uint8
	BitsPerPixel uint8
	XMin         uint16
	YMin         uint16
	XMax         uint16
	YMax         uint16
	HDPI         uint16
	VDPI         uint16
	ColorMap     [48]uint8
	Reserved     uint8
	Planes       uint8
	BytesPerLine uint16
	PaletteInfo  uint16
	HScreenSize  uint16
	VScreenSize  uint16
	Filler       [54]uint8
}

func (h *header) size() (int, int) {
	return int(h.XMax) - int(h.XMin) + 1, int(h.YMax) - int(h.YMin) + 1
}

func init() {
	if binary.Size(header{}) != headerSize {
		panic("pcx: bad header size")
	}
	image.RegisterFormat("pcx", "\x0a?\x01\x08", Decode, DecodeConfig)
}
