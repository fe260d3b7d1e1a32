package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/soniakeys/quant/median"
)

// MaxColors is the largest palette an image.Paletted can index.
const MaxColors = 256

var errBadSize = errors.New("palette: adaptive size must be between 1 and 256")

// MedianCut is the default quantizer used for adaptive palettes.
var MedianCut draw.Quantizer = quantize.MedianCutQuantizer{}

// Median is an alternative median cut quantizer that splits on the widest
// channel of each box.
var Median draw.Quantizer = medianQuantizer{}

type medianQuantizer struct{}

func (medianQuantizer) Quantize(p color.Palette, m image.Image) color.Palette {
	n := cap(p) - len(p)
	if n <= 0 {
		return p
	}
	return append(p, median.Quantizer(n).Paletted(m).Palette...)
}

var quantizers = map[string]draw.Quantizer{
	"mediancut": MedianCut,
	"median":    Median,
}

// ParseQuantizer returns the named quantizer. An empty name selects
// MedianCut.
func ParseQuantizer(name string) (draw.Quantizer, error) {
	if name == "" {
		return MedianCut, nil
	}
	if q, ok := quantizers[strings.ToLower(name)]; ok {
		return q, nil
	}
	return nil, fmt.Errorf("palette: unknown quantizer %q", name)
}

// Adaptive is a Source that derives a palette of up to Colors entries from
// each image.
type Adaptive struct {
	Colors    int
	Quantizer draw.Quantizer
}

// Size returns the number of colors requested.
func (a Adaptive) Size() int {
	return a.Colors
}

// Palette runs the quantizer over m. The result is deterministic for a given
// image and never contains duplicates, so when m has fewer distinct colors
// than requested the palette is returned along with an *ExhaustedError.
func (a Adaptive) Palette(m image.Image) (color.Palette, error) {
	if a.Colors < 1 || a.Colors > MaxColors {
		return nil, errBadSize
	}

	q := a.Quantizer
	if q == nil {
		q = MedianCut
	}

	p := Normalize(q.Quantize(make(color.Palette, 0, a.Colors), m))
	if len(p) > a.Colors {
		p = p[:a.Colors]
	}

	switch {
	case len(p) == 0:
		return nil, &ExhaustedError{Requested: a.Colors}
	case len(p) < a.Colors:
		return p, &ExhaustedError{Requested: a.Colors, Got: len(p)}
	}

	return p, nil
}
