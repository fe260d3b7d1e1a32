/*
Package dither reduces a true color image to a palette while reproducing the
texture of the period dithering techniques.

Two families are implemented. Error diffusion methods visit pixels in a fixed
order and push each pixel's quantization error onto pixels not yet visited;
they are inherently sequential. Ordered methods perturb every pixel by a
position dependent threshold before picking the nearest color and can be
split across goroutines.

Every Ditherer returns an *image.Paletted using the palette it was given, so
every output pixel is by construction an exact palette entry.
*/
package dither

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"unicode"

	"github.com/bodgit/retro/palette"
)

// ErrUnknownMethod is returned for an unrecognised dithering method.
var ErrUnknownMethod = errors.New("dither: unknown method")

// Method identifies a dithering algorithm.
type Method int

// The zero Method is deliberately invalid so callers can tell "unset" apart
// from a real choice.
const (
	FloydSteinberg Method = iota + 1
	Riemersma
	JarvisJudiceNinke
	Stucki
	Burkes
	Sierra3
	Sierra2
	Sierra24A
	Atkinson
	None
	Yliluoma
	ClusterDot
	Bayer2
	Bayer4
	Bayer8
	Bayer16
)

var methodNames = [...]string{
	FloydSteinberg:    "FloydSteinberg",
	Riemersma:         "Riemersma",
	JarvisJudiceNinke: "JarvisJudiceNinke",
	Stucki:            "Stucki",
	Burkes:            "Burkes",
	Sierra3:           "Sierra3",
	Sierra2:           "Sierra2",
	Sierra24A:         "Sierra2-4A",
	Atkinson:          "Atkinson",
	None:              "None",
	Yliluoma:          "Yliluoma",
	ClusterDot:        "ClusterDot",
	Bayer2:            "Bayer2",
	Bayer4:            "Bayer4",
	Bayer8:            "Bayer8",
	Bayer16:           "Bayer16",
}

func (m Method) String() string {
	if m < FloydSteinberg || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// Methods returns every method, error diffusion first, then the ordered
// methods.
func Methods() []Method {
	methods := make([]Method, 0, len(methodNames)-1)
	for m := FloydSteinberg; int(m) < len(methodNames); m++ {
		methods = append(methods, m)
	}
	return methods
}

// ErrorDiffusion reports whether m belongs to the error diffusion family.
func (m Method) ErrorDiffusion() bool {
	return m >= FloydSteinberg && m <= None
}

// Ordered reports whether m belongs to the ordered family.
func (m Method) Ordered() bool {
	return m >= Yliluoma && m <= Bayer16
}

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	return m.ErrorDiffusion() || m.Ordered()
}

// key reduces a name to lower case letters and digits, dropping any
// "(ordered)" suffix and "NxN" size so "Bayer 8x8 (ordered)" becomes "bayer8".
func key(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "(ordered)"))
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	k := b.String()
	if strings.HasPrefix(k, "bayer") {
		if i := strings.IndexByte(k, 'x'); i > 0 {
			k = k[:i]
		}
	}
	return k
}

var methodKeys = func() map[string]Method {
	keys := make(map[string]Method, len(methodNames))
	for _, m := range Methods() {
		keys[key(m.String())] = m
	}
	keys["fs"] = FloydSteinberg
	keys["jjn"] = JarvisJudiceNinke
	keys["sierralite"] = Sierra24A
	keys["clustereddot"] = ClusterDot
	keys["nearest"] = None
	return keys
}()

// ParseMethod returns the method named s. Matching ignores case, spacing and
// punctuation, so "Floyd-Steinberg", "floydsteinberg" and "Bayer 8x8
// (ordered)" are all accepted.
func ParseMethod(s string) (Method, error) {
	if m, ok := methodKeys[key(s)]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// DefaultThresholds is the per channel threshold scale applied by the ordered
// methods when Options.Thresholds is zero.
var DefaultThresholds = [3]float64{64, 64, 64}

const (
	// DefaultMixLevels is the number of mixing steps between two colors
	// used by Yliluoma when Options.MixLevels is zero
	DefaultMixLevels = 64
	// MaxMixLevels is the finest mixing granularity allowed
	MaxMixLevels = 256
)

var errMixLevels = fmt.Errorf("dither: mix levels must be between 0 and %d", MaxMixLevels)

// Options tunes a Ditherer.
type Options struct {
	// Thresholds scales the ordered threshold matrix per channel
	Thresholds [3]float64
	// Metric is used for nearest color lookups
	Metric palette.Metric
	// MixLevels is the mixing ratio granularity for Yliluoma
	MixLevels int
	// Workers is the number of goroutines used by the ordered methods;
	// values below two mean run sequentially
	Workers int
}

func (o Options) thresholds() palette.RGB {
	t := o.Thresholds
	if t == [3]float64{} {
		t = DefaultThresholds
	}
	return palette.RGB(t)
}

func (o Options) mixLevels() int {
	if o.MixLevels <= 0 {
		return DefaultMixLevels
	}
	return o.MixLevels
}

// Ditherer maps an image onto a palette.
type Ditherer interface {
	// Dither returns m reduced to p. The result is anchored at the origin
	// and uses p as its palette. p must not be empty and must have no
	// more than 256 entries.
	Dither(m *image.NRGBA, p color.Palette) *image.Paletted
}

// New returns the Ditherer implementing method m.
func New(m Method, o Options) (Ditherer, error) {
	switch m {
	case FloydSteinberg, JarvisJudiceNinke, Stucki, Burkes, Sierra3, Sierra2, Sierra24A, Atkinson:
		return &errorDiffusion{kernel: kernels[m], metric: o.Metric}, nil
	case Riemersma:
		return &riemersma{size: riemersmaHistory, ratio: riemersmaRatio, metric: o.Metric}, nil
	case None:
		return &nearest{metric: o.Metric, workers: o.Workers}, nil
	case Yliluoma:
		if o.MixLevels < 0 || o.MixLevels > MaxMixLevels {
			return nil, errMixLevels
		}
		return &yliluoma{levels: o.mixLevels(), workers: o.Workers}, nil
	case ClusterDot:
		return newOrdered(clusterDot, o), nil
	case Bayer2:
		return newOrdered(bayer(2), o), nil
	case Bayer4:
		return newOrdered(bayer(4), o), nil
	case Bayer8:
		return newOrdered(bayer(8), o), nil
	case Bayer16:
		return newOrdered(bayer(16), o), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, m)
}

// load copies m into a working buffer of colors, row-major from the top left
// corner of its bounds.
func load(m *image.NRGBA) (int, int, []palette.RGB) {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := make([]palette.RGB, w*h)
	for y := 0; y < h; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+3 : x*4+3]
			buf[y*w+x] = palette.RGB{float64(px[0]), float64(px[1]), float64(px[2])}
		}
	}
	return w, h, buf
}
