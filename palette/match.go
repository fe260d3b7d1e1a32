package palette

import (
	"fmt"
	"image/color"
	"strings"
)

// RGB is a color with each channel in the range [0, 255]. Values outside
// that range are allowed while error is being accumulated.
type RGB [3]float64

// ToRGB converts c to an RGB, discarding alpha.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{float64(r >> 8), float64(g >> 8), float64(b >> 8)}
}

// Clamp limits every channel to [0, 255].
func (c RGB) Clamp() RGB {
	for i, v := range c {
		switch {
		case v < 0:
			c[i] = 0
		case v > 255:
			c[i] = 255
		}
	}
	return c
}

// Metric selects how the distance between two colors is measured.
type Metric int

const (
	// Euclidean is the plain squared distance in RGB space
	Euclidean Metric = iota
	// Weighted scales each channel by its contribution to luma
	Weighted
)

var metricWeights = [...]RGB{
	Euclidean: {1, 1, 1},
	Weighted:  {0.299, 0.587, 0.114},
}

var metricNames = [...]string{
	Euclidean: "euclidean",
	Weighted:  "weighted",
}

func (m Metric) String() string {
	if m < 0 || int(m) >= len(metricNames) {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return metricNames[m]
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	return m == Euclidean || m == Weighted
}

// ParseMetric returns the metric named s, ignoring case.
func ParseMetric(s string) (Metric, error) {
	for i, n := range metricNames {
		if strings.EqualFold(s, n) {
			return Metric(i), nil
		}
	}
	return 0, fmt.Errorf("palette: unknown metric %q", s)
}

// Distance returns the squared distance between a and b under m.
func (m Metric) Distance(a, b RGB) float64 {
	w := metricWeights[Euclidean]
	if m >= 0 && int(m) < len(metricWeights) {
		w = metricWeights[m]
	}
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return w[0]*dr*dr + w[1]*dg*dg + w[2]*db*db
}

// Matcher finds the nearest palette entry to a color. It holds no mutable
// state so a single Matcher can be shared between goroutines.
type Matcher struct {
	colors []RGB
	metric Metric
}

// NewMatcher returns a Matcher for p using metric m. p must not be empty.
func NewMatcher(p color.Palette, m Metric) *Matcher {
	colors := make([]RGB, len(p))
	for i, c := range p {
		colors[i] = ToRGB(c)
	}
	return &Matcher{
		colors: colors,
		metric: m,
	}
}

// Len returns the number of palette entries.
func (m *Matcher) Len() int {
	return len(m.colors)
}

// Color returns palette entry i.
func (m *Matcher) Color(i int) RGB {
	return m.colors[i]
}

// Index returns the index of the palette entry closest to c. Ties go to the
// earliest entry.
func (m *Matcher) Index(c RGB) int {
	best, bestDist := 0, m.metric.Distance(c, m.colors[0])
	for i := 1; i < len(m.colors); i++ {
		if d := m.metric.Distance(c, m.colors[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
