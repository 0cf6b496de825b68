package scale

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"incomedash/internal/data"
)

// blues is the 9-class sequential ColorBrewer ramp, light to dark.
var blues = mustRamp("#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b")

func mustRamp(hexes ...string) []colorful.Color {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

// Blues samples the ramp at t in [0, 1] with a uniform cubic B-spline
// through the stops, per channel in RGB.
func Blues(t float64) colorful.Color {
	return basisRGB(blues, t)
}

func basisRGB(stops []colorful.Color, t float64) colorful.Color {
	r := make([]float64, len(stops))
	g := make([]float64, len(stops))
	b := make([]float64, len(stops))
	for i, c := range stops {
		r[i], g[i], b[i] = c.R, c.G, c.B
	}
	return colorful.Color{R: basis(r, t), G: basis(g, t), B: basis(b, t)}.Clamped()
}

func basis(values []float64, t float64) float64 {
	n := len(values) - 1
	var i int
	switch {
	case math.IsNaN(t):
		t = 0.5
		i = int(t * float64(n))
	case t <= 0:
		t = 0
	case t >= 1:
		t = 1
		i = n - 1
	default:
		i = min(n-1, int(math.Floor(t*float64(n))))
	}
	v1, v2 := values[i], values[i+1]
	v0 := 2*v1 - v2
	if i > 0 {
		v0 = values[i-1]
	}
	v3 := 2*v2 - v1
	if i < n-1 {
		v3 = values[i+2]
	}
	t1 := (t - float64(i)/float64(n)) * float64(n)
	t2 := t1 * t1
	t3 := t2 * t1
	return ((1-3*t1+3*t2-t3)*v0 + (4-6*t2+3*t3)*v1 + (1+3*t1+3*t2-3*t3)*v2 + t3*v3) / 6
}

// Sequential maps a numeric domain onto the Blues ramp.
type Sequential struct {
	Lo, Hi float64
}

// SequentialFor spans [min, max] of the records' measures.
func SequentialFor(records []data.Record) (Sequential, error) {
	lo, hi, ok := data.Extent(records)
	if !ok {
		return Sequential{}, ErrEmptyDomain
	}
	return Sequential{Lo: lo, Hi: hi}, nil
}

// Color returns the hex fill for v. A single-valued domain maps to the
// middle of the ramp.
func (s Sequential) Color(v float64) string {
	t := 0.5
	if s.Hi != s.Lo {
		t = fraction(v, s.Lo, s.Hi)
	}
	return Blues(t).Hex()
}

// Darker scales each RGB channel by 0.7^k. Unparseable input is returned
// unchanged.
func Darker(hex string, k float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	f := math.Pow(0.7, k)
	return colorful.Color{R: c.R * f, G: c.G * f, B: c.B * f}.Clamped().Hex()
}
