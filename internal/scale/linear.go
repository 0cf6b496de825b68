package scale

import (
	"errors"
	"math"

	"incomedash/internal/data"
)

// ErrEmptyDomain is returned when a scale is requested for no records.
var ErrEmptyDomain = errors.New("scale: empty record list")

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Linear is a continuous mapping from a numeric domain to a pixel range.
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{D0: d0, D1: d1, R0: r0, R1: r1}
}

// ForMeasure builds the value axis for a bar view: domain
// [0, max(Mean)*padding] mapped onto [r0, r1], then niced. Records with no
// positive maximum get the unit domain so every bar sits on the baseline.
func ForMeasure(records []data.Record, padding, r0, r1 float64) (Linear, error) {
	if len(records) == 0 {
		return Linear{}, ErrEmptyDomain
	}
	_, hi, _ := data.Extent(records)
	hi *= padding
	if !(hi > 0) {
		hi = 1
	}
	if math.IsInf(hi, 1) {
		hi = math.MaxFloat64
	}
	return NewLinear(0, hi, r0, r1).Nice(10), nil
}

// Map interpolates v into the range. A zero-width domain maps to the
// middle of the range.
func (l Linear) Map(v float64) float64 {
	if l.D1 == l.D0 {
		return (l.R0 + l.R1) / 2
	}
	return l.R0 + fraction(v, l.D0, l.D1)*(l.R1-l.R0)
}

// fraction is (v-lo)/(hi-lo) for domains whose width overflows float64.
func fraction(v, lo, hi float64) float64 {
	if w := hi - lo; !math.IsInf(w, 0) {
		return (v - lo) / w
	}
	return (v/2 - lo/2) / (hi/2 - lo/2)
}

// Nice extends the domain outward to round tick boundaries.
func (l Linear) Nice(count int) Linear {
	start, stop := l.D0, l.D1
	rev := stop < start
	if rev {
		start, stop = stop, start
	}
	var prev float64
	for i := 0; i < 10; i++ {
		step := tickIncrement(start, stop, count)
		if step == 0 || step == prev {
			break
		}
		s0, s1 := start, stop
		if step > 0 {
			s0 = math.Floor(start/step) * step
			s1 = math.Ceil(stop/step) * step
		} else {
			s0 = math.Ceil(start*step) / step
			s1 = math.Floor(stop*step) / step
		}
		if math.IsInf(s0, 0) || math.IsInf(s1, 0) {
			break
		}
		start, stop = s0, s1
		prev = step
	}
	if rev {
		start, stop = stop, start
	}
	l.D0, l.D1 = start, stop
	return l
}

// Ticks returns roughly count round values spanning the domain.
func (l Linear) Ticks(count int) []float64 {
	start, stop := l.D0, l.D1
	if start == stop || count <= 0 {
		return []float64{start}
	}
	rev := stop < start
	if rev {
		start, stop = stop, start
	}
	if math.IsInf(stop-start, 0) {
		// no round step spans an overflowing domain
		if rev {
			return []float64{stop, start}
		}
		return []float64{start, stop}
	}
	i1, i2, inc := tickSpec(start, stop, count)
	if i2 < i1 {
		return nil
	}
	out := make([]float64, 0, int(i2-i1)+1)
	for i := i1; i <= i2; i++ {
		if inc < 0 {
			out = append(out, i/-inc)
		} else {
			out = append(out, i*inc)
		}
	}
	if rev {
		for a, b := 0, len(out)-1; a < b; a, b = a+1, b-1 {
			out[a], out[b] = out[b], out[a]
		}
	}
	return out
}

func stepFactor(e float64) float64 {
	switch {
	case e >= e10:
		return 10
	case e >= e5:
		return 5
	case e >= e2:
		return 2
	}
	return 1
}

// tickIncrement returns the tick step, or its negated inverse when the step
// is below one so callers can stay in integer arithmetic.
func tickIncrement(start, stop float64, count int) float64 {
	step := (stop - start) / math.Max(0, float64(count))
	if step == 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return 0
	}
	power := math.Floor(math.Log10(step))
	f := stepFactor(step / math.Pow(10, power))
	if power >= 0 {
		return f * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / f
}

func tickSpec(start, stop float64, count int) (i1, i2, inc float64) {
	step := (stop - start) / float64(count)
	power := math.Floor(math.Log10(step))
	f := stepFactor(step / math.Pow(10, power))
	if power < 0 {
		inc = math.Pow(10, -power) / f
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		return i1, i2, -inc
	}
	inc = math.Pow(10, power) * f
	i1 = math.Round(start / inc)
	i2 = math.Round(stop / inc)
	if i1*inc < start {
		i1++
	}
	if i2*inc > stop {
		i2--
	}
	return i1, i2, inc
}
