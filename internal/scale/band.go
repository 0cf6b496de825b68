package scale

import "math"

// Band maps category names to equal-width bands along a pixel range.
type Band struct {
	domain    []string
	index     map[string]int
	step      float64
	bandwidth float64
	start     float64
}

// NewBand builds a band scale over [r0, r1]. Duplicate names keep their
// first-seen position. padding is used for both the inner and outer padding
// and bands are centered in the range. A reversed range is normalized.
func NewBand(domain []string, r0, r1, padding float64) *Band {
	b := &Band{index: make(map[string]int, len(domain))}
	for _, d := range domain {
		if _, ok := b.index[d]; ok {
			continue
		}
		b.index[d] = len(b.domain)
		b.domain = append(b.domain, d)
	}
	padding = math.Min(1, math.Max(0, padding))
	if r1 < r0 {
		r0, r1 = r1, r0
	}
	n := float64(len(b.domain))
	b.step = (r1 - r0) / math.Max(1, n-padding+2*padding)
	b.bandwidth = b.step * (1 - padding)
	b.start = r0 + (r1-r0-b.step*(n-padding))*0.5
	return b
}

// Position returns the start coordinate of name's band.
func (b *Band) Position(name string) (float64, bool) {
	i, ok := b.index[name]
	if !ok {
		return 0, false
	}
	return b.start + b.step*float64(i), true
}

func (b *Band) Bandwidth() float64 { return b.bandwidth }

func (b *Band) Step() float64 { return b.step }

// Domain returns the deduplicated categories in band order.
func (b *Band) Domain() []string {
	return append([]string(nil), b.domain...)
}

func (b *Band) Len() int { return len(b.domain) }
