package chart

import (
	"math"
	"time"
)

// Patch is the keyed difference applied by Layer.Apply.
type Patch struct {
	Enter  []string
	Update []string
	Exit   []string
}

func (p Patch) Empty() bool {
	return len(p.Enter) == 0 && len(p.Update) == 0 && len(p.Exit) == 0
}

// Layer holds the marks currently on screen, keyed by Mark.Key, together
// with the time each mark entered. It replaces clear-and-redraw: applying a
// new mark set enters new keys, updates surviving keys in place and drops the
// rest.
type Layer struct {
	marks []Mark
	born  map[string]time.Time
}

func NewLayer() *Layer {
	return &Layer{born: map[string]time.Time{}}
}

// Apply reconciles the layer to next. Entering marks start their reveal at
// now; updated marks keep their clock so they do not restart. The layer takes
// next's order. A key repeated in next is kept once.
func (l *Layer) Apply(next []Mark, now time.Time) Patch {
	var p Patch
	keep := make(map[string]bool, len(next))
	marks := make([]Mark, 0, len(next))
	for _, m := range next {
		if keep[m.Key] {
			continue
		}
		keep[m.Key] = true
		if _, ok := l.born[m.Key]; ok {
			p.Update = append(p.Update, m.Key)
		} else {
			l.born[m.Key] = now
			p.Enter = append(p.Enter, m.Key)
		}
		marks = append(marks, m)
	}
	for _, m := range l.marks {
		if !keep[m.Key] {
			delete(l.born, m.Key)
			p.Exit = append(p.Exit, m.Key)
		}
	}
	l.marks = marks
	return p
}

// Marks returns the marks in draw order.
func (l *Layer) Marks() []Mark {
	return append([]Mark(nil), l.marks...)
}

func (l *Layer) Len() int { return len(l.marks) }

// Frame returns the marks as they look at now, each bar scaled by its reveal
// progress. Labels that are not yet visible are cleared.
func (l *Layer) Frame(now time.Time) []Mark {
	out := make([]Mark, len(l.marks))
	for i, m := range l.marks {
		el := now.Sub(l.born[m.Key])
		f := m.At(Progress(m, el))
		if f.LabelAlways && el < f.LabelDelay {
			f.Label = ""
		}
		out[i] = f
	}
	return out
}

// Settled reports whether every mark has finished its reveal at now.
func (l *Layer) Settled(now time.Time) bool {
	for _, m := range l.marks {
		end := m.Delay + m.Duration
		if m.LabelAlways && m.LabelDelay > m.Delay {
			end = m.LabelDelay + m.Duration
		}
		if now.Sub(l.born[m.Key]) < end {
			return false
		}
	}
	return true
}

// Progress is the eased reveal fraction of m after elapsed time since it
// entered, from 0 before its delay to 1 once its duration has passed.
func Progress(m Mark, elapsed time.Duration) float64 {
	t := elapsed - m.Delay
	switch {
	case t < 0:
		return 0
	case m.Duration <= 0 || t >= m.Duration:
		return 1
	}
	return easeCubicInOut(float64(t) / float64(m.Duration))
}

func easeCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// At returns the mark at reveal fraction p. Bars grow up from the baseline;
// regions are drawn whole.
func (m Mark) At(p float64) Mark {
	if m.Kind != Bar {
		return m
	}
	p = math.Max(0, math.Min(1, p))
	h := m.Rect.H * p
	m.Rect.Y = m.Baseline - h
	m.Rect.H = h
	return m
}
