// Package chart turns normalized records into backend-neutral scenes: marks
// with their final geometry and reveal timing, axes, grid lines, legends and
// text. The terminal and SVG backends only draw what a Scene describes.
package chart

import (
	"time"

	"incomedash/internal/geom"
)

type Kind int

const (
	Bar Kind = iota
	Region
)

func (k Kind) String() string {
	if k == Region {
		return "region"
	}
	return "bar"
}

type Margin struct {
	Top, Right, Bottom, Left float64
}

type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Style is the paint applied to a mark.
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// Mark is one drawn primitive bound to one record. Key is the category join
// key and identifies the mark across renders.
type Mark struct {
	Key   string
	Name  string
	Value float64
	Kind  Kind

	// Bar geometry: Rect is the final extent, Baseline the y the bar grows from.
	Rect     Rect
	Baseline float64
	Radius   float64

	// Region geometry, already projected to scene coordinates.
	Shape geom.Region

	Style
	Hover Style

	// Label is the value text drawn above a bar. It is shown on hover unless
	// LabelAlways is set, in which case it fades in after LabelDelay.
	Label       string
	LabelAlways bool
	LabelDelay  time.Duration

	Delay    time.Duration
	Duration time.Duration
}

// Paint returns the mark's style, hovered or not.
func (m Mark) Paint(hovered bool) Style {
	if !hovered {
		return m.Style
	}
	s := m.Style
	if m.Hover.Fill != "" {
		s.Fill = m.Hover.Fill
	}
	if m.Hover.Stroke != "" {
		s.Stroke = m.Hover.Stroke
		s.StrokeWidth = m.Hover.StrokeWidth
	}
	return s
}

// Contains reports whether (x, y) falls on the mark's final geometry.
func (m Mark) Contains(x, y float64) bool {
	if m.Kind == Region {
		return m.Shape.Contains(x, y)
	}
	return m.Rect.Contains(x, y)
}

type Orient int

const (
	Bottom Orient = iota
	Left
)

type Tick struct {
	Pos   float64
	Label string
}

// Axis is a tick ruler. For a Bottom axis ticks are x positions on the line
// y = Y; for a Left axis they are y positions on the line x = X.
type Axis struct {
	Orient      Orient
	X, Y        float64
	Start, End  float64 // extent of the domain line along the axis
	Ticks       []Tick
	Domain      bool
	LabelRotate float64 // degrees
	FontSize    float64
}

type GridLine struct {
	X1, Y1, X2, Y2 float64
	Color          string
	Dashed         bool
}

type Stop struct {
	Offset float64 // 0..1
	Color  string
}

// Legend is a horizontal color ramp with its tick labels underneath.
// Tick positions are relative to X.
type Legend struct {
	X, Y, W, H float64
	Stops      []Stop
	Ticks      []Tick
	Title      string
}

type Anchor int

const (
	Middle Anchor = iota
	Start
	End
)

type Text struct {
	X, Y   float64
	Value  string
	Anchor Anchor
	Size   float64
	Bold   bool
	Rotate float64 // degrees, around (X, Y)
}

// Scene is everything a backend needs to draw one view.
type Scene struct {
	// ID namespaces element ids when several scenes share one document.
	ID            string
	Width, Height float64
	Title         string
	Subtitle      string
	Marks         []Mark
	Axes          []Axis
	Grid          []GridLine
	Legend        *Legend
	Texts         []Text

	// Empty is set when the scene intentionally carries no marks, e.g. a
	// selection without sub-records. Texts then holds the message.
	Empty string

	// Unmatched lists region names that found no record to join.
	Unmatched []string
}

// Mark returns the mark with the given key.
func (s Scene) Mark(key string) (Mark, bool) {
	for _, m := range s.Marks {
		if m.Key == key {
			return m, true
		}
	}
	return Mark{}, false
}

// Keys returns the mark keys in draw order.
func (s Scene) Keys() []string {
	out := make([]string, len(s.Marks))
	for i, m := range s.Marks {
		out[i] = m.Key
	}
	return out
}

// HitTest returns the key of the top-most mark under (x, y).
func (s Scene) HitTest(x, y float64) (string, bool) {
	for i := len(s.Marks) - 1; i >= 0; i-- {
		if s.Marks[i].Contains(x, y) {
			return s.Marks[i].Key, true
		}
	}
	return "", false
}
