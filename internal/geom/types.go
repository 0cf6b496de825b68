package geom

import "math"

type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// EmptyBBox is the identity for Extend.
func EmptyBBox() BBox {
	return BBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

// Extend grows the box to include pt.
func (b BBox) Extend(pt [2]float64) BBox {
	b.MinX = math.Min(b.MinX, pt[0])
	b.MinY = math.Min(b.MinY, pt[1])
	b.MaxX = math.Max(b.MaxX, pt[0])
	b.MaxY = math.Max(b.MaxY, pt[1])
	return b
}

// Union returns the smallest box containing both.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		MinX: math.Min(b.MinX, o.MinX), MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX), MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Valid reports whether the box encloses at least one point.
func (b BBox) Valid() bool { return b.MinX <= b.MaxX && b.MinY <= b.MaxY }

func (b BBox) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Ring is a closed sequence of [x, y] (lon/lat before projection).
type Ring [][2]float64

// Polygon is an outer ring followed by its holes.
type Polygon []Ring

// Region is a named area, e.g. one state boundary.
type Region struct {
	ID       string
	Name     string
	Polygons []Polygon
	BBox     BBox
}

func (r Region) bounds() BBox {
	b := EmptyBBox()
	for _, p := range r.Polygons {
		for _, ring := range p {
			for _, pt := range ring {
				b = b.Extend(pt)
			}
		}
	}
	return b
}
