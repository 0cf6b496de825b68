package geom

import "math"

const rad = math.Pi / 180

// conic is a conic equal-area (Albers) projection with d3 semantics:
// longitude rotation, a raw-space center and y growing downwards.
type conic struct {
	n, c, r0 float64
	rotate   float64 // radians added to longitude
	cx, cy   float64 // raw projection of the center
}

func newConic(parallel0, parallel1, rotateLon, centerLon, centerLat float64) conic {
	sy0 := math.Sin(parallel0 * rad)
	n := (sy0 + math.Sin(parallel1*rad)) / 2
	c := 1 + sy0*(2*n-sy0)
	p := conic{n: n, c: c, r0: math.Sqrt(c) / n, rotate: rotateLon * rad}
	p.cx, p.cy = p.raw(centerLon*rad, centerLat*rad)
	return p
}

func (p conic) raw(lambda, phi float64) (float64, float64) {
	r := math.Sqrt(math.Max(0, p.c-2*p.n*math.Sin(phi))) / p.n
	return r * math.Sin(lambda*p.n), p.r0 - r*math.Cos(lambda*p.n)
}

// unit projects lon/lat (degrees) at scale 1 with no translation.
func (p conic) unit(lon, lat float64) (float64, float64) {
	lambda := lon*rad + p.rotate
	if lambda > math.Pi {
		lambda -= 2 * math.Pi
	} else if lambda < -math.Pi {
		lambda += 2 * math.Pi
	}
	x, y := p.raw(lambda, lat*rad)
	return x - p.cx, -(y - p.cy)
}

// inset is one member of the composite: a conic, its relative scale and
// offset, and the clip extent (all in units of the composite scale).
type inset struct {
	proj   conic
	scale  float64
	offset [2]float64
	clip   [2][2]float64
}

var usaInsets = []inset{
	{ // lower 48
		proj:  newConic(29.5, 45.5, 96, -0.6, 38.7),
		scale: 1,
		clip:  [2][2]float64{{-0.455, -0.238}, {0.455, 0.238}},
	},
	{ // Alaska
		proj:   newConic(55, 65, 154, -2, 58.5),
		scale:  0.35,
		offset: [2]float64{-0.307, 0.201},
		clip:   [2][2]float64{{-0.425, 0.120}, {-0.214, 0.234}},
	},
	{ // Hawaii
		proj:   newConic(8, 18, 157, -3, 19.9),
		scale:  1,
		offset: [2]float64{-0.205, 0.212},
		clip:   [2][2]float64{{-0.214, 0.166}, {-0.115, 0.234}},
	},
}

// AlbersUSA is the composite United States projection: lower 48 states with
// Alaska and Hawaii as insets. Places outside every inset (e.g. Puerto Rico)
// do not project.
type AlbersUSA struct {
	Scale     float64
	Translate [2]float64
}

// NewAlbersUSA returns the projection with its conventional 960×500 framing.
func NewAlbersUSA() AlbersUSA {
	return AlbersUSA{Scale: 1070, Translate: [2]float64{480, 250}}
}

// inset picks the first member whose clip extent contains the point.
func (p AlbersUSA) inset(lon, lat float64) (inset, float64, float64, bool) {
	for _, in := range usaInsets {
		ux, uy := in.proj.unit(lon, lat)
		x := ux*in.scale + in.offset[0]
		y := uy*in.scale + in.offset[1]
		if x >= in.clip[0][0] && x <= in.clip[1][0] && y >= in.clip[0][1] && y <= in.clip[1][1] {
			return in, x, y, true
		}
	}
	return inset{}, 0, 0, false
}

// Project maps lon/lat in degrees to screen coordinates.
func (p AlbersUSA) Project(lon, lat float64) (float64, float64, bool) {
	_, x, y, ok := p.inset(lon, lat)
	if !ok {
		return 0, 0, false
	}
	return p.Translate[0] + p.Scale*x, p.Translate[1] + p.Scale*y, true
}

func (p AlbersUSA) with(in inset, lon, lat float64) (float64, float64) {
	ux, uy := in.proj.unit(lon, lat)
	x := ux*in.scale + in.offset[0]
	y := uy*in.scale + in.offset[1]
	return p.Translate[0] + p.Scale*x, p.Translate[1] + p.Scale*y
}

// ProjectRegion projects every polygon of r. Each polygon is routed to one
// inset by the center of its outer ring so a polygon is never split between
// insets; polygons outside every inset are dropped.
func (p AlbersUSA) ProjectRegion(r Region) Region {
	out := Region{ID: r.ID, Name: r.Name, BBox: EmptyBBox()}
	for _, poly := range r.Polygons {
		if len(poly) == 0 {
			continue
		}
		ob := EmptyBBox()
		for _, pt := range poly[0] {
			ob = ob.Extend(pt)
		}
		in, _, _, ok := p.inset((ob.MinX+ob.MaxX)/2, (ob.MinY+ob.MaxY)/2)
		if !ok {
			continue
		}
		pp := make(Polygon, 0, len(poly))
		for _, ring := range poly {
			rr := make(Ring, len(ring))
			for i, pt := range ring {
				x, y := p.with(in, pt[0], pt[1])
				rr[i] = [2]float64{x, y}
				out.BBox = out.BBox.Extend(rr[i])
			}
			pp = append(pp, rr)
		}
		out.Polygons = append(out.Polygons, pp)
	}
	return out
}

// FitSize returns a copy scaled and translated so the projected regions fill
// a w×h area, centered along the slack axis.
func (p AlbersUSA) FitSize(w, h float64, regions []Region) AlbersUSA {
	unit := AlbersUSA{Scale: 1}
	b := EmptyBBox()
	for _, r := range regions {
		pr := unit.ProjectRegion(r)
		if pr.BBox.Valid() {
			b = b.Union(pr.BBox)
		}
	}
	if !b.Valid() {
		return p
	}
	dx, dy := b.MaxX-b.MinX, b.MaxY-b.MinY
	if dx <= 0 || dy <= 0 {
		return p
	}
	k := math.Min(w/dx, h/dy)
	return AlbersUSA{
		Scale:     k,
		Translate: [2]float64{(w - k*(b.MinX+b.MaxX)) / 2, (h - k*(b.MinY+b.MaxY)) / 2},
	}
}
