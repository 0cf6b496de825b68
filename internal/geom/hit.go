package geom

// PointInPolygon reports whether (x, y) lies inside poly using the even-odd
// rule over all rings, so holes are excluded.
func PointInPolygon(x, y float64, poly Polygon) bool {
	in := false
	for _, ring := range poly {
		n := len(ring)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			xi, yi := ring[i][0], ring[i][1]
			xj, yj := ring[j][0], ring[j][1]
			if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
				in = !in
			}
		}
	}
	return in
}

// Contains reports whether any polygon of r contains (x, y).
func (r Region) Contains(x, y float64) bool {
	if r.BBox.Valid() && !r.BBox.Contains(x, y) {
		return false
	}
	for _, p := range r.Polygons {
		if PointInPolygon(x, y, p) {
			return true
		}
	}
	return false
}
