package geom

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	geojson "github.com/paulmach/go.geojson"
)

// ErrNoRegions is returned when a document holds no polygonal features.
var ErrNoRegions = errors.New("geom: no polygon features found")

// LoadGeo reads a GeoJSON FeatureCollection file and returns its regions.
func LoadGeo(path string) ([]Region, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseGeoJSON(b)
}

// ParseGeoJSON decodes a FeatureCollection into regions.
func ParseGeoJSON(b []byte) ([]Region, error) {
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, fmt.Errorf("geom: geojson: %w", err)
	}
	return RegionsFromFeatures(fc)
}

// RegionsFromFeatures converts polygonal features; points and lines are skipped.
// The region name comes from properties.name and the ID from the feature id.
func RegionsFromFeatures(fc *geojson.FeatureCollection) ([]Region, error) {
	var out []Region
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		polys := collectPolygons(f.Geometry)
		if len(polys) == 0 {
			continue
		}
		r := Region{
			ID:       featureID(f.ID),
			Name:     f.PropertyMustString("name"),
			Polygons: polys,
		}
		r.BBox = r.bounds()
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, ErrNoRegions
	}
	return out, nil
}

func collectPolygons(g *geojson.Geometry) []Polygon {
	var out []Polygon
	switch {
	case g.IsPolygon():
		if p := toPolygon(g.Polygon); len(p) > 0 {
			out = append(out, p)
		}
	case g.IsMultiPolygon():
		for _, rings := range g.MultiPolygon {
			if p := toPolygon(rings); len(p) > 0 {
				out = append(out, p)
			}
		}
	case g.IsCollection():
		for _, c := range g.Geometries {
			out = append(out, collectPolygons(c)...)
		}
	}
	return out
}

func toPolygon(rings [][][]float64) Polygon {
	p := make(Polygon, 0, len(rings))
	for _, ring := range rings {
		r := make(Ring, 0, len(ring))
		for _, pt := range ring {
			if len(pt) >= 2 {
				r = append(r, [2]float64{pt[0], pt[1]})
			}
		}
		if len(r) >= 3 {
			p = append(p, r)
		}
	}
	return p
}

func featureID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
