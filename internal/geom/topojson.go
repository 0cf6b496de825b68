package geom

import (
	"encoding/json"
	"errors"
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

var (
	// ErrNotTopology indicates the document is not a TopoJSON Topology.
	ErrNotTopology = errors.New("geom: not a topojson topology")
	// ErrNoObject indicates the requested object is absent from the topology.
	ErrNoObject = errors.New("geom: topology object not found")
	// ErrArcIndex indicates a geometry references an arc that does not exist.
	ErrArcIndex = errors.New("geom: arc index out of range")
)

// Topology is a decoded TopoJSON document with its arcs already
// dequantized into absolute coordinates.
type Topology struct {
	Objects map[string]*TopoGeometry
	arcs    [][][2]float64
}

// TopoGeometry is a geometry object whose coordinates are arc references.
type TopoGeometry struct {
	Type       string          `json:"type"`
	ID         any             `json:"id,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
	Arcs       json.RawMessage `json:"arcs,omitempty"`
	Geometries []*TopoGeometry `json:"geometries,omitempty"`
}

type rawTopology struct {
	Type      string                   `json:"type"`
	Transform *struct {
		Scale     [2]float64 `json:"scale"`
		Translate [2]float64 `json:"translate"`
	} `json:"transform"`
	Objects map[string]*TopoGeometry `json:"objects"`
	Arcs    [][][]float64            `json:"arcs"`
}

// ParseTopology decodes a TopoJSON document. Quantized, delta-encoded arcs are
// expanded once here so feature conversion is a pure lookup.
func ParseTopology(b []byte) (*Topology, error) {
	var raw rawTopology
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("geom: topojson: %w", err)
	}
	if raw.Type != "Topology" {
		return nil, ErrNotTopology
	}
	t := &Topology{Objects: raw.Objects, arcs: make([][][2]float64, len(raw.Arcs))}
	for i, arc := range raw.Arcs {
		pts := make([][2]float64, 0, len(arc))
		var x, y float64
		for _, p := range arc {
			if len(p) < 2 {
				continue
			}
			if raw.Transform != nil {
				x += p[0]
				y += p[1]
				pts = append(pts, [2]float64{
					x*raw.Transform.Scale[0] + raw.Transform.Translate[0],
					y*raw.Transform.Scale[1] + raw.Transform.Translate[1],
				})
			} else {
				pts = append(pts, [2]float64{p[0], p[1]})
			}
		}
		t.arcs[i] = pts
	}
	return t, nil
}

// Features converts the named object into a GeoJSON feature collection,
// one feature per geometry, keeping id and properties.
func (t *Topology) Features(object string) (*geojson.FeatureCollection, error) {
	o, ok := t.Objects[object]
	if !ok || o == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoObject, object)
	}
	fc := geojson.NewFeatureCollection()
	geoms := []*TopoGeometry{o}
	if o.Type == "GeometryCollection" {
		geoms = o.Geometries
	}
	for _, g := range geoms {
		if g == nil {
			continue
		}
		geom, err := t.geometry(g)
		if err != nil {
			return nil, err
		}
		f := geojson.NewFeature(geom)
		f.ID = g.ID
		for k, v := range g.Properties {
			f.SetProperty(k, v)
		}
		fc.AddFeature(f)
	}
	return fc, nil
}

// Regions is Features followed by RegionsFromFeatures.
func (t *Topology) Regions(object string) ([]Region, error) {
	fc, err := t.Features(object)
	if err != nil {
		return nil, err
	}
	return RegionsFromFeatures(fc)
}

func (t *Topology) geometry(g *TopoGeometry) (*geojson.Geometry, error) {
	switch g.Type {
	case "Polygon":
		var arcs [][]int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, fmt.Errorf("geom: polygon arcs: %w", err)
		}
		p, err := t.polygon(arcs)
		if err != nil {
			return nil, err
		}
		return geojson.NewPolygonGeometry(p), nil
	case "MultiPolygon":
		var arcs [][][]int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, fmt.Errorf("geom: multipolygon arcs: %w", err)
		}
		mp := make([][][][]float64, 0, len(arcs))
		for _, pa := range arcs {
			p, err := t.polygon(pa)
			if err != nil {
				return nil, err
			}
			mp = append(mp, p)
		}
		return geojson.NewMultiPolygonGeometry(mp...), nil
	case "GeometryCollection":
		var children []*geojson.Geometry
		for _, c := range g.Geometries {
			cg, err := t.geometry(c)
			if err != nil {
				return nil, err
			}
			children = append(children, cg)
		}
		return geojson.NewCollectionGeometry(children...), nil
	default:
		// points and lines carry no area to fill
		return geojson.NewCollectionGeometry(), nil
	}
}

func (t *Topology) polygon(rings [][]int) ([][][]float64, error) {
	out := make([][][]float64, 0, len(rings))
	for _, r := range rings {
		ring, err := t.ring(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ring)
	}
	return out, nil
}

// ring stitches arcs end to end; the shared point between consecutive arcs
// appears once. A negative index ~i walks arc i backwards.
func (t *Topology) ring(arcs []int) ([][]float64, error) {
	var pts [][]float64
	for _, a := range arcs {
		rev := a < 0
		if rev {
			a = ^a
		}
		if a >= len(t.arcs) {
			return nil, fmt.Errorf("%w: %d", ErrArcIndex, a)
		}
		arc := t.arcs[a]
		if len(pts) > 0 {
			pts = pts[:len(pts)-1]
		}
		for i := range arc {
			p := arc[i]
			if rev {
				p = arc[len(arc)-1-i]
			}
			pts = append(pts, []float64{p[0], p[1]})
		}
	}
	// degenerate rings are padded so every ring has at least four positions
	for len(pts) > 0 && len(pts) < 4 {
		pts = append(pts, pts[0])
	}
	return pts, nil
}
