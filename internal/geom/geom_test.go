package geom

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareTopo = `{
  "type": "Topology",
  "transform": {"scale": [1, 1], "translate": [0, 0]},
  "objects": {
    "states": {
      "type": "GeometryCollection",
      "geometries": [
        {"type": "Polygon", "arcs": [[0, 1]], "id": "01", "properties": {"name": "Square"}},
        {"type": "MultiPolygon", "arcs": [[[-2, -1]]], "id": 2, "properties": {"name": "Back"}},
        {"type": "Point", "coordinates": [0, 0], "properties": {"name": "Dot"}}
      ]
    }
  },
  "arcs": [
    [[0, 0], [1, 0], [0, 1]],
    [[1, 1], [-1, 0], [0, -1]]
  ]
}`

func TestTopologyFeatures(t *testing.T) {
	topo, err := ParseTopology([]byte(squareTopo))
	require.NoError(t, err)

	fc, err := topo.Features("states")
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	sq := fc.Features[0]
	require.True(t, sq.Geometry.IsPolygon())
	assert.Equal(t, "01", sq.ID)
	assert.Equal(t, "Square", sq.PropertyMustString("name"))
	assert.Equal(t, [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}, sq.Geometry.Polygon[0])

	back := fc.Features[1]
	require.True(t, back.Geometry.IsMultiPolygon())
	assert.Equal(t, [][]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}, back.Geometry.MultiPolygon[0][0])
}

func TestTopologyRegions(t *testing.T) {
	topo, err := ParseTopology([]byte(squareTopo))
	require.NoError(t, err)
	regions, err := topo.Regions("states")
	require.NoError(t, err)
	require.Len(t, regions, 2, "point geometries carry no area")
	assert.Equal(t, "Square", regions[0].Name)
	assert.Equal(t, "2", regions[1].ID)
	assert.Equal(t, BBox{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}, regions[0].BBox)
}

func TestTopologyErrors(t *testing.T) {
	_, err := ParseTopology([]byte(`{"type":"FeatureCollection"}`))
	assert.ErrorIs(t, err, ErrNotTopology)

	_, err = ParseTopology([]byte(`{`))
	assert.Error(t, err)

	topo, err := ParseTopology([]byte(squareTopo))
	require.NoError(t, err)
	_, err = topo.Features("counties")
	assert.ErrorIs(t, err, ErrNoObject)

	bad, err := ParseTopology([]byte(`{"type":"Topology","objects":{"s":{"type":"Polygon","arcs":[[5]]}},"arcs":[]}`))
	require.NoError(t, err)
	_, err = bad.Features("s")
	assert.ErrorIs(t, err, ErrArcIndex)
}

func TestTopologyWithoutTransform(t *testing.T) {
	doc := `{"type":"Topology","objects":{"s":{"type":"Polygon","arcs":[[0]],"properties":{"name":"T"}}},
	  "arcs":[[[10,10],[20,10],[20,20],[10,10]]]}`
	topo, err := ParseTopology([]byte(doc))
	require.NoError(t, err)
	regions, err := topo.Regions("s")
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, Ring{{10, 10}, {20, 10}, {20, 20}, {10, 10}}, regions[0].Polygons[0][0])
}

func TestLoadGeo(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","id":"48","properties":{"name":"Texas"},
	   "geometry":{"type":"Polygon","coordinates":[[[-106,32],[-94,32],[-94,36],[-106,36],[-106,32]]]}},
	  {"type":"Feature","properties":{"name":"pin"},"geometry":{"type":"Point","coordinates":[1,2]}}
	]}`
	p := filepath.Join(t.TempDir(), "states.geojson")
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
	regions, err := LoadGeo(p)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "Texas", regions[0].Name)
	assert.Equal(t, "48", regions[0].ID)

	_, err = ParseGeoJSON([]byte(`{"type":"FeatureCollection","features":[]}`))
	assert.ErrorIs(t, err, ErrNoRegions)
}

func TestPointInPolygon(t *testing.T) {
	donut := Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	}
	assert.True(t, PointInPolygon(1, 1, donut))
	assert.False(t, PointInPolygon(5, 5, donut), "inside the hole")
	assert.False(t, PointInPolygon(11, 5, donut))

	r := Region{Polygons: []Polygon{donut}}
	r.BBox = r.bounds()
	assert.True(t, r.Contains(9, 9))
	assert.False(t, r.Contains(-1, 9))
}

func TestAlbersUSACenter(t *testing.T) {
	p := NewAlbersUSA()
	x, y, ok := p.Project(-96.6, 38.7)
	require.True(t, ok)
	assert.InDelta(t, 480, x, 1e-6)
	assert.InDelta(t, 250, y, 1e-6)

	// east is right, north is up
	ex, _, ok := p.Project(-80, 38.7)
	require.True(t, ok)
	assert.Greater(t, ex, x)
	_, ny, ok := p.Project(-96.6, 45)
	require.True(t, ok)
	assert.Less(t, ny, y)
}

func TestAlbersUSAInsets(t *testing.T) {
	p := NewAlbersUSA()
	for _, c := range []struct {
		name     string
		lon, lat float64
		ok       bool
	}{
		{"Kansas", -98, 38.5, true},
		{"Anchorage", -149.9, 61.2, true},
		{"Honolulu", -157.86, 21.3, true},
		{"San Juan", -66.1, 18.4, false},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, _, ok := p.Project(c.lon, c.lat)
			assert.Equal(t, c.ok, ok)
		})
	}
	// Alaska is drawn in the lower-left inset
	ax, ay, _ := p.Project(-149.9, 61.2)
	assert.Less(t, ax, 480.0)
	assert.Greater(t, ay, 250.0)
}

func TestFitSize(t *testing.T) {
	box := Region{Name: "box", Polygons: []Polygon{{{{-120, 30}, {-75, 30}, {-75, 47}, {-120, 47}, {-120, 30}}}}}
	p := NewAlbersUSA().FitSize(620, 420, []Region{box})
	pr := p.ProjectRegion(box)
	require.True(t, pr.BBox.Valid())

	const eps = 1e-6
	assert.GreaterOrEqual(t, pr.BBox.MinX, -eps)
	assert.GreaterOrEqual(t, pr.BBox.MinY, -eps)
	assert.LessOrEqual(t, pr.BBox.MaxX, 620+eps)
	assert.LessOrEqual(t, pr.BBox.MaxY, 420+eps)
	w, h := pr.BBox.MaxX-pr.BBox.MinX, pr.BBox.MaxY-pr.BBox.MinY
	assert.True(t, math.Abs(w-620) < 1e-6 || math.Abs(h-420) < 1e-6, "one axis must be filled: %v x %v", w, h)
}

func TestFitSizeNoRegions(t *testing.T) {
	p := NewAlbersUSA()
	assert.Equal(t, p, p.FitSize(100, 100, nil))
}
