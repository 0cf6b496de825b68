package chartspec

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpec(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadKeepsPartsOpaque(t *testing.T) {
	dir := t.TempDir()
	p := writeSpec(t, dir, "scatter.json", `{"data":[{"x":[1,2],"y":[3,4],"type":"scatter","custom":{"anything":true}}],"layout":{"title":"t"},"extra":1}`)
	s, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "scatter", s.Name)
	assert.JSONEq(t, `[{"x":[1,2],"y":[3,4],"type":"scatter","custom":{"anything":true}}]`, string(s.Data))
	assert.JSONEq(t, `{"title":"t"}`, string(s.Layout))
	assert.Nil(t, s.Config)
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	p := writeSpec(t, dir, "bad.json", `{"data": [`)
	_, err := Load(p)
	assert.Error(t, err)

	_, err = LoadDir(dir)
	assert.Error(t, err)
}

func TestLoadDirAndFind(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "b.json", `{"data":[]}`)
	writeSpec(t, dir, "a.json", `{"data":[]}`)
	writeSpec(t, dir, "notes.txt", `ignored`)

	specs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "a", specs[0].Name)
	assert.Equal(t, "b", specs[1].Name)

	s, err := Find(dir, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", s.Name)

	for _, name := range []string{"missing", "", "../b", ".."} {
		_, err = Find(dir, name)
		assert.ErrorIs(t, err, ErrNotFound, name)
	}
}

func TestPlotlyRenderer(t *testing.T) {
	s, err := Parse("demo", []byte(`{"data":[{"y":[1,2],"name":"</script><b>"}],"layout":{"title":"Demo"}}`))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PlotlyRenderer{}.Render(&buf, s))
	out := buf.String()
	assert.Contains(t, out, DefaultPlotlyScript)
	assert.Contains(t, out, `Plotly.newPlot("chart", [{"y":[1,2],"name":`)
	assert.Contains(t, out, `{"title":"Demo"}, {});`)
	assert.NotContains(t, out, Placeholder)
	assert.NotContains(t, out, "</script><b>", "markup inside the spec stays inert")
}

func TestPlotlyRendererPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PlotlyRenderer{ScriptURL: "/plotly.js"}.Render(&buf, nil))
	out := buf.String()
	assert.Contains(t, out, "<p>Loading chart...</p>")
	assert.NotContains(t, out, "Plotly.newPlot")
	assert.NotContains(t, out, "/plotly.js")
}
