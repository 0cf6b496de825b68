package tui

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incomedash/internal/chart"
	"incomedash/internal/config"
	"incomedash/internal/dash"
	"incomedash/internal/data"
	"incomedash/internal/geom"
	"incomedash/internal/loopback"
)

func testDash() *dash.Dashboard {
	c := config.Default()
	c.Sources.Topology = "../../testdata/states.topo.json"
	c.Sources.StateIncome = "../../testdata/stateincome.json"
	c.Sources.CityIncome = "../../testdata/income.csv"
	c.ChartSpecDir = "../../charts"
	return dash.New(c, nil)
}

func keyPress(s string) tea.KeyMsg {
	if s == "tab" {
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	require.True(t, ok)
	return mm, cmd
}

func sized(t *testing.T) Model {
	m, _ := update(t, New(testDash()), tea.WindowSizeMsg{Width: 100, Height: 33})
	return m
}

func getBody(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestTabSwitchingStartsNewGeneration(t *testing.T) {
	m := sized(t)
	assert.Equal(t, tabMap, m.tab)
	assert.Equal(t, uint64(1), m.gen)

	m, cmd := update(t, m, keyPress("2"))
	assert.Equal(t, tabRanking, m.tab)
	assert.Equal(t, uint64(2), m.gen)
	assert.IsType(t, &rankingView{}, m.active)
	assert.NotNil(t, cmd)

	m, _ = update(t, m, keyPress("tab"))
	assert.Equal(t, tabWidget, m.tab)
	m.active.Close()

	m, cmd = update(t, m, keyPress("3"))
	assert.Nil(t, cmd, "reselecting the active tab is a no-op")
	assert.Equal(t, uint64(3), m.gen)
}

func TestStaleLoadIsDropped(t *testing.T) {
	d := testDash()
	md, err := d.LoadMap(context.Background())
	require.NoError(t, err)

	m := sized(t)
	m, _ = update(t, m, keyPress("2"))
	m, _ = update(t, m, keyPress("1"))
	require.Equal(t, uint64(3), m.gen)

	m, _ = update(t, m, mapLoadedMsg{gen: 1, md: md})
	mv := m.active.(*mapView)
	_, loading := mv.Loading()
	assert.True(t, loading, "result for a deactivated view is ignored")

	m, _ = update(t, m, mapLoadedMsg{gen: 3, md: md})
	_, loading = m.active.(*mapView).Loading()
	assert.False(t, loading)
	assert.Equal(t, "Loaded data for 3 states.", m.active.Status())
}

func TestStaleChartSessionIsReleased(t *testing.T) {
	m := sized(t)
	m, _ = update(t, m, keyPress("4"))
	defer m.active.Close()

	s, err := loopback.Open(context.Background(), http.NotFoundHandler())
	require.NoError(t, err)
	_, _ = update(t, m, chartLoadedMsg{gen: 1, pick: 1, name: "old", sess: s})
	assert.True(t, s.Closed())
}

func loadedMap(t *testing.T) (Model, *mapView) {
	t.Helper()
	m := sized(t)
	msg := m.active.Init()()
	m, _ = update(t, m, msg)
	mv := m.active.(*mapView)
	require.NoError(t, mv.err)
	return m, mv
}

// cellOver finds a map cell whose center lands on the named region.
func cellOver(t *testing.T, mv *mapView, name string) (int, int) {
	t.Helper()
	mapW, _ := mv.panes()
	for y := 0; y < mv.h; y++ {
		for x := 0; x < mapW; x++ {
			if k, ok := hitCell(mv.scene, mapW, mv.h, x, y); ok && k == name {
				return x, y
			}
		}
	}
	t.Fatalf("no cell over %s", name)
	return 0, 0
}

func TestHoverSelectsState(t *testing.T) {
	m, mv := loadedMap(t)
	assert.Equal(t, "Hover over a state to view city income data", mv.detail.Empty)

	x, y := cellOver(t, mv, "Kansas")
	m, cmd := update(t, m, tea.MouseMsg{X: x, Y: y + headerHeight, Action: tea.MouseActionMotion})
	assert.NotNil(t, cmd, "selection starts the reveal animation")
	assert.Equal(t, "Kansas", mv.sel.Name)
	assert.Equal(t, []string{"Overland Park, Kansas", "Wichita, Kansas", "Topeka, Kansas"}, mv.detail.Keys())
	assert.Equal(t, 3, mv.layer.Len())
	assert.Contains(t, m.active.Status(), "Kansas: $52,346")
	assert.Len(t, mv.tbl.Rows(), 3)
	assert.Equal(t, "Overland Park", mv.tbl.Rows()[0][1])

	m, cmd = update(t, m, tea.MouseMsg{X: x, Y: y + headerHeight, Action: tea.MouseActionMotion})
	assert.Nil(t, cmd, "hovering the same state again changes nothing")
	assert.Equal(t, uint64(1), mv.sel.Version)

	mapW, _ := mv.panes()
	_, _ = update(t, m, tea.MouseMsg{X: mapW + 5, Y: 5, Action: tea.MouseActionMotion})
	assert.Equal(t, "Kansas", mv.sel.Name, "leaving the map keeps the selection")
	assert.Empty(t, mv.hover)

	x, y = cellOver(t, mv, "Iowa")
	_, _ = update(t, m, tea.MouseMsg{X: x, Y: y + headerHeight, Action: tea.MouseActionMotion})
	assert.Equal(t, "No city data for Iowa", mv.detail.Empty)
	assert.Equal(t, 0, mv.layer.Len(), "previous cities leave the pane")
}

func TestFrameSettles(t *testing.T) {
	m, mv := loadedMap(t)
	x, y := cellOver(t, mv, "Kansas")
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y + headerHeight, Action: tea.MouseActionMotion})
	require.True(t, mv.animating)

	m, cmd := update(t, m, frameMsg{gen: m.gen, t: mv.now})
	assert.NotNil(t, cmd)
	_, cmd = update(t, m, frameMsg{gen: m.gen, t: mv.now.Add(10e9)})
	assert.Nil(t, cmd)
	assert.False(t, mv.animating)
}

func TestViewComposes(t *testing.T) {
	assert.Empty(t, New(testDash()).View())

	m := sized(t)
	out := m.View()
	assert.Contains(t, out, "incomedash")
	assert.Contains(t, out, "Loading data...")
	assert.Contains(t, out, "1 Map")

	m, _ = loadedMap(t)
	out = m.View()
	assert.Contains(t, out, "Hover over a state")
	assert.Contains(t, out, "Loaded data for 3 states.")
	assert.Contains(t, out, "Mean Income by State")
}

func TestRankingView(t *testing.T) {
	v := newRankingView(testDash(), 1)
	defer v.Close()
	v.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	cmd := v.Update(v.Init()())
	assert.NotNil(t, cmd)
	require.NoError(t, v.err)
	assert.Equal(t, "Top 10 Cities", v.cities.Title)
	assert.Equal(t, 9, v.lc.Len())
	assert.Contains(t, v.Status(), "Loaded 10 rows")

	v.Update(frameMsg{gen: 1, t: v.now.Add(10e9)})
	top := v.states.Marks[0]
	k := fitScale(v.states, v.panel(), v.h)
	cx := int((top.Rect.X + top.Rect.W/2) * k / 2)
	cy := int((top.Rect.Y + top.Rect.H/2) * k / 4)
	v.Update(tea.MouseMsg{X: v.panel() + 1 + cx, Y: cy, Action: tea.MouseActionMotion})
	assert.Equal(t, "Texas", v.hover)
	assert.Contains(t, v.Status(), "Texas: $")
	assert.Contains(t, v.View(120, 30), top.Label, "hover shows the value label")
}

func TestWidgetViewLifecycle(t *testing.T) {
	v := newWidgetView(testDash(), 1)
	v.Update(v.Init()())
	require.NoError(t, v.err)
	require.NotEmpty(t, v.url)
	assert.Contains(t, getBody(t, v.url), "tableauPlaceholder")
	assert.Contains(t, v.View(80, 20), v.url)

	v.Close()
	assert.Empty(t, v.mount.URL())
	_, err := http.Get(v.url)
	assert.Error(t, err)
}

func TestChartsViewSupersedesPicks(t *testing.T) {
	v := newChartsView(testDash(), 1)
	defer v.Close()
	items := v.list.Items()
	require.Len(t, items, 2)

	first := v.load(items[0].(specItem))
	second := v.load(items[1].(specItem))
	assert.Contains(t, v.View(80, 20), "Loading chart...")

	old := first().(chartLoadedMsg)
	v.Update(old)
	require.NotNil(t, old.sess)
	assert.True(t, old.sess.Closed(), "an older pick is released")
	assert.True(t, v.loading)

	cur := second().(chartLoadedMsg)
	v.Update(cur)
	require.NoError(t, v.err)
	assert.False(t, v.loading)
	assert.Same(t, cur.sess, v.sess)
	assert.Contains(t, getBody(t, v.sess.URL()), "Plotly.newPlot")
	assert.Contains(t, v.Status(), "serving price_vs_income")

	v.Close()
	assert.True(t, cur.sess.Closed())
}

func TestRenderSceneBars(t *testing.T) {
	s, err := chart.RankingChart([]data.Record{{Name: "A", Mean: 10}, {Name: "B", Mean: 5}}, chart.RankingOptions("Top 10 Cities", "#3498db"))
	require.NoError(t, err)
	out := renderScene(s, "", 60, 25)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 25)
	assert.Contains(t, out, "Top 10 Cities")
	assert.Contains(t, out, "⣿", "bars are solid braille")
	assert.NotContains(t, out, "$10.00", "value labels only on hover")
	assert.Contains(t, renderScene(s, "A", 60, 25), "$10.00")
}

func TestHitCellMatchesRaster(t *testing.T) {
	s, err := chart.RankingChart([]data.Record{{Name: "A", Mean: 10}, {Name: "B", Mean: 5}}, chart.RankingOptions("Top", "#3498db"))
	require.NoError(t, err)
	w, h := 60, 25
	k := fitScale(s, w, h)
	for _, m := range s.Marks {
		cx := int((m.Rect.X + m.Rect.W/2) * k / 2)
		cy := int((m.Rect.Y + m.Rect.H/2) * k / 4)
		key, ok := hitCell(s, w, h, cx, cy)
		assert.True(t, ok)
		assert.Equal(t, m.Key, key)
	}
	_, ok := hitCell(s, w, h, 0, 0)
	assert.False(t, ok)
	_, ok = hitCell(s, w, h, w, 0)
	assert.False(t, ok)
}

func TestFillRegionEvenOdd(t *testing.T) {
	c := newCanvas(10, 5, 1)
	reg := geom.Region{Polygons: []geom.Polygon{{
		{{0, 0}, {20, 0}, {20, 20}, {0, 20}, {0, 0}},
		{{5, 5}, {15, 5}, {15, 15}, {5, 15}, {5, 5}},
	}}}
	c.fillRegion(reg, "#08306b")
	assert.Equal(t, uint8(0xFF), c.br.m[0][0])
	assert.Equal(t, uint8(0), c.br.m[2][5], "holes stay empty")
	assert.Equal(t, "#08306b", c.br.fg[0][0])

	tiny := newCanvas(10, 5, 1)
	tiny.fillRegion(geom.Region{Polygons: []geom.Polygon{{{{4.1, 4.1}, {4.2, 4.1}, {4.2, 4.2}, {4.1, 4.1}}}}}, "#fff")
	assert.NotZero(t, tiny.br.m[1][2], "tiny regions still get a dot")
}

func TestStopColor(t *testing.T) {
	stops := []chart.Stop{{Offset: 0, Color: "#000"}, {Offset: 0.5, Color: "#888"}, {Offset: 1, Color: "#fff"}}
	assert.Equal(t, "#000", stopColor(stops, 0.1))
	assert.Equal(t, "#888", stopColor(stops, 0.6))
	assert.Equal(t, "#fff", stopColor(stops, 0.95))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "a", truncate("abc", 1))
	assert.Empty(t, truncate("abc", 0))
}
