package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	table "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"incomedash/internal/chart"
	"incomedash/internal/dash"
	"incomedash/internal/data"
	"incomedash/internal/state"
)

type mapLoadedMsg struct {
	gen uint64
	md  dash.MapData
	err error
}

func (m mapLoadedMsg) generation() uint64 { return m.gen }

var tableKey = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "city table"))

// mapView owns the choropleth and the selection that drives its detail pane.
type mapView struct {
	d      *dash.Dashboard
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
	l      *slog.Logger

	w, h int

	loading bool
	err     error
	md      dash.MapData
	scene   chart.Scene

	sel       state.Selection
	detail    chart.Scene
	layer     *chart.Layer
	now       time.Time
	animating bool

	hover    string // region under the pointer
	barHover string // detail bar under the pointer

	showTable bool
	tbl       table.Model
}

func newMapView(d *dash.Dashboard, gen uint64) *mapView {
	ctx, cancel := context.WithCancel(context.Background())
	return &mapView{
		d:       d,
		gen:     gen,
		ctx:     ctx,
		cancel:  cancel,
		l:       slog.Default().With(slog.String("module", "tui"), slog.String("tab", "map")),
		loading: true,
		layer:   chart.NewLayer(),
		tbl:     newCityTable(),
	}
}

func (v *mapView) Init() tea.Cmd {
	ctx, gen, d := v.ctx, v.gen, v.d
	return func() tea.Msg {
		md, err := d.LoadMap(ctx)
		return mapLoadedMsg{gen: gen, md: md, err: err}
	}
}

// panes splits the content into map and detail widths.
func (v *mapView) panes() (mapW, detailW int) {
	mapW = max(10, v.w*7/10)
	return mapW, max(10, v.w-mapW-1)
}

func (v *mapView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.w, v.h = msg.Width, msg.Height
		_, dw := v.panes()
		v.tbl.SetWidth(dw - 4)
		v.tbl.SetHeight(max(3, v.h-2))
	case mapLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			return nil
		}
		scene, err := v.d.MapScene(msg.md)
		if err != nil {
			v.err = err
			return nil
		}
		v.md, v.scene = msg.md, scene
		v.detail = v.d.DetailScene(v.md, v.sel)
		v.now = time.Now()
		v.layer.Apply(v.detail.Marks, v.now)
	case frameMsg:
		v.now = msg.t
		if v.layer.Settled(v.now) {
			v.animating = false
			return nil
		}
		return frame(v.gen)
	case tea.MouseMsg:
		return v.pointer(msg.X, msg.Y)
	case tea.KeyMsg:
		if key.Matches(msg, tableKey) {
			v.showTable = !v.showTable
			return nil
		}
		if v.showTable {
			var cmd tea.Cmd
			v.tbl, cmd = v.tbl.Update(msg)
			return cmd
		}
	}
	return nil
}

// pointer hit-tests the cell under the mouse. Hovering a region selects it;
// leaving the map keeps the last selection.
func (v *mapView) pointer(x, y int) tea.Cmd {
	if v.loading || v.err != nil {
		return nil
	}
	mapW, detailW := v.panes()
	switch {
	case x < mapW:
		name, ok := hitCell(v.scene, mapW, v.h, x, y)
		v.hover = name
		if ok {
			return v.selectState(name)
		}
	case x > mapW && !v.showTable:
		v.hover = ""
		v.barHover, _ = hitCell(v.frameScene(), detailW, v.h, x-mapW-1, y)
	default:
		v.hover = ""
	}
	return nil
}

func (v *mapView) selectState(name string) tea.Cmd {
	sel, changed := v.sel.Select(name)
	if !changed {
		return nil
	}
	v.sel = sel
	v.detail = v.d.DetailScene(v.md, sel)
	v.now = time.Now()
	p := v.layer.Apply(v.detail.Marks, v.now)
	v.barHover = ""
	st, ok := v.md.State(name)
	if !ok {
		st = data.StateIncome{Record: data.Record{Name: name}}
	}
	setCityTable(&v.tbl, st)
	v.l.Debug("selection changed", slog.String("state", name), slog.Uint64("version", sel.Version),
		slog.Int("enter", len(p.Enter)), slog.Int("exit", len(p.Exit)))
	return v.animate()
}

func (v *mapView) animate() tea.Cmd {
	if v.animating {
		return nil
	}
	v.animating = true
	return frame(v.gen)
}

// frameScene is the detail scene with its marks at the current animation time.
func (v *mapView) frameScene() chart.Scene {
	s := v.detail
	s.Marks = v.layer.Frame(v.now)
	return s
}

func (v *mapView) View(w, h int) string {
	if v.err != nil {
		return errStyle.Render("map load failed: " + v.err.Error())
	}
	mapW, detailW := v.panes()
	left := lipgloss.NewStyle().Width(mapW).Height(h).Render(renderScene(v.scene, v.hover, mapW, h))
	var right string
	if v.showTable && !v.sel.Empty() {
		box := boxStyle.Width(min(detailW, tableWidth(v.tbl)+4)).Render(titleStyle.Render(v.sel.Name) + "\n" + v.tbl.View())
		right = lipgloss.Place(detailW, h, lipgloss.Center, lipgloss.Top, box)
	} else {
		right = renderScene(v.frameScene(), v.barHover, detailW, h)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (v *mapView) Loading() (string, bool) { return dash.Loading, v.loading }

func (v *mapView) Status() string {
	if v.err != nil {
		return dash.Loading
	}
	status := v.md.Status()
	if m, ok := v.scene.Mark(v.hover); ok {
		status += "  " + m.Label
	} else if m, ok := v.detail.Mark(v.barHover); ok {
		status += "  " + m.Name + ": " + m.Label
	}
	return status
}

func (v *mapView) Keys() []key.Binding { return []key.Binding{tableKey} }

func (v *mapView) Capturing() bool { return false }

func (v *mapView) Close() { v.cancel() }
