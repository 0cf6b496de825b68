// Package tui is the terminal dashboard: a choropleth with a hover-driven
// detail pane, the ranking panels, the widget embed and the chart-spec
// viewer, one tab each.
package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"incomedash/internal/dash"
)

type tab int

const (
	tabMap tab = iota
	tabRanking
	tabWidget
	tabCharts
	tabCount
)

var tabNames = [tabCount]string{"Map", "Ranking", "Widget", "Charts"}

const (
	headerHeight  = 1
	footerHeight  = 2
	frameInterval = time.Second / 30
)

// view is one tab. It is created when the tab is activated and closed when
// the tab is left; Close cancels its loads and releases what it holds.
type view interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(w, h int) string
	// Loading reports the message shown instead of the view while it waits.
	Loading() (string, bool)
	Status() string
	Keys() []key.Binding
	// Capturing is true while the view wants every key, e.g. list filtering.
	Capturing() bool
	Close()
}

// genMsg is implemented by results of asynchronous work started by a view.
type genMsg interface {
	generation() uint64
}

// releaser is implemented by results that hold resources; a discarded result
// is released instead of applied.
type releaser interface {
	release()
}

type frameMsg struct {
	gen uint64
	t   time.Time
}

func (m frameMsg) generation() uint64 { return m.gen }

func frame(gen uint64) tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg{gen: gen, t: t} })
}

type keyMap struct {
	Tabs key.Binding
	Next key.Binding
	Help key.Binding
	Quit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tabs: key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "tabs")),
		Next: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type Model struct {
	d *dash.Dashboard
	l *slog.Logger

	width  int
	height int

	helpVisible bool
	keys        keyMap
	help        help.Model
	spin        spinner.Model

	tab    tab
	gen    uint64
	active view
}

func New(d *dash.Dashboard) Model {
	m := Model{
		d:           d,
		l:           slog.Default().With(slog.String("module", "tui")),
		helpVisible: true,
		keys:        defaultKeys(),
		help:        help.New(),
		spin:        spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(titleStyle)),
		gen:         1,
	}
	m.active = m.newView(tabMap)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.active.Init())
}

func (m Model) newView(t tab) view {
	switch t {
	case tabRanking:
		return newRankingView(m.d, m.gen)
	case tabWidget:
		return newWidgetView(m.d, m.gen)
	case tabCharts:
		return newChartsView(m.d, m.gen)
	default:
		return newMapView(m.d, m.gen)
	}
}

// contentSize is the area between header and footer.
func (m Model) contentSize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{
		Width:  max(10, m.width),
		Height: max(4, m.height-headerHeight-footerHeight),
	}
}

// activate drops the current view and starts a fresh one for t under a new
// generation, so results still in flight for the old view are discarded.
func (m Model) activate(t tab) (Model, tea.Cmd) {
	if t == m.tab {
		return m, nil
	}
	m.active.Close()
	m.gen++
	m.tab = t
	m.active = m.newView(t)
	m.l.Debug("tab activated", slog.String("tab", tabNames[t]), slog.Uint64("gen", m.gen))
	return m, tea.Batch(m.active.Init(), m.active.Update(m.contentSize()))
}
