package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"incomedash/internal/chart"
	"incomedash/internal/dash"
	"incomedash/internal/data"
)

type rankingLoadedMsg struct {
	gen uint64
	ci  data.CityIncome
	err error
}

func (m rankingLoadedMsg) generation() uint64 { return m.gen }

// rankingView shows the top cities and top states side by side.
type rankingView struct {
	d      *dash.Dashboard
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
	l      *slog.Logger

	w, h int

	loading bool
	err     error
	rows    int
	ncity   int
	nstate  int

	cities, states chart.Scene
	lc, ls         *chart.Layer
	now            time.Time
	animating      bool
	hover          string
}

func newRankingView(d *dash.Dashboard, gen uint64) *rankingView {
	ctx, cancel := context.WithCancel(context.Background())
	return &rankingView{
		d:       d,
		gen:     gen,
		ctx:     ctx,
		cancel:  cancel,
		l:       slog.Default().With(slog.String("module", "tui"), slog.String("tab", "ranking")),
		loading: true,
		lc:      chart.NewLayer(),
		ls:      chart.NewLayer(),
	}
}

func (v *rankingView) Init() tea.Cmd {
	ctx, gen, d := v.ctx, v.gen, v.d
	return func() tea.Msg {
		ci, err := d.LoadRanking(ctx)
		return rankingLoadedMsg{gen: gen, ci: ci, err: err}
	}
}

func (v *rankingView) panel() int { return max(10, (v.w-1)/2) }

func (v *rankingView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.w, v.h = msg.Width, msg.Height
	case rankingLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			return nil
		}
		cities, states, err := v.d.RankingScenes(msg.ci)
		if err != nil {
			v.err = err
			return nil
		}
		v.rows, v.ncity, v.nstate = msg.ci.Rows, len(msg.ci.Cities), len(msg.ci.States)
		v.cities, v.states = cities, states
		v.now = time.Now()
		v.lc.Apply(cities.Marks, v.now)
		v.ls.Apply(states.Marks, v.now)
		v.animating = true
		return frame(v.gen)
	case frameMsg:
		v.now = msg.t
		if v.lc.Settled(v.now) && v.ls.Settled(v.now) {
			v.animating = false
			return nil
		}
		return frame(v.gen)
	case tea.MouseMsg:
		if v.loading || v.err != nil {
			return nil
		}
		pw := v.panel()
		if msg.X < pw {
			v.hover, _ = hitCell(v.frame(v.cities, v.lc), pw, v.h, msg.X, msg.Y)
		} else {
			v.hover, _ = hitCell(v.frame(v.states, v.ls), pw, v.h, msg.X-pw-1, msg.Y)
		}
	}
	return nil
}

func (v *rankingView) frame(s chart.Scene, l *chart.Layer) chart.Scene {
	s.Marks = l.Frame(v.now)
	return s
}

func (v *rankingView) View(w, h int) string {
	if v.err != nil {
		return errStyle.Render("ranking load failed: " + v.err.Error())
	}
	pw := v.panel()
	left := lipgloss.NewStyle().Width(pw).Render(renderScene(v.frame(v.cities, v.lc), v.hover, pw, h))
	right := renderScene(v.frame(v.states, v.ls), v.hover, pw, h)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (v *rankingView) Loading() (string, bool) { return dash.Loading, v.loading }

func (v *rankingView) Status() string {
	if v.err != nil {
		return dash.Loading
	}
	status := fmt.Sprintf("Loaded %d rows: %d cities in %d states.", v.rows, v.ncity, v.nstate)
	for _, s := range []chart.Scene{v.cities, v.states} {
		if m, ok := s.Mark(v.hover); ok {
			return status + "  " + m.Key + ": " + m.Label
		}
	}
	return status
}

func (v *rankingView) Keys() []key.Binding { return nil }

func (v *rankingView) Capturing() bool { return false }

func (v *rankingView) Close() { v.cancel() }
