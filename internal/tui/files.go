package tui

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-chi/chi/v5"

	"incomedash/internal/chartspec"
	"incomedash/internal/dash"
	"incomedash/internal/loopback"
)

const sidebarWidth = 28

type specItem struct {
	name, path string
}

func (f specItem) Title() string       { return f.name }
func (f specItem) Description() string { return f.path }
func (f specItem) FilterValue() string { return f.name }

type chartLoadedMsg struct {
	gen  uint64
	pick uint64
	name string
	sess *loopback.Session
	err  error
}

func (m chartLoadedMsg) generation() uint64 { return m.gen }

func (m chartLoadedMsg) release() {
	if m.sess != nil {
		_ = m.sess.Close()
	}
}

var openKey = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open chart"))

// chartsView lists the chart-spec files and serves the picked one on a
// loopback page. Each pick supersedes the previous one.
type chartsView struct {
	d      *dash.Dashboard
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
	l      *slog.Logger

	renderer chartspec.Renderer
	list     list.Model
	status   string

	w, h int

	pick    uint64
	loading bool
	name    string
	sess    *loopback.Session
	err     error
}

func newChartsView(d *dash.Dashboard, gen uint64) *chartsView {
	ctx, cancel := context.WithCancel(context.Background())
	dl := list.NewDefaultDelegate()
	dl.ShowDescription = false
	l := list.New(nil, dl, 0, 0)
	l.Title = "Charts"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	v := &chartsView{
		d:        d,
		gen:      gen,
		ctx:      ctx,
		cancel:   cancel,
		l:        slog.Default().With(slog.String("module", "tui"), slog.String("tab", "charts")),
		renderer: chartspec.PlotlyRenderer{},
		list:     l,
	}
	v.refreshDir()
	return v
}

func (v *chartsView) refreshDir() {
	dir := v.d.ChartSpecDir()
	paths, err := chartspec.List(dir)
	if err != nil {
		v.status = "read dir error: " + err.Error()
		return
	}
	items := make([]list.Item, 0, len(paths))
	for _, p := range paths {
		items = append(items, specItem{name: chartspec.NameOf(p), path: p})
	}
	v.list.SetItems(items)
	if len(items) == 0 {
		v.status = "no chart specs in " + dir
		return
	}
	v.status = ""
}

func (v *chartsView) Init() tea.Cmd { return nil }

// specHandler serves one spec page at /.
func specHandler(r chartspec.Renderer, s *chartspec.Spec) http.Handler {
	mux := chi.NewRouter()
	mux.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := r.Render(w, s); err != nil {
			slog.Error("chartspec: render", slog.String("name", s.Name), slog.Any("err", err))
		}
	})
	return mux
}

func (v *chartsView) load(it specItem) tea.Cmd {
	v.pick++
	v.loading = true
	v.name = it.name
	v.err = nil
	ctx, gen, pick, r := v.ctx, v.gen, v.pick, v.renderer
	return func() tea.Msg {
		spec, err := chartspec.Load(it.path)
		if err != nil {
			return chartLoadedMsg{gen: gen, pick: pick, name: it.name, err: err}
		}
		s, err := loopback.Open(ctx, specHandler(r, spec))
		return chartLoadedMsg{gen: gen, pick: pick, name: it.name, sess: s, err: err}
	}
}

func (v *chartsView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.w, v.h = msg.Width, msg.Height
		v.list.SetSize(sidebarWidth-2, max(3, v.h-2))
		return nil
	case chartLoadedMsg:
		if msg.pick != v.pick {
			v.l.Debug("superseded chart dropped", slog.String("name", msg.name))
			msg.release()
			return nil
		}
		v.loading = false
		if v.sess != nil {
			_ = v.sess.Close()
		}
		v.sess, v.err = msg.sess, msg.err
		if msg.err != nil {
			v.l.Error("chart load failed", slog.String("name", msg.name), slog.Any("err", msg.err))
		}
		return nil
	case tea.KeyMsg:
		if v.list.FilterState() != list.Filtering && key.Matches(msg, openKey) {
			if it, ok := v.list.SelectedItem().(specItem); ok {
				return v.load(it)
			}
			return nil
		}
	}
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return cmd
}

func (v *chartsView) View(w, h int) string {
	sidebar := lipgloss.NewStyle().Width(sidebarWidth).Render(v.list.View())
	var lines []string
	switch {
	case v.name == "":
		lines = []string{dimStyle.Render("Select a chart and press enter.")}
	case v.loading:
		lines = []string{titleStyle.Render(v.name), "", chartspec.Placeholder}
	case v.err != nil:
		lines = []string{titleStyle.Render(v.name), "", errStyle.Render(v.err.Error())}
	default:
		lines = []string{titleStyle.Render(v.name), "", "Open in a browser: " + v.sess.URL()}
	}
	pane := boxStyle.MaxWidth(max(10, w-sidebarWidth-1)).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", pane)
}

func (v *chartsView) Loading() (string, bool) { return "", false }

func (v *chartsView) Status() string {
	if v.status != "" {
		return v.status
	}
	if v.sess != nil && !v.sess.Closed() {
		return "serving " + v.name + " at " + v.sess.URL()
	}
	return "chart specs from " + v.d.ChartSpecDir()
}

func (v *chartsView) Keys() []key.Binding { return []key.Binding{openKey} }

func (v *chartsView) Capturing() bool { return v.list.FilterState() == list.Filtering }

func (v *chartsView) Close() {
	v.cancel()
	if v.sess != nil {
		_ = v.sess.Close()
	}
}
