package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"incomedash/internal/dash"
	"incomedash/internal/embed"
)

type widgetOpenedMsg struct {
	gen uint64
	url string
	err error
}

func (m widgetOpenedMsg) generation() uint64 { return m.gen }

// widgetView mounts the embed page for as long as the tab is active.
type widgetView struct {
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc

	w     embed.Widget
	mount *embed.Mount

	opening bool
	url     string
	err     error
}

func newWidgetView(d *dash.Dashboard, gen uint64) *widgetView {
	ctx, cancel := context.WithCancel(context.Background())
	w := d.Widget()
	return &widgetView{gen: gen, ctx: ctx, cancel: cancel, w: w, mount: embed.NewMount(w), opening: true}
}

func (v *widgetView) Init() tea.Cmd {
	ctx, gen, mount := v.ctx, v.gen, v.mount
	return func() tea.Msg {
		url, err := mount.Open(ctx)
		return widgetOpenedMsg{gen: gen, url: url, err: err}
	}
}

func (v *widgetView) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(widgetOpenedMsg); ok {
		v.opening = false
		v.url, v.err = msg.url, msg.err
	}
	return nil
}

func (v *widgetView) View(w, h int) string {
	lines := []string{titleStyle.Render(v.w.Title), ""}
	if v.err != nil {
		lines = append(lines, errStyle.Render("widget unavailable: "+v.err.Error()))
	} else {
		lines = append(lines,
			"Open in a browser: "+v.url,
			"",
			dimStyle.Render("static image: "+v.w.StaticImage),
			dimStyle.Render("hosted at: "+v.w.HostURL),
		)
	}
	box := boxStyle.MaxWidth(w).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}

func (v *widgetView) Loading() (string, bool) { return "Mounting widget...", v.opening }

func (v *widgetView) Status() string {
	if v.err != nil || v.url == "" {
		return "widget not mounted"
	}
	return "widget mounted at " + v.url
}

func (v *widgetView) Keys() []key.Binding { return nil }

func (v *widgetView) Capturing() bool { return false }

// Close releases the page; the context also tears down a mount that is
// still being opened.
func (v *widgetView) Close() {
	v.cancel()
	_ = v.mount.Close()
}
