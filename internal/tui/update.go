package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, m.active.Update(m.contentSize())
	case tea.KeyMsg:
		// a filtering list gets every key
		if m.active.Capturing() {
			return m, m.active.Update(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.active.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			return m, nil
		case key.Matches(msg, m.keys.Next):
			return m.activate((m.tab + 1) % tabCount)
		case key.Matches(msg, m.keys.Tabs):
			return m.activate(tab(msg.String()[0] - '1'))
		}
		return m, m.active.Update(msg)
	case tea.MouseMsg:
		// views work in content coordinates
		msg.Y -= headerHeight
		return m, m.active.Update(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case genMsg:
		if msg.generation() != m.gen {
			m.l.Debug("stale result dropped", slog.Uint64("gen", msg.generation()), slog.Uint64("current", m.gen))
			if r, ok := msg.(releaser); ok {
				r.release()
			}
			return m, nil
		}
		return m, m.active.Update(msg)
	}
	return m, m.active.Update(msg)
}
