package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	size := m.contentSize()
	contentWidth, contentHeight := size.Width, size.Height

	// Header
	tabs := make([]string, 0, tabCount)
	for t := tab(0); t < tabCount; t++ {
		label := string(rune('1'+t)) + " " + tabNames[t]
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, append([]string{titleStyle.Render(" incomedash ─ mean income dashboard ")}, tabs...)...)
	header = lipgloss.NewStyle().Width(contentWidth).MaxHeight(headerHeight).Render(header)

	// Body
	var body string
	if msg, loading := m.active.Loading(); loading {
		body = lipgloss.Place(contentWidth, contentHeight, lipgloss.Center, lipgloss.Center, m.spin.View()+" "+msg)
	} else {
		body = lipgloss.NewStyle().Width(contentWidth).Height(contentHeight).MaxHeight(contentHeight).Render(m.active.View(contentWidth, contentHeight))
	}

	// Footer / help
	status := dimStyle.Render(" " + m.active.Status() + " ")
	footer := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(contentWidth).MaxHeight(1).Render(status),
		lipgloss.NewStyle().Width(contentWidth).MaxHeight(1).Render(m.renderHelp()),
	)

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := append([]key.Binding{m.keys.Tabs, m.keys.Next}, m.active.Keys()...)
	keys = append(keys, m.keys.Help, m.keys.Quit)
	return " " + m.help.ShortHelpView(keys)
}
