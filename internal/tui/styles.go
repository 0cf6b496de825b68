package tui

import "github.com/charmbracelet/lipgloss"

// Raw colors used by the canvas.
const (
	textHex  = "#E6E6E6"
	dimHex   = "#6B7280"
	hoverHex = "#FFA500"
)

// Styles
var (
	baseFg    = lipgloss.Color(textHex)
	baseDimFg = lipgloss.AdaptiveColor{Light: dimHex, Dark: dimHex}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")
	errFg     = lipgloss.Color("#E74C3C")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
	errStyle   = lipgloss.NewStyle().Foreground(errFg)

	tabStyle       = lipgloss.NewStyle().Foreground(baseDimFg).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true).Underline(true).Padding(0, 1)
)
