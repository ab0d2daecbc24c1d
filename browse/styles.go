package browse

import "github.com/charmbracelet/lipgloss"

var (
	InfoColor  = lipgloss.Color("#4682B4") // Steel blue
	MutedColor = lipgloss.Color("#888888") // Medium gray
	ErrorColor = lipgloss.Color("#CC3333") // Dark red
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(InfoColor).
			Padding(0, 1).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Padding(0, 1)

	MutedStyle = lipgloss.NewStyle().Foreground(MutedColor)
	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
)
