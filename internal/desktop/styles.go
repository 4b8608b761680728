package desktop

import "github.com/charmbracelet/lipgloss"

var (
	accent    = lipgloss.Color("#7DD3FC")
	userColor = lipgloss.Color("#FDE68A")
	mutedGray = lipgloss.Color("#6B7280")
	errorRed  = lipgloss.Color("#FCA5A5")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(userColor).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorRed)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
)
