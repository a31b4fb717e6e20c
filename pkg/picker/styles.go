package picker

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("212")
	colorError   = lipgloss.Color("196")
	colorMuted   = lipgloss.Color("241")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	countStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	cursorStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255"))

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	buttonActiveStyle = lipgloss.NewStyle().
				Background(colorPrimary).
				Foreground(lipgloss.Color("231")).
				Bold(true).
				Padding(0, 2)

	buttonIdleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 2)
)
