package hub

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ovsov/mphub/internal/models"
)

var (
	primaryColor = lipgloss.Color("212")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")
	mutedColor   = lipgloss.Color("241")
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)

	chipStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Foreground(mutedColor).Bold(true)

	cursorStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)

	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255"))

	statusOkStyle  = lipgloss.NewStyle().Foreground(successColor)
	statusErrStyle = lipgloss.NewStyle().Foreground(errorColor)

	hintStyle = lipgloss.NewStyle().Foreground(mutedColor)

	credStyle = lipgloss.NewStyle().Foreground(successColor)

	sandboxBadgeStyle = lipgloss.NewStyle().Foreground(warningColor)
)

// statusColor returns the display color for a connection status
func statusColor(s models.Status) lipgloss.Color {
	switch s {
	case models.StatusActive:
		return successColor
	case models.StatusPaused:
		return warningColor
	case models.StatusBroken:
		return errorColor
	case models.StatusRevoked:
		return mutedColor
	default:
		return lipgloss.Color("255")
	}
}
