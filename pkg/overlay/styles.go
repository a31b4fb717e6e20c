package overlay

import "github.com/charmbracelet/lipgloss"

// Colors shared by the overlay chrome and its standard contents
var (
	Primary      = lipgloss.Color("212")
	Error        = lipgloss.Color("196")
	Warning      = lipgloss.Color("214")
	Info         = lipgloss.Color("45")
	Muted        = lipgloss.Color("241")
	BgSecondary  = lipgloss.Color("235")
	BorderNormal = lipgloss.Color("240")
)

// MutedText renders secondary text such as scroll indicators
var MutedText = lipgloss.NewStyle().Foreground(Muted)

// frameBox is the chrome drawn around every frame
var frameBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(BorderNormal).
	Padding(1, 2)

// Chrome cell counts implied by frameBox. The view compositor and the
// mouse translation must agree on these.
const (
	frameChromeX  = 6 // border 1+1, padding 2+2
	frameChromeY  = 4 // border 1+1, padding 1+1
	frameContentX = 3 // left border plus left padding
	frameContentY = 2 // top border plus top padding
)
