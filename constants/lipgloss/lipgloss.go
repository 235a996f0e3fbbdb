package lipgloss

import "github.com/charmbracelet/lipgloss"

var (
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F04C56"))
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	BlueSky = lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF"))
	Gray    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7F848E"))
	Info    = lipgloss.NewStyle().Foreground(lipgloss.Color("#56B6C2")).Bold(true)

	// Header is used for file headers when rendering a generated document
	Header = lipgloss.NewStyle().Foreground(lipgloss.Color("#C678DD")).Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#61AFEF")).
			Padding(0, 1)
)
