package monitor

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	primaryColor = lipgloss.Color("#7D56F4") // Purple
	okColor      = lipgloss.Color("#43BF6D") // Green
	errorColor   = lipgloss.Color("#FF0000") // Red
	textColor    = lipgloss.Color("#FFFFFF") // White
	subtleColor  = lipgloss.Color("#626262") // Gray
)

// Common styles
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(1, 0)

	statusStyle = lipgloss.NewStyle().
			Foreground(subtleColor).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor)

	headerRowStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	cellStyle = lipgloss.NewStyle().
			Foreground(textColor)

	staleCellStyle = lipgloss.NewStyle().
			Foreground(subtleColor)

	valueStyle = lipgloss.NewStyle().
			Foreground(okColor)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(subtleColor).
			Padding(1, 0)
)
