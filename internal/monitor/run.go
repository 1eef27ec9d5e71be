package monitor

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the dashboard and blocks until the user quits or setup
// fails. Intended for interactive terminals; callers check for a TTY
// before calling.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
