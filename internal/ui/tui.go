// ABOUTME: Watch screen entry point
// ABOUTME: Runs the bubbletea program until the user quits
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the watch screen for client and blocks until quit
func Run(client Doer, serverName string, interval time.Duration) error {
	p := tea.NewProgram(NewModel(client, serverName, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
