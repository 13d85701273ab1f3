package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/state"
)

// Command factories for async operations

// WaitForStateCmd blocks until the next snapshot is published. The model
// re-issues it after every StateMsg.
func WaitForStateCmd(updates <-chan state.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return SubscriptionClosedMsg{}
		}
		return StateMsg{State: st}
	}
}

// MountCmd triggers the initial load.
func MountCmd(core Core) tea.Cmd {
	return func() tea.Msg {
		core.Mount()
		return nil
	}
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
