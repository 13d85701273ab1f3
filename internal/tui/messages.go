package tui

import "github.com/mmcdole/reel/internal/state"

// Message types for the TUI

// StateMsg carries a new application state snapshot.
type StateMsg struct {
	State state.State
}

// SubscriptionClosedMsg signals the snapshot channel is gone.
type SubscriptionClosedMsg struct{}

// ClearStatusMsg clears the transient status line.
type ClearStatusMsg struct{}
