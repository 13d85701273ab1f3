package tui

import (
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/state"
	"github.com/mmcdole/reel/internal/syncer"
)

// Core is the synchronization core as driven by the UI: intents in,
// snapshots out.
type Core interface {
	Mount()
	SelectTab(c domain.Catalog)
	Refresh(c domain.Catalog)
	LoadMore()
	ToggleFavorite(movie domain.Movie)
	OpenDetails(id int)
	Snapshot() state.State
}

var _ Core = (*syncer.Syncer)(nil)
