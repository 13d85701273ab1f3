package state

import "github.com/mmcdole/reel/internal/domain"

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// PageRequested marks a page fetch as started and bumps the collection's
// generation. The fetch must be stamped with the resulting generation.
type PageRequested struct {
	Catalog domain.Catalog
	Page    int
	Refresh bool
}

// PageSucceeded carries a fetched page back to the collection.
type PageSucceeded struct {
	Catalog    domain.Catalog
	Generation uint64
	Result     domain.MoviePage
	FromCache  bool
}

// PageFailed carries a page fetch failure.
type PageFailed struct {
	Catalog    domain.Catalog
	Generation uint64
	Err        string
}

// DetailsRequested marks a details fetch as in flight.
type DetailsRequested struct {
	ID int
}

type DetailsSucceeded struct {
	Details domain.MovieDetails
}

type DetailsFailed struct {
	ID  int
	Err string
}

// FavoriteToggled flips membership of Movie in the favorites set.
type FavoriteToggled struct {
	Movie domain.Movie
}

// FavoritesLoaded replaces the favorites set with the persisted one.
type FavoritesLoaded struct {
	Favorites []domain.Movie
}

type TabSelected struct {
	Catalog domain.Catalog
}

type NetworkChanged struct {
	Online bool
}

func (PageRequested) isEvent()    {}
func (PageSucceeded) isEvent()    {}
func (PageFailed) isEvent()       {}
func (DetailsRequested) isEvent() {}
func (DetailsSucceeded) isEvent() {}
func (DetailsFailed) isEvent()    {}
func (FavoriteToggled) isEvent()  {}
func (FavoritesLoaded) isEvent()  {}
func (TabSelected) isEvent()      {}
func (NetworkChanged) isEvent()   {}
