// Package state holds the application state snapshot and the pure reducer
// that advances it.
package state

import "github.com/mmcdole/reel/internal/domain"

// Status is the request state of a collection.
type Status struct {
	IsLoading    bool
	IsRefreshing bool
	Error        string
}

// Collection is a page-accumulating list of movies.
type Collection struct {
	Movies  []domain.Movie
	Page    int // 0 until the first page lands
	HasMore bool
	Status  Status

	// Generation is bumped by every page request; completions carrying an
	// older generation are discarded.
	Generation uint64

	// FromCache is set when the last applied page was a cache fallback.
	FromCache bool
}

func newCollection() Collection {
	return Collection{HasMore: true}
}

// CanLoadMore reports whether an append request should be issued.
func (c Collection) CanLoadMore() bool {
	return c.HasMore && !c.Status.IsLoading
}

// State is an immutable snapshot. Reduce never mutates its input; callers
// must treat slices and maps reachable from a State as read-only.
type State struct {
	Upcoming Collection
	Popular  Collection

	Details        map[int]domain.MovieDetails
	DetailErrors   map[int]string
	DetailsPending map[int]bool

	// Favorites is the authoritative favorites set in insertion order.
	Favorites []domain.Movie

	ActiveTab domain.Catalog
	Online    bool
}

// New returns the initial state.
func New() State {
	return State{
		Upcoming:       newCollection(),
		Popular:        newCollection(),
		Details:        map[int]domain.MovieDetails{},
		DetailErrors:   map[int]string{},
		DetailsPending: map[int]bool{},
		ActiveTab:      domain.CatalogUpcoming,
		Online:         true,
	}
}

// Collection returns the collection for a catalog.
func (s State) Collection(c domain.Catalog) Collection {
	if c == domain.CatalogPopular {
		return s.Popular
	}
	return s.Upcoming
}

// Active returns the collection shown in the active tab.
func (s State) Active() Collection {
	return s.Collection(s.ActiveTab)
}

func (s State) withCollection(c domain.Catalog, col Collection) State {
	if c == domain.CatalogPopular {
		s.Popular = col
	} else {
		s.Upcoming = col
	}
	return s
}

// IsFavorite reports favorites set membership.
func (s State) IsFavorite(id int) bool {
	for _, m := range s.Favorites {
		if m.ID == id {
			return true
		}
	}
	return false
}

// DetailsFor returns the details for id, if loaded.
func (s State) DetailsFor(id int) (domain.MovieDetails, bool) {
	d, ok := s.Details[id]
	return d, ok
}

// RequestStatus is the derived rendering state of a collection.
type RequestStatus int

const (
	StatusIdle RequestStatus = iota
	StatusLoading
	StatusRefreshing
	StatusError
	StatusEmpty
	StatusReady
)

func (r RequestStatus) String() string {
	switch r {
	case StatusLoading:
		return "loading"
	case StatusRefreshing:
		return "refreshing"
	case StatusError:
		return "error"
	case StatusEmpty:
		return "empty"
	case StatusReady:
		return "ready"
	default:
		return "idle"
	}
}

// StatusOf derives the request status of a collection.
func StatusOf(c Collection) RequestStatus {
	switch {
	case c.Status.IsRefreshing:
		return StatusRefreshing
	case c.Status.IsLoading:
		return StatusLoading
	case c.Status.Error != "":
		return StatusError
	case c.Page == 0:
		return StatusIdle
	case len(c.Movies) == 0:
		return StatusEmpty
	default:
		return StatusReady
	}
}
