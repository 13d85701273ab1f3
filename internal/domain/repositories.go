package domain

import (
	"context"
)

// CatalogRepository: Network operations (implemented by the tmdb client)
type CatalogRepository interface {
	// ListMovies returns one page of a catalog listing
	ListMovies(ctx context.Context, catalog Catalog, page int) (*MoviePage, error)

	// GetMovieDetails returns extended metadata for a single movie
	GetMovieDetails(ctx context.Context, id int) (*MovieDetails, error)
}

// KVStore is byte-oriented persistent storage.
// Get reports found=false with a nil error for absent keys.
type KVStore interface {
	Get(key string) (data []byte, found bool, err error)
	Set(key string, data []byte) error
	Delete(key string) error
}

// FavoritesRepository persists the favorites set as a whole.
type FavoritesRepository interface {
	LoadFavorites(ctx context.Context) ([]Movie, error)
	SaveFavorites(ctx context.Context, favorites []Movie) error
}

// Reachability is the externally driven online/offline signal.
type Reachability interface {
	// Online returns the current value
	Online() bool

	// Subscribe returns a channel receiving every change and a cancel func
	Subscribe() (<-chan bool, func())
}
