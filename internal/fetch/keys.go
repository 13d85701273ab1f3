package fetch

import (
	"strconv"

	"github.com/mmcdole/reel/internal/domain"
)

// Cache key prefixes for remote responses
const (
	// PrefixUpcoming is the prefix for upcoming pages (upcoming_movies_{page})
	PrefixUpcoming = "upcoming_movies_"

	// PrefixPopular is the prefix for popular pages (popular_movies_{page})
	PrefixPopular = "popular_movies_"

	// PrefixDetails is the prefix for movie details (movie_details_{id})
	PrefixDetails = "movie_details_"
)

// PageKey returns the cache key for one page of a catalog.
func PageKey(catalog domain.Catalog, page int) string {
	prefix := PrefixUpcoming
	if catalog == domain.CatalogPopular {
		prefix = PrefixPopular
	}
	return prefix + strconv.Itoa(page)
}

// DetailsKey returns the cache key for a movie's details.
func DetailsKey(id int) string {
	return PrefixDetails + strconv.Itoa(id)
}

// ResponsePrefixes returns every response key prefix.
func ResponsePrefixes() []string {
	return []string{PrefixUpcoming, PrefixPopular, PrefixDetails}
}
