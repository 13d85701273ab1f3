package domain

import (
	"fmt"
	"strings"
)

// Catalog identifies one of the independently paginated movie lists.
type Catalog string

const (
	CatalogUpcoming Catalog = "upcoming"
	CatalogPopular  Catalog = "popular"
)

// Catalogs lists every catalog in display order.
var Catalogs = []Catalog{CatalogUpcoming, CatalogPopular}

// ParseCatalog converts a user-supplied name into a Catalog.
func ParseCatalog(s string) (Catalog, error) {
	switch Catalog(strings.ToLower(strings.TrimSpace(s))) {
	case CatalogUpcoming:
		return CatalogUpcoming, nil
	case CatalogPopular:
		return CatalogPopular, nil
	default:
		return "", fmt.Errorf("unknown catalog %q (want upcoming or popular)", s)
	}
}

// Title returns the tab label for the catalog.
func (c Catalog) Title() string {
	switch c {
	case CatalogUpcoming:
		return "Upcoming"
	case CatalogPopular:
		return "Popular"
	default:
		return string(c)
	}
}

// Movie is a catalog entry as returned by the list endpoints.
// IsFavorite is derived from the favorites set and is never authoritative.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language"`
	Popularity       float64 `json:"popularity"`
	Video            bool    `json:"video"`
	IsFavorite       bool    `json:"isFavorite,omitempty"`
}

// Year returns the release year, or "" when the date is unknown.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// Rating formats the vote average for display (e.g. "7.4").
func (m Movie) Rating() string {
	return fmt.Sprintf("%.1f", m.VoteAverage)
}

// Genre is a named genre attached to movie details.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProductionCompany is a studio credited on a movie.
type ProductionCompany struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	LogoPath      *string `json:"logo_path"`
	OriginCountry string  `json:"origin_country"`
}

// ProductionCountry is a country credited on a movie.
type ProductionCountry struct {
	ISO  string `json:"iso_3166_1"`
	Name string `json:"name"`
}

// SpokenLanguage is a language spoken in a movie.
type SpokenLanguage struct {
	EnglishName string `json:"english_name"`
	ISO         string `json:"iso_639_1"`
	Name        string `json:"name"`
}

// MovieDetails extends Movie with fields only the details endpoint returns.
type MovieDetails struct {
	Movie
	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
	Runtime             int                 `json:"runtime"`
	Genres              []Genre             `json:"genres"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
	Tagline             string              `json:"tagline"`
	Homepage            string              `json:"homepage"`
	IMDbID              string              `json:"imdb_id"`
	Status              string              `json:"status"`
}

// FormattedRuntime returns the runtime as "2h 10m".
func (d MovieDetails) FormattedRuntime() string {
	if d.Runtime <= 0 {
		return ""
	}
	h, m := d.Runtime/60, d.Runtime%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// GenreNames joins the genre names with commas.
func (d MovieDetails) GenreNames() string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

// MoviePage is one page of a catalog listing.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// HasMore reports whether pages after this one exist.
func (p MoviePage) HasMore() bool {
	return p.Page < p.TotalPages
}
