package tmdb

import "github.com/mmcdole/reel/internal/domain"

func mapMovie(r movieResult) domain.Movie {
	return domain.Movie{
		ID:               r.ID,
		Title:            r.Title,
		OriginalTitle:    r.OriginalTitle,
		Overview:         r.Overview,
		PosterPath:       r.PosterPath,
		BackdropPath:     r.BackdropPath,
		ReleaseDate:      r.ReleaseDate,
		VoteAverage:      r.VoteAverage,
		VoteCount:        r.VoteCount,
		GenreIDs:         r.GenreIDs,
		Adult:            r.Adult,
		OriginalLanguage: r.OriginalLanguage,
		Popularity:       r.Popularity,
		Video:            r.Video,
	}
}

func mapMoviePage(r movieListResponse) *domain.MoviePage {
	results := make([]domain.Movie, 0, len(r.Results))
	for _, m := range r.Results {
		results = append(results, mapMovie(m))
	}
	return &domain.MoviePage{
		Page:         r.Page,
		Results:      results,
		TotalPages:   r.TotalPages,
		TotalResults: r.TotalResults,
	}
}

func mapMovieDetails(r movieDetailsResponse) *domain.MovieDetails {
	d := &domain.MovieDetails{
		Movie:    mapMovie(r.movieResult),
		Budget:   r.Budget,
		Revenue:  r.Revenue,
		Runtime:  r.Runtime,
		Tagline:  r.Tagline,
		Homepage: r.Homepage,
		IMDbID:   r.IMDbID,
		Status:   r.Status,
	}
	for _, g := range r.Genres {
		d.Genres = append(d.Genres, domain.Genre{ID: g.ID, Name: g.Name})
	}
	for _, pc := range r.ProductionCompanies {
		d.ProductionCompanies = append(d.ProductionCompanies, domain.ProductionCompany{
			ID:            pc.ID,
			Name:          pc.Name,
			LogoPath:      pc.LogoPath,
			OriginCountry: pc.OriginCountry,
		})
	}
	for _, pc := range r.ProductionCountries {
		d.ProductionCountries = append(d.ProductionCountries, domain.ProductionCountry{ISO: pc.ISO, Name: pc.Name})
	}
	for _, l := range r.SpokenLanguages {
		d.SpokenLanguages = append(d.SpokenLanguages, domain.SpokenLanguage{
			EnglishName: l.EnglishName,
			ISO:         l.ISO,
			Name:        l.Name,
		})
	}
	// Genre ids are only present on list results; derive them for details
	if len(d.GenreIDs) == 0 {
		for _, g := range d.Genres {
			d.GenreIDs = append(d.GenreIDs, g.ID)
		}
	}
	return d
}

// ImageURL joins an image base URL with a poster or backdrop path.
func ImageURL(base string, path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	return base + *path
}
