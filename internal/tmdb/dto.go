package tmdb

// movieResult is a single entry in a list response
type movieResult struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language"`
	Popularity       float64 `json:"popularity"`
	Video            bool    `json:"video"`
}

// movieListResponse is the envelope of /movie/upcoming and /movie/popular
type movieListResponse struct {
	Page         int           `json:"page"`
	Results      []movieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type productionCompany struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	LogoPath      *string `json:"logo_path"`
	OriginCountry string  `json:"origin_country"`
}

type productionCountry struct {
	ISO  string `json:"iso_3166_1"`
	Name string `json:"name"`
}

type spokenLanguage struct {
	EnglishName string `json:"english_name"`
	ISO         string `json:"iso_639_1"`
	Name        string `json:"name"`
}

// movieDetailsResponse is the body of /movie/{id}
type movieDetailsResponse struct {
	movieResult
	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
	Runtime             int                 `json:"runtime"`
	Genres              []genre             `json:"genres"`
	ProductionCompanies []productionCompany `json:"production_companies"`
	ProductionCountries []productionCountry `json:"production_countries"`
	SpokenLanguages     []spokenLanguage    `json:"spoken_languages"`
	Tagline             string              `json:"tagline"`
	Homepage            string              `json:"homepage"`
	IMDbID              string              `json:"imdb_id"`
	Status              string              `json:"status"`
}

// errorResponse is the body TMDB returns alongside 4xx/5xx statuses
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
