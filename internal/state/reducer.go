package state

import "github.com/mmcdole/reel/internal/domain"

// Reduce applies ev to s and returns the next state. It is pure: s and
// everything reachable from it are left untouched.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case PageRequested:
		col := s.Collection(e.Catalog)
		col.Generation++
		col.Status = Status{
			IsLoading:    true,
			IsRefreshing: e.Refresh,
		}
		return s.withCollection(e.Catalog, col)

	case PageSucceeded:
		col := s.Collection(e.Catalog)
		if e.Generation != col.Generation {
			return s
		}
		page := e.Result.Page
		var movies []domain.Movie
		if page <= 1 {
			movies = mergeUnique(nil, e.Result.Results)
		} else {
			movies = mergeUnique(col.Movies, e.Result.Results)
		}
		col.Movies = markFavorites(movies, favoriteIDs(s.Favorites))
		col.Page = page
		col.HasMore = page < e.Result.TotalPages
		col.Status = Status{}
		col.FromCache = e.FromCache
		return s.withCollection(e.Catalog, col)

	case PageFailed:
		col := s.Collection(e.Catalog)
		if e.Generation != col.Generation {
			return s
		}
		col.Status = Status{Error: e.Err}
		return s.withCollection(e.Catalog, col)

	case DetailsRequested:
		s.DetailsPending = withFlag(s.DetailsPending, e.ID, true)
		s.DetailErrors = without(s.DetailErrors, e.ID)
		return s

	case DetailsSucceeded:
		d := e.Details
		d.IsFavorite = s.IsFavorite(d.ID)
		details := copyDetails(s.Details)
		details[d.ID] = d
		s.Details = details
		s.DetailsPending = withFlag(s.DetailsPending, d.ID, false)
		s.DetailErrors = without(s.DetailErrors, d.ID)
		return s

	case DetailsFailed:
		errs := make(map[int]string, len(s.DetailErrors)+1)
		for id, msg := range s.DetailErrors {
			errs[id] = msg
		}
		errs[e.ID] = e.Err
		s.DetailErrors = errs
		s.DetailsPending = withFlag(s.DetailsPending, e.ID, false)
		return s

	case FavoriteToggled:
		return s.withFavorites(toggle(s.Favorites, e.Movie))

	case FavoritesLoaded:
		favs := make([]domain.Movie, 0, len(e.Favorites))
		seen := make(map[int]struct{}, len(e.Favorites))
		for _, m := range e.Favorites {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			m.IsFavorite = true
			favs = append(favs, m)
		}
		return s.withFavorites(favs)

	case TabSelected:
		s.ActiveTab = e.Catalog
		return s

	case NetworkChanged:
		s.Online = e.Online
		return s
	}
	return s
}

// withFavorites installs a new favorites set and reprojects the favorite flag
// onto every collection and details copy.
func (s State) withFavorites(favs []domain.Movie) State {
	ids := favoriteIDs(favs)
	s.Favorites = favs
	s.Upcoming.Movies = markFavorites(s.Upcoming.Movies, ids)
	s.Popular.Movies = markFavorites(s.Popular.Movies, ids)

	details := make(map[int]domain.MovieDetails, len(s.Details))
	for id, d := range s.Details {
		_, d.IsFavorite = ids[id]
		details[id] = d
	}
	s.Details = details
	return s
}

func toggle(favs []domain.Movie, movie domain.Movie) []domain.Movie {
	out := make([]domain.Movie, 0, len(favs)+1)
	removed := false
	for _, m := range favs {
		if m.ID == movie.ID {
			removed = true
			continue
		}
		out = append(out, m)
	}
	if !removed {
		movie.IsFavorite = true
		out = append(out, movie)
	}
	return out
}

func favoriteIDs(favs []domain.Movie) map[int]struct{} {
	ids := make(map[int]struct{}, len(favs))
	for _, m := range favs {
		ids[m.ID] = struct{}{}
	}
	return ids
}

// markFavorites returns a copy of movies with IsFavorite projected from ids.
func markFavorites(movies []domain.Movie, ids map[int]struct{}) []domain.Movie {
	if movies == nil {
		return nil
	}
	out := make([]domain.Movie, len(movies))
	for i, m := range movies {
		_, m.IsFavorite = ids[m.ID]
		out[i] = m
	}
	return out
}

// mergeUnique appends incoming to a copy of existing, skipping ids already
// present.
func mergeUnique(existing, incoming []domain.Movie) []domain.Movie {
	out := make([]domain.Movie, 0, len(existing)+len(incoming))
	seen := make(map[int]struct{}, cap(out))
	for _, list := range [][]domain.Movie{existing, incoming} {
		for _, m := range list {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

func copyDetails(in map[int]domain.MovieDetails) map[int]domain.MovieDetails {
	out := make(map[int]domain.MovieDetails, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func withFlag(in map[int]bool, id int, on bool) map[int]bool {
	out := make(map[int]bool, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	if on {
		out[id] = true
	} else {
		delete(out, id)
	}
	return out
}

func without(in map[int]string, id int) map[int]string {
	if _, ok := in[id]; !ok {
		return in
	}
	out := make(map[int]string, len(in))
	for k, v := range in {
		if k != id {
			out[k] = v
		}
	}
	return out
}
