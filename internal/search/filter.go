// Package search provides fuzzy matching over movie titles.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/reel/internal/domain"
)

// Match is a filter hit with match metadata for highlighting.
type Match struct {
	Index          int   // index into the filtered slice
	MatchedIndexes []int // rune positions in the title that matched
	Score          int   // higher is better
}

// titleIndex implements fuzzy.Source over pre-lowercased titles.
type titleIndex []string

func (t titleIndex) String(i int) string { return t[i] }
func (t titleIndex) Len() int            { return len(t) }

// FilterMovies returns the movies whose titles fuzzily match query, best
// first. An empty query matches nothing.
func FilterMovies(query string, movies []domain.Movie) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(movies) == 0 {
		return nil
	}

	idx := make(titleIndex, len(movies))
	for i, m := range movies {
		idx[i] = strings.ToLower(m.Title)
	}

	found := fuzzy.FindFrom(query, idx)
	matches := make([]Match, len(found))
	for i, f := range found {
		matches[i] = Match{
			Index:          f.Index,
			MatchedIndexes: f.MatchedIndexes,
			Score:          f.Score,
		}
	}
	return matches
}

// Select returns the movies referenced by matches, in match order.
func Select(movies []domain.Movie, matches []Match) []domain.Movie {
	out := make([]domain.Movie, 0, len(matches))
	for _, m := range matches {
		out = append(out, movies[m.Index])
	}
	return out
}
