package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/reel/internal/domain"
)

// RankFavorites returns the favorites whose titles contain query as a fuzzy
// subsequence, ordered best first. An empty query returns favorites in
// their stored order.
func RankFavorites(query string, favorites []domain.Movie) []domain.Movie {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return favorites
	}

	type ranked struct {
		movie domain.Movie
		score int
		pos   int
	}

	var hits []ranked
	for i, m := range favorites {
		title := strings.ToLower(m.Title)
		if !fuzzy.MatchFold(query, title) {
			continue
		}
		hits = append(hits, ranked{movie: m, score: matchScore(title, query), pos: i})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score < hits[j].score
		}
		return hits[i].pos < hits[j].pos
	})

	out := make([]domain.Movie, len(hits))
	for i, h := range hits {
		out[i] = h.movie
	}
	return out
}

// matchScore ranks a title against query. Lower is better.
func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	default:
		return 100 + fuzzy.LevenshteinDistance(query, title)
	}
}
