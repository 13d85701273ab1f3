package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/search"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// movieList is a scrollable, filterable list of movies.
type movieList struct {
	movies []domain.Movie

	cursor     int
	offset     int
	maxVisible int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	matches      []search.Match // nil when no query
}

func newMovieList() *movieList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &movieList{filterInput: ti, maxVisible: 10}
}

// SetMovies replaces the backing items, keeping the cursor in range.
func (l *movieList) SetMovies(movies []domain.Movie) {
	l.movies = movies
	if l.filterActive {
		l.matches = search.FilterMovies(l.filterInput.Value(), movies)
	}
	l.clamp()
}

// SetHeight sets the number of visible rows.
func (l *movieList) SetHeight(rows int) {
	if rows < 1 {
		rows = 1
	}
	l.maxVisible = rows
	l.ensureVisible()
}

// Len returns the number of visible (filtered) items.
func (l *movieList) Len() int {
	if l.filtering() {
		return len(l.matches)
	}
	return len(l.movies)
}

// At returns the i-th visible item and its match positions.
func (l *movieList) At(i int) (domain.Movie, []int) {
	if l.filtering() {
		m := l.matches[i]
		return l.movies[m.Index], m.MatchedIndexes
	}
	return l.movies[i], nil
}

// Selected returns the item under the cursor.
func (l *movieList) Selected() (domain.Movie, bool) {
	if l.Len() == 0 {
		return domain.Movie{}, false
	}
	m, _ := l.At(l.cursor)
	return m, true
}

// AtEnd reports whether the cursor sits on the last unfiltered item.
func (l *movieList) AtEnd() bool {
	return !l.filtering() && len(l.movies) > 0 && l.cursor == len(l.movies)-1
}

func (l *movieList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
	l.ensureVisible()
}

func (l *movieList) MoveDown() {
	if l.cursor < l.Len()-1 {
		l.cursor++
	}
	l.ensureVisible()
}

func (l *movieList) Top() {
	l.cursor = 0
	l.ensureVisible()
}

func (l *movieList) Bottom() {
	l.cursor = max(l.Len()-1, 0)
	l.ensureVisible()
}

// Window returns the visible index range [start, end).
func (l *movieList) Window() (int, int) {
	end := min(l.offset+l.maxVisible, l.Len())
	return l.offset, end
}

// StartFilter activates the filter input
func (l *movieList) StartFilter() tea.Cmd {
	l.filterActive = true
	return l.filterInput.Focus()
}

// IsFilterTyping returns true if filter is active AND input is focused
func (l *movieList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (l *movieList) ClearFilter() {
	l.filterActive = false
	l.matches = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.clamp()
}

// AcceptFilter keeps the current matches and returns keys to navigation.
func (l *movieList) AcceptFilter() {
	l.filterInput.Blur()
}

// UpdateFilter feeds a key to the filter input and re-runs the match.
func (l *movieList) UpdateFilter(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.filterInput, cmd = l.filterInput.Update(msg)
	l.matches = search.FilterMovies(l.filterInput.Value(), l.movies)
	l.cursor = 0
	l.offset = 0
	return cmd
}

// FilterView renders the filter bar.
func (l *movieList) FilterView() string {
	return l.filterInput.View()
}

func (l *movieList) filtering() bool {
	return l.filterActive && l.filterInput.Value() != ""
}

func (l *movieList) clamp() {
	if l.cursor >= l.Len() {
		l.cursor = max(l.Len()-1, 0)
	}
	l.ensureVisible()
}

func (l *movieList) ensureVisible() {
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}
