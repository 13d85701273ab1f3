package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/state"
	"github.com/mmcdole/reel/internal/tmdb"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return m.spinner.View() + " Starting..."
	}

	var body string
	var help []key.Binding
	switch m.view {
	case ViewDetails:
		body = m.renderDetails()
		help = detailsHelp
	case ViewFavorites:
		body = m.renderFavorites()
		help = listHelp
	default:
		body = m.renderCollection(m.st.Active())
		help = listHelp
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		"",
		lipgloss.NewStyle().Height(max(m.Height-chromeHeight, 1)).Render(body),
		m.renderStatus(),
		renderHelp(help, m.Width),
	)
}

func (m Model) renderTabs() string {
	var tabs []string
	for _, c := range domain.Catalogs {
		label := c.Title()
		if m.view != ViewFavorites && c == m.st.ActiveTab {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(label))
		}
	}
	favLabel := fmt.Sprintf("Favorites (%d)", len(m.st.Favorites))
	if m.view == ViewFavorites {
		tabs = append(tabs, styles.ActiveTabStyle.Render(favLabel))
	} else {
		tabs = append(tabs, styles.InactiveTabStyle.Render(favLabel))
	}

	if !m.st.Online {
		tabs = append(tabs, " ", styles.OfflineBadgeStyle.Render("OFFLINE"))
	}
	if m.view == ViewList && m.st.Active().FromCache {
		tabs = append(tabs, " ", styles.CachedBadgeStyle.Render("cached"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderCollection renders a paginated collection according to its status.
func (m Model) renderCollection(col state.Collection) string {
	l := m.currentList()

	switch state.StatusOf(col) {
	case state.StatusIdle, state.StatusLoading, state.StatusRefreshing:
		if len(col.Movies) == 0 {
			return m.spinner.View() + " Loading movies..."
		}
	case state.StatusError:
		if len(col.Movies) == 0 {
			return styles.ErrorStyle.Render(col.Status.Error) + "\n" +
				styles.DimStyle.Render("Press r to retry")
		}
	case state.StatusEmpty:
		return styles.DimStyle.Render("No movies found")
	}

	return m.renderList(l)
}

func (m Model) renderFavorites() string {
	if len(m.st.Favorites) == 0 {
		return styles.DimStyle.Render("No favorites yet. Press f on a movie to add it.")
	}
	return m.renderList(m.favorites)
}

func (m Model) renderList(l *movieList) string {
	var lines []string
	if l.filterActive {
		lines = append(lines, l.FilterView())
	}
	start, end := l.Window()
	for i := start; i < end; i++ {
		movie, matched := l.At(i)
		lines = append(lines, renderMovieRow(movie, matched, i == l.cursor, m.Width))
	}
	if l.filterActive && l.Len() == 0 {
		lines = append(lines, styles.DimStyle.Render("No matches"))
	}
	return styles.BrowserStyle.Render(strings.Join(lines, "\n"))
}

// renderMovieRow renders a movie item for the list
func renderMovieRow(movie domain.Movie, matched []int, selected bool, width int) string {
	style := styles.NormalItemStyle
	if selected {
		style = styles.SelectedItemStyle
	}

	star := " "
	if movie.IsFavorite {
		star = styles.FavoriteStar
	}

	meta := movie.Year()
	if r := movie.Rating(); r != "" {
		meta = strings.TrimSpace(meta + "  " + r)
	}

	titleWidth := width - lipgloss.Width(meta) - 8
	title := styles.Truncate(movie.Title, titleWidth)
	if len(matched) > 0 && title == movie.Title {
		title = styles.Highlight(title, matched, lipgloss.NewStyle())
	}

	return style.Width(max(width-2, 1)).Render(
		fmt.Sprintf("%s %s  %s", star, title, styles.DimStyle.Render(meta)),
	)
}

func (m Model) renderDetails() string {
	movie := m.detailsFor
	details, loaded := m.st.DetailsFor(movie.ID)
	if loaded {
		movie = details.Movie
	} else {
		movie.IsFavorite = m.st.IsFavorite(movie.ID)
	}

	width := max(m.Width-8, 20)
	var b strings.Builder

	title := movie.Title
	if movie.IsFavorite {
		title = styles.FavoriteStar + " " + title
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")

	var meta []string
	if y := movie.Year(); y != "" {
		meta = append(meta, y)
	}
	if r := movie.Rating(); r != "" {
		meta = append(meta, r)
	}
	if loaded {
		if rt := details.FormattedRuntime(); rt != "" {
			meta = append(meta, rt)
		}
		if g := details.GenreNames(); g != "" {
			meta = append(meta, g)
		}
	}
	b.WriteString(styles.SubtitleStyle.Render(strings.Join(meta, "  ·  ")))
	b.WriteString("\n\n")

	if loaded && details.Tagline != "" {
		b.WriteString(styles.AccentStyle.Render(details.Tagline))
		b.WriteString("\n\n")
	}

	if m.opts.ShowOverview && movie.Overview != "" {
		b.WriteString(lipgloss.NewStyle().Width(width).Render(movie.Overview))
		b.WriteString("\n\n")
	}

	switch {
	case loaded:
		if details.Homepage != "" {
			b.WriteString(styles.DimStyle.Render("Homepage: " + details.Homepage))
			b.WriteString("\n")
		}
		if poster := tmdb.ImageURL(m.opts.ImageBaseURL, movie.PosterPath); poster != "" {
			b.WriteString(styles.DimStyle.Render("Poster:   " + poster))
			b.WriteString("\n")
		}
	case m.st.DetailsPending[movie.ID]:
		b.WriteString(m.spinner.View() + " Loading details...")
	default:
		if msg, failed := m.st.DetailErrors[movie.ID]; failed {
			// Keep showing what is already known about the movie
			b.WriteString(styles.DimStyle.Render("More details unavailable (" + msg + ")"))
		}
	}

	return styles.DetailsStyle.Width(width).Render(b.String())
}

// renderStatus renders the line above the footer: transient messages, then
// paging state of the active collection.
func (m Model) renderStatus() string {
	if m.StatusMsg != "" {
		return styles.SuccessStyle.Render(m.StatusMsg)
	}
	if m.view != ViewList {
		return ""
	}

	col := m.st.Active()
	if len(col.Movies) == 0 {
		return ""
	}
	switch state.StatusOf(col) {
	case state.StatusRefreshing:
		return m.spinner.View() + styles.DimStyle.Render(" Refreshing...")
	case state.StatusLoading:
		return m.spinner.View() + styles.DimStyle.Render(" Loading more...")
	case state.StatusError:
		return styles.ErrorStyle.Render(col.Status.Error) + styles.DimStyle.Render("  (r to retry)")
	}
	if !col.HasMore {
		return styles.DimStyle.Render(fmt.Sprintf("%d movies, end of list", len(col.Movies)))
	}
	return styles.DimStyle.Render(fmt.Sprintf("%d movies, page %d", len(col.Movies), col.Page))
}

func renderHelp(bindings []key.Binding, width int) string {
	var parts []string
	used := 0
	for _, b := range bindings {
		h := b.Help()
		w := lipgloss.Width(h.Key) + lipgloss.Width(h.Desc) + 3
		if width > 0 && used+w > width {
			break
		}
		used += w
		parts = append(parts, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
