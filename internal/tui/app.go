package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/state"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// ViewMode is the screen currently shown
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetails
	ViewFavorites
)

// Vertical chrome: tab bar, blank line, status line, footer
const chromeHeight = 4

// Options configures the model
type Options struct {
	ImageBaseURL string
	ShowOverview bool
	InitialTab   domain.Catalog
}

// Model is the main Bubble Tea model for the application
type Model struct {
	core    Core
	updates <-chan state.State
	opts    Options

	// Latest snapshot from the core
	st state.State

	// UI components
	lists     map[domain.Catalog]*movieList
	favorites *movieList
	spinner   spinner.Model

	// Navigation
	view       ViewMode
	returnTo   ViewMode
	detailsFor domain.Movie // minimal known data for the details screen

	// Dimensions
	Width  int
	Height int
	Ready  bool

	StatusMsg string
}

// NewModel creates a new application model. updates is the core's snapshot
// subscription.
func NewModel(core Core, updates <-chan state.State, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return Model{
		core:      core,
		updates:   updates,
		opts:      opts,
		st:        core.Snapshot(),
		lists:     map[domain.Catalog]*movieList{domain.CatalogUpcoming: newMovieList(), domain.CatalogPopular: newMovieList()},
		favorites: newMovieList(),
		spinner:   sp,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		MountCmd(m.core),
		WaitForStateCmd(m.updates),
		m.spinner.Tick,
	}
	if m.opts.InitialTab != "" && m.opts.InitialTab != m.st.ActiveTab {
		tab := m.opts.InitialTab
		cmds = append(cmds, func() tea.Msg {
			m.core.SelectTab(tab)
			return nil
		})
	}
	return tea.Batch(cmds...)
}

// ActiveTab returns the tab shown when the program exited.
func (m Model) ActiveTab() domain.Catalog {
	return m.st.ActiveTab
}

// State returns the last snapshot the model rendered.
func (m Model) State() state.State {
	return m.st
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case StateMsg:
		m.applyState(msg.State)
		return m, WaitForStateCmd(m.updates)

	case SubscriptionClosedMsg:
		return m, tea.Quit

	case ClearStatusMsg:
		m.StatusMsg = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) applyState(st state.State) {
	m.st = st
	for c, l := range m.lists {
		l.SetMovies(st.Collection(c).Movies)
	}
	m.favorites.SetMovies(st.Favorites)
}

func (m *Model) updateLayout() {
	rows := m.Height - chromeHeight
	for _, l := range m.lists {
		l.SetHeight(rows)
	}
	m.favorites.SetHeight(rows)
}

// currentList returns the list the cursor keys act on
func (m Model) currentList() *movieList {
	if m.view == ViewFavorites {
		return m.favorites
	}
	return m.lists[m.st.ActiveTab]
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Filter input swallows keys while typing
	if l := m.currentList(); m.view != ViewDetails && l.IsFilterTyping() {
		switch msg.Type {
		case tea.KeyEsc:
			l.ClearFilter()
			return m, nil
		case tea.KeyEnter:
			l.AcceptFilter()
			return m, nil
		}
		return m, l.UpdateFilter(msg)
	}

	if key.Matches(msg, Keys.Quit) {
		return m, tea.Quit
	}

	if m.view == ViewDetails {
		return m.handleDetailsKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.currentList()

	switch {
	case key.Matches(msg, Keys.Down):
		l.MoveDown()
		m.maybeLoadMore(l)
	case key.Matches(msg, Keys.Up):
		l.MoveUp()
	case key.Matches(msg, Keys.Top):
		l.Top()
	case key.Matches(msg, Keys.Bottom):
		l.Bottom()
		m.maybeLoadMore(l)

	case key.Matches(msg, Keys.NextTab):
		m.view = ViewList
		m.core.SelectTab(nextCatalog(m.st.ActiveTab))
	case key.Matches(msg, Keys.Tab1):
		m.view = ViewList
		m.core.SelectTab(domain.CatalogUpcoming)
	case key.Matches(msg, Keys.Tab2):
		m.view = ViewList
		m.core.SelectTab(domain.CatalogPopular)
	case key.Matches(msg, Keys.Favorites):
		if m.view == ViewFavorites {
			m.view = ViewList
		} else {
			m.view = ViewFavorites
		}

	case key.Matches(msg, Keys.Refresh):
		if m.view == ViewList {
			m.core.Refresh(m.st.ActiveTab)
		}
	case key.Matches(msg, Keys.Favorite):
		if movie, ok := l.Selected(); ok {
			m.core.ToggleFavorite(movie)
			return m, m.flash(favoriteStatus(movie, !m.st.IsFavorite(movie.ID)))
		}
	case key.Matches(msg, Keys.Enter):
		if movie, ok := l.Selected(); ok {
			m.returnTo = m.view
			m.view = ViewDetails
			m.detailsFor = movie
			m.core.OpenDetails(movie.ID)
		}
	case key.Matches(msg, Keys.Filter):
		return m, l.StartFilter()
	case key.Matches(msg, Keys.Back):
		if l.filterActive {
			l.ClearFilter()
		} else if m.view == ViewFavorites {
			m.view = ViewList
		}
	}
	return m, nil
}

func (m Model) handleDetailsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Back):
		m.view = m.returnTo
	case key.Matches(msg, Keys.Favorite):
		movie := m.detailsFor
		if d, ok := m.st.DetailsFor(movie.ID); ok {
			movie = d.Movie
		}
		m.core.ToggleFavorite(movie)
		return m, m.flash(favoriteStatus(movie, !m.st.IsFavorite(movie.ID)))
	case key.Matches(msg, Keys.Refresh):
		// Only a failed load can be retried; loaded details stay cached
		if _, failed := m.st.DetailErrors[m.detailsFor.ID]; failed {
			m.core.OpenDetails(m.detailsFor.ID)
		}
	}
	return m, nil
}

// maybeLoadMore asks for the next page when the cursor reaches the end of
// the active collection.
func (m Model) maybeLoadMore(l *movieList) {
	if m.view != ViewList || !l.AtEnd() {
		return
	}
	if m.st.Active().CanLoadMore() {
		m.core.LoadMore()
	}
}

func (m *Model) flash(text string) tea.Cmd {
	m.StatusMsg = text
	return ClearStatusCmd(2 * time.Second)
}

func favoriteStatus(movie domain.Movie, added bool) string {
	if added {
		return "Added " + movie.Title + " to favorites"
	}
	return "Removed " + movie.Title + " from favorites"
}

func nextCatalog(c domain.Catalog) domain.Catalog {
	for i, cat := range domain.Catalogs {
		if cat == c {
			return domain.Catalogs[(i+1)%len(domain.Catalogs)]
		}
	}
	return domain.CatalogUpcoming
}
