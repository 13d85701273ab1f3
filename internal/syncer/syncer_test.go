package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/fetch"
	"github.com/mmcdole/reel/internal/network"
	"github.com/mmcdole/reel/internal/state"
	"github.com/mmcdole/reel/internal/store"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type pageKey struct {
	catalog domain.Catalog
	page    int
}

type fakeFetcher struct {
	mu          sync.Mutex
	pages       map[pageKey]domain.MoviePage
	details     map[int]domain.MovieDetails
	pageErr     error
	gates       map[pageKey]chan struct{}
	pageCalls   map[pageKey]int
	detailCalls map[int]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:       map[pageKey]domain.MoviePage{},
		details:     map[int]domain.MovieDetails{},
		gates:       map[pageKey]chan struct{}{},
		pageCalls:   map[pageKey]int{},
		detailCalls: map[int]int{},
	}
}

func (f *fakeFetcher) setPage(c domain.Catalog, page, total int, ids ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := domain.MoviePage{Page: page, TotalPages: total}
	for _, id := range ids {
		p.Results = append(p.Results, domain.Movie{ID: id, Title: "Movie"})
	}
	f.pages[pageKey{c, page}] = p
}

// gate makes the next fetch of (c, page) block until the returned func runs.
func (f *fakeFetcher) gate(c domain.Catalog, page int) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[pageKey{c, page}] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeFetcher) FetchPage(ctx context.Context, c domain.Catalog, page int) (fetch.Result[domain.MoviePage], error) {
	k := pageKey{c, page}
	f.mu.Lock()
	f.pageCalls[k]++
	gate := f.gates[k]
	delete(f.gates, k)
	f.mu.Unlock()

	// Snapshot the response before blocking so a gated call returns what was
	// configured when it was issued.
	f.mu.Lock()
	p, ok := f.pages[k]
	err := f.pageErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return fetch.Result[domain.MoviePage]{}, ctx.Err()
		}
	}
	if err != nil {
		return fetch.Result[domain.MoviePage]{}, err
	}
	if !ok {
		return fetch.Result[domain.MoviePage]{}, &domain.FetchError{Message: "Not Found", StatusCode: 404}
	}
	return fetch.Result[domain.MoviePage]{Data: p, Source: fetch.SourceRemote}, nil
}

func (f *fakeFetcher) FetchDetails(ctx context.Context, id int) (fetch.Result[domain.MovieDetails], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls[id]++
	d, ok := f.details[id]
	if !ok {
		return fetch.Result[domain.MovieDetails]{}, &domain.FetchError{Message: "Network error"}
	}
	return fetch.Result[domain.MovieDetails]{Data: d, Source: fetch.SourceRemote}, nil
}

func (f *fakeFetcher) calls(c domain.Catalog, page int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageCalls[pageKey{c, page}]
}

func (f *fakeFetcher) detailCount(id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls[id]
}

type fakeFavorites struct {
	mu      sync.Mutex
	initial []domain.Movie
	saved   [][]domain.Movie
	saveErr error
}

func (f *fakeFavorites) LoadFavorites(ctx context.Context) ([]domain.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initial, nil
}

func (f *fakeFavorites) SaveFavorites(ctx context.Context, favs []domain.Movie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, favs)
	return f.saveErr
}

func (f *fakeFavorites) lastSaved() ([]domain.Movie, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return nil, false
	}
	return f.saved[len(f.saved)-1], true
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startSyncer(t *testing.T, f Fetcher, favs domain.FavoritesRepository, reach domain.Reachability) *Syncer {
	t.Helper()
	s := New(f, favs, reach, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return s
}

func movieIDs(movies []domain.Movie) []int {
	out := make([]int, len(movies))
	for i, m := range movies {
		out[i] = m.ID
	}
	return out
}

func eventually(t *testing.T, s *Syncer, cond func(st state.State) bool, msg string) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(s.Snapshot()) }, waitFor, tick, msg)
}

func TestSyncer_MountLoadsFavoritesAndFirstPages(t *testing.T) {
	f := newFakeFetcher()
	f.setPage(domain.CatalogUpcoming, 1, 3, 1, 2)
	f.setPage(domain.CatalogPopular, 1, 5, 2, 7)
	favs := &fakeFavorites{initial: []domain.Movie{{ID: 2, Title: "Fav"}}}

	s := startSyncer(t, f, favs, nil)
	s.Mount()

	eventually(t, s, func(st state.State) bool {
		return st.Upcoming.Page == 1 && st.Popular.Page == 1
	}, "both collections should load page 1")

	st := s.Snapshot()
	assert.Equal(t, []int{1, 2}, movieIDs(st.Upcoming.Movies))
	assert.Equal(t, []int{2, 7}, movieIDs(st.Popular.Movies))
	assert.True(t, st.Upcoming.Movies[1].IsFavorite)
	assert.True(t, st.Popular.Movies[0].IsFavorite)
	assert.False(t, st.Popular.Movies[1].IsFavorite)
	assert.Equal(t, state.StatusReady, state.StatusOf(st.Upcoming))

	// A second mount does not refetch populated collections
	s.Mount()
	s.SelectTab(domain.CatalogPopular)
	eventually(t, s, func(st state.State) bool { return st.ActiveTab == domain.CatalogPopular }, "tab switch")
	assert.Equal(t, 1, f.calls(domain.CatalogUpcoming, 1))
}

func TestSyncer_LoadMoreAppendsToActiveTab(t *testing.T) {
	f := newFakeFetcher()
	f.setPage(domain.CatalogUpcoming, 1, 5, 1)
	f.setPage(domain.CatalogPopular, 1, 5, 7)
	f.setPage(domain.CatalogPopular, 2, 5, 7, 9)

	s := startSyncer(t, f, nil, nil)
	s.Mount()
	eventually(t, s, func(st state.State) bool { return st.Popular.Page == 1 && st.Upcoming.Page == 1 }, "mount")

	s.SelectTab(domain.CatalogPopular)
	s.LoadMore()
	eventually(t, s, func(st state.State) bool { return st.Popular.Page == 2 }, "page 2")

	st := s.Snapshot()
	assert.Equal(t, []int{7, 9}, movieIDs(st.Popular.Movies))
	assert.True(t, st.Popular.HasMore)
	assert.Equal(t, []int{1}, movieIDs(st.Upcoming.Movies))
	assert.Zero(t, f.calls(domain.CatalogUpcoming, 2))
}

func TestSyncer_LoadMoreIgnoredWhileLoading(t *testing.T) {
	f := newFakeFetcher()
	f.setPage(domain.CatalogUpcoming, 1, 5, 1)
	f.setPage(domain.CatalogPopular, 1, 5, 2)
	f.setPage(domain.CatalogUpcoming, 2, 5, 3)

	s := startSyncer(t, f, nil, nil)
	s.Mount()
	eventually(t, s, func(st state.State) bool { return st.Upcoming.Page == 1 }, "mount")

	release := f.gate(domain.CatalogUpcoming, 2)
	s.LoadMore()
	s.LoadMore()
	s.LoadMore()
	eventually(t, s, func(st state.State) bool { return st.Upcoming.Status.IsLoading }, "loading")

	release()
	eventually(t, s, func(st state.State) bool { return st.Upcoming.Page == 2 }, "page 2")
	assert.Equal(t, 1, f.calls(domain.CatalogUpcoming, 2))
	assert.Zero(t, f.calls(domain.CatalogUpcoming, 3))
}

func TestSyncer_RefreshReplaces(t *testing.T) {
	f := newFakeFetcher()
	f.setPage(domain.CatalogUpcoming, 1, 5, 1, 2)
	f.setPage(domain.CatalogPopular, 1, 5, 3)

	s := startSyncer(t, f, nil, nil)
	s.Mount()
	eventually(t, s, func(st state.State) bool { return st.Upcoming.Page == 1 }, "mount")

	f.setPage(domain.CatalogUpcoming, 1, 5, 10)
	release := f.gate(domain.CatalogUpcoming, 1)
	s.Refresh(domain.CatalogUpcoming)
	eventually(t, s, func(st state.State) bool { return st.Upcoming.Status.IsRefreshing }, "refreshing")

	release()
	eventually(t, s, func(st state.State) bool {
		return !st.Upcoming.Status.IsRefreshing && len(st.Upcoming.Movies) == 1
	}, "refresh applied")
	assert.Equal(t, []int{10}, movieIDs(s.Snapshot().Upcoming.Movies))
}

func TestSyncer_NewerRefreshWins(t *testing.T) {
	f := newFakeFetcher()
	f.setPage(domain.CatalogUpcoming, 1, 5, 1)
	f.setPage(domain.CatalogPopular, 1, 5, 2)

	s := startSyncer(t, f, nil, nil)
	s.Mount()
	eventually(t, s, func(st state.State) bool { return st.Popular.Page == 1 }, "mount")

	f.setPage(domain.CatalogPopular, 1, 5, 100)
	releaseOld := f.gate(domain.CatalogPopular, 1)
	s.Refresh(domain.CatalogPopular)
	require.Eventually(t, func() bool { return f.calls(domain.CatalogPopular, 1) == 2 }, waitFor, tick)

	f.setPage(domain.CatalogPopular, 1, 5, 200)
	s.Refresh(domain.CatalogPopular)
	eventually(t, s, func(st state.State) bool {
		return len(st.Popular.Movies) == 1 && st.Popular.Movies[0].ID == 200
	}, "newer refresh applied")

	releaseOld()
	require.Eventually(t, func() bool { return f.calls(domain.CatalogPopular, 1) == 3 }, waitFor, tick)
	// Give the stale completion time to reach the loop
	s.SelectTab(domain.CatalogUpcoming)
	eventually(t, s, func(st state.State) bool { return st.ActiveTab == domain.CatalogUpcoming }, "barrier")
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, []int{200}, movieIDs(s.Snapshot().Popular.Movies))
}

func TestSyncer_PageFailureKeepsItems(t *testing.T) {
	f := newFakeFetcher()
	f.setPage(domain.CatalogUpcoming, 1, 5, 1, 2)
	f.setPage(domain.CatalogPopular, 1, 5, 3)

	s := startSyncer(t, f, nil, nil)
	s.Mount()
	eventually(t, s, func(st state.State) bool { return st.Upcoming.Page == 1 }, "mount")

	f.mu.Lock()
	f.pageErr = domain.ErrNoConnectivity
	f.mu.Unlock()

	s.Refresh(domain.CatalogUpcoming)
	eventually(t, s, func(st state.State) bool { return st.Upcoming.Status.Error != "" }, "error recorded")

	st := s.Snapshot()
	assert.Equal(t, "No internet connection", st.Upcoming.Status.Error)
	assert.False(t, st.Upcoming.Status.IsLoading)
	assert.False(t, st.Upcoming.Status.IsRefreshing)
	assert.Equal(t, []int{1, 2}, movieIDs(st.Upcoming.Movies))
}

func TestSyncer_ToggleFavoritePersists(t *testing.T) {
	f := newFakeFetcher()
	f.setPage(domain.CatalogUpcoming, 1, 5, 7)
	f.setPage(domain.CatalogPopular, 1, 5, 7)
	favs := &fakeFavorites{}

	s := startSyncer(t, f, favs, nil)
	s.Mount()
	eventually(t, s, func(st state.State) bool { return st.Upcoming.Page == 1 && st.Popular.Page == 1 }, "mount")

	s.ToggleFavorite(domain.Movie{ID: 7, Title: "Movie"})
	eventually(t, s, func(st state.State) bool { return len(st.Favorites) == 1 }, "favorite added")

	st := s.Snapshot()
	assert.True(t, st.Upcoming.Movies[0].IsFavorite)
	assert.True(t, st.Popular.Movies[0].IsFavorite)
	assert.Empty(t, st.Details)

	require.Eventually(t, func() bool {
		saved, ok := favs.lastSaved()
		return ok && len(saved) == 1 && saved[0].ID == 7
	}, waitFor, tick)

	s.ToggleFavorite(domain.Movie{ID: 7, Title: "Movie"})
	eventually(t, s, func(st state.State) bool { return len(st.Favorites) == 0 }, "favorite removed")
	require.Eventually(t, func() bool {
		saved, ok := favs.lastSaved()
		return ok && len(saved) == 0
	}, waitFor, tick)
}

func TestSyncer_ToggleBeforeMountKeepsStoredFavorites(t *testing.T) {
	f := newFakeFetcher()
	favs := &fakeFavorites{initial: []domain.Movie{{ID: 1, Title: "Stored"}}}

	s := startSyncer(t, f, favs, nil)
	s.ToggleFavorite(domain.Movie{ID: 2, Title: "New"})
	s.Mount()

	eventually(t, s, func(st state.State) bool { return len(st.Favorites) == 2 }, "stored and toggled favorites")
	assert.Equal(t, []int{1, 2}, movieIDs(s.Snapshot().Favorites))

	require.Eventually(t, func() bool {
		saved, ok := favs.lastSaved()
		return ok && len(saved) == 2
	}, waitFor, tick)
	saved, _ := favs.lastSaved()
	assert.Equal(t, []int{1, 2}, movieIDs(saved))
}

func TestSyncer_PersistFailureIsSwallowed(t *testing.T) {
	favs := &fakeFavorites{saveErr: errors.New("disk full")}
	s := startSyncer(t, newFakeFetcher(), favs, nil)

	s.ToggleFavorite(domain.Movie{ID: 3})
	require.Eventually(t, func() bool {
		_, ok := favs.lastSaved()
		return ok
	}, waitFor, tick)

	assert.True(t, s.Snapshot().IsFavorite(3))
}

func TestSyncer_OpenDetails(t *testing.T) {
	f := newFakeFetcher()
	f.details[5] = domain.MovieDetails{Movie: domain.Movie{ID: 5, Title: "Five"}, Runtime: 95}
	favs := &fakeFavorites{initial: []domain.Movie{{ID: 5}}}

	s := startSyncer(t, f, favs, nil)
	s.Mount()
	s.OpenDetails(5)
	eventually(t, s, func(st state.State) bool { _, ok := st.Details[5]; return ok }, "details loaded")

	d := s.Snapshot().Details[5]
	assert.Equal(t, 95, d.Runtime)
	assert.True(t, d.IsFavorite)

	s.OpenDetails(5)
	s.SelectTab(domain.CatalogPopular)
	eventually(t, s, func(st state.State) bool { return st.ActiveTab == domain.CatalogPopular }, "barrier")
	assert.Equal(t, 1, f.detailCount(5))
}

func TestSyncer_OpenDetailsFailureDegrades(t *testing.T) {
	f := newFakeFetcher()
	s := startSyncer(t, f, nil, nil)

	s.OpenDetails(9)
	eventually(t, s, func(st state.State) bool { return st.DetailErrors[9] != "" }, "details error")

	st := s.Snapshot()
	assert.Equal(t, "Network error", st.DetailErrors[9])
	_, ok := st.Details[9]
	assert.False(t, ok)
	assert.False(t, st.DetailsPending[9])

	// Retry is allowed after a failure
	f.mu.Lock()
	f.details[9] = domain.MovieDetails{Movie: domain.Movie{ID: 9}}
	f.mu.Unlock()
	s.OpenDetails(9)
	eventually(t, s, func(st state.State) bool { _, ok := st.Details[9]; return ok }, "retry loaded")
	assert.Empty(t, s.Snapshot().DetailErrors[9])
}

func TestSyncer_ReachabilityMirrored(t *testing.T) {
	reach := network.NewStatic(true)
	s := startSyncer(t, newFakeFetcher(), nil, reach)
	assert.True(t, s.Snapshot().Online)

	reach.Set(false)
	eventually(t, s, func(st state.State) bool { return !st.Online }, "offline")
	reach.Set(true)
	eventually(t, s, func(st state.State) bool { return st.Online }, "online")
}

func TestSyncer_SubscribeReceivesSnapshots(t *testing.T) {
	s := startSyncer(t, newFakeFetcher(), nil, nil)
	updates, cancel := s.Subscribe()
	defer cancel()

	s.SelectTab(domain.CatalogPopular)
	select {
	case st := <-updates:
		assert.Equal(t, domain.CatalogPopular, st.ActiveTab)
	case <-time.After(waitFor):
		t.Fatal("no snapshot published")
	}
}

func TestSyncer_OfflineServesCachedPages(t *testing.T) {
	kv, err := store.Open("", "")
	require.NoError(t, err)
	defer kv.Close()

	entry := fetch.Entry[domain.MoviePage]{
		Data: domain.MoviePage{
			Page:       1,
			TotalPages: 2,
			Results:    []domain.Movie{{ID: 11, Title: "Cached"}},
		},
		Timestamp: time.Now().UnixMilli(),
	}
	raw, err := json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, kv.Set(fetch.PageKey(domain.CatalogUpcoming, 1), raw))

	reach := network.NewStatic(false)
	fetcher := fetch.NewFetcher(nil, kv, reach, quietLogger())
	s := startSyncer(t, fetcher, store.NewFavorites(kv), reach)
	s.Mount()

	eventually(t, s, func(st state.State) bool {
		return st.Upcoming.Page == 1 && st.Popular.Status.Error != ""
	}, "offline mount")

	st := s.Snapshot()
	assert.False(t, st.Online)
	assert.True(t, st.Upcoming.FromCache)
	assert.Equal(t, []int{11}, movieIDs(st.Upcoming.Movies))
	assert.Equal(t, "No internet connection", st.Popular.Status.Error)
	assert.Empty(t, st.Popular.Movies)
}

func TestSyncer_RunTwice(t *testing.T) {
	s := New(newFakeFetcher(), nil, nil, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))
	assert.ErrorIs(t, s.Run(context.Background()), ErrStopped)
}
