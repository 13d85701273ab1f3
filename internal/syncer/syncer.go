// Package syncer is the synchronization core. It turns user intents into
// fetches and folds every outcome into application state through the reducer.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/fetch"
	"github.com/mmcdole/reel/internal/metrics"
	"github.com/mmcdole/reel/internal/state"
)

const inboxSize = 256

// Fetcher is the cache-aware fetch layer as seen by the core.
type Fetcher interface {
	FetchPage(ctx context.Context, catalog domain.Catalog, page int) (fetch.Result[domain.MoviePage], error)
	FetchDetails(ctx context.Context, id int) (fetch.Result[domain.MovieDetails], error)
}

var _ Fetcher = (*fetch.Fetcher)(nil)

// ErrStopped is returned by Run when called on a syncer that already ran.
var ErrStopped = errors.New("syncer already stopped")

// Syncer owns application state. Only the loop goroutine started by Run
// writes it; everyone else reads published snapshots.
type Syncer struct {
	fetcher   Fetcher
	favorites domain.FavoritesRepository
	reach     domain.Reachability
	logger    *slog.Logger

	inbox           chan any
	persist         chan []domain.Movie
	done            chan struct{}
	once            sync.Once
	favoritesLoaded bool // loop only

	mu       sync.RWMutex
	snapshot state.State

	subsMu sync.Mutex
	subs   map[chan state.State]struct{}
}

// New creates a syncer. reach may be nil, in which case the network is
// assumed reachable and never changes.
func New(fetcher Fetcher, favorites domain.FavoritesRepository, reach domain.Reachability, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	initial := state.New()
	if reach != nil {
		initial.Online = reach.Online()
	}
	return &Syncer{
		fetcher:   fetcher,
		favorites: favorites,
		reach:     reach,
		logger:    logger,
		inbox:     make(chan any, inboxSize),
		persist:   make(chan []domain.Movie, 1),
		done:      make(chan struct{}),
		snapshot:  initial,
		subs:      make(map[chan state.State]struct{}),
	}
}

// Run processes intents and completions until ctx is done. It blocks.
func (s *Syncer) Run(ctx context.Context) error {
	select {
	case <-s.done:
		return ErrStopped
	default:
	}
	defer s.once.Do(func() { close(s.done) })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.persistLoop(ctx)
	}()

	if s.reach != nil {
		updates, cancel := s.reach.Subscribe()
		defer cancel()
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.forwardReachability(ctx, updates)
		}()
	}

	cur := s.Snapshot()
	if s.reach != nil && s.reach.Online() != cur.Online {
		cur = s.apply(cur, state.NetworkChanged{Online: s.reach.Online()})
	}
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			s.flushPersist(context.WithoutCancel(ctx))
			return nil
		case msg := <-s.inbox:
			cur = s.handle(ctx, cur, msg)
		}
	}
}

// Snapshot returns the latest published state.
func (s *Syncer) Snapshot() state.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Subscribe returns a channel receiving every published snapshot. A slow
// subscriber only sees the most recent one. Call the returned func to stop.
func (s *Syncer) Subscribe() (<-chan state.State, func()) {
	ch := make(chan state.State, 1)
	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, ch)
			s.subsMu.Unlock()
		})
	}
}

// Intents. Each is a non-blocking enqueue onto the loop.

// Mount loads persisted favorites and requests page 1 of every empty
// collection.
func (s *Syncer) Mount() { s.send(mountIntent{}) }

// SelectTab switches the active tab without fetching.
func (s *Syncer) SelectTab(c domain.Catalog) { s.send(state.TabSelected{Catalog: c}) }

// Refresh re-requests page 1 of a collection, replacing it on success.
func (s *Syncer) Refresh(c domain.Catalog) { s.send(refreshIntent{catalog: c}) }

// LoadMore requests the next page of the active tab when there is one and
// nothing is already loading.
func (s *Syncer) LoadMore() { s.send(loadMoreIntent{}) }

// ToggleFavorite flips favorite membership of movie and persists the set.
func (s *Syncer) ToggleFavorite(movie domain.Movie) { s.send(toggleIntent{movie: movie}) }

// OpenDetails fetches details for id unless already loaded or in flight.
func (s *Syncer) OpenDetails(id int) { s.send(detailsIntent{id: id}) }

type (
	mountIntent    struct{}
	refreshIntent  struct{ catalog domain.Catalog }
	loadMoreIntent struct{}
	toggleIntent   struct{ movie domain.Movie }
	detailsIntent  struct{ id int }
)

// send enqueues msg unless the loop has stopped.
func (s *Syncer) send(msg any) {
	select {
	case s.inbox <- msg:
	case <-s.done:
	}
}

func (s *Syncer) handle(ctx context.Context, cur state.State, msg any) state.State {
	switch m := msg.(type) {
	case mountIntent:
		cur = s.ensureFavorites(ctx, cur)
		for _, c := range domain.Catalogs {
			if len(cur.Collection(c).Movies) == 0 && !cur.Collection(c).Status.IsLoading {
				cur = s.requestPage(ctx, cur, c, 1, false)
			}
		}
		return cur

	case refreshIntent:
		return s.requestPage(ctx, cur, m.catalog, 1, true)

	case loadMoreIntent:
		col := cur.Active()
		if !col.CanLoadMore() {
			return cur
		}
		return s.requestPage(ctx, cur, cur.ActiveTab, col.Page+1, false)

	case toggleIntent:
		cur = s.ensureFavorites(ctx, cur)
		cur = s.apply(cur, state.FavoriteToggled{Movie: m.movie})
		metrics.SetFavorites(len(cur.Favorites))
		s.queuePersist(cur.Favorites)
		return cur

	case detailsIntent:
		if _, ok := cur.Details[m.id]; ok || cur.DetailsPending[m.id] {
			return cur
		}
		cur = s.apply(cur, state.DetailsRequested{ID: m.id})
		s.fetchDetails(ctx, m.id)
		return cur

	case state.Event:
		return s.apply(cur, m)

	default:
		s.logger.Error("unknown syncer message", "type", fmt.Sprintf("%T", msg))
		return cur
	}
}

// apply reduces and publishes.
func (s *Syncer) apply(cur state.State, ev state.Event) state.State {
	next := state.Reduce(cur, ev)
	s.publish(next)
	return next
}

func (s *Syncer) publish(st state.State) {
	s.mu.Lock()
	s.snapshot = st
	s.mu.Unlock()

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

// post delivers a completion event back to the loop.
func (s *Syncer) post(ev state.Event) {
	s.send(ev)
}
