package syncer

import (
	"context"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/metrics"
	"github.com/mmcdole/reel/internal/state"
)

const persistTimeout = 5 * time.Second

// requestPage marks the page request in state and starts the fetch stamped
// with the collection's new generation.
func (s *Syncer) requestPage(ctx context.Context, cur state.State, c domain.Catalog, page int, refresh bool) state.State {
	cur = s.apply(cur, state.PageRequested{Catalog: c, Page: page, Refresh: refresh})
	gen := cur.Collection(c).Generation

	s.logger.Debug("requesting page", "catalog", c, "page", page, "refresh", refresh, "generation", gen)
	go func() {
		res, err := s.fetcher.FetchPage(ctx, c, page)
		if err != nil {
			s.logger.Warn("page fetch failed", "catalog", c, "page", page, "error", err)
			s.post(state.PageFailed{Catalog: c, Generation: gen, Err: domain.UserMessage(err)})
			return
		}
		s.post(state.PageSucceeded{Catalog: c, Generation: gen, Result: res.Data, FromCache: res.FromCache()})
	}()
	return cur
}

func (s *Syncer) fetchDetails(ctx context.Context, id int) {
	go func() {
		res, err := s.fetcher.FetchDetails(ctx, id)
		if err != nil {
			s.logger.Warn("details fetch failed", "id", id, "error", err)
			s.post(state.DetailsFailed{ID: id, Err: domain.UserMessage(err)})
			return
		}
		s.post(state.DetailsSucceeded{Details: res.Data})
	}()
}

// ensureFavorites loads the persisted set the first time Mount or a toggle
// reaches the loop, so a toggle is never applied to, and persisted over, a
// set that has not been read yet.
func (s *Syncer) ensureFavorites(ctx context.Context, cur state.State) state.State {
	if s.favoritesLoaded {
		return cur
	}
	s.favoritesLoaded = true
	return s.loadFavorites(ctx, cur)
}

func (s *Syncer) loadFavorites(ctx context.Context, cur state.State) state.State {
	if s.favorites == nil {
		return cur
	}
	favs, err := s.favorites.LoadFavorites(ctx)
	if err != nil {
		s.logger.Error("failed to load favorites", "error", err)
		return cur
	}
	if favs == nil {
		return cur
	}
	cur = s.apply(cur, state.FavoritesLoaded{Favorites: favs})
	metrics.SetFavorites(len(cur.Favorites))
	return cur
}

// queuePersist hands the latest favorites set to the persister. Only the
// newest pending set is kept.
func (s *Syncer) queuePersist(favs []domain.Movie) {
	if s.favorites == nil {
		return
	}
	select {
	case <-s.persist:
	default:
	}
	s.persist <- favs
}

func (s *Syncer) persistLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case favs := <-s.persist:
			s.save(ctx, favs)
		}
	}
}

// flushPersist writes a set still pending at shutdown.
func (s *Syncer) flushPersist(ctx context.Context) {
	select {
	case favs := <-s.persist:
		s.save(ctx, favs)
	default:
	}
}

// save writes favorites. Failures are logged; the in-memory set stays
// authoritative for the session.
func (s *Syncer) save(ctx context.Context, favs []domain.Movie) {
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	if err := s.favorites.SaveFavorites(ctx, favs); err != nil {
		s.logger.Error("failed to persist favorites", "count", len(favs), "error", err)
		return
	}
	s.logger.Debug("persisted favorites", "count", len(favs))
}

func (s *Syncer) forwardReachability(ctx context.Context, updates <-chan bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case online := <-updates:
			select {
			case s.inbox <- state.NetworkChanged{Online: online}:
			case <-ctx.Done():
				return
			}
		}
	}
}
