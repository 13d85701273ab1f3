package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mmcdole/reel/internal/domain"
)

// FavoritesKey is the fixed key the favorites set is stored under.
const FavoritesKey = "favorites"

// Favorites persists the favorites set as a JSON array in a KVStore.
type Favorites struct {
	kv domain.KVStore
}

var _ domain.FavoritesRepository = (*Favorites)(nil)

func NewFavorites(kv domain.KVStore) *Favorites {
	return &Favorites{kv: kv}
}

// LoadFavorites returns the persisted set, or nil when nothing was saved yet.
func (f *Favorites) LoadFavorites(ctx context.Context) ([]domain.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok, err := f.kv.Get(FavoritesKey)
	if err != nil {
		return nil, &domain.CacheError{Op: domain.CacheRead, Key: FavoritesKey, Err: err}
	}
	if !ok {
		return nil, nil
	}
	var favs []domain.Movie
	if err := json.Unmarshal(data, &favs); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptEntry, err)
	}
	for i := range favs {
		favs[i].IsFavorite = true
	}
	return favs, nil
}

// SaveFavorites overwrites the persisted set.
func (f *Favorites) SaveFavorites(ctx context.Context, favorites []domain.Movie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if favorites == nil {
		favorites = []domain.Movie{}
	}
	data, err := json.Marshal(favorites)
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}
	if err := f.kv.Set(FavoritesKey, data); err != nil {
		return &domain.CacheError{Op: domain.CacheWrite, Key: FavoritesKey, Err: err}
	}
	return nil
}
