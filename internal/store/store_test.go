package store

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), "https://api.themoviedb.org/3")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SetGetDelete(t *testing.T) {
	s := openTemp(t)

	_, ok, err := s.Get("upcoming_movies_1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("upcoming_movies_1", []byte(`{"a":1}`)))
	got, ok, err := s.Get("upcoming_movies_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, s.Set("upcoming_movies_1", []byte(`{"a":2}`)))
	got, _, _ = s.Get("upcoming_movies_1")
	assert.Equal(t, `{"a":2}`, string(got))

	require.NoError(t, s.Delete("upcoming_movies_1"))
	_, ok, err = s.Get("upcoming_movies_1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Delete("never_written"))
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Set("k", []byte("abc")))

	got, _, _ := s.Get("k")
	got[0] = 'z'

	again, _, _ := s.Get("k")
	assert.Equal(t, "abc", string(again))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, "")
	require.NoError(t, err)
	require.NoError(t, s.Set("movie_details_7", []byte("seven")))
	require.NoError(t, s.Close())

	s, err = Open(dir, "")
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.Get("movie_details_7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "seven", string(got))
}

func TestStore_ClearKeepsFavorites(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Set("popular_movies_1", []byte("p1")))
	require.NoError(t, s.Set("popular_movies_2", []byte("p2")))
	require.NoError(t, s.Set(FavoritesKey, []byte("[]")))

	keys, err := s.Keys("popular_movies_")
	require.NoError(t, err)
	assert.Equal(t, []string{"popular_movies_1", "popular_movies_2"}, keys)

	require.NoError(t, s.Clear())

	_, ok, _ := s.Get("popular_movies_1")
	assert.False(t, ok)
	_, ok, _ = s.Get(FavoritesKey)
	assert.True(t, ok)

	keys, err = s.Keys("popular_movies_")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStore_MemoryOnly(t *testing.T) {
	s, err := Open("", "")
	require.NoError(t, err)

	require.NoError(t, s.Set("k", []byte("v")))
	got, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(got))

	keys, err := s.Keys("k")
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)
}

func TestStore_MemoryOnlyKeysSorted(t *testing.T) {
	s, err := Open("", "")
	require.NoError(t, err)

	for _, k := range []string{"popular_movies_3", "popular_movies_1", "popular_movies_2", "upcoming_movies_1"} {
		require.NoError(t, s.Set(k, []byte("{}")))
	}
	require.NoError(t, s.Set(FavoritesKey, []byte("[]")))

	keys, err := s.Keys("popular_movies_")
	require.NoError(t, err)
	assert.Equal(t, []string{"popular_movies_1", "popular_movies_2", "popular_movies_3"}, keys)
}

func TestStore_FailedWriteIsNotServed(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Set(FavoritesKey, []byte(`[{"id":1}]`)))

	// Break the database underneath the store
	require.NoError(t, s.db.Close())

	assert.Error(t, s.Set(FavoritesKey, []byte(`[{"id":2}]`)))
	// The unsaved value must not be served from memory
	_, _, err := s.Get(FavoritesKey)
	assert.Error(t, err)
}

func TestStore_ClosedReturnsError(t *testing.T) {
	s, err := Open("", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.Get("k")
	assert.Error(t, err)
	assert.Error(t, s.Set("k", nil))
}

func TestFavorites_RoundTrip(t *testing.T) {
	s := openTemp(t)
	favs := NewFavorites(s)
	ctx := context.Background()

	got, err := favs.LoadFavorites(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := []domain.Movie{{ID: 7, Title: "Seven"}, {ID: 9, Title: "Nine"}}
	require.NoError(t, favs.SaveFavorites(ctx, want))

	got, err = favs.LoadFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 7, got[0].ID)
	assert.Equal(t, 9, got[1].ID)
	assert.True(t, got[0].IsFavorite)
	assert.True(t, got[1].IsFavorite)
}

func TestFavorites_CorruptPayload(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Set(FavoritesKey, []byte("{not json")))

	_, err := NewFavorites(s).LoadFavorites(context.Background())
	assert.True(t, errors.Is(err, domain.ErrCorruptEntry))
}

func TestFavorites_WriteFailureIsCacheError(t *testing.T) {
	s, err := Open("", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = NewFavorites(s).SaveFavorites(context.Background(), nil)
	var ce *domain.CacheError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CacheWrite, ce.Op)
}
