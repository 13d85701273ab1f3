package fetch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/metrics"
)

// Result is a fetched value plus where it came from.
type Result[T any] struct {
	Data      T
	Source    Source
	FetchedAt time.Time
	Stale     bool
}

// FromCache reports whether the value was served from the cache.
func (r Result[T]) FromCache() bool {
	return r.Source == SourceCache
}

// Fetcher is the cache-aware fetch layer. It is the only writer of response
// cache entries.
type Fetcher struct {
	repo   domain.CatalogRepository
	cache  domain.KVStore
	reach  domain.Reachability
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewFetcher creates a fetcher over the remote repository and cache store.
func NewFetcher(repo domain.CatalogRepository, cache domain.KVStore, reach domain.Reachability, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		repo:   repo,
		cache:  cache,
		reach:  reach,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: logger,
	}
}

// WithTTL overrides the staleness threshold reported on results.
func (f *Fetcher) WithTTL(ttl time.Duration) *Fetcher {
	if ttl > 0 {
		f.ttl = ttl
	}
	return f
}

// FetchUpcoming returns one page of upcoming movies.
func (f *Fetcher) FetchUpcoming(ctx context.Context, page int) (Result[domain.MoviePage], error) {
	return f.FetchPage(ctx, domain.CatalogUpcoming, page)
}

// FetchPopular returns one page of popular movies.
func (f *Fetcher) FetchPopular(ctx context.Context, page int) (Result[domain.MoviePage], error) {
	return f.FetchPage(ctx, domain.CatalogPopular, page)
}

// FetchPage returns one page of the given catalog.
func (f *Fetcher) FetchPage(ctx context.Context, catalog domain.Catalog, page int) (Result[domain.MoviePage], error) {
	return fetchWithCache(ctx, f, string(catalog), PageKey(catalog, page), func(ctx context.Context) (domain.MoviePage, error) {
		p, err := f.repo.ListMovies(ctx, catalog, page)
		if err != nil {
			return domain.MoviePage{}, err
		}
		return *p, nil
	})
}

// FetchDetails returns the details for a movie.
func (f *Fetcher) FetchDetails(ctx context.Context, id int) (Result[domain.MovieDetails], error) {
	return fetchWithCache(ctx, f, "details", DetailsKey(id), func(ctx context.Context) (domain.MovieDetails, error) {
		d, err := f.repo.GetMovieDetails(ctx, id)
		if err != nil {
			return domain.MovieDetails{}, err
		}
		return *d, nil
	})
}

// fetchWithCache is the effectful shell around Resolve.
func fetchWithCache[T any](
	ctx context.Context,
	f *Fetcher,
	resource, key string,
	remote func(ctx context.Context) (T, error),
) (Result[T], error) {
	online := f.reach == nil || f.reach.Online()
	entry, hasCache := readEntry[T](f, key)

	var (
		fresh     T
		remoteErr error
	)
	if ShouldCallRemote(online) {
		start := time.Now()
		fresh, remoteErr = remote(ctx)
		metrics.RecordRemote(resource, remoteErr == nil, time.Since(start))
	}

	source, err := Resolve(online, hasCache, remoteErr)
	metrics.RecordFetch(resource, source.String())

	switch source {
	case SourceRemote:
		now := f.now()
		writeEntry(f, key, Entry[T]{Data: fresh, Timestamp: now.UnixMilli()})
		return Result[T]{Data: fresh, Source: SourceRemote, FetchedAt: now}, nil

	case SourceCache:
		stale := entry.Stale(f.now(), f.ttl)
		if remoteErr != nil {
			f.logger.Warn("remote fetch failed, serving cache", "key", key, "error", remoteErr, "stale", stale)
		} else {
			f.logger.Debug("offline, serving cache", "key", key, "stale", stale)
		}
		return Result[T]{Data: entry.Data, Source: SourceCache, FetchedAt: entry.FetchedAt(), Stale: stale}, nil

	default:
		f.logger.Debug("fetch failed", "key", key, "online", online, "error", err)
		return Result[T]{}, err
	}
}

// readEntry loads and decodes a cache entry. Read and parse failures are
// logged and treated as a miss.
func readEntry[T any](f *Fetcher, key string) (Entry[T], bool) {
	var entry Entry[T]
	if f.cache == nil {
		return entry, false
	}
	data, ok, err := f.cache.Get(key)
	if err != nil {
		metrics.RecordCacheError(string(domain.CacheRead))
		f.logger.Error("cache read failed", "error", &domain.CacheError{Op: domain.CacheRead, Key: key, Err: err})
		return entry, false
	}
	if !ok {
		return entry, false
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		metrics.RecordCacheError("parse")
		f.logger.Warn("discarding malformed cache entry", "key", key, "error", domain.ErrCorruptEntry, "cause", err)
		return Entry[T]{}, false
	}
	return entry, true
}

func writeEntry[T any](f *Fetcher, key string, entry Entry[T]) {
	if f.cache == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		f.logger.Error("failed to marshal cache entry", "key", key, "error", err)
		return
	}
	if err := f.cache.Set(key, data); err != nil {
		metrics.RecordCacheError(string(domain.CacheWrite))
		f.logger.Error("cache write failed", "error", &domain.CacheError{Op: domain.CacheWrite, Key: key, Err: err})
	}
}
