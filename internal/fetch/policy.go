package fetch

import (
	"errors"
	"time"

	"github.com/mmcdole/reel/internal/domain"
)

// DefaultTTL is how long a cache entry counts as fresh. Staleness is reported
// but does not gate the online path: when reachable the remote is always
// called and the cache is only a fallback.
const DefaultTTL = 5 * time.Minute

// Source says where a fetch result came from.
type Source int

const (
	SourceNone Source = iota
	SourceRemote
	SourceCache
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceCache:
		return "cache"
	default:
		return "error"
	}
}

// Entry is the persisted envelope around a cached payload.
// Timestamp is wall-clock milliseconds since the epoch.
type Entry[T any] struct {
	Data      T     `json:"data"`
	Timestamp int64 `json:"timestamp"`
}

// FetchedAt returns the entry's write time.
func (e Entry[T]) FetchedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Stale reports whether the entry is older than ttl at now.
func (e Entry[T]) Stale(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt()) >= ttl
}

// ShouldCallRemote reports whether the remote is attempted at all.
func ShouldCallRemote(online bool) bool {
	return online
}

// Resolve decides the outcome of a fetch from reachability, whether a cache
// entry exists and the remote error (nil on success; ignored when offline).
// It returns the source to serve from, or the error to surface.
func Resolve(online, hasCache bool, remoteErr error) (Source, error) {
	if !online {
		if hasCache {
			return SourceCache, nil
		}
		return SourceNone, domain.ErrNoConnectivity
	}
	if remoteErr == nil {
		return SourceRemote, nil
	}
	if hasCache {
		return SourceCache, nil
	}
	return SourceNone, asFetchError(remoteErr)
}

// asFetchError keeps typed remote errors and wraps anything else so callers
// only ever see the two user-facing kinds.
func asFetchError(err error) error {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &domain.FetchError{Message: err.Error()}
}
