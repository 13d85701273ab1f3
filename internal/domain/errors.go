package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations
var (
	// ErrNoConnectivity indicates the device is offline and nothing is cached
	ErrNoConnectivity = errors.New("no internet connection and no cached data available")

	// ErrCorruptEntry indicates a cached payload could not be decoded
	ErrCorruptEntry = errors.New("cached entry is malformed")

	// ErrMissingAPIKey indicates the remote credential is not configured
	ErrMissingAPIKey = errors.New("api key is not configured")
)

// FetchError is a remote call failure with no cache fallback available.
// StatusCode is zero when the request never produced an HTTP response.
type FetchError struct {
	Message    string
	StatusCode int
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// CacheOp names the storage operation that failed.
type CacheOp string

const (
	CacheRead  CacheOp = "read"
	CacheWrite CacheOp = "write"
)

// CacheError is a persistent cache failure. It is logged, never shown to users.
type CacheError struct {
	Op  CacheOp
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// UserMessage converts an error into the text a collection shows next to its
// retry affordance.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNoConnectivity) {
		return "No internet connection"
	}
	var fe *FetchError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return err.Error()
}
