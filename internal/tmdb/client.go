package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultRPS      = 20
	defaultRetries  = 3
	baseRetryDelay  = 500 * time.Millisecond
	maxErrorBodyLen = 512
)

// Options configures a Client. Zero values select defaults; a negative
// MaxRetries disables retries.
type Options struct {
	Timeout    time.Duration
	RPS        float64
	MaxRetries int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements domain.CatalogRepository against the TMDB v3 API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	logger     *slog.Logger
}

var _ domain.CatalogRepository = (*Client)(nil)

// NewClient creates a new TMDB API client
func NewClient(baseURL, apiKey string, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RPS <= 0 {
		opts.RPS = defaultRPS
	}
	switch {
	case opts.MaxRetries == 0:
		opts.MaxRetries = defaultRetries
	case opts.MaxRetries < 0:
		opts.MaxRetries = 0 // retries disabled
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RPS), 1),
		maxRetries: opts.MaxRetries,
		logger:     opts.Logger,
	}
}

// ListMovies returns one page of the upcoming or popular listing
func (c *Client) ListMovies(ctx context.Context, catalog domain.Catalog, page int) (*domain.MoviePage, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, listPath(catalog), query)
	if err != nil {
		return nil, err
	}

	var resp movieListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.FetchError{Message: fmt.Sprintf("failed to parse response: %v", err)}
	}
	return mapMoviePage(resp), nil
}

// GetMovieDetails returns the full record for a single movie
func (c *Client) GetMovieDetails(ctx context.Context, id int) (*domain.MovieDetails, error) {
	body, err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var resp movieDetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.FetchError{Message: fmt.Sprintf("failed to parse response: %v", err)}
	}
	return mapMovieDetails(resp), nil
}

func listPath(catalog domain.Catalog) string {
	if catalog == domain.CatalogPopular {
		return "/movie/popular"
	}
	return "/movie/upcoming"
}

// doRequest performs an authenticated GET against the API.
// 429 and 5xx responses are retried with exponential backoff; every failure is
// returned as a *domain.FetchError (or the context error on cancellation).
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "path", path)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		c.logger.Debug("tmdb request", "path", path, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
			}
			c.logger.Error("tmdb request failed", "error", err, "path", path)
			return nil, &domain.FetchError{Message: "Network error"}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, &domain.FetchError{Message: fmt.Sprintf("failed to read response: %v", err), StatusCode: resp.StatusCode}
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = apiError(resp.StatusCode, body)
			c.logger.Warn("tmdb server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", c.maxRetries,
				"path", path,
			)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			c.logger.Error("tmdb request error", "status", resp.StatusCode, "path", path)
			return nil, apiError(resp.StatusCode, body)
		}

		return body, nil
	}

	c.logger.Error("tmdb request failed after retries", "error", lastErr, "path", path)
	return nil, lastErr
}

// apiError builds a FetchError from an error body, preferring the API's own
// status_message.
func apiError(status int, body []byte) *domain.FetchError {
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.StatusMessage != "" {
		return &domain.FetchError{Message: payload.StatusMessage, StatusCode: status}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBodyLen {
		msg = msg[:maxErrorBodyLen]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &domain.FetchError{Message: msg, StatusCode: status}
}
