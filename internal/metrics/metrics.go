// Package metrics provides Prometheus metrics for the catalog fetch path.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reel_fetch_results_total",
			Help: "Fetch layer outcomes by resource and source",
		},
		[]string{"resource", "source"},
	)

	remoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reel_remote_request_duration_seconds",
			Help:    "Remote catalog request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "status"},
	)

	cacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reel_cache_errors_total",
			Help: "Persistent cache failures by operation",
		},
		[]string{"op"},
	)

	favoritesCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reel_favorites",
			Help: "Number of movies in the favorites set",
		},
	)
)

// RecordFetch counts one fetch outcome. source is "remote", "cache" or "error".
func RecordFetch(resource, source string) {
	fetchResultsTotal.WithLabelValues(resource, source).Inc()
}

// RecordRemote observes the latency of one remote call.
func RecordRemote(resource string, ok bool, d time.Duration) {
	status := "ok"
	if !ok {
		status = "error"
	}
	remoteRequestDuration.WithLabelValues(resource, status).Observe(d.Seconds())
}

// RecordCacheError counts a cache read or write failure.
func RecordCacheError(op string) {
	cacheErrorsTotal.WithLabelValues(op).Inc()
}

// SetFavorites records the current favorites count.
func SetFavorites(n int) {
	favoritesCount.Set(float64(n))
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
