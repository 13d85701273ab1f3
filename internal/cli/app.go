package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/fetch"
	"github.com/mmcdole/reel/internal/logging"
	"github.com/mmcdole/reel/internal/metrics"
	"github.com/mmcdole/reel/internal/network"
	"github.com/mmcdole/reel/internal/store"
	"github.com/mmcdole/reel/internal/tmdb"
)

// app holds the components shared by every command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	logs    io.Closer
	store   *store.Store
	reach   domain.Reachability
	prober  *network.Prober // nil when --offline
	fetcher *fetch.Fetcher
}

// newApp loads configuration and opens the cache. requireAPI rejects a
// configuration without an API key.
func newApp(requireAPI bool) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if requireAPI && !offline {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, logs, err := logging.Setup(cfg.Logging)
	if err != nil {
		// Fall back to a discarding logger if file logging fails
		logger, logs, _ = logging.Setup(config.LoggingConfig{})
	}

	st, err := store.Open(cfg.Cache.Dir, cfg.API.BaseURL)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, logs: logs, store: st}
	if offline {
		a.reach = network.NewStatic(false)
	} else {
		a.prober = network.NewProber(cfg.Network.ProbeURL, cfg.Network.ProbeInterval, logger)
		a.reach = a.prober
	}

	client := tmdb.NewClient(cfg.API.BaseURL, cfg.API.Key, tmdb.Options{
		Timeout:    cfg.API.Timeout,
		RPS:        cfg.API.RateLimit,
		MaxRetries: cfg.API.MaxRetries,
		Logger:     logger,
	})
	a.fetcher = fetch.NewFetcher(client, st, a.reach, logger).WithTTL(cfg.Cache.TTL)
	return a, nil
}

// probeOnce refreshes reachability before a one-shot fetch.
func (a *app) probeOnce(ctx context.Context) {
	if a.prober != nil {
		a.prober.Probe(ctx)
	}
}

func (a *app) Close() error {
	err := a.store.Close()
	if cerr := a.logs.Close(); err == nil {
		err = cerr
	}
	return err
}

// serveMetrics exposes /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
