package network

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/reel/internal/domain"
)

const (
	defaultProbeInterval = 15 * time.Second
	probeTimeout         = 5 * time.Second
)

// Prober derives reachability by periodically requesting a URL. Any HTTP
// response counts as online; only transport failures count as offline.
type Prober struct {
	*signal
	url      string
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger
}

var _ domain.Reachability = (*Prober)(nil)

// NewProber creates a prober. It assumes online until the first probe says
// otherwise.
func NewProber(url string, interval time.Duration, logger *slog.Logger) *Prober {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		signal:   newSignal(true),
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: probeTimeout},
		logger:   logger,
	}
}

// Start launches the probe loop in a background goroutine. It returns
// immediately; the loop stops when ctx is done.
func (p *Prober) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			p.Probe(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Probe performs a single check and updates the signal.
func (p *Prober) Probe(ctx context.Context) bool {
	online := p.check(ctx)
	if ctx.Err() != nil {
		return p.Online()
	}
	if p.set(online) {
		p.logger.Info("reachability changed", "online", online)
	}
	return online
}

func (p *Prober) check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		p.logger.Error("invalid probe url", "url", p.url, "error", err)
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("probe failed", "error", err)
		return false
	}
	resp.Body.Close()
	return true
}
