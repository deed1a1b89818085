// Package replica mirrors world snapshots from an authoritative host.
package replica

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/forecaster-text/internal/world"
)

// HostClient fetches snapshots from a host instance's HTTP API.
type HostClient struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// Option customises a HostClient.
type Option func(*HostClient)

// WithBackoff overrides the retry policy.
func WithBackoff(b BackoffConfig) Option {
	return func(c *HostClient) { c.httpCfg.Backoff = b }
}

// WithRateLimit allows rps requests per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HostClient) {
		if rps > 0 && burst > 0 {
			c.httpCfg.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewHostClient creates a client for the host at baseURL.
func NewHostClient(client *http.Client, baseURL string, opts ...Option) *HostClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "forecast-host",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	c := &HostClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the client in logs.
func (c *HostClient) Name() string {
	return "host " + c.baseURL
}

// FetchSnapshot returns the host's latest snapshot for worldID.
func (c *HostClient) FetchSnapshot(ctx context.Context, worldID string) (world.Snapshot, error) {
	if c.baseURL == "" {
		return world.Snapshot{}, fmt.Errorf("host url is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		u := fmt.Sprintf("%s/api/v1/worlds/%s/snapshot", c.baseURL, url.PathEscape(worldID))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return world.Snapshot{}, fmt.Errorf("fetch snapshot %s: %w", worldID, err)
	}
	defer resp.Body.Close()

	var snap world.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return world.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", worldID, err)
	}
	return snap, nil
}
