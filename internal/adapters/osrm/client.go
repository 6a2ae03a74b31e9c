package osrm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ai-fn/route-builder/internal/domain"
	"github.com/ai-fn/route-builder/internal/ports"
)

// Client implements ports.RoutingProvider against an OSRM-compatible HTTP
// service (table and route endpoints).
//
// It coordinates:
//   - Coordinate encoding at the (lon, lat) service boundary
//   - Optional persistent matrix caching
//   - External API calls with retry/backoff and client-side rate limiting
//
// The client is safe for concurrent use.
type Client struct {
	session *http.Client
	baseURL string
	profile string
	limiter *rate.Limiter
	cache   ports.MatrixCache
}

// Config carries the tunables for a Client. Zero values select defaults
// suited to the public OSRM demo server.
type Config struct {
	// BaseURL of the routing service. Defaults to the public OSRM instance.
	BaseURL string
	// Profile is the routing profile segment of the URL. Defaults to "driving".
	Profile string
	// Timeout bounds every HTTP round-trip. Defaults to 30s.
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls; the public demo server is
	// shared infrastructure. <= 0 disables throttling.
	RequestsPerSecond float64
	// Cache, when non-nil, is consulted before the table endpoint and
	// populated after it.
	Cache ports.MatrixCache
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}

	profile := cfg.Profile
	if profile == "" {
		profile = "driving"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		session: &http.Client{Timeout: timeout},
		baseURL: baseURL,
		profile: profile,
		limiter: limiter,
		cache:   cfg.Cache,
	}, nil
}

// coordPath encodes points as the semicolon-separated lon,lat path segment
// OSRM expects. This is one of the two places the axis order flips; the
// other is decodeGeometry.
func coordPath(points []domain.Coordinates) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, fmt.Sprintf("%.6f,%.6f", p.Lon, p.Lat))
	}
	return strings.Join(parts, ";")
}

func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(endpoint string, req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &ports.RoutingServiceError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429/5xx responses)
// using exponential backoff while respecting context cancellation. Attempts
// are strictly sequential, so at most one request is ever in flight.
func (c *Client) doWithRetry(ctx context.Context, endpoint string, url string) (*http.Response, error) {
	const maxAttempts = 4
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := c.newRequest(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(endpoint, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var se *ports.RoutingServiceError
		if errors.As(err, &se) {
			switch se.StatusCode {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	// Transport-level failures surface with the same taxonomy as HTTP
	// failures: the service was unreachable.
	var se *ports.RoutingServiceError
	if !errors.As(lastErr, &se) && lastErr != nil {
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return nil, lastErr
		}
		return nil, &ports.RoutingServiceError{Endpoint: endpoint, Body: lastErr.Error()}
	}

	return nil, lastErr
}
