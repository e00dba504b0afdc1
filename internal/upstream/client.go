package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Endpoints configures the three upstream feeds.
type Endpoints struct {
	ScheduleNow string `yaml:"schedule_now"`
	JukeboxNow  string `yaml:"jukebox_now"`
	Restream    string `yaml:"restream"`
}

// Client issues bounded, best-effort GETs against the upstream feeds.
//
// The upstreams are assumed unreliable. Every transport error, non-200 status
// and parse error collapses to "no data" at this boundary so a dead dependency
// degrades the answer instead of failing the request. Failures are logged at
// debug level for observability only; control flow never depends on them.
// No retries, no caching: each call is a fresh, independent attempt.
type Client struct {
	log  *zap.Logger
	http *http.Client
	eps  Endpoints
}

// NewClient wires the shared HTTP client. timeout bounds each individual
// upstream call; non-positive values fall back to the 10s default.
func NewClient(log *zap.Logger, eps Endpoints, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		log:  log.Named("upstream"),
		http: &http.Client{Timeout: timeout},
		eps:  eps,
	}
}

// fetch performs one GET and decodes the body into dst. Returns false on any
// failure; callers treat false as "upstream has nothing for us".
func (c *Client) fetch(ctx context.Context, url string, dst any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Debug("build request failed", zap.String("url", url), zap.Error(err))
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("fetch failed", zap.String("url", url), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Debug("unexpected status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return false
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		c.log.Debug("decode failed", zap.String("url", url), zap.Error(err))
		return false
	}
	return true
}
