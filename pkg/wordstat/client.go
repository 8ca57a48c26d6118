// Package wordstat is the client for the upstream keyword statistics
// API. Every call passes through the outbound rate limiter before it
// reaches the network, and every failure maps to a typed error so
// callers can distinguish throttling from quota exhaustion from
// transport loss.
//
// The client performs no retries: failures propagate to the caller,
// Retry-After hints included as metadata.
package wordstat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wordscope/wordscope/pkg/metrics"
	"github.com/wordscope/wordscope/pkg/ratelimit"
	"github.com/wordscope/wordscope/pkg/regions"
)

const (
	regionsTreeEndpoint  = "regions/tree"
	distributionEndpoint = "search/regions"

	// maxErrorBody bounds how much of a failed response is retained
	// for diagnostics.
	maxErrorBody = 4 << 10
)

// Client issues JSON calls to the statistics API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter ratelimit.Limiter
	log     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger replaces the client logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a client for the API at baseURL. Every outbound call
// waits on limiter first.
func New(baseURL, token string, limiter ratelimit.Limiter, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegionsTree fetches the full region taxonomy and normalizes it into
// typed nodes.
func (c *Client) RegionsTree(ctx context.Context) ([]*regions.Node, error) {
	metrics.TreeFetchesTotal.Inc()

	var raw []rawRegion
	if err := c.call(ctx, regionsTreeEndpoint, nil, &raw); err != nil {
		return nil, err
	}
	return normalizeForest(raw)
}

// RegionalDistribution fetches the per-region distribution rows for a
// phrase. regionIDs and devices are optional upstream filters,
// forwarded opaquely.
func (c *Client) RegionalDistribution(ctx context.Context, phrase string, regionIDs []int64, devices []string) ([]RegionRow, error) {
	req := distributionRequest{Phrase: phrase, Regions: regionIDs, Devices: devices}

	var resp distributionResponse
	if err := c.call(ctx, distributionEndpoint, req, &resp); err != nil {
		return nil, err
	}

	rows := make([]RegionRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		rows = append(rows, RegionRow{
			RegionID:      r.RegionID,
			Count:         r.Count,
			Share:         r.Share,
			AffinityIndex: r.AffinityIndex,
		})
	}
	return rows, nil
}

// call performs one rate-limited POST exchange against endpoint and
// decodes the 2xx response into out. A nil body sends an empty JSON
// object.
func (c *Client) call(ctx context.Context, endpoint string, body, out any) error {
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	metrics.RateLimitWait.Observe(time.Since(waitStart).Seconds())

	payload := []byte("{}")
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("wordstat: encode %s request: %w", endpoint, err)
		}
	}

	url := c.baseURL + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("wordstat: build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RemoteRequestsTotal.WithLabelValues(endpoint, "transport").Inc()
		c.log.Error("wordstat request failed", "endpoint", endpoint, "error", err)
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	duration := time.Since(start)
	metrics.RemoteRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.RemoteRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	c.log.Debug("wordstat request", "endpoint", endpoint, "status", resp.StatusCode, "duration", duration)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitedError{RetryAfter: parseRetryAfter(resp.Header)}
	case resp.StatusCode == http.StatusServiceUnavailable:
		return &QuotaExceededError{Body: readErrorBody(resp.Body)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &RemoteError{Status: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("wordstat: decode %s response: %w", endpoint, err)
	}
	return nil
}

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}

// normalizeForest converts the wire tree into typed nodes, parsing the
// string ids once at the boundary.
func normalizeForest(raw []rawRegion) ([]*regions.Node, error) {
	out := make([]*regions.Node, 0, len(raw))
	for _, r := range raw {
		node, err := normalizeNode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func normalizeNode(r rawRegion) (*regions.Node, error) {
	id, err := strconv.ParseInt(r.Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("wordstat: malformed region id %q for %q: %w", r.Value, r.Label, err)
	}
	node := &regions.Node{ID: id, Label: r.Label}
	if len(r.Children) > 0 {
		children, err := normalizeForest(r.Children)
		if err != nil {
			return nil, err
		}
		node.Children = children
	}
	return node, nil
}
