package wordstat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLimiter records admissions without ever blocking.
type countingLimiter struct {
	calls atomic.Int32
}

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.calls.Add(1)
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *countingLimiter, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	limiter := &countingLimiter{}
	return New(srv.URL, "test-token", limiter), limiter, srv
}

func TestClient_RegionsTree(t *testing.T) {
	var gotAuth, gotRequestID string
	client, limiter, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		assert.Equal(t, "/regions/tree", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"value": "225", "label": "Russia", "children": [
				{"value": "213", "label": "Moscow"}
			]},
			{"value": "149", "label": "Belarus"}
		]`))
	})

	forest, err := client.RegionsTree(context.Background())
	require.NoError(t, err)

	require.Len(t, forest, 2)
	assert.Equal(t, int64(225), forest[0].ID)
	assert.Equal(t, "Russia", forest[0].Label)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, int64(213), forest[0].Children[0].ID)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, int32(1), limiter.calls.Load(), "call must pass through the rate limiter")
}

func TestClient_RegionsTree_MalformedID(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"value": "not-a-number", "label": "Broken"}]`))
	})

	_, err := client.RegionsTree(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-number")
}

func TestClient_RegionalDistribution(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/regions", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "winter tires", req["phrase"])
		assert.Equal(t, []any{float64(225)}, req["regions"])
		assert.Equal(t, []any{"mobile"}, req["devices"])

		_, _ = w.Write([]byte(`{"rows": [
			{"region_id": 213, "count": 1200, "share": 0.4, "affinity_index": 1.3},
			{"region_id": 2, "count": 600, "share": 0.2, "affinity_index": 0.9}
		]}`))
	})

	rows, err := client.RegionalDistribution(context.Background(), "winter tires", []int64{225}, []string{"mobile"})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, int64(213), rows[0].RegionID)
	assert.Equal(t, int64(1200), rows[0].Count)
	assert.InDelta(t, 0.4, rows[0].Share, 1e-9)
	assert.InDelta(t, 1.3, rows[0].AffinityIndex, 1e-9)
	assert.Empty(t, rows[0].RegionName, "names are resolved by enrichment, not the client")
}

func TestClient_RateLimited(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.RegionsTree(context.Background())
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, 7*time.Second, RetryAfterHint(err))
}

func TestClient_RateLimited_NoHint(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.RegionsTree(context.Background())
	require.True(t, IsRateLimited(err))
	assert.Zero(t, RetryAfterHint(err))
}

func TestClient_QuotaExceeded(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "daily quota exhausted"}`))
	})

	_, err := client.RegionalDistribution(context.Background(), "phrase", nil, nil)
	require.Error(t, err)
	assert.True(t, IsQuotaExceeded(err))
	assert.False(t, IsRateLimited(err))
}

func TestClient_RemoteError(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "phrase too long"}`))
	})

	_, err := client.RegionalDistribution(context.Background(), "phrase", nil, nil)
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadRequest, remoteErr.Status)
	assert.Contains(t, remoteErr.Body, "phrase too long")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := New(srv.URL, "", &countingLimiter{})
	srv.Close() // nothing listens anymore

	_, err := client.RegionsTree(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsRateLimited(err))
}

func TestParseRetryAfter(t *testing.T) {
	h := http.Header{}
	assert.Zero(t, parseRetryAfter(h))

	h.Set("Retry-After", "12")
	assert.Equal(t, 12*time.Second, parseRetryAfter(h))

	h.Set("Retry-After", "garbage")
	assert.Zero(t, parseRetryAfter(h))

	h.Set("Retry-After", time.Now().Add(30*time.Second).UTC().Format(http.TimeFormat))
	got := parseRetryAfter(h)
	assert.Greater(t, got, 20*time.Second)
	assert.LessOrEqual(t, got, 30*time.Second)
}
