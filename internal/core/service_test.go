package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/feedmap/internal/mapping"
)

// testSource serves body from an httptest server and counts requests.
type testSource struct {
	srv  *httptest.Server
	hits atomic.Int32
	body atomic.Value
}

func newTestSource(t *testing.T, body string) *testSource {
	t.Helper()
	ts := &testSource{}
	ts.body.Store(body)
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(ts.body.Load().(string)))
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testSource) source() Source {
	return Source{URL: ts.srv.URL}
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	svc, err := NewService(Options{
		Store:   store,
		Fetcher: NewFetcher(2*time.Second, 1<<20, "feedmap-test"),
		Limiter: NewFetchLimiter(2, time.Second),
	})
	require.NoError(t, err)
	return svc
}

func TestNewService_RequiresStoreAndFetcher(t *testing.T) {
	_, err := NewService(Options{Fetcher: NewFetcher(time.Second, 0, "")})
	assert.Error(t, err)
	_, err = NewService(Options{Store: newMemStore()})
	assert.Error(t, err)
}

func TestFetchSample_UsesCache(t *testing.T) {
	src := newTestSource(t, `{"a":1}`)
	svc := newTestService(t, newMemStore())
	ctx := context.Background()

	first, err := svc.FetchSample(ctx, src.source(), true)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, map[string]any{"a": float64(1)}, first.Document)

	second, err := svc.FetchSample(ctx, src.source(), true)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, int32(1), src.hits.Load())

	src.body.Store(`{"a":2}`)
	fresh, err := svc.FetchSample(ctx, src.source(), false)
	require.NoError(t, err)
	assert.False(t, fresh.Cached)
	assert.Equal(t, map[string]any{"a": float64(2)}, fresh.Document)
	assert.Equal(t, int32(2), src.hits.Load())
}

func TestFetchSample_Unparsable(t *testing.T) {
	src := newTestSource(t, `<html>`)
	svc := newTestService(t, newMemStore())

	_, err := svc.FetchSample(context.Background(), src.source(), true)
	assert.ErrorIs(t, err, mapping.ErrUnparsableDocument)
}

func TestFetchSample_InvalidSource(t *testing.T) {
	svc := newTestService(t, newMemStore())
	_, err := svc.FetchSample(context.Background(), Source{URL: "not a url"}, true)
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestMemorySampleCache_Expiry(t *testing.T) {
	c := NewMemorySampleCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	body, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), body)

	now = now.Add(time.Minute)
	_, found, _ = c.Get(ctx, "k")
	assert.False(t, found)
}

func TestSampleKey(t *testing.T) {
	a := Source{URL: "https://h/x", Headers: map[string]string{"A": "1", "B": "2"}}
	b := Source{URL: "https://h/x", Method: "get", Headers: map[string]string{"B": "2", "A": "1"}}
	assert.Equal(t, SampleKey(a), SampleKey(b))

	c := a
	c.AuthType, c.AuthToken = AuthBearer, "other"
	assert.NotEqual(t, SampleKey(a), SampleKey(c))
	assert.Contains(t, SampleKey(a), sampleKeyPrefix)
}
