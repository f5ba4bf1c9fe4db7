package yandex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/order-assistant/internal/tts"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func iamServer(t *testing.T, calls *atomic.Int32, handler func(w http.ResponseWriter, n int32)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "oauth-secret", body["yandexPassportOauthToken"])
		handler(w, calls.Add(1))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCredentialCache_ReusesUntilExpiry(t *testing.T) {
	clk := &clock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	var calls atomic.Int32
	srv := iamServer(t, &calls, func(w http.ResponseWriter, n int32) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"iamToken":  "t" + string(rune('0'+n)),
			"expiresAt": "2025-01-01T12:00:00.123456789Z",
		})
	})

	c := NewCredentialCache(Config{OAuthToken: "oauth-secret", IAMURL: srv.URL}, WithClock(clk.Now))
	ctx := context.Background()

	tok, err := c.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", tok)

	clk.Advance(time.Hour)
	tok, err = c.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", tok)
	assert.EqualValues(t, 1, calls.Load())

	// exactly at expiry the token is no longer valid
	clk.Advance(time.Hour + 123456789*time.Nanosecond)
	tok, err = c.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t2", tok)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCredentialCache_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	srv := iamServer(t, &calls, func(w http.ResponseWriter, _ int32) {
		<-release
		_ = json.NewEncoder(w).Encode(map[string]string{
			"iamToken":  "shared",
			"expiresAt": time.Now().Add(time.Hour).UTC().Format(time.RFC3339Nano),
		})
	})

	c := NewCredentialCache(Config{OAuthToken: "oauth-secret", IAMURL: srv.URL})

	const workers = 8
	var wg sync.WaitGroup
	results := make([]string, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := c.Token(context.Background())
			assert.NoError(t, err)
			results[i] = tok
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
}

func TestCredentialCache_Rejected(t *testing.T) {
	var calls atomic.Int32
	srv := iamServer(t, &calls, func(w http.ResponseWriter, _ int32) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":16,"message":"OAuth token is invalid or expired"}`))
	})

	c := NewCredentialCache(Config{OAuthToken: "oauth-secret", IAMURL: srv.URL})
	_, err := c.Token(context.Background())
	require.ErrorIs(t, err, tts.ErrCredentialRejected)

	var se *tts.SynthesisError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "16", se.Code)
	assert.False(t, se.Retryable)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCredentialCache_HTTPError(t *testing.T) {
	var calls atomic.Int32
	srv := iamServer(t, &calls, func(w http.ResponseWriter, _ int32) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := NewCredentialCache(Config{OAuthToken: "oauth-secret", IAMURL: srv.URL}).Token(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, tts.ErrCredentialRejected)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "upstream down")
}

func TestCredentialCache_SchemaMismatch(t *testing.T) {
	var calls atomic.Int32
	srv := iamServer(t, &calls, func(w http.ResponseWriter, _ int32) {
		_, _ = w.Write([]byte(`{"expiresAt":"2025-01-01T12:00:00Z"}`))
	})

	_, err := NewCredentialCache(Config{OAuthToken: "oauth-secret", IAMURL: srv.URL}).Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestCredentialCache_FallbackTTL(t *testing.T) {
	clk := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	var calls atomic.Int32
	srv := iamServer(t, &calls, func(w http.ResponseWriter, _ int32) {
		_, _ = w.Write([]byte(`{"iamToken":"tok","expiresAt":"tomorrow-ish"}`))
	})

	c := NewCredentialCache(Config{OAuthToken: "oauth-secret", IAMURL: srv.URL, TokenFallbackTTL: 2 * time.Hour}, WithClock(clk.Now))
	_, err := c.Token(context.Background())
	require.NoError(t, err)

	clk.Advance(119 * time.Minute)
	_, _ = c.Token(context.Background())
	assert.EqualValues(t, 1, calls.Load())

	clk.Advance(time.Minute)
	_, _ = c.Token(context.Background())
	assert.EqualValues(t, 2, calls.Load())
}

func TestCredentialCache_ExpiredOnArrival(t *testing.T) {
	clk := &clock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	var calls atomic.Int32
	srv := iamServer(t, &calls, func(w http.ResponseWriter, _ int32) {
		_, _ = w.Write([]byte(`{"iamToken":"stale","expiresAt":"2025-01-01T09:00:00Z"}`))
	})

	c := NewCredentialCache(Config{OAuthToken: "oauth-secret", IAMURL: srv.URL}, WithClock(clk.Now))
	tok, err := c.Token(context.Background())
	require.Error(t, err)
	assert.Empty(t, tok)
	assert.ErrorIs(t, err, tts.ErrSynthesisFailed)

	// nothing was cached, so the next call exchanges again
	_, err = c.Token(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCredentialCache_Invalidate(t *testing.T) {
	var calls atomic.Int32
	srv := iamServer(t, &calls, func(w http.ResponseWriter, _ int32) {
		_, _ = w.Write([]byte(`{"iamToken":"tok","expiresAt":"2999-01-01T00:00:00Z"}`))
	})

	c := NewCredentialCache(Config{OAuthToken: "oauth-secret", IAMURL: srv.URL})
	_, err := c.Token(context.Background())
	require.NoError(t, err)
	c.Invalidate()
	_, err = c.Token(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestParseExpiresAt(t *testing.T) {
	want := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	got, ok := ParseExpiresAt("2025-01-01T12:00:00.123456789Z")
	require.True(t, ok)
	assert.Equal(t, want.Add(123456789), got)

	got, ok = ParseExpiresAt("2025-01-01T12:00:00")
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = ParseExpiresAt("")
	assert.False(t, ok)
	_, ok = ParseExpiresAt("garbage")
	assert.False(t, ok)
}
