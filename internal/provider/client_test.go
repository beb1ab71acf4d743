package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-finder/internal/common/errors"
	"price-finder/internal/common/logger"
)

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *Client {
	return NewClient(&Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: timeout,
	}, logger.NewTestLogger(t))
}

// ==========================
// Request shape
// ==========================

func TestSearch_ShoppingAddsLocaleAndCurrency(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"shopping_results":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)
	resp, err := client.Search(context.Background(), EngineShopping, map[string]string{"q": "Sony WH-1000XM5"})

	require.NoError(t, err)
	assert.Contains(t, resp, "shopping_results")
	assert.Equal(t, "google_shopping", got.Get("engine"))
	assert.Equal(t, "Sony WH-1000XM5", got.Get("q"))
	assert.Equal(t, "en", got.Get("hl"))
	assert.Equal(t, "in", got.Get("gl"))
	assert.Equal(t, "INR", got.Get("currency"))
	assert.Equal(t, "test-key", got.Get("api_key"))
}

func TestSearch_VideoHasNoCurrency(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, time.Second).
		Search(context.Background(), EngineVideo, map[string]string{"search_query": "review"})

	require.NoError(t, err)
	assert.Equal(t, "youtube", got.Get("engine"))
	assert.Equal(t, "review", got.Get("search_query"))
	assert.Empty(t, got.Get("currency"))
}

func TestSearch_ParamsCannotOverrideFixedValues(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, time.Second).Search(context.Background(), EngineProductDetail, map[string]string{
		"engine":     "bing",
		"api_key":    "stolen",
		"gl":         "us",
		"page_token": "tok",
	})

	require.NoError(t, err)
	assert.Equal(t, "google_immersive_product", got.Get("engine"))
	assert.Equal(t, "test-key", got.Get("api_key"))
	assert.Equal(t, "in", got.Get("gl"))
	assert.Equal(t, "tok", got.Get("page_token"))
}

// ==========================
// Error classification
// ==========================

func TestSearch_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		timeout   time.Duration
		wantCode  errors.ErrorCode
		retryable bool
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			timeout:   time.Second,
			wantCode:  errors.ErrCodeProviderStatus,
			retryable: true,
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Invalid API key"}`))
			},
			timeout:   time.Second,
			wantCode:  errors.ErrCodeProviderStatus,
			retryable: false,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>not json</html>`))
			},
			timeout:   time.Second,
			wantCode:  errors.ErrCodeMalformedResponse,
			retryable: false,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(300 * time.Millisecond)
			},
			timeout:   50 * time.Millisecond,
			wantCode:  errors.ErrCodeProviderTimeout,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := newTestClient(t, server.URL, tt.timeout).
				Search(context.Background(), EngineShopping, map[string]string{"q": "x"})

			require.Error(t, err)
			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

func TestSearch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	_, err := newTestClient(t, addr, time.Second).Search(context.Background(), EngineVideo, nil)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeProviderUnavailable, errors.CodeOf(err))
}

func TestSearch_NoResultsErrorFieldIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Google hasn't returned any results for this query."}`))
	}))
	defer server.Close()

	resp, err := newTestClient(t, server.URL, time.Second).Search(context.Background(), EngineShopping, nil)

	require.NoError(t, err)
	assert.NotContains(t, resp, "shopping_results")
}

func TestSearch_SingleAttemptPerCall(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, time.Second).Search(context.Background(), EngineShopping, nil)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

// ==========================
// Throttling
// ==========================

func TestSearch_RetryAfterPausesLaterCalls(t *testing.T) {
	var hits int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 100*time.Millisecond)

	_, err := client.Search(context.Background(), EngineShopping, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeProviderStatus, errors.CodeOf(err))

	start := time.Now()
	_, err = client.Search(context.Background(), EngineShopping, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeProviderUnavailable, errors.CodeOf(err), "a local pause is not a provider timeout")
	assert.True(t, errors.IsRetryable(err))
	assert.Less(t, time.Since(start), time.Second)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, hits, "throttled call must not reach the provider")
}

func TestRateLimiter_Throttles(t *testing.T) {
	limiter := newRateLimiter(20, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestRateLimiter_SlotPastDeadlineIsThrottled(t *testing.T) {
	limiter := newRateLimiter(1, 1)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errThrottled)
	assert.NoError(t, ctx.Err(), "refused without waiting for the deadline")
}

func TestRateLimiter_CancelledContext(t *testing.T) {
	limiter := newRateLimiter(1, 1)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, errThrottled)
}

func TestRateLimiter_UnlimitedWhenRateNotPositive(t *testing.T) {
	limiter := newRateLimiter(0, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}
}
