package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// errThrottled means the limiter refused the call without sending it because
// the next permitted slot lies beyond the caller's deadline.
var errThrottled = errors.New("provider throttled")

// rateLimiter throttles outbound provider calls with a token bucket and
// honours a Retry-After pause recorded from a 429 response.
type rateLimiter struct {
	mu      sync.Mutex
	bucket  *rate.Limiter
	retryAt time.Time
}

func newRateLimiter(requestsPerSecond float64, burst int) *rateLimiter {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{bucket: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a call may be issued or ctx ends. It returns an error
// wrapping errThrottled, without waiting, when the next slot is past the
// deadline of ctx.
func (r *rateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if pause := time.Until(retryAt); pause > 0 {
		if deadline, ok := ctx.Deadline(); ok && retryAt.After(deadline) {
			return fmt.Errorf("%w: retry after %s", errThrottled, retryAt.UTC().Format(time.RFC3339))
		}
		timer := time.NewTimer(pause)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := r.bucket.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", errThrottled, err)
	}
	return nil
}

// recordThrottled pauses the limiter according to the Retry-After header,
// defaulting to 30 seconds.
func (r *rateLimiter) recordThrottled(header http.Header) {
	seconds := 30
	if v := header.Get("Retry-After"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			seconds = n
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(time.Duration(seconds) * time.Second)
}
