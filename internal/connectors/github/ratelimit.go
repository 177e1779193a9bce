package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// SearchRateLimit is the authenticated code search limit per minute.
	SearchRateLimit = 10

	// ProactiveRate keeps requests just under SearchRateLimit (per second).
	ProactiveRate = float64(SearchRateLimit) / 60

	// ProactiveBurst allows a short burst of interactive searches.
	ProactiveBurst = 3

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter combines a token bucket with the quota GitHub reports in headers.
// Unlike a sync job, a search cannot wait for a reset minutes away, so an
// exhausted quota fails fast with RateLimitError.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	limit     int
	resetTime time.Time
	bucket    *rate.Limiter
	now       func() time.Time
}

// NewRateLimiter creates a limiter with the default search throttle.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithRate(rate.Limit(ProactiveRate), ProactiveBurst)
}

// NewRateLimiterWithRate creates a limiter with a custom token bucket.
func NewRateLimiterWithRate(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		remaining: SearchRateLimit,
		limit:     SearchRateLimit,
		bucket:    rate.NewLimiter(r, burst),
		now:       time.Now,
	}
}

// Wait blocks for a bucket token, or fails immediately if the reported quota
// is exhausted until a future reset.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	remaining, limit, reset := r.remaining, r.limit, r.resetTime
	r.mu.Unlock()

	if remaining <= 0 && r.now().Before(reset) {
		return &RateLimitError{ResetAt: reset, Remaining: remaining, Limit: limit}
	}
	return r.bucket.Wait(ctx)
}

// UpdateFromResponse updates rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
		}
	}
	if limit := resp.Header.Get(HeaderRateLimit); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			r.limit = val
		}
	}
	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.resetTime = time.Unix(val, 0)
		}
	}
	if retryAfter := resp.Header.Get(HeaderRetryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			r.remaining = 0
			r.resetTime = r.now().Add(time.Duration(seconds) * time.Second)
		}
	}
}

// Remaining returns the current remaining requests.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the rate limit.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// ResetTime returns the rate limit reset time.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}
