package github

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	r := NewRateLimiter()
	reset := time.Now().Add(time.Minute).Truncate(time.Second)
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "4")
	resp.Header.Set(HeaderRateLimit, "30")
	resp.Header.Set(HeaderRateReset, strconv.FormatInt(reset.Unix(), 10))

	r.UpdateFromResponse(resp)
	r.UpdateFromResponse(nil)

	assert.Equal(t, 4, r.Remaining())
	assert.Equal(t, 30, r.Limit())
	assert.True(t, reset.Equal(r.ResetTime()))
}

func TestRateLimiter_RetryAfterExhaustsQuota(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRateLimiterWithRate(rate.Inf, 1)
	r.now = func() time.Time { return now }
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRetryAfter, "30")

	r.UpdateFromResponse(resp)

	assert.Equal(t, 0, r.Remaining())
	assert.Equal(t, now.Add(30*time.Second), r.ResetTime())
	err := r.Wait(context.Background())
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestRateLimiter_WaitAfterReset(t *testing.T) {
	r := NewRateLimiterWithRate(rate.Inf, 1)
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "0")
	resp.Header.Set(HeaderRateReset, strconv.FormatInt(time.Now().Add(-time.Second).Unix(), 10))
	r.UpdateFromResponse(resp)

	assert.NoError(t, r.Wait(context.Background()))
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	r := NewRateLimiterWithRate(rate.Every(time.Hour), 1)
	require.NoError(t, r.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, r.Wait(ctx))
}
