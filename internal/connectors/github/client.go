package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// MaxPerPage is the largest page the search API returns.
const MaxPerPage = 100

// Client wraps the go-github client with rate limiting and error mapping.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// NewClient creates an authenticated client from cfg.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout
	return NewClientWithHTTPClient(tc, cfg.BaseURL)
}

// NewClientWithHTTPClient creates a client over httpClient.
// A non-empty baseURL replaces the public API root.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("github: parse base url: %w", err)
		}
		client.BaseURL = u
	}
	return &Client{gh: client, rateLimiter: NewRateLimiter()}, nil
}

// SearchCode runs a code search with text-match fragments enabled.
func (c *Client) SearchCode(ctx context.Context, query string, perPage int) (*gh.CodeSearchResult, error) {
	if perPage <= 0 || perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, resp, err := c.gh.Search.Code(ctx, query, &gh.SearchOptions{
		TextMatch:   true,
		ListOptions: gh.ListOptions{PerPage: perPage},
	})
	if resp != nil {
		c.rateLimiter.UpdateFromResponse(resp.Response)
	}
	if err != nil {
		return nil, c.wrapError(err, "search code")
	}
	return result, nil
}

// RateLimiter returns the client's rate limiter.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		reset := time.Now().Add(time.Minute)
		if abuseErr.RetryAfter != nil {
			reset = time.Now().Add(*abuseErr.RetryAfter)
		}
		return &RateLimitError{ResetAt: reset, Limit: c.rateLimiter.Limit()}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return &APIError{StatusCode: ghErr.Response.StatusCode, Message: ghErr.Message}
	}

	return fmt.Errorf("%s: %w", operation, err)
}
