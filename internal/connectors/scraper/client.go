package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/four-robots/unisearch/internal/core/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMissingURL is returned when the service URL is not configured.
var ErrMissingURL = errors.New("scraper: service url not configured")

// maxErrorBody caps how much of an error response is kept for the message.
const maxErrorBody = 512

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("scraper: status %d", e.StatusCode)
	}
	return fmt.Sprintf("scraper: status %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps 429 to domain.ErrRateLimited.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	return nil
}

// retryable reports whether a retry could succeed.
func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// searchRequest is the body POSTed to /search.
type searchRequest struct {
	Query        string   `json:"query"`
	Keywords     []string `json:"keywords,omitempty"`
	Limit        int      `json:"limit,omitempty"`
	ContentTypes []string `json:"content_types,omitempty"`
	Semantic     bool     `json:"semantic,omitempty"`
}

// searchResponse is the service answer.
type searchResponse struct {
	Results []hit `json:"results"`
}

// hit is one indexed page or chunk.
type hit struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	URL       string     `json:"url"`
	Score     float64    `json:"score"`
	Quality   *float64   `json:"quality,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	PageID    string     `json:"page_id,omitempty"`
	Domain    string     `json:"domain,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Client talks to the scraper service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int

	// newBackOff is replaced in tests to avoid real sleeps.
	newBackOff func() backoff.BackOff
}

// NewClient creates a client for cfg. A nil httpClient gets DefaultRequestTimeout.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrMissingURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries: cfg.MaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = time.Second
			return b
		},
	}, nil
}

// Search posts req and decodes the hits, retrying transient failures.
func (c *Client) Search(ctx context.Context, req searchRequest) ([]hit, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("scraper: encode request: %w", err)
	}

	var hits []hit
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		res, err := c.do(ctx, body)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && !se.retryable() {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		hits = res
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return hits, nil
}

func (c *Client) do(ctx context.Context, body []byte) ([]hit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("scraper: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("scraper: decode response: %w", err))
	}
	return out.Results, nil
}
