package biorxiv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the bioRxiv details API base URL.
	DefaultBaseURL = "https://api.biorxiv.org/details/biorxiv"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts is the retry ceiling for one query.
	DefaultMaxAttempts = 10

	// DefaultBaseDelay is the first backoff delay; attempt n waits
	// DefaultBaseDelay * 2^n.
	DefaultBaseDelay = time.Second

	// RateLimit is the outbound request budget in requests per second.
	RateLimit = 5.0

	// maxBodySize bounds how much of a response body is read.
	maxBodySize = 10 << 20
)

// Client is a rate-limited HTTP client for the bioRxiv API with
// exponential-backoff retries.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseDelay   time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMaxAttempts sets the retry ceiling.
func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// WithBaseDelay sets the first backoff delay.
func WithBaseDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.baseDelay = d
	}
}

// WithRateLimit sets the outbound requests-per-second budget.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a new bioRxiv API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(RateLimit), 1),
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch performs a GET against url and returns the response in the
// requested view. Transport failures and retryable HTTP statuses are
// retried with exponential backoff up to the attempt ceiling; other 4xx
// statuses fail immediately. An invalid view fails before any network
// call. Each attempt is exactly one network call; nothing is cached.
func (c *Client) Fetch(ctx context.Context, url string, view View) (*Result, error) {
	if !view.valid() {
		return nil, fmt.Errorf("%w: %q (valid: %s, %s, %s)", ErrInvalidView, view, ViewText, ViewContent, ViewJSON)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.backoffDelay(attempt-1)); err != nil {
				return nil, err
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		body, retry, err := c.attempt(ctx, url)
		if err == nil {
			return buildResult(body, view)
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, c.maxAttempts, lastErr)
}

// attempt makes one GET request. It returns the body on success, or an
// error plus whether the failure is worth retrying.
func (c *Client) attempt(ctx context.Context, url string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, URL: url}
		if !IsRetryable(resp.StatusCode) {
			return nil, false, apiErr
		}
		// Drain so the connection can be reused across attempts.
		io.Copy(io.Discard, resp.Body)
		return nil, true, apiErr
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, true, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}

	return body, false, nil
}

// buildResult converts a response body into the requested view.
func buildResult(body []byte, view View) (*Result, error) {
	switch view {
	case ViewText:
		return &Result{Text: string(body)}, nil
	case ViewContent:
		return &Result{Content: body}, nil
	default: // ViewJSON, validated by Fetch
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return &Result{JSON: payload}, nil
	}
}

// backoffDelay returns the wait before retrying after a given failed
// attempt: baseDelay doubled per attempt.
func (c *Client) backoffDelay(attempt int) time.Duration {
	return c.baseDelay * (1 << attempt)
}

// sleepCtx waits for the given duration, respecting context cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Execute runs a query through Fetch and stores the result in the query's
// write-once slot, returning the page index alongside the completed query.
func (c *Client) Execute(ctx context.Context, q *Query, view View) (int, *Query, error) {
	result, err := c.Fetch(ctx, q.URL(), view)
	if err != nil {
		return q.Page(), q, err
	}
	if err := q.setResult(result); err != nil {
		return q.Page(), q, err
	}
	return q.Page(), q, nil
}
