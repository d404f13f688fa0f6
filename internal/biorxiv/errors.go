package biorxiv

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrInvalidView indicates an unsupported response view was requested.
	// This is a caller bug: it is reported before any network call and is
	// never retried.
	ErrInvalidView = errors.New("invalid response view")

	// ErrNetworkError indicates a transport-level failure that persisted
	// through every retry attempt.
	ErrNetworkError = errors.New("network error communicating with bioRxiv")

	// ErrRetriesExhausted indicates the attempt ceiling was reached.
	ErrRetriesExhausted = errors.New("bioRxiv retries exhausted")

	// ErrInvalidResponse indicates the API returned a payload the client
	// could not interpret.
	ErrInvalidResponse = errors.New("invalid response from bioRxiv")
)

// APIError represents an HTTP-level error from the bioRxiv API.
type APIError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bioRxiv API error (status %d): %s (%s)", e.StatusCode, e.Message, e.URL)
	}
	return fmt.Sprintf("bioRxiv API error (status %d): %s", e.StatusCode, e.URL)
}

// IsRetryable reports whether an HTTP status is worth another attempt:
// 429 and server-side 5xx are; other client errors are not.
func IsRetryable(statusCode int) bool {
	if statusCode == 429 {
		return true
	}
	return statusCode >= 500 && statusCode < 600
}

// IsRetriesExhausted returns true if the error indicates the attempt
// ceiling was reached.
func IsRetriesExhausted(err error) bool {
	return errors.Is(err, ErrRetriesExhausted)
}
