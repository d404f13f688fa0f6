package biorxiv

import (
	"context"
	"fmt"
	"sync"
)

const (
	// DefaultPageSize is the number of records the details endpoint
	// returns per cursor position.
	DefaultPageSize = 100

	// DefaultWorkers is the bounded worker-pool size for page fetches.
	DefaultWorkers = 5
)

// PageResult pairs a completed (or failed) query with its page index.
// A failed page carries its error here; it never aborts sibling pages.
type PageResult struct {
	Page  int
	Query *Query
	Err   error
}

// PlanQueries generates one Query per page boundary in
// [0, pageSize, 2*pageSize, ...) < total, each tagged with
// page = offset / pageSize. The bioRxiv details API addresses pages by
// record cursor appended to the URL.
func PlanQueries(baseURL string, keys, columns []string, pageSize, total int) ([]*Query, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	var queries []*Query
	for cursor := 0; cursor < total; cursor += pageSize {
		q, err := NewQuery(fmt.Sprintf("%s/%d", baseURL, cursor), keys, columns, cursor/pageSize)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// RunAll executes the queries through a bounded worker pool. Completion
// order is arbitrary; each result retains its page index so callers can
// restore ordering. A page that fails after exhausting its retries only
// fails that page.
func (c *Client) RunAll(ctx context.Context, queries []*Query, workers int) []PageResult {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]PageResult, len(queries))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, q := range queries {
		wg.Add(1)
		go func(idx int, q *Query) {
			defer wg.Done()
			sem <- struct{}{}        // acquire semaphore
			defer func() { <-sem }() // release semaphore

			page, done, err := c.Execute(ctx, q, ViewJSON)
			results[idx] = PageResult{Page: page, Query: done, Err: err}
		}(i, q)
	}

	wg.Wait()
	return results
}

// FetchTotal asks the details endpoint for the authoritative record count
// by fetching page 0 and reading messages[0].total. This is a single
// blocking round trip, run before planning rather than through the pool.
func (c *Client) FetchTotal(ctx context.Context, baseURL string) (int, error) {
	result, err := c.Fetch(ctx, fmt.Sprintf("%s/0", baseURL), ViewJSON)
	if err != nil {
		return 0, err
	}
	return totalFromPayload(result.JSON)
}

// totalFromPayload digs messages[0].total out of a details payload. The
// API serves the count as either a number or a numeric string.
func totalFromPayload(payload map[string]any) (int, error) {
	messages, ok := payload["messages"].([]any)
	if !ok || len(messages) == 0 {
		return 0, fmt.Errorf("%w: missing messages section", ErrInvalidResponse)
	}
	first, ok := messages[0].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("%w: malformed messages[0]", ErrInvalidResponse)
	}

	switch total := first["total"].(type) {
	case float64:
		return int(total), nil
	case string:
		var n int
		if _, err := fmt.Sscanf(total, "%d", &n); err != nil {
			return 0, fmt.Errorf("%w: total %q is not a count", ErrInvalidResponse, total)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: missing total count", ErrInvalidResponse)
	}
}
