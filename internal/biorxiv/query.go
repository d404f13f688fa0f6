// Package biorxiv is a rate-limited, retrying client for the bioRxiv
// details API, plus the planner that fans paginated queries out over a
// bounded worker pool.
package biorxiv

import (
	"fmt"
)

// View selects which representation of the HTTP response a query wants.
type View string

// The valid response views.
const (
	ViewText    View = "text"    // response body as a string
	ViewContent View = "content" // response body as raw bytes
	ViewJSON    View = "json"    // response body parsed as JSON
)

// valid reports whether the view is one of the supported representations.
func (v View) valid() bool {
	switch v {
	case ViewText, ViewContent, ViewJSON:
		return true
	}
	return false
}

// Result is the one-shot payload of an executed query, populated according
// to the requested View.
type Result struct {
	Text    string
	Content []byte
	JSON    map[string]any
}

// Query is a single bounded page-fetch request: the target URL, the JSON
// keys expected in each record, the column names those keys map to, and
// the page index. A Query is constructed per page, has its result set
// exactly once, and is read-only afterwards.
type Query struct {
	url     string
	keys    []string
	columns []string
	page    int
	result  *Result
}

// NewQuery builds a Query. The key and column lists must be the same
// length; they correspond positionally.
func NewQuery(url string, keys, columns []string, page int) (*Query, error) {
	if len(keys) != len(columns) {
		return nil, fmt.Errorf("keys and columns must correspond: %d keys, %d columns", len(keys), len(columns))
	}
	return &Query{url: url, keys: keys, columns: columns, page: page}, nil
}

// URL returns the query's target URL.
func (q *Query) URL() string { return q.url }

// Keys returns the expected JSON keys.
func (q *Query) Keys() []string { return q.keys }

// Columns returns the column names corresponding to Keys.
func (q *Query) Columns() []string { return q.columns }

// Page returns the query's page index.
func (q *Query) Page() int { return q.page }

// Result returns the query's result, or nil if it has not executed yet.
func (q *Query) Result() *Result { return q.result }

// setResult stores the query's result. The slot is write-once.
func (q *Query) setResult(r *Result) error {
	if q.result != nil {
		return fmt.Errorf("query for page %d already has a result", q.page)
	}
	q.result = r
	return nil
}
