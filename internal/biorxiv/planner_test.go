package biorxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPlanQueries_Completeness(t *testing.T) {
	queries, err := PlanQueries("https://api.biorxiv.org/details/biorxiv/2018-08-21/2018-08-28",
		[]string{"doi"}, []string{"DOI"}, 100, 630)
	if err != nil {
		t.Fatalf("PlanQueries: %v", err)
	}

	if len(queries) != 7 {
		t.Fatalf("expected 7 queries for 630 records at page size 100, got %d", len(queries))
	}
	for i, q := range queries {
		if q.Page() != i {
			t.Errorf("query %d has page %d", i, q.Page())
		}
		wantSuffix := fmt.Sprintf("/%d", i*100)
		if !strings.HasSuffix(q.URL(), wantSuffix) {
			t.Errorf("query %d URL = %q, want cursor suffix %q", i, q.URL(), wantSuffix)
		}
	}
}

func TestPlanQueries_Empty(t *testing.T) {
	queries, err := PlanQueries("http://example.org", []string{"doi"}, []string{"DOI"}, 100, 0)
	if err != nil {
		t.Fatalf("PlanQueries: %v", err)
	}
	if len(queries) != 0 {
		t.Errorf("expected no queries for zero records, got %d", len(queries))
	}
}

func TestPlanQueries_BadPageSize(t *testing.T) {
	if _, err := PlanQueries("http://example.org", []string{"doi"}, []string{"DOI"}, 0, 100); err == nil {
		t.Fatal("expected error for zero page size")
	}
}

func TestRunAll_AllPagesComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"collection":[{"path":%q}]}`, r.URL.Path)
	}))
	defer srv.Close()

	queries, err := PlanQueries(srv.URL, []string{"path"}, []string{"Path"}, 100, 630)
	if err != nil {
		t.Fatalf("PlanQueries: %v", err)
	}

	c := testClient()
	results := c.RunAll(context.Background(), queries, 3)
	if len(results) != 7 {
		t.Fatalf("expected 7 results, got %d", len(results))
	}

	seen := make(map[int]bool)
	for _, res := range results {
		if res.Err != nil {
			t.Errorf("page %d failed: %v", res.Page, res.Err)
		}
		if res.Query.Result() == nil {
			t.Errorf("page %d has no stored result", res.Page)
		}
		seen[res.Page] = true
	}
	for page := 0; page < 7; page++ {
		if !seen[page] {
			t.Errorf("page %d missing from results", page)
		}
	}
}

func TestRunAll_FailedPageDoesNotAbortSiblings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/100") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"collection":[]}`))
	}))
	defer srv.Close()

	queries, err := PlanQueries(srv.URL, []string{"doi"}, []string{"DOI"}, 100, 300)
	if err != nil {
		t.Fatalf("PlanQueries: %v", err)
	}

	c := testClient()
	results := c.RunAll(context.Background(), queries, 2)

	var failed, succeeded int
	for _, res := range results {
		if res.Err != nil {
			failed++
			if res.Page != 1 {
				t.Errorf("unexpected failing page %d", res.Page)
			}
		} else {
			succeeded++
		}
	}
	if failed != 1 || succeeded != 2 {
		t.Errorf("failed=%d succeeded=%d, want 1 and 2", failed, succeeded)
	}
}

func TestFetchTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/0") {
			t.Errorf("total fetch should target page 0, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"messages":[{"status":"ok","total":630}],"collection":[]}`))
	}))
	defer srv.Close()

	c := testClient()
	total, err := c.FetchTotal(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchTotal: %v", err)
	}
	if total != 630 {
		t.Errorf("total = %d, want 630", total)
	}
}

func TestTotalFromPayload(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]any
		want    int
		wantErr bool
	}{
		{"number", map[string]any{"messages": []any{map[string]any{"total": float64(630)}}}, 630, false},
		{"string", map[string]any{"messages": []any{map[string]any{"total": "630"}}}, 630, false},
		{"missing messages", map[string]any{}, 0, true},
		{"missing total", map[string]any{"messages": []any{map[string]any{}}}, 0, true},
		{"junk total", map[string]any{"messages": []any{map[string]any{"total": "lots"}}}, 0, true},
	}

	for _, tc := range cases {
		got, err := totalFromPayload(tc.payload)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: total = %d, want %d", tc.name, got, tc.want)
		}
	}
}
