package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/page-harvest/harvest/internal/config"
	"github.com/page-harvest/harvest/internal/planner"
)

func httpOnlyConfig() *config.Config {
	cfg := config.Defaults()
	cfg.DisableBrowser = true
	return cfg
}

const listingHTML = `<html><body><ul>
	<li class="product">
		<span class="title">Alpha Widget</span>
		<span class="price">$19.99</span>
	</li>
	<li class="product">
		<span class="title">Beta Widget</span>
		<span class="price">$24.50</span>
	</li>
	<li class="product">
		<span class="title">Alpha Widget</span>
		<span class="price">$19.99</span>
	</li>
</ul></body></html>`

func TestRun_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	eng := New(httpOnlyConfig(), nil, nil, nil)

	outcome, err := eng.Run(context.Background(), "Get title and price from "+server.URL, 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(outcome.Items) != 2 {
		t.Fatalf("Expected 2 deduplicated items, got %d: %v", len(outcome.Items), outcome.Items)
	}
	if outcome.Items[0]["title"] != "Alpha Widget" || outcome.Items[0]["price"] != "$19.99" {
		t.Errorf("Unexpected first item: %v", outcome.Items[0])
	}
	if len(outcome.SourceURLs) != 1 {
		t.Errorf("Expected a single source URL, got %v", outcome.SourceURLs)
	}

	cleaning, ok := outcome.Stats["cleaning"].(map[string]any)
	if !ok {
		t.Fatalf("Expected cleaning stats, got %T", outcome.Stats["cleaning"])
	}
	if cleaning["duplicates_removed"] != 1 {
		t.Errorf("Expected 1 duplicate removed, got %v", cleaning["duplicates_removed"])
	}
}

func TestRun_FailedPageGoesToErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	eng := New(httpOnlyConfig(), nil, nil, nil)

	outcome, err := eng.Run(context.Background(), "Get title from "+server.URL, 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(outcome.Items) != 0 {
		t.Errorf("Expected no items from a failed page, got %v", outcome.Items)
	}
	if len(outcome.Errors) != 1 || !strings.Contains(outcome.Errors[0], "HTTP 500") {
		t.Errorf("Expected a per-URL error entry, got %v", outcome.Errors)
	}
}

func TestRun_PaginationWarningWithoutPattern(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	eng := New(httpOnlyConfig(), nil, nil, nil)

	outcome, err := eng.Run(context.Background(), "Get title from "+server.URL+", first 3 pages", 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	found := false
	for _, warning := range outcome.Warnings {
		if warning == "Pagination requested but no pagination pattern was detected; scraping only the seed URL." {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected the missing-pagination warning, got %v", outcome.Warnings)
	}
	if len(outcome.SourceURLs) != 1 {
		t.Errorf("Expected only the seed to be fetched, got %v", outcome.SourceURLs)
	}
}

func TestRun_QueryPaginationExpandsPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	eng := New(httpOnlyConfig(), nil, nil, nil)

	outcome, err := eng.Run(context.Background(), "Get title from "+server.URL+"/list?page=1, first 2 pages", 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(outcome.SourceURLs) != 2 {
		t.Errorf("Expected 2 paginated fetches, got %v", outcome.SourceURLs)
	}
}

func TestRun_PageLimitClampedToMax(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	eng := New(httpOnlyConfig(), nil, nil, nil)

	outcome, err := eng.Run(context.Background(), "Get title from "+server.URL+"/list?page=1, first 9 pages", 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(outcome.SourceURLs) != 5 {
		t.Errorf("Expected the page budget to clamp at 5, got %d", len(outcome.SourceURLs))
	}
}

func TestRun_InvalidPromptPropagates(t *testing.T) {
	eng := New(httpOnlyConfig(), nil, nil, nil)

	_, err := eng.Run(context.Background(), "", 0)

	if !planner.IsInvalidRequest(err) {
		t.Fatalf("Expected an invalid request error, got %v", err)
	}
}

func TestRun_NoMatchingDataWarning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer server.Close()

	eng := New(httpOnlyConfig(), nil, nil, nil)

	outcome, err := eng.Run(context.Background(), "Get price from "+server.URL, 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	found := false
	for _, warning := range outcome.Warnings {
		if strings.HasSuffix(warning, ": no matching data located.") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a no-data warning, got %v", outcome.Warnings)
	}
}
