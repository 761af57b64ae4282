package models

import "testing"

func testPlan() *ScrapePlan {
	return &ScrapePlan{
		SeedURL: "https://example.com",
		Fields: []FieldSpec{
			NewFieldSpec("title", []string{"title"}, TypeText, nil, false),
			NewFieldSpec("price", []string{"price"}, TypeNumeric, nil, false),
		},
	}
}

func TestScrapeOutcome_FieldCoverage(t *testing.T) {
	outcome := &ScrapeOutcome{
		Plan: testPlan(),
		Items: []map[string]string{
			{"title": "A", "price": "10"},
			{"title": "B"},
			{"title": "C"},
		},
	}

	coverage := outcome.FieldCoverage()

	if coverage["title"] != 1.0 {
		t.Errorf("Expected full title coverage, got %v", coverage["title"])
	}
	if coverage["price"] != 0.333 {
		t.Errorf("Expected price coverage 0.333, got %v", coverage["price"])
	}
}

func TestScrapeOutcome_FieldCoverage_NoItems(t *testing.T) {
	outcome := &ScrapeOutcome{Plan: testPlan()}

	coverage := outcome.FieldCoverage()

	for name, value := range coverage {
		if value != 0.0 {
			t.Errorf("Expected zero coverage for %q with no items, got %v", name, value)
		}
	}
}

func TestScrapeOutcome_Report_NormalizesNilSlices(t *testing.T) {
	outcome := &ScrapeOutcome{
		Plan:  testPlan(),
		Stats: map[string]any{"fetch": "x"},
	}

	report := outcome.Report()

	if report.Items == nil || report.Warnings == nil || report.Errors == nil {
		t.Error("Expected empty slices instead of nil in the report")
	}
	if report.Metadata["item_count"] != 0 {
		t.Errorf("Expected item_count 0, got %v", report.Metadata["item_count"])
	}
	if report.Metadata["fetch"] != "x" {
		t.Error("Expected engine stats to be merged into metadata")
	}
}

func TestIntentSuggestion_Merge_RightBiased(t *testing.T) {
	base := &IntentSuggestion{
		SeedURL:    "https://example.com/a",
		FieldNames: []string{"title"},
		Interactions: []InteractionStep{
			{Kind: StepScroll, Count: 2},
		},
	}
	other := &IntentSuggestion{
		SeedURL:    "https://example.com/b",
		FieldNames: []string{"price", "title"},
		MaxPages:   3,
		Interactions: []InteractionStep{
			{Kind: StepScroll, Count: 5},
			{Kind: StepClick, Selector: "text=Load more"},
		},
	}

	merged := base.Merge(other)

	if merged.SeedURL != "https://example.com/b" {
		t.Errorf("Expected incoming seed to win, got %q", merged.SeedURL)
	}
	if len(merged.FieldNames) != 2 || merged.FieldNames[0] != "title" {
		t.Errorf("Expected deduplicated field names, got %v", merged.FieldNames)
	}
	if merged.MaxPages != 3 {
		t.Errorf("Expected max pages 3, got %d", merged.MaxPages)
	}
	if len(merged.Interactions) != 2 {
		t.Fatalf("Expected matching scroll step to be replaced, got %v", merged.Interactions)
	}
	if merged.Interactions[0].Count != 5 {
		t.Errorf("Expected incoming scroll count 5, got %d", merged.Interactions[0].Count)
	}
}

func TestIntentSuggestion_Merge_Nil(t *testing.T) {
	base := &IntentSuggestion{SeedURL: "https://example.com"}
	if merged := base.Merge(nil); merged.SeedURL != "https://example.com" {
		t.Error("Merging nil should be a no-op")
	}
}

func TestPageContent_Success(t *testing.T) {
	ok := PageContent{URL: "https://example.com", HTML: "<html></html>"}
	if !ok.Success() {
		t.Error("Expected page with HTML and no error to be successful")
	}

	failed := PageContent{URL: "https://example.com", Error: "timeout"}
	if failed.Success() {
		t.Error("Expected page with an error to be unsuccessful")
	}

	empty := PageContent{URL: "https://example.com"}
	if empty.Success() {
		t.Error("Expected page without HTML to be unsuccessful")
	}
}
