package refiner

import (
	"testing"

	"github.com/page-harvest/harvest/internal/fields"
	"github.com/page-harvest/harvest/pkg/models"
)

func planWith(names ...string) *models.ScrapePlan {
	lib := fields.DefaultLibrary()
	return &models.ScrapePlan{
		SeedURL: "https://example.com",
		Fields:  lib.Resolve(names),
	}
}

func TestRefine_NormalizesWhitespace(t *testing.T) {
	items := []map[string]string{
		{"title": "  Hello \n  World  "},
	}

	cleaned, _, _ := New().Refine(items, planWith("title"))

	if len(cleaned) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(cleaned))
	}
	if cleaned[0]["title"] != "Hello World" {
		t.Errorf("Expected collapsed whitespace, got %q", cleaned[0]["title"])
	}
}

func TestRefine_DeduplicatesCaseAndWhitespaceVariants(t *testing.T) {
	items := []map[string]string{
		{"title": "Alpha Widget", "price": "$10"},
		{"title": "  alpha   widget ", "price": "$10"},
		{"title": "Beta Widget", "price": "$12"},
	}

	cleaned, stats, _ := New().Refine(items, planWith("title", "price"))

	if len(cleaned) != 2 {
		t.Fatalf("Expected 2 records after deduplication, got %d", len(cleaned))
	}
	if stats["duplicates_removed"] != 1 {
		t.Errorf("Expected 1 duplicate removed, got %v", stats["duplicates_removed"])
	}
	if stats["records_before_cleaning"] != 3 || stats["records_after_cleaning"] != 2 {
		t.Errorf("Unexpected cleaning counts: %v", stats)
	}
	// First occurrence wins
	if cleaned[0]["title"] != "Alpha Widget" {
		t.Errorf("Expected the first variant to survive, got %q", cleaned[0]["title"])
	}
}

func TestRefine_LinkAndImageFieldsIgnoredInSignature(t *testing.T) {
	// Same title, different URLs: still duplicates because link fields do
	// not participate in the dedupe signature
	items := []map[string]string{
		{"title": "Alpha", "url": "https://example.com/a"},
		{"title": "Alpha", "url": "https://example.com/b"},
	}

	cleaned, stats, _ := New().Refine(items, planWith("title", "url"))

	if len(cleaned) != 1 {
		t.Fatalf("Expected link-only differences to dedupe, got %d records", len(cleaned))
	}
	if stats["duplicates_removed"] != 1 {
		t.Errorf("Expected 1 duplicate removed, got %v", stats["duplicates_removed"])
	}
}

func TestRefine_ZeroPopulationWarning(t *testing.T) {
	items := []map[string]string{
		{"title": "Alpha"},
	}

	_, _, warnings := New().Refine(items, planWith("title", "price"))

	if len(warnings) != 1 || warnings[0] != "No values found for 'price' after normalization." {
		t.Errorf("Expected a zero-population warning for price, got %v", warnings)
	}
}

func TestRefine_FieldPopulation(t *testing.T) {
	items := []map[string]string{
		{"title": "A", "price": "$1"},
		{"title": "B"},
	}

	_, stats, _ := New().Refine(items, planWith("title", "price"))

	population, ok := stats["field_population"].(map[string]int)
	if !ok {
		t.Fatalf("Expected field_population map, got %T", stats["field_population"])
	}
	if population["title"] != 2 || population["price"] != 1 {
		t.Errorf("Unexpected population counts: %v", population)
	}
}

func TestRefine_EmptyInput(t *testing.T) {
	cleaned, stats, warnings := New().Refine(nil, planWith("title"))

	if len(cleaned) != 0 {
		t.Errorf("Expected no records, got %v", cleaned)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings for empty input, got %v", warnings)
	}
	if stats["records_before_cleaning"] != 0 || stats["records_after_cleaning"] != 0 {
		t.Errorf("Unexpected stats for empty input: %v", stats)
	}
	if _, present := stats["field_population"]; present {
		t.Error("Expected no field_population entry for empty input")
	}
}

func TestRefine_Idempotent(t *testing.T) {
	items := []map[string]string{
		{"title": "Alpha"},
		{"title": "Beta"},
	}
	plan := planWith("title")

	once, _, _ := New().Refine(items, plan)
	twice, stats, _ := New().Refine(once, plan)

	if len(twice) != len(once) {
		t.Errorf("Refining cleaned records changed the count: %d vs %d", len(twice), len(once))
	}
	if stats["duplicates_removed"] != 0 {
		t.Errorf("Expected no duplicates on a second pass, got %v", stats["duplicates_removed"])
	}
}
