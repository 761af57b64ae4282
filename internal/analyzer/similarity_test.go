package analyzer

import "testing"

func TestSimilarity_Identical(t *testing.T) {
	if got := similarity("price", "price"); got != 1.0 {
		t.Errorf("Expected 1.0 for identical strings, got %v", got)
	}
}

func TestSimilarity_Disjoint(t *testing.T) {
	if got := similarity("xyz", "abc"); got != 0.0 {
		t.Errorf("Expected 0.0 for disjoint strings, got %v", got)
	}
}

func TestSimilarity_BothEmpty(t *testing.T) {
	if got := similarity("", ""); got != 1.0 {
		t.Errorf("Expected 1.0 for two empty strings, got %v", got)
	}
}

func TestSimilarity_Partial(t *testing.T) {
	got := similarity("pricing", "price")
	if got <= 0.5 || got >= 1.0 {
		t.Errorf("Expected a partial match ratio between 0.5 and 1.0, got %v", got)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	a := similarity("rating", "ratings")
	b := similarity("ratings", "rating")
	if a != b {
		t.Errorf("Expected symmetric ratio, got %v and %v", a, b)
	}
}
