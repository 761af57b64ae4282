package fields

import (
	"reflect"
	"testing"

	"github.com/page-harvest/harvest/pkg/models"
)

func TestDefaultLibrary_Names(t *testing.T) {
	lib := DefaultLibrary()

	want := []string{"title", "name", "description", "price", "rating", "date", "author", "location", "url", "image", "category"}
	if !reflect.DeepEqual(lib.Names(), want) {
		t.Errorf("Expected catalogue order %v, got %v", want, lib.Names())
	}
}

func TestLibrary_Resolve_ExactAndSynonym(t *testing.T) {
	lib := DefaultLibrary()

	resolved := lib.Resolve([]string{"title", "cost", "stars"})

	names := make([]string, len(resolved))
	for i, spec := range resolved {
		names[i] = spec.Name
	}
	want := []string{"title", "price", "rating"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Expected %v, got %v", want, names)
	}
}

func TestLibrary_Resolve_SkipsDuplicatesAndUnknowns(t *testing.T) {
	lib := DefaultLibrary()

	resolved := lib.Resolve([]string{"price", "cost", "bogus"})

	if len(resolved) != 1 || resolved[0].Name != "price" {
		t.Errorf("Expected a single price field, got %v", resolved)
	}
}

func TestLibrary_Resolve_ReturnsClones(t *testing.T) {
	lib := DefaultLibrary()

	resolved := lib.Resolve([]string{"image"})
	if len(resolved) != 1 {
		t.Fatalf("Expected one field, got %d", len(resolved))
	}
	resolved[0].AttributePreferences[0] = "mutated"

	again := lib.Resolve([]string{"image"})
	if again[0].AttributePreferences[0] == "mutated" {
		t.Error("Mutating a resolved spec changed the catalogue")
	}
}

func TestLibrary_Defaults(t *testing.T) {
	lib := DefaultLibrary()

	defaults := lib.Defaults()

	names := make([]string, len(defaults))
	for i, spec := range defaults {
		names[i] = spec.Name
	}
	want := []string{"title", "description", "url"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Expected default fields %v, got %v", want, names)
	}
}

func TestLibrary_BySynonym(t *testing.T) {
	lib := DefaultLibrary()

	spec, ok := lib.BySynonym("headline")
	if !ok || spec.Name != "title" {
		t.Errorf("Expected 'headline' to resolve to title, got %v (%v)", spec.Name, ok)
	}

	if _, ok := lib.BySynonym("nonexistent"); ok {
		t.Error("Expected unknown synonym to miss")
	}
}

func TestDefaultLibrary_ValueTypes(t *testing.T) {
	lib := DefaultLibrary()

	url, _ := lib.Lookup("url")
	if url.ValueType != models.TypeLink {
		t.Errorf("Expected url to be a link field, got %s", url.ValueType)
	}
	description, _ := lib.Lookup("description")
	if !description.AllowPartial {
		t.Error("Expected description to tolerate partial text")
	}
}
