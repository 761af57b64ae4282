// Package fields holds the process-wide field catalogue. The library is
// built once at startup and passed explicitly to the planner and analyzer;
// it is never mutated after construction.
package fields

import (
	"strings"

	"github.com/page-harvest/harvest/pkg/models"
)

// Library is an immutable catalogue of extractable fields keyed by canonical
// name, with a configured default selection for prompts that name no fields.
type Library struct {
	order    []string
	specs    map[string]models.FieldSpec
	defaults []string
}

// New builds a library from specs (declaration order preserved) and the
// default field names used when a prompt resolves to nothing.
func New(specs []models.FieldSpec, defaults []string) *Library {
	lib := &Library{
		order:    make([]string, 0, len(specs)),
		specs:    make(map[string]models.FieldSpec, len(specs)),
		defaults: append([]string(nil), defaults...),
	}
	for _, spec := range specs {
		if _, exists := lib.specs[spec.Name]; exists {
			continue
		}
		lib.order = append(lib.order, spec.Name)
		lib.specs[spec.Name] = spec
	}
	return lib
}

// DefaultLibrary returns the built-in catalogue of supported fields
func DefaultLibrary() *Library {
	return New([]models.FieldSpec{
		models.NewFieldSpec("title", []string{"title", "headline", "heading"}, models.TypeText, nil, false),
		models.NewFieldSpec("name", []string{"name", "names", "company", "product", "listing"}, models.TypeText, nil, false),
		models.NewFieldSpec("description", []string{"description", "summary", "details", "overview", "about"}, models.TypeText, nil, true),
		models.NewFieldSpec("price", []string{"price", "cost", "amount", "fee", "salary", "rate"}, models.TypeNumeric, nil, false),
		models.NewFieldSpec("rating", []string{"rating", "score", "review", "stars", "rank"}, models.TypeNumeric, nil, false),
		models.NewFieldSpec("date", []string{"date", "posted", "published", "updated", "time", "deadline"}, models.TypeDate, nil, false),
		models.NewFieldSpec("author", []string{"author", "by", "creator", "writer", "seller"}, models.TypeText, nil, false),
		models.NewFieldSpec("location", []string{"location", "city", "state", "country", "address", "region"}, models.TypeText, nil, false),
		models.NewFieldSpec("url", []string{"url", "link", "website", "websites", "href", "source"}, models.TypeLink, []string{"href"}, false),
		models.NewFieldSpec("image", []string{"image", "photo", "thumbnail", "picture", "logo"}, models.TypeImage, []string{"src", "data-src", "data-original", "data-lazy"}, false),
		models.NewFieldSpec("category", []string{"category", "type", "tag", "genre", "sector"}, models.TypeText, nil, false),
	}, []string{"title", "description", "url"})
}

// Names returns the canonical field names in declaration order
func (l *Library) Names() []string {
	return append([]string(nil), l.order...)
}

// Lookup returns the spec registered under the exact canonical name
func (l *Library) Lookup(name string) (models.FieldSpec, bool) {
	spec, ok := l.specs[name]
	return spec, ok
}

// BySynonym returns the first field (declaration order) carrying the given
// lowercase token among its synonyms
func (l *Library) BySynonym(token string) (models.FieldSpec, bool) {
	for _, name := range l.order {
		spec := l.specs[name]
		for _, syn := range spec.Synonyms {
			if syn == token {
				return spec, true
			}
		}
	}
	return models.FieldSpec{}, false
}

// Resolve maps requested names onto cloned specs: exact name match first,
// then synonym match, skipping names that resolve to an already-selected
// field. Unresolvable names are dropped.
func (l *Library) Resolve(names []string) []models.FieldSpec {
	var resolved []models.FieldSpec
	selected := make(map[string]bool)
	for _, name := range names {
		if spec, ok := l.Lookup(name); ok {
			if !selected[spec.Name] {
				selected[spec.Name] = true
				resolved = append(resolved, spec.Clone(""))
			}
			continue
		}
		if spec, ok := l.BySynonym(strings.ToLower(name)); ok && !selected[spec.Name] {
			selected[spec.Name] = true
			resolved = append(resolved, spec.Clone(""))
		}
	}
	return resolved
}

// Defaults returns clones of the configured default field set
func (l *Library) Defaults() []models.FieldSpec {
	var specs []models.FieldSpec
	for _, name := range l.defaults {
		if spec, ok := l.specs[name]; ok {
			specs = append(specs, spec.Clone(""))
		}
	}
	return specs
}
