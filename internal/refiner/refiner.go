// Package refiner post-processes extracted records: whitespace normalization,
// order-preserving deduplication, and per-field population accounting.
package refiner

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/page-harvest/harvest/pkg/models"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Refiner cleans the analyzer's raw records before reporting
type Refiner struct{}

func New() *Refiner {
	return &Refiner{}
}

// Refine normalizes every value, drops duplicate records, and reports
// cleaning stats plus a warning for each planned field that ended up with no
// values at all.
func (r *Refiner) Refine(items []map[string]string, plan *models.ScrapePlan) ([]map[string]string, map[string]any, []string) {
	if len(items) == 0 {
		stats := map[string]any{
			"records_before_cleaning": 0,
			"records_after_cleaning":  0,
			"duplicates_removed":      0,
		}
		return nil, stats, nil
	}

	cleaned := make([]map[string]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	duplicatesRemoved := 0

	for _, item := range items {
		normalized := make(map[string]string, len(item))
		for key, value := range item {
			normalized[key] = normalizeValue(value)
		}
		signature := recordSignature(normalized, plan.Fields)
		if seen[signature] {
			duplicatesRemoved++
			continue
		}
		seen[signature] = true
		cleaned = append(cleaned, normalized)
	}

	population := fieldPopulation(cleaned, plan.Fields)
	var warnings []string
	for _, field := range plan.Fields {
		if population[field.Name] == 0 {
			warnings = append(warnings, fmt.Sprintf("No values found for '%s' after normalization.", field.Name))
		}
	}

	log.Debug().
		Int("before", len(items)).
		Int("after", len(cleaned)).
		Int("duplicates", duplicatesRemoved).
		Msg("Records refined")

	stats := map[string]any{
		"records_before_cleaning": len(items),
		"records_after_cleaning":  len(cleaned),
		"duplicates_removed":      duplicatesRemoved,
		"field_population":        population,
	}
	return cleaned, stats, warnings
}

func normalizeValue(value string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(value, " "))
}

// recordSignature builds the dedupe key from the lowercased values of the
// plan's non-link, non-image fields in plan order. Records carrying none of
// those fields fall back to a sorted join of everything they do carry.
func recordSignature(item map[string]string, fields []models.FieldSpec) string {
	components := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.ValueType == models.TypeImage || field.ValueType == models.TypeLink {
			continue
		}
		components = append(components, strings.ToLower(item[field.Name]))
	}
	if len(components) == 0 {
		values := make([]string, 0, len(item))
		for _, value := range item {
			values = append(values, value)
		}
		sort.Strings(values)
		components = []string{strings.Join(values, "-")}
	}
	return strings.Join(components, "\x1f")
}

func fieldPopulation(items []map[string]string, fields []models.FieldSpec) map[string]int {
	population := make(map[string]int, len(fields))
	for _, field := range fields {
		count := 0
		for _, item := range items {
			if item[field.Name] != "" {
				count++
			}
		}
		population[field.Name] = count
	}
	return population
}
