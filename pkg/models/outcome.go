package models

import "math"

// ScrapeOutcome is the final result of a scraping run. It is assembled once
// by the engine and immutable thereafter; serialization happens through
// Report at the boundary.
type ScrapeOutcome struct {
	Plan       *ScrapePlan
	Items      []map[string]string
	Warnings   []string
	Errors     []string
	SourceURLs []string
	Stats      map[string]any
}

// OutcomeReport is the wire shape of an outcome
type OutcomeReport struct {
	Plan     PlanSummary         `json:"plan"`
	Items    []map[string]string `json:"items"`
	Warnings []string            `json:"warnings"`
	Errors   []string            `json:"errors"`
	Metadata map[string]any      `json:"metadata"`
}

// FieldCoverage returns, per planned field, the fraction of items carrying a
// non-empty value, rounded to three decimals. All-zero when there are no
// items.
func (o *ScrapeOutcome) FieldCoverage() map[string]float64 {
	coverage := make(map[string]float64, len(o.Plan.Fields))
	total := len(o.Items)
	for _, field := range o.Plan.Fields {
		if total == 0 {
			coverage[field.Name] = 0.0
			continue
		}
		hits := 0
		for _, item := range o.Items {
			if item[field.Name] != "" {
				hits++
			}
		}
		coverage[field.Name] = math.Round(float64(hits)/float64(total)*1000) / 1000
	}
	return coverage
}

// Report builds the serializable view of the outcome. Metadata combines item
// count, visited URLs, and field coverage with the engine's stats map.
func (o *ScrapeOutcome) Report() OutcomeReport {
	metadata := map[string]any{
		"item_count":     len(o.Items),
		"source_urls":    o.SourceURLs,
		"field_coverage": o.FieldCoverage(),
	}
	for key, value := range o.Stats {
		metadata[key] = value
	}

	items := o.Items
	if items == nil {
		items = []map[string]string{}
	}
	warnings := o.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	errs := o.Errors
	if errs == nil {
		errs = []string{}
	}

	return OutcomeReport{
		Plan:     o.Plan.Summary(),
		Items:    items,
		Warnings: warnings,
		Errors:   errs,
		Metadata: metadata,
	}
}
