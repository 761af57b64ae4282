package models

// IntentSuggestion is a partial, mergeable view of planner intent. One is
// created per planning call, merged at most twice (heuristic pass, then the
// external model), and discarded after plan construction.
type IntentSuggestion struct {
	SeedURL      string            `json:"seed_url,omitempty"`
	ExtraURLs    []string          `json:"extra_urls,omitempty"`
	FieldNames   []string          `json:"field_names,omitempty"`
	MaxPages     int               `json:"max_pages,omitempty"`
	Interactions []InteractionStep `json:"interactions,omitempty"`
	Notes        []string          `json:"notes,omitempty"`
}

// Merge folds another suggestion into this one, right-biased: a non-empty
// field in other overwrites or extends the base, empty fields are no-ops.
// Interactions are keyed by (kind, selector, value); an incoming step
// replaces a matching base step in place, new steps append.
func (s *IntentSuggestion) Merge(other *IntentSuggestion) *IntentSuggestion {
	if other == nil {
		return s
	}

	if other.SeedURL != "" {
		s.SeedURL = other.SeedURL
	}
	if len(other.ExtraURLs) > 0 {
		s.ExtraURLs = dedupeStrings(append(s.ExtraURLs, other.ExtraURLs...))
	}
	if len(other.FieldNames) > 0 {
		s.FieldNames = dedupeStrings(append(s.FieldNames, other.FieldNames...))
	}
	if other.MaxPages > 0 {
		s.MaxPages = other.MaxPages
	}
	if len(other.Interactions) > 0 {
		s.Interactions = mergeInteractions(s.Interactions, other.Interactions)
	}
	if len(other.Notes) > 0 {
		s.Notes = append(s.Notes, other.Notes...)
	}
	return s
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

type interactionKey struct {
	kind     string
	selector string
	value    string
}

func mergeInteractions(base, incoming []InteractionStep) []InteractionStep {
	index := make(map[interactionKey]int, len(base))
	merged := append([]InteractionStep(nil), base...)
	for i, step := range merged {
		index[interactionKey{step.Kind, step.Selector, step.Value}] = i
	}
	for _, step := range incoming {
		key := interactionKey{step.Kind, step.Selector, step.Value}
		if i, ok := index[key]; ok {
			merged[i] = step
			continue
		}
		index[key] = len(merged)
		merged = append(merged, step)
	}
	return merged
}
