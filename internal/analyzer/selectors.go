package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/page-harvest/harvest/pkg/models"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// candidateSelectors builds the direct-probe CSS selectors for a field: each
// synonym becomes a set of substring matches against the attributes sites
// commonly use to label data, with itemprop matched exactly.
func candidateSelectors(field models.FieldSpec) []string {
	tokens := make([]string, 0, len(field.Synonyms)+1)
	tokens = append(tokens, strings.ToLower(field.Name))
	tokens = append(tokens, field.Synonyms...)

	var selectors []string
	for _, token := range tokens {
		normalized := strings.TrimSpace(nonAlnumRe.ReplaceAllString(strings.ToLower(token), " "))
		if normalized == "" {
			continue
		}
		slug := strings.ReplaceAll(normalized, " ", "-")
		selectors = append(selectors,
			fmt.Sprintf(`[class*="%s"]`, slug),
			fmt.Sprintf(`[data-testid*="%s"]`, slug),
			fmt.Sprintf(`[data-field*="%s"]`, slug),
			fmt.Sprintf(`[data-name*="%s"]`, slug),
			fmt.Sprintf(`[aria-label*="%s"]`, normalized),
			fmt.Sprintf(`[itemprop="%s"]`, normalized),
			fmt.Sprintf(`[name*="%s"]`, slug),
		)
	}

	seen := make(map[string]bool, len(selectors))
	ordered := make([]string, 0, len(selectors))
	for _, selector := range selectors {
		if !seen[selector] {
			seen[selector] = true
			ordered = append(ordered, selector)
		}
	}
	return ordered
}
