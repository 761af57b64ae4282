// Package analyzer inspects fetched HTML for repeating layout clusters and
// pulls the plan's fields out of each record-like element. When no structure
// is detectable it degrades to a whole-page single-shot extraction rather
// than returning nothing.
package analyzer

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	urlutil "github.com/page-harvest/harvest/internal/utils/url"
	"github.com/page-harvest/harvest/pkg/models"
)

var (
	tokenSplitRe = regexp.MustCompile(`[\s/|>]+`)
	numericRe    = regexp.MustCompile(`(?:[$€£]\s?)?\d[\d,]*(?:\.\d+)?`)
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{4}\b`),
	}
)

// attributeTokens are the attributes mined for labeling tokens when scoring
// an element against a field's synonyms.
var attributeTokens = []string{
	"class",
	"id",
	"name",
	"itemprop",
	"data-testid",
	"data-field",
	"data-component",
	"data-name",
	"aria-label",
	"rel",
	"property",
	"role",
}

// Score thresholds per value type. Text demands the strongest match since
// nearly every element carries text; attribute-backed types tolerate weaker
// token evidence.
const (
	textThreshold    = 0.6
	numericThreshold = 0.45
	dateThreshold    = 0.4
	linkThreshold    = 0.4
	imageThreshold   = 0.3
)

var defaultImageAttrs = []string{"src", "data-src", "data-original"}

// Analyzer extracts structured records from rendered pages
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

// ExtractItems parses one page and returns the records found plus any
// degradation warnings. Relative links and image sources are resolved against
// baseURL.
func (a *Analyzer) ExtractItems(html string, plan *models.ScrapePlan, baseURL string) ([]map[string]string, []string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Warn().Str("url", baseURL).Err(err).Msg("Failed to parse HTML")
		return nil, []string{"Page could not be parsed as HTML."}
	}

	var warnings []string

	groups := findRepeatingGroups(doc)
	if len(groups) == 0 {
		warnings = append(warnings, "No repeating layout detected; falling back to whole-page extraction.")
		if item := a.extractFromNode(documentNode(doc), plan.Fields, baseURL); len(item) > 0 {
			return []map[string]string{item}, warnings
		}
		return nil, warnings
	}

	// Most repetitive layout first; the first group that yields data wins
	for _, group := range groups {
		var items []map[string]string
		for _, element := range group {
			record := a.extractFromNode(elementNode(element), plan.Fields, baseURL)
			if len(record) > 0 {
				items = append(items, record)
			}
		}
		if len(items) > 0 {
			log.Debug().Str("url", baseURL).Int("cluster_size", len(group)).Int("items", len(items)).Msg("Cluster extraction succeeded")
			return items, warnings
		}
	}

	warnings = append(warnings, "Structured clusters did not yield data; using single-shot extraction.")
	if item := a.extractFromNode(documentNode(doc), plan.Fields, baseURL); len(item) > 0 {
		return []map[string]string{item}, warnings
	}
	return nil, warnings
}

// findRepeatingGroups clusters candidate container elements by layout
// signature and keeps the five largest clusters with at least two members.
func findRepeatingGroups(doc *goquery.Document) [][]*goquery.Selection {
	signatureOrder := make([]string, 0, 16)
	signatureMap := make(map[string][]*goquery.Selection)

	doc.Find("article, li, tr, section, div").Each(func(_ int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		role, _ := sel.Attr("role")
		// Bare containers only repeat incidentally unless the tag itself
		// implies a record
		if len(classList(sel)) == 0 && role == "" && tag != "article" && tag != "li" && tag != "tr" {
			return
		}
		signature := signatureOf(sel)
		if _, ok := signatureMap[signature]; !ok {
			signatureOrder = append(signatureOrder, signature)
		}
		signatureMap[signature] = append(signatureMap[signature], sel)
	})

	groups := make([][]*goquery.Selection, 0, len(signatureOrder))
	for _, signature := range signatureOrder {
		if members := signatureMap[signature]; len(members) >= 2 {
			groups = append(groups, members)
		}
	}

	// Stable so equally sized clusters keep document order
	for i := 1; i < len(groups); i++ {
		for j := i; j > 0 && len(groups[j]) > len(groups[j-1]); j-- {
			groups[j], groups[j-1] = groups[j-1], groups[j]
		}
	}

	if len(groups) > 5 {
		groups = groups[:5]
	}
	return groups
}

func (a *Analyzer) extractFromNode(n node, fields []models.FieldSpec, baseURL string) map[string]string {
	record := make(map[string]string)
	for _, field := range fields {
		if value := a.extractField(n, field, baseURL); value != "" {
			record[field.Name] = value
		}
	}
	return record
}

func (a *Analyzer) extractField(n node, field models.FieldSpec, baseURL string) string {
	if value := extractUsingSelectors(n, field, baseURL); value != "" {
		return strings.TrimSpace(value)
	}

	var value string
	switch field.ValueType {
	case models.TypeLink:
		value = extractLink(n, field, baseURL)
	case models.TypeImage:
		value = extractImage(n, field, baseURL)
	case models.TypeNumeric:
		value = extractNumeric(n, field)
	case models.TypeDate:
		value = extractDate(n, field)
	default:
		value = extractText(n, field)
	}
	return strings.TrimSpace(value)
}

// extractUsingSelectors is the direct pass: probe attribute-based selectors
// built from the field's synonyms before resorting to fuzzy scoring.
func extractUsingSelectors(n node, field models.FieldSpec, baseURL string) string {
	for _, selector := range candidateSelectors(field) {
		matches := n.selectAll(selector)
		if len(matches) == 0 {
			continue
		}
		switch field.ValueType {
		case models.TypeLink:
			for _, element := range matches {
				if href, ok := element.Attr("href"); ok && href != "" {
					return urlutil.Resolve(baseURL, href)
				}
			}
		case models.TypeImage:
			for _, element := range matches {
				for _, attr := range imageAttrs(field) {
					if value, ok := element.Attr(attr); ok && value != "" {
						return urlutil.Resolve(baseURL, value)
					}
				}
			}
		default:
			for _, element := range matches {
				text := collapseText(element.Text())
				if text == "" {
					continue
				}
				if field.ValueType == models.TypeNumeric {
					if match := numericRe.FindString(text); match != "" {
						return match
					}
					continue
				}
				return text
			}
		}
	}
	return ""
}

// extractText keeps the highest-scoring element text, first match winning
// ties. Fields marked partial-tolerant fall back to the leading words of the
// node's full text.
func extractText(n node, field models.FieldSpec) string {
	var bestValue string
	bestScore := 0.0
	for _, element := range n.selfAndDescendants() {
		text := collapseText(element.Text())
		if text == "" {
			continue
		}
		score := scoreElement(element, field, text)
		if score > textThreshold && (score > bestScore || bestValue == "") {
			bestScore = score
			bestValue = text
		}
	}
	if bestValue != "" {
		return bestValue
	}

	if field.AllowPartial {
		words := strings.Fields(n.text())
		if len(words) > 30 {
			words = words[:30]
		}
		return strings.Join(words, " ")
	}
	return ""
}

func extractNumeric(n node, field models.FieldSpec) string {
	var bestValue string
	bestScore := 0.0
	for _, element := range n.selfAndDescendants() {
		text := collapseText(element.Text())
		if text == "" {
			continue
		}
		match := numericRe.FindString(text)
		if match == "" {
			continue
		}
		score := scoreElement(element, field, text)
		if score > numericThreshold && score >= bestScore {
			bestScore = score
			bestValue = match
		}
	}
	if bestValue != "" {
		return bestValue
	}

	return numericRe.FindString(n.text())
}

func extractDate(n node, field models.FieldSpec) string {
	for _, element := range n.selfAndDescendants() {
		text := collapseText(element.Text())
		if text == "" {
			continue
		}
		for _, pattern := range datePatterns {
			if match := pattern.FindString(text); match != "" && scoreElement(element, field, text) > dateThreshold {
				return match
			}
		}
	}

	text := n.text()
	for _, pattern := range datePatterns {
		if match := pattern.FindString(text); match != "" {
			return match
		}
	}
	return ""
}

func extractLink(n node, field models.FieldSpec, baseURL string) string {
	var bestValue string
	bestScore := 0.0
	for _, element := range n.findTag("a") {
		href, ok := element.Attr("href")
		if !ok || href == "" {
			continue
		}
		score := scoreElement(element, field, collapseText(element.Text()))
		if score > linkThreshold && score >= bestScore {
			bestScore = score
			bestValue = urlutil.Resolve(baseURL, href)
		}
	}
	return bestValue
}

func extractImage(n node, field models.FieldSpec, baseURL string) string {
	var bestValue string
	bestScore := 0.0
	for _, element := range n.findTag("img") {
		alt, _ := element.Attr("alt")
		for _, attr := range imageAttrs(field) {
			value, ok := element.Attr(attr)
			if !ok || value == "" {
				continue
			}
			score := scoreElement(element, field, alt)
			if score > imageThreshold && score >= bestScore {
				bestScore = score
				bestValue = urlutil.Resolve(baseURL, value)
			}
		}
	}
	return bestValue
}

// scoreElement rates how strongly an element is labeled as the field: the
// best similarity between any attribute or text token and any synonym.
func scoreElement(element *goquery.Selection, field models.FieldSpec, text string) float64 {
	var tokens []string
	for _, attr := range attributeTokens {
		value, ok := element.Attr(attr)
		if !ok || value == "" {
			continue
		}
		tokens = append(tokens, tokenSplitRe.Split(value, -1)...)
	}
	tokens = append(tokens, tokenSplitRe.Split(strings.ToLower(text), -1)...)

	best := 0.0
	for _, token := range tokens {
		if token == "" {
			continue
		}
		lowered := strings.ToLower(token)
		for _, synonym := range field.Synonyms {
			if ratio := similarity(lowered, synonym); ratio > best {
				best = ratio
			}
		}
	}
	return best
}

func imageAttrs(field models.FieldSpec) []string {
	if len(field.AttributePreferences) > 0 {
		return field.AttributePreferences
	}
	return defaultImageAttrs
}
